package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/workspace"
)

// Reconciler replays pending favorite writes.
type Reconciler interface {
	Reconcile(ctx context.Context) workspace.ReconcileReport
}

// ReconcileFavorites returns a cron job pushing unacknowledged favorite writes to the store.
func ReconcileFavorites(r Reconciler, log logger.Logger, timeout time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		log.Debug("Running job: ReconcileFavorites...")
		report := r.Reconcile(ctx)
		if report.Remaining == 0 && report.Failed == 0 {
			return
		}
		log.Warn(fmt.Sprintf("favorites still pending after reconcile: %d writes across %d clients (%d failed)",
			report.Remaining, report.Clients, report.Failed))
	}
}

// Pruner forgets revoked tokens that have expired.
type Pruner interface {
	PruneRevoked() int
}

func PruneRevokedTokens(p Pruner, log logger.Logger) func() {
	return func() {
		if n := p.PruneRevoked(); n > 0 {
			log.Info(fmt.Sprintf("pruned %d expired token revocations", n))
		}
	}
}

// GuestPruner forgets idle anonymous browsing state.
type GuestPruner interface {
	PruneGuests() int
}

func PruneGuestBrowsers(p GuestPruner, log logger.Logger) func() {
	return func() {
		if n := p.PruneGuests(); n > 0 {
			log.Debug(fmt.Sprintf("dropped %d idle guest browsers", n))
		}
	}
}
