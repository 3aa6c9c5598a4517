package jobs

import (
	"bytes"
	"context"
	"log"
	"testing"
	"time"

	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/workspace"
	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	report workspace.ReconcileReport
	calls  int
	hasDL  bool
}

func (f *fakeReconciler) Reconcile(ctx context.Context) workspace.ReconcileReport {
	f.calls++
	_, f.hasDL = ctx.Deadline()
	return f.report
}

type fakePruner struct{ n int }

func (f fakePruner) PruneRevoked() int { return f.n }

func (f fakePruner) PruneGuests() int { return f.n }

func TestReconcileFavorites(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewRollbarLogger(log.New(&buf, "", 0), logger.RollbarOptions{})

	r := &fakeReconciler{}
	ReconcileFavorites(r, l, time.Second)()
	assert.Equal(t, 1, r.calls)
	assert.True(t, r.hasDL)
	assert.NotContains(t, buf.String(), "still pending")

	r.report = workspace.ReconcileReport{Clients: 2, Remaining: 3, Failed: 1}
	ReconcileFavorites(r, l, time.Second)()
	assert.Contains(t, buf.String(), "3 writes across 2 clients (1 failed)")
}

func TestPruneRevokedTokens(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewRollbarLogger(log.New(&buf, "", 0), logger.RollbarOptions{})

	PruneRevokedTokens(fakePruner{}, l)()
	assert.Empty(t, buf.String())

	PruneRevokedTokens(fakePruner{n: 2}, l)()
	assert.Contains(t, buf.String(), "pruned 2 expired token revocations")
}

func TestPruneGuestBrowsers(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewRollbarLogger(log.New(&buf, "", 0), logger.RollbarOptions{})

	PruneGuestBrowsers(fakePruner{}, l)()
	assert.Empty(t, buf.String())

	PruneGuestBrowsers(fakePruner{n: 4}, l)()
	assert.Contains(t, buf.String(), "dropped 4 idle guest browsers")
}

func TestJobsScheduleWithCron(t *testing.T) {
	c := cron.New()
	_, err := c.AddFunc("*/5 * * * *", ReconcileFavorites(&fakeReconciler{}, logger.Nop(), time.Second))
	require.NoError(t, err)
	_, err = c.AddFunc("@hourly", PruneRevokedTokens(fakePruner{}, logger.Nop()))
	require.NoError(t, err)
	_, err = c.AddFunc("@every 10m", PruneGuestBrowsers(fakePruner{}, logger.Nop()))
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 3)
}
