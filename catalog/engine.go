package catalog

import (
	"context"

	"github.com/anjiri1684/learnlingo/database"
	"github.com/anjiri1684/learnlingo/logger"
	"github.com/anjiri1684/learnlingo/models"
	"github.com/pkg/errors"
)

// Source marks whether a catalog came from the store or the built-in fixtures.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Snapshot is a loaded catalog. Err holds the store failure behind a fallback.
type Snapshot struct {
	Teachers []models.Teacher
	Source   Source
	Err      error
}

func (s Snapshot) Degraded() bool {
	return s.Source == SourceFallback
}

// Reader is the part of the gateway the catalog reads from.
type Reader interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
	GetTeacher(ctx context.Context, id string) (models.Teacher, error)
}

type Engine struct {
	store    Reader
	fixtures []models.Teacher
	log      logger.Logger
}

func NewEngine(store Reader, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{store: store, fixtures: Fixtures(), log: log}
}

// Load fetches the catalog, falling back to the fixtures when the store is unavailable.
// Ids are normalized on the way in.
func (e *Engine) Load(ctx context.Context) Snapshot {
	teachers, err := e.store.ListTeachers(ctx)
	if err != nil {
		e.log.Warn("catalog: store unavailable, serving demo teachers", err)
		return Snapshot{Teachers: e.fallback(), Source: SourceFallback, Err: err}
	}
	for i := range teachers {
		teachers[i].ID = models.NormalizeID(teachers[i].ID)
	}
	return Snapshot{Teachers: teachers, Source: SourceLive}
}

// Get returns one teacher. When the store is unavailable the fixtures are searched instead.
func (e *Engine) Get(ctx context.Context, id interface{}) (models.Teacher, Source, error) {
	key := models.NormalizeID(id)
	if key == "" {
		return models.Teacher{}, "", errors.Wrap(database.ErrNotFound, "empty teacher id")
	}

	t, err := e.store.GetTeacher(ctx, key)
	if err == nil {
		t.ID = models.NormalizeID(t.ID)
		return t, SourceLive, nil
	}
	if !errors.Is(err, database.ErrRemoteUnavailable) {
		return models.Teacher{}, "", err
	}

	e.log.Warn("catalog: store unavailable, looking up demo teacher", err)
	for _, f := range e.fixtures {
		if f.ID == key {
			return f, SourceFallback, nil
		}
	}
	return models.Teacher{}, "", errors.Wrapf(database.ErrNotFound, "teacher %s", key)
}

func (e *Engine) fallback() []models.Teacher {
	out := make([]models.Teacher, len(e.fixtures))
	copy(out, e.fixtures)
	return out
}
