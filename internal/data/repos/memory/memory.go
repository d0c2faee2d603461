package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
)

// DB is a process-local store used for DB_DRIVER=memory and tests.
// Rows are copied on the way in and out so callers never share state with the store.
type DB struct {
	roadmaps *table[domain.Roadmap]
	merged   *table[domain.MergedRoadmap]
	progress *table[domain.ProgressEntry]
	resumes  *table[domain.Resume]
	users    *table[domain.User]

	now   func() time.Time
	newID func() string
}

type Option func(*DB)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// WithIDs overrides id generation.
func WithIDs(newID func() string) Option {
	return func(db *DB) { db.newID = newID }
}

func New(opts ...Option) *DB {
	db := &DB{
		roadmaps: newTable[domain.Roadmap](),
		merged:   newTable[domain.MergedRoadmap](),
		progress: newTable[domain.ProgressEntry](),
		resumes:  newTable[domain.Resume](),
		users:    newTable[domain.User](),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// table keeps rows in insertion order so listings are deterministic.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[string]*T{}}
}

func (t *table[T]) insert(id string, row *T) {
	t.rows[id] = row
	t.order = append(t.order, id)
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// newestFirst walks rows from the most recent insert back.
func (t *table[T]) newestFirst(keep func(*T) bool) []*T {
	var out []*T
	for i := len(t.order) - 1; i >= 0; i-- {
		if row := t.rows[t.order[i]]; keep(row) {
			out = append(out, row)
		}
	}
	return out
}

func ctxErr(dbc dbctx.Context) error {
	if dbc.Ctx == nil {
		return nil
	}
	return dbc.Ctx.Err()
}

func cloneBranches(in []domain.Branch) []domain.Branch {
	if in == nil {
		return nil
	}
	out := make([]domain.Branch, len(in))
	for i, b := range in {
		out[i] = b
		out[i].Units = append([]domain.LearningUnit(nil), b.Units...)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
