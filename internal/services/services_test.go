package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/memory"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/repos/testutil"
	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/modules/roadmap"
	"github.com/premsagarmanikyala/mantrix-ai/internal/observability"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/dbctx"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
)

// Monday.
var testToday = time.Date(2026, 1, 5, 7, 30, 0, 0, time.UTC)

type fakeBus struct {
	mu     sync.Mutex
	events []redis.Event
	err    error
}

func (b *fakeBus) Publish(_ context.Context, evt redis.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return b.err
}

func (b *fakeBus) StartForwarder(context.Context, func(redis.Event)) error { return nil }
func (b *fakeBus) Close() error                                            { return nil }

func (b *fakeBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.events))
	for i, e := range b.events {
		out[i] = e.Type
	}
	return out
}

type fakeLineage struct {
	calls   int
	sources []string
	err     error
}

func (l *fakeLineage) RecordMerge(_ context.Context, merged *domain.MergedRoadmap, sources []domain.Roadmap) error {
	l.calls++
	for _, s := range sources {
		l.sources = append(l.sources, s.ID)
	}
	return l.err
}

type fakeGenerator struct {
	text   string
	err    error
	system string
}

func (g *fakeGenerator) GenerateText(_ context.Context, system, _ string) (string, error) {
	g.system = system
	return g.text, g.err
}

// failingRoadmaps fails every read.
type failingRoadmaps struct{ repos.RoadmapRepo }

var errStoreDown = errors.New("store down")

func (failingRoadmaps) GetByID(_ dbctx.Context, _ string) (*domain.Roadmap, error) {
	return nil, errStoreDown
}

type harness struct {
	store    repos.Store
	bus      *fakeBus
	lineage  *fakeLineage
	metrics  *observability.Metrics
	merge    MergeService
	roadmaps RoadmapService
	progress ProgressService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		store:   repos.NewMemoryStore(memory.New()),
		bus:     &fakeBus{},
		lineage: &fakeLineage{},
		metrics: observability.NewMetrics("test"),
	}
	engine := roadmap.New(roadmap.UsecasesDeps{Now: func() time.Time { return testToday }})
	h.merge = NewMergeService(logger.Nop(), h.store.Roadmaps, h.store.MergedRoadmaps, engine, h.lineage, h.bus, h.metrics, 0)
	h.roadmaps = NewRoadmapService(logger.Nop(), h.store.Roadmaps)
	h.progress = NewProgressService(logger.Nop(), h.store.Roadmaps, h.store.MergedRoadmaps, h.store.Progress, h.bus, h.metrics)
	return h
}

func (h *harness) seed(t *testing.T, owner, title string, branches ...string) *domain.Roadmap {
	t.Helper()
	row, err := h.store.Roadmaps.Create(dbc(context.Background()), testutil.SampleRoadmap(owner, title, branches...))
	require.NoError(t, err)
	return row
}

func ptr[T any](v T) *T { return &v }
