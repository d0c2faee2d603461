package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/premsagarmanikyala/mantrix-ai/internal/domain"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/neo4jdb"
)

// LineageStore records which roadmaps a merged roadmap was built from.
type LineageStore interface {
	RecordMerge(ctx context.Context, merged *domain.MergedRoadmap, sources []domain.Roadmap) error
}

type neo4jLineage struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewLineageStore returns nil when client is nil so callers can skip lineage entirely.
func NewLineageStore(client *neo4jdb.Client, log *logger.Logger) LineageStore {
	if client == nil || client.Driver == nil {
		return nil
	}
	return &neo4jLineage{client: client, log: log.With("store", "Neo4jLineage")}
}

// MergeLineageRows flattens the edges written for a merge: one row per source roadmap.
func MergeLineageRows(merged *domain.MergedRoadmap, sources []domain.Roadmap) []map[string]any {
	rows := make([]map[string]any, 0, len(sources))
	for i, src := range sources {
		rows = append(rows, map[string]any{
			"source_id":    src.ID,
			"source_title": src.Title,
			"branch_count": len(src.Branches),
			"position":     i,
			"owner_id":     merged.OwnerID,
		})
	}
	return rows
}

func (s *neo4jLineage) RecordMerge(ctx context.Context, merged *domain.MergedRoadmap, sources []domain.Roadmap) error {
	if merged == nil || merged.ID == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := s.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.client.Database,
	})
	defer session.Close(ctx)

	if res, err := session.Run(ctx, `CREATE CONSTRAINT roadmap_id_unique IF NOT EXISTS FOR (r:Roadmap) REQUIRE r.id IS UNIQUE`, nil); err != nil {
		s.log.Warn("neo4j schema init failed (continuing)", "error", err)
	} else {
		_, _ = res.Consume(ctx)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MERGE (m:MergedRoadmap {id: $id})
SET m.title = $title,
    m.owner_id = $owner_id,
    m.branch_count = $branch_count,
    m.estimated_duration = $estimated_duration,
    m.synced_at = $synced_at
`, map[string]any{
			"id":                 merged.ID,
			"title":              merged.Title,
			"owner_id":           merged.OwnerID,
			"branch_count":       len(merged.Branches),
			"estimated_duration": merged.EstimatedDurationSeconds,
			"synced_at":          now,
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
UNWIND $rows AS r
MERGE (s:Roadmap {id: r.source_id})
SET s.title = r.source_title, s.owner_id = r.owner_id, s.branch_count = r.branch_count
WITH s, r
MATCH (m:MergedRoadmap {id: $id})
MERGE (m)-[e:MERGED_FROM]->(s)
SET e.position = r.position, e.synced_at = $synced_at
`, map[string]any{
			"id":        merged.ID,
			"rows":      MergeLineageRows(merged, sources),
			"synced_at": now,
		})
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j merge lineage: %w", err)
	}
	return nil
}
