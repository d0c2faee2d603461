package app

import (
	"context"
	"fmt"

	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/openai"
	"github.com/premsagarmanikyala/mantrix-ai/internal/clients/redis"
	"github.com/premsagarmanikyala/mantrix-ai/internal/data/graph"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/logger"
	"github.com/premsagarmanikyala/mantrix-ai/internal/platform/neo4jdb"
)

// Clients holds the optional external integrations. Every field may be nil.
type Clients struct {
	EventBus redis.EventBus
	Neo4j    *neo4jdb.Client
	Lineage  graph.LineageStore
	OpenAI   openai.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.Redis.Addr != "" {
		bus, err := redis.NewEventBus(cfg.Redis, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
		out.EventBus = bus
	} else {
		log.Info("REDIS_ADDR not set, domain events disabled")
	}

	// Neo4j
	neo, err := neo4jdb.New(cfg.Neo4j, log)
	if err != nil {
		out.Close(context.Background())
		return Clients{}, fmt.Errorf("init neo4j: %w", err)
	}
	if neo != nil {
		out.Neo4j = neo
		out.Lineage = graph.NewLineageStore(neo, log)
	} else {
		log.Info("NEO4J_URI not set, merge lineage disabled")
	}

	// Openai
	ai, err := openai.New(cfg.OpenAI, log)
	if err != nil {
		out.Close(context.Background())
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	if ai != nil {
		out.OpenAI = ai
	} else {
		log.Info("OPENAI_API_KEY not set, resumes use templates")
	}

	return out, nil
}

func (c Clients) Close(ctx context.Context) {
	if c.EventBus != nil {
		_ = c.EventBus.Close()
	}
	if c.Neo4j != nil {
		_ = c.Neo4j.Close(ctx)
	}
}
