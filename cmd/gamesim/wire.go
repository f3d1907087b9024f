package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesim/internal/config"
	dbRedis "github.com/kailas-cloud/gamesim/internal/db/redis"
	"github.com/kailas-cloud/gamesim/internal/domain"
	"github.com/kailas-cloud/gamesim/internal/metrics"
	"github.com/kailas-cloud/gamesim/internal/repository/catalog"
	collectionrepo "github.com/kailas-cloud/gamesim/internal/repository/collection"
	"github.com/kailas-cloud/gamesim/internal/repository/embcache"
	"github.com/kailas-cloud/gamesim/internal/repository/vectors"
	openaiEmb "github.com/kailas-cloud/gamesim/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/gamesim/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/gamesim/internal/usecase/health"
	"github.com/kailas-cloud/gamesim/internal/usecase/resolve"
	"github.com/kailas-cloud/gamesim/internal/usecase/similarity"
)

// deps is the wired object graph shared by the commands.
type deps struct {
	store       *dbRedis.Store
	pool        *pgxpool.Pool
	embedder    domain.Embedder
	collections *collectionrepo.Repo
	similarity  *similarity.Service
	health      *healthuc.Service
}

func (d *deps) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
	if d.store != nil {
		d.store.Close()
	}
}

// connectStore opens the vector store and waits until it answers.
func connectStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create vector store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("vector store not ready: %w", err)
	}
	logger.Info("Connected to vector store", zap.Strings("addrs", cfg.Database.Addrs))
	return store, nil
}

// wire is the composition root.
func wire(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{}

	store, err := connectStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	d.store = store

	pool, err := catalog.Open(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	d.pool = pool
	logger.Info("Connected to catalog database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSimilarityMetrics()

	embedder, provider := buildEmbedder(cfg, store, logger)
	d.embedder = embedder
	logger.Info("Embedder created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	d.collections = collectionrepo.New(store, cfg.Search.KeyPrefix, cfg.VectorConfig()).
		WithHNSW(collectionrepo.HNSWConfig{
			M:           cfg.Search.HNSWM,
			EFConstruct: cfg.Search.HNSWEFConstruct,
		})

	resolver := resolve.New(catalog.New(pool))
	vectorRepo := vectors.New(store, cfg.Search.KeyPrefix)
	d.similarity = similarity.New(resolver, vectorRepo, d.embedder, logger)
	d.health = healthuc.New(store, pool, provider)
	return d, nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
// The provider is returned separately for health checks.
func buildEmbedder(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) (domain.Embedder, *openaiEmb.Embedder) {
	ec := cfg.Embedding

	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     ec.APIKey,
		BaseURL:    ec.BaseURL,
		Model:      ec.Model,
		Dimensions: ec.Dimensions,
		Provider:   ec.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if ec.Cache.Enabled {
		embedder = embcache.New(base, store, embcache.Options{
			Prefix:     cfg.Search.KeyPrefix,
			Model:      ec.Model,
			Dimensions: ec.Dimensions,
			TTL:        time.Duration(ec.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, ec.Provider, ec.Model, logger)

	// Instruction prefix is outermost, so cache keys include it
	if ec.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, ec.QueryInstruction), base
	}
	return embedder, base
}
