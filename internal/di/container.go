// Package di provides the dependency injection container for the engine
package di

import (
	"context"
	"fmt"

	"advisor-engine/internal/catalog"
	"advisor-engine/internal/config"
	"advisor-engine/internal/conflict"
	"advisor-engine/internal/family"
	"advisor-engine/internal/logging"
	"advisor-engine/internal/memory"
	"advisor-engine/internal/nlu"
	"advisor-engine/internal/storage"
	"advisor-engine/internal/strategy"
)

// Container holds all engine dependencies, wired in dependency order. Any
// failure during construction is fatal; the engine never runs
// half-initialized.
type Container struct {
	Config   *config.Config
	Logger   logging.Logger
	Store    storage.RecordStore
	Cache    storage.RecencyCache
	Catalog  *catalog.Catalog
	Memory   *memory.Memory
	Detector *conflict.Detector
	Selector *strategy.Selector
	Parser   nlu.Parser
	Family   *family.Module
}

// NewContainer builds the full engine from configuration
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	c := &Container{
		Config: cfg,
		Logger: logging.NewLogger(logging.ParseLogLevel(cfg.Logging.Level)),
	}

	if err := c.initializeStorage(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if err := c.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return c, nil
}

// initializeStorage sets up the record store and the recency cache per the
// configured drivers
func (c *Container) initializeStorage(ctx context.Context) error {
	switch c.Config.Storage.Driver {
	case config.DriverPostgres:
		store, err := storage.NewPostgresStore(c.Config.Storage.DSN, c.Logger)
		if err != nil {
			return fmt.Errorf("postgres store: %w", err)
		}
		c.Store = store
	case config.DriverSQLite:
		store, err := storage.NewSQLiteStore(c.Config.Storage.DSN, c.Logger)
		if err != nil {
			return fmt.Errorf("sqlite store: %w", err)
		}
		c.Store = store
	case config.DriverMemory:
		c.Store = storage.NewMemoryStore()
	default:
		return fmt.Errorf("unknown storage driver %q", c.Config.Storage.Driver)
	}

	switch c.Config.Cache.Backend {
	case config.CacheMemory:
		c.Cache = storage.NewTTLRecencyCache(c.Config.Cache.TTL, c.Config.Cache.MaxRecent)
	case config.CacheRedis:
		cache, err := storage.NewRedisRecencyCache(ctx, c.Config.Cache, c.Logger)
		if err != nil {
			return fmt.Errorf("redis cache: %w", err)
		}
		c.Cache = cache
	case config.CacheNone:
		c.Cache = storage.NewNoopRecencyCache()
	default:
		return fmt.Errorf("unknown cache backend %q", c.Config.Cache.Backend)
	}
	return nil
}

// initializeServices wires the catalog, memory, conflict, strategy and
// family layers on top of storage
func (c *Container) initializeServices() error {
	cat, err := catalog.Load(c.Logger)
	if err != nil {
		return fmt.Errorf("question catalog: %w", err)
	}
	c.Catalog = cat

	mem, err := memory.NewMemory(c.Store, c.Cache, c.Config.Storage, c.Logger)
	if err != nil {
		return fmt.Errorf("question memory: %w", err)
	}
	c.Memory = mem

	c.Detector = conflict.NewDetector(c.Config.Conflict, c.Logger)

	selector, err := strategy.NewSelector(c.Config.Scoring, c.Config.Session, c.Catalog, c.Logger)
	if err != nil {
		return fmt.Errorf("questioning strategy: %w", err)
	}
	c.Selector = selector

	if c.Config.NLU.OpenAIAPIKey != "" {
		parser, err := nlu.NewOpenAIParser(c.Config.NLU, c.Logger)
		if err != nil {
			return fmt.Errorf("nlu parser: %w", err)
		}
		c.Parser = parser
	} else {
		c.Parser = nlu.NewRuleParser()
	}

	fam, err := family.NewModule(c.Parser, c.Logger)
	if err != nil {
		return fmt.Errorf("family module: %w", err)
	}
	c.Family = fam
	return nil
}

// Shutdown releases storage resources
func (c *Container) Shutdown() error {
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			return fmt.Errorf("failed to close record store: %w", err)
		}
	}
	return nil
}
