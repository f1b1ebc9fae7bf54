package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kushal2060/charity-ledger-go/pkg/config"
	"github.com/kushal2060/charity-ledger-go/pkg/logger"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence/badger"
	"github.com/kushal2060/charity-ledger-go/pkg/persistence/memory"
	storeredis "github.com/kushal2060/charity-ledger-go/pkg/persistence/redis"
	"github.com/kushal2060/charity-ledger-go/pkg/server"
)

func main() {
	app := &cli.App{
		Name:  "charity-server",
		Usage: "Charity donation ledger with merkle inclusion proofs",
		Description: `An HTTP service that records donations to charities and commits to each
charity's confirmed donation set with a merkle root.

The server provides:
- Charity and donation management endpoints
- Merkle inclusion proof generation for any confirmed donation
- Independent proof verification against the current donation set`,
		Version: "1.0.0",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   8000,
				Usage:   "HTTP server port",
				EnvVars: []string{config.EnvCharityPort},
			},
			&cli.StringFlag{
				Name:    "persistence-type",
				Aliases: []string{"store"},
				Value:   "memory",
				Usage:   "Storage backend: memory, badger, or redis",
				EnvVars: []string{config.EnvCharityPersistenceType},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "./data",
				Usage:   "Data directory for badger persistence",
				EnvVars: []string{config.EnvCharityDataDir},
			},
			&cli.StringFlag{
				Name:    "redis-address",
				Value:   "localhost:6379",
				Usage:   "Redis server address for redis persistence",
				EnvVars: []string{config.EnvCharityRedisAddress},
			},
			&cli.StringFlag{
				Name:    "redis-password",
				Usage:   "Redis password",
				EnvVars: []string{config.EnvCharityRedisPassword},
			},
			&cli.IntFlag{
				Name:    "redis-db",
				Value:   0,
				Usage:   "Redis database number (0-15)",
				EnvVars: []string{config.EnvCharityRedisDB},
			},
			&cli.Float64Flag{
				Name:    "rate-limit",
				Value:   50,
				Usage:   "Allowed requests per second (0 disables limiting)",
				EnvVars: []string{config.EnvCharityRateLimit},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose logging",
				EnvVars: []string{config.EnvCharityVerbose},
			},
		},
		Action: runServer,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func runServer(c *cli.Context) error {
	// Create logger
	l, err := logger.NewLogger(&logger.LoggerConfig{Debug: c.Bool("verbose")})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = l.Sync() }()

	// Parse configuration from flags/environment
	cfg, err := parseConfig(c)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Open the selected store
	store, err := openStore(cfg, l)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.HealthCheck(); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}

	srv := server.NewServer(cfg, store, l)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	l.Sugar().Infow("Charity server started",
		"port", cfg.Port, "persistence", cfg.Persistence.String())

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	l.Sugar().Infow("Shutting down")
	return srv.Stop()
}

func parseConfig(c *cli.Context) (*config.ServerConfig, error) {
	persistenceType, err := config.ParsePersistenceType(c.String("persistence-type"))
	if err != nil {
		return nil, err
	}

	rateLimit := c.Float64("rate-limit")
	rateBurst := int(rateLimit) * 2
	if rateLimit > 0 && rateBurst < 1 {
		rateBurst = 1
	}

	cfg := &config.ServerConfig{
		Port:        c.Int("port"),
		Persistence: persistenceType,
		DataDir:     c.String("data-dir"),
		RateLimit:   rateLimit,
		RateBurst:   rateBurst,
		Verbose:     c.Bool("verbose"),
	}

	if persistenceType == config.PersistenceTypeRedis {
		cfg.Redis = &config.RedisConfig{
			Address:  c.String("redis-address"),
			Password: c.String("redis-password"),
			DB:       c.Int("redis-db"),
		}
	}

	return cfg, nil
}

func openStore(cfg *config.ServerConfig, l *zap.Logger) (persistence.IDonationStore, error) {
	switch cfg.Persistence {
	case config.PersistenceTypeMemory:
		return memory.NewMemoryStore(), nil
	case config.PersistenceTypeBadger:
		return badger.NewBadgerStore(cfg.DataDir, l)
	case config.PersistenceTypeRedis:
		return storeredis.NewRedisStore(&storeredis.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, l)
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s", cfg.Persistence)
	}
}
