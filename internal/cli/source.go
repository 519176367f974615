package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/swipedeck/internal/bridge"
	"github.com/roach88/swipedeck/internal/bridge/memory"
	"github.com/roach88/swipedeck/internal/bridge/redis"
	"github.com/roach88/swipedeck/internal/bridge/sqlite"
	"github.com/roach88/swipedeck/internal/config"
	"github.com/roach88/swipedeck/internal/logger"
	"github.com/roach88/swipedeck/internal/record"
)

// SourceFlags override the backend chosen by config.
type SourceFlags struct {
	Kind      string
	Fixture   string
	SQLite    string
	RedisAddr string
}

func (f *SourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Kind, "source", "", "backend: memory|sqlite|redis (default from config)")
	cmd.Flags().StringVar(&f.SQLite, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&f.RedisAddr, "redis", "", "Redis address host:port")
}

// apply overlays non-empty flags and revalidates.
func (f *SourceFlags) apply(cfg *config.Config) error {
	if f.Kind != "" {
		cfg.Source.Kind = f.Kind
	}
	if f.Fixture != "" {
		cfg.Source.Fixture = f.Fixture
	}
	if f.SQLite != "" {
		cfg.Source.SQLitePath = f.SQLite
	}
	if f.RedisAddr != "" {
		cfg.Source.Redis.Addr = f.RedisAddr
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid source flags", err)
	}
	return nil
}

// deckFromConfig returns the fixture records, or the sample deck when no
// fixture is configured.
func deckFromConfig(cfg config.Config) ([]record.Record, error) {
	if cfg.Source.Fixture == "" {
		return record.SampleDeck(), nil
	}
	return record.LoadFixture(cfg.Source.Fixture)
}

// openSource builds the configured backend.
func openSource(ctx context.Context, cfg config.Config, log logger.Logger) (bridge.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceMemory:
		recs, err := deckFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		return memory.New(recs, memory.WithLogger(log)), nil

	case config.SourceSQLite:
		return sqlite.Open(cfg.Source.SQLitePath,
			sqlite.WithPollInterval(cfg.Source.PollInterval),
			sqlite.WithLogger(log),
		)

	case config.SourceRedis:
		return dialRedis(ctx, cfg, log)
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}

func dialRedis(ctx context.Context, cfg config.Config, log logger.Logger) (*redis.Source, error) {
	return redis.Dial(ctx, redis.Options{
		Addr:     cfg.Source.Redis.Addr,
		Password: cfg.Source.Redis.Password,
		DB:       cfg.Source.Redis.DB,
		Prefix:   cfg.Source.Redis.Prefix,
		Logger:   log,
	})
}

// closeSource releases backends that hold resources.
func closeSource(src bridge.Source, log logger.Logger) {
	c, ok := src.(bridge.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing source")
	}
}
