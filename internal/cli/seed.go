package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/swipedeck/internal/config"
	"github.com/roach88/swipedeck/internal/record"
	"github.com/roach88/swipedeck/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Source SourceFlags
}

// SeedResult reports what seed wrote.
type SeedResult struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Records int    `json:"records"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed [fixture]",
		Short: "Write a deck into a SQLite or Redis backend",
		Long: `Replace the deck held by a SQLite or Redis backend with the records from
a fixture file (.yaml, .json or .cue). Without a fixture the sample deck is
written.

Examples:
  swipedeck seed --source sqlite --db ./deck.db deck.yaml
  swipedeck seed --source redis --redis localhost:6379`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Source.Fixture = args[0]
			}
			return runSeed(opts, cmd)
		},
	}

	opts.Source.register(cmd)
	return cmd
}

func runSeed(opts *SeedOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := opts.Source.apply(&cfg); err != nil {
		return err
	}
	log := newLogger(cfg, cmd.ErrOrStderr())

	recs, err := deckFromConfig(cfg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeFixture, err)
	}
	formatter.VerboseLog("loaded %d record(s)", len(recs))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result := SeedResult{Source: cfg.Source.Kind, Records: len(recs)}
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		result.Target = cfg.Source.SQLitePath
		err = seedSQLite(ctx, cfg.Source.SQLitePath, recs)
	case config.SourceRedis:
		src, derr := dialRedis(ctx, cfg, log)
		if derr != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBackend, derr)
		}
		defer closeSource(src, log)
		result.Target = src.Keys().Deck
		err = src.PublishDeck(ctx, recs)
	default:
		err = fmt.Errorf("the %s source is seeded at startup; use --fixture with play", cfg.Source.Kind)
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBackend, err)
	}

	return formatter.Success(result,
		fmt.Sprintf("✓ seeded %d record(s) into %s %s", result.Records, result.Source, result.Target))
}

func seedSQLite(ctx context.Context, path string, recs []record.Record) error {
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.ReplaceRecords(ctx, recs)
}
