package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/swipedeck/internal/config"
	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/store"
)

// DecisionsOptions holds flags for the decisions command.
type DecisionsOptions struct {
	*RootOptions
	Source SourceFlags
}

// NewDecisionsCommand creates the decisions command.
func NewDecisionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DecisionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "decisions",
		Short: "List decisions recorded by a SQLite or Redis backend",
		Long: `Print every decision a backend has received, oldest first.

Examples:
  swipedeck decisions --source sqlite --db ./deck.db
  swipedeck decisions --source redis --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecisions(opts, cmd)
		},
	}

	opts.Source.register(cmd)
	return cmd
}

func runDecisions(opts *DecisionsOptions, cmd *cobra.Command) error {
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

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var list []decision.Decision
	switch cfg.Source.Kind {
	case config.SourceSQLite:
		list, err = readSQLiteDecisions(ctx, cfg.Source.SQLitePath)
	case config.SourceRedis:
		src, derr := dialRedis(ctx, cfg, log)
		if derr != nil {
			return formatter.Fail(ExitCommandError, ErrCodeBackend, derr)
		}
		defer closeSource(src, log)
		list, err = src.Decisions(ctx, 0, -1)
	default:
		err = fmt.Errorf("the %s source keeps no decision history", cfg.Source.Kind)
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeBackend, err)
	}

	if formatter.JSON() {
		return formatter.Success(list, "")
	}
	w := cmd.OutOrStdout()
	if len(list) == 0 {
		fmt.Fprintln(w, "No decisions recorded.")
		return nil
	}
	for _, d := range list {
		fmt.Fprintf(w, "%s  %-6s  %s  (%s)\n", d.Timestamp.UTC().Format(time.RFC3339), d.Kind, d.RecordID, d.ID)
	}
	return nil
}

func readSQLiteDecisions(ctx context.Context, path string) ([]decision.Decision, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.ReadDecisions(ctx)
}
