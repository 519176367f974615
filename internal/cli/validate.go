package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/swipedeck/internal/config"
	"github.com/roach88/swipedeck/internal/record"
)

// FileResult is the validation outcome for one input.
type FileResult struct {
	Path    string   `json:"path"`
	Kind    string   `json:"kind"` // "config" or "fixture"
	Valid   bool     `json:"valid"`
	Records int      `json:"records,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool         `json:"valid"`
	Files []FileResult `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [fixture...]",
		Short: "Validate config and fixture files",
		Long: `Check the active configuration (--config plus SWIPEDECK_* variables) and
any fixture files given as arguments without starting a controller.

Fixtures must have unique, non-empty ids and satisfy the record schema.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, fixtures []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true}
	add := func(fr FileResult) {
		if !fr.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fr)
	}

	add(validateConfigFile(opts.Config))
	for _, path := range fixtures {
		recs, err := record.LoadFixture(path)
		fr := FileResult{Path: path, Kind: "fixture", Valid: err == nil, Records: len(recs)}
		if err != nil {
			fr.Errors = []string{err.Error()}
		}
		formatter.VerboseLog("%s: %d record(s)", path, len(recs))
		add(fr)
	}

	if formatter.JSON() {
		if err := formatter.Success(result, ""); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, fr := range result.Files {
			if fr.Valid {
				detail := ""
				if fr.Kind == "fixture" {
					detail = fmt.Sprintf(" (%d records)", fr.Records)
				}
				fmt.Fprintf(w, "✓ %s %s%s\n", fr.Kind, fr.Path, detail)
				continue
			}
			fmt.Fprintf(w, "✗ %s %s\n", fr.Kind, fr.Path)
			for _, e := range fr.Errors {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

func validateConfigFile(path string) FileResult {
	name := path
	if name == "" {
		name = "(defaults)"
	}
	fr := FileResult{Path: name, Kind: "config", Valid: true}
	if _, err := config.Load(path); err != nil {
		fr.Valid = false
		var ve *config.ValidationError
		if errors.As(err, &ve) {
			for _, p := range ve.Problems {
				fr.Errors = append(fr.Errors, p.Field+": "+p.Message)
			}
		} else {
			fr.Errors = []string{err.Error()}
		}
	}
	return fr
}
