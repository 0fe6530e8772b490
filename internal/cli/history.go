package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/nmoscheck/internal/report"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded runs",
		Long: `Show runs recorded by 'check --db'.

Without arguments, lists recent runs newest first. With a run id,
prints that run's full report.

Example:
  nmoscheck history --db ./runs.db
  nmoscheck history --db ./runs.db 0190a7b2-3c64-7def-8123-456789abcdef`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to list")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	// OpenStore would create an empty database; a missing file here is a
	// user error instead.
	if _, err := os.Stat(opts.Database); err != nil {
		return NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := report.OpenStore(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		rep, err := st.ReadRun(ctx, args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read run", err)
		}
		if formatter.Format == "json" {
			return formatter.Success(rep)
		}
		fmt.Fprintf(formatter.Writer, "Run %s (%s)\nNode %s\nConnection %s\n\n",
			rep.RunID, rep.StartedAt.Format(time.RFC3339), rep.NodeURL, rep.ConnectionURL)
		return rep.Render(formatter.Writer)
	}

	runs, err := st.ListRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}
	formatter.VerboseLog("Found %d recorded run(s) in %s", len(runs), opts.Database)

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, run := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d passed, %d failed, %d not applicable\n",
			run.RunID, run.StartedAt.Format(time.RFC3339),
			run.Passed, run.Failed, run.NotApplicable)
	}
	return nil
}
