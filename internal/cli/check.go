package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/nmoscheck/internal/checks"
	"github.com/roach88/nmoscheck/internal/client"
	"github.com/roach88/nmoscheck/internal/config"
	"github.com/roach88/nmoscheck/internal/is05"
	"github.com/roach88/nmoscheck/internal/report"
	"github.com/roach88/nmoscheck/internal/schema"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string
	Schemas  bool
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <config-file>",
		Short: "Run the interoperability test suite against a device",
		Long: `Run the IS-04/IS-05 interoperability test suite against one device.

The config file names the device's Node API and Connection API base URLs
and their versions. Every test case runs regardless of earlier failures
and each produces exactly one PASS, FAIL or NA verdict.

Activation cases send immediate activations to the Connection API, so
point this at test equipment, not a device carrying live traffic.

Example:
  nmoscheck check ./device.yaml
  nmoscheck check ./device.yaml --db ./runs.db --schemas --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database for run history (optional)")
	cmd.Flags().BoolVar(&opts.Schemas, "schemas", false, "also validate IS-04 resources against their schemas")

	return cmd
}

func runCheck(opts *CheckOptions, configPath string, cmd *cobra.Command) error {
	// Configure logging based on verbose flag
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	httpClient := client.New(
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)

	var validator *schema.Validator
	if opts.Schemas {
		validator, err = schema.NewValidator()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to compile resource schemas", err)
		}
	}

	checker := checks.New(checks.Params{
		NodeURL:           cfg.Node.URL,
		ConnectionURL:     cfg.Connection.URL,
		NodeVersion:       cfg.Node.APIVersion(),
		ConnectionVersion: cfg.Connection.APIVersion(),
		Client:            httpClient,
		Utils:             is05.NewUtils(httpClient, cfg.Connection.URL),
		Validator:         validator,
		Logger:            logger,
	})

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting test suite",
		"node", cfg.Node.URL,
		"connection", cfg.Connection.URL,
	)
	rep := checker.Run(ctx)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
	if err := outputReport(formatter, rep); err != nil {
		return err
	}

	if opts.Database != "" {
		if err := persistReport(ctx, opts.Database, rep); err != nil {
			return WrapExitError(ExitCommandError, "failed to record run", err)
		}
		formatter.VerboseLog("Run %s recorded in %s", rep.RunID, opts.Database)
	}

	if rep.Failed() {
		_, failed, _ := rep.Counts()
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d test cases failed", failed, len(rep.Results)))
	}
	return nil
}

func outputReport(formatter *OutputFormatter, rep *report.Report) error {
	if formatter.Format == "json" {
		if !rep.Failed() {
			return formatter.Success(rep)
		}

		// A failed run still carries the full report alongside the error.
		response := CLIResponse{
			Status: "error",
			Data:   rep,
			Error: &CLIError{
				Code:    "E001",
				Message: "one or more test cases failed",
			},
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	return rep.Render(formatter.Writer)
}

func persistReport(ctx context.Context, path string, rep *report.Report) error {
	st, err := report.OpenStore(path)
	if err != nil {
		return err
	}
	defer st.Close()

	return st.WriteReport(ctx, rep)
}
