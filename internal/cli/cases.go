package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/nmoscheck/internal/checks"
)

// CaseInfo describes one test case for listing.
type CaseInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// NewCasesCommand creates the cases command.
func NewCasesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cases",
		Short: "List the test cases the suite runs",
		Long: `List the test cases of the interoperability suite in execution order,
without contacting any device.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCases(rootOpts, cmd)
		},
	}
}

func runCases(opts *RootOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Cases() never touches the network, so an unconfigured Checker is
	// enough to enumerate the suite.
	var infos []CaseInfo
	for _, tc := range checks.New(checks.Params{}).Cases() {
		infos = append(infos, CaseInfo{ID: tc.ID, Description: tc.Description})
	}

	if formatter.Format == "json" {
		return formatter.Success(infos)
	}

	for _, info := range infos {
		fmt.Fprintf(formatter.Writer, "%-10s %s\n", info.ID, info.Description)
	}
	return nil
}
