package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/typeahead/internal/preflight"
	"github.com/Aman-CERP/typeahead/internal/ui"
)

func newDoctorCmd() *cobra.Command {
	var (
		jsonOutput bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that typeahead can run",
		Long: `Check the data directory, the configured backend and telemetry.

Exits with an error when a required check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, jsonOutput, verbose)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show check details")

	return cmd
}

func runDoctor(cmd *cobra.Command, jsonOutput, verbose bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	checker := preflight.New(
		preflight.WithOutput(out),
		preflight.WithVerbose(verbose),
		preflight.WithTerminal(func() bool { return ui.IsTTY(os.Stdout) }),
	)
	results := checker.RunAll(cmd.Context(), cfg)

	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Status string                  `json:"status"`
			Checks []preflight.CheckResult `json:"checks"`
		}{checker.SummaryStatus(results), results}); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return fmt.Errorf("preflight checks failed")
	}
	return nil
}
