package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/geo"
)

var evaluateJSON bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <address> [address...]",
	Short: "Evaluate solar feasibility for one or more addresses",
	Long: `Evaluate runs the full feasibility pipeline for each address and prints
the decision, composite score, and per-dimension breakdown.

Addresses must be quoted and of the form "123 Main St, City, ST".
An unparseable address yields an INDETERMINATE report rather than aborting
the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "emit reports as JSON instead of text")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	orch, err := buildOrchestrator(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, address := range args {
		var report *feasibility.Report

		req, err := geo.ParseRequest(address)
		if err != nil {
			report = unparseableReport(address, err)
		} else {
			report = orch.Run(cmd.Context(), req)
		}

		if evaluateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			continue
		}
		printReport(cmd, report)
	}
	return nil
}

// unparseableReport renders an address that never reached the producers as an
// indeterminate evaluation, so batch runs always produce one report per input.
func unparseableReport(address string, err error) *feasibility.Report {
	return &feasibility.Report{
		ID:            uuid.NewString(),
		Site:          address,
		Request:       feasibility.Request{Address: address},
		Outcomes:      []feasibility.Outcome{},
		Decision:      feasibility.DecisionIndeterminate,
		Justification: []string{fmt.Sprintf("address could not be parsed: %v", err)},
		GeneratedAt:   time.Now().UTC(),
	}
}

func printReport(cmd *cobra.Command, r *feasibility.Report) {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "%s\n", r.Site)
	fmt.Fprintf(out, "  decision:  %s\n", strings.ToUpper(string(r.Decision)))
	if r.ScoreDefined {
		fmt.Fprintf(out, "  composite: %.2f / 100\n", r.CompositeScore)
	} else {
		fmt.Fprintf(out, "  composite: n/a\n")
	}

	for _, o := range r.Outcomes {
		if o.Status == feasibility.StatusSuccess {
			fmt.Fprintf(out, "  %-11s %.1f", o.Dimension+":", o.SubScore)
			if len(o.Notes) > 0 {
				fmt.Fprintf(out, "  (%s)", strings.Join(o.Notes, "; "))
			}
			fmt.Fprintln(out)
		} else {
			fmt.Fprintf(out, "  %-11s unavailable (%s)\n", o.Dimension+":", o.Reason)
		}
	}

	fmt.Fprintln(out, "  justification:")
	for _, line := range r.Justification {
		fmt.Fprintf(out, "    - %s\n", line)
	}
	fmt.Fprintln(out)
}
