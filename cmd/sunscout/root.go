package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sunscout/sunscout/internal/aggregate"
	"github.com/sunscout/sunscout/internal/config"
	"github.com/sunscout/sunscout/internal/feasibility"
	"github.com/sunscout/sunscout/internal/orchestrator"
	"github.com/sunscout/sunscout/internal/producer"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "sunscout",
	Short: "Solar site feasibility evaluation",
	Long: `sunscout evaluates residential solar feasibility for street addresses.

Each evaluation fans out to independent analysis producers (policy research,
permitting readiness, system design), combines their sub-scores into a
weighted composite, and renders a GO / NO_GO / INDETERMINATE decision with a
per-dimension justification.`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sunscout version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "sunscout", version)
	},
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// buildOrchestrator assembles the producer registry and orchestrator from cfg.
func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, error) {
	reg, err := producer.NewRegistry(cfg.Evaluator)
	if err != nil {
		return nil, err
	}

	weights := make(aggregate.Weights, len(cfg.Evaluator.Weights))
	for dim, w := range cfg.Evaluator.Weights {
		weights[feasibility.Dimension(dim)] = w
	}

	return orchestrator.New(reg, weights,
		orchestrator.WithThreshold(cfg.Evaluator.GoThreshold),
		orchestrator.WithTimeout(cfg.Evaluator.Timeout),
	)
}
