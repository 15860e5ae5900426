package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/telhawk-triage/pkg/output"
)

var heuristicsCmd = &cobra.Command{
	Use:   "heuristics",
	Short: "Show the effective configuration and heuristic constants",
	Long:  "Print the configuration after applying files, environment and defaults, followed by any warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadedConfig(cmd)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := output.YAML(c); err != nil {
			return err
		}
		for _, w := range c.Warnings() {
			output.Warn("%s", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(heuristicsCmd)
}
