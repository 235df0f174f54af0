package main

import (
	"fmt"
	"os"

	"tarun-kavipurapu/swarm-sim/pkg/report"

	"github.com/spf13/cobra"
)

var inspectFormat = report.JSON

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Open a query shell over an exported report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open report: %w", err)
		}
		defer file.Close()

		rep, err := report.Decode(file, inspectFormat)
		if err != nil {
			return err
		}
		runShell(rep)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Var(&inspectFormat, "format", "Report format: json or bencode")
}
