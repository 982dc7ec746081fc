package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the process-wide query/error/latency counters (spec §4.11)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap := eng.GetMetrics()
		fmt.Printf("queries:          %d\n", snap.Queries)
		fmt.Printf("errors:           %d\n", snap.Errors)
		fmt.Printf("uptime (s):       %d\n", snap.UptimeSeconds)
		fmt.Printf("total latency ms: %d\n", snap.TotalLatencyMs)
		fmt.Printf("avg latency ms:   %d\n", snap.AvgLatencyMs)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
