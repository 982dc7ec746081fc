package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveMetricsAddr string

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Expose the engine's counters on a Prometheus scrape endpoint",
	Long: `The core itself only emits counters via get_metrics (spec §9's design
note: "the core does not embed telemetry; it only emits counters ... Exporters
live outside"). This subcommand is that outside exporter: it serves the
default Prometheus registry, into which engine.New registers the engine's
query, error and latency counters, over HTTP for operators who want
scrape-based observability instead of polling the binary snapshot ABI call.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		http.Handle("/metrics", promhttp.Handler())
		fmt.Printf("serving metrics on %s/metrics\n", serveMetricsAddr)
		return http.ListenAndServe(serveMetricsAddr, nil)
	},
}

func init() {
	serveMetricsCmd.Flags().StringVar(&serveMetricsAddr, "addr", ":9399", "address to serve the Prometheus endpoint on")
	rootCmd.AddCommand(serveMetricsCmd)
}
