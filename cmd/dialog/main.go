// Command dialog runs a single dialog node: a replica's local storage,
// optional remote sites to push and pull against, and (with `serve`) a
// gRPC router endpoint plus a Prometheus /metrics endpoint.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dialog",
	Short: "dialog - a content-addressed, replicated triple store",
	Long: `dialog is a single-binary node for a content-addressed, replicated
triple store: prolly-tree indexes over a fact's entity, attribute, and
value orderings, revisions named by the hash of their three roots, and
branches as mutable CAS-published pointers to a revision.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("dialog version %s\nCommit: %s\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to dialog.yaml (defaults to bolt storage under ./dialog-data)")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(serveCmd)
}
