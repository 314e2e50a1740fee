// Package cmd defines the newsbrief command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "newsbrief",
		Short: "Fetches today's news and reduces it to an eight-point digest.",
		Long: `newsbrief searches for recent news articles, renders each page in a
headless browser, summarizes the extracted text with a generative model and
delivers the result as a fixed eight-point template message.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newRunCmd())

	return cmd
}

// Execute is the CLI entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
