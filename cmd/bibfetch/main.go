// Package main provides the bibfetch CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibfetch",
	Short: "Bibliographic identifier and citation extraction toolkit",
	Long: `bibfetch finds bibliographic identifiers (DOI, ISBN, arXiv, HAL) in
documents, fetches their metadata from the registration agencies, and
extracts citation lists through a chain of fallback backends.

All commands output JSON by default for easy integration with other
tools; pass --human for a readable rendering.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Load .env file if present (for GOOGLE_BOOKS_KEY, CROSSREF_MAILTO, ...)
	_ = godotenv.Load()

	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
