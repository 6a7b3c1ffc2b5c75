package main

import (
	"context"
	"fmt"

	"github.com/bibtools/bibfetch/internal/citations"
	"github.com/spf13/cobra"
)

var citationsBackends []string

var citationsCmd = &cobra.Command{
	Use:   "citations <file>",
	Short: "Extract the reference list of a document",
	Long: `Extract the list of cited references from a document. Backends are
tried in order until one produces entries; every try is recorded in the
attempt log. Running out of backends is reported as an exhausted result,
not an error. Pass an arXiv identifier to pull the bibliography from the
paper's own source bundle, or - to read plain text from stdin.

Example:
  bibfetch citations paper.pdf
  bibfetch citations arXiv:1506.06690
  bibfetch citations references.bbl --backends bbl`,
	Args: cobra.ExactArgs(1),
	RunE: runCitations,
}

func init() {
	citationsCmd.Flags().StringSliceVar(&citationsBackends, "backends", nil, "Backend order (default from config)")
	rootCmd.AddCommand(citationsCmd)
}

func runCitations(cmd *cobra.Command, args []string) error {
	src, err := loadSource(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	pipeline, err := buildPipeline(citationsBackends)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	result, err := pipeline.Extract(context.Background(), src)
	if err != nil {
		exitWithError(ExitError, "extracting citations: %v", err)
	}

	if humanOutput {
		printCitationsHuman(result)
		return nil
	}
	return outputJSON(result)
}

// printCitationsHuman prints an extraction result in human-readable format.
func printCitationsHuman(result *citations.Result) {
	if result.Exhausted {
		fmt.Println("No backend produced any entries.")
		for _, a := range result.Attempts {
			if a.Err != "" {
				fmt.Printf("  %s: %s\n", a.Backend, a.Err)
			} else {
				fmt.Printf("  %s: no entries\n", a.Backend)
			}
		}
		return
	}

	fmt.Printf("%d entries via %s\n\n", len(result.Entries), result.Backend)
	for i, e := range result.Entries {
		fmt.Printf("%d. %s\n", i+1, e.Text)
	}
}
