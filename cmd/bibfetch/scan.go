package main

import (
	"errors"

	"github.com/bibtools/bibfetch/internal/doctext"
	"github.com/bibtools/bibfetch/internal/ident"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan <file>",
	Short: "Find identifiers in a document without fetching metadata",
	Long: `Find bibliographic identifiers (DOI, ISBN, arXiv, HAL) in a document.
Like identify, but offline: candidates are extracted, validated, and
deduplicated without any metadata lookups. Pass - to read plain text
from stdin.

Example:
  bibfetch scan paper.pdf
  bibfetch scan notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	text, err := loadDocument(args[0])
	if err != nil {
		code := ExitError
		if errors.Is(err, doctext.ErrUnreadable) {
			code = ExitDataError
		}
		exitWithError(code, "%v", err)
	}

	resolver := ident.NewResolver(buildRegistry(nil))
	resolutions := resolver.Scan(text)

	if humanOutput {
		printIdentifiersHuman(resolutions)
		return nil
	}
	return outputJSON(buildIdentifiersResponse(resolutions))
}
