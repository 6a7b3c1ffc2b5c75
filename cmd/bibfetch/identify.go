package main

import (
	"context"
	"errors"

	"github.com/bibtools/bibfetch/internal/doctext"
	"github.com/bibtools/bibfetch/internal/ident"
	"github.com/spf13/cobra"
)

var identifyMaxFetches int

var identifyCmd = &cobra.Command{
	Use:   "identify <file>",
	Short: "Find identifiers in a document and fetch their metadata",
	Long: `Find bibliographic identifiers (DOI, ISBN, arXiv, HAL) in a document
and fetch a metadata record for each distinct one. Lookups run
concurrently; a failed lookup reports its reason but never hides the
identifier. Pass - to read plain text from stdin.

Example:
  bibfetch identify paper.pdf
  echo "see arXiv:1506.06690 and 10.1000/xyz123" | bibfetch identify -`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	identifyCmd.Flags().IntVar(&identifyMaxFetches, "max-fetches", ident.DefaultMaxFetches, "Maximum concurrent metadata lookups")
	rootCmd.AddCommand(identifyCmd)
}

func runIdentify(cmd *cobra.Command, args []string) error {
	text, err := loadDocument(args[0])
	if err != nil {
		code := ExitError
		if errors.Is(err, doctext.ErrUnreadable) {
			code = ExitDataError
		}
		exitWithError(code, "%v", err)
	}

	c, err := openCache()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if c != nil {
		defer c.Close()
	}

	resolver := ident.NewResolver(buildRegistry(c), ident.WithMaxFetches(identifyMaxFetches))
	resolutions := resolver.Resolve(context.Background(), text)

	if humanOutput {
		printIdentifiersHuman(resolutions)
		return nil
	}
	return outputJSON(buildIdentifiersResponse(resolutions))
}
