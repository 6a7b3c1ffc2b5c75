package main

import (
	"context"
	"fmt"

	"github.com/bibtools/bibfetch/internal/arxiv"
	"github.com/bibtools/bibfetch/internal/citations"
	"github.com/bibtools/bibfetch/internal/config"
	"github.com/bibtools/bibfetch/internal/crossref"
	"github.com/bibtools/bibfetch/internal/doi"
	"github.com/spf13/cobra"
)

var citedBackends []string

var citedCmd = &cobra.Command{
	Use:   "cited <file>",
	Short: "List the DOIs of the works a document cites",
	Long: `Extract the reference list of a document and resolve each entry to a
DOI: directly when the entry carries one, via the arXiv API for arXiv
identifiers, and through CrossRef bibliographic matching for the rest.
Pass an arXiv identifier to pull the bibliography from the paper's own
source bundle, or - to read plain text from stdin.

Example:
  bibfetch cited paper.pdf
  bibfetch cited arXiv:1506.06690
  bibfetch cited references.bbl --backends bbl`,
	Args: cobra.ExactArgs(1),
	RunE: runCited,
}

// CitedResponse is the JSON response of the cited command.
type CitedResponse struct {
	Backend   string              `json:"backend,omitempty"`
	Citations []crossref.Citation `json:"citations"`
	Count     int                 `json:"count"`
	Exhausted bool                `json:"exhausted,omitempty"`
	Attempts  []citations.Attempt `json:"attempts,omitempty"`
}

func init() {
	citedCmd.Flags().StringSliceVar(&citedBackends, "backends", nil, "Backend order (default from config)")
	rootCmd.AddCommand(citedCmd)
}

func runCited(cmd *cobra.Command, args []string) error {
	src, err := loadSource(args[0])
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	pipeline, err := buildPipeline(citedBackends)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	ctx := context.Background()
	result, err := pipeline.Extract(ctx, src)
	if err != nil {
		exitWithError(ExitError, "extracting citations: %v", err)
	}

	if result.Exhausted {
		if humanOutput {
			fmt.Println("No backend produced any entries.")
			return nil
		}
		return outputJSON(CitedResponse{
			Citations: []crossref.Citation{},
			Exhausted: true,
			Attempts:  result.Attempts,
		})
	}

	refs := make([]string, len(result.Entries))
	for i, e := range result.Entries {
		refs[i] = e.Text
	}

	var opts []crossref.ClientOption
	if mailto := config.GetCrossrefMailto(); mailto != "" {
		opts = append(opts, crossref.WithMailto(mailto))
	}
	citer := crossref.NewCiter(crossref.NewClient(opts...), doi.New(), arxiv.New())
	cited := citer.Cited(ctx, refs)

	if humanOutput {
		printCitedHuman(cited)
		return nil
	}
	return outputJSON(CitedResponse{
		Backend:   result.Backend,
		Citations: cited,
		Count:     len(cited),
	})
}

// printCitedHuman prints resolved citations in human-readable format.
func printCitedHuman(cited []crossref.Citation) {
	for i, c := range cited {
		fmt.Printf("%d. %s\n", i+1, truncateString(c.Text, ListTitleMaxLen))
		switch {
		case c.DOI != "" && c.Via == "crossref":
			fmt.Printf("   doi:%s (score %.1f)\n", c.DOI, c.Score)
		case c.DOI != "":
			fmt.Printf("   doi:%s\n", c.DOI)
		case c.ArXivID != "":
			fmt.Printf("   arXiv:%s\n", c.ArXivID)
		default:
			fmt.Println("   no match")
		}
	}
}
