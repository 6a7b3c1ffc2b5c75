package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var kindsCmd = &cobra.Command{
	Use:   "kinds",
	Short: "List the registered identifier kinds",
	Long: `List the identifier kinds bibfetch knows, in priority order. When two
kinds match text at the same offset, the earlier kind wins ties.`,
	Args: cobra.NoArgs,
	RunE: runKinds,
}

// KindsResponse is the JSON response of the kinds command.
type KindsResponse struct {
	Kinds []string `json:"kinds"`
}

func init() {
	rootCmd.AddCommand(kindsCmd)
}

func runKinds(cmd *cobra.Command, args []string) error {
	names := buildRegistry(nil).Names()

	if humanOutput {
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	}
	return outputJSON(KindsResponse{Kinds: names})
}
