package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/bibtools/bibfetch/internal/citations"
	"github.com/bibtools/bibfetch/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration: config file path, citation backend
order, and remote service settings. Values come from
~/.config/bibfetch/config.yml (XDG_CONFIG_HOME aware), with environment
variables taking priority.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

// ConfigResponse is the JSON response of the config command. API keys are
// deliberately left out.
type ConfigResponse struct {
	Path           string   `json:"path"`
	Exists         bool     `json:"exists"`
	Backends       []string `json:"backends"`
	GrobidURL      string   `json:"grobid_url,omitempty"`
	CermineJar     string   `json:"cermine_jar,omitempty"`
	CermineURL     string   `json:"cermine_url,omitempty"`
	CrossrefMailto string   `json:"crossref_mailto,omitempty"`
	CachePath      string   `json:"cache_path,omitempty"`
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if _, err := config.LoadGlobalConfig(); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}

	path := config.GlobalConfigPath()
	_, statErr := os.Stat(path)

	resp := ConfigResponse{
		Path:           path,
		Exists:         statErr == nil,
		Backends:       config.GetBackends(),
		GrobidURL:      config.GetGrobidURL(),
		CermineJar:     config.GetCermineJar(),
		CermineURL:     config.GetCermineURL(),
		CrossrefMailto: config.GetCrossrefMailto(),
		CachePath:      config.GetCachePath(),
	}

	if humanOutput {
		printConfigHuman(resp)
		return nil
	}
	return outputJSON(resp)
}

func printConfigHuman(resp ConfigResponse) {
	fmt.Printf("config:          %s\n", resp.Path)
	fmt.Printf("backends:        %s\n", strings.Join(resp.Backends, ", "))
	fmt.Printf("grobid_url:      %s\n", valueOrDefault(resp.GrobidURL, citations.DefaultGrobidURL))
	if resp.CermineJar != "" {
		fmt.Printf("cermine_jar:     %s\n", resp.CermineJar)
	} else {
		fmt.Printf("cermine_url:     %s\n", valueOrDefault(resp.CermineURL, citations.DefaultCermineURL))
	}
	fmt.Printf("crossref_mailto: %s\n", valueOrDefault(resp.CrossrefMailto, "unset"))
	fmt.Printf("cache_path:      %s\n", valueOrDefault(resp.CachePath, "disabled"))

	if !resp.Exists {
		fmt.Println()
		fmt.Println(config.HelpfulConfigMessage())
	}
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def + " (default)"
	}
	return v
}
