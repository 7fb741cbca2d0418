// Package branding provides compile-time identity values for the CLI.
//
// Forkers edit branding.yaml in this package and rebuild; Go's //go:embed
// bakes the values into the binary.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName          string `yaml:"cli_name"`
	DisplayName      string `yaml:"display_name"`
	Description      string `yaml:"description"`
	HomeDir          string `yaml:"home_dir"`
	EnvPrefix        string `yaml:"env_prefix"`
	GoModule         string `yaml:"go_module"`
	GitHubRepo       string `yaml:"github_repo"`
	DashboardRepoURL string `yaml:"dashboard_repo_url"`
	PluginsWikiURL   string `yaml:"plugins_wiki_url"`
}

func load() {
	once.Do(func() {
		// Set hard defaults in case the embedded file is missing/empty.
		defaults = brand{
			CLIName:          "hbpm",
			DisplayName:      "HBPM",
			Description:      "Package manager for HomeBoard dashboard plugins",
			HomeDir:          ".hbpm",
			EnvPrefix:        "HBPM",
			GoModule:         "github.com/hbpm-labs/hbpm",
			GitHubRepo:       "hbpm-labs/hbpm",
			DashboardRepoURL: "https://github.com/HomeBoardOrg/HomeBoard",
			PluginsWikiURL:   "https://github.com/HomeBoardOrg/HomeBoard/wiki/3rd-party-plugins",
		}
		// Overlay with embedded YAML values.
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "hbpm").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name (e.g., "HBPM").
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".hbpm").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "HBPM").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Used by scripts, not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// GitHubRepo returns the "owner/repo" string for the CLI's own releases.
func GitHubRepo() string { load(); return defaults.GitHubRepo }

// DashboardRepoURL returns the upstream dashboard repository URL.
func DashboardRepoURL() string { load(); return defaults.DashboardRepoURL }

// PluginsWikiURL returns the community plugins wiki page that the catalog
// is scraped from.
func PluginsWikiURL() string { load(); return defaults.PluginsWikiURL }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("DASHBOARD_ROOT")
// → "HBPM_DASHBOARD_ROOT".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
