// Package config manages user-level settings stored at ~/.hbpm/config.yaml
// and assembles the Runtime context that every component receives at
// construction. Values resolve in order: HBPM_* environment variables,
// config file keys, built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hbpm-labs/hbpm/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// DataDirName holds the catalog snapshot and external-sources files.
	DataDirName = "data"
	// LogDirName holds the CLI log files.
	LogDirName = "log"

	// DefaultRefreshInterval is how long a catalog snapshot stays fresh.
	DefaultRefreshInterval = 24 * time.Hour

	// DefaultDashboardDirName is the dashboard checkout under $HOME when
	// HBPM_DASHBOARD_ROOT is not set.
	DefaultDashboardDirName = "HomeBoard"

	// PluginsDirName is the directory under the dashboard root where
	// plugin working copies live.
	PluginsDirName = "plugins"
)

// Runtime carries every path and policy value the core components need.
// It is constructed once per invocation and passed in explicitly; there is
// no ambient mutable state behind it.
type Runtime struct {
	// DataDir is where the snapshot and external-sources files live.
	DataDir string
	// LogDir is where the CLI writes its log file.
	LogDir string
	// DashboardRoot is the dashboard installation directory.
	DashboardRoot string
	// PluginsRoot is DashboardRoot/plugins, where plugin clones live.
	PluginsRoot string
	// RefreshInterval is the catalog snapshot staleness threshold.
	RefreshInterval time.Duration
	// PM2ProcessName is the pm2 process controlling the dashboard.
	PM2ProcessName string
	// SelfName is the CLI's own name; it can never be an install candidate.
	SelfName string
}

// Dir returns the path to the config directory (~/.hbpm/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file (~/.hbpm/config.yaml).
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// NewRuntime assembles the Runtime context from the environment and config
// file. Load must have been called first.
func NewRuntime() (Runtime, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Runtime{}, fmt.Errorf("resolving home directory: %w", err)
	}

	dashboardRoot := viper.GetString("dashboard_root")
	if dashboardRoot == "" {
		dashboardRoot = filepath.Join(home, DefaultDashboardDirName)
	}

	refresh := DefaultRefreshInterval
	if v := viper.GetString("refresh_interval"); v != "" {
		parsed, parseErr := time.ParseDuration(v)
		if parseErr != nil {
			return Runtime{}, fmt.Errorf("parsing refresh_interval %q: %w", v, parseErr)
		}
		refresh = parsed
	}

	pm2Proc := viper.GetString("pm2_process_name")
	if pm2Proc == "" {
		pm2Proc = DefaultDashboardDirName
	}

	return Runtime{
		DataDir:         filepath.Join(Dir(), DataDirName),
		LogDir:          filepath.Join(Dir(), LogDirName),
		DashboardRoot:   dashboardRoot,
		PluginsRoot:     filepath.Join(dashboardRoot, PluginsDirName),
		RefreshInterval: refresh,
		PM2ProcessName:  pm2Proc,
		SelfName:        branding.CLIName(),
	}, nil
}

// EnvVars returns the HBPM environment variables and their effective values,
// for display by `hbpm env`.
func EnvVars(rt Runtime) map[string]string {
	return map[string]string{
		branding.EnvVar("DASHBOARD_ROOT"):   rt.DashboardRoot,
		branding.EnvVar("REFRESH_INTERVAL"): rt.RefreshInterval.String(),
		branding.EnvVar("PM2_PROCESS_NAME"): rt.PM2ProcessName,
	}
}
