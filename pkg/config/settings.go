package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Source kinds.
const (
	SourceNotebook = "notebook"
	SourceREST     = "rest"
)

// Settings is the application configuration read from
// ~/.config/mtree/config.yaml and MTREE_* environment variables.
type Settings struct {
	DataDir  string          `mapstructure:"data_dir"`
	Page     string          `mapstructure:"page"`
	Language string          `mapstructure:"language"`
	Source   SourceSettings  `mapstructure:"source"`
	Preview  PreviewSettings `mapstructure:"preview"`
	Cache    CacheSettings   `mapstructure:"cache"`
}

// SourceSettings selects the item-fetch backend.
type SourceSettings struct {
	Kind    string `mapstructure:"kind"`
	Root    string `mapstructure:"root"`
	BaseURL string `mapstructure:"base_url"`
	Token   string `mapstructure:"token"`
}

// PreviewSettings configures filtered view URLs.
type PreviewSettings struct {
	BaseURL  string `mapstructure:"base_url"`
	ViewPath string `mapstructure:"view_path"`
	// LookupColumns are filtered by identifier instead of by value.
	LookupColumns []string `mapstructure:"lookup_columns"`
	Probe         bool     `mapstructure:"probe"`
}

// CacheSettings toggles the persisted item cache.
type CacheSettings struct {
	Enabled bool `mapstructure:"enabled"`
}

// DefaultDataDir returns the default location of the databases.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "mtree")
}

// ExpandHome expands a leading "~/" in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
