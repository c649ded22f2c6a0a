// Package config loads the server's seven recognized settings (spec.md
// §4.6) through a single viper instance, following the teacher's
// internal/config precedence walk: project config file, then user config
// directory, then environment variables, then whatever the editor sends
// in initializationOptions, which always wins.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// FeatureDisplayMode controls hover's feature-list layout.
type FeatureDisplayMode string

const (
	FeatureDisplayAll       FeatureDisplayMode = "All"
	FeatureDisplayFeatures  FeatureDisplayMode = "Features"
	FeatureDisplayUnusedOpt FeatureDisplayMode = "UnusedOpt"
)

// Config holds the seven recognized keys from spec.md §4.6.
type Config struct {
	Offline             bool
	StableVersion        bool
	SortFormat           bool
	PerPage              int
	FeatureDisplayMode   FeatureDisplayMode
	HideDocsInfoMessage  bool
	Daemon               bool
}

// Load builds a Config from (in ascending precedence): built-in defaults,
// a discovered config file, environment variables (`CARGOTOM_*`), and
// finally initializationOptions sent by the editor in the LSP `initialize`
// request (nil if running outside an editor, e.g. the `doctor` CLI).
func Load(initializationOptions map[string]any) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if path, ok := discoverConfigFile(); ok {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CARGOTOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("offline", false)
	v.SetDefault("stable_version", false)
	v.SetDefault("sort_format", false)
	v.SetDefault("feature_display_mode", string(FeatureDisplayAll))
	v.SetDefault("hide_docs_info_message", false)
	v.SetDefault("daemon", false)

	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read config file %q: %w", v.ConfigFileUsed(), err)
		}
	}

	for key, value := range initializationOptions {
		v.Set(normalizeKey(key), value)
	}

	mode := FeatureDisplayMode(v.GetString("feature_display_mode"))
	switch mode {
	case FeatureDisplayAll, FeatureDisplayFeatures, FeatureDisplayUnusedOpt:
	default:
		mode = FeatureDisplayAll
	}

	perPage := 25
	if v.IsSet("per_page") {
		perPage = v.GetInt("per_page")
	} else if v.IsSet("per_page_web") {
		perPage = v.GetInt("per_page_web")
	}
	if perPage <= 0 {
		perPage = 25
	}

	return Config{
		Offline:             v.GetBool("offline"),
		StableVersion:       v.GetBool("stable_version"),
		SortFormat:          v.GetBool("sort_format"),
		PerPage:             perPage,
		FeatureDisplayMode:  mode,
		HideDocsInfoMessage: v.GetBool("hide_docs_info_message"),
		Daemon:              v.GetBool("daemon"),
	}, nil
}

// normalizeKey accepts either snake_case (the wire format editors send)
// or kebab-case (what a hand-edited config file is likely to use) and
// folds both onto the snake_case keys Load reads.
func normalizeKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}

// discoverConfigFile walks upward from the current directory looking for
// a project-local config, then falls back to the user config directory,
// matching the teacher's three-tier search (project > XDG config > home).
func discoverConfigFile() (string, bool) {
	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			path := filepath.Join(dir, ".cargotom-ls", "config.yaml")
			if _, err := os.Stat(path); err == nil {
				return path, true
			}
		}
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(configDir, "cargotom-ls", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}

	return "", false
}

// DefaultConfigPath returns where `config init` should write a new config
// file when the user hasn't requested a project-local one.
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, "cargotom-ls", "config.yaml"), nil
}
