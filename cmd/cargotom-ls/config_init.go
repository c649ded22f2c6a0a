package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cargotom-ls/cargotom-ls/internal/config"
)

var configInitLocal bool

var configCmd = &cobra.Command{
	Use:     "config",
	GroupID: "diagnose",
	Short:   "Inspect or create cargotom-ls configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a config file",
	Long: `Walks through the seven settings spec.md §4.6 recognizes and writes
them to a config.yaml, either in the per-user config directory (default)
or, with --local, in ./.cargotom-ls/config.yaml for a project-specific
override that takes precedence for anyone working in this checkout.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitLocal, "local", false, "write ./.cargotom-ls/config.yaml instead of the user config directory")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// configFile is the on-disk shape; snake_case keys match what internal/config
// reads from initializationOptions and environment variables alike.
type configFile struct {
	Offline             bool   `yaml:"offline"`
	StableVersion       bool   `yaml:"stable_version"`
	SortFormat          bool   `yaml:"sort_format"`
	PerPage             int    `yaml:"per_page"`
	FeatureDisplayMode  string `yaml:"feature_display_mode"`
	HideDocsInfoMessage bool   `yaml:"hide_docs_info_message"`
	Daemon              bool   `yaml:"daemon"`
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cf := configFile{PerPage: 25, FeatureDisplayMode: string(config.FeatureDisplayAll)}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Work offline only?").
				Description("Never contact crates.io; serve completions from the local sqlite mirror.").
				Value(&cf.Offline),
			huh.NewConfirm().
				Title("Prefer stable versions?").
				Description("Exclude pre-release versions from version completion and the 'newer version available' diagnostic.").
				Value(&cf.StableVersion),
			huh.NewConfirm().
				Title("Sort entries when formatting the manifest?").
				Value(&cf.SortFormat),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Feature hover display").
				Options(
					huh.NewOption("All features", string(config.FeatureDisplayAll)),
					huh.NewOption("Enabled features only", string(config.FeatureDisplayFeatures)),
					huh.NewOption("Unused optional dependencies only", string(config.FeatureDisplayUnusedOpt)),
				).
				Value(&cf.FeatureDisplayMode),
			huh.NewConfirm().
				Title("Hide the docs.rs info banner on hover?").
				Value(&cf.HideDocsInfoMessage),
			huh.NewConfirm().
				Title("Use the shared Provider daemon?").
				Description("Share one crates.io cache across every editor window on this machine.").
				Value(&cf.Daemon),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			fmt.Println("aborted")
			return nil
		}
		return fmt.Errorf("config init: %w", err)
	}

	path, err := configInitPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("config init: create directory: %w", err)
	}
	data, err := yaml.Marshal(cf)
	if err != nil {
		return fmt.Errorf("config init: encode yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return fmt.Errorf("config init: write %q: %w", path, err)
	}

	fmt.Printf("wrote %s\n", path)
	return nil
}

func configInitPath() (string, error) {
	if configInitLocal {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(cwd, ".cargotom-ls", "config.yaml"), nil
	}
	return config.DefaultConfigPath()
}
