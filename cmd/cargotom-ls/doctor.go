package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/cargotom-ls/cargotom-ls/cmd/cargotom-ls/doctor"
	"github.com/cargotom-ls/cargotom-ls/internal/analyzer"
	"github.com/cargotom-ls/cargotom-ls/internal/config"
	"github.com/cargotom-ls/cargotom-ls/internal/manifest"
	"github.com/cargotom-ls/cargotom-ls/internal/providerdaemon"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/workspace"
)

var doctorPreviewHover string

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: "diagnose",
	Short:   "Check the local cargotom-ls setup",
	Long: `Runs the checks an editor integration can't easily surface itself:
whether cargo is on PATH, whether the current directory resolves to a
workspace, and whether a Provider daemon is reachable. Pass
--preview-hover <crate> to render this server's actual hover markdown in
the terminal, useful when debugging a formatting issue without an editor
open.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().StringVar(&doctorPreviewHover, "preview-hover", "", "render hover markdown for a crate name, as an editor would show it")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	var checks []doctor.Check

	if path, err := exec.LookPath("cargo"); err != nil {
		checks = append(checks, doctor.Check{Name: "cargo on PATH", Status: doctor.StatusWarn, Detail: "not found; 'Update All' and cargo-aware features won't work"})
	} else {
		checks = append(checks, doctor.Check{Name: "cargo on PATH", Status: doctor.StatusOK, Detail: path})
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if root, ok := workspace.Discover(cwd); ok {
		graph := workspace.Build(root)
		detail := root.Path
		if len(graph.Members) > 0 {
			detail = fmt.Sprintf("%s (%d workspace members)", root.Path, len(graph.Members))
		}
		checks = append(checks, doctor.Check{Name: "workspace discovery", Status: doctor.StatusOK, Detail: detail})
	} else {
		checks = append(checks, doctor.Check{Name: "workspace discovery", Status: doctor.StatusWarn, Detail: "no Cargo.toml found above " + cwd})
	}

	reg, err := providerdaemon.NewRegistry(configDir())
	if err == nil {
		if entry, found := reg.Read(); found {
			if client, err := providerdaemon.Dial(entry.Addr, time.Second); err == nil {
				pingErr := client.Ping()
				client.Close()
				if pingErr == nil {
					checks = append(checks, doctor.Check{Name: "provider daemon", Status: doctor.StatusOK, Detail: fmt.Sprintf("pid %d, %s", entry.PID, entry.Addr)})
				} else {
					checks = append(checks, doctor.Check{Name: "provider daemon", Status: doctor.StatusWarn, Detail: "registered but not responding"})
				}
			} else {
				checks = append(checks, doctor.Check{Name: "provider daemon", Status: doctor.StatusWarn, Detail: "registered but unreachable"})
			}
		} else {
			checks = append(checks, doctor.Check{Name: "provider daemon", Status: doctor.StatusWarn, Detail: "not running; serve will start one on demand"})
		}
	}

	if path, ok := configFileInUse(); ok {
		checks = append(checks, doctor.Check{Name: "config file", Status: doctor.StatusOK, Detail: path})
	} else {
		checks = append(checks, doctor.Check{Name: "config file", Status: doctor.StatusWarn, Detail: "none found; run 'cargotom-ls config init'"})
	}

	fmt.Print(doctor.Report(checks))

	if doctorPreviewHover != "" {
		return previewHover(doctorPreviewHover)
	}
	return nil
}

func configFileInUse() (string, bool) {
	if path, err := config.DefaultConfigPath(); err == nil {
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func previewHover(crateName string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	backend, cleanup, err := buildBackend(ctx)
	if err != nil {
		return err
	}
	defer cleanup()
	provider := registry.NewProvider(backend)

	doc := manifest.Parse(fmt.Sprintf("[dependencies]\n%s = \"*\"\n", crateName))
	offset := len("[dependencies]\n")
	hover, ok := analyzer.Hover(ctx, doc, offset, provider, config.Config{})
	if !ok {
		return fmt.Errorf("doctor: no hover content for %q (unknown crate?)", crateName)
	}

	rendered, err := doctor.RenderMarkdown(hover.Markdown)
	if err != nil {
		return err
	}
	fmt.Println(rendered)
	return nil
}
