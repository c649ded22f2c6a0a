// Command cargotom-ls is a language server for Cargo.toml: completion,
// hover, diagnostics, code actions and inlay hints backed by crates.io
// (or an offline sqlite mirror) and the enclosing cargo workspace.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is overridden by ldflags at build time.
var (
	Version = "0.1.0"
	Commit  = ""
)

var rootCmd = &cobra.Command{
	Use:   "cargotom-ls",
	Short: "Language server for Cargo.toml manifests",
	Long: `cargotom-ls speaks the Language Server Protocol over stdio and
understands Cargo.toml: dependency completion and hover against crates.io,
the nine manifest diagnostics rules, workspace-aware inheritance, and
inlay hints showing a dependency's lockfile-resolved version.

Run it from an editor (it expects initialize/initialized over stdio), or
use the 'doctor' subcommand to check your local setup from a terminal.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "server", Title: "Server:"},
		&cobra.Group{ID: "diagnose", Title: "Diagnose:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
