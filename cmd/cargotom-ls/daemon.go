package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/logging"
	"github.com/cargotom-ls/cargotom-ls/internal/providerdaemon"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
)

var daemonCmd = &cobra.Command{
	Use:     "daemon",
	GroupID: "server",
	Short:   "Manage the shared Provider daemon",
	Long: `The Provider daemon hosts one registry.Provider behind a loopback
socket so every editor window on the machine shares one crates.io cache
and one set of in-flight requests, instead of each 'serve' process
cold-starting its own (spec.md §5). 'serve' starts one automatically on
first use; these subcommands are for inspecting or controlling it by
hand.`,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a Provider daemon is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providerdaemon.NewRegistry(configDir())
		if err != nil {
			return err
		}
		entry, found := reg.Read()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		defer w.Flush()
		if !found {
			fmt.Fprintln(w, "status:\tnot running")
			return nil
		}
		client, err := providerdaemon.Dial(entry.Addr, time.Second)
		alive := err == nil
		if alive {
			alive = client.Ping() == nil
			client.Close()
		}
		status := "running"
		if !alive {
			status = "registered, unreachable"
		}
		fmt.Fprintf(w, "status:\t%s\n", status)
		fmt.Fprintf(w, "pid:\t%d\n", entry.PID)
		fmt.Fprintf(w, "addr:\t%s\n", entry.Addr)
		fmt.Fprintf(w, "version:\t%s\n", entry.Version)
		fmt.Fprintf(w, "started:\t%s\n", entry.StartedAt.Format(time.RFC3339))
		return nil
	},
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running Provider daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := providerdaemon.NewRegistry(configDir())
		if err != nil {
			return err
		}
		entry, found := reg.Read()
		if !found {
			fmt.Println("no daemon registered")
			return nil
		}
		client, err := providerdaemon.Dial(entry.Addr, time.Second)
		if err != nil {
			reg.Clear()
			fmt.Println("daemon was unreachable; registry entry cleared")
			return nil
		}
		defer client.Close()
		if err := client.Shutdown(); err != nil {
			return fmt.Errorf("daemon: shutdown: %w", err)
		}
		fmt.Println("daemon stopped")
		return nil
	},
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the Provider daemon in the foreground",
	Long: `Starts the Provider daemon and blocks until interrupted. Most users
never run this directly — 'serve' spawns a detached daemon automatically
on first connect when --no-daemon isn't set (see daemonAutostart).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemonForeground()
	},
}

func init() {
	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd, daemonStartCmd)
	rootCmd.AddCommand(daemonCmd)
}

func runDaemonForeground() error {
	logger, err := logging.New(logging.Options{Path: serveLogPath, Verbose: serveLogVerbose})
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()
	backend, cleanup, err := buildBackend(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	provider := registry.NewProvider(backend)
	provider.OnDegrade(func(name string, err error) {
		logger.Warn("serving stale data after exhausting retries", zap.String("crate", name), zap.Error(err))
	})

	reg, err := providerdaemon.NewRegistry(configDir())
	if err != nil {
		return err
	}
	providerdaemon.SetVersion(Version)

	srv := providerdaemon.NewServer(provider, reg, logger)
	return srv.Serve(ctx)
}

// daemonAutostart spawns a detached 'cargotom-ls daemon start' process
// when no daemon answers the registry's dial check, so the first editor
// window to run 'serve' in a session pays the daemon's startup cost for
// every window that follows.
func daemonAutostart() error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	cmd := exec.Command(exe, "daemon", "start")
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Start()
}
