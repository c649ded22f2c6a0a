package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/logging"
	"github.com/cargotom-ls/cargotom-ls/internal/providerdaemon"
	"github.com/cargotom-ls/cargotom-ls/internal/registry"
	"github.com/cargotom-ls/cargotom-ls/internal/server"
)

var (
	serveOffline    bool
	serveRegistry   string
	serveIndexPath  string
	serveNoDaemon   bool
	serveLogPath    string
	serveLogVerbose bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	GroupID: "server",
	Short:   "Run the language server over stdio",
	Long: `Run the language server, speaking LSP over stdin/stdout. This is
the command an editor's language client invokes; it is not meant to be
run interactively.

By default, serve first tries to reach a shared Provider daemon (see
'cargotom-ls daemon'). If none is reachable within a short dial timeout,
it spawns one for later sessions to share and runs its own in-process
registry backend for this session.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveOffline, "offline", false, "never hit the network; serve from the local sqlite mirror only")
	serveCmd.Flags().StringVar(&serveRegistry, "registry", "https://index.crates.io", "sparse index base URL")
	serveCmd.Flags().StringVar(&serveIndexPath, "index", "", "path to the offline sqlite mirror (default: user config dir)")
	serveCmd.Flags().BoolVar(&serveNoDaemon, "no-daemon", false, "never use or start a shared Provider daemon; run a private in-process Provider")
	serveCmd.Flags().StringVar(&serveLogPath, "log-file", "", "log file path (default: per-user log directory)")
	serveCmd.Flags().BoolVar(&serveLogVerbose, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := logging.New(logging.Options{Path: serveLogPath, Verbose: serveLogVerbose})
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, cleanup, err := buildProvider(ctx, logger)
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	defer cleanup()

	srv := server.New(server.Options{
		Logger:    logger,
		Provider:  provider,
		UpdateAll: runCargoUpdate,
		OpenURL:   openInBrowser,
	})

	logger.Info("cargotom-ls starting", zap.String("version", Version))
	return srv.Run(ctx, stdioReadWriteCloser{})
}

// buildProvider connects to a shared Provider daemon when one is
// reachable, falling back to starting a private in-process Provider over
// an online or offline Backend. The daemon path is the common one: most
// editor sessions on a machine end up sharing the daemon's cache instead
// of each cold-starting their own.
func buildProvider(ctx context.Context, logger *zap.Logger) (*registry.Provider, func(), error) {
	if !serveNoDaemon {
		if reg, err := providerdaemon.NewRegistry(configDir()); err == nil {
			if client, ok, err := providerdaemon.Connect(reg, 500*time.Millisecond); err == nil && ok {
				logger.Info("connected to shared provider daemon")
				return registry.NewProvider(client), func() { client.Close() }, nil
			}
			if err := daemonAutostart(); err != nil {
				logger.Warn("failed to autostart provider daemon, running private provider instead", zap.Error(err))
			} else {
				logger.Info("spawned provider daemon for future sessions to share")
			}
		}
	}

	backend, cleanup, err := buildBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	return registry.NewProvider(backend), cleanup, nil
}

func buildBackend(ctx context.Context) (registry.Backend, func(), error) {
	if serveOffline {
		path := serveIndexPath
		if path == "" {
			path = defaultIndexPath()
		}
		backend, err := registry.OpenOfflineBackend(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open offline index: %w", err)
		}
		return backend, func() { backend.Close() }, nil
	}
	return registry.NewOnlineBackend(serveRegistry), func() {}, nil
}

// runCargoUpdate backs the "Update All" code action.
func runCargoUpdate(ctx context.Context, manifestDir string) error {
	cmd := exec.CommandContext(ctx, "cargo", "update")
	cmd.Dir = manifestDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("cargo update: %w: %s", err, out)
	}
	return nil
}

func openInBrowser(url string) error {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name, args = "open", []string{url}
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		name, args = "xdg-open", []string{url}
	}
	return exec.Command(name, args...).Start()
}

// stdioReadWriteCloser adapts os.Stdin/os.Stdout to io.ReadWriteCloser for
// the jsonrpc2 stream, matching the teacher's convention of never closing
// the process's actual stdio handles on a protocol-level Close.
type stdioReadWriteCloser struct{}

func (stdioReadWriteCloser) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriteCloser) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioReadWriteCloser) Close() error                { return nil }
