package providerdaemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cargotom-ls/cargotom-ls/internal/registry"
)

// Server hosts a single registry.Provider behind the loopback-TCP,
// length-prefixed framing protocol.Request/protocol.Response, so every
// editor instance on the machine shares one cache and one set of
// in-flight fetches (spec.md §5).
type Server struct {
	provider *registry.Provider
	logger   *zap.Logger
	reg      *Registry

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	listener net.Listener
	started  time.Time
}

// NewServer builds a daemon server over provider, persisting its
// discovery entry to reg once it starts listening.
func NewServer(provider *registry.Provider, reg *Registry, logger *zap.Logger) *Server {
	return &Server{
		provider: provider,
		logger:   logger,
		reg:      reg,
		conns:    make(map[net.Conn]struct{}),
	}
}

// Serve listens on loopback TCP (port 0 lets the OS choose a free port,
// recorded in the registry for clients to discover) and blocks until ctx
// is canceled or a client requests shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("providerdaemon: listen: %w", err)
	}
	s.listener = ln
	s.started = time.Now()

	if err := s.reg.Write(Entry{
		Addr:      ln.Addr().String(),
		PID:       os.Getpid(),
		Version:   serverVersion,
		StartedAt: s.started,
	}); err != nil {
		ln.Close()
		return fmt.Errorf("providerdaemon: register: %w", err)
	}

	s.logger.Info("provider daemon listening", zap.String("addr", ln.Addr().String()), zap.Int("pid", os.Getpid()))

	shutdown := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-shutdown:
			ln.Close()
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.reg.Clear()
				return nil
			default:
			}
			return fmt.Errorf("providerdaemon: accept: %w", err)
		}
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		go s.handleConn(conn, shutdown)
	}
}

func (s *Server) handleConn(conn net.Conn, shutdown chan struct{}) {
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var req Request
		if err := readFrame(conn, &req); err != nil {
			return
		}
		resp := s.dispatch(context.Background(), req)
		if err := writeFrame(conn, resp); err != nil {
			return
		}
		if req.Operation == OpShutdown {
			select {
			case <-shutdown:
			default:
				close(shutdown)
			}
			return
		}
	}
}

func (s *Server) dispatch(ctx context.Context, req Request) Response {
	switch req.Operation {
	case OpPing:
		return ok(req.ID, map[string]string{"status": "alive"})

	case OpShutdown:
		s.logger.Info("provider daemon shutting down by request")
		return ok(req.ID, nil)

	case OpLookup:
		var args LookupArgs
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return fail(req.ID, err)
		}
		res, err := s.provider.Lookup(ctx, args.Name)
		if err != nil {
			return fail(req.ID, err)
		}
		return ok(req.ID, res.Value)

	case OpVersions:
		var args LookupArgs
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return fail(req.ID, err)
		}
		res, err := s.provider.Versions(ctx, args.Name)
		if err != nil {
			return fail(req.ID, err)
		}
		return ok(req.ID, res.Value)

	case OpFeatures:
		var args FeaturesArgs
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return fail(req.ID, err)
		}
		res, err := s.provider.Features(ctx, args.Name, args.Version)
		if err != nil {
			return fail(req.ID, err)
		}
		return ok(req.ID, res.Value)

	case OpSearch:
		var args SearchArgs
		if err := json.Unmarshal(req.Args, &args); err != nil {
			return fail(req.ID, err)
		}
		res, err := s.provider.Search(ctx, args.Prefix, args.Page, args.PerPage)
		if err != nil {
			return fail(req.ID, err)
		}
		return ok(req.ID, res.Value)

	default:
		return fail(req.ID, fmt.Errorf("unknown operation %q", req.Operation))
	}
}

func ok(id uint64, payload any) Response {
	data, _ := json.Marshal(payload)
	return Response{ID: id, OK: true, Payload: data}
}

func fail(id uint64, err error) Response {
	return Response{ID: id, OK: false, Err: err.Error()}
}

// serverVersion is stamped into the registry entry for client compatibility
// checks; set at build time in cmd/cargotom-ls.
var serverVersion = "dev"

// SetVersion overrides the version string the server reports.
func SetVersion(v string) { serverVersion = v }
