package server

import (
	"context"
	"encoding/json"
	"fmt"
)

// handleExecuteCommand runs the two commands code actions attach to the
// client side: opening a URL in the user's browser, and running `cargo
// update` for the workspace root. Both are side effects the stateless
// Analyzer never performs itself — UpdateAllFunc/OpenURLFunc are supplied
// by cmd/cargotom-ls at startup, matching spec.md §4.5's Open Question
// decision that "Update All" is a host callback, not an Analyzer action.
func (s *Server) handleExecuteCommand(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var p ExecuteCommandParams
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("server: decode executeCommand params: %w", err)
	}

	switch p.Command {
	case "cargotom-ls.openURL":
		if len(p.Arguments) == 0 {
			return nil, fmt.Errorf("server: cargotom-ls.openURL requires a URL argument")
		}
		url, ok := p.Arguments[0].(string)
		if !ok {
			return nil, fmt.Errorf("server: cargotom-ls.openURL argument must be a string")
		}
		if s.openURL == nil {
			return nil, fmt.Errorf("server: no URL opener configured")
		}
		return nil, s.openURL(url)

	case "cargotom-ls.updateAll":
		if s.updateAll == nil {
			return nil, fmt.Errorf("server: no update-all callback configured")
		}
		if s.rootPath == "" {
			return nil, fmt.Errorf("server: workspace root not initialized")
		}
		if err := s.updateAll(ctx, s.rootPath); err != nil {
			return nil, fmt.Errorf("server: cargo update: %w", err)
		}
		return nil, nil

	default:
		return nil, fmt.Errorf("server: unknown command %q", p.Command)
	}
}
