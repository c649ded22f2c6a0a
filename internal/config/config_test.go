package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PerPage != 25 {
		t.Fatalf("expected default per_page 25, got %d", cfg.PerPage)
	}
	if cfg.FeatureDisplayMode != FeatureDisplayAll {
		t.Fatalf("expected default feature display mode All, got %q", cfg.FeatureDisplayMode)
	}
	if cfg.Daemon {
		t.Fatalf("expected daemon default false")
	}
}

func TestLoadInitializationOptionsOverrideDefaults(t *testing.T) {
	cfg, err := Load(map[string]any{
		"offline":        true,
		"per_page_web":   50,
		"daemon":         true,
		"sort_format":    true,
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Offline || !cfg.Daemon || !cfg.SortFormat {
		t.Fatalf("expected overrides to apply: %+v", cfg)
	}
	if cfg.PerPage != 50 {
		t.Fatalf("expected per_page_web fallback to populate PerPage, got %d", cfg.PerPage)
	}
}

func TestLoadUnrecognizedFeatureDisplayModeFallsBackToAll(t *testing.T) {
	cfg, err := Load(map[string]any{"feature_display_mode": "Bogus"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.FeatureDisplayMode != FeatureDisplayAll {
		t.Fatalf("expected fallback to All, got %q", cfg.FeatureDisplayMode)
	}
}
