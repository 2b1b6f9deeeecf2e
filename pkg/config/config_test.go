package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/callscape/callscape/pkg/errors"
)

func TestDefaultLimits(t *testing.T) {
	l := DefaultLimits()
	if l.MaxNodes != DefaultMaxNodes || l.MaxEdges != DefaultMaxEdges {
		t.Errorf("defaults = %+v", l)
	}
	if err := l.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateRejectsNegatives(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Limits)
	}{
		{"non-positive max nodes", func(l *Limits) { l.MaxNodes = 0 }},
		{"non-positive max edges", func(l *Limits) { l.MaxEdges = -1 }},
		{"negative cycle limit", func(l *Limits) { l.CycleEdgeLimit = -1 }},
		{"negative min spacing", func(l *Limits) { l.MinSpacing = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := DefaultLimits()
			tt.mutate(&l)
			err := l.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

// MaxNodes above the hard cap is lowered silently, never honored.
func TestClampedHardCap(t *testing.T) {
	l := DefaultLimits()
	l.MaxNodes = 50000
	if got := l.Clamped().MaxNodes; got != HardNodeCap {
		t.Errorf("clamped max nodes = %d, want %d", got, HardNodeCap)
	}

	l.MaxNodes = 100
	if got := l.Clamped().MaxNodes; got != 100 {
		t.Errorf("values below the cap must pass through, got %d", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callscape.toml")
	content := `
[limits]
max_nodes = 300
min_spacing = 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if l.MaxNodes != 300 {
		t.Errorf("max nodes = %d, want 300", l.MaxNodes)
	}
	if l.MinSpacing != 50 {
		t.Errorf("min spacing = %d, want 50", l.MinSpacing)
	}
	// Fields absent from the file keep their defaults.
	if l.MaxEdges != DefaultMaxEdges {
		t.Errorf("max edges = %d, want default %d", l.MaxEdges, DefaultMaxEdges)
	}
}

func TestLoadFileClampsCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "callscape.toml")
	if err := os.WriteFile(path, []byte("[limits]\nmax_nodes = 99999\n"), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if l.MaxNodes != HardNodeCap {
		t.Errorf("max nodes = %d, want hard cap %d", l.MaxNodes, HardNodeCap)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("missing config file should error")
	}
}
