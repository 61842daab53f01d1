package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jisaac01/health-stats/internal/model"
	"github.com/jisaac01/health-stats/internal/reader"
	"github.com/jisaac01/health-stats/internal/schema"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := newViper()
	v.Set("input", "health_stats.json")

	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Mode != model.ModeFaceted {
		t.Errorf("expected faceted mode, got %q", cfg.Mode)
	}
	if cfg.Format != "text" {
		t.Errorf("expected text format, got %q", cfg.Format)
	}
	if cfg.Discovery != schema.StrategyUnion {
		t.Errorf("expected union discovery, got %q", cfg.Discovery)
	}
	if cfg.OnBadLine != reader.PolicyAbort {
		t.Errorf("expected abort policy, got %q", cfg.OnBadLine)
	}
	if cfg.Width != 800 || cfg.Height != 0 {
		t.Errorf("unexpected size %vx%v", cfg.Width, cfg.Height)
	}
	if cfg.Debounce != 250*time.Millisecond {
		t.Errorf("expected 250ms debounce, got %v", cfg.Debounce)
	}
	if cfg.IsImage() {
		t.Error("text output is not an image")
	}
}

func TestLoadRequiresInput(t *testing.T) {
	_, err := Load(newViper())
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("expected ErrNoInput, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".healthplot.yaml")
	content := `input: /data/health_stats.json
mode: per-field
format: PNG
discovery: last
on_bad_line: skip
height: 600
debounce: 2s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Mode != model.ModePerField {
		t.Errorf("expected per-field mode, got %q", cfg.Mode)
	}
	if cfg.Format != "png" || !cfg.IsImage() {
		t.Errorf("expected png image output, got %q", cfg.Format)
	}
	if cfg.Out != "healthplot.png" {
		t.Errorf("expected default out healthplot.png, got %q", cfg.Out)
	}
	if cfg.Discovery != schema.StrategyLast || cfg.OnBadLine != reader.PolicySkip {
		t.Errorf("unexpected discovery/policy %q/%q", cfg.Discovery, cfg.OnBadLine)
	}
	if cfg.Height != 600 {
		t.Errorf("expected height 600, got %v", cfg.Height)
	}
	if cfg.Debounce != 2*time.Second {
		t.Errorf("expected 2s debounce, got %v", cfg.Debounce)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"mode", "pie"},
		{"format", "gif"},
		{"discovery", "first"},
		{"on_bad_line", "retry"},
		{"width", -1},
		{"height", -5},
	}

	for _, tt := range tests {
		v := newViper()
		v.Set("input", "health_stats.json")
		v.Set(tt.key, tt.value)
		if _, err := Load(v); err == nil {
			t.Errorf("expected error for %s=%v", tt.key, tt.value)
		}
	}
}

func TestMarshalYAML(t *testing.T) {
	v := newViper()
	v.Set("input", "health_stats.json")
	cfg, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}

	s := string(out)
	for _, want := range []string{"input: health_stats.json", "mode: faceted", "on_bad_line: abort", "debounce: 250ms"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected YAML to contain %q, got:\n%s", want, s)
		}
	}
}
