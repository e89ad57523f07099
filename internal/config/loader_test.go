package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/go-g2p/internal/config"
)

func TestLoadFromReader_Full(t *testing.T) {
	t.Parallel()
	yaml := `
mode: transpose
separator: " | "
encoding: UTF-8
log_level: debug
variants:
  mass: 0.9
  number: 5
engine:
  model: g2p.onnx
  vocabulary: g2p.vocab
  pool_size: 2
  beam: 4
  max_hypotheses: 16
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Mode != "transpose" {
		t.Errorf("Mode = %q, want transpose", cfg.Mode)
	}
	if cfg.Separator == nil || *cfg.Separator != " | " {
		t.Errorf("Separator = %v, want \" | \"", cfg.Separator)
	}
	if cfg.Variants.Mass != 0.9 || cfg.Variants.Number != 5 {
		t.Errorf("Variants = %+v", cfg.Variants)
	}
	if cfg.Engine.PoolSize != 2 || cfg.Engine.Beam != 4 || cfg.Engine.MaxHypotheses != 16 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
	if cfg.LogLevel.Level() != slog.LevelDebug {
		t.Errorf("Level = %v, want debug", cfg.LogLevel.Level())
	}
}

func TestLoadFromReader_Empty(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Separator != nil {
		t.Error("unset separator should stay nil")
	}
	if cfg.LogLevel.Level() != slog.LevelInfo {
		t.Errorf("default level = %v, want info", cfg.LogLevel.Level())
	}
}

func TestLoadFromReader_EmptySeparatorKept(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(`separator: ""`))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}
	if cfg.Separator == nil || *cfg.Separator != "" {
		t.Errorf("Separator = %v, want explicit empty string", cfg.Separator)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	_, err := config.LoadFromReader(strings.NewReader("sentence_separator: x\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		yaml string
		want []string
	}{
		{
			name: "bad mode",
			yaml: "mode: paragraph\n",
			want: []string{"mode"},
		},
		{
			name: "bad log level",
			yaml: "log_level: loud\n",
			want: []string{"log_level"},
		},
		{
			name: "negative variants",
			yaml: "variants:\n  mass: -1\n  number: -2\n",
			want: []string{"variants.mass", "variants.number"},
		},
		{
			name: "two engines",
			yaml: "engine:\n  fake: s.txt\n  model: m.onnx\n  vocabulary: v\n",
			want: []string{"mutually exclusive"},
		},
		{
			name: "model without vocabulary",
			yaml: "engine:\n  model: m.onnx\n",
			want: []string{"engine.vocabulary"},
		},
		{
			name: "negative engine sizes",
			yaml: "engine:\n  pool_size: -1\n  beam: -1\n  max_hypotheses: -1\n",
			want: []string{"pool_size", "beam", "max_hypotheses"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.LoadFromReader(strings.NewReader(tt.yaml))
			if err == nil {
				t.Fatal("expected validation error")
			}
			for _, w := range tt.want {
				if !strings.Contains(err.Error(), w) {
					t.Errorf("error should mention %q, got: %v", w, err)
				}
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "g2p.yaml")
	if err := os.WriteFile(path, []byte("mode: word\nengine:\n  fake: sample.txt\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != "word" || cfg.Engine.Fake != "sample.txt" {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
