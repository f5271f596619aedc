package runtime

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

const sampleConfig = `
log_level = "debug"
max_depth = 8
max_array_length = 100
builtins = ["print", "assert"]

[globals]
name = "demo"
ratio = 0.5
ports = [80, 443]

[globals.limits]
retries = 3
`

func TestDecodeConfig(t *testing.T) {
	fc, err := DecodeConfig(strings.NewReader(sampleConfig))
	if err != nil {
		t.Fatal(err)
	}

	lvl, err := fc.Level()
	if err != nil || lvl != zapcore.DebugLevel {
		t.Errorf("Level() = %v, %v", lvl, err)
	}

	cfg, err := fc.Config(&Config{Engine: &engine.Config{MaxDepth: 2}})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.MaxDepth != 8 {
		t.Errorf("MaxDepth = %d, want 8", cfg.Engine.MaxDepth)
	}
	if cfg.Engine.MaxArrayLength != 100 {
		t.Errorf("MaxArrayLength = %d, want 100", cfg.Engine.MaxArrayLength)
	}
	if strings.Join(cfg.Builtins, ",") != "print,assert" {
		t.Errorf("Builtins = %v", cfg.Builtins)
	}

	want := map[string]value.Value{
		"name":   value.String("demo"),
		"ratio":  value.Number(0.5),
		"ports":  value.Array(value.Int(80), value.Int(443)),
		"limits": value.Map(map[string]value.Value{"retries": value.Int(3)}),
	}
	if len(cfg.Globals) != len(want) {
		t.Fatalf("Globals = %v", cfg.Globals)
	}
	for k, v := range want {
		if !cfg.Globals[k].Equal(v) {
			t.Errorf("Globals[%q] = %v, want %v", k, cfg.Globals[k], v)
		}
	}

	rt := newRuntime(t, cfg)
	got, err := rt.EvalValue(`name + ":" + limits.retries + ":" + ports.length`)
	if err != nil {
		t.Fatal(err)
	}
	if got.Text() != "demo:3:2" {
		t.Errorf("got %v", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	fc, err := DecodeConfig(strings.NewReader(""))
	if err != nil {
		t.Fatal(err)
	}
	lvl, err := fc.Level()
	if err != nil || lvl != zapcore.InfoLevel {
		t.Errorf("Level() = %v, %v", lvl, err)
	}
	cfg, err := fc.Config(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Builtins != nil || cfg.Globals != nil || cfg.Engine.MaxDepth != 0 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestConfigErrors(t *testing.T) {
	configErr := &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidData}

	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `log_level = `},
		{"level", `log_level = "loud"`},
		{"depth", `max_depth = -1`},
		{"array length", `max_array_length = -1`},
		{"timestamp", "[globals]\nwhen = 1979-05-27T07:32:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := DecodeConfig(strings.NewReader(tt.src))
			if err == nil {
				_, err = fc.Level()
			}
			if err == nil {
				_, err = fc.Config(nil)
			}
			if !stderrors.Is(err, configErr) {
				t.Errorf("got %v, want config error", err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duk.toml")
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if fc.MaxDepth != 8 || fc.LogLevel != "debug" {
		t.Errorf("got %+v", fc)
	}

	_, err = LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: got %v", err)
	}
}
