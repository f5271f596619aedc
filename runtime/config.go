package runtime

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// FileConfig is the TOML form of a runtime configuration.
//
//	log_level = "debug"
//	max_depth = 16
//	max_array_length = 65536
//	builtins  = ["print", "console"]
//
//	[globals]
//	name = "demo"
//	limits = { retries = 3 }
type FileConfig struct {
	LogLevel       string         `toml:"log_level"`
	MaxDepth       int            `toml:"max_depth"`
	MaxArrayLength int            `toml:"max_array_length"`
	Builtins       []string       `toml:"builtins"`
	Globals        map[string]any `toml:"globals"`
}

// LoadConfig parses the TOML file at path.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("cannot read "+path, err)
	}
	var fc FileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Load("parse error in "+path, err)
	}
	return &fc, nil
}

// DecodeConfig parses TOML from r.
func DecodeConfig(r io.Reader) (*FileConfig, error) {
	var fc FileConfig
	if _, err := toml.NewDecoder(r).Decode(&fc); err != nil {
		return nil, errors.Load("parse error", err)
	}
	return &fc, nil
}

// Level returns the configured log level, info when unset.
func (fc *FileConfig) Level() (zapcore.Level, error) {
	if fc.LogLevel == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(fc.LogLevel)
	if err != nil {
		return lvl, errors.Load("log_level", err)
	}
	return lvl, nil
}

// Config converts fc into a runtime configuration on top of base, which
// may be nil. Globals go through value.Of.
func (fc *FileConfig) Config(base *Config) (*Config, error) {
	var c Config
	if base != nil {
		c = *base
	}

	var ec engine.Config
	if c.Engine != nil {
		ec = *c.Engine
	}
	if fc.MaxDepth < 0 {
		return nil, errors.Load("max_depth", errors.InvalidInput(errors.PhaseConfig, "must not be negative"))
	}
	if fc.MaxDepth > 0 {
		ec.MaxDepth = fc.MaxDepth
	}
	if fc.MaxArrayLength < 0 {
		return nil, errors.Load("max_array_length", errors.InvalidInput(errors.PhaseConfig, "must not be negative"))
	}
	if fc.MaxArrayLength > 0 {
		ec.MaxArrayLength = fc.MaxArrayLength
	}
	c.Engine = &ec

	if fc.Builtins != nil {
		c.Builtins = fc.Builtins
	}

	if len(fc.Globals) > 0 {
		globals := make(map[string]value.Value, len(c.Globals)+len(fc.Globals))
		for k, v := range c.Globals {
			globals[k] = v
		}
		for k, raw := range fc.Globals {
			v, err := value.Of(raw)
			if err != nil {
				return nil, errors.Load("globals."+k, err)
			}
			globals[k] = v
		}
		c.Globals = globals
	}
	return &c, nil
}
