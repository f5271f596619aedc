package runtime

import (
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/duk-runtime/builtins"
	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// Config describes a runtime. A nil *Config selects the defaults.
type Config struct {
	// Engine configures the underlying heap.
	Engine *engine.Config

	// Builtins lists the builtins to install. Nil installs builtins.All,
	// an empty non-nil slice installs none.
	Builtins []string

	// Globals are set on the heap before any script runs.
	Globals map[string]value.Value

	// Stdout receives print output. Defaults to os.Stdout.
	Stdout io.Writer
}

type Runtime struct {
	engine *engine.Engine
	hosts  *HostRegistry
	log    *zap.Logger
}

func New(cfg *Config) (*Runtime, error) {
	var c Config
	if cfg != nil {
		c = *cfg
	}

	eng, err := engine.NewWithConfig(c.Engine)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseRuntime, errors.KindNotInitialized, err, "create engine")
	}
	r := &Runtime{
		engine: eng,
		hosts:  NewHostRegistry(),
		log:    eng.Logger(),
	}

	if c.Builtins == nil || len(c.Builtins) > 0 {
		err = builtins.Install(eng, &builtins.Options{Names: c.Builtins, Stdout: c.Stdout})
		if err != nil {
			_ = eng.Close()
			return nil, err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(c.Globals)) {
		if err := eng.SetGlobal(name, c.Globals[name]); err != nil {
			_ = eng.Close()
			return nil, err
		}
	}

	return r, nil
}

// Close destroys the heap. The runtime cannot be used afterwards.
func (r *Runtime) Close() error {
	return r.engine.Close()
}

// Engine returns the underlying engine, e.g. for engine.RegisterObject.
func (r *Runtime) Engine() *engine.Engine {
	return r.engine
}

// RegisterHost registers the functions of h. They become visible to scripts
// on the next Eval, EvalValue or RunFile.
// Method names are converted from PascalCase to camelCase (GetValue -> getValue).
func (r *Runtime) RegisterHost(h Host) error {
	return r.hosts.RegisterHost(h)
}

// RegisterFunc registers fn as namespace.name, or as a global function when
// namespace is empty.
func (r *Runtime) RegisterFunc(namespace, name string, fn engine.Func) error {
	return r.hosts.RegisterFunc(namespace, name, fn)
}

func (r *Runtime) Hosts() *HostRegistry {
	return r.hosts
}

// Eval runs src as global code.
func (r *Runtime) Eval(src string) error {
	if err := r.hosts.Bind(r.engine); err != nil {
		return err
	}
	return r.engine.Eval(src)
}

// EvalValue runs src and returns the completion value.
func (r *Runtime) EvalValue(src string) (value.Value, error) {
	if err := r.hosts.Bind(r.engine); err != nil {
		return value.Absent(), err
	}
	return r.engine.EvalValue(src)
}

// RunFile reads and runs the script at path. Errors report the base name of
// the file as their location.
func (r *Runtime) RunFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.PhaseEval, errors.KindNotFound, err, "read script "+path)
	}
	return r.RunScript(filepath.Base(path), src)
}

// RunScript runs src, attributing errors to filename.
func (r *Runtime) RunScript(filename string, src []byte) error {
	if err := r.hosts.Bind(r.engine); err != nil {
		return err
	}
	r.log.Debug("running script", zap.String("file", filename), zap.Int("size", len(src)))
	return r.engine.EvalWithOptions(string(src), &engine.EvalOptions{Filename: filename})
}
