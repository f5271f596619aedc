package runtime

import (
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/wippyai/duk-runtime/engine"
	"github.com/wippyai/duk-runtime/errors"
	"github.com/wippyai/duk-runtime/value"
)

// Host is the interface for struct-based host modules.
// Exported methods with the engine.Func signature are registered as host
// functions; other methods are ignored.
type Host interface {
	// Namespace returns the global object the functions are attached to.
	// An empty namespace registers them as global functions.
	Namespace() string
}

// ExplicitRegistrar allows hosts to provide exact script names when the
// automatic PascalCase-to-camelCase conversion doesn't apply.
type ExplicitRegistrar interface {
	Register() map[string]engine.Func
}

type HostRegistry struct {
	funcs   map[string]map[string]engine.Func
	pending map[string]map[string]bool
	mu      sync.RWMutex
}

func NewHostRegistry() *HostRegistry {
	return &HostRegistry{
		funcs:   make(map[string]map[string]engine.Func),
		pending: make(map[string]map[string]bool),
	}
}

var funcType = reflect.TypeOf((func(*engine.Invocation[engine.NoData]) (value.Value, error))(nil))

func (r *HostRegistry) RegisterHost(h Host) error {
	if h == nil {
		return errors.NilPointer(errors.PhaseRegister, nil, "runtime.Host")
	}
	ns := h.Namespace()

	var funcs map[string]engine.Func
	if er, ok := h.(ExplicitRegistrar); ok {
		funcs = er.Register()
	} else {
		funcs = extractMethods(h)
	}
	if len(funcs) == 0 {
		return errors.Registration("host", reflect.TypeOf(h).String(),
			errors.InvalidInput(errors.PhaseRegister, "host exposes no functions"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, fn := range funcs {
		if err := r.add(ns, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (r *HostRegistry) RegisterFunc(namespace, name string, fn engine.Func) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.add(namespace, name, fn)
}

func (r *HostRegistry) add(namespace, name string, fn engine.Func) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "function name cannot be empty")
	}
	if fn == nil {
		return errors.Registration("function", name, errors.NilPointer(errors.PhaseRegister, nil, "engine.Func"))
	}
	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]engine.Func)
	}
	r.funcs[namespace][name] = fn
	if r.pending[namespace] == nil {
		r.pending[namespace] = make(map[string]bool)
	}
	r.pending[namespace][name] = true
	return nil
}

// Namespaces returns the registered namespaces in sorted order. The global
// namespace is the empty string.
func (r *HostRegistry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Funcs returns the function names of namespace in sorted order.
func (r *HostRegistry) Funcs(namespace string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs[namespace]))
}

// Bind exposes every function added or replaced since the last Bind on e.
// Functions bound earlier keep their existing script objects.
func (r *HostRegistry) Bind(e *engine.Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ns := range slices.Sorted(maps.Keys(r.pending)) {
		funcs := make(map[string]engine.Func, len(r.pending[ns]))
		for name := range r.pending[ns] {
			funcs[name] = r.funcs[ns][name]
		}
		if ns != "" {
			if err := e.RegisterNamespace(ns, funcs); err != nil {
				return err
			}
		} else {
			for _, name := range slices.Sorted(maps.Keys(funcs)) {
				if err := e.RegisterFunc(name, funcs[name]); err != nil {
					return err
				}
			}
		}
		delete(r.pending, ns)
	}
	return nil
}

func extractMethods(h Host) map[string]engine.Func {
	rv := reflect.ValueOf(h)
	rt := rv.Type()

	funcs := make(map[string]engine.Func)
	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" {
			continue
		}
		bound := rv.Method(i)
		if bound.Type() != funcType {
			continue
		}
		fn := bound.Interface().(func(*engine.Invocation[engine.NoData]) (value.Value, error))
		funcs[toCamelCase(method.Name)] = fn
	}
	return funcs
}

// toCamelCase lowers the leading word of a PascalCase name.
// Handles acronyms: HTTPGet -> httpGet, ID -> id, GetURL -> getURL
func toCamelCase(s string) string {
	runes := []rune(s)
	if len(runes) == 0 || !unicode.IsUpper(runes[0]) {
		return s
	}

	end := 1
	for end < len(runes) && unicode.IsUpper(runes[end]) {
		end++
	}
	// Last uppercase before lowercase starts next word, not part of acronym
	if end > 1 && end < len(runes) && unicode.IsLower(runes[end]) {
		end--
	}

	var b strings.Builder
	for _, r := range runes[:end] {
		b.WriteRune(unicode.ToLower(r))
	}
	b.WriteString(string(runes[end:]))
	return b.String()
}
