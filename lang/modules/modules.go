// Package modules is a small, in-process simulation of the handful of host
// modules the auto-importer and auto-evaluator need to exercise end to end
// without a real dynamic-language runtime backing them: os, os.path,
// base64, json and __future__. Each simulated module implements
// lang/scope's Attributer interface, so the scope analyzer can verify a
// deep dotted reference like os.path.join resolves instead of reporting
// the whole chain missing once only os itself is known to be bound.
package modules

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
)

// Module is a bare-bones stand-in for an imported module object: a name and
// a flat attribute map, possibly holding nested *Module values for
// sub-packages (os.path is reached as an attribute of os, for instance).
type Module struct {
	Name  string
	Attrs map[string]interface{}
}

// GetAttr implements lang/scope.Attributer.
func (m *Module) GetAttr(name string) (interface{}, bool) {
	v, ok := m.Attrs[name]
	return v, ok
}

func (m *Module) String() string { return fmt.Sprintf("<module %q>", m.Name) }

// ErrNotFound is the sentinel cause wrapped by Import when no simulated
// module matches the requested dotted path.
var ErrNotFound = errors.New("module not found")

// registry maps every importable dotted path (not just top-level module
// names) to its Module, so Import can resolve "os.path" directly as well
// as via attribute access on the already-imported "os" module.
var registry = map[string]*Module{}

func register(m *Module) { registry[m.Name] = m }

func init() {
	osPath := &Module{Name: "os.path", Attrs: map[string]interface{}{
		"join":     path.Join,
		"basename": path.Base,
		"dirname":  path.Dir,
		"exists": func(p string) bool {
			_, err := os.Stat(p)
			return err == nil
		},
		"sep": string(os.PathSeparator),
	}}
	register(osPath)

	register(&Module{Name: "os", Attrs: map[string]interface{}{
		"path": osPath,
		"sep":  string(os.PathSeparator),
		"getcwd": func() (string, error) {
			return os.Getwd()
		},
		"environ": osEnviron(),
	}})

	register(&Module{Name: "base64", Attrs: map[string]interface{}{
		"b64encode": func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		},
		"b64decode": func(s string) (string, error) {
			b, err := base64.StdEncoding.DecodeString(s)
			return string(b), err
		},
	}})

	register(&Module{Name: "json", Attrs: map[string]interface{}{
		"dumps": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"loads": func(s string) (interface{}, error) {
			var v interface{}
			err := json.Unmarshal([]byte(s), &v)
			return v, err
		},
	}})

	register(&Module{Name: "__future__", Attrs: map[string]interface{}{
		"print_function": true,
	}})
}

func osEnviron() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		for i := range kv {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return env
}

// Import returns the simulated module registered at the given dotted path
// (e.g. "os" or "os.path"), or a *ModuleError wrapping ErrNotFound.
func Import(dottedPath string) (*Module, error) {
	if m, ok := registry[dottedPath]; ok {
		return m, nil
	}
	return nil, &ModuleError{Path: dottedPath, Cause: ErrNotFound}
}

// ModuleError reports a failure to import dottedPath, chaining Cause for
// introspection per the target runtime's exception-chaining convention.
type ModuleError struct {
	Path  string
	Cause error
}

func (e *ModuleError) Error() string { return fmt.Sprintf("import %s: %s", e.Path, e.Cause) }
func (e *ModuleError) Unwrap() error { return e.Cause }
