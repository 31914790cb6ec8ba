package eval

import (
	"context"
	"fmt"

	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// Options configures AutoEval.
type Options struct {
	AutoImport autoimport.Options

	// Flags is the future-feature bitmask spec.md §6's "Flags argument"
	// describes (an integer bitmask, e.g. parser.FlagPrintFunction, or a
	// symbolic name resolved via parser.ParseFlag). The zero value selects
	// legacy parsing.
	Flags parser.Flags

	// NoAutoFlags disables the auto_flags retry-on-syntax-error behavior
	// spec.md §4.5 and §7 describe. Spec.md's auto_eval defaults
	// auto_flags=true, so the zero value here (false) keeps the retry on.
	NoAutoFlags bool

	Thread *Thread
}

// AutoEval implements spec.md §4.5 end to end: parse src, run the
// auto-importer over the parsed fragment so every missing name it can
// resolve is bound first, then evaluate (or execute) the fragment against
// bindings. Parse errors are returned unwrapped. Evaluation errors are
// mostly an *EvalError; a few (e.g. a missing required argument, or a value
// that cannot be unpacked into a tuple target) are returned as plain errors.
func AutoEval(ctx context.Context, name string, src []byte, bindings scope.BindingsStack, opts Options) (interface{}, error) {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(ctx, fset, name, src, opts.Flags, !opts.NoAutoFlags)
	if err != nil {
		return nil, err
	}

	if _, err := autoimport.AutoImport(ctx, mod, bindings, opts.AutoImport); err != nil {
		return nil, fmt.Errorf("auto_eval: auto-import %s: %w", name, err)
	}

	th := opts.Thread
	if th == nil {
		th = &Thread{}
	}
	return EvalModuleWithThread(ctx, th, fset, mod, bindings)
}
