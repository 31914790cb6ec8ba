// Package eval implements spec.md §4.5's auto-evaluator: once a fragment's
// missing names have been auto-imported, compile it with the chosen
// future-flags and either evaluate it (a single expression) or execute it
// (a sequence of statements) against the caller's bindings.
//
// The evaluator is a tree-walking interpreter over lang/ast directly, not a
// bytecode VM: auto_eval evaluates one interactive fragment at a time, so
// there is no repeated-execution workload to justify a compile step. It is
// grounded on lang/machine's Thread/Frame/EvalError runtime idiom (the
// teacher's bytecode interpreter used the same shapes to run compiled
// programs), adapted to walk the tree instead of dispatching opcodes. Its
// value domain is plain Go values (nil, bool, int64, float64, string,
// []interface{}, map[string]interface{}, plus lang/modules.Module and
// *Function) rather than lang/types' boxed Value hierarchy: auto_eval is a
// thin convenience around the host runtime's own eval/exec, and the host
// runtime here is Go itself, so native Go values are the natural value
// domain instead of re-deriving Lua-style boxing this grammar has no use
// for.
package eval

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// Thread carries the ambient I/O and cancellation context for one
// evaluation, mirroring lang/machine.Thread's Stdout/Stderr/Stdin fields.
type Thread struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	ctx context.Context
}

func (th *Thread) init(ctx context.Context) {
	if th.Stdout == nil {
		th.Stdout = os.Stdout
	}
	if th.Stderr == nil {
		th.Stderr = os.Stderr
	}
	if th.Stdin == nil {
		th.Stdin = os.Stdin
	}
	th.ctx = ctx
}

// frame records one level of the interpreter's call stack, used only to
// annotate EvalError with the enclosing frame's name, mirroring
// lang/machine.Frame.
type frame struct {
	name string
	pos  token.Pos
	up   *frame
}

// EvalError wraps an error raised while walking the tree, with the
// position it occurred at and the name of the innermost enclosing frame
// (empty at module level), matching spec.md §7's "evaluation errors ...
// raised to the caller unchanged" policy: errors.Unwrap still reaches the
// original cause.
type EvalError struct {
	Pos   token.Position
	Frame string
	Cause error
}

func (e *EvalError) Error() string {
	if e.Frame != "" {
		return fmt.Sprintf("%s: in %s: %s", e.Pos, e.Frame, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Cause)
}
func (e *EvalError) Unwrap() error { return e.Cause }

type interp struct {
	th            *Thread
	fset          *token.FileSet
	frame         *frame
	locals        map[string]interface{} // this frame's own bindings
	moduleGlobals map[string]interface{} // the module's writable frame, shared by every call frame
	globals       map[string]bool        // names declared `global` in the current function body
}

func (in *interp) errorAt(pos token.Pos, err error) error {
	p := token.Position{}
	if in.fset != nil {
		p = in.fset.Position(pos)
	}
	name := ""
	if in.frame != nil {
		name = in.frame.name
	}
	return &EvalError{Pos: p, Frame: name, Cause: err}
}

// EvalModule implements the compile-and-run half of auto_eval: if mod is a
// single expression statement, it is evaluated and its value returned;
// otherwise every statement is executed in order and nil is returned.
func EvalModule(ctx context.Context, mod *ast.Module, bindings scope.BindingsStack) (interface{}, error) {
	return EvalModuleWithThread(ctx, &Thread{}, token.NewFileSet(), mod, bindings)
}

// EvalModuleWithThread is EvalModule with an explicit Thread (I/O
// destinations) and FileSet (for error positions).
func EvalModuleWithThread(ctx context.Context, th *Thread, fset *token.FileSet, mod *ast.Module, bindings scope.BindingsStack) (interface{}, error) {
	th.init(ctx)
	locals := map[string]interface{}{}
	if len(bindings) > 0 {
		// bindings' last mapping is the one the specification treats as
		// writable (see scope.BindingsStack.BindWritable): that is the
		// module's own locals, where auto-imported names and top-level
		// assignments land.
		locals = bindings[len(bindings)-1]
	}
	in := &interp{th: th, fset: fset, locals: locals, moduleGlobals: locals, frame: &frame{name: "<module>"}}

	if len(mod.Body) == 1 {
		if es, ok := mod.Body[0].(*ast.ExprStmt); ok {
			return in.eval(bindings, es.X)
		}
	}
	for _, s := range mod.Body {
		if err := in.exec(bindings, s); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
