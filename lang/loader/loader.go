// Package loader implements spec.md §4.3's symbol loader: resolving a
// dotted-path string (or, when allowed, an arbitrary expression) against a
// caller-provided bindings stack, importing the longest resolvable module
// prefix on demand.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/eval"
	"github.com/mna/pyflyby/lang/importdb"
	"github.com/mna/pyflyby/lang/modules"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// LoadSymbolError wraps any failure encountered while resolving a dotted
// path or evaluating an expression, preserving the original cause per
// spec.md §7 ("always chains the underlying cause for introspection").
type LoadSymbolError struct {
	Text  string
	Cause error
}

func (e *LoadSymbolError) Error() string {
	return fmt.Sprintf("load_symbol(%q): %s", e.Text, e.Cause)
}
func (e *LoadSymbolError) Unwrap() error { return e.Cause }

// LoadSymbol resolves text against bindings, per spec.md §4.3.
//
//   - If text is a dotted-path (an identifier, optionally followed by
//     `.name` segments, and nothing else), it is resolved by looking up the
//     head in bindings, then walking attributes one at a time. If
//     autoImport is set, a missing head or a missing intermediate attribute
//     triggers an import attempt via db before failing.
//   - Otherwise, text is parsed as an expression. If it turns out to be a
//     pure dotted path after all, dotted-path handling takes over;
//     otherwise, if allowEval is set, the auto-importer runs over it and it
//     is evaluated; if allowEval is not set, LoadSymbol fails.
//
// autoFlags controls the print-as-function retry (parser.Flags,
// spec.md §4.1/§7) when text must be parsed as an expression.
//
// Any failure is wrapped in *LoadSymbolError.
func LoadSymbol(ctx context.Context, text string, bindings scope.BindingsStack, db *importdb.DB, autoImport_, allowEval, autoFlags bool) (interface{}, error) {
	if parts, ok := splitDottedPath(text); ok {
		v, err := resolveDotted(ctx, parts, bindings, db, autoImport_)
		if err != nil {
			return nil, &LoadSymbolError{Text: text, Cause: err}
		}
		return v, nil
	}

	fset := token.NewFileSet()
	mod, err := parser.ParseModule(ctx, fset, "<load_symbol>", []byte(text), 0, autoFlags)
	if err != nil {
		return nil, &LoadSymbolError{Text: text, Cause: err}
	}
	if expr, ok := singleExprOf(mod); ok {
		if parts, ok := dottedPathExpr(expr); ok {
			v, err := resolveDotted(ctx, parts, bindings, db, autoImport_)
			if err != nil {
				return nil, &LoadSymbolError{Text: text, Cause: err}
			}
			return v, nil
		}
	}
	if !allowEval {
		return nil, &LoadSymbolError{Text: text, Cause: fmt.Errorf("not a dotted path and allow_eval is false")}
	}
	if _, err := autoimport.AutoImport(ctx, mod, bindings, autoimport.Options{DB: db}); err != nil {
		return nil, &LoadSymbolError{Text: text, Cause: err}
	}
	v, err := eval.EvalModule(ctx, mod, bindings)
	if err != nil {
		return nil, &LoadSymbolError{Text: text, Cause: err}
	}
	return v, nil
}

// splitDottedPath reports whether text is purely `ident(.ident)*`, and if
// so its parts.
func splitDottedPath(text string) ([]string, bool) {
	parts := strings.Split(text, ".")
	for _, p := range parts {
		if p == "" || !isIdent(p) {
			return nil, false
		}
	}
	return parts, true
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// singleExprOf reports whether mod's body is exactly one expression
// statement, returning it.
func singleExprOf(mod *ast.Module) (ast.Expr, bool) {
	if len(mod.Body) != 1 {
		return nil, false
	}
	es, ok := mod.Body[0].(*ast.ExprStmt)
	if !ok {
		return nil, false
	}
	return es.X, true
}

// dottedPathExpr reports the dotted parts of expr if it is a pure
// identifier-or-attribute-chain expression.
func dottedPathExpr(e ast.Expr) ([]string, bool) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return []string{n.Name}, true
	case *ast.AttributeExpr:
		parts, ok := dottedPathExpr(n.Value)
		if !ok {
			return nil, false
		}
		return append(parts, n.Attr.Name), true
	default:
		return nil, false
	}
}

// resolveDotted implements the actual head-then-attribute walk described in
// spec.md §4.3, including on-demand submodule import.
func resolveDotted(ctx context.Context, parts []string, bindings scope.BindingsStack, db *importdb.DB, autoImport_ bool) (interface{}, error) {
	head := parts[0]
	cur, ok := bindings.Get(head)
	if !ok {
		if !autoImport_ {
			return nil, fmt.Errorf("%s is not bound", head)
		}
		m, err := importHead(ctx, head, bindings, db)
		if err != nil {
			return nil, err
		}
		cur = m
	}

	resolvedPath := head
	for i := 1; i < len(parts); i++ {
		next := parts[i]
		v, err := getAttr(cur, next)
		if err != nil {
			if !autoImport_ {
				return nil, fmt.Errorf("%s.%s: %w", resolvedPath, next, err)
			}
			sub, ierr := modules.Import(resolvedPath + "." + next)
			if ierr != nil {
				return nil, fmt.Errorf("%s.%s: %w", resolvedPath, next, err)
			}
			v = sub
		}
		cur = v
		resolvedPath += "." + next
	}
	return cur, nil
}

// importHead resolves and binds the head identifier of a dotted path that
// isn't yet in bindings. When db has a matching entry, its statement text
// is parsed and executed exactly as lang/autoimport does (spec.md §4.4
// step 2) — a DB entry's statement is not always a literal `import <head>`
// (e.g. DefaultDB's "b64decode" -> "from base64 import b64decode"), so it
// must be executed rather than treated as a synonym for modules.Import(head).
// With no DB or no matching entry, head is imported directly as a module
// path, matching the DB-miss "silent, not an error" policy of spec.md §7.
func importHead(ctx context.Context, head string, bindings scope.BindingsStack, db *importdb.DB) (interface{}, error) {
	if db != nil {
		if stmts := db.Lookup(head); len(stmts) > 0 {
			for _, stmt := range stmts {
				if err := autoimport.ExecuteStatement(ctx, stmt, bindings); err != nil {
					return nil, err
				}
			}
			if v, ok := bindings.Get(head); ok {
				return v, nil
			}
		}
	}
	m, err := modules.Import(head)
	if err != nil {
		return nil, err
	}
	bindings.BindWritable(head, m)
	return m, nil
}

// getAttr resolves a single attribute step on an already-resolved value,
// capturing any panic from a misbehaving accessor as an error per spec.md
// §9's note that a user accessor may itself raise.
func getAttr(v interface{}, name string) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic resolving %s: %v", name, r)
		}
	}()
	ag, ok := v.(scope.Attributer)
	if !ok {
		return nil, fmt.Errorf("%T has no attributes", v)
	}
	attr, ok := ag.GetAttr(name)
	if !ok {
		return nil, fmt.Errorf("no attribute %q", name)
	}
	return attr, nil
}
