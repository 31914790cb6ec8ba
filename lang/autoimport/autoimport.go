// Package autoimport implements spec.md §4.4's auto-importer: it runs the
// scope analyzer over a fragment, looks up each missing name's head
// identifier in an ImportDB, executes the matching import statements
// against the caller's bindings, and reports every action (or failure) to
// a log stream.
package autoimport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/importdb"
	"github.com/mna/pyflyby/lang/modules"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
)

// DefaultPrefix is the log line prefix used when Options.Prefix is empty.
const DefaultPrefix = "[PYFLYBY]"

// Options configures a call to AutoImport. The zero value is usable: it
// discards log output, uses DefaultPrefix, and consults no ImportDB (every
// missing name is then a silent miss).
type Options struct {
	DB        *importdb.DB
	Log       io.Writer
	Prefix    string
	ScopeOpts scope.Options
}

func (o Options) logf(format string, args ...interface{}) {
	w := o.Log
	if w == nil {
		w = io.Discard
	}
	prefix := o.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// AutoImport runs the algorithm of spec.md §4.4 against an already-parsed
// fragment, returning true iff every missing name was handled without
// error (idempotent: no database import statement is executed for a head
// identifier that bindings already hold, so re-running against the same
// bindings does not import or log those statements again).
func AutoImport(ctx context.Context, mod *ast.Module, bindings scope.BindingsStack, opts Options) (bool, error) {
	missing, err := scope.Analyze(mod, bindings, opts.ScopeOpts)
	if err != nil {
		return false, err
	}

	ok := true
	for _, dotted := range missing {
		parts := strings.Split(dotted, ".")
		head := parts[0]

		if opts.DB == nil {
			continue
		}
		if _, bound := bindings.Get(head); bound {
			if len(parts) > 1 {
				resolveSubmodulePrefixes(opts, bindings, parts)
			}
			continue
		}
		stmts := opts.DB.Lookup(head)
		if len(stmts) == 0 {
			continue // database miss: silent, not an error
		}

		for _, stmt := range stmts {
			if err := ExecuteStatement(ctx, stmt, bindings); err != nil {
				opts.logf("Error attempting to '%s': %s", stmt, err)
				ok = false
				continue
			}
			opts.logf("%s", stmt)
		}

		if len(parts) > 1 {
			resolveSubmodulePrefixes(opts, bindings, parts)
		}
	}
	return ok, nil
}

// AutoImportSource parses src and delegates to AutoImport.
func AutoImportSource(ctx context.Context, name string, src []byte, bindings scope.BindingsStack, opts Options) (bool, error) {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(ctx, fset, name, src, 0, true)
	if err != nil {
		return false, err
	}
	return AutoImport(ctx, mod, bindings, opts)
}

// ExecuteStatement parses a single import statement (as stored in an
// ImportDB entry) and actually performs it against bindings' writable
// mapping, by resolving each named module through lang/modules and
// assigning the result under the bound name. Exported so lang/loader can
// execute the same DB-stored statement text this package uses, rather than
// treating a DB identifier as a literal module path (a DB entry like
// "b64decode" -> "from base64 import b64decode" binds a name that differs
// from the dotted module path it imports).
func ExecuteStatement(ctx context.Context, stmtText string, bindings scope.BindingsStack) error {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(ctx, fset, "<import>", []byte(stmtText), 0, true)
	if err != nil {
		return err
	}
	for _, s := range mod.Body {
		switch n := s.(type) {
		case *ast.ImportStmt:
			for _, al := range n.Names {
				path := strings.Join(al.Path, ".")
				m, err := modules.Import(path)
				if err != nil {
					return err
				}
				name := al.Path[0]
				if al.As != nil {
					name = al.As.Name
				}
				bindings.BindWritable(name, m)
			}
		case *ast.ImportFromStmt:
			modPath := strings.Join(n.Module, ".")
			m, err := modules.Import(modPath)
			if err != nil {
				return err
			}
			for _, al := range n.Names {
				attr := al.Path[0]
				v, ok := m.GetAttr(attr)
				if !ok {
					return fmt.Errorf("module %q has no attribute %q", modPath, attr)
				}
				name := attr
				if al.As != nil {
					name = al.As.Name
				}
				bindings.BindWritable(name, v)
			}
		default:
			return fmt.Errorf("not an import statement: %s", stmtText)
		}
	}
	return nil
}

// resolveSubmodulePrefixes implements spec.md §4.4 step 6: for a dotted
// name of length >= 2 whose head is now bound, walk its remaining parts
// and, if attribute access fails at some prefix, attempt to import that
// prefix directly as a submodule, logging the action.
func resolveSubmodulePrefixes(opts Options, bindings scope.BindingsStack, parts []string) {
	head := parts[0]
	cur, ok := bindings.Get(head)
	if !ok {
		return
	}
	prefix := head
	for i := 1; i < len(parts); i++ {
		ag, isAttributer := cur.(scope.Attributer)
		if isAttributer {
			if v, found := ag.GetAttr(parts[i]); found {
				cur = v
				prefix += "." + parts[i]
				continue
			}
		}
		subPath := prefix + "." + parts[i]
		sub, err := modules.Import(subPath)
		if err != nil {
			return
		}
		opts.logf("import %s", subPath)
		cur = sub
		prefix = subPath
	}
}
