// Package scope implements the static scope analyzer: a single traversal of
// a parsed module that classifies every identifier reference as bound or
// missing, under the host language's late-binding and class-isolation
// rules. It is grounded on the block-stack traversal shape of
// lang/resolver's Lua-style resolver, but the algorithm itself is new:
// resolver binds names in strict source order everywhere, while this
// analyzer must additionally model function/lambda late binding (collect
// every assignment target in a frame before resolving any reference in it)
// and list-comprehension variable leakage, neither of which resolver's
// target grammar needed.
package scope

import (
	"sort"
	"strings"

	"github.com/dolthub/swiss"
	"github.com/mna/pyflyby/lang/ast"
)

// Options tunes analyzer behavior for points the specification leaves open.
type Options struct {
	// ListCompLeaks controls whether a list comprehension's iteration
	// variables leak into the enclosing frame, matching the target
	// runtime's historical (and still current) list-comprehension scoping.
	// Generator expressions and set/dict comprehensions never leak,
	// regardless of this setting.
	ListCompLeaks bool
}

// DefaultOptions returns the options matching the target runtime's current
// behavior: list comprehensions leak.
func DefaultOptions() Options { return Options{ListCompLeaks: true} }

// Attributer is implemented by a bound value that can report whether it
// carries a given attribute, letting the analyzer verify a deeper dotted
// reference (e.g. os.path.join) without reporting the whole chain missing
// just because resolving beyond the head isn't ordinarily visible to
// static analysis. Values that don't implement it are opaque: any
// attribute access on them is assumed to succeed. See DESIGN NOTES in the
// specification on dynamic attribute access.
type Attributer interface {
	GetAttr(name string) (value interface{}, ok bool)
}

// BindingsStack is an ordered list of name to value mappings, innermost
// (typically locals) first. A name is considered provided if any mapping
// in the stack contains it.
type BindingsStack []map[string]interface{}

// Get returns the first value bound to name in the stack, searching front
// to back.
func (s BindingsStack) Get(name string) (interface{}, bool) {
	for _, m := range s {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// BindWritable assigns name to value in the stack's last mapping, the one
// the specification treats as writable for auto-import. It is a no-op on
// an empty stack.
func (s BindingsStack) BindWritable(name string, value interface{}) {
	if len(s) == 0 {
		return
	}
	s[len(s)-1][name] = value
}

// FindMissingImports runs the analyzer with default options and returns the
// sorted, deduplicated list of dotted names referenced in mod that would
// fail to resolve against bindings and the host builtins.
func FindMissingImports(mod *ast.Module, bindings BindingsStack) ([]string, error) {
	return Analyze(mod, bindings, DefaultOptions())
}

// Analyze is the public contract of the scope analyzer: a pure function
// from a parsed module and a bindings stack to a sorted list of missing
// dotted names. It has no side effects beyond annotating each IdentExpr's
// Binding field with how that particular use resolved.
func Analyze(mod *ast.Module, bindings BindingsStack, opts Options) ([]string, error) {
	a := &analyzer{bindings: bindings, opts: opts, missing: map[string]bool{}}
	a.moduleFrame = newFrame(kindModule, nil)

	// Pre-scan the module to learn its eventual, fully-bound name set. A
	// reference inside a nested function/lambda body that climbs up into the
	// module frame must see this final state (the function runs after the
	// module has finished top-to-bottom execution), even though a reference
	// written directly at module level must still see only what came before
	// it in source order (invariant: no late binding at module top level).
	scratch := newFrame(kindModule, nil)
	a.collectBound(scratch, mod.Body)
	a.moduleFrame.final = scratch.bound

	a.analyzeBody(a.moduleFrame, mod.Body)

	names := make([]string, 0, len(a.missing))
	for name := range a.missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

type kind uint8

const (
	kindModule kind = iota
	kindFunction
	kindClass
	kindComprehension
)

// frame is a scope frame per the specification's data model: a set of
// identifiers bound within it, the subset declared global from within, and
// a link to the enclosing frame.
type frame struct {
	kind        kind
	bound       *swiss.Map[string, struct{}]
	globalDecls *swiss.Map[string, struct{}]
	parent      *frame
	hoisted     bool // true for function/lambda frames: collect before use

	// final holds the module frame's fully-collected bound set, populated
	// once up front. It is consulted in addition to bound (which also holds
	// names declared global from nested frames analyzed so far) when the
	// module frame is reached as an ancestor from within a nested frame (see
	// Analyze); nil for every other frame kind.
	final *swiss.Map[string, struct{}]
}

func newFrame(k kind, parent *frame) *frame {
	return &frame{
		kind:        k,
		bound:       swiss.NewMap[string, struct{}](8),
		globalDecls: swiss.NewMap[string, struct{}](0),
		parent:      parent,
		hoisted:     k == kindFunction,
	}
}

func (f *frame) bind(name string)         { f.bound.Put(name, struct{}{}) }
func (f *frame) isBound(name string) bool { _, ok := f.bound.Get(name); return ok }
func (f *frame) isBoundFinal(name string) bool {
	if f.final != nil {
		if _, ok := f.final.Get(name); ok {
			return true
		}
	}
	_, ok := f.bound.Get(name)
	return ok
}
func (f *frame) isGlobalDecl(name string) bool {
	_, ok := f.globalDecls.Get(name)
	return ok
}

type analyzer struct {
	bindings    BindingsStack
	opts        Options
	missing     map[string]bool
	moduleFrame *frame
}

func (a *analyzer) reportMissing(dotted string) { a.missing[dotted] = true }

// analyzeBody processes the statements of a frame's own body. Hoisted
// (function/lambda) frames collect every bound name first, modeling late
// binding; module and class frames process bindings and references
// strictly in source order.
func (a *analyzer) analyzeBody(f *frame, stmts []ast.Stmt) {
	if f.hoisted {
		a.collectBound(f, stmts)
	}
	for _, s := range stmts {
		a.stmt(f, s)
	}
}

// collectBound gathers every assignment target, global declaration,
// def/class name and import binding reachable from stmts without crossing
// into a nested function, lambda, class or comprehension body (those
// introduce their own frame and are collected independently, when that
// frame is itself hoisted).
func (a *analyzer) collectBound(f *frame, stmts []ast.Stmt) {
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.AssignStmt:
			for _, t := range n.Targets {
				a.collectTarget(f, t)
			}
		case *ast.AugAssignStmt:
			a.collectTarget(f, n.Target)
		case *ast.GlobalStmt:
			for _, id := range n.Names {
				f.bind(id.Name)
				f.globalDecls.Put(id.Name, struct{}{})
				a.moduleFrame.bind(id.Name)
			}
		case *ast.ForStmt:
			for _, t := range n.Targets {
				a.collectTarget(f, t)
			}
			a.collectBound(f, n.Body.Stmts)
			if n.Else != nil {
				a.collectBound(f, n.Else.Stmts)
			}
		case *ast.IfStmt:
			a.collectBound(f, n.Body.Stmts)
			if n.Else != nil {
				a.collectBound(f, n.Else.Stmts)
			}
		case *ast.WhileStmt:
			a.collectBound(f, n.Body.Stmts)
			if n.Else != nil {
				a.collectBound(f, n.Else.Stmts)
			}
		case *ast.FuncDef:
			f.bind(n.Name.Name)
		case *ast.ClassDef:
			f.bind(n.Name.Name)
		case *ast.ImportStmt:
			for _, al := range n.Names {
				f.bind(importBindName(al))
			}
		case *ast.ImportFromStmt:
			for _, al := range n.Names {
				f.bind(importBindName(al))
			}
		}
	}
}

func (a *analyzer) collectTarget(f *frame, e ast.Expr) {
	switch t := e.(type) {
	case *ast.IdentExpr:
		f.bind(t.Name)
	case *ast.TupleExpr:
		for _, el := range t.Elts {
			a.collectTarget(f, el)
		}
	case *ast.ListExpr:
		for _, el := range t.Elts {
			a.collectTarget(f, el)
		}
	case *ast.StarExpr:
		a.collectTarget(f, t.X)
	case *ast.ParenExpr:
		a.collectTarget(f, t.X)
	}
	// AttributeExpr and SubscriptExpr targets bind nothing new: they read
	// their base chain instead, handled by bindTarget during the stmt pass.
}

func importBindName(al *ast.ImportAlias) string {
	if al.As != nil {
		return al.As.Name
	}
	return al.Path[0]
}

// stmt processes one statement for reference resolution, binding its
// targets as it goes. For a non-hoisted (module/class) frame this is the
// only binding pass, so order matters; for a hoisted frame, bindings here
// are redundant with collectBound but harmless (idempotent Put).
func (a *analyzer) stmt(f *frame, s ast.Stmt) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		a.expr(f, n.X)
	case *ast.AssignStmt:
		a.expr(f, n.Value)
		for _, t := range n.Targets {
			a.bindTarget(f, t)
		}
	case *ast.AugAssignStmt:
		a.expr(f, n.Target)
		a.expr(f, n.Value)
		a.bindTarget(f, n.Target)
	case *ast.GlobalStmt:
		for _, id := range n.Names {
			f.bind(id.Name)
			f.globalDecls.Put(id.Name, struct{}{})
			a.moduleFrame.bind(id.Name)
		}
	case *ast.PassStmt, *ast.BreakStmt, *ast.ContinueStmt:
	case *ast.ReturnStmt:
		if n.Value != nil {
			a.expr(f, n.Value)
		}
	case *ast.PrintStmt:
		for _, x := range n.Args {
			a.expr(f, x)
		}
	case *ast.IfStmt:
		a.expr(f, n.Cond)
		a.stmts(f, n.Body.Stmts)
		if n.Else != nil {
			a.stmts(f, n.Else.Stmts)
		}
	case *ast.WhileStmt:
		a.expr(f, n.Cond)
		a.stmts(f, n.Body.Stmts)
		if n.Else != nil {
			a.stmts(f, n.Else.Stmts)
		}
	case *ast.ForStmt:
		a.expr(f, n.Iter)
		for _, t := range n.Targets {
			a.bindTarget(f, t)
		}
		a.stmts(f, n.Body.Stmts)
		if n.Else != nil {
			a.stmts(f, n.Else.Stmts)
		}
	case *ast.FuncDef:
		a.funcDef(f, n)
	case *ast.ClassDef:
		a.classDef(f, n)
	case *ast.ImportStmt:
		for _, al := range n.Names {
			f.bind(importBindName(al))
		}
	case *ast.ImportFromStmt:
		for _, al := range n.Names {
			f.bind(importBindName(al))
		}
	}
}

// stmts replays a nested block (if/while/for body) within the same frame:
// no new collection pass, since if f is hoisted it already ran once for
// the whole body, and if f is source-order, statements before this block
// already ran their own bind step.
func (a *analyzer) stmts(f *frame, stmts []ast.Stmt) {
	for _, s := range stmts {
		a.stmt(f, s)
	}
}

func (a *analyzer) funcDef(f *frame, n *ast.FuncDef) {
	for _, d := range n.Decorators {
		a.expr(f, d) // evaluated in the enclosing scope, in source order
	}
	for _, p := range n.Params.Args {
		if p.Default != nil {
			a.expr(f, p.Default) // defaults too: enclosing scope, not siblings
		}
	}
	if !f.hoisted {
		f.bind(n.Name.Name)
	}

	nf := newFrame(kindFunction, f)
	for _, p := range n.Params.Args {
		nf.bind(p.Name.Name)
	}
	if n.Params.VarArg != nil {
		nf.bind(n.Params.VarArg.Name)
	}
	if n.Params.KwArg != nil {
		nf.bind(n.Params.KwArg.Name)
	}
	a.analyzeBody(nf, n.Body.Stmts)
}

func (a *analyzer) classDef(f *frame, n *ast.ClassDef) {
	for _, d := range n.Decorators {
		a.expr(f, d)
	}
	for _, b := range n.Bases {
		a.expr(f, b)
	}
	if !f.hoisted {
		f.bind(n.Name.Name)
	}

	cf := newFrame(kindClass, f)
	a.analyzeBody(cf, n.Body.Stmts)
}

// bindTarget binds an assignment target's leaf identifiers, per the tuple
// and attribute/subscript-write rules of the specification: attribute and
// subscript writes count as reads of their base chain and bind nothing.
func (a *analyzer) bindTarget(f *frame, e ast.Expr) {
	switch t := e.(type) {
	case *ast.IdentExpr:
		f.bind(t.Name)
		if f.isGlobalDecl(t.Name) {
			a.moduleFrame.bind(t.Name)
		}
		t.Binding = &ast.Binding{Kind: ast.Local, Name: t.Name}
		if f.isGlobalDecl(t.Name) {
			t.Binding.Kind = ast.ModuleGlobal
		}
	case *ast.AttributeExpr:
		a.expr(f, t.Value)
	case *ast.SubscriptExpr:
		a.expr(f, t.Value)
		a.expr(f, t.Index)
	case *ast.TupleExpr:
		for _, el := range t.Elts {
			a.bindTarget(f, el)
		}
	case *ast.ListExpr:
		for _, el := range t.Elts {
			a.bindTarget(f, el)
		}
	case *ast.StarExpr:
		a.bindTarget(f, t.X)
	case *ast.ParenExpr:
		a.bindTarget(f, t.X)
	}
}

// resolveIdent walks f's frame chain, skipping class frames not reached
// directly (the class-isolation rule), then falls back to the bindings
// stack and finally the host builtins.
func (a *analyzer) resolveIdent(f *frame, name string) (value interface{}, k ast.BindingKind, ok bool) {
	cur := f
	first := true
	for cur != nil {
		if cur.kind == kindClass && !first {
			cur = cur.parent
			continue
		}
		bound := cur.isBound(name)
		if !first && cur.kind == kindModule {
			bound = cur.isBoundFinal(name)
		}
		if bound {
			k := ast.Local
			if cur.isGlobalDecl(name) {
				k = ast.ModuleGlobal
			}
			return nil, k, true
		}
		first = false
		cur = cur.parent
	}
	if v, ok := a.bindings.Get(name); ok {
		return v, ast.Provided, true
	}
	if _, ok := builtins[name]; ok {
		return nil, ast.Builtin, true
	}
	return nil, ast.Unresolved, false
}

// dottedChain reports the dotted parts of e if e is a pure chain of
// attribute accesses bottoming out at an identifier (e.g. a.b.c), and the
// identifier node at the bottom of the chain.
func dottedChain(e ast.Expr) (parts []string, head *ast.IdentExpr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		return []string{n.Name}, n
	case *ast.AttributeExpr:
		p, h := dottedChain(n.Value)
		if h == nil {
			return nil, nil
		}
		return append(p, n.Attr.Name), h
	default:
		return nil, nil
	}
}

// resolveDottedChain resolves a (possibly one-element) dotted chain,
// annotating head's Binding and reporting the longest missing prefix per
// the specification's rollup rule: if the head resolves to a concrete,
// introspectable value (i.e. it came from the bindings stack), attribute
// resolution continues through it; any other resolved kind is opaque and
// the rest of the chain is assumed to resolve.
func (a *analyzer) resolveDottedChain(f *frame, parts []string, head *ast.IdentExpr) {
	value, k, ok := a.resolveIdent(f, parts[0])
	head.Binding = &ast.Binding{Kind: k, Name: parts[0]}
	if !ok {
		a.reportMissing(strings.Join(parts, "."))
		return
	}
	if len(parts) == 1 || k != ast.Provided {
		return
	}

	cur := value
	resolved := 1
	for i := 1; i < len(parts); i++ {
		ag, isAttributer := cur.(Attributer)
		if !isAttributer {
			resolved = len(parts)
			break
		}
		next, found := ag.GetAttr(parts[i])
		if !found {
			break
		}
		cur = next
		resolved = i + 1
	}
	if resolved < len(parts) {
		a.reportMissing(strings.Join(parts[:resolved+1], "."))
	}
}

func (a *analyzer) expr(f *frame, e ast.Expr) {
	switch n := e.(type) {
	case *ast.IdentExpr:
		a.resolveDottedChain(f, []string{n.Name}, n)
	case *ast.LiteralExpr, *ast.BadExpr:
		// nothing to resolve
	case *ast.AttributeExpr:
		if parts, head := dottedChain(n); head != nil {
			a.resolveDottedChain(f, parts, head)
		} else {
			a.expr(f, n.Value)
		}
	case *ast.SubscriptExpr:
		a.expr(f, n.Value)
		a.expr(f, n.Index)
	case *ast.CallExpr:
		a.expr(f, n.Func)
		for _, arg := range n.Args {
			a.expr(f, arg)
		}
		for _, kw := range n.Keywords {
			a.expr(f, kw.Value)
		}
	case *ast.StarExpr:
		a.expr(f, n.X)
	case *ast.DoubleStarExpr:
		a.expr(f, n.X)
	case *ast.TupleExpr:
		for _, el := range n.Elts {
			a.expr(f, el)
		}
	case *ast.ListExpr:
		for _, el := range n.Elts {
			a.expr(f, el)
		}
	case *ast.SetExpr:
		for _, el := range n.Elts {
			a.expr(f, el)
		}
	case *ast.DictExpr:
		for i, v := range n.Values {
			if n.Keys[i] != nil {
				a.expr(f, n.Keys[i])
			}
			a.expr(f, v)
		}
	case *ast.UnaryExpr:
		a.expr(f, n.X)
	case *ast.BinOpExpr:
		a.expr(f, n.Left)
		a.expr(f, n.Right)
	case *ast.BoolOpExpr:
		for _, v := range n.Values {
			a.expr(f, v)
		}
	case *ast.CompareExpr:
		a.expr(f, n.Left)
		for _, c := range n.Comparators {
			a.expr(f, c)
		}
	case *ast.LambdaExpr:
		a.lambda(f, n)
	case *ast.ListCompExpr:
		a.comprehension(f, n.Generators, []ast.Expr{n.Elt}, true)
	case *ast.SetCompExpr:
		a.comprehension(f, n.Generators, []ast.Expr{n.Elt}, false)
	case *ast.DictCompExpr:
		a.comprehension(f, n.Generators, []ast.Expr{n.Key, n.Value}, false)
	case *ast.GeneratorExpr:
		a.comprehension(f, n.Generators, []ast.Expr{n.Elt}, false)
	case *ast.ParenExpr:
		a.expr(f, n.X)
	}
}

func (a *analyzer) lambda(f *frame, n *ast.LambdaExpr) {
	for _, p := range n.Params.Args {
		if p.Default != nil {
			a.expr(f, p.Default)
		}
	}
	nf := newFrame(kindFunction, f)
	for _, p := range n.Params.Args {
		nf.bind(p.Name.Name)
	}
	if n.Params.VarArg != nil {
		nf.bind(n.Params.VarArg.Name)
	}
	if n.Params.KwArg != nil {
		nf.bind(n.Params.KwArg.Name)
	}
	a.expr(nf, n.Body)
}

// comprehension analyzes a list/set/dict comprehension or generator
// expression: a fresh frame, the first iterable evaluated in the enclosing
// frame, and (for list comprehensions, when enabled) its bound names
// leaking back into the enclosing frame.
func (a *analyzer) comprehension(f *frame, generators []*ast.Comprehension, elts []ast.Expr, isListComp bool) {
	if len(generators) == 0 {
		return
	}
	a.expr(f, generators[0].Iter)

	cf := newFrame(kindComprehension, f)
	for i, g := range generators {
		if i > 0 {
			a.expr(cf, g.Iter)
		}
		a.bindTarget(cf, g.Target)
		for _, ifx := range g.Ifs {
			a.expr(cf, ifx)
		}
	}
	for _, e := range elts {
		a.expr(cf, e)
	}

	if isListComp && a.opts.ListCompLeaks {
		cf.bound.Iter(func(name string, _ struct{}) bool {
			f.bind(name)
			return false
		})
	}
}
