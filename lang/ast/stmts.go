package ast

import (
	"fmt"

	"github.com/mna/pyflyby/lang/token"
)

// BindingKind classifies how an IdentExpr use resolved, filled in by the
// scope analyzer (package lang/scope).
type BindingKind uint8

const (
	Unresolved  BindingKind = iota // could not be resolved at all
	Local                          // bound somewhere in the enclosing function/module frame
	ModuleGlobal                   // bound via a `global` declaration
	Provided                       // satisfied by an entry in the caller's bindings stack
	Builtin                        // satisfied by the host's builtins mapping
)

// Binding records how a particular identifier reference resolved.
type Binding struct {
	Kind BindingKind
	Name string
}

type (
	// ExprStmt is an expression used as a statement, e.g. a bare call.
	ExprStmt struct {
		X Expr
	}

	// AssignStmt is a (possibly chained, possibly tuple-unpacking) plain
	// assignment, e.g. x = y = z, or a, (b, c) = f().
	AssignStmt struct {
		Targets    []Expr
		Value      Expr
		Start, End token.Pos
	}

	// AugAssignStmt is an augmented assignment, e.g. x += 1.
	AugAssignStmt struct {
		Target     Expr
		Op         token.Token
		Value      Expr
		Start, End token.Pos
	}

	// GlobalStmt declares names as referring to the module frame from within
	// a function body.
	GlobalStmt struct {
		Names      []*IdentExpr
		Start, End token.Pos
	}

	// PassStmt is a no-op statement.
	PassStmt struct{ Start, End token.Pos }

	// BreakStmt exits the nearest enclosing loop.
	BreakStmt struct{ Start, End token.Pos }

	// ContinueStmt jumps to the next iteration of the nearest enclosing loop.
	ContinueStmt struct{ Start, End token.Pos }

	// ReturnStmt exits the enclosing function, optionally with a value.
	ReturnStmt struct {
		Value      Expr // nil for a bare `return`
		Start, End token.Pos
	}

	// PrintStmt is the legacy `print a, b, c` statement, produced only when
	// the print-as-function future flag is not in effect.
	PrintStmt struct {
		Args       []Expr
		Start, End token.Pos
	}

	// IfStmt is an if/elif/else chain; Else, when non-nil, holds either the
	// else block or (for an elif) a single nested *IfStmt.
	IfStmt struct {
		Cond       Expr
		Body       *Block
		Else       *Block
		Start, End token.Pos
	}

	// WhileStmt is a while loop.
	WhileStmt struct {
		Cond       Expr
		Body       *Block
		Else       *Block
		Start, End token.Pos
	}

	// ForStmt is a for-in loop; Targets are bound fresh on every iteration.
	ForStmt struct {
		Targets    []Expr
		Iter       Expr
		Body       *Block
		Else       *Block
		Start, End token.Pos
	}

	// Param is one entry of a function's parameter list.
	Param struct {
		Name    *IdentExpr
		Default Expr // nil if no default
	}

	// Params is a function or lambda's parameter list.
	Params struct {
		Args   []*Param
		VarArg *IdentExpr // non-nil for *args
		KwArg  *IdentExpr // non-nil for **kwargs
	}

	// FuncDef is a `def` statement.
	FuncDef struct {
		Name       *IdentExpr
		Params     *Params
		Body       *Block
		Decorators []Expr // source order, outermost (first applied at call time last) first
		Start, End token.Pos
	}

	// ClassDef is a `class` statement.
	ClassDef struct {
		Name       *IdentExpr
		Bases      []Expr
		Body       *Block
		Decorators []Expr
		Start, End token.Pos
	}

	// ImportAlias is one `module[.sub]* [as name]` entry of an import
	// statement.
	ImportAlias struct {
		Path []string
		As   *IdentExpr // nil if no `as` clause
	}

	// ImportStmt is a plain `import a.b.c [as d], ...` statement.
	ImportStmt struct {
		Names      []*ImportAlias
		Start, End token.Pos
	}

	// ImportFromStmt is a `from a.b import c [as d], ...` statement. A
	// Module of ["__future__"] with Names containing "print_function" toggles
	// the print-as-function future flag directly, without needing an
	// auto_flags retry.
	ImportFromStmt struct {
		Module     []string
		Names      []*ImportAlias // Path is a single bare name for each
		Start, End token.Pos
	}
)

func (*ExprStmt) stmt()       {}
func (*AssignStmt) stmt()     {}
func (*AugAssignStmt) stmt()  {}
func (*GlobalStmt) stmt()     {}
func (*PassStmt) stmt()       {}
func (*BreakStmt) stmt()      {}
func (*ContinueStmt) stmt()   {}
func (*ReturnStmt) stmt()     {}
func (*PrintStmt) stmt()      {}
func (*IfStmt) stmt()         {}
func (*WhileStmt) stmt()      {}
func (*ForStmt) stmt()        {}
func (*FuncDef) stmt()        {}
func (*ClassDef) stmt()       {}
func (*ImportStmt) stmt()     {}
func (*ImportFromStmt) stmt() {}

func (n *ExprStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "expr-stmt", nil) }
func (n *ExprStmt) Span() (start, end token.Pos)  { return n.X.Span() }
func (n *ExprStmt) Walk(v Visitor)                { Walk(v, n.X) }

func (n *AssignStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "assign", map[string]int{"targets": len(n.Targets)})
}
func (n *AssignStmt) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *AssignStmt) Walk(v Visitor) {
	Walk(v, n.Value)
	for _, t := range n.Targets {
		Walk(v, t)
	}
}

func (n *AugAssignStmt) Format(f fmt.State, verb rune) {
	format(f, verb, n, "aug-assign "+n.Op.String(), nil)
}
func (n *AugAssignStmt) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *AugAssignStmt) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}

func (n *GlobalStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "global", nil) }
func (n *GlobalStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *GlobalStmt) Walk(v Visitor) {
	for _, name := range n.Names {
		Walk(v, name)
	}
}

func (n *PassStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "pass", nil) }
func (n *PassStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *PassStmt) Walk(_ Visitor)                {}

func (n *BreakStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "break", nil) }
func (n *BreakStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BreakStmt) Walk(_ Visitor)                {}

func (n *ContinueStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "continue", nil) }
func (n *ContinueStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ContinueStmt) Walk(_ Visitor)                {}

func (n *ReturnStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "return", nil) }
func (n *ReturnStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ReturnStmt) Walk(v Visitor) {
	if n.Value != nil {
		Walk(v, n.Value)
	}
}

func (n *PrintStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "print", nil) }
func (n *PrintStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *PrintStmt) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *IfStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "if", nil) }
func (n *IfStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *IfStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *WhileStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "while", nil) }
func (n *WhileStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *WhileStmt) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (n *ForStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "for", nil) }
func (n *ForStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ForStmt) Walk(v Visitor) {
	for _, t := range n.Targets {
		Walk(v, t)
	}
	Walk(v, n.Iter)
	Walk(v, n.Body)
	if n.Else != nil {
		Walk(v, n.Else)
	}
}

func (p *Params) walk(v Visitor) {
	if p == nil {
		return
	}
	for _, a := range p.Args {
		Walk(v, a.Name)
		if a.Default != nil {
			Walk(v, a.Default)
		}
	}
	if p.VarArg != nil {
		Walk(v, p.VarArg)
	}
	if p.KwArg != nil {
		Walk(v, p.KwArg)
	}
}

func (n *FuncDef) Format(f fmt.State, verb rune) { format(f, verb, n, "def "+n.Name.Name, nil) }
func (n *FuncDef) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *FuncDef) Walk(v Visitor) {
	for _, d := range n.Decorators {
		Walk(v, d)
	}
	Walk(v, n.Name)
	n.Params.walk(v)
	Walk(v, n.Body)
}

func (n *ClassDef) Format(f fmt.State, verb rune) { format(f, verb, n, "class "+n.Name.Name, nil) }
func (n *ClassDef) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ClassDef) Walk(v Visitor) {
	for _, d := range n.Decorators {
		Walk(v, d)
	}
	Walk(v, n.Name)
	for _, b := range n.Bases {
		Walk(v, b)
	}
	Walk(v, n.Body)
}

func (n *ImportStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "import", nil) }
func (n *ImportStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ImportStmt) Walk(v Visitor) {
	for _, al := range n.Names {
		if al.As != nil {
			Walk(v, al.As)
		}
	}
}

func (n *ImportFromStmt) Format(f fmt.State, verb rune) { format(f, verb, n, "from-import", nil) }
func (n *ImportFromStmt) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ImportFromStmt) Walk(v Visitor) {
	for _, al := range n.Names {
		if al.As != nil {
			Walk(v, al.As)
		}
	}
}
