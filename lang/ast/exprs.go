package ast

import (
	"fmt"

	"github.com/mna/pyflyby/lang/token"
)

// Unwrap recursively strips ParenExpr wrappers.
func Unwrap(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}

// IsAssignable reports whether e is a valid assignment target: an
// identifier, an attribute chain ending in one, or a subscript.
func IsAssignable(e Expr) bool {
	switch e := e.(type) {
	case *IdentExpr:
		return true
	case *AttributeExpr:
		return IsAssignable(Unwrap(e.Value))
	case *SubscriptExpr:
		return IsAssignable(Unwrap(e.Value))
	case *TupleExpr:
		for _, elt := range e.Elts {
			if !IsAssignable(Unwrap(elt)) {
				return false
			}
		}
		return true
	case *ListExpr:
		for _, elt := range e.Elts {
			if !IsAssignable(Unwrap(elt)) {
				return false
			}
		}
		return true
	case *StarExpr:
		return IsAssignable(Unwrap(e.X))
	default:
		return false
	}
}

type (
	// BadExpr is a placeholder for an expression that failed to parse.
	BadExpr struct {
		Start, End token.Pos
	}

	// IdentExpr is a bare identifier reference, e.g. x.
	IdentExpr struct {
		Name string
		Pos  token.Pos

		// Binding is filled in by the scope analyzer: it records how this
		// particular use of the identifier resolved (or failed to).
		Binding *Binding
	}

	// LiteralExpr is a literal value: int, float, string, bytes, True, False
	// or None.
	LiteralExpr struct {
		Kind       token.Token
		Raw        string
		Value      interface{}
		Start, End token.Pos
	}

	// AttributeExpr is a dotted attribute access, e.g. x.y.
	AttributeExpr struct {
		Value Expr
		Dot   token.Pos
		Attr  *IdentExpr
	}

	// SubscriptExpr is an index or slice expression, e.g. x[y].
	SubscriptExpr struct {
		Value      Expr
		Index      Expr
		Start, End token.Pos
	}

	// CallExpr is a function call, e.g. f(x, y=1, *z, **w).
	CallExpr struct {
		Func     Expr
		Args     []Expr // positional args, may include *StarExpr entries
		Keywords []*Keyword
		Lparen   token.Pos
		Rparen   token.Pos
	}

	// Keyword is a single `name=value` argument in a call.
	Keyword struct {
		Name  *IdentExpr // nil for a **kwargs spread, see Value
		Value Expr
	}

	// StarExpr is a `*x` unary spread, valid in call arguments, assignment
	// targets and tuple/list literals.
	StarExpr struct {
		Star token.Pos
		X    Expr
	}

	// DoubleStarExpr is a `**x` spread, valid only in call arguments and dict
	// literals.
	DoubleStarExpr struct {
		Star token.Pos
		X    Expr
	}

	// TupleExpr is a tuple literal or tuple-unpacking target, e.g. (x, y) or
	// x, y.
	TupleExpr struct {
		Elts       []Expr
		Start, End token.Pos
	}

	// ListExpr is a list literal or list-unpacking target, e.g. [x, y].
	ListExpr struct {
		Elts       []Expr
		Start, End token.Pos
	}

	// SetExpr is a set literal, e.g. {x, y}.
	SetExpr struct {
		Elts       []Expr
		Start, End token.Pos
	}

	// DictExpr is a dict literal, e.g. {x: y}. A nil Keys[i] denotes a
	// `**spread` entry whose value is Values[i].
	DictExpr struct {
		Keys       []Expr
		Values     []Expr
		Start, End token.Pos
	}

	// UnaryExpr is a unary operator expression, e.g. -x, not x, ~x.
	UnaryExpr struct {
		Op    token.Token
		OpPos token.Pos
		X     Expr
	}

	// BinOpExpr is a binary arithmetic/bitwise expression, e.g. x + y.
	BinOpExpr struct {
		Left  Expr
		Op    token.Token
		OpPos token.Pos
		Right Expr
	}

	// BoolOpExpr is a short-circuiting `and`/`or` chain, e.g. x and y or z.
	BoolOpExpr struct {
		Op     token.Token // AND or OR
		Values []Expr
	}

	// CompareExpr is a (possibly chained) comparison, e.g. a < b <= c.
	CompareExpr struct {
		Left        Expr
		Ops         []token.Token
		Comparators []Expr
	}

	// LambdaExpr is a lambda literal, e.g. lambda x, y=1: x+y.
	LambdaExpr struct {
		Lambda token.Pos
		Params *Params
		Body   Expr
	}

	// Comprehension is one `for ... in ... [if ...]*` clause of a
	// comprehension or generator expression.
	Comprehension struct {
		Target Expr // IdentExpr, TupleExpr or nested ListExpr/TupleExpr
		Iter   Expr
		Ifs    []Expr
	}

	// ListCompExpr is a list comprehension, e.g. [x for x in y].
	ListCompExpr struct {
		Elt        Expr
		Generators []*Comprehension
		Start, End token.Pos
	}

	// SetCompExpr is a set comprehension, e.g. {x for x in y}.
	SetCompExpr struct {
		Elt        Expr
		Generators []*Comprehension
		Start, End token.Pos
	}

	// DictCompExpr is a dict comprehension, e.g. {x: y for x, y in z}.
	DictCompExpr struct {
		Key, Value Expr
		Generators []*Comprehension
		Start, End token.Pos
	}

	// GeneratorExpr is a parenthesized generator expression, e.g. (x for x
	// in y).
	GeneratorExpr struct {
		Elt        Expr
		Generators []*Comprehension
		Start, End token.Pos
	}

	// ParenExpr is a parenthesized expression, kept distinct from its inner
	// expression so positions and (lack of) tuple-ness are preserved.
	ParenExpr struct {
		Lparen, Rparen token.Pos
		X              Expr
	}
)

func (*BadExpr) expr()        {}
func (*IdentExpr) expr()      {}
func (*LiteralExpr) expr()    {}
func (*AttributeExpr) expr()  {}
func (*SubscriptExpr) expr()  {}
func (*CallExpr) expr()       {}
func (*StarExpr) expr()       {}
func (*DoubleStarExpr) expr() {}
func (*TupleExpr) expr()      {}
func (*ListExpr) expr()       {}
func (*SetExpr) expr()        {}
func (*DictExpr) expr()       {}
func (*UnaryExpr) expr()      {}
func (*BinOpExpr) expr()      {}
func (*BoolOpExpr) expr()     {}
func (*CompareExpr) expr()    {}
func (*LambdaExpr) expr()     {}
func (*ListCompExpr) expr()   {}
func (*SetCompExpr) expr()    {}
func (*DictCompExpr) expr()   {}
func (*GeneratorExpr) expr()  {}
func (*ParenExpr) expr()      {}

func (n *BadExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "<bad expr>", nil) }
func (n *BadExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *BadExpr) Walk(_ Visitor)                {}

func (n *IdentExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Name, nil) }
func (n *IdentExpr) Span() (start, end token.Pos) {
	return n.Pos, n.Pos + token.Pos(len(n.Name))
}
func (n *IdentExpr) Walk(_ Visitor) {}

func (n *LiteralExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Raw, nil) }
func (n *LiteralExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *LiteralExpr) Walk(_ Visitor)                {}

func (n *AttributeExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "attribute", nil) }
func (n *AttributeExpr) Span() (start, end token.Pos) {
	s, _ := n.Value.Span()
	_, e := n.Attr.Span()
	return s, e
}
func (n *AttributeExpr) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Attr)
}

func (n *SubscriptExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "subscript", nil) }
func (n *SubscriptExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *SubscriptExpr) Walk(v Visitor) {
	Walk(v, n.Value)
	Walk(v, n.Index)
}

func (n *CallExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "call", map[string]int{"args": len(n.Args), "kwargs": len(n.Keywords)})
}
func (n *CallExpr) Span() (start, end token.Pos) {
	s, _ := n.Func.Span()
	return s, n.Rparen
}
func (n *CallExpr) Walk(v Visitor) {
	Walk(v, n.Func)
	for _, a := range n.Args {
		Walk(v, a)
	}
	for _, kw := range n.Keywords {
		if kw.Name != nil {
			Walk(v, kw.Name)
		}
		Walk(v, kw.Value)
	}
}

func (n *StarExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "*spread", nil) }
func (n *StarExpr) Span() (start, end token.Pos) {
	_, e := n.X.Span()
	return n.Star, e
}
func (n *StarExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *DoubleStarExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "**spread", nil) }
func (n *DoubleStarExpr) Span() (start, end token.Pos) {
	_, e := n.X.Span()
	return n.Star, e
}
func (n *DoubleStarExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *TupleExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "tuple", map[string]int{"elts": len(n.Elts)})
}
func (n *TupleExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *TupleExpr) Walk(v Visitor) {
	for _, e := range n.Elts {
		Walk(v, e)
	}
}

func (n *ListExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "list", map[string]int{"elts": len(n.Elts)})
}
func (n *ListExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *ListExpr) Walk(v Visitor) {
	for _, e := range n.Elts {
		Walk(v, e)
	}
}

func (n *SetExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "set", map[string]int{"elts": len(n.Elts)})
}
func (n *SetExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *SetExpr) Walk(v Visitor) {
	for _, e := range n.Elts {
		Walk(v, e)
	}
}

func (n *DictExpr) Format(f fmt.State, verb rune) {
	format(f, verb, n, "dict", map[string]int{"items": len(n.Values)})
}
func (n *DictExpr) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *DictExpr) Walk(v Visitor) {
	for i, val := range n.Values {
		if n.Keys[i] != nil {
			Walk(v, n.Keys[i])
		}
		Walk(v, val)
	}
}

func (n *UnaryExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }
func (n *UnaryExpr) Span() (start, end token.Pos) {
	_, e := n.X.Span()
	return n.OpPos, e
}
func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.X) }

func (n *BinOpExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }
func (n *BinOpExpr) Span() (start, end token.Pos) {
	s, _ := n.Left.Span()
	_, e := n.Right.Span()
	return s, e
}
func (n *BinOpExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *BoolOpExpr) Format(f fmt.State, verb rune) { format(f, verb, n, n.Op.String(), nil) }
func (n *BoolOpExpr) Span() (start, end token.Pos) {
	s, _ := n.Values[0].Span()
	_, e := n.Values[len(n.Values)-1].Span()
	return s, e
}
func (n *BoolOpExpr) Walk(v Visitor) {
	for _, val := range n.Values {
		Walk(v, val)
	}
}

func (n *CompareExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "compare", nil) }
func (n *CompareExpr) Span() (start, end token.Pos) {
	s, _ := n.Left.Span()
	_, e := n.Comparators[len(n.Comparators)-1].Span()
	return s, e
}
func (n *CompareExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	for _, c := range n.Comparators {
		Walk(v, c)
	}
}

func (n *LambdaExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "lambda", nil) }
func (n *LambdaExpr) Span() (start, end token.Pos) {
	_, e := n.Body.Span()
	return n.Lambda, e
}
func (n *LambdaExpr) Walk(v Visitor) {
	n.Params.walk(v)
	Walk(v, n.Body)
}

func (n *Comprehension) walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Iter)
	for _, i := range n.Ifs {
		Walk(v, i)
	}
}

func (n *ListCompExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "list-comp", nil) }
func (n *ListCompExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *ListCompExpr) Walk(v Visitor) {
	Walk(v, n.Elt)
	for _, g := range n.Generators {
		g.walk(v)
	}
}

func (n *SetCompExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "set-comp", nil) }
func (n *SetCompExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *SetCompExpr) Walk(v Visitor) {
	Walk(v, n.Elt)
	for _, g := range n.Generators {
		g.walk(v)
	}
}

func (n *DictCompExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "dict-comp", nil) }
func (n *DictCompExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *DictCompExpr) Walk(v Visitor) {
	Walk(v, n.Key)
	Walk(v, n.Value)
	for _, g := range n.Generators {
		g.walk(v)
	}
}

func (n *GeneratorExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "generator", nil) }
func (n *GeneratorExpr) Span() (start, end token.Pos)  { return n.Start, n.End }
func (n *GeneratorExpr) Walk(v Visitor) {
	Walk(v, n.Elt)
	for _, g := range n.Generators {
		g.walk(v)
	}
}

func (n *ParenExpr) Format(f fmt.State, verb rune) { format(f, verb, n, "paren", nil) }
func (n *ParenExpr) Span() (start, end token.Pos)  { return n.Lparen, n.Rparen }
func (n *ParenExpr) Walk(v Visitor)                { Walk(v, n.X) }
