// Package ast defines the types used to represent the abstract syntax tree
// (AST) of a fragment of the host dynamic language: a Python-like subset
// comprising expressions, assignments, function and class definitions,
// comprehensions, imports and the handful of control-flow statements needed
// to drive scope analysis faithfully. It is not a complete grammar for the
// host language; see the package-level documentation of lang/parser for the
// supported subset.
package ast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mna/pyflyby/lang/token"
)

// Node represents any node in the AST.
type Node interface {
	// Every Node implements fmt.Formatter so it can print a description of
	// itself. Supported verbs are 'v' and 's'; '#' adds child counts; a width
	// pads or truncates the label (pad left by default, right with '-', never
	// with '+').
	fmt.Formatter

	// Span reports the start and end position of the node.
	Span() (start, end token.Pos)

	// Walk visits the node's children, implementing the Visitor pattern.
	Walk(v Visitor)
}

// Expr represents an expression in the AST.
type Expr interface {
	Node
	expr()
}

// Stmt represents a statement in the AST.
type Stmt interface {
	Node
	stmt()
}

// Module is the root of a parsed fragment: a sequence of statements plus the
// name (if any) under which it should be reported in diagnostics.
type Module struct {
	Name  string
	Body  []Stmt
	Start token.Pos
	End   token.Pos // position of the EOF marker
}

func (n *Module) Format(f fmt.State, verb rune) {
	lbl := "module"
	if n.Name != "" {
		lbl += " " + n.Name
	}
	format(f, verb, n, lbl, map[string]int{"stmts": len(n.Body)})
}
func (n *Module) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Module) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}

// Block is a nested sequence of statements (the body of an if/for/while/def
// /class), as opposed to Module which is the top-level sequence.
type Block struct {
	Stmts []Stmt
	Start token.Pos
	End   token.Pos
}

func (n *Block) Format(f fmt.State, verb rune) {
	format(f, verb, n, "block", map[string]int{"stmts": len(n.Stmts)})
}
func (n *Block) Span() (start, end token.Pos) { return n.Start, n.End }
func (n *Block) Walk(v Visitor) {
	for _, s := range n.Stmts {
		Walk(v, s)
	}
}

func format(f fmt.State, verb rune, n Node, label string, counts map[string]int) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(f, "%%!%c(%T)", verb, n)
		return
	}

	label = strings.ReplaceAll(label, "\r\n", "⏎")
	label = strings.ReplaceAll(label, "\n", "⏎")
	label = strings.ReplaceAll(label, "\t", "⭾")

	if w, ok := f.Width(); ok {
		minus, plus := f.Flag('-'), f.Flag('+')
		runes := []rune(label)
		switch {
		case len(runes) >= w:
			runes = runes[:w]
		case minus:
			runes = append(runes, []rune(strings.Repeat(" ", w-len(runes)))...)
		case !plus:
			runes = append([]rune(strings.Repeat(" ", w-len(runes))), runes...)
		}
		label = string(runes)
	}

	fmt.Fprint(f, label)
	if f.Flag('#') && len(counts) > 0 {
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(f, " {")
		for i, k := range keys {
			if i > 0 {
				fmt.Fprint(f, ", ")
			}
			fmt.Fprintf(f, "%s=%d", k, counts[k])
		}
		fmt.Fprint(f, "}")
	}
}
