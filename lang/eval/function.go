package eval

import "github.com/mna/pyflyby/lang/ast"

// Function is a callable value produced by evaluating a `def` statement or a
// lambda expression. It captures the defining frame's locals by reference so
// closures observe later mutations, matching the host language's semantics.
type Function struct {
	Name    string
	Params  *ast.Params
	Body    []ast.Stmt
	closure map[string]interface{}
}

func (fn *Function) String() string { return "<function " + fn.Name + ">" }
