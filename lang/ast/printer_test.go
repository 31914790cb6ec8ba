package ast_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/token"
	"github.com/stretchr/testify/require"
)

func TestPrinterWithoutPositions(t *testing.T) {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte("x = 1\n"), 0, true)
	require.NoError(t, err)

	var buf strings.Builder
	p := ast.Printer{Output: &buf, Pos: token.PosNone}
	require.NoError(t, p.Print(mod, nil))

	out := buf.String()
	require.Contains(t, out, "module")
	require.Contains(t, out, "assign")
}

func TestPrinterRequiresFileForPositions(t *testing.T) {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte("pass\n"), 0, true)
	require.NoError(t, err)

	var buf strings.Builder
	p := ast.Printer{Output: &buf, Pos: token.PosLong}
	require.Error(t, p.Print(mod, nil))
}

func TestWalkVisitsNestedNodes(t *testing.T) {
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte("def f(a, b=1):\n    return a + b\n"), 0, true)
	require.NoError(t, err)

	var kinds []string
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir == ast.VisitExit {
			return nil
		}
		switch n.(type) {
		case *ast.FuncDef:
			kinds = append(kinds, "funcdef")
		case *ast.ReturnStmt:
			kinds = append(kinds, "return")
		case *ast.BinOpExpr:
			kinds = append(kinds, "binop")
		}
		return visit
	}
	ast.Walk(visit, mod)

	require.Equal(t, []string{"funcdef", "return", "binop"}, kinds)
}
