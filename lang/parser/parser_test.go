package parser_test

import (
	"context"
	"testing"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/token"
	"github.com/stretchr/testify/require"
)

func parseOne(t *testing.T, src string) *ast.Module {
	t.Helper()
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(src), 0, true)
	require.NoError(t, err)
	return mod
}

func TestParseAssignment(t *testing.T) {
	mod := parseOne(t, "x = 1\n")
	require.Len(t, mod.Body, 1)
	as, ok := mod.Body[0].(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, as.Targets, 1)
	_, ok = as.Targets[0].(*ast.IdentExpr)
	require.True(t, ok)
}

func TestParseDottedAttributeExpr(t *testing.T) {
	mod := parseOne(t, "os.path.join\n")
	require.Len(t, mod.Body, 1)
	es, ok := mod.Body[0].(*ast.ExprStmt)
	require.True(t, ok)
	attr, ok := es.X.(*ast.AttributeExpr)
	require.True(t, ok)
	require.Equal(t, "join", attr.Attr.Name)
}

func TestParseFuncDefWithDefaults(t *testing.T) {
	mod := parseOne(t, "def f(a, b=1):\n    return a + b\n")
	require.Len(t, mod.Body, 1)
	fd, ok := mod.Body[0].(*ast.FuncDef)
	require.True(t, ok)
	require.Equal(t, "f", fd.Name.Name)
	require.Len(t, fd.Params.Args, 2)
	require.Nil(t, fd.Params.Args[0].Default)
	require.NotNil(t, fd.Params.Args[1].Default)
}

func TestParseClassDefWithBases(t *testing.T) {
	mod := parseOne(t, "class C(Base):\n    x = 1\n")
	cd, ok := mod.Body[0].(*ast.ClassDef)
	require.True(t, ok)
	require.Equal(t, "C", cd.Name.Name)
	require.Len(t, cd.Bases, 1)
}

func TestParseListComprehension(t *testing.T) {
	mod := parseOne(t, "[x for x in y]\n")
	es := mod.Body[0].(*ast.ExprStmt)
	lc, ok := es.X.(*ast.ListCompExpr)
	require.True(t, ok)
	require.Len(t, lc.Generators, 1)
}

func TestParseGeneratorExpr(t *testing.T) {
	mod := parseOne(t, "(x for x in y)\n")
	es := mod.Body[0].(*ast.ExprStmt)
	_, ok := es.X.(*ast.GeneratorExpr)
	require.True(t, ok)
}

func TestParseImportStmt(t *testing.T) {
	mod := parseOne(t, "import os.path as p\n")
	is, ok := mod.Body[0].(*ast.ImportStmt)
	require.True(t, ok)
	require.Len(t, is.Names, 1)
	require.Equal(t, []string{"os", "path"}, is.Names[0].Path)
	require.Equal(t, "p", is.Names[0].As.Name)
}

func TestParseImportFromStmt(t *testing.T) {
	mod := parseOne(t, "from base64 import b64decode\n")
	ifs, ok := mod.Body[0].(*ast.ImportFromStmt)
	require.True(t, ok)
	require.Equal(t, []string{"base64"}, ifs.Module)
	require.Len(t, ifs.Names, 1)
}

func TestParseGlobalStmt(t *testing.T) {
	mod := parseOne(t, "def f():\n    global x\n    x = 1\n")
	fd := mod.Body[0].(*ast.FuncDef)
	gs, ok := fd.Body.Stmts[0].(*ast.GlobalStmt)
	require.True(t, ok)
	require.Len(t, gs.Names, 1)
	require.Equal(t, "x", gs.Names[0].Name)
}

func TestParseLambda(t *testing.T) {
	mod := parseOne(t, "f = lambda x, y=1: x + y\n")
	as := mod.Body[0].(*ast.AssignStmt)
	_, ok := as.Value.(*ast.LambdaExpr)
	require.True(t, ok)
}

func TestParseAutoFlagsRetriesWithPrintAsFunction(t *testing.T) {
	// "sep=','" is not a valid expression inside a parenthesized tuple, so
	// this fails to parse as a legacy `print (...)` statement and forces
	// the auto_flags retry into print-as-function mode, where `print` is a
	// plain identifier and the whole thing is a call expression.
	mod := parseOne(t, "print(1, sep=',')\n")
	require.Len(t, mod.Body, 1)
	es, ok := mod.Body[0].(*ast.ExprStmt)
	require.True(t, ok)
	call, ok := es.X.(*ast.CallExpr)
	require.True(t, ok)
	require.Len(t, call.Keywords, 1)
	require.Equal(t, "sep", call.Keywords[0].Name.Name)
}
