package eval_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/eval"
	"github.com/mna/pyflyby/lang/importdb"
	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
	"github.com/stretchr/testify/require"
)

func evalSrc(t *testing.T, src string, bindings scope.BindingsStack) interface{} {
	t.Helper()
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(src), 0, true)
	require.NoError(t, err)
	v, err := eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)
	return v
}

func TestEvalArithmeticExpression(t *testing.T) {
	v := evalSrc(t, "1 + 2 * 3", scope.BindingsStack{{}})
	require.Equal(t, int64(7), v)
}

func TestEvalStringConcat(t *testing.T) {
	v := evalSrc(t, `"a" + "b"`, scope.BindingsStack{{}})
	require.Equal(t, "ab", v)
}

func TestEvalComparisonChain(t *testing.T) {
	v := evalSrc(t, "1 < 2 < 3", scope.BindingsStack{{}})
	require.Equal(t, true, v)
}

func TestEvalBoolOpShortCircuit(t *testing.T) {
	v := evalSrc(t, "0 or 5", scope.BindingsStack{{}})
	require.Equal(t, int64(5), v)
}

func TestEvalCallIntoProvidedBinding(t *testing.T) {
	bindings := scope.BindingsStack{{"double": func(x int64) int64 { return x * 2 }}}
	v := evalSrc(t, "double(21)", bindings)
	require.Equal(t, int64(42), v)
}

func TestEvalFunctionDefAndCall(t *testing.T) {
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(`
def add(a, b):
    return a + b
`), 0, true)
	require.NoError(t, err)
	_, err = eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)

	v := evalSrc(t, "add(3, 4)", bindings)
	require.Equal(t, int64(7), v)
}

func TestEvalIfElse(t *testing.T) {
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(`
x = 1
if x > 0:
    y = "pos"
else:
    y = "nonpos"
`), 0, true)
	require.NoError(t, err)
	_, err = eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)
	require.Equal(t, "pos", locals["y"])
}

func TestEvalForLoopAccumulates(t *testing.T) {
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(`
total = 0
for n in [1, 2, 3]:
    total = total + n
`), 0, true)
	require.NoError(t, err)
	_, err = eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)
	require.Equal(t, int64(6), locals["total"])
}

func TestEvalWhileLoopWithBreak(t *testing.T) {
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(`
n = 0
while True:
    n = n + 1
    if n == 3:
        break
`), 0, true)
	require.NoError(t, err)
	_, err = eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)
	require.Equal(t, int64(3), locals["n"])
}

func TestEvalGlobalDeclarationWritesModuleFrame(t *testing.T) {
	locals := map[string]interface{}{"counter": int64(0)}
	bindings := scope.BindingsStack{locals}
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(`
def bump():
    global counter
    counter = counter + 1

bump()
bump()
`), 0, true)
	require.NoError(t, err)
	_, err = eval.EvalModule(context.Background(), mod, bindings)
	require.NoError(t, err)
	require.Equal(t, int64(2), locals["counter"])
}

func TestAutoEvalImportsThenCalls(t *testing.T) {
	db := importdb.DefaultDB()
	var log strings.Builder
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}

	v, err := eval.AutoEval(context.Background(), "<test>", []byte(`b64decode("aGVsbG8=")`), bindings, eval.Options{
		AutoImport: autoimport.Options{DB: db, Log: &log},
	})
	require.NoError(t, err)
	require.Equal(t, "hello", v)
	require.Contains(t, log.String(), "b64decode")
}

func TestAutoEvalAttributeAccessOnImportedModule(t *testing.T) {
	db := importdb.DefaultDB()
	locals := map[string]interface{}{}
	bindings := scope.BindingsStack{locals}

	v, err := eval.AutoEval(context.Background(), "<test>", []byte(`os.sep`), bindings, eval.Options{
		AutoImport: autoimport.Options{DB: db},
	})
	require.NoError(t, err)
	require.NotEmpty(t, v)
}
