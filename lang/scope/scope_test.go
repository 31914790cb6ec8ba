package scope_test

import (
	"context"
	"testing"

	"github.com/mna/pyflyby/lang/parser"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/mna/pyflyby/lang/token"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string, bindings scope.BindingsStack, opts scope.Options) []string {
	t.Helper()
	fset := token.NewFileSet()
	mod, err := parser.ParseModule(context.Background(), fset, "test", []byte(src), 0, true)
	require.NoError(t, err)
	missing, err := scope.Analyze(mod, bindings, opts)
	require.NoError(t, err)
	return missing
}

func TestSimpleMissing(t *testing.T) {
	got := analyze(t, "os.path.join", nil, scope.DefaultOptions())
	require.Equal(t, []string{"os.path.join"}, got)
}

type fakeModule map[string]interface{}

func (m fakeModule) GetAttr(name string) (interface{}, bool) {
	v, ok := m[name]
	return v, ok
}

func TestProvidedHeadResolvesAttributeChain(t *testing.T) {
	osModule := fakeModule{"path": fakeModule{"join": func() {}}}
	bindings := scope.BindingsStack{{"os": osModule}}
	got := analyze(t, "os.path.join", bindings, scope.DefaultOptions())
	require.Empty(t, got)
}

func TestDottedPrefixRollup(t *testing.T) {
	osModule := fakeModule{"path": fakeModule{}} // no "join" attribute
	bindings := scope.BindingsStack{{"os": osModule}}
	got := analyze(t, "os.path.join", bindings, scope.DefaultOptions())
	require.Equal(t, []string{"os.path.join"}, got)
}

func TestListCompLeaks(t *testing.T) {
	got := analyze(t, "[x+y+z for x,y in [(1,2)]]\ny", nil, scope.DefaultOptions())
	require.Equal(t, []string{"z"}, got)
}

func TestGeneratorDoesNotLeak(t *testing.T) {
	got := analyze(t, "(x+y+z for x,y in [(1,2)])\ny", nil, scope.DefaultOptions())
	require.Equal(t, []string{"y", "z"}, got)
}

func TestLateBindingInFunction(t *testing.T) {
	src := "def f():\n    return g()\ndef g():\n    return 1\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Empty(t, got)
}

func TestNoLateBindingAtModuleLevel(t *testing.T) {
	src := "print(g)\ng = 1\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Equal(t, []string{"g"}, got)
}

func TestClassFrameIsolatedFromNestedFunctions(t *testing.T) {
	src := "class C:\n    x = 1\n    def f(self):\n        return x\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Equal(t, []string{"x"}, got)
}

func TestAttributeWriteCountsAsRead(t *testing.T) {
	src := "a.b.y = 1\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Equal(t, []string{"a.b"}, got)
}

func TestTupleTargetBindsEveryLeaf(t *testing.T) {
	src := "(a, (b, c)) = x\nprint(a, b, c)\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Equal(t, []string{"x"}, got)
}

func TestGlobalDeclarationBindsInBothFrames(t *testing.T) {
	src := "def f():\n    global g\n    g = 1\ndef h():\n    return g\n"
	got := analyze(t, src, nil, scope.DefaultOptions())
	require.Empty(t, got)
}
