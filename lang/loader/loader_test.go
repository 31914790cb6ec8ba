package loader_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mna/pyflyby/lang/importdb"
	"github.com/mna/pyflyby/lang/loader"
	"github.com/mna/pyflyby/lang/modules"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/stretchr/testify/require"
)

func TestLoadSymbolResolvesProvidedModuleAttribute(t *testing.T) {
	osModule, err := modules.Import("os")
	require.NoError(t, err)
	bindings := scope.BindingsStack{{"os": osModule}}

	v, err := loader.LoadSymbol(context.Background(), "os.path.join", bindings, nil, false, false, true)
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestLoadSymbolUnknownAttributeFails(t *testing.T) {
	osModule, err := modules.Import("os")
	require.NoError(t, err)
	bindings := scope.BindingsStack{{"os": osModule}}

	_, err = loader.LoadSymbol(context.Background(), "os.path.join.nonesuch", bindings, nil, false, false, true)
	require.Error(t, err)
	var lse *loader.LoadSymbolError
	require.True(t, errors.As(err, &lse))
	require.NotNil(t, lse.Unwrap())
}

func TestLoadSymbolAutoImportsHead(t *testing.T) {
	db := importdb.DefaultDB()
	bindings := scope.BindingsStack{{}}

	v, err := loader.LoadSymbol(context.Background(), "os.path.join", bindings, db, true, false, true)
	require.NoError(t, err)
	require.NotNil(t, v)
	_, ok := bindings.Get("os")
	require.True(t, ok)
}

// TestLoadSymbolExecutesDBStatementText guards against treating a DB
// identifier as a synonym for its own module path: DefaultDB's "b64decode"
// entry holds "from base64 import b64decode", not "import b64decode", so
// resolving it must parse and execute that statement text (as
// lang/autoimport does) rather than attempting modules.Import("b64decode").
func TestLoadSymbolExecutesDBStatementText(t *testing.T) {
	db := importdb.DefaultDB()
	bindings := scope.BindingsStack{{}}

	v, err := loader.LoadSymbol(context.Background(), "b64decode", bindings, db, true, false, true)
	require.NoError(t, err)
	require.NotNil(t, v)
	bound, ok := bindings.Get("b64decode")
	require.True(t, ok)
	require.Equal(t, reflect.ValueOf(bound).Pointer(), reflect.ValueOf(v).Pointer())
}

func TestLoadSymbolWithoutAutoImportFailsOnUnboundHead(t *testing.T) {
	bindings := scope.BindingsStack{{}}
	_, err := loader.LoadSymbol(context.Background(), "os.path.join", bindings, nil, false, false, true)
	require.Error(t, err)
}

func TestLoadSymbolRejectsNonDottedExpressionWithoutAllowEval(t *testing.T) {
	bindings := scope.BindingsStack{{}}
	_, err := loader.LoadSymbol(context.Background(), "1 + 1", bindings, nil, false, false, true)
	require.Error(t, err)
}

func TestLoadSymbolEvaluatesExpressionWhenAllowed(t *testing.T) {
	bindings := scope.BindingsStack{{}}
	v, err := loader.LoadSymbol(context.Background(), "1 + 1", bindings, nil, false, true, true)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}
