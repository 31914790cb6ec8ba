package autoimport_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mna/pyflyby/lang/autoimport"
	"github.com/mna/pyflyby/lang/importdb"
	"github.com/mna/pyflyby/lang/scope"
	"github.com/stretchr/testify/require"
)

func TestAutoImportExecutesKnownImport(t *testing.T) {
	db := importdb.DefaultDB()
	var log strings.Builder
	bindings := scope.BindingsStack{{}}

	ok, err := autoimport.AutoImportSource(context.Background(), "<test>", []byte("os.path.join"), bindings, autoimport.Options{
		DB:  db,
		Log: &log,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, log.String(), "[PYFLYBY] import os")
	_, ok2 := bindings.Get("os")
	require.True(t, ok2)
}

func TestAutoImportSilentOnDatabaseMiss(t *testing.T) {
	db := importdb.New()
	var log strings.Builder
	bindings := scope.BindingsStack{{}}

	ok, err := autoimport.AutoImportSource(context.Background(), "<test>", []byte("totally_unknown_name"), bindings, autoimport.Options{
		DB:  db,
		Log: &log,
	})
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, log.String())
}

func TestAutoImportIdempotent(t *testing.T) {
	db := importdb.DefaultDB()
	bindings := scope.BindingsStack{{}}

	var log1 strings.Builder
	ok, err := autoimport.AutoImportSource(context.Background(), "<test>", []byte("os.path.join"), bindings, autoimport.Options{DB: db, Log: &log1})
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, log1.String())

	var log2 strings.Builder
	ok, err = autoimport.AutoImportSource(context.Background(), "<test>", []byte("os.path.join"), bindings, autoimport.Options{DB: db, Log: &log2})
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, log2.String())
}

func TestAutoImportErrorIsolation(t *testing.T) {
	db := importdb.New()
	db.Add("b64decode", "from base64 import b64decode")
	db.Add("brokenmodule", "import brokenmodule")
	var log strings.Builder
	bindings := scope.BindingsStack{{}}

	ok, err := autoimport.AutoImportSource(context.Background(), "<test>", []byte("b64decode\nbrokenmodule"), bindings, autoimport.Options{
		DB:  db,
		Log: &log,
	})
	require.NoError(t, err)
	require.False(t, ok)
	require.Contains(t, log.String(), "b64decode")
	require.Contains(t, log.String(), "Error attempting to 'import brokenmodule'")
	_, ok2 := bindings.Get("b64decode")
	require.True(t, ok2)
}
