package importdb_test

import (
	"strings"
	"testing"

	"github.com/mna/pyflyby/lang/importdb"
	"github.com/stretchr/testify/require"
)

func TestLookupMiss(t *testing.T) {
	db := importdb.New()
	require.Nil(t, db.Lookup("nonexistent"))
}

func TestAddPreservesInsertionOrder(t *testing.T) {
	db := importdb.New()
	db.Add("np", "import numpy")
	db.Add("np", "import numpy as np")
	require.Equal(t, []string{"import numpy", "import numpy as np"}, db.Lookup("np"))
}

func TestLoadScalarAndSequence(t *testing.T) {
	doc := `
b64decode: "from base64 import b64decode"
os:
  - "import os"
  - "import os.path"
`
	db, err := importdb.Load(strings.NewReader(doc))
	require.NoError(t, err)
	require.Equal(t, []string{"from base64 import b64decode"}, db.Lookup("b64decode"))
	require.Equal(t, []string{"import os", "import os.path"}, db.Lookup("os"))
}

func TestLoadEmptyDocument(t *testing.T) {
	db, err := importdb.Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, db.Idents())
}

func TestDefaultDBCoversScenarios(t *testing.T) {
	db := importdb.DefaultDB()
	require.NotEmpty(t, db.Lookup("os"))
	require.NotEmpty(t, db.Lookup("b64decode"))
}

func TestIdentsSorted(t *testing.T) {
	db := importdb.New()
	db.Add("zeta", "import zeta")
	db.Add("alpha", "import alpha")
	require.Equal(t, []string{"alpha", "zeta"}, db.Idents())
}
