package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenString(t *testing.T) {
	for tok := Token(0); tok < maxToken; tok++ {
		require.NotEqual(t, "<invalid token>", tok.String(), "token %d missing a name", tok)
	}
}

func TestLookup(t *testing.T) {
	require.Equal(t, DEF, Lookup("def"))
	require.Equal(t, CLASS, Lookup("class"))
	require.Equal(t, GLOBAL, Lookup("global"))
	require.Equal(t, TRUE, Lookup("True"))
	require.Equal(t, IDENT, Lookup("print"), "print is only a keyword in legacy mode, decided by the scanner")
	require.Equal(t, IDENT, Lookup("frobnicate"))
}

func TestIsBinop(t *testing.T) {
	require.True(t, PLUS.IsBinop())
	require.True(t, AND.IsBinop())
	require.True(t, IN.IsBinop())
	require.False(t, ASSIGN.IsBinop())
	require.False(t, NOT.IsBinop())
}

func TestIsUnop(t *testing.T) {
	require.True(t, NOT.IsUnop())
	require.True(t, MINUS.IsUnop())
	require.False(t, PLUS_EQ.IsUnop())
}

func TestIsAssignOp(t *testing.T) {
	require.True(t, ASSIGN.IsAssignOp())
	require.True(t, PLUS_EQ.IsAssignOp())
	require.False(t, EQL.IsAssignOp())
}
