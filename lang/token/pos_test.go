package token

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type startEnd struct{ s, e Pos }

func (se startEnd) Span() (start, end Pos) { return se.s, se.e }

func TestPosInside(t *testing.T) {
	cases := []struct {
		ref, test startEnd
		want      bool
	}{
		{startEnd{1, 2}, startEnd{3, 4}, false},
		{startEnd{1, 3}, startEnd{3, 4}, false},
		{startEnd{1, 4}, startEnd{3, 4}, true},
		{startEnd{2, 4}, startEnd{3, 4}, true},
		{startEnd{3, 4}, startEnd{3, 4}, true},
		{startEnd{4, 5}, startEnd{3, 4}, false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%v-%v", c.ref, c.test), func(t *testing.T) {
			require.Equal(t, c.want, PosInside(c.ref, c.test))
		})
	}
}

func TestFileLineCol(t *testing.T) {
	fset := NewFileSet()
	f := fset.AddFile("test", -1, 10)
	// newline characters at raw (0-based) offsets 3, 5, 8.
	f.AddLine(3)
	f.AddLine(5)
	f.AddLine(8)

	cases := []struct {
		pos       Pos
		line, col int
	}{
		{1, 1, 1},
		{4, 1, 4}, // the newline itself still belongs to line 1
		{5, 2, 1}, // first char of line 2
		{9, 3, 3},
		{10, 4, 1},
		{11, 4, 2}, // EOF position
	}
	for _, c := range cases {
		pos := fset.Position(c.pos)
		require.Equal(t, c.line, pos.Line, "pos %d line", c.pos)
		require.Equal(t, c.col, pos.Column, "pos %d col", c.pos)
	}
}

func TestFormatPos(t *testing.T) {
	fset := NewFileSet()
	f0 := fset.AddFile("test", -1, 10)

	require.Equal(t, "test:-:-", FormatPos(PosLong, f0, NoPos, true))
	require.Equal(t, "-", FormatPos(PosOffsets, f0, NoPos, true))
	require.Equal(t, "0", FormatPos(PosRaw, f0, NoPos, true))
	require.Equal(t, "", FormatPos(PosNone, f0, NoPos, true))
	require.Equal(t, "test:1:1", FormatPos(PosLong, f0, 1, true))
	require.Equal(t, "0", FormatPos(PosOffsets, f0, 1, true))
	require.Equal(t, "1", FormatPos(PosRaw, f0, 1, true))
	require.Equal(t, "1:2", FormatPos(PosLong, f0, 2, false))
}
