package scanner_test

import (
	"testing"

	"github.com/mna/pyflyby/lang/scanner"
	"github.com/mna/pyflyby/lang/token"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, src string, printAsFunction bool) ([]token.Token, []token.Value) {
	t.Helper()

	fset := token.NewFileSet()
	f := fset.AddFile("test.py", -1, len(src))

	var errs []string
	var s scanner.Scanner
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, pos.String()+": "+msg)
	}, printAsFunction)

	var toks []token.Token
	var vals []token.Value
	for {
		var v token.Value
		tok := s.Scan(&v)
		toks = append(toks, tok)
		vals = append(vals, v)
		if tok == token.EOF {
			break
		}
	}
	require.Empty(t, errs, "unexpected scan errors: %v", errs)
	return toks, vals
}

func TestScanSimpleStatement(t *testing.T) {
	toks, _ := scanAll(t, "x = 1\n", false)
	require.Equal(t, []token.Token{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE, token.EOF,
	}, toks)
}

func TestScanIndentation(t *testing.T) {
	src := "def f():\n    x = 1\n    return x\ny = 2\n"
	toks, _ := scanAll(t, src, true)
	require.Equal(t, []token.Token{
		token.DEF, token.IDENT, token.LPAREN, token.RPAREN, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.RETURN, token.IDENT, token.NEWLINE,
		token.DEDENT,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanNestedDedent(t *testing.T) {
	src := "if x:\n    if y:\n        pass\nelse:\n    pass\n"
	toks, _ := scanAll(t, src, true)
	require.Equal(t, []token.Token{
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.IF, token.IDENT, token.COLON, token.NEWLINE,
		token.INDENT,
		token.PASS, token.NEWLINE,
		token.DEDENT, token.DEDENT,
		token.ELSE, token.COLON, token.NEWLINE,
		token.INDENT,
		token.PASS, token.NEWLINE,
		token.DEDENT,
		token.EOF,
	}, toks)
}

func TestScanBlankAndCommentLinesIgnored(t *testing.T) {
	src := "x = 1\n\n# a comment\n\ny = 2\n"
	toks, _ := scanAll(t, src, true)
	require.Equal(t, []token.Token{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanImplicitLineJoinInParens(t *testing.T) {
	src := "f(1,\n  2,\n  3)\n"
	toks, _ := scanAll(t, src, true)
	require.Equal(t, []token.Token{
		token.IDENT, token.LPAREN,
		token.INT, token.COMMA,
		token.INT, token.COMMA,
		token.INT, token.RPAREN, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanExplicitLineContinuation(t *testing.T) {
	src := "x = 1 + \\\n    2\n"
	toks, _ := scanAll(t, src, true)
	require.Equal(t, []token.Token{
		token.IDENT, token.ASSIGN, token.INT, token.PLUS, token.INT, token.NEWLINE,
		token.EOF,
	}, toks)
}

func TestScanPrintStatementVsFunction(t *testing.T) {
	toksStmt, _ := scanAll(t, "print x\n", false)
	require.Equal(t, []token.Token{token.PRINT, token.IDENT, token.NEWLINE, token.EOF}, toksStmt)

	toksFunc, _ := scanAll(t, "print(x)\n", true)
	require.Equal(t, []token.Token{
		token.IDENT, token.LPAREN, token.IDENT, token.RPAREN, token.NEWLINE, token.EOF,
	}, toksFunc)
}

func TestScanStrings(t *testing.T) {
	toks, vals := scanAll(t, `s = "a\nb"` + "\n", true)
	require.Equal(t, []token.Token{token.IDENT, token.ASSIGN, token.STRING, token.NEWLINE, token.EOF}, toks)
	require.Equal(t, "a\nb", vals[2].String)
}

func TestScanTripleQuotedString(t *testing.T) {
	src := "s = '''line one\nline two'''\n"
	toks, vals := scanAll(t, src, true)
	require.Equal(t, []token.Token{token.IDENT, token.ASSIGN, token.STRING, token.NEWLINE, token.EOF}, toks)
	require.Equal(t, "line one\nline two", vals[2].String)
}

func TestScanRawAndBytesPrefixes(t *testing.T) {
	toks, vals := scanAll(t, `r"a\nb"`, true)
	require.Equal(t, []token.Token{token.STRING, token.NEWLINE, token.EOF}, toks)
	require.Equal(t, `a\nb`, vals[0].String)

	toks, vals = scanAll(t, `b"abc"`, true)
	require.Equal(t, []token.Token{token.BYTES, token.NEWLINE, token.EOF}, toks)
	require.Equal(t, "abc", vals[0].String)
}

func TestScanNumbers(t *testing.T) {
	toks, vals := scanAll(t, "1 1.5 0x1F 0o17 0b101 1e10 1_000\n", true)
	require.Equal(t, []token.Token{
		token.INT, token.FLOAT, token.INT, token.INT, token.INT, token.FLOAT, token.INT,
		token.NEWLINE, token.EOF,
	}, toks)
	require.EqualValues(t, 1, vals[0].Int)
	require.EqualValues(t, 1.5, vals[1].Float)
	require.EqualValues(t, 31, vals[2].Int)
	require.EqualValues(t, 15, vals[3].Int)
	require.EqualValues(t, 5, vals[4].Int)
	require.EqualValues(t, 1000, vals[6].Int)
}

func TestScanUnterminatedStringReportsError(t *testing.T) {
	fset := token.NewFileSet()
	src := "x = \"abc\n"
	f := fset.AddFile("test.py", -1, len(src))

	var errs []string
	var s scanner.Scanner
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	}, true)

	var v token.Value
	for {
		tok := s.Scan(&v)
		if tok == token.EOF {
			break
		}
	}
	require.Contains(t, errs, "string literal not terminated")
}

func TestScanMismatchedDedentReportsError(t *testing.T) {
	fset := token.NewFileSet()
	src := "if x:\n    pass\n  y\n"
	f := fset.AddFile("test.py", -1, len(src))

	var errs []string
	var s scanner.Scanner
	s.Init(f, []byte(src), func(pos token.Position, msg string) {
		errs = append(errs, msg)
	}, true)

	var v token.Value
	for {
		tok := s.Scan(&v)
		if tok == token.EOF {
			break
		}
	}
	require.Contains(t, errs, "unindent does not match any outer indentation level")
}
