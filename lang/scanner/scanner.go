// Some of the scanner package is adapted from the Go source code:
// https://cs.opensource.google/go/go/+/refs/tags/go1.22.1:src/go/scanner/scanner.go
//
// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package scanner tokenizes fragments of the host dynamic language: a
// Python-like grammar whose statement boundaries and block structure are
// carried by indentation rather than explicit delimiters. The scanner is
// therefore responsible for NEWLINE, INDENT and DEDENT tokens in addition to
// the usual identifiers, literals and punctuation, and for suppressing all
// three inside an open ( [ { so that multi-line calls, literals and
// parenthesized expressions scan as a single logical line.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mna/pyflyby/lang/token"
)

// TokenAndValue combines the token type with the token value type in the same
// struct.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFiles is a helper function that tokenizes the source files and returns
// the list of tokens, grouped by the file at the same index, and produces any
// error encountered. The error, if non-nil, is guaranteed to implement
// Unwrap() []error. Files are scanned with the print-as-function flag off
// (legacy `print x` statements are recognized); use Scanner directly when a
// different flag is required.
func ScanFiles(ctx context.Context, files ...string) (*token.FileSet, [][]TokenAndValue, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var (
		s      Scanner
		tokVal token.Value
		el     ErrorList
	)

	fs := token.NewFileSet()
	tokensByFile := make([][]TokenAndValue, len(files))
	for i, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			el.Add(token.Position{Filename: file}, err.Error())
			continue
		}

		fsf := fs.AddFile(file, -1, len(b))
		s.Init(fsf, b, el.Add, false)
		for {
			tok := s.Scan(&tokVal)
			tokensByFile[i] = append(tokensByFile[i], TokenAndValue{
				Token: tok,
				Value: tokVal,
			})
			if tok == token.EOF {
				break
			}
		}
	}
	el.Sort()
	return fs, tokensByFile, el.Err()
}

// Scanner tokenizes source files for the parser to consume. The zero value
// is not usable; call Init first.
type Scanner struct {
	// immutable state after Init
	file            *token.File // source file handle
	src             []byte
	err             func(pos token.Position, msg string)
	printAsFunction bool // if true, `print` scans as IDENT, never as the PRINT keyword

	// mutable scanning state
	sb               strings.Builder // writes to Builder never fail, so errors are ignored
	pendingSurrogate rune            // in a string literal, the first half of a surrogate pair, pending the second (or rendered as replacement rune)
	invalidByte      byte            // when cur==RuneError due to failed utf8 decode, this is the invalid byte
	cur              rune            // current character
	off              int             // character offset in bytes of cur
	roff             int             // reading offset in bytes (position after current character)

	// indentation/logical-line state
	parenDepth     int   // depth of open ( [ {, suppresses NEWLINE/INDENT/DEDENT while > 0
	indent         []int // stack of indentation widths of currently open blocks, starts at [0]
	pendingDedents int   // DEDENT tokens still owed before resuming normal scanning
	atLineStart    bool  // true when the next Scan call must re-measure indentation
	needsNewline   bool  // true once the current logical line has produced a real token
}

var bom = [2]byte{0xFE, 0xFF}

// Init initializes the scanner to tokenize a new file. It panics if the file
// size is not the same as the length of the src slice. printAsFunction
// selects whether a bare `print` identifier scans as the PRINT keyword
// (false, the legacy `print a, b` statement) or as an ordinary identifier
// (true, so that `print(a, b)` parses as a call expression).
func (s *Scanner) Init(file *token.File, src []byte, errHandler func(token.Position, string), printAsFunction bool) {
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}

	s.file = file
	s.src = src
	s.err = errHandler
	s.printAsFunction = printAsFunction

	s.sb.Reset()
	s.pendingSurrogate = 0
	s.invalidByte = 0
	s.cur = ' '
	s.off = 0
	s.roff = 0

	s.parenDepth = 0
	s.indent = []int{0}
	s.pendingDedents = 0
	s.atLineStart = true
	s.needsNewline = false

	// skip initial BOM if present
	if len(src) >= len(bom) && bytes.Equal(src[:len(bom)], bom[:]) {
		s.off += len(bom)
		s.roff += len(bom)
	}
	s.advance()
}

// SetPrintAsFunction lets a parser-driven retry (the auto_flags mechanism,
// or an explicit `from __future__ import print_function`) change the mode
// mid-stream without re-initializing the whole scanner.
func (s *Scanner) SetPrintAsFunction(v bool) { s.printAsFunction = v }

// peek returns the byte following the most recently read character without
// advancing the scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.roff < len(s.src) {
		return s.src[s.roff]
	}
	return 0
}

// read the next Unicode char into s.cur; s.cur < 0 means end-of-file.
func (s *Scanner) advance() {
	if s.roff >= len(s.src) {
		s.off = len(s.src)
		if s.cur == '\n' {
			s.file.AddLine(s.off)
		}
		s.cur = -1
		return
	}

	s.off = s.roff
	if s.cur == '\n' {
		s.file.AddLine(s.off)
	}

	// fast path if the rune is an ASCII char, no decoding necessary
	s.invalidByte = 0
	r, w := rune(s.src[s.roff]), 1
	if r >= utf8.RuneSelf {
		// not ASCII
		r, w = utf8.DecodeRune(s.src[s.roff:])
		if r == utf8.RuneError && w == 1 {
			s.error(s.off, "illegal UTF-8 encoding")
			s.invalidByte = s.src[s.roff]
		}
	}
	s.roff += w
	s.cur = r
}

func (s *Scanner) error(off int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(off)), msg)
	}
}

func (s *Scanner) errorf(off int, format string, args ...any) {
	s.error(off, fmt.Sprintf(format, args...))
}

// advance only if the current char matches any of the specified ones.
func (s *Scanner) advanceIf(matches ...byte) bool {
	if bytes.ContainsRune(matches, s.cur) {
		s.advance()
		return true
	}
	return false
}

// Scan returns the next token in the source file. INDENT and DEDENT are
// synthesized as needed, one per call, before the token that follows them.
func (s *Scanner) Scan(tokVal *token.Value) (tok token.Token) {
	if s.pendingDedents > 0 {
		s.pendingDedents--
		*tokVal = token.Value{Pos: s.file.Pos(s.off)}
		return token.DEDENT
	}
	if s.atLineStart && s.parenDepth == 0 {
		if tok, ok := s.scanIndentation(tokVal); ok {
			return tok
		}
	}
	return s.scanToken(tokVal)
}

// scanIndentation consumes any number of blank or comment-only lines, then
// measures the indentation of the next line with real content and decides
// whether it opens a new block (INDENT), closes one or more (DEDENT, with
// any further ones queued in pendingDedents), or matches the current block
// (in which case ok is false and the caller should fall through to
// scanToken for the same Scan call).
func (s *Scanner) scanIndentation(tokVal *token.Value) (token.Token, bool) {
	for {
		col := 0
		for {
			switch s.cur {
			case ' ':
				col++
				s.advance()
				continue
			case '\t':
				col += 8 - col%8
				s.advance()
				continue
			}
			break
		}

		switch {
		case s.cur == '#':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
			if s.cur == '\n' {
				s.advance()
			}
			continue
		case s.cur == '\n':
			s.advance()
			continue
		case s.cur == -1:
			s.atLineStart = false
			if tok, ok := s.popIndentsTo(0); ok {
				*tokVal = token.Value{Pos: s.file.Pos(s.off)}
				return tok, true
			}
			*tokVal = token.Value{Pos: s.file.Pos(s.off)}
			return token.EOF, true
		}

		s.atLineStart = false
		top := s.indent[len(s.indent)-1]
		switch {
		case col > top:
			s.indent = append(s.indent, col)
			*tokVal = token.Value{Pos: s.file.Pos(s.off)}
			return token.INDENT, true
		case col < top:
			tok, ok := s.popIndentsTo(col)
			*tokVal = token.Value{Pos: s.file.Pos(s.off)}
			return tok, ok
		default:
			return token.ILLEGAL, false
		}
	}
}

// popIndentsTo pops indentation levels deeper than col, queuing all but one
// of the resulting DEDENTs in pendingDedents, and returns (DEDENT, true) if
// at least one level was popped. If col does not match any open level
// exactly, it reports an error but still dedents to the closest enclosing
// level.
func (s *Scanner) popIndentsTo(col int) (token.Token, bool) {
	n := 0
	for len(s.indent) > 1 && s.indent[len(s.indent)-1] > col {
		s.indent = s.indent[:len(s.indent)-1]
		n++
	}
	if s.indent[len(s.indent)-1] != col {
		s.error(s.off, "unindent does not match any outer indentation level")
	}
	if n == 0 {
		return token.ILLEGAL, false
	}
	s.pendingDedents = n - 1
	return token.DEDENT, true
}

// skipInlineSpace skips spaces, tabs, comments and backslash-newline line
// continuations within a logical line. It never crosses a bare newline.
func (s *Scanner) skipInlineSpace() {
	for {
		switch {
		case s.cur == ' ' || s.cur == '\t' || s.cur == '\r':
			s.advance()
		case s.cur == '\\' && s.peek() == '\n':
			s.advance()
			s.advance()
		case s.cur == '#':
			for s.cur != '\n' && s.cur != -1 {
				s.advance()
			}
		default:
			return
		}
	}
}

// scanToken scans everything but indentation: newlines, identifiers,
// keywords, numbers, strings and punctuation.
func (s *Scanner) scanToken(tokVal *token.Value) (tok token.Token) {
	s.skipInlineSpace()

	pos := s.file.Pos(s.off)
	start := s.off

	switch cur := s.cur; {
	case cur == '\n':
		s.advance()
		if s.parenDepth > 0 {
			return s.scanToken(tokVal)
		}
		s.atLineStart = true
		wasPending := s.needsNewline
		s.needsNewline = false
		if !wasPending {
			// a blank line (possibly comment-only) was already filtered out by
			// skipInlineSpace/scanIndentation; this NEWLINE belongs to real
			// content that preceded it.
			return s.Scan(tokVal)
		}
		*tokVal = token.Value{Raw: "\n", Pos: pos}
		return token.NEWLINE

	case cur == -1:
		if s.needsNewline {
			s.needsNewline = false
			s.atLineStart = true
			*tokVal = token.Value{Pos: pos}
			return token.NEWLINE
		}
		s.atLineStart = true
		return s.Scan(tokVal)

	case isLetter(cur):
		lit := s.ident()
		if isStringPrefix(lit) && (s.cur == '"' || s.cur == '\'') {
			quote := s.cur
			s.advance()
			raw, byts := stringPrefixFlags(lit)
			litTxt, val := s.stringLiteral(quote, raw, start)
			tok = token.STRING
			if byts {
				tok = token.BYTES
			}
			*tokVal = token.Value{Raw: litTxt, Pos: pos, String: val}
			s.needsNewline = true
			return tok
		}
		tok = token.Lookup(lit)
		if lit == "print" && !s.printAsFunction {
			tok = token.PRINT
		}
		*tokVal = token.Value{Raw: lit, Pos: pos}
		s.needsNewline = true
		return tok

	case isDecimal(cur) || cur == '.' && isDecimal(rune(s.peek())):
		var base int
		var lit string
		tok, base, lit = s.number()
		*tokVal = token.Value{Raw: lit, Pos: pos}
		if tok == token.INT {
			v, err := numberToInt(lit, base)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, "integer literal value out of range")
			}
			tokVal.Int = v
		} else if tok == token.FLOAT {
			v, err := numberToFloat(lit)
			if err != nil && errors.Is(err, strconv.ErrRange) {
				s.error(start, "float literal value out of range")
			}
			tokVal.Float = v
		}
		s.needsNewline = true
		return tok

	case cur == '"' || cur == '\'':
		quote := cur
		s.advance()
		lit, val := s.stringLiteral(quote, false, start)
		*tokVal = token.Value{Raw: lit, Pos: pos, String: val}
		s.needsNewline = true
		return token.STRING
	}

	s.needsNewline = true
	s.advance() // always make progress
	return s.scanPunct(tokVal, pos, start)
}

// scanPunct handles every token that is not a newline, identifier, number or
// string: punctuation and operators, tracking paren/bracket/brace depth so
// NEWLINE/INDENT/DEDENT stay suppressed across an implicit line join.
func (s *Scanner) scanPunct(tokVal *token.Value, pos token.Pos, start int) (tok token.Token) {
	cur := s.src[start]
	switch cur {
	case '(':
		s.parenDepth++
		tok = token.LPAREN
	case ')':
		s.parenDepth--
		tok = token.RPAREN
	case '[':
		s.parenDepth++
		tok = token.LBRACK
	case ']':
		s.parenDepth--
		tok = token.RBRACK
	case '{':
		s.parenDepth++
		tok = token.LBRACE
	case '}':
		s.parenDepth--
		tok = token.RBRACE
	case ',':
		tok = token.COMMA
	case ';':
		tok = token.SEMI
	case '~':
		tok = token.TILDE
	case '@':
		tok = token.AT
	case '=':
		tok = token.ASSIGN
		if s.advanceIf('=') {
			tok = token.EQL
		}
	case '+':
		tok = token.PLUS
		if s.advanceIf('=') {
			tok = token.PLUS_EQ
		}
	case '-':
		tok = token.MINUS
		if s.advanceIf('=') {
			tok = token.MINUS_EQ
		}
	case '%':
		tok = token.PERCENT
		if s.advanceIf('=') {
			tok = token.PERCENT_EQ
		}
	case '^':
		tok = token.CIRCUMFLEX
	case '&':
		tok = token.AMPERSAND
	case '|':
		tok = token.PIPE
	case '*':
		tok = token.STAR
		if s.advanceIf('*') {
			tok = token.STARSTAR
		} else if s.advanceIf('=') {
			tok = token.STAR_EQ
		}
	case '/':
		tok = token.SLASH
		if s.advanceIf('/') {
			tok = token.SLASHSLASH
		} else if s.advanceIf('=') {
			tok = token.SLASH_EQ
		}
	case '<':
		tok = token.LT
		if s.advanceIf('<') {
			tok = token.LTLT
		} else if s.advanceIf('=') {
			tok = token.LE
		}
	case '>':
		tok = token.GT
		if s.advanceIf('>') {
			tok = token.GTGT
		} else if s.advanceIf('=') {
			tok = token.GE
		}
	case '!':
		if s.advanceIf('=') {
			tok = token.NEQ
		} else {
			s.errorf(start, "illegal character %#U", '!')
			tok = token.ILLEGAL
		}
	case ':':
		tok = token.COLON
	case '.':
		tok = token.DOT
	default:
		r := rune(cur)
		if r == utf8.RuneError && s.invalidByte > 0 {
			r = rune(s.invalidByte)
			s.invalidByte = 0
		}
		s.errorf(start, "illegal character %#U", r)
		tok = token.ILLEGAL
	}
	*tokVal = token.Value{Raw: string(s.src[start:s.off]), Pos: pos}
	return tok
}

func (s *Scanner) ident() string {
	start := s.off
	for isLetter(s.cur) || isDigit(s.cur) {
		s.advance()
	}
	return string(s.src[start:s.off])
}

func isLetter(rn rune) bool {
	return 'a' <= rn && rn <= 'z' ||
		'A' <= rn && rn <= 'Z' ||
		rn == '_' ||
		rn >= utf8.RuneSelf && unicode.IsLetter(rn)
}

func isDigit(rn rune) bool {
	return '0' <= rn && rn <= '9' ||
		rn >= utf8.RuneSelf && unicode.IsDigit(rn)
}

// isStringPrefix reports whether lit is a valid (case-insensitive) string
// literal prefix: r, b, u, f, or a raw/bytes or raw/f-string combination.
func isStringPrefix(lit string) bool {
	if len(lit) == 0 || len(lit) > 2 {
		return false
	}
	lower := strings.ToLower(lit)
	switch lower {
	case "r", "b", "u", "f", "rb", "br", "rf", "fr":
		return true
	}
	return false
}

func stringPrefixFlags(lit string) (raw, bytesLit bool) {
	lower := strings.ToLower(lit)
	return strings.Contains(lower, "r"), strings.Contains(lower, "b")
}
