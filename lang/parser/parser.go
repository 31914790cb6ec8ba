// Package parser implements the recursive-descent parser that turns a
// scanned token stream into a lang/ast tree for the fragment language: a
// Python-like subset covering expressions, assignments, comprehensions,
// function and class definitions, and imports.
package parser

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/scanner"
	"github.com/mna/pyflyby/lang/token"
)

// Flags is a bitmask of the future-feature flags spec.md §4.1 and §6
// describe ("a future-flags set ... controls parsing", "an integer bitmask
// of future-feature flags"). The zero value selects legacy parsing: a bare
// `print` scans as the PRINT keyword.
type Flags int

const (
	// FlagPrintFunction forces print-as-function mode, as if the fragment
	// had already executed `from __future__ import print_function`: a bare
	// `print` scans as an ordinary identifier, so `print(a, b)` parses as a
	// call expression rather than the legacy print statement.
	FlagPrintFunction Flags = 1 << iota
)

// ParseFlag resolves a symbolic flag name, as spec.md §6's "Flags argument"
// accepts ("a symbolic name such as 'print_function'"), to its bit. It
// reports false for an unrecognized name.
func ParseFlag(name string) (Flags, bool) {
	switch name {
	case "print_function":
		return FlagPrintFunction, true
	default:
		return 0, false
	}
}

// ParseFiles parses the given source files and returns the fileset along
// with the parsed modules and any error encountered. The error, if non-nil,
// is guaranteed to be a scanner.ErrorList.
//
// flags seeds every file's initial parse mode (see Flags); when autoFlags
// is set, a file that fails to parse under flags is retried once with
// FlagPrintFunction toggled, exactly as ParseModule does for a single
// fragment (spec.md §4.1, §7).
func ParseFiles(ctx context.Context, flags Flags, autoFlags bool, files ...string) (*token.FileSet, []*ast.Module, error) {
	if len(files) == 0 {
		return nil, nil, nil
	}

	var errs scanner.ErrorList
	res := make([]*ast.Module, 0, len(files))
	fs := token.NewFileSet()

	for _, file := range files {
		b, err := os.ReadFile(file)
		if err != nil {
			errs.Add(token.Position{Filename: file}, err.Error())
			continue
		}
		mod, perr := ParseModule(ctx, fs, file, b, flags, autoFlags)
		if perr != nil {
			var fileErrs scanner.ErrorList
			if errors.As(perr, &fileErrs) {
				errs = append(errs, fileErrs...)
			} else {
				errs.Add(token.Position{Filename: file}, perr.Error())
			}
		}
		res = append(res, mod)
	}
	errs.Sort()
	return fs, res, errs.Err()
}

// ParseModule parses a single fragment from src and returns its AST and any
// error encountered. The fragment is added to fset for position reporting
// under name. The error, if non-nil, is guaranteed to be a scanner.ErrorList.
//
// flags sets the initial parse mode (see Flags). auto_flags (spec.md §4.1,
// §7): if parsing under flags fails with a syntax error, the fragment is
// re-tokenized and re-parsed with FlagPrintFunction toggled, and that
// second result is returned instead if it succeeds.
func ParseModule(ctx context.Context, fset *token.FileSet, name string, src []byte, flags Flags, autoFlags bool) (*ast.Module, error) {
	var p parser
	mod := p.parseModule(fset, name, src, flags&FlagPrintFunction != 0)
	if err := p.errors.Err(); err != nil && autoFlags {
		var p2 parser
		mod2 := p2.parseModule(fset, name, src, flags&FlagPrintFunction == 0)
		if p2.errors.Err() == nil {
			return mod2, nil
		}
	}
	return mod, p.errors.Err()
}

// parser parses a single fragment and builds its AST.
type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	tok token.Token
	val token.Value

	// printAsFunction is set once from parseModule and toggled directly when
	// an explicit `from __future__ import print_function` is parsed, without
	// requiring the auto_flags retry.
	printAsFunction bool
}

func (p *parser) parseModule(fset *token.FileSet, name string, src []byte, printAsFunction bool) *ast.Module {
	p.file = fset.AddFile(name, -1, len(src))
	p.printAsFunction = printAsFunction
	p.scanner.Init(p.file, src, p.errors.Add, printAsFunction)
	p.advance()

	mod := &ast.Module{Name: name, Start: p.val.Pos}
	mod.Body = p.parseStmtsUntil(token.EOF)
	mod.End = p.val.Pos
	p.errors.Sort()
	return mod
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

var errPanicMode = errors.New("panic")

// expect consumes the current token if it is one of toks and returns its
// position, otherwise it records an error and panics with errPanicMode,
// which is recovered at the statement level and yields a skipped statement.
func (p *parser) expect(toks ...token.Token) token.Pos {
	pos := p.val.Pos
	for _, tok := range toks {
		if p.tok == tok {
			p.advance()
			return pos
		}
	}
	p.errorExpected(pos, toks)
	panic(errPanicMode)
}

func (p *parser) accept(tok token.Token) bool {
	if p.tok == tok {
		p.advance()
		return true
	}
	return false
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, toks []token.Token) {
	var names []string
	for _, t := range toks {
		names = append(names, "'"+t.String()+"'")
	}
	found := p.tok.String()
	if lit := p.val.Raw; lit != "" {
		found = lit
	}
	p.error(pos, "expected "+strings.Join(names, " or ")+", found "+found)
}

// skipToNewline consumes tokens until (and including) the next NEWLINE or
// EOF, used to recover after a statement fails to parse.
func (p *parser) skipToNewline() {
	for p.tok != token.NEWLINE && p.tok != token.EOF {
		p.advance()
	}
	if p.tok == token.NEWLINE {
		p.advance()
	}
}
