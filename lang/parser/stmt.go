package parser

import (
	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/token"
)

// parseStmtsUntil parses statements until the current token is end (DEDENT
// or EOF), recovering from a failed statement by skipping to the next
// NEWLINE so a single bad line doesn't abort the whole fragment.
func (p *parser) parseStmtsUntil(end token.Token) (stmts []ast.Stmt) {
	for p.tok != end && p.tok != token.EOF {
		stmts = append(stmts, p.parseStmtRecover())
	}
	return stmts
}

func (p *parser) parseStmtRecover() (s ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if r != errPanicMode {
				panic(r)
			}
			start := p.val.Pos
			p.skipToNewline()
			s = &ast.ExprStmt{X: &ast.BadExpr{Start: start, End: p.val.Pos}}
		}
	}()
	return p.parseStmt()
}

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.DEF:
		return p.parseFuncDef(nil)
	case token.CLASS:
		return p.parseClassDef(nil)
	case token.AT:
		return p.parseDecorated()
	default:
		return p.parseSimpleStmtLine()
	}
}

// parseSimpleStmtLine parses one or more ';'-separated small statements
// followed by a NEWLINE. Only the first is returned as the statement for
// this line's slot in the enclosing block; additional ';'-chained
// statements are still fully parsed (and so still validated and still able
// to fail), but they are not kept in the tree.
func (p *parser) parseSimpleStmtLine() ast.Stmt {
	first := p.parseSmallStmt()
	for p.tok == token.SEMI {
		p.advance()
		if p.tok == token.NEWLINE || p.tok == token.EOF {
			break
		}
		p.parseSmallStmt()
	}
	if p.tok == token.NEWLINE {
		p.advance()
	} else if p.tok != token.EOF {
		p.expect(token.NEWLINE)
	}
	return first
}

func (p *parser) parseSmallStmt() ast.Stmt {
	switch p.tok {
	case token.PASS:
		start := p.expect(token.PASS)
		return &ast.PassStmt{Start: start, End: p.val.Pos}
	case token.BREAK:
		start := p.expect(token.BREAK)
		return &ast.BreakStmt{Start: start, End: p.val.Pos}
	case token.CONTINUE:
		start := p.expect(token.CONTINUE)
		return &ast.ContinueStmt{Start: start, End: p.val.Pos}
	case token.RETURN:
		return p.parseReturn()
	case token.GLOBAL:
		return p.parseGlobal()
	case token.PRINT:
		return p.parsePrint()
	case token.IMPORT:
		return p.parseImport()
	case token.FROM:
		return p.parseFromImport()
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *parser) parseReturn() ast.Stmt {
	start := p.expect(token.RETURN)
	var val ast.Expr
	if p.tok != token.NEWLINE && p.tok != token.SEMI && p.tok != token.EOF {
		val = p.parseExprList()
	}
	return &ast.ReturnStmt{Value: val, Start: start, End: p.val.Pos}
}

func (p *parser) parseGlobal() ast.Stmt {
	start := p.expect(token.GLOBAL)
	names := []*ast.IdentExpr{p.parseIdent()}
	for p.accept(token.COMMA) {
		names = append(names, p.parseIdent())
	}
	return &ast.GlobalStmt{Names: names, Start: start, End: p.val.Pos}
}

// parsePrint parses the legacy `print a, b, c` statement. It is only ever
// reached when the scanner is in non-print-as-function mode, since
// otherwise `print` scans as a plain IDENT and this production never
// matches.
func (p *parser) parsePrint() ast.Stmt {
	start := p.expect(token.PRINT)
	var args []ast.Expr
	if p.tok != token.NEWLINE && p.tok != token.SEMI && p.tok != token.EOF {
		args = append(args, p.parseExpr())
		for p.accept(token.COMMA) {
			if p.tok == token.NEWLINE || p.tok == token.SEMI || p.tok == token.EOF {
				break
			}
			args = append(args, p.parseExpr())
		}
	}
	return &ast.PrintStmt{Args: args, Start: start, End: p.val.Pos}
}

func (p *parser) parseDottedName() []string {
	names := []string{p.expectIdentLit()}
	for p.tok == token.DOT {
		p.advance()
		names = append(names, p.expectIdentLit())
	}
	return names
}

func (p *parser) expectIdentLit() string {
	lit := p.val.Raw
	p.expect(token.IDENT)
	return lit
}

func (p *parser) parseImport() ast.Stmt {
	start := p.expect(token.IMPORT)
	names := []*ast.ImportAlias{p.parseImportAlias()}
	for p.accept(token.COMMA) {
		names = append(names, p.parseImportAlias())
	}
	return &ast.ImportStmt{Names: names, Start: start, End: p.val.Pos}
}

func (p *parser) parseImportAlias() *ast.ImportAlias {
	path := p.parseDottedName()
	al := &ast.ImportAlias{Path: path}
	if p.accept(token.AS) {
		al.As = p.parseIdent()
	}
	return al
}

// parseFromImport parses `from a.b import c [as d], ...`. A module path of
// exactly ["__future__"] with a name of "print_function" toggles
// print-as-function directly on the scanner and parser for the rest of this
// fragment, a feature of the original pyflyby project this grammar keeps
// distinct from the auto_flags retry heuristic (see SPEC_FULL.md).
func (p *parser) parseFromImport() ast.Stmt {
	start := p.expect(token.FROM)
	mod := p.parseDottedName()
	p.expect(token.IMPORT)

	var names []*ast.ImportAlias
	parseOne := func() {
		name := p.parseIdent()
		al := &ast.ImportAlias{Path: []string{name.Name}}
		if p.accept(token.AS) {
			al.As = p.parseIdent()
		}
		names = append(names, al)
	}
	if p.accept(token.LPAREN) {
		parseOne()
		for p.accept(token.COMMA) {
			if p.tok == token.RPAREN {
				break
			}
			parseOne()
		}
		p.expect(token.RPAREN)
	} else {
		parseOne()
		for p.accept(token.COMMA) {
			parseOne()
		}
	}

	stmt := &ast.ImportFromStmt{Module: mod, Names: names, Start: start, End: p.val.Pos}
	if len(mod) == 1 && mod[0] == "__future__" {
		for _, al := range names {
			if len(al.Path) == 1 && al.Path[0] == "print_function" {
				p.printAsFunction = true
				p.scanner.SetPrintAsFunction(true)
			}
		}
	}
	return stmt
}

// parseExprOrAssignStmt parses an expression statement, an augmented
// assignment, or a (possibly chained) plain assignment a = b = ... = value.
func (p *parser) parseExprOrAssignStmt() ast.Stmt {
	start := p.val.Pos
	first := p.parseExprList()

	if op := p.tok; op.IsAssignOp() && op != token.ASSIGN {
		p.advance()
		val := p.parseExprList()
		return &ast.AugAssignStmt{Target: first, Op: op, Value: val, Start: start, End: p.val.Pos}
	}

	if p.tok != token.ASSIGN {
		return &ast.ExprStmt{X: first}
	}

	exprs := []ast.Expr{first}
	for p.accept(token.ASSIGN) {
		exprs = append(exprs, p.parseExprList())
	}
	value := exprs[len(exprs)-1]
	targets := exprs[:len(exprs)-1]
	return &ast.AssignStmt{Targets: targets, Value: value, Start: start, End: p.val.Pos}
}

func (p *parser) parseIf() ast.Stmt {
	start := p.expect(token.IF)
	cond := p.parseExprList()
	body := p.parseBlock()
	stmt := &ast.IfStmt{Cond: cond, Body: body, Start: start}
	p.parseElifElse(stmt)
	stmt.End = p.val.Pos
	return stmt
}

// parseElifElse attaches an elif-chain or else-block to stmt.Else, modeling
// `elif` as a Block wrapping a single nested IfStmt.
func (p *parser) parseElifElse(stmt *ast.IfStmt) {
	if p.tok == token.ELIF {
		elifStart := p.val.Pos
		p.advance()
		cond := p.parseExprList()
		body := p.parseBlock()
		nested := &ast.IfStmt{Cond: cond, Body: body, Start: elifStart}
		p.parseElifElse(nested)
		nested.End = p.val.Pos
		stmt.Else = &ast.Block{Stmts: []ast.Stmt{nested}, Start: elifStart, End: nested.End}
	} else if p.accept(token.ELSE) {
		stmt.Else = p.parseBlock()
	}
}

func (p *parser) parseWhile() ast.Stmt {
	start := p.expect(token.WHILE)
	cond := p.parseExprList()
	body := p.parseBlock()
	stmt := &ast.WhileStmt{Cond: cond, Body: body, Start: start}
	if p.accept(token.ELSE) {
		stmt.Else = p.parseBlock()
	}
	stmt.End = p.val.Pos
	return stmt
}

func (p *parser) parseFor() ast.Stmt {
	start := p.expect(token.FOR)
	targets := []ast.Expr{p.parseTargetExpr()}
	for p.accept(token.COMMA) {
		if p.tok == token.IN {
			break
		}
		targets = append(targets, p.parseTargetExpr())
	}
	p.expect(token.IN)
	iter := p.parseExprList()
	body := p.parseBlock()
	stmt := &ast.ForStmt{Targets: targets, Iter: iter, Body: body, Start: start}
	if p.accept(token.ELSE) {
		stmt.Else = p.parseBlock()
	}
	stmt.End = p.val.Pos
	return stmt
}

// parseTargetExpr parses a single for-loop target: an identifier,
// attribute, subscript, or a parenthesized tuple of targets. It parses at
// the bitwise-or level, so the `in` that follows is not taken as a
// comparison operator; a starred target is not accepted, and the parser
// does not check that the result is assignable.
func (p *parser) parseTargetExpr() ast.Expr {
	return p.parseBitOr()
}

// parseBlock parses the suite following a ':' — either an indented block of
// statements, or (Python's one-line form) a single simple-statement line.
func (p *parser) parseBlock() *ast.Block {
	colonPos := p.expect(token.COLON)
	block := &ast.Block{Start: colonPos}
	if p.accept(token.NEWLINE) {
		block.Start = p.expect(token.INDENT)
		block.Stmts = p.parseStmtsUntil(token.DEDENT)
		p.expect(token.DEDENT)
	} else {
		block.Stmts = append(block.Stmts, p.parseSimpleStmtLine())
	}
	block.End = p.val.Pos
	return block
}

func (p *parser) parseDecorated() ast.Stmt {
	var decorators []ast.Expr
	for p.tok == token.AT {
		p.advance()
		decorators = append(decorators, p.parseExpr())
		p.expect(token.NEWLINE)
	}
	switch p.tok {
	case token.DEF:
		return p.parseFuncDef(decorators)
	case token.CLASS:
		return p.parseClassDef(decorators)
	default:
		p.error(p.val.Pos, "expected 'def' or 'class' after decorator")
		panic(errPanicMode)
	}
}

func (p *parser) parseFuncDef(decorators []ast.Expr) ast.Stmt {
	start := p.expect(token.DEF)
	if len(decorators) > 0 {
		start, _ = decorators[0].Span()
	}
	name := p.parseIdent()
	p.expect(token.LPAREN)
	params := p.parseParams()
	p.expect(token.RPAREN)
	body := p.parseBlock()
	return &ast.FuncDef{Name: name, Params: params, Body: body, Decorators: decorators, Start: start, End: p.val.Pos}
}

func (p *parser) parseClassDef(decorators []ast.Expr) ast.Stmt {
	start := p.expect(token.CLASS)
	if len(decorators) > 0 {
		start, _ = decorators[0].Span()
	}
	name := p.parseIdent()
	var bases []ast.Expr
	if p.accept(token.LPAREN) {
		if p.tok != token.RPAREN {
			bases = append(bases, p.parseExpr())
			for p.accept(token.COMMA) {
				if p.tok == token.RPAREN {
					break
				}
				bases = append(bases, p.parseExpr())
			}
		}
		p.expect(token.RPAREN)
	}
	body := p.parseBlock()
	return &ast.ClassDef{Name: name, Bases: bases, Body: body, Decorators: decorators, Start: start, End: p.val.Pos}
}

// parseParams parses a def or lambda parameter list (the caller consumes
// the surrounding delimiters — parens for def, none for lambda): plain
// params with optional defaults, then an optional *args, then an optional
// **kwargs.
func (p *parser) parseParams() *ast.Params {
	params := &ast.Params{}
	first := true
	for p.tok != token.RPAREN && p.tok != token.COLON {
		if !first {
			p.expect(token.COMMA)
			if p.tok == token.RPAREN || p.tok == token.COLON {
				break
			}
		}
		first = false

		switch {
		case p.tok == token.STARSTAR:
			p.advance()
			params.KwArg = p.parseIdent()
		case p.tok == token.STAR:
			p.advance()
			params.VarArg = p.parseIdent()
		default:
			name := p.parseIdent()
			var def ast.Expr
			if p.accept(token.ASSIGN) {
				def = p.parseExpr()
			}
			params.Args = append(params.Args, &ast.Param{Name: name, Default: def})
		}
	}
	return params
}

func (p *parser) parseIdent() *ast.IdentExpr {
	pos, lit := p.val.Pos, p.val.Raw
	p.expect(token.IDENT)
	return &ast.IdentExpr{Name: lit, Pos: pos}
}
