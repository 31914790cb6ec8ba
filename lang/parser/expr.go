package parser

import (
	"github.com/mna/pyflyby/lang/ast"
	"github.com/mna/pyflyby/lang/token"
)

// parseExprList parses a single expression, or — when followed by a comma —
// a bare tuple: a, b, c (used for assignment targets, return values, for-loop
// iterables and the legacy print statement's implicit tuple-less list).
func (p *parser) parseExprList() ast.Expr {
	start := p.val.Pos
	first := p.parseExpr()
	if p.tok != token.COMMA {
		return first
	}

	elts := []ast.Expr{first}
	trailing := false
	for p.accept(token.COMMA) {
		trailing = true
		if !p.startsExpr() {
			break
		}
		elts = append(elts, p.parseExpr())
		trailing = false
	}
	_ = trailing
	return &ast.TupleExpr{Elts: elts, Start: start, End: p.val.Pos}
}

// startsExpr reports whether the current token can begin an expression,
// used to detect a trailing comma (e.g. in `x, = y` or `(1, 2,)`).
func (p *parser) startsExpr() bool {
	switch p.tok {
	case token.RPAREN, token.RBRACK, token.RBRACE, token.NEWLINE, token.EOF,
		token.COLON, token.SEMI, token.ASSIGN:
		return false
	}
	return true
}

// parseExpr parses a single expression, the entry point for any context
// that wants exactly one value (a call argument, a subscript index, a
// default value, and so on).
func (p *parser) parseExpr() ast.Expr {
	if p.tok == token.LAMBDA {
		return p.parseLambda()
	}
	return p.parseOrTest()
}

func (p *parser) parseLambda() ast.Expr {
	start := p.expect(token.LAMBDA)
	params := p.parseParams()
	p.expect(token.COLON)
	body := p.parseExpr()
	return &ast.LambdaExpr{Lambda: start, Params: params, Body: body}
}

func (p *parser) parseOrTest() ast.Expr {
	first := p.parseAndTest()
	if p.tok != token.OR {
		return first
	}
	vals := []ast.Expr{first}
	for p.accept(token.OR) {
		vals = append(vals, p.parseAndTest())
	}
	return &ast.BoolOpExpr{Op: token.OR, Values: vals}
}

func (p *parser) parseAndTest() ast.Expr {
	first := p.parseNotTest()
	if p.tok != token.AND {
		return first
	}
	vals := []ast.Expr{first}
	for p.accept(token.AND) {
		vals = append(vals, p.parseNotTest())
	}
	return &ast.BoolOpExpr{Op: token.AND, Values: vals}
}

func (p *parser) parseNotTest() ast.Expr {
	if p.tok == token.NOT {
		pos := p.val.Pos
		p.advance()
		return &ast.UnaryExpr{Op: token.NOT, OpPos: pos, X: p.parseNotTest()}
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() ast.Expr {
	first := p.parseBitOr()
	var ops []token.Token
	var comparators []ast.Expr
	for {
		op, ok := p.tryCompOp()
		if !ok {
			break
		}
		ops = append(ops, op)
		comparators = append(comparators, p.parseBitOr())
	}
	if len(ops) == 0 {
		return first
	}
	return &ast.CompareExpr{Left: first, Ops: ops, Comparators: comparators}
}

// tryCompOp consumes and returns a comparison operator if the current token
// starts one, handling the two-token forms `not in` and `is not`.
func (p *parser) tryCompOp() (token.Token, bool) {
	switch p.tok {
	case token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ, token.IN:
		op := p.tok
		p.advance()
		return op, true
	case token.IS:
		p.advance()
		if p.tok == token.NOT {
			p.advance()
		}
		return token.IS, true
	case token.NOT:
		// lookahead: only "not in" is a comparison operator here
		save := p.tok
		_ = save
		// the scanner has already produced NOT; peek by temporarily advancing
		pos := p.val.Pos
		p.advance()
		if p.tok == token.IN {
			p.advance()
			return token.IN, true
		}
		// not actually "not in": this NOT belongs to a higher-level construct
		// that never calls tryCompOp mid-chain, so report it as unexpected.
		p.error(pos, "unexpected 'not'")
		panic(errPanicMode)
	}
	return token.ILLEGAL, false
}

func (p *parser) parseBitOr() ast.Expr {
	left := p.parseBitXor()
	for p.tok == token.PIPE {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseBitXor()}
	}
	return left
}

func (p *parser) parseBitXor() ast.Expr {
	left := p.parseBitAnd()
	for p.tok == token.CIRCUMFLEX {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseBitAnd()}
	}
	return left
}

func (p *parser) parseBitAnd() ast.Expr {
	left := p.parseShift()
	for p.tok == token.AMPERSAND {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseShift()}
	}
	return left
}

func (p *parser) parseShift() ast.Expr {
	left := p.parseArith()
	for p.tok == token.LTLT || p.tok == token.GTGT {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseArith()}
	}
	return left
}

func (p *parser) parseArith() ast.Expr {
	left := p.parseTerm()
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseTerm()}
	}
	return left
}

func (p *parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.SLASHSLASH || p.tok == token.PERCENT {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseFactor()}
	}
	return left
}

func (p *parser) parseFactor() ast.Expr {
	if p.tok == token.PLUS || p.tok == token.MINUS || p.tok == token.TILDE {
		pos, op := p.val.Pos, p.tok
		p.advance()
		return &ast.UnaryExpr{Op: op, OpPos: pos, X: p.parseFactor()}
	}
	return p.parsePower()
}

func (p *parser) parsePower() ast.Expr {
	left := p.parseTrailers(p.parseAtom())
	if p.tok == token.STARSTAR {
		p.advance()
		return &ast.BinOpExpr{Left: left, Op: token.STARSTAR, Right: p.parseFactor()}
	}
	return left
}

// parseTrailers parses zero or more '.', '[...]' or '(...)' trailers
// following a primary expression: attribute access, subscript and call.
func (p *parser) parseTrailers(x ast.Expr) ast.Expr {
	for {
		switch p.tok {
		case token.DOT:
			dot := p.val.Pos
			p.advance()
			x = &ast.AttributeExpr{Value: x, Dot: dot, Attr: p.parseIdent()}
		case token.LBRACK:
			start := p.expect(token.LBRACK)
			idx := p.parseExprList()
			p.expect(token.RBRACK)
			x = &ast.SubscriptExpr{Value: x, Index: idx, Start: start, End: p.val.Pos}
		case token.LPAREN:
			x = p.parseCall(x)
		default:
			return x
		}
	}
}

func (p *parser) parseCall(fn ast.Expr) ast.Expr {
	lparen := p.expect(token.LPAREN)
	call := &ast.CallExpr{Func: fn, Lparen: lparen}
	for p.tok != token.RPAREN {
		call.Args, call.Keywords = p.parseCallArg(call.Args, call.Keywords)
		if !p.accept(token.COMMA) {
			break
		}
	}
	call.Rparen = p.expect(token.RPAREN)
	return call
}

func (p *parser) parseCallArg(args []ast.Expr, kwargs []*ast.Keyword) ([]ast.Expr, []*ast.Keyword) {
	switch {
	case p.tok == token.STARSTAR:
		pos := p.val.Pos
		p.advance()
		kwargs = append(kwargs, &ast.Keyword{Value: &ast.DoubleStarExpr{Star: pos, X: p.parseExpr()}})
	case p.tok == token.STAR:
		pos := p.val.Pos
		p.advance()
		args = append(args, &ast.StarExpr{Star: pos, X: p.parseExpr()})
	case p.tok == token.IDENT:
		// could be `name=value` keyword or a plain expression starting with an
		// identifier; only a bare IDENT directly followed by '=' is a keyword.
		save := p.val
		name := p.parseIdent()
		if p.tok == token.ASSIGN {
			p.advance()
			kwargs = append(kwargs, &ast.Keyword{Name: name, Value: p.parseExpr()})
		} else {
			x := p.parseTrailers(name)
			x = p.finishBinaryChainFrom(x)
			_ = save
			args = append(args, x)
		}
	default:
		args = append(args, p.parseExpr())
	}
	return args, kwargs
}

// finishBinaryChainFrom continues parsing a full expression whose primary
// part (atom plus trailers) has already been parsed, used when a call
// argument had to speculatively parse an identifier to check for a keyword
// form and must now fall back to parsing the rest of an ordinary expression
// built on top of it (e.g. `f(x.y + 1)`).
func (p *parser) finishBinaryChainFrom(x ast.Expr) ast.Expr {
	left := p.continuePowerFrom(x)
	left = p.continueTermFrom(left)
	left = p.continueArithFrom(left)
	left = p.continueShiftFrom(left)
	left = p.continueBitAndFrom(left)
	left = p.continueBitXorFrom(left)
	left = p.continueBitOrFrom(left)
	left = p.continueComparisonFrom(left)
	left = p.continueNotTestFrom(left)
	left = p.continueAndTestFrom(left)
	left = p.continueOrTestFrom(left)
	return left
}

func (p *parser) continuePowerFrom(left ast.Expr) ast.Expr {
	if p.tok == token.STARSTAR {
		p.advance()
		return &ast.BinOpExpr{Left: left, Op: token.STARSTAR, Right: p.parseFactor()}
	}
	return left
}

func (p *parser) continueTermFrom(left ast.Expr) ast.Expr {
	for p.tok == token.STAR || p.tok == token.SLASH || p.tok == token.SLASHSLASH || p.tok == token.PERCENT {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseFactor()}
	}
	return left
}

func (p *parser) continueArithFrom(left ast.Expr) ast.Expr {
	for p.tok == token.PLUS || p.tok == token.MINUS {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseTerm()}
	}
	return left
}

func (p *parser) continueShiftFrom(left ast.Expr) ast.Expr {
	for p.tok == token.LTLT || p.tok == token.GTGT {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseArith()}
	}
	return left
}

func (p *parser) continueBitAndFrom(left ast.Expr) ast.Expr {
	for p.tok == token.AMPERSAND {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseShift()}
	}
	return left
}

func (p *parser) continueBitXorFrom(left ast.Expr) ast.Expr {
	for p.tok == token.CIRCUMFLEX {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseBitAnd()}
	}
	return left
}

func (p *parser) continueBitOrFrom(left ast.Expr) ast.Expr {
	for p.tok == token.PIPE {
		op := p.tok
		p.advance()
		left = &ast.BinOpExpr{Left: left, Op: op, Right: p.parseBitXor()}
	}
	return left
}

func (p *parser) continueComparisonFrom(left ast.Expr) ast.Expr {
	var ops []token.Token
	var comparators []ast.Expr
	for {
		op, ok := p.tryCompOpLenient()
		if !ok {
			break
		}
		ops = append(ops, op)
		comparators = append(comparators, p.parseBitOr())
	}
	if len(ops) == 0 {
		return left
	}
	return &ast.CompareExpr{Left: left, Ops: ops, Comparators: comparators}
}

// tryCompOpLenient is like tryCompOp but returns false instead of erroring
// on a bare NOT, since here a NOT cannot start a comparison operator (the
// caller is continuing an already-started expression, so a NOT here belongs
// to whatever comes after it, not to this expression).
func (p *parser) tryCompOpLenient() (token.Token, bool) {
	switch p.tok {
	case token.LT, token.LE, token.GT, token.GE, token.EQL, token.NEQ, token.IN:
		op := p.tok
		p.advance()
		return op, true
	case token.IS:
		p.advance()
		if p.tok == token.NOT {
			p.advance()
		}
		return token.IS, true
	}
	return token.ILLEGAL, false
}

func (p *parser) continueNotTestFrom(left ast.Expr) ast.Expr { return left }

func (p *parser) continueAndTestFrom(left ast.Expr) ast.Expr {
	if p.tok != token.AND {
		return left
	}
	vals := []ast.Expr{left}
	for p.accept(token.AND) {
		vals = append(vals, p.parseNotTest())
	}
	return &ast.BoolOpExpr{Op: token.AND, Values: vals}
}

func (p *parser) continueOrTestFrom(left ast.Expr) ast.Expr {
	if p.tok != token.OR {
		return left
	}
	vals := []ast.Expr{left}
	for p.accept(token.OR) {
		vals = append(vals, p.parseAndTest())
	}
	return &ast.BoolOpExpr{Op: token.OR, Values: vals}
}

func (p *parser) parseAtom() ast.Expr {
	switch p.tok {
	case token.IDENT:
		return p.parseIdent()
	case token.INT, token.FLOAT, token.STRING, token.BYTES, token.TRUE, token.FALSE, token.NONE:
		return p.parseLiteral()
	case token.LPAREN:
		return p.parseParenOrTupleOrGenerator()
	case token.LBRACK:
		return p.parseListOrListComp()
	case token.LBRACE:
		return p.parseSetOrDictOrComp()
	default:
		pos := p.val.Pos
		p.errorExpected(pos, []token.Token{token.IDENT, token.INT, token.STRING, token.LPAREN, token.LBRACK, token.LBRACE})
		panic(errPanicMode)
	}
}

func (p *parser) parseLiteral() ast.Expr {
	start := p.val.Pos
	tok, val, raw := p.tok, p.val, p.val.Raw
	var v interface{}
	switch tok {
	case token.INT:
		v = val.Int
	case token.FLOAT:
		v = val.Float
	case token.STRING, token.BYTES:
		v = val.String
	case token.TRUE:
		v = true
	case token.FALSE:
		v = false
	case token.NONE:
		v = nil
	}
	p.advance()
	return &ast.LiteralExpr{Kind: tok, Raw: raw, Value: v, Start: start, End: p.val.Pos}
}

// parseParenOrTupleOrGenerator parses `(expr)`, `(expr,)`, `(a, b, ...)` or
// `(expr for x in y)`.
func (p *parser) parseParenOrTupleOrGenerator() ast.Expr {
	lparen := p.expect(token.LPAREN)
	if p.tok == token.RPAREN {
		rparen := p.expect(token.RPAREN)
		return &ast.TupleExpr{Start: lparen, End: rparen}
	}

	first := p.parseExpr()
	if p.tok == token.FOR {
		gens := p.parseComprehensionClauses()
		rparen := p.expect(token.RPAREN)
		return &ast.GeneratorExpr{Elt: first, Generators: gens, Start: lparen, End: rparen}
	}

	if p.tok != token.COMMA {
		rparen := p.expect(token.RPAREN)
		return &ast.ParenExpr{Lparen: lparen, Rparen: rparen, X: first}
	}

	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.RPAREN {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	rparen := p.expect(token.RPAREN)
	return &ast.TupleExpr{Elts: elts, Start: lparen, End: rparen}
}

func (p *parser) parseListOrListComp() ast.Expr {
	lbrack := p.expect(token.LBRACK)
	if p.tok == token.RBRACK {
		rbrack := p.expect(token.RBRACK)
		return &ast.ListExpr{Start: lbrack, End: rbrack}
	}
	first := p.parseExpr()
	if p.tok == token.FOR {
		gens := p.parseComprehensionClauses()
		rbrack := p.expect(token.RBRACK)
		return &ast.ListCompExpr{Elt: first, Generators: gens, Start: lbrack, End: rbrack}
	}
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.RBRACK {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.ListExpr{Elts: elts, Start: lbrack, End: rbrack}
}

func (p *parser) parseSetOrDictOrComp() ast.Expr {
	lbrace := p.expect(token.LBRACE)
	if p.tok == token.RBRACE {
		rbrace := p.expect(token.RBRACE)
		return &ast.DictExpr{Start: lbrace, End: rbrace}
	}

	if p.tok == token.STARSTAR {
		// **spread dict entry
		pos := p.val.Pos
		p.advance()
		val := p.parseExpr()
		keys := []ast.Expr{nil}
		vals := []ast.Expr{&ast.DoubleStarExpr{Star: pos, X: val}}
		for p.accept(token.COMMA) {
			if p.tok == token.RBRACE {
				break
			}
			k, v := p.parseDictEntry()
			keys = append(keys, k)
			vals = append(vals, v)
		}
		rbrace := p.expect(token.RBRACE)
		return &ast.DictExpr{Keys: keys, Values: vals, Start: lbrace, End: rbrace}
	}

	first := p.parseExpr()
	if p.tok == token.COLON {
		p.advance()
		val := p.parseExpr()
		if p.tok == token.FOR {
			gens := p.parseComprehensionClauses()
			rbrace := p.expect(token.RBRACE)
			return &ast.DictCompExpr{Key: first, Value: val, Generators: gens, Start: lbrace, End: rbrace}
		}
		keys := []ast.Expr{first}
		vals := []ast.Expr{val}
		for p.accept(token.COMMA) {
			if p.tok == token.RBRACE {
				break
			}
			k, v := p.parseDictEntry()
			keys = append(keys, k)
			vals = append(vals, v)
		}
		rbrace := p.expect(token.RBRACE)
		return &ast.DictExpr{Keys: keys, Values: vals, Start: lbrace, End: rbrace}
	}

	if p.tok == token.FOR {
		gens := p.parseComprehensionClauses()
		rbrace := p.expect(token.RBRACE)
		return &ast.SetCompExpr{Elt: first, Generators: gens, Start: lbrace, End: rbrace}
	}

	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.RBRACE {
			break
		}
		elts = append(elts, p.parseExpr())
	}
	rbrace := p.expect(token.RBRACE)
	return &ast.SetExpr{Elts: elts, Start: lbrace, End: rbrace}
}

func (p *parser) parseDictEntry() (key, val ast.Expr) {
	if p.tok == token.STARSTAR {
		pos := p.val.Pos
		p.advance()
		return nil, &ast.DoubleStarExpr{Star: pos, X: p.parseExpr()}
	}
	key = p.parseExpr()
	p.expect(token.COLON)
	val = p.parseExpr()
	return key, val
}

// parseComprehensionClauses parses one or more `for ... in ... [if ...]*`
// clauses, the current token being FOR.
func (p *parser) parseComprehensionClauses() []*ast.Comprehension {
	var gens []*ast.Comprehension
	for p.tok == token.FOR {
		p.advance()
		target := p.parseCompTarget()
		p.expect(token.IN)
		iter := p.parseOrTest()
		var ifs []ast.Expr
		for p.tok == token.IF {
			p.advance()
			ifs = append(ifs, p.parseOrTest())
		}
		gens = append(gens, &ast.Comprehension{Target: target, Iter: iter, Ifs: ifs})
	}
	return gens
}

// parseCompTarget parses the target of a `for` clause inside a
// comprehension: an identifier, or a parenthesized/plain tuple of them.
// Each element is parsed at the bitwise-or level, so the clause's `in` is
// not taken as a comparison operator.
func (p *parser) parseCompTarget() ast.Expr {
	start := p.val.Pos
	first := p.parseBitOr()
	if p.tok != token.COMMA {
		return first
	}
	elts := []ast.Expr{first}
	for p.accept(token.COMMA) {
		if p.tok == token.IN {
			break
		}
		elts = append(elts, p.parseBitOr())
	}
	return &ast.TupleExpr{Elts: elts, Start: start, End: p.val.Pos}
}
