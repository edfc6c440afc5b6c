package syntax

import "strings"

type token struct {
	kind  Kind
	text  string
	start int
	// newline marks a synthetic End produced by a line break while parsing
	// newline-terminated code.
	newline bool
}

// parser is a recursive-descent parser that never fails. Nodes are pushed
// onto a flat list and wrapped into inner nodes once their extent is known.
type parser struct {
	src   string
	lx    *lexer
	mode  mode
	modes []mode

	newlineStops bool
	stops        []bool

	tok     token
	prevEnd int
	nodes   []*Node
}

func newParser(src string, m mode) *parser {
	p := &parser{src: src, lx: newLexer(src), mode: m}
	p.lex()
	return p
}

func (p *parser) parseMarkup() *Node {
	p.markup(false)
	return p.nodes[0]
}

// lex reads the next significant token. Outside of markup, trivia is pushed
// as it is encountered.
func (p *parser) lex() {
	for {
		start := p.lx.pos
		kind, text := p.lx.next(p.mode)
		if p.mode != modeMarkup && kind.IsTrivia() {
			p.nodes = append(p.nodes, NewLeaf(kind, text))
			if p.mode == modeCode && p.newlineStops && strings.Contains(text, "\n") {
				p.tok = token{kind: End, start: p.lx.pos, newline: true}
				return
			}
			continue
		}
		p.tok = token{kind: kind, text: text, start: start}
		return
	}
}

func (p *parser) relex() {
	p.lx.pos = p.tok.start
	p.lex()
}

func (p *parser) enter(m mode) {
	p.modes = append(p.modes, p.mode)
	p.mode = m
	p.relex()
}

func (p *parser) exit() {
	p.mode = p.modes[len(p.modes)-1]
	p.modes = p.modes[:len(p.modes)-1]
	p.relex()
}

func (p *parser) enterNewline(stop bool) {
	p.stops = append(p.stops, p.newlineStops)
	p.newlineStops = stop
}

func (p *parser) exitNewline() {
	p.newlineStops = p.stops[len(p.stops)-1]
	p.stops = p.stops[:len(p.stops)-1]

	stopping := p.mode == modeCode && p.newlineStops
	switch {
	case p.tok.newline && !stopping:
		p.relex()
	case !p.tok.newline && stopping && p.tok.kind != End && p.trailingNewline():
		p.tok = token{kind: End, start: p.tok.start, newline: true}
	}
}

func (p *parser) trailingNewline() bool {
	for i := len(p.nodes) - 1; i >= 0 && p.nodes[i].kind.IsTrivia(); i-- {
		if strings.Contains(p.nodes[i].text, "\n") {
			return true
		}
	}
	return false
}

func (p *parser) eof() bool { return p.tok.kind == End && !p.tok.newline }

func (p *parser) at(kind Kind) bool { return p.tok.kind == kind }

func (p *parser) directlyAt(kind Kind) bool {
	return p.tok.kind == kind && p.tok.start == p.prevEnd
}

func (p *parser) peekKind() Kind {
	lx := *p.lx
	for {
		kind, _ := lx.next(p.mode)
		if !kind.IsTrivia() {
			return kind
		}
	}
}

func (p *parser) eat() {
	if p.tok.kind == End {
		return
	}
	p.nodes = append(p.nodes, NewLeaf(p.tok.kind, p.tok.text))
	p.prevEnd = p.tok.start + len(p.tok.text)
	p.lex()
}

func (p *parser) eatAs(kind Kind) {
	p.tok.kind = kind
	p.eat()
}

func (p *parser) eatError() {
	if p.tok.kind == End {
		return
	}
	p.eatAs(Error)
}

func (p *parser) assert(kind Kind) {
	if p.tok.kind != kind {
		panic("syntax: expected " + kind.String() + ", found " + p.tok.kind.String())
	}
	p.eat()
}

func (p *parser) expect(kind Kind) bool {
	if p.at(kind) {
		p.eat()
		return true
	}
	return false
}

func (p *parser) marker() int { return len(p.nodes) }

// wrap turns the nodes from m onward into an inner node. Trailing trivia stays
// outside.
func (p *parser) wrap(kind Kind, m int) {
	end := len(p.nodes)
	for end > m && p.nodes[end-1].kind.IsTrivia() {
		end--
	}
	p.wrapRange(kind, m, end)
}

func (p *parser) wrapAll(kind Kind, m int) {
	p.wrapRange(kind, m, len(p.nodes))
}

// wrapClosed wraps a delimited node. An unclosed node keeps its trailing
// trivia so that a cursor at the end of the input still lands inside it.
func (p *parser) wrapClosed(kind Kind, m int, closed bool) {
	if closed {
		p.wrap(kind, m)
	} else {
		p.wrapAll(kind, m)
	}
}

func (p *parser) wrapRange(kind Kind, from, to int) {
	children := make([]*Node, to-from)
	copy(children, p.nodes[from:to])
	trailing := append([]*Node(nil), p.nodes[to:]...)
	p.nodes = append(append(p.nodes[:from], NewInner(kind, children...)), trailing...)
}

func (p *parser) markup(inBlock bool) {
	m := p.marker()
	depth := 0
loop:
	for !p.eof() {
		switch p.tok.kind {
		case RightBracket:
			if inBlock && depth == 0 {
				break loop
			}
			if depth > 0 {
				depth--
			}
			p.eat()
		case LeftBracket:
			depth++
			p.eat()
		case Hash:
			p.embeddedCode()
		case Dollar:
			p.equation()
		default:
			p.eat()
		}
	}
	p.wrapAll(Markup, m)
}

func (p *parser) embeddedCode() {
	p.enterNewline(true)
	p.enter(modeCode)
	p.assert(Hash)
	if p.tok.start == p.prevEnd && !p.at(End) {
		stmt := isStmtStart(p.tok.kind)
		p.codeExprPrec(true, 0)
		if stmt && p.directlyAt(Semicolon) {
			p.eat()
		}
	}
	p.exit()
	p.exitNewline()
}

func isStmtStart(kind Kind) bool {
	switch kind {
	case Let, Set, Show, Import, Include, Return:
		return true
	}
	return false
}

func (p *parser) contentBlock() {
	m := p.marker()
	p.enter(modeMarkup)
	p.assert(LeftBracket)
	p.markup(true)
	closed := p.expect(RightBracket)
	p.exit()
	p.wrapClosed(ContentBlock, m, closed)
}

func (p *parser) equation() {
	m := p.marker()
	p.enter(modeMath)
	p.assert(Dollar)
	p.math(Dollar)
	closed := p.expect(Dollar)
	p.exit()
	p.wrapClosed(Equation, m, closed)
}

func (p *parser) math(stop Kind) {
	m := p.marker()
	for !p.eof() && !p.at(stop) {
		start := p.tok.start
		p.mathExpr()
		if p.tok.start == start {
			p.eatError()
		}
	}
	p.wrap(Math, m)
}

func (p *parser) mathExpr() {
	m := p.marker()
	if !p.mathAtom() {
		return
	}
	p.mathAttachments(m)
	if p.at(Slash) {
		p.eat()
		m2 := p.marker()
		if p.mathAtom() {
			p.mathAttachments(m2)
		}
		p.wrap(MathFrac, m)
	}
}

func (p *parser) mathAtom() bool {
	switch p.tok.kind {
	case End, Dollar, RightParen:
		return false
	case Hash:
		p.embeddedCode()
	case LeftParen:
		m := p.marker()
		p.assert(LeftParen)
		p.math(RightParen)
		closed := p.expect(RightParen)
		p.wrapClosed(MathDelimited, m, closed)
	default:
		p.eat()
	}
	return true
}

func (p *parser) mathAttachments(m int) {
	for p.at(Hat) || p.at(Underscore) {
		p.eat()
		p.mathAtom()
		p.wrap(MathAttach, m)
	}
}

func (p *parser) codeBlock() {
	m := p.marker()
	p.enter(modeCode)
	p.enterNewline(true)
	p.assert(LeftBrace)
	p.code(RightBrace)
	closed := p.expect(RightBrace)
	p.exit()
	p.exitNewline()
	p.wrapClosed(CodeBlock, m, closed)
}

func (p *parser) code(stop Kind) {
	m := p.marker()
	for !p.eof() && !p.at(stop) {
		if p.tok.newline {
			p.relex()
			continue
		}
		if p.at(Semicolon) {
			p.eat()
			continue
		}
		start := p.tok.start
		p.codeExpr()
		if p.tok.start == start && !p.tok.newline {
			p.eatError()
		}
	}
	p.wrap(Code, m)
}

func (p *parser) codeExpr() { p.codeExprPrec(false, 0) }

const (
	precAssign = iota + 1
	precOr
	precAnd
	precCompare
	precAdd
	precMul
	precUnary
)

func binaryOp(kind Kind) (prec int, rightAssoc bool, ok bool) {
	switch kind {
	case Eq, PlusEq, HyphEq, StarEq, SlashEq:
		return precAssign, true, true
	case Or:
		return precOr, false, true
	case And:
		return precAnd, false, true
	case EqEq, ExclEq, Lt, LtEq, Gt, GtEq, In:
		return precCompare, false, true
	case Plus, Minus:
		return precAdd, false, true
	case Star, Slash:
		return precMul, false, true
	}
	return 0, false, false
}

func (p *parser) codeExprPrec(atomic bool, minPrec int) {
	m := p.marker()
	switch {
	case !atomic && (p.at(Minus) || p.at(Plus)):
		p.eat()
		p.codeExprPrec(false, precUnary)
		p.wrap(Unary, m)
	case !atomic && p.at(Not):
		p.eat()
		p.codeExprPrec(false, precCompare)
		p.wrap(Unary, m)
	default:
		if !p.codePrimary(atomic) {
			return
		}
	}

	for {
		if p.directlyAt(LeftParen) || p.directlyAt(LeftBracket) {
			p.args(true)
			p.wrap(FuncCall, m)
			continue
		}

		if p.at(Dot) && (!atomic || (p.directlyAt(Dot) && p.identFollows())) {
			p.eat()
			if p.at(Ident) {
				p.eat()
			}
			p.wrap(FieldAccess, m)
			continue
		}

		if atomic {
			break
		}

		notIn := p.at(Not) && p.peekKind() == In
		kind := p.tok.kind
		if notIn {
			kind = In
		}
		prec, rightAssoc, ok := binaryOp(kind)
		if !ok || prec < minPrec {
			break
		}
		if notIn {
			p.eat()
		}
		p.eat()
		next := prec + 1
		if rightAssoc {
			next = prec
		}
		p.codeExprPrec(false, next)
		p.wrap(Binary, m)
	}
}

// identFollows reports whether the current token is directly followed by
// the start of an identifier.
func (p *parser) identFollows() bool {
	rest := p.src[p.tok.start+len(p.tok.text):]
	for _, r := range rest {
		return isIdentStart(r)
	}
	return false
}

func (p *parser) codePrimary(atomic bool) bool {
	m := p.marker()
	switch p.tok.kind {
	case Ident, Underscore:
		p.eat()
		if !atomic && p.at(Arrow) {
			p.wrap(Params, m)
			p.eat()
			p.codeExpr()
			p.wrap(Closure, m)
		}
	case LeftParen:
		p.parenthesized(atomic)
	case LeftBrace:
		p.codeBlock()
	case LeftBracket:
		p.contentBlock()
	case Dollar:
		p.equation()
	case Let:
		p.letBinding()
	case Set:
		p.setRule()
	case Show:
		p.showRule()
	case Context:
		p.eat()
		p.codeExpr()
		p.wrap(Contextual, m)
	case If:
		p.conditional()
	case While:
		p.eat()
		p.codeExpr()
		p.block()
		p.wrap(WhileLoop, m)
	case For:
		p.forLoop()
	case Import:
		p.moduleImport()
	case Include:
		p.eat()
		p.codeExpr()
		p.wrap(ModuleInclude, m)
	case Break:
		p.eat()
		p.wrap(LoopBreak, m)
	case Continue:
		p.eat()
		p.wrap(LoopContinue, m)
	case Return:
		p.eat()
		if !p.atTerminator() {
			p.codeExpr()
		}
		p.wrap(FuncReturn, m)
	case None, Auto, Bool, Int, Float, Numeric, Str:
		p.eat()
	default:
		return false
	}
	return true
}

func (p *parser) atTerminator() bool {
	switch p.tok.kind {
	case End, Semicolon, Comma, RightBrace, RightParen, RightBracket:
		return true
	}
	return false
}

func (p *parser) block() {
	switch {
	case p.at(LeftBrace):
		p.codeBlock()
	case p.at(LeftBracket):
		p.contentBlock()
	}
}

type itemStats struct {
	count         int
	named         bool
	keyed         bool
	spread        bool
	trailingComma bool
}

func (p *parser) parenthesized(atomic bool) {
	m := p.marker()
	p.enterNewline(false)
	p.assert(LeftParen)

	if p.at(Colon) && p.peekKind() == RightParen {
		p.eat()
		closed := p.expect(RightParen)
		p.exitNewline()
		p.wrapClosed(Dict, m, closed)
		return
	}

	stats := p.items()
	closed := p.expect(RightParen)
	p.exitNewline()

	if !atomic && p.at(Arrow) {
		p.wrapClosed(Params, m, closed)
		retagParams(p.nodes[m])
		p.eat()
		p.codeExpr()
		p.wrap(Closure, m)
		return
	}

	kind := Array
	switch {
	case stats.named || stats.keyed:
		kind = Dict
	case stats.count == 1 && !stats.trailingComma && !stats.spread:
		kind = Parenthesized
	}
	p.wrapClosed(kind, m, closed)
}

// items parses comma-separated collection items up to a closing paren.
func (p *parser) items() itemStats {
	var stats itemStats
	for !p.at(RightParen) && !p.eof() {
		start := p.tok.start
		switch p.item() {
		case Named:
			stats.named = true
		case Keyed:
			stats.keyed = true
		case Spread:
			stats.spread = true
		case End:
			if p.tok.start == start && !p.at(Comma) {
				p.eatError()
				continue
			}
		}
		stats.count++
		stats.trailingComma = p.expect(Comma)
	}
	return stats
}

// item parses a positional, named, keyed or spread item and returns the kind
// of node produced, or End when nothing was parsed.
func (p *parser) item() Kind {
	m := p.marker()
	if p.at(Dots) {
		p.eat()
		if !p.at(Comma) && !p.at(RightParen) && !p.eof() {
			p.codeExpr()
		}
		p.wrap(Spread, m)
		return Spread
	}

	p.codeExpr()
	if p.marker() == m {
		return End
	}
	if p.at(Colon) {
		kind := Keyed
		if p.nodes[m].kind == Ident {
			kind = Named
		}
		p.eat()
		p.codeExpr()
		p.wrap(kind, m)
		return kind
	}
	return p.nodes[m].kind
}

func (p *parser) args(direct bool) {
	m := p.marker()
	closed := true
	if p.directlyAt(LeftParen) || (!direct && p.at(LeftParen)) {
		p.enterNewline(false)
		p.assert(LeftParen)
		p.items()
		closed = p.expect(RightParen)
		p.exitNewline()
	}
	for closed && p.directlyAt(LeftBracket) {
		p.contentBlock()
	}
	p.wrapClosed(Args, m, closed)
}

func (p *parser) letBinding() {
	m := p.marker()
	p.assert(Let)
	m2 := p.marker()
	closure := false
	if p.at(Ident) {
		p.eat()
		if p.directlyAt(LeftParen) {
			p.params()
			closure = true
		}
	} else {
		p.pattern()
	}
	if closure {
		if p.expect(Eq) {
			p.codeExpr()
		}
		p.wrap(Closure, m2)
	} else if p.expect(Eq) {
		p.codeExpr()
	}
	p.wrap(LetBinding, m)
}

func (p *parser) params() {
	m := p.marker()
	p.enterNewline(false)
	p.assert(LeftParen)
	p.items()
	closed := p.expect(RightParen)
	p.exitNewline()
	p.wrapClosed(Params, m, closed)
	retagParams(p.nodes[m])
}

func (p *parser) pattern() {
	switch p.tok.kind {
	case Ident, Underscore:
		p.eat()
	case LeftParen:
		m := p.marker()
		p.enterNewline(false)
		p.assert(LeftParen)
		p.items()
		closed := p.expect(RightParen)
		p.exitNewline()
		p.wrapClosed(Destructuring, m, closed)
		retagPattern(p.nodes[m])
	}
}

func (p *parser) setRule() {
	m := p.marker()
	p.assert(Set)
	m2 := p.marker()
	if p.expect(Ident) {
		for p.at(Dot) {
			p.eat()
			p.expect(Ident)
			p.wrap(FieldAccess, m2)
		}
	}
	p.args(false)
	if p.expect(If) {
		p.codeExpr()
	}
	p.wrap(SetRule, m)
}

func (p *parser) showRule() {
	m := p.marker()
	p.assert(Show)
	if !p.at(Colon) {
		p.codeExpr()
	}
	if p.expect(Colon) {
		p.codeExpr()
	}
	p.wrap(ShowRule, m)
}

func (p *parser) conditional() {
	m := p.marker()
	p.assert(If)
	p.codeExpr()
	p.block()
	if p.expect(Else) {
		if p.at(If) {
			p.conditional()
		} else {
			p.block()
		}
	}
	p.wrap(Conditional, m)
}

func (p *parser) forLoop() {
	m := p.marker()
	p.assert(For)
	p.pattern()
	if p.expect(In) {
		p.codeExpr()
	}
	p.block()
	p.wrap(ForLoop, m)
}

func (p *parser) moduleImport() {
	m := p.marker()
	p.assert(Import)
	p.codeExpr()
	if p.expect(As) {
		p.expect(Ident)
	}
	if p.expect(Colon) {
		if !p.expect(Star) {
			p.importItems()
		}
	}
	p.wrap(ModuleImport, m)
}

func (p *parser) importItems() {
	m := p.marker()
	for p.at(Ident) {
		m2 := p.marker()
		p.eat()
		if p.expect(As) {
			p.expect(Ident)
			p.wrap(RenamedImportItem, m2)
		}
		if !p.expect(Comma) {
			break
		}
	}
	if p.marker() > m {
		p.wrap(ImportItems, m)
	}
}

// retagParams turns a parsed collection into closure parameters.
func retagParams(n *Node) {
	n.kind = Params
	for _, c := range n.children {
		switch c.kind {
		case Array, Parenthesized, Dict:
			retagPattern(c)
		}
	}
}

// retagPattern turns a parsed collection into a destructuring pattern.
func retagPattern(n *Node) {
	n.kind = Destructuring
	for _, c := range n.children {
		switch c.kind {
		case Array, Parenthesized, Dict:
			retagPattern(c)
		case Named:
			if v := namedValue(c); v != nil {
				switch v.kind {
				case Array, Parenthesized, Dict:
					retagPattern(v)
				}
			}
		}
	}
}
