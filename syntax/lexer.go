package syntax

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type mode uint8

const (
	modeMarkup mode = iota
	modeMath
	modeCode
)

// lexer splits source text into tokens. Which tokens it produces depends on
// the mode the parser requests for each call.
type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) done() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() rune {
	if l.done() {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	return r
}

func (l *lexer) peekAt(n int) rune {
	pos := l.pos
	for i := 0; i < n; i++ {
		if pos >= len(l.src) {
			return 0
		}
		_, size := utf8.DecodeRuneInString(l.src[pos:])
		pos += size
	}
	if pos >= len(l.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.src[pos:])
	return r
}

func (l *lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += size
	return r
}

func (l *lexer) eatIf(s string) bool {
	if strings.HasPrefix(l.src[l.pos:], s) {
		l.pos += len(s)
		return true
	}
	return false
}

func (l *lexer) eatWhile(f func(rune) bool) {
	for !l.done() && f(l.peek()) {
		l.advance()
	}
}

// next lexes one token in the given mode and returns its kind and text.
func (l *lexer) next(m mode) (Kind, string) {
	start := l.pos
	if l.done() {
		return End, ""
	}
	kind := l.token(m)
	return kind, l.src[start:l.pos]
}

func (l *lexer) token(m mode) Kind {
	r := l.peek()
	switch {
	case unicode.IsSpace(r):
		l.eatWhile(unicode.IsSpace)
		return Space
	case l.eatIf("//"):
		l.eatWhile(func(r rune) bool { return r != '\n' })
		return LineComment
	case l.eatIf("/*"):
		l.blockComment()
		return BlockComment
	}

	switch m {
	case modeMarkup:
		return l.markup()
	case modeMath:
		return l.math()
	default:
		return l.code()
	}
}

func (l *lexer) blockComment() {
	depth := 1
	for !l.done() && depth > 0 {
		switch {
		case l.eatIf("/*"):
			depth++
		case l.eatIf("*/"):
			depth--
		default:
			l.advance()
		}
	}
}

func (l *lexer) markup() Kind {
	switch r := l.advance(); r {
	case '#':
		return Hash
	case '[':
		return LeftBracket
	case ']':
		return RightBracket
	case '$':
		return Dollar
	case '\\':
		if !l.done() {
			l.advance()
		}
		return Escape
	case '`':
		l.raw()
		return Raw
	default:
		l.eatWhile(func(r rune) bool { return !l.markupSpecial(r) })
		return Text
	}
}

func (l *lexer) markupSpecial(r rune) bool {
	switch r {
	case '#', '[', ']', '$', '\\', '`':
		return true
	case '/':
		next := l.peekAt(1)
		return next == '/' || next == '*'
	}
	return unicode.IsSpace(r)
}

// raw consumes a backtick-delimited raw span whose opening backtick has been
// eaten already.
func (l *lexer) raw() {
	fence := 1
	for l.peek() == '`' {
		l.advance()
		fence++
	}
	if fence == 2 {
		// Empty inline raw.
		return
	}
	closing := strings.Repeat("`", fence)
	if i := strings.Index(l.src[l.pos:], closing); i >= 0 {
		l.pos += i + len(closing)
		return
	}
	l.pos = len(l.src)
}

func (l *lexer) math() Kind {
	r := l.advance()
	switch r {
	case '#':
		return Hash
	case '$':
		return Dollar
	case '(':
		return LeftParen
	case ')':
		return RightParen
	case ',':
		return Comma
	case '^':
		return Hat
	case '_':
		return Underscore
	case '/':
		return Slash
	case '\\':
		if !l.done() {
			l.advance()
		}
		return Escape
	case '"':
		l.str()
		return Str
	}
	if unicode.IsLetter(r) {
		start := l.pos - utf8.RuneLen(r)
		l.eatWhile(unicode.IsLetter)
		if utf8.RuneCountInString(l.src[start:l.pos]) > 1 {
			return MathIdent
		}
		return Text
	}
	if unicode.IsDigit(r) {
		l.eatWhile(unicode.IsDigit)
		if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
			l.advance()
			l.eatWhile(unicode.IsDigit)
		}
	}
	return Text
}

func (l *lexer) code() Kind {
	r := l.peek()
	switch {
	case isIdentStart(r):
		return l.ident()
	case unicode.IsDigit(r):
		return l.number()
	}

	l.advance()
	switch r {
	case '"':
		l.str()
		return Str
	case '#':
		return Hash
	case '$':
		return Dollar
	case '{':
		return LeftBrace
	case '}':
		return RightBrace
	case '[':
		return LeftBracket
	case ']':
		return RightBracket
	case '(':
		return LeftParen
	case ')':
		return RightParen
	case ',':
		return Comma
	case ';':
		return Semicolon
	case ':':
		return Colon
	case '.':
		if l.eatIf(".") {
			return Dots
		}
		return Dot
	case '*':
		if l.eatIf("=") {
			return StarEq
		}
		return Star
	case '+':
		if l.eatIf("=") {
			return PlusEq
		}
		return Plus
	case '-':
		if l.eatIf("=") {
			return HyphEq
		}
		return Minus
	case '/':
		if l.eatIf("=") {
			return SlashEq
		}
		return Slash
	case '=':
		if l.eatIf("=") {
			return EqEq
		}
		if l.eatIf(">") {
			return Arrow
		}
		return Eq
	case '!':
		if l.eatIf("=") {
			return ExclEq
		}
	case '<':
		if l.eatIf("=") {
			return LtEq
		}
		return Lt
	case '>':
		if l.eatIf("=") {
			return GtEq
		}
		return Gt
	}
	return Error
}

func (l *lexer) ident() Kind {
	start := l.pos
	l.advance()
	l.eatWhile(isIdentContinue)
	text := l.src[start:l.pos]
	if text == "_" {
		return Underscore
	}
	if kind, ok := keywords[text]; ok {
		return kind
	}
	return Ident
}

func (l *lexer) number() Kind {
	kind := Int
	l.eatWhile(unicode.IsDigit)
	if l.peek() == '.' && unicode.IsDigit(l.peekAt(1)) {
		l.advance()
		l.eatWhile(unicode.IsDigit)
		kind = Float
	}
	if (l.peek() == 'e' || l.peek() == 'E') && (unicode.IsDigit(l.peekAt(1)) ||
		((l.peekAt(1) == '+' || l.peekAt(1) == '-') && unicode.IsDigit(l.peekAt(2)))) {
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		l.eatWhile(unicode.IsDigit)
		kind = Float
	}
	if l.peek() == '%' {
		l.advance()
		return Numeric
	}
	if unicode.IsLetter(l.peek()) {
		l.eatWhile(unicode.IsLetter)
		return Numeric
	}
	return kind
}

func (l *lexer) str() {
	for !l.done() {
		switch l.advance() {
		case '\\':
			if !l.done() {
				l.advance()
			}
		case '"':
			return
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsIdent reports whether s is a valid identifier.
func IsIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 && !isIdentStart(r) {
			return false
		}
		if i > 0 && !isIdentContinue(r) {
			return false
		}
	}
	return true
}
