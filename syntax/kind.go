package syntax

// Kind identifies the shape of a syntax node.
type Kind uint8

const (
	// End marks the end of input. It never appears in a finished tree.
	End Kind = iota
	Error

	// Trivia.
	Space
	LineComment
	BlockComment

	// Markup and math leaves.
	Text
	Raw
	Escape
	Hash
	Dollar
	MathIdent

	// Code leaves.
	Ident
	Bool
	Int
	Float
	Numeric
	Str
	None
	Auto

	// Punctuation.
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	LeftParen
	RightParen
	Comma
	Semicolon
	Colon
	Dot
	Dots
	Star
	Plus
	Minus
	Slash
	Hat
	Underscore
	Eq
	EqEq
	ExclEq
	Lt
	LtEq
	Gt
	GtEq
	PlusEq
	HyphEq
	StarEq
	SlashEq
	Arrow

	// Keywords.
	Not
	And
	Or
	Let
	Set
	Show
	Context
	If
	Else
	For
	In
	While
	Break
	Continue
	Return
	Import
	Include
	As

	// Inner nodes.
	Markup
	ContentBlock
	Equation
	Math
	MathDelimited
	MathAttach
	MathFrac
	Code
	CodeBlock
	Parenthesized
	Array
	Dict
	Named
	Keyed
	Spread
	Unary
	Binary
	FieldAccess
	FuncCall
	Args
	Closure
	Params
	LetBinding
	SetRule
	ShowRule
	Contextual
	Conditional
	WhileLoop
	ForLoop
	ModuleImport
	ImportItems
	RenamedImportItem
	ModuleInclude
	LoopBreak
	LoopContinue
	FuncReturn
	Destructuring

	// Opaque wraps nodes of a foreign grammar that have no counterpart here.
	Opaque
)

var kindNames = [...]string{
	End:               "end",
	Error:             "error",
	Space:             "space",
	LineComment:       "line comment",
	BlockComment:      "block comment",
	Text:              "text",
	Raw:               "raw",
	Escape:            "escape",
	Hash:              "hash",
	Dollar:            "dollar",
	MathIdent:         "math identifier",
	Ident:             "identifier",
	Bool:              "boolean",
	Int:               "integer",
	Float:             "float",
	Numeric:           "numeric",
	Str:               "string",
	None:              "none",
	Auto:              "auto",
	LeftBrace:         "opening brace",
	RightBrace:        "closing brace",
	LeftBracket:       "opening bracket",
	RightBracket:      "closing bracket",
	LeftParen:         "opening paren",
	RightParen:        "closing paren",
	Comma:             "comma",
	Semicolon:         "semicolon",
	Colon:             "colon",
	Dot:               "dot",
	Dots:              "dots",
	Star:              "star",
	Plus:              "plus",
	Minus:             "minus",
	Slash:             "slash",
	Hat:               "hat",
	Underscore:        "underscore",
	Eq:                "equals sign",
	EqEq:              "equality operator",
	ExclEq:            "inequality operator",
	Lt:                "less-than operator",
	LtEq:              "less-than or equal operator",
	Gt:                "greater-than operator",
	GtEq:              "greater-than or equal operator",
	PlusEq:            "add-assign operator",
	HyphEq:            "subtract-assign operator",
	StarEq:            "multiply-assign operator",
	SlashEq:           "divide-assign operator",
	Arrow:             "arrow",
	Not:               "keyword `not`",
	And:               "keyword `and`",
	Or:                "keyword `or`",
	Let:               "keyword `let`",
	Set:               "keyword `set`",
	Show:              "keyword `show`",
	Context:           "keyword `context`",
	If:                "keyword `if`",
	Else:              "keyword `else`",
	For:               "keyword `for`",
	In:                "keyword `in`",
	While:             "keyword `while`",
	Break:             "keyword `break`",
	Continue:          "keyword `continue`",
	Return:            "keyword `return`",
	Import:            "keyword `import`",
	Include:           "keyword `include`",
	As:                "keyword `as`",
	Markup:            "markup",
	ContentBlock:      "content block",
	Equation:          "equation",
	Math:              "math",
	MathDelimited:     "delimited math",
	MathAttach:        "math attachments",
	MathFrac:          "math fraction",
	Code:              "code",
	CodeBlock:         "code block",
	Parenthesized:     "group",
	Array:             "array",
	Dict:              "dictionary",
	Named:             "named pair",
	Keyed:             "keyed pair",
	Spread:            "spread",
	Unary:             "unary expression",
	Binary:            "binary expression",
	FieldAccess:       "field access",
	FuncCall:          "function call",
	Args:              "call arguments",
	Closure:           "closure",
	Params:            "closure parameters",
	LetBinding:        "`let` expression",
	SetRule:           "`set` expression",
	ShowRule:          "`show` expression",
	Contextual:        "`context` expression",
	Conditional:       "`if` expression",
	WhileLoop:         "while-loop expression",
	ForLoop:           "for-loop expression",
	ModuleImport:      "`import` expression",
	ImportItems:       "import items",
	RenamedImportItem: "renamed import item",
	ModuleInclude:     "`include` expression",
	LoopBreak:         "`break` expression",
	LoopContinue:      "`continue` expression",
	FuncReturn:        "`return` expression",
	Destructuring:     "destructuring pattern",
	Opaque:            "opaque node",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// IsTrivia reports whether nodes of this kind are skipped by sibling and
// leaf navigation.
func (k Kind) IsTrivia() bool {
	return k == Space || k == LineComment || k == BlockComment
}

// IsKeyword reports whether k is a keyword token.
func (k Kind) IsKeyword() bool {
	return k >= Not && k <= As
}

// IsExpr reports whether a node of this kind can stand as an expression.
func (k Kind) IsExpr() bool {
	switch k {
	case Ident, MathIdent, Bool, Int, Float, Numeric, Str, None, Auto,
		ContentBlock, Equation, CodeBlock, Parenthesized, Array, Dict,
		Unary, Binary, FieldAccess, FuncCall, Closure, LetBinding, SetRule,
		ShowRule, Contextual, Conditional, WhileLoop, ForLoop, ModuleImport,
		ModuleInclude, LoopBreak, LoopContinue, FuncReturn:
		return true
	}
	return false
}

var keywords = map[string]Kind{
	"none":     None,
	"auto":     Auto,
	"true":     Bool,
	"false":    Bool,
	"not":      Not,
	"and":      And,
	"or":       Or,
	"let":      Let,
	"set":      Set,
	"show":     Show,
	"context":  Context,
	"if":       If,
	"else":     Else,
	"for":      For,
	"in":       In,
	"while":    While,
	"break":    Break,
	"continue": Continue,
	"return":   Return,
	"import":   Import,
	"include":  Include,
	"as":       As,
}

// Keyword returns the kind of the keyword spelled text, if any.
func Keyword(text string) (Kind, bool) {
	k, ok := keywords[text]
	return k, ok
}
