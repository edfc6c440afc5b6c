package lang

import (
	"strings"

	"github.com/arjunmahishi/scopeq/syntax"
	sitter "github.com/smacker/go-tree-sitter"
)

// goTokens maps Go punctuation and keywords to syntax kinds. Tokens missing
// here become opaque leaves.
var goTokens = map[string]syntax.Kind{
	"(":        syntax.LeftParen,
	")":        syntax.RightParen,
	"{":        syntax.LeftBrace,
	"}":        syntax.RightBrace,
	"[":        syntax.LeftBracket,
	"]":        syntax.RightBracket,
	",":        syntax.Comma,
	";":        syntax.Semicolon,
	":":        syntax.Colon,
	".":        syntax.Dot,
	"...":      syntax.Dots,
	"=":        syntax.Eq,
	":=":       syntax.Eq,
	"*":        syntax.Star,
	"+":        syntax.Plus,
	"-":        syntax.Minus,
	"/":        syntax.Slash,
	"==":       syntax.EqEq,
	"!=":       syntax.ExclEq,
	"<":        syntax.Lt,
	"<=":       syntax.LtEq,
	">":        syntax.Gt,
	">=":       syntax.GtEq,
	"+=":       syntax.PlusEq,
	"-=":       syntax.HyphEq,
	"*=":       syntax.StarEq,
	"/=":       syntax.SlashEq,
	"!":        syntax.Not,
	"&&":       syntax.And,
	"||":       syntax.Or,
	"var":      syntax.Let,
	"const":    syntax.Let,
	"if":       syntax.If,
	"else":     syntax.Else,
	"for":      syntax.For,
	"range":    syntax.In,
	"break":    syntax.Break,
	"continue": syntax.Continue,
	"return":   syntax.Return,
	"import":   syntax.Import,
}

// spliced lists node types whose children are lowered in place of the node.
var spliced = map[string]bool{
	"import_declaration": true,
	"import_spec_list":   true,
	"var_declaration":    true,
	"var_spec_list":      true,
	"const_declaration":  true,
	"statement_list":     true,
	"for_clause":         true,
}

// lowerer maps a tree-sitter Go tree onto syntax nodes. Every source byte
// ends up in exactly one leaf, so the result can back a syntax.Source.
type lowerer struct {
	src []byte
	// body counts the function bodies around the node being lowered.
	// Declarations outside any body belong to the package scope.
	body int
}

func lowerGo(root *sitter.Node, src []byte) *syntax.Node {
	l := &lowerer{src: src}
	return syntax.NewInner(syntax.Code, l.seq(children(root), 0, uint32(len(src)), l.lower)...)
}

func children(n *sitter.Node) []*sitter.Node {
	out := make([]*sitter.Node, 0, n.ChildCount())
	for i := 0; i < int(n.ChildCount()); i++ {
		out = append(out, n.Child(i))
	}
	return out
}

func same(a, b *sitter.Node) bool {
	return a != nil && b != nil &&
		a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// seq lowers nodes with each and fills the bytes between them, so the result
// covers [start, end) exactly.
func (l *lowerer) seq(nodes []*sitter.Node, start, end uint32, each func(*sitter.Node) []*syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	pos := start
	for _, n := range nodes {
		if n.StartByte() < pos || n.EndByte() <= n.StartByte() {
			continue
		}
		out = append(out, l.gap(pos, n.StartByte())...)
		out = append(out, each(n)...)
		pos = n.EndByte()
	}
	return append(out, l.gap(pos, end)...)
}

func (l *lowerer) gap(from, to uint32) []*syntax.Node {
	if from >= to {
		return nil
	}
	text := string(l.src[from:to])
	if strings.TrimSpace(text) == "" {
		return []*syntax.Node{syntax.NewLeaf(syntax.Space, text)}
	}
	return []*syntax.Node{syntax.NewLeaf(syntax.Opaque, text)}
}

// inner lowers the children of n into a node of the given kind.
func (l *lowerer) inner(kind syntax.Kind, n *sitter.Node, each func(*sitter.Node) []*syntax.Node) *syntax.Node {
	return syntax.NewInner(kind, l.seq(children(n), n.StartByte(), n.EndByte(), each)...)
}

// one lowers n into a single node.
func (l *lowerer) one(n *sitter.Node) *syntax.Node {
	nodes := l.lower(n)
	if len(nodes) == 1 {
		return nodes[0]
	}
	return syntax.NewInner(syntax.Opaque, nodes...)
}

// opaque lowers n keeping its leaves but hiding its structure.
func (l *lowerer) opaque(n *sitter.Node) []*syntax.Node {
	if n.ChildCount() == 0 {
		return []*syntax.Node{syntax.NewLeaf(syntax.Opaque, n.Content(l.src))}
	}
	return []*syntax.Node{l.inner(syntax.Opaque, n, l.lower)}
}

func (l *lowerer) lower(n *sitter.Node) []*syntax.Node {
	typ := n.Type()
	switch typ {
	case "interpreted_string_literal", "raw_string_literal":
		return []*syntax.Node{syntax.NewLeaf(syntax.Str, n.Content(l.src))}
	}
	if n.ChildCount() == 0 {
		return []*syntax.Node{l.leaf(n)}
	}
	if spliced[typ] {
		return l.seq(children(n), n.StartByte(), n.EndByte(), l.lower)
	}

	switch typ {
	case "import_spec":
		return l.importSpec(n)
	case "function_declaration", "method_declaration", "func_literal":
		return []*syntax.Node{l.function(n)}
	case "parameter_list":
		return []*syntax.Node{l.params(n)}
	case "block":
		return []*syntax.Node{l.inner(syntax.CodeBlock, n, l.lower)}
	case "short_var_declaration":
		return []*syntax.Node{l.shortVar(n)}
	case "var_spec", "const_spec":
		if l.body == 0 {
			return l.opaque(n)
		}
		return []*syntax.Node{l.spec(n)}
	case "for_statement":
		return []*syntax.Node{l.forLoop(n)}
	case "call_expression":
		return []*syntax.Node{l.call(n)}
	case "argument_list":
		return []*syntax.Node{l.inner(syntax.Args, n, l.lower)}
	case "selector_expression":
		return []*syntax.Node{l.inner(syntax.FieldAccess, n, l.lower)}
	case "parenthesized_expression":
		return []*syntax.Node{l.inner(syntax.Parenthesized, n, l.lower)}
	}
	return l.opaque(n)
}

func (l *lowerer) leaf(n *sitter.Node) *syntax.Node {
	text := n.Content(l.src)
	switch n.Type() {
	case "identifier", "field_identifier", "type_identifier", "package_identifier", "label_name", "iota":
		if text == "_" {
			return syntax.NewLeaf(syntax.Underscore, text)
		}
		return syntax.NewLeaf(syntax.Ident, text)
	case "int_literal":
		return syntax.NewLeaf(syntax.Int, text)
	case "float_literal", "imaginary_literal":
		return syntax.NewLeaf(syntax.Float, text)
	case "true", "false":
		return syntax.NewLeaf(syntax.Bool, text)
	case "nil":
		return syntax.NewLeaf(syntax.None, text)
	case "comment":
		if strings.HasPrefix(text, "/*") {
			return syntax.NewLeaf(syntax.BlockComment, text)
		}
		return syntax.NewLeaf(syntax.LineComment, text)
	}
	if kind, ok := goTokens[text]; ok {
		return syntax.NewLeaf(kind, text)
	}
	if strings.TrimSpace(text) == "" {
		return syntax.NewLeaf(syntax.Space, text)
	}
	return syntax.NewLeaf(syntax.Opaque, text)
}

// importSpec lowers `"fmt"` and `f "fmt"`. Dot and blank imports bind no
// package name and stay opaque.
func (l *lowerer) importSpec(n *sitter.Node) []*syntax.Node {
	if name := n.ChildByFieldName("name"); name != nil && name.Type() != "package_identifier" {
		return l.opaque(n)
	}
	return []*syntax.Node{l.inner(syntax.ModuleImport, n, l.lower)}
}

// function lowers declarations, methods and literals to closures. Receivers
// and named results become parameter lists, so their names are in scope in
// the body.
func (l *lowerer) function(n *sitter.Node) *syntax.Node {
	l.body++
	defer func() { l.body-- }()

	result := n.ChildByFieldName("result")
	return l.inner(syntax.Closure, n, func(c *sitter.Node) []*syntax.Node {
		if same(c, result) && c.Type() != "parameter_list" {
			return l.opaque(c)
		}
		return l.lower(c)
	})
}

func (l *lowerer) params(n *sitter.Node) *syntax.Node {
	return l.inner(syntax.Params, n, func(c *sitter.Node) []*syntax.Node {
		typ := c.ChildByFieldName("type")
		withOpaqueType := func(cc *sitter.Node) []*syntax.Node {
			if same(cc, typ) {
				return l.opaque(cc)
			}
			return l.lower(cc)
		}
		switch c.Type() {
		case "parameter_declaration":
			return l.seq(children(c), c.StartByte(), c.EndByte(), withOpaqueType)
		case "variadic_parameter_declaration":
			return []*syntax.Node{l.inner(syntax.Spread, c, withOpaqueType)}
		}
		return l.lower(c)
	})
}

// pattern lowers the left side of a declaration.
func (l *lowerer) pattern(list *sitter.Node) *syntax.Node {
	if list.ChildCount() == 1 {
		return l.one(list.Child(0))
	}
	return l.inner(syntax.Destructuring, list, l.lower)
}

// expr lowers the right side of a declaration.
func (l *lowerer) expr(list *sitter.Node) *syntax.Node {
	if list.ChildCount() == 1 {
		return l.one(list.Child(0))
	}
	return l.inner(syntax.Opaque, list, l.lower)
}

// shortVar lowers `a, b := x, y` to a let binding.
func (l *lowerer) shortVar(n *sitter.Node) *syntax.Node {
	left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
	return l.inner(syntax.LetBinding, n, func(c *sitter.Node) []*syntax.Node {
		switch {
		case same(c, left):
			return []*syntax.Node{l.pattern(c)}
		case same(c, right):
			return []*syntax.Node{l.expr(c)}
		}
		return l.lower(c)
	})
}

// spec lowers a var or const spec inside a function body to a let binding.
func (l *lowerer) spec(n *sitter.Node) *syntax.Node {
	nodes := children(n)
	names := 0
	for i, c := range nodes {
		if c.Type() != "identifier" && c.Type() != "," {
			break
		}
		names = i + 1
	}
	if names == 0 {
		return l.inner(syntax.Opaque, n, l.lower)
	}

	var pattern *syntax.Node
	namesEnd := nodes[names-1].EndByte()
	if names == 1 {
		pattern = l.leaf(nodes[0])
	} else {
		pattern = syntax.NewInner(syntax.Destructuring, l.seq(nodes[:names], n.StartByte(), namesEnd, l.lower)...)
	}

	typ := n.ChildByFieldName("type")
	rest := l.seq(nodes[names:], namesEnd, n.EndByte(), func(c *sitter.Node) []*syntax.Node {
		switch {
		case same(c, typ):
			return l.opaque(c)
		case c.Type() == "expression_list":
			return []*syntax.Node{l.expr(c)}
		}
		return l.lower(c)
	})
	return syntax.NewInner(syntax.LetBinding, append([]*syntax.Node{pattern}, rest...)...)
}

// forLoop lowers range loops to for loops. Other loops stay opaque with
// their clauses spliced in, so a clause's declarations reach the body.
func (l *lowerer) forLoop(n *sitter.Node) *syntax.Node {
	var clause *sitter.Node
	for _, c := range children(n) {
		if c.Type() == "range_clause" {
			clause = c
		}
	}
	if clause == nil {
		return l.inner(syntax.Opaque, n, l.lower)
	}

	left, right := clause.ChildByFieldName("left"), clause.ChildByFieldName("right")
	return l.inner(syntax.ForLoop, n, func(c *sitter.Node) []*syntax.Node {
		if !same(c, clause) {
			return l.lower(c)
		}
		return l.seq(children(c), c.StartByte(), c.EndByte(), func(cc *sitter.Node) []*syntax.Node {
			switch {
			case same(cc, left):
				return []*syntax.Node{l.pattern(cc)}
			case same(cc, right):
				return []*syntax.Node{l.one(cc)}
			}
			return l.lower(cc)
		})
	})
}

// call lowers a call so that its callee comes first and its arguments form
// an argument list.
func (l *lowerer) call(n *sitter.Node) *syntax.Node {
	fn := n.ChildByFieldName("function")
	return l.inner(syntax.FuncCall, n, func(c *sitter.Node) []*syntax.Node {
		if same(c, fn) {
			return []*syntax.Node{l.one(c)}
		}
		return l.lower(c)
	})
}
