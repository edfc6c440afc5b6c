package syntax

import (
	"strconv"
	"strings"
)

// significant returns the non-trivia children of n.
func significant(n *Node) []*Node {
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if !c.kind.IsTrivia() {
			out = append(out, c)
		}
	}
	return out
}

// after returns the first significant child following the first child of
// the given kind.
func after(n *Node, kind Kind) *Node {
	seen := false
	for _, c := range n.children {
		if c.kind.IsTrivia() {
			continue
		}
		if seen {
			return c
		}
		seen = c.kind == kind
	}
	return nil
}

func namedValue(n *Node) *Node { return after(n, Colon) }

// Bindings returns the identifiers bound by a pattern.
func Bindings(pattern *Node) []*Node {
	if pattern == nil {
		return nil
	}
	switch pattern.kind {
	case Ident:
		return []*Node{pattern}
	case Destructuring:
		var out []*Node
		for _, c := range significant(pattern) {
			switch c.kind {
			case Ident, Destructuring:
				out = append(out, Bindings(c)...)
			case Named:
				out = append(out, Bindings(namedValue(c))...)
			case Spread:
				if sink := c.FirstChild(Ident); sink != nil {
					out = append(out, sink)
				}
			}
		}
		return out
	}
	return nil
}

func isPattern(n *Node) bool {
	return n.Is(Ident) || n.Is(Underscore) || n.Is(Destructuring)
}

// LetBindingNode is a view of a let binding: `let x = 1`, `let (a, b) = t` or
// `let f(x) = x`.
type LetBindingNode struct{ *Node }

func AsLetBinding(n *Node) (LetBindingNode, bool) {
	if !n.Is(LetBinding) {
		return LetBindingNode{}, false
	}
	return LetBindingNode{n}, true
}

func (l LetBindingNode) head() *Node {
	for _, c := range significant(l.Node) {
		if !c.kind.IsKeyword() && c.kind != Text {
			return c
		}
	}
	return nil
}

// Closure returns the closure of the function form `let f(x) = ..`.
func (l LetBindingNode) Closure() (ClosureNode, bool) {
	return AsClosure(l.head())
}

// Pattern returns the bound pattern of the plain form.
func (l LetBindingNode) Pattern() *Node {
	if head := l.head(); isPattern(head) {
		return head
	}
	return nil
}

// Init returns the initializer, if any.
func (l LetBindingNode) Init() *Node {
	if _, ok := l.Closure(); ok {
		return nil
	}
	return after(l.Node, Eq)
}

// Bindings returns the bound identifiers.
func (l LetBindingNode) Bindings() []*Node {
	if c, ok := l.Closure(); ok {
		if name := c.Name(); name != nil {
			return []*Node{name}
		}
		return nil
	}
	return Bindings(l.Pattern())
}

// IsFunction reports whether the binding defines a function.
func (l LetBindingNode) IsFunction() bool {
	if _, ok := l.Closure(); ok {
		return true
	}
	return Unparen(l.Init()).Is(Closure)
}

// Unparen strips the parentheses around an expression. It returns nil for
// empty parentheses.
func Unparen(n *Node) *Node {
	for n.Is(Parenthesized) {
		var inner *Node
		for _, c := range n.children {
			if c.kind.IsExpr() {
				inner = c
				break
			}
		}
		n = inner
	}
	return n
}

// ClosureNode is a view of a closure or function definition.
type ClosureNode struct{ *Node }

func AsClosure(n *Node) (ClosureNode, bool) {
	if !n.Is(Closure) {
		return ClosureNode{}, false
	}
	return ClosureNode{n}, true
}

// Name returns the name identifier preceding the parameters, if any.
func (c ClosureNode) Name() *Node {
	for _, child := range significant(c.Node) {
		switch child.kind {
		case Params:
			return nil
		case Ident:
			return child
		}
	}
	return nil
}

// ParamKind distinguishes the parameter forms.
type ParamKind uint8

const (
	ParamPos ParamKind = iota
	ParamNamed
	ParamSpread
)

// Param is one closure parameter.
type Param struct {
	Kind ParamKind
	Node *Node
}

// Pattern returns the pattern of a positional parameter.
func (p Param) Pattern() *Node {
	if p.Kind == ParamPos {
		return p.Node
	}
	return nil
}

// Name returns the name identifier of a named parameter.
func (p Param) Name() *Node {
	if p.Kind == ParamNamed {
		return p.Node.FirstChild(Ident)
	}
	return nil
}

// Default returns the default expression of a named parameter.
func (p Param) Default() *Node {
	if p.Kind == ParamNamed {
		return namedValue(p.Node)
	}
	return nil
}

// Sink returns the identifier a spread parameter collects into, if any.
func (p Param) Sink() *Node {
	if p.Kind == ParamSpread {
		return p.Node.FirstChild(Ident)
	}
	return nil
}

// Params returns the parameters of all parameter lists of the closure.
func (c ClosureNode) Params() []Param {
	var out []Param
	for _, list := range c.children {
		if list.kind != Params {
			continue
		}
		for _, p := range significant(list) {
			switch p.kind {
			case Ident, Underscore, Destructuring:
				out = append(out, Param{Kind: ParamPos, Node: p})
			case Named:
				out = append(out, Param{Kind: ParamNamed, Node: p})
			case Spread:
				out = append(out, Param{Kind: ParamSpread, Node: p})
			}
		}
	}
	return out
}

// ModuleImportNode is a view of an import.
type ModuleImportNode struct{ *Node }

func AsModuleImport(n *Node) (ModuleImportNode, bool) {
	if !n.Is(ModuleImport) {
		return ModuleImportNode{}, false
	}
	return ModuleImportNode{n}, true
}

// head returns the significant children before the import list or rename.
func (i ModuleImportNode) head() []*Node {
	var out []*Node
	for _, c := range significant(i.Node) {
		if c.kind == Colon || c.kind == As {
			break
		}
		out = append(out, c)
	}
	return out
}

// Source returns the expression naming the imported module. A string path
// takes precedence over an identifier written before it.
func (i ModuleImportNode) Source() *Node {
	var first *Node
	for _, c := range i.head() {
		if c.kind == Str {
			return c
		}
		if first == nil && c.kind.IsExpr() {
			first = c
		}
	}
	return first
}

// NewName returns the identifier after `as`, or the alias written in front
// of a string path, if any.
func (i ModuleImportNode) NewName() *Node {
	if n := after(i.Node, As); n.Is(Ident) {
		return n
	}
	head := i.head()
	for j := 0; j+1 < len(head); j++ {
		if head[j].kind == Ident && head[j+1].kind == Str {
			return head[j]
		}
	}
	return nil
}

// HasImports reports whether the import lists what it imports, either with
// a wildcard or with items.
func (i ModuleImportNode) HasImports() bool {
	return i.FirstChild(Colon) != nil
}

// Wildcard reports whether the import is `import x: *`.
func (i ModuleImportNode) Wildcard() bool {
	return after(i.Node, Colon).Is(Star)
}

// ImportItem is one entry of an import list.
type ImportItem struct {
	// Original is the name in the imported module.
	Original string
	// Bound is the name made visible by the import.
	Bound string
}

// Items returns the explicitly imported items.
func (i ModuleImportNode) Items() []ImportItem {
	list := i.FirstChild(ImportItems)
	if list == nil {
		return nil
	}
	var out []ImportItem
	for _, c := range significant(list) {
		switch c.kind {
		case Ident:
			out = append(out, ImportItem{Original: c.text, Bound: c.text})
		case RenamedImportItem:
			idents := make([]*Node, 0, 2)
			for _, n := range significant(c) {
				if n.kind == Ident {
					idents = append(idents, n)
				}
			}
			if len(idents) == 2 {
				out = append(out, ImportItem{Original: idents[0].text, Bound: idents[1].text})
			}
		}
	}
	return out
}

// ForLoopNode is a view of a for loop.
type ForLoopNode struct{ *Node }

func AsForLoop(n *Node) (ForLoopNode, bool) {
	if !n.Is(ForLoop) {
		return ForLoopNode{}, false
	}
	return ForLoopNode{n}, true
}

// Pattern returns the loop pattern, if the loop has one.
func (f ForLoopNode) Pattern() *Node {
	if n := after(f.Node, For); isPattern(n) {
		return n
	}
	return nil
}

// Iterable returns the iterated expression.
func (f ForLoopNode) Iterable() *Node { return after(f.Node, In) }

// FuncCallNode is a view of a call.
type FuncCallNode struct{ *Node }

func AsFuncCall(n *Node) (FuncCallNode, bool) {
	if !n.Is(FuncCall) {
		return FuncCallNode{}, false
	}
	return FuncCallNode{n}, true
}

func (c FuncCallNode) Callee() *Node { return c.children[0] }
func (c FuncCallNode) Args() *Node   { return c.FirstChild(Args) }

// SetRuleNode is a view of a set rule.
type SetRuleNode struct{ *Node }

func AsSetRule(n *Node) (SetRuleNode, bool) {
	if !n.Is(SetRule) {
		return SetRuleNode{}, false
	}
	return SetRuleNode{n}, true
}

// Target returns the function being configured.
func (s SetRuleNode) Target() *Node {
	if n := after(s.Node, Set); n.Is(Ident) || n.Is(FieldAccess) {
		return n
	}
	return nil
}

func (s SetRuleNode) Args() *Node { return s.FirstChild(Args) }

// FieldAccessNode is a view of `target.field`.
type FieldAccessNode struct{ *Node }

func AsFieldAccess(n *Node) (FieldAccessNode, bool) {
	if !n.Is(FieldAccess) {
		return FieldAccessNode{}, false
	}
	return FieldAccessNode{n}, true
}

func (f FieldAccessNode) Target() *Node { return f.children[0] }

// Field returns the field identifier, which is missing while it is typed.
func (f FieldAccessNode) Field() *Node {
	if n := after(f.Node, Dot); n.Is(Ident) {
		return n
	}
	return nil
}

// NamedArg returns the name and value of a named pair.
func NamedArg(n *Node) (name, val *Node, ok bool) {
	if !n.Is(Named) {
		return nil, nil, false
	}
	return n.FirstChild(Ident), namedValue(n), true
}

// ArgNames returns the names of the named arguments in an argument list.
func ArgNames(args *Node) []string {
	if args == nil {
		return nil
	}
	var out []string
	for _, c := range args.children {
		if name, _, ok := NamedArg(c); ok && name != nil {
			out = append(out, name.text)
		}
	}
	return out
}

// StrValue decodes a string literal.
func StrValue(n *Node) (string, bool) {
	if !n.Is(Str) {
		return "", false
	}
	text := n.text
	if strings.HasPrefix(text, "`") {
		return strings.Trim(text, "`"), true
	}
	text = strings.TrimPrefix(text, "\"")
	text = strings.TrimSuffix(text, "\"")

	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '\\' || i+1 == len(text) {
			b.WriteByte(c)
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'u':
			end := strings.IndexByte(text[i:], '}')
			if i+1 < len(text) && text[i+1] == '{' && end > 0 {
				if r, err := strconv.ParseUint(text[i+2:i+end], 16, 32); err == nil {
					b.WriteRune(rune(r))
					i += end
					continue
				}
			}
			b.WriteString(`\u`)
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String(), true
}
