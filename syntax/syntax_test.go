package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func findAll(n *Node, kind Kind) []*Node {
	var out []*Node
	if n.Kind() == kind {
		out = append(out, n)
	}
	for _, c := range n.Children() {
		out = append(out, findAll(c, kind)...)
	}
	return out
}

func findOne(t *testing.T, n *Node, kind Kind) *Node {
	t.Helper()
	found := findAll(n, kind)
	require.NotEmpty(t, found, "no %s node", kind)
	return found[0]
}

func texts(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.FullText())
	}
	return out
}

func TestParseCoversSource(t *testing.T) {
	inputs := []string{
		"",
		"Hello *world*",
		"#let x = 1\n#x",
		"#f(a: 1, ",
		"#set text(",
		"#{ let a = (1, 2\n",
		"$ sum_(i=0)^n i / 2 $",
		"#import \"a.typ\": x, y as z",
		"[unclosed #f[",
		"#for (k, v) in (a: 1) [#k] else",
		"// comment\n/* block */ text `raw #x` \\#",
		"#let f(x, ..rest) = x => x + 1; after",
		"#calc.",
		"#(1 + 2 * -3 not in (1,))",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			src := Parse(input)
			require.Equal(t, input, src.Root().FullText())
			require.Equal(t, len(input), src.Root().Len())
			require.Equal(t, Markup, src.Root().Kind())
		})
	}
}

func TestLetBindings(t *testing.T) {
	src := Parse("#let x = 1\n#let f(a, b: 2, ..rest) = a\n#let (p, (q, r)) = t\n#let g = (y) => y")
	lets := findAll(src.Root(), LetBinding)
	require.Len(t, lets, 4)

	plain, ok := AsLetBinding(lets[0])
	require.True(t, ok)
	require.Equal(t, "let x = 1", plain.FullText())
	require.Equal(t, []string{"x"}, texts(plain.Bindings()))
	require.False(t, plain.IsFunction())
	require.Equal(t, "1", plain.Init().FullText())

	fn, _ := AsLetBinding(lets[1])
	require.True(t, fn.IsFunction())
	require.Equal(t, []string{"f"}, texts(fn.Bindings()))
	closure, ok := fn.Closure()
	require.True(t, ok)
	params := closure.Params()
	require.Len(t, params, 3)
	require.Equal(t, ParamPos, params[0].Kind)
	require.Equal(t, "a", params[0].Pattern().Text())
	require.Equal(t, ParamNamed, params[1].Kind)
	require.Equal(t, "b", params[1].Name().Text())
	require.Equal(t, "2", params[1].Default().FullText())
	require.Equal(t, ParamSpread, params[2].Kind)
	require.Equal(t, "rest", params[2].Sink().Text())

	destructured, _ := AsLetBinding(lets[2])
	require.Equal(t, []string{"p", "q", "r"}, texts(destructured.Bindings()))

	lambda, _ := AsLetBinding(lets[3])
	require.True(t, lambda.IsFunction())
	require.Equal(t, []string{"g"}, texts(lambda.Bindings()))
}

func TestParenthesizedClosureIsFunction(t *testing.T) {
	src := Parse("#let f = ((x) => x)\n#let g = (1)\n#let h = ()")
	lets := findAll(src.Root(), LetBinding)
	require.Len(t, lets, 3)

	f, _ := AsLetBinding(lets[0])
	require.True(t, f.IsFunction())
	require.Equal(t, Closure, Unparen(f.Init()).Kind())

	g, _ := AsLetBinding(lets[1])
	require.False(t, g.IsFunction())
	require.Equal(t, Int, Unparen(g.Init()).Kind())

	h, _ := AsLetBinding(lets[2])
	require.False(t, h.IsFunction())
}

func TestViewsMatchTheirKind(t *testing.T) {
	src := Parse("#let f(x) = x\n#for y in f(1) {}\n#import \"a.typ\": z\n#set text(size: 1pt)\n#calc.pi")
	tests := []struct {
		kind Kind
		view func(*Node) (*Node, bool)
	}{
		{LetBinding, func(n *Node) (*Node, bool) { v, ok := AsLetBinding(n); return v.Node, ok }},
		{Closure, func(n *Node) (*Node, bool) { v, ok := AsClosure(n); return v.Node, ok }},
		{ForLoop, func(n *Node) (*Node, bool) { v, ok := AsForLoop(n); return v.Node, ok }},
		{ModuleImport, func(n *Node) (*Node, bool) { v, ok := AsModuleImport(n); return v.Node, ok }},
		{FuncCall, func(n *Node) (*Node, bool) { v, ok := AsFuncCall(n); return v.Node, ok }},
		{SetRule, func(n *Node) (*Node, bool) { v, ok := AsSetRule(n); return v.Node, ok }},
		{FieldAccess, func(n *Node) (*Node, bool) { v, ok := AsFieldAccess(n); return v.Node, ok }},
	}
	ident := findOne(t, src.Root(), Ident)
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			n := findOne(t, src.Root(), tt.kind)
			got, ok := tt.view(n)
			require.True(t, ok)
			require.Same(t, n, got)

			_, ok = tt.view(ident)
			require.False(t, ok)
		})
	}
}

func TestNewlineEndsEmbeddedCode(t *testing.T) {
	src := Parse("#let x = 1\nfoo")
	kinds := make([]Kind, 0)
	for _, c := range src.Root().Children() {
		kinds = append(kinds, c.Kind())
	}
	require.Equal(t, []Kind{Hash, LetBinding, Space, Text}, kinds)
}

func TestCodeBlockStatements(t *testing.T) {
	src := Parse("#{\nlet a = 1\nlet b = a\n}")
	code := findOne(t, src.Root(), Code)
	var lets []*Node
	for _, c := range code.Children() {
		if c.Kind() == LetBinding {
			lets = append(lets, c)
		}
	}
	require.Equal(t, []string{"let a = 1", "let b = a"}, texts(lets))
	require.Equal(t, LetBinding, lets[1].PrevSibling().Kind())
}

func TestForLoop(t *testing.T) {
	src := Parse("#for x in x { x }")
	loop, ok := AsForLoop(findOne(t, src.Root(), ForLoop))
	require.True(t, ok)
	require.Equal(t, "x", loop.Pattern().Text())
	iter := loop.Iterable()
	require.Equal(t, Ident, iter.Kind())
	require.Equal(t, In, iter.PrevSiblingKind())
	body := findOne(t, loop.Node, CodeBlock)
	require.Equal(t, Ident, body.PrevSiblingKind())
}

func TestImports(t *testing.T) {
	src := Parse("#import \"a.typ\": x, y as z\n#import \"b.typ\" as m\n#import calc: *")
	imports := findAll(src.Root(), ModuleImport)
	require.Len(t, imports, 3)

	items, _ := AsModuleImport(imports[0])
	require.Equal(t, Str, items.Source().Kind())
	require.True(t, items.HasImports())
	require.False(t, items.Wildcard())
	require.Equal(t, []ImportItem{{Original: "x", Bound: "x"}, {Original: "y", Bound: "z"}}, items.Items())
	path, ok := StrValue(items.Source())
	require.True(t, ok)
	require.Equal(t, "a.typ", path)

	renamed, _ := AsModuleImport(imports[1])
	require.False(t, renamed.HasImports())
	require.Equal(t, "m", renamed.NewName().Text())

	wildcard, _ := AsModuleImport(imports[2])
	require.Equal(t, "calc", wildcard.Source().Text())
	require.True(t, wildcard.Wildcard())
}

func TestLeafAtInsideArgs(t *testing.T) {
	text := "#f(a: 1, )"
	src := Parse(text)
	leaf := src.LeafAt(strings.Index(text, ")"))
	require.Equal(t, Space, leaf.Kind())
	require.Equal(t, Args, leaf.Parent().Kind())
	require.Equal(t, Comma, leaf.PrevLeaf().Kind())

	call, ok := AsFuncCall(leaf.Parent().Parent())
	require.True(t, ok)
	require.Equal(t, "f", call.Callee().Text())
	require.Equal(t, []string{"a"}, ArgNames(call.Args()))
}

func TestUnclosedArgsKeepTrailingSpace(t *testing.T) {
	text := "#f(a: 1, "
	src := Parse(text)
	leaf := src.LeafAt(len(text))
	require.Equal(t, Space, leaf.Kind())
	require.Equal(t, Args, leaf.Parent().Kind())
}

func TestSetRule(t *testing.T) {
	src := Parse("#set text(fill: red)")
	rule, ok := AsSetRule(findOne(t, src.Root(), SetRule))
	require.True(t, ok)
	require.Equal(t, "text", rule.Target().Text())
	require.Equal(t, []string{"fill"}, ArgNames(rule.Args()))
}

func TestMath(t *testing.T) {
	text := "$ alpha^2 + x / y $"
	src := Parse(text)
	leaf := src.LeafAt(strings.Index(text, "alpha") + 2)
	require.Equal(t, MathIdent, leaf.Kind())
	require.Equal(t, MathAttach, leaf.Parent().Kind())
	frac := findOne(t, src.Root(), MathFrac)
	require.Equal(t, "x / y", frac.FullText())
}

func TestFieldAccessInMarkup(t *testing.T) {
	src := Parse("#calc.pow(2, 3). Done")
	access, ok := AsFieldAccess(findOne(t, src.Root(), FieldAccess))
	require.True(t, ok)
	require.Equal(t, "calc", access.Target().Text())
	require.Equal(t, "pow", access.Field().Text())

	// A trailing dot in markup is text.
	src = Parse("#calc.")
	require.Empty(t, findAll(src.Root(), FieldAccess))
	last := src.Root().Children()[len(src.Root().Children())-1]
	require.Equal(t, Text, last.Kind())
	require.Equal(t, ".", last.Text())
}

func TestCovering(t *testing.T) {
	text := "#f(a: 1)"
	src := Parse(text)
	n := src.Covering(Span{Start: 3, End: 7})
	require.Equal(t, Named, n.Kind())
	require.Equal(t, "a: 1", n.FullText())
}

func TestStrValue(t *testing.T) {
	for raw, want := range map[string]string{
		`"plain"`:     "plain",
		`"a\nb"`:      "a\nb",
		`"q\"q"`:      `q"q`,
		`"\u{1F600}"`: "\U0001F600",
	} {
		got, ok := StrValue(NewLeaf(Str, raw))
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

func TestIsIdent(t *testing.T) {
	require.True(t, IsIdent("first-line-indent"))
	require.True(t, IsIdent("_x"))
	require.False(t, IsIdent("1x"))
	require.False(t, IsIdent(""))
}
