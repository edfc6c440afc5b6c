package analysis

import (
	"strings"
	"testing"

	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

type testWorld struct {
	modules map[string]*value.Module
}

func (w testWorld) Library() *library.Library { return library.Default() }

func (w testWorld) ResolveImport(path string) (*value.Module, error) {
	if m, ok := w.modules[path]; ok {
		return m, nil
	}
	return nil, errors.Newf("file not found: %s", path)
}

// identAt returns the identifier leaf at the n-th occurrence of marker "|".
func identAt(t *testing.T, text string) (*syntax.Node, *syntax.Source) {
	t.Helper()
	cursor := strings.Index(text, "|")
	require.GreaterOrEqual(t, cursor, 0)
	text = text[:cursor] + text[cursor+1:]
	src := syntax.Parse(text)
	leaf := src.LeafAt(cursor + 1)
	require.NotNil(t, leaf)
	return leaf, src
}

func TestEvalIdentifiers(t *testing.T) {
	w := testWorld{}
	tests := []struct {
		name string
		text string
		want string
	}{
		{"literal binding", "#let x = 12pt\n#|x", "12pt"},
		{"shadowed", "#let x = 1\n#let x = \"two\"\n#|x", `"two"`},
		{"builtin", "#|text", "text"},
		{"through binding", "#let t = text\n#let u = t\n#|u", "text"},
		{"field access", "#let c = calc\n#c.|pi", "3.141592653589793"},
		{"closure", "#let f(a) = a\n#|f", "f"},
		{"named lambda", "#let g = (a) => a\n#|g", "g"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leaf, _ := identAt(t, tt.text)
			expr := leaf
			if leaf.Parent().Is(syntax.FieldAccess) {
				expr = leaf.Parent()
			}
			v, ok := Eval(w, expr)
			require.True(t, ok)
			require.Equal(t, tt.want, v.Repr())
		})
	}
}

func TestEvalUnknown(t *testing.T) {
	w := testWorld{}
	for _, text := range []string{
		"#|nope",
		"#for x in (1, 2) [#|x]",
		"#let f(a) = |a",
		"#let (a, b) = (1, 2)\n#|a",
		"#let x = x\n#|x",
	} {
		t.Run(text, func(t *testing.T) {
			leaf, _ := identAt(t, text)
			_, ok := Eval(w, leaf)
			require.False(t, ok)
		})
	}
}

func TestImports(t *testing.T) {
	scope := value.NewScope()
	scope.Define("helper", value.NewFunc(&value.Native{Name: "helper"}))
	w := testWorld{modules: map[string]*value.Module{
		"util.typ": {Name: "util", Scope: scope},
	}}

	leaf, _ := identAt(t, "#import \"util.typ\": helper as h\n#|h")
	v, ok := Eval(w, leaf)
	require.True(t, ok)
	require.Equal(t, "helper", v.Repr())

	leaf, _ = identAt(t, "#import \"util.typ\"\n#|util")
	v, ok = Eval(w, leaf)
	require.True(t, ok)
	require.Equal(t, "<module util>", v.Repr())

	leaf, _ = identAt(t, "#import calc: *\n#|sqrt")
	v, ok = Eval(w, leaf)
	require.True(t, ok)
	require.Equal(t, "sqrt", v.Repr())

	src := syntax.Parse("#import \"missing.typ\"")
	imp, _ := syntax.AsModuleImport(src.Root().Children()[1])
	_, err := Import(w, imp.Source())
	require.ErrorContains(t, err, "file not found")

	src = syntax.Parse("#import 12")
	imp, _ = syntax.AsModuleImport(src.Root().Children()[1])
	_, err = Import(w, imp.Source())
	require.True(t, errors.Is(err, ErrNotModule))
}

func TestSignatureUnwrapsWith(t *testing.T) {
	w := testWorld{}
	leaf, _ := identAt(t, "#let t = text.with(size: 2pt).with(fill: red)\n#|t")
	f, ok := ResolveCallee(w, leaf)
	require.True(t, ok)
	_, wrapped := f.Inner().(*value.With)
	require.True(t, wrapped)

	base, _ := library.Default().Global.Get("text")
	require.Same(t, base, Unwrap(f))
	require.Equal(t, SignatureOf(base.(*value.Func)).Primary().Params(), SignatureOf(f).Primary().Params())
}

func TestClosureSignature(t *testing.T) {
	w := testWorld{}
	leaf, _ := identAt(t, "#let f(body, gap: 2pt, strict: false, ..rest) = body\n#|f")
	f, ok := ResolveCallee(w, leaf)
	require.True(t, ok)

	primary := SignatureOf(f).Primary()
	var names []string
	for _, p := range primary.Params() {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"body", "gap", "strict", "rest"}, names)

	gap, ok := primary.Param("gap")
	require.True(t, ok)
	require.True(t, gap.Named)
	require.False(t, gap.Settable)
	require.Equal(t, "2pt", gap.Default)
	require.Equal(t, "length", gap.Input.(value.CastType).Type.Name)

	strict, _ := primary.Param("strict")
	require.Equal(t, "bool", strict.Input.(value.CastType).Type.Name)

	rest, _ := primary.Param("rest")
	require.True(t, rest.Variadic)
	_, ok = primary.Param("missing")
	require.False(t, ok)
}

func TestModuleOf(t *testing.T) {
	src := syntax.Parse("#let title = \"Report\"\n#let f(x) = x\n#let (a, b) = (1, 2)\n#let title = 3\n#{ let hidden = 1 }")
	mod := ModuleOf(testWorld{}, "report", src)
	require.Equal(t, "report", mod.Name)

	var names []string
	mod.Scope.Each(func(name string, _ value.Value) bool {
		names = append(names, name)
		return true
	})
	require.Equal(t, []string{"title", "f", "a", "b"}, names)
	title, _ := mod.Scope.Get("title")
	require.Equal(t, value.Int(3), title)
	f, _ := mod.Scope.Get("f")
	require.IsType(t, &value.Func{}, f)
}
