package lang

import (
	"context"
	"strings"
	"testing"

	"github.com/arjunmahishi/scopeq/complete"
	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docWorld completes a document on its own, without a workspace.
type docWorld struct{ doc *Document }

func (w docWorld) Library() *library.Library { return w.doc.Library }
func (w docWorld) Fonts() []fonts.Family     { return nil }

func (w docWorld) ResolveImport(path string) (*value.Module, error) {
	if w.doc.Imports == nil {
		return nil, errors.Newf("file not found: %s", path)
	}
	return w.doc.Imports.ResolveImport(path)
}

// parseAt parses text with a "|" cursor marker.
func parseAt(t *testing.T, l Language, text string) (*Document, int) {
	t.Helper()
	cursor := strings.Index(text, "|")
	require.GreaterOrEqual(t, cursor, 0)
	doc, err := l.Parse(context.Background(), text[:cursor]+text[cursor+1:])
	require.NoError(t, err)
	return doc, cursor
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"go", "typst"}, List())
	assert.Equal(t, "go", Get("go").Name())
	assert.Nil(t, Get("python"))
	assert.Equal(t, "typst", ByExtension(".typ").Name())
	assert.Equal(t, "go", ByExtension(".go").Name())
	assert.Nil(t, ByExtension(".rs"))
}

func TestTypstParse(t *testing.T) {
	doc, err := Get("typst").Parse(context.Background(), "#let x = 1")
	require.NoError(t, err)
	assert.Equal(t, "#let x = 1", doc.Source.Root().FullText())
	assert.Same(t, library.Default(), doc.Library)
	assert.Nil(t, doc.Imports)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Get("typst").Parse(ctx, "#x")
	assert.ErrorIs(t, err, context.Canceled)
}

const goFile = `package main

import (
	"fmt"
	str "strings"
	_ "embed"
)

// Enable turns the feature on or off.
// It is safe to call twice.
func Enable(on bool, level int) {}

type Config struct{ Name string }

var (
	verbose = false
	_       = 1
)

const limit, burst = 10, 20

func greet(name string, loud bool) (out string) {
	prefix := "hi"
	var a, b int
	for i, r := range name {
		|
	}
	return prefix
}
`

func TestGoLowering(t *testing.T) {
	text := strings.Replace(goFile, "|", "", 1)
	doc, err := Get("go").Parse(context.Background(), text)
	require.NoError(t, err)
	assert.Equal(t, text, doc.Source.Root().FullText())
}

func TestGoPackageSymbols(t *testing.T) {
	doc, _ := parseAt(t, Get("go"), goFile)
	global := doc.Library.Global

	v, ok := global.Get("Enable")
	require.True(t, ok)
	enable := v.(*value.Func)
	assert.Equal(t, "Enable turns the feature on or off.\nIt is safe to call twice.", enable.Docs())
	params := enable.Inner().(*value.Native).Params
	require.Len(t, params, 2)
	assert.Equal(t, "on", params[0].Name)
	assert.Equal(t, value.CastOf("bool"), params[0].Input)
	assert.Equal(t, value.CastOf("int"), params[1].Input)

	v, ok = global.Get("Config")
	require.True(t, ok)
	assert.Equal(t, "Config", v.(*value.Type).Name)

	for _, name := range []string{"verbose", "limit", "burst", "greet", "len", "string", "true"} {
		_, ok := global.Get(name)
		assert.True(t, ok, name)
	}
	_, ok = global.Get("_")
	assert.False(t, ok)
}

func TestGoLocals(t *testing.T) {
	doc, cursor := parseAt(t, Get("go"), goFile)
	bindings := complete.Locals(docWorld{doc}, doc.Source, cursor, complete.Options{})

	assert.Equal(t, []complete.Binding{
		{Name: "a", Kind: complete.Variable},
		{Name: "b", Kind: complete.Variable},
		{Name: "fmt", Kind: complete.Module},
		{Name: "i", Kind: complete.Variable},
		{Name: "loud", Kind: complete.Variable},
		{Name: "name", Kind: complete.Variable},
		{Name: "out", Kind: complete.Variable},
		{Name: "prefix", Kind: complete.Variable},
		{Name: "r", Kind: complete.Variable},
		{Name: "str", Kind: complete.Module},
	}, bindings)
}

func TestGoCallCompletions(t *testing.T) {
	doc, cursor := parseAt(t, Get("go"), `package main

func Enable(on bool, level int) {}

func main() {
	Enable(|)
}
`)
	from, items := complete.Complete(docWorld{doc}, doc.Source, cursor, complete.Options{})
	assert.Equal(t, cursor, from)

	var labels []string
	for _, c := range items {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"false", "true"}, labels)
}

func TestGoNameCompletions(t *testing.T) {
	doc, cursor := parseAt(t, Get("go"), `package main

func main() {
	count := 1
	co|
}
`)
	from, items := complete.Complete(docWorld{doc}, doc.Source, cursor, complete.Options{})
	assert.Equal(t, cursor-2, from)
	assert.Contains(t, items, complete.Completion{Kind: complete.Variable, Label: "count"})
	assert.Contains(t, items, complete.Completion{
		Kind:   complete.Function,
		Label:  "recover",
		Apply:  "recover()${}",
		Detail: "Regains control of a panicking goroutine.",
	})
	assert.Contains(t, items, complete.Completion{
		Kind:  complete.Function,
		Label: "main",
		Apply: "main()${}",
	})
}

func TestGoPackageName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"fmt", "fmt"},
		{"net/http", "http"},
		{"github.com/urfave/cli/v3", "cli"},
		{"gopkg.in/yaml.v3", "yaml"},
		{"github.com/bep/debounce", "debounce"},
		{"github.com/go-chi/chi", "chi"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, goPackageName(tt.path))
		})
	}
}
