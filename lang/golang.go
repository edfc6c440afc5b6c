package lang

import (
	"context"
	_ "embed"
	"path"
	"strings"
	"sync"

	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	sitter "github.com/smacker/go-tree-sitter"
	golang "github.com/smacker/go-tree-sitter/golang"
)

//go:embed queries/go/symbols.scm
var goSymbolsQuery string

//go:embed golang.yaml
var goPredeclaredYAML []byte

// goPredeclaredTypes are the predeclared type names of Go.
var goPredeclaredTypes = []string{
	"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
	"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
	"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
}

// Go implements the Language interface for Go source code.
type Go struct {
	once       sync.Once
	predecl    *library.Library
	symbols    *sitter.Query
	captures   []string
	prepareErr error
}

func init() {
	Register(&Go{})
}

func (g *Go) Name() string {
	return "go"
}

func (g *Go) Extensions() []string {
	return []string{".go"}
}

func (g *Go) TreeSitterLang() *sitter.Language {
	return golang.GetLanguage()
}

// prepare loads the predeclared library and compiles the symbols query.
func (g *Go) prepare() error {
	g.once.Do(func() {
		lib, err := library.Load(goPredeclaredYAML)
		if err != nil {
			g.prepareErr = errors.Wrap(err, "load go predeclared identifiers")
			return
		}
		for _, name := range goPredeclaredTypes {
			lib.Global.Define(name, &value.Type{Name: name, Docs: "Predeclared type `" + name + "`."})
		}
		g.predecl = lib

		q, err := sitter.NewQuery([]byte(goSymbolsQuery), g.TreeSitterLang())
		if err != nil {
			g.prepareErr = errors.Wrap(err, "compile go symbols query")
			return
		}
		g.symbols = q
		g.captures = make([]string, q.CaptureCount())
		for i := range g.captures {
			g.captures[i] = q.CaptureNameForId(uint32(i))
		}
	})
	return g.prepareErr
}

// Parse parses Go source. The package-level declarations become the
// document's library, since package scope does not depend on order.
func (g *Go) Parse(ctx context.Context, text string) (*Document, error) {
	if err := g.prepare(); err != nil {
		return nil, err
	}

	p := sitter.NewParser()
	p.SetLanguage(g.TreeSitterLang())
	src := []byte(text)
	tree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse go source")
	}
	defer tree.Close()

	source, err := syntax.NewSource(text, lowerGo(tree.RootNode(), src))
	if err != nil {
		return nil, errors.Wrap(err, "lower go syntax tree")
	}

	lib := library.New()
	g.predecl.Global.Each(func(name string, v value.Value) bool {
		lib.Global.Define(name, v)
		return true
	})
	g.packageSymbols(tree.RootNode(), src, lib.Global)

	return &Document{
		Lang:    g,
		Source:  source,
		Library: lib,
		Imports: goImports{},
	}, nil
}

// packageSymbols defines the package-level functions, types, variables and
// constants of a file in scope.
func (g *Go) packageSymbols(root *sitter.Node, src []byte, scope *value.Scope) {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(g.symbols, root)

	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		var decl, name, params *sitter.Node
		for _, c := range match.Captures {
			switch g.captureName(c.Index) {
			case "func", "type":
				decl = c.Node
			case "func.name", "type.name":
				name = c.Node
			case "func.params":
				params = c.Node
			}
		}
		if decl == nil || name == nil {
			continue
		}

		docs := docComment(decl, src)
		if decl.Type() == "function_declaration" {
			scope.Define(name.Content(src), value.NewFunc(&value.Native{
				Name:   name.Content(src),
				Docs:   docs,
				Params: goParams(params, src),
			}))
			continue
		}
		scope.Define(name.Content(src), &value.Type{Name: name.Content(src), Docs: docs})
	}

	for _, decl := range children(root) {
		if decl.Type() != "var_declaration" && decl.Type() != "const_declaration" {
			continue
		}
		for _, spec := range specs(decl) {
			for _, c := range children(spec) {
				if c.Type() == "," {
					continue
				}
				if c.Type() != "identifier" {
					break
				}
				if name := c.Content(src); name != "_" {
					scope.Define(name, value.Dyn{Text: name})
				}
			}
		}
	}
}

func (g *Go) captureName(index uint32) string {
	if int(index) >= len(g.captures) {
		return ""
	}
	return g.captures[index]
}

// specs returns the var or const specs of a declaration, grouped or not.
func specs(decl *sitter.Node) []*sitter.Node {
	var out []*sitter.Node
	for _, c := range children(decl) {
		switch c.Type() {
		case "var_spec", "const_spec":
			out = append(out, c)
		case "var_spec_list":
			out = append(out, specs(c)...)
		}
	}
	return out
}

// docComment returns the line comments directly above decl.
func docComment(decl *sitter.Node, src []byte) string {
	var lines []string
	row := decl.StartPoint().Row
	for prev := decl.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if prev.EndPoint().Row+1 != row {
			break
		}
		text := prev.Content(src)
		if !strings.HasPrefix(text, "//") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "//"))}, lines...)
		row = prev.StartPoint().Row
	}
	return strings.Join(lines, "\n")
}

// goParams converts a parameter list to positional parameters. Basic types
// map onto the document types their literals have.
func goParams(list *sitter.Node, src []byte) []*value.ParamSpec {
	if list == nil {
		return nil
	}
	var out []*value.ParamSpec
	for _, decl := range children(list) {
		typ := decl.ChildByFieldName("type")
		input := value.CastInfo(value.CastAny{})
		if typ != nil {
			input = goCast(typ.Content(src))
		}

		switch decl.Type() {
		case "parameter_declaration":
			var names []string
			for _, c := range children(decl) {
				if c.Type() == "identifier" {
					names = append(names, c.Content(src))
				}
			}
			if len(names) == 0 {
				names = []string{"_"}
			}
			for _, name := range names {
				out = append(out, &value.ParamSpec{Name: name, Input: input, Positional: true, Required: true})
			}
		case "variadic_parameter_declaration":
			name := "_"
			if n := decl.ChildByFieldName("name"); n != nil {
				name = n.Content(src)
			}
			out = append(out, &value.ParamSpec{Name: name, Input: input, Positional: true, Variadic: true})
		}
	}
	return out
}

func goCast(typeName string) value.CastInfo {
	switch typeName {
	case "bool":
		return value.CastOf("bool")
	case "string":
		return value.CastOf("str")
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr", "byte", "rune":
		return value.CastOf("int")
	case "float32", "float64":
		return value.CastOf("float")
	}
	return value.CastAny{}
}

// goImports resolves Go import paths to modules named like the package.
// Their members are unknown.
type goImports struct{}

func (goImports) ResolveImport(importPath string) (*value.Module, error) {
	if importPath == "" {
		return nil, errors.New("empty import path")
	}
	return &value.Module{Name: goPackageName(importPath)}, nil
}

// goPackageName guesses the package name from an import path, skipping
// major version suffixes and gopkg.in style versions.
func goPackageName(importPath string) string {
	name := path.Base(importPath)
	if isMajorVersion(name) {
		if dir := path.Dir(importPath); dir != "." {
			name = path.Base(dir)
		}
	}
	if i := strings.Index(name, ".v"); i > 0 && isMajorVersion(name[i+1:]) {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "go-")
}

func isMajorVersion(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
