// Package library provides the builtin scopes that names are completed from.
package library

import (
	_ "embed"
	"sync"

	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
)

//go:embed builtins.yaml
var builtinsYAML []byte

// Library holds the global scope and the scope used inside equations.
type Library struct {
	Global *value.Scope
	Math   *value.Scope
}

// New returns an empty library.
func New() *Library {
	return &Library{Global: value.NewScope(), Math: value.NewScope()}
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the library described by the embedded builtins document.
func Default() *Library {
	defaultOnce.Do(func() {
		lib, err := Load(builtinsYAML)
		if err != nil {
			panic(err)
		}
		defaultLib = lib
	})
	return defaultLib
}

type document struct {
	Global []entry `yaml:"global"`
	Math   []entry `yaml:"math"`
}

type entry struct {
	Name   string     `yaml:"name"`
	Func   *funcDoc   `yaml:"func"`
	Module *moduleDoc `yaml:"module"`
	Type   *typeDoc   `yaml:"type"`
	Value  *valueDoc  `yaml:"value"`
	Symbol string     `yaml:"symbol"`
}

type funcDoc struct {
	Docs string `yaml:"docs"`
	// Element functions accept their named parameters in set rules unless a
	// parameter is marked fixed.
	Element bool       `yaml:"element"`
	Params  []paramDoc `yaml:"params"`
	Scope   []entry    `yaml:"scope"`
}

type paramDoc struct {
	Name       string    `yaml:"name"`
	Docs       string    `yaml:"docs"`
	Positional bool      `yaml:"positional"`
	Named      bool      `yaml:"named"`
	Variadic   bool      `yaml:"variadic"`
	Required   bool      `yaml:"required"`
	Settable   bool      `yaml:"settable"`
	Fixed      bool      `yaml:"fixed"`
	Default    string    `yaml:"default"`
	Input      []castDoc `yaml:"input"`
}

// castDoc is either a bare type name or a value with docs.
type castDoc struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
	Docs  string `yaml:"docs"`
}

func (c *castDoc) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if name, ok := raw.(string); ok {
		c.Type = name
		return nil
	}
	type plain castDoc
	return unmarshal((*plain)(c))
}

type moduleDoc struct {
	Scope []entry `yaml:"scope"`
}

type typeDoc struct {
	Docs string `yaml:"docs"`
}

type valueDoc struct {
	Repr string `yaml:"repr"`
	Type string `yaml:"type"`
}

// Load builds a library from a builtins document.
func Load(data []byte) (*Library, error) {
	var doc document
	if err := yaml.UnmarshalWithOptions(data, &doc, yaml.Strict()); err != nil {
		return nil, errors.Wrap(err, "decoding builtins")
	}
	lib := New()
	if err := define(lib.Global, doc.Global); err != nil {
		return nil, errors.Wrap(err, "global scope")
	}
	if err := define(lib.Math, doc.Math); err != nil {
		return nil, errors.Wrap(err, "math scope")
	}
	return lib, nil
}

func define(scope *value.Scope, entries []entry) error {
	for _, e := range entries {
		if e.Name == "" {
			return errors.New("entry without a name")
		}
		v, err := e.value()
		if err != nil {
			return errors.Wrapf(err, "entry %q", e.Name)
		}
		scope.Define(e.Name, v)
	}
	return nil
}

func (e entry) value() (value.Value, error) {
	switch {
	case e.Func != nil:
		return e.Func.build(e.Name)
	case e.Module != nil:
		scope := value.NewScope()
		if err := define(scope, e.Module.Scope); err != nil {
			return nil, err
		}
		return &value.Module{Name: e.Name, Scope: scope}, nil
	case e.Type != nil:
		if _, ok := value.TypeByName(e.Name); !ok {
			return nil, errors.Newf("unknown type %q", e.Name)
		}
		return &value.Type{Name: e.Name, Docs: e.Type.Docs}, nil
	case e.Value != nil:
		v := value.ParseLiteral(e.Value.Repr)
		if dyn, ok := v.(value.Dyn); ok {
			dyn.Type = e.Value.Type
			v = dyn
		}
		return v, nil
	case e.Symbol != "":
		return value.Symbol(e.Symbol), nil
	}
	return nil, errors.New("entry has no definition")
}

func (f *funcDoc) build(name string) (value.Value, error) {
	native := &value.Native{Name: name, Docs: f.Docs}
	for _, p := range f.Params {
		if !p.Positional && !p.Named {
			return nil, errors.Newf("parameter %q is neither positional nor named", p.Name)
		}
		native.Params = append(native.Params, &value.ParamSpec{
			Name:       p.Name,
			Docs:       p.Docs,
			Input:      castInfo(p.Input),
			Default:    p.Default,
			Positional: p.Positional,
			Named:      p.Named,
			Variadic:   p.Variadic,
			Required:   p.Required,
			Settable:   p.Settable || (f.Element && p.Named && !p.Fixed),
		})
	}
	if len(f.Scope) > 0 {
		native.Scope = value.NewScope()
		if err := define(native.Scope, f.Scope); err != nil {
			return nil, err
		}
	}
	return value.NewFunc(native), nil
}

func castInfo(docs []castDoc) value.CastInfo {
	casts := make(value.CastUnion, 0, len(docs))
	for _, d := range docs {
		if d.Value != "" {
			casts = append(casts, value.CastValue{Value: value.ParseLiteral(d.Value), Docs: d.Docs})
			continue
		}
		casts = append(casts, value.CastOf(d.Type))
	}
	switch len(casts) {
	case 0:
		return value.CastAny{}
	case 1:
		return casts[0]
	}
	return casts
}
