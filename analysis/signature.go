package analysis

import (
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
)

// Unwrap peels partial application layers until the base function remains.
func Unwrap(f *value.Func) *value.Func {
	for {
		w, ok := f.Inner().(*value.With)
		if !ok {
			return f
		}
		f = w.Func
	}
}

// Signature describes how a function can be called.
type Signature struct {
	primary *Primary
}

// Primary returns the function's main parameter list.
func (s *Signature) Primary() *Primary { return s.primary }

// Primary is an ordered parameter collection that is also keyed by name.
type Primary struct {
	params []*value.ParamSpec
	byName map[string]*value.ParamSpec
}

func newPrimary(params []*value.ParamSpec) *Primary {
	p := &Primary{params: params, byName: make(map[string]*value.ParamSpec, len(params))}
	for _, spec := range params {
		if _, ok := p.byName[spec.Name]; !ok {
			p.byName[spec.Name] = spec
		}
	}
	return p
}

// Params returns the parameters in declaration order.
func (p *Primary) Params() []*value.ParamSpec { return p.params }

// Param returns the parameter with the given name.
func (p *Primary) Param(name string) (*value.ParamSpec, bool) {
	spec, ok := p.byName[name]
	return spec, ok
}

// SignatureOf returns the signature of f. Wrapped functions report the
// signature of their base function.
func SignatureOf(f *value.Func) *Signature {
	var params []*value.ParamSpec
	switch r := Unwrap(f).Inner().(type) {
	case *value.Native:
		params = r.Params
	case *value.Closure:
		params = closureParams(r.Node)
	}
	return &Signature{primary: newPrimary(params)}
}

func closureParams(node *syntax.Node) []*value.ParamSpec {
	c, ok := syntax.AsClosure(node)
	if !ok {
		return nil
	}
	var out []*value.ParamSpec
	for _, p := range c.Params() {
		switch p.Kind {
		case syntax.ParamPos:
			out = append(out, &value.ParamSpec{
				Name:       p.Pattern().FullText(),
				Input:      value.CastAny{},
				Positional: true,
				Required:   true,
			})
		case syntax.ParamNamed:
			name := p.Name()
			if name == nil {
				continue
			}
			spec := &value.ParamSpec{
				Name:  name.Text(),
				Input: value.CastAny{},
				Named: true,
			}
			if def := p.Default(); def != nil {
				spec.Default = def.FullText()
				spec.Input = defaultInput(def)
			}
			out = append(out, spec)
		case syntax.ParamSpread:
			name := ".."
			if sink := p.Sink(); sink != nil {
				name = sink.Text()
			}
			out = append(out, &value.ParamSpec{
				Name:       name,
				Input:      value.CastAny{},
				Positional: true,
				Variadic:   true,
			})
		}
	}
	return out
}

// defaultInput infers the accepted type of a named parameter from a literal
// default.
func defaultInput(def *syntax.Node) value.CastInfo {
	switch def.Kind() {
	case syntax.Bool, syntax.Int, syntax.Float, syntax.Numeric, syntax.Str:
		return value.CastOf(value.TypeName(value.ParseLiteral(def.FullText())))
	case syntax.ContentBlock:
		return value.CastOf("content")
	}
	return value.CastAny{}
}
