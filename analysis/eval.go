// Package analysis answers static questions about a syntax tree: what an
// expression evaluates to, which function a call targets and what that
// function's parameters are.
package analysis

import (
	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
)

// World gives the analysis access to everything outside the current tree.
type World interface {
	// Library returns the builtin scopes.
	Library() *library.Library
	// ResolveImport loads the module at path, relative to the current file.
	ResolveImport(path string) (*value.Module, error)
}

// maxDepth bounds evaluation through chains of bindings.
const maxDepth = 64

// ErrNotModule is returned when an import source evaluates to something
// other than a module.
var ErrNotModule = errors.New("import source is not a module")

// Import resolves the module an import source expression refers to.
func Import(w World, source *syntax.Node) (*value.Module, error) {
	e := &evaluator{world: w}
	return e.importModule(source)
}

func (e *evaluator) importModule(source *syntax.Node) (*value.Module, error) {
	if source == nil {
		return nil, errors.New("import has no source")
	}
	if path, ok := syntax.StrValue(source); ok {
		return e.world.ResolveImport(path)
	}
	v, ok := e.eval(source)
	if !ok {
		return nil, errors.Newf("cannot evaluate %q", source.FullText())
	}
	switch v := v.(type) {
	case *value.Module:
		return v, nil
	case *value.Func:
		// Functions with a scope can be imported from.
		return &value.Module{Name: v.Name(), Scope: v.Scope()}, nil
	}
	return nil, errors.Wrapf(ErrNotModule, "%q", source.FullText())
}

// Eval statically evaluates expr. It reports false when the value cannot be
// known without running the document.
func Eval(w World, expr *syntax.Node) (value.Value, bool) {
	e := &evaluator{world: w}
	return e.eval(expr)
}

type evaluator struct {
	world World
	depth int
}

func (e *evaluator) eval(expr *syntax.Node) (value.Value, bool) {
	if expr == nil || e.depth >= maxDepth {
		return nil, false
	}
	e.depth++
	defer func() { e.depth-- }()

	switch expr.Kind() {
	case syntax.Ident, syntax.MathIdent:
		return e.lookup(expr)
	case syntax.None, syntax.Auto, syntax.Bool, syntax.Int, syntax.Float,
		syntax.Numeric, syntax.Str:
		return value.ParseLiteral(expr.FullText()), true
	case syntax.Closure:
		c, _ := syntax.AsClosure(expr)
		name := ""
		if n := c.Name(); n != nil {
			name = n.Text()
		}
		return value.NewFunc(&value.Closure{Name: name, Node: expr}), true
	case syntax.Parenthesized:
		return e.eval(syntax.Unparen(expr))
	case syntax.FieldAccess:
		access, _ := syntax.AsFieldAccess(expr)
		if access.Field() == nil {
			return nil, false
		}
		target, ok := e.eval(access.Target())
		if !ok {
			return nil, false
		}
		return field(target, access.Field().Text())
	case syntax.FuncCall:
		return e.call(expr)
	}
	return nil, false
}

// call handles `f.with(..)`, the only call with a statically known result.
func (e *evaluator) call(expr *syntax.Node) (value.Value, bool) {
	call, _ := syntax.AsFuncCall(expr)
	access, ok := syntax.AsFieldAccess(call.Callee())
	if !ok || access.Field() == nil || access.Field().Text() != "with" {
		return nil, false
	}
	target, ok := e.eval(access.Target())
	if !ok {
		return nil, false
	}
	f, ok := target.(*value.Func)
	if !ok {
		return nil, false
	}
	return f.With(call.Args()), true
}

func field(target value.Value, name string) (value.Value, bool) {
	switch t := target.(type) {
	case *value.Module:
		return t.Scope.Get(name)
	case *value.Func:
		return t.Scope().Get(name)
	}
	return nil, false
}

// lookup finds the nearest binding of an identifier, walking preceding
// siblings and then ancestors, and falls back to the builtin scopes.
func (e *evaluator) lookup(ident *syntax.Node) (value.Value, bool) {
	name := ident.Text()
	for anc := ident; anc != nil; anc = anc.Parent() {
		for sib := anc.PrevSibling(); sib != nil; sib = sib.PrevSibling() {
			if v, found, ok := e.declared(sib, name); found {
				return v, ok
			}
		}
		parent := anc.Parent()
		switch {
		case parent.Is(syntax.ForLoop):
			loop, _ := syntax.AsForLoop(parent)
			if anc.PrevSiblingKind() != syntax.In && binds(syntax.Bindings(loop.Pattern()), name) {
				return nil, false
			}
		case parent.Is(syntax.Closure):
			c, _ := syntax.AsClosure(parent)
			if binds(closureBindings(c), name) {
				return nil, false
			}
		}
	}

	lib := e.world.Library()
	if ident.Is(syntax.MathIdent) {
		if v, ok := lib.Math.Get(name); ok {
			return v, true
		}
	}
	return lib.Global.Get(name)
}

// declared reports whether decl binds name. found is true when the search
// should stop; ok tells whether the bound value is known.
func (e *evaluator) declared(decl *syntax.Node, name string) (v value.Value, found, ok bool) {
	switch decl.Kind() {
	case syntax.LetBinding:
		let, _ := syntax.AsLetBinding(decl)
		if !binds(let.Bindings(), name) {
			return nil, false, false
		}
		if c, isClosure := let.Closure(); isClosure {
			return value.NewFunc(&value.Closure{Name: name, Node: c.Node}), true, true
		}
		if !let.Pattern().Is(syntax.Ident) {
			return nil, true, false
		}
		v, ok := e.eval(let.Init())
		if f, isFunc := v.(*value.Func); isFunc {
			if c, isClosure := f.Inner().(*value.Closure); isClosure && c.Name == "" {
				v = value.NewFunc(&value.Closure{Name: name, Node: c.Node})
			}
		}
		return v, true, ok
	case syntax.ModuleImport:
		imp, _ := syntax.AsModuleImport(decl)
		mod, err := e.importModule(imp.Source())
		if err != nil {
			return nil, false, false
		}
		if !imp.HasImports() {
			bound := mod.Name
			if n := imp.NewName(); n != nil {
				bound = n.Text()
			}
			if bound == name {
				return mod, true, true
			}
			return nil, false, false
		}
		if imp.Wildcard() {
			if v, ok := mod.Scope.Get(name); ok {
				return v, true, true
			}
			return nil, false, false
		}
		for _, item := range imp.Items() {
			if item.Bound == name {
				v, ok := mod.Scope.Get(item.Original)
				return v, true, ok
			}
		}
	}
	return nil, false, false
}

func binds(idents []*syntax.Node, name string) bool {
	for _, id := range idents {
		if id.Text() == name {
			return true
		}
	}
	return false
}

func closureBindings(c syntax.ClosureNode) []*syntax.Node {
	var out []*syntax.Node
	for _, p := range c.Params() {
		switch p.Kind {
		case syntax.ParamPos:
			out = append(out, syntax.Bindings(p.Pattern())...)
		case syntax.ParamNamed:
			if n := p.Name(); n != nil {
				out = append(out, n)
			}
		case syntax.ParamSpread:
			if n := p.Sink(); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

// ResolveCallee returns the function a callee expression refers to.
func ResolveCallee(w World, callee *syntax.Node) (*value.Func, bool) {
	v, ok := Eval(w, callee)
	if !ok {
		return nil, false
	}
	f, ok := v.(*value.Func)
	return f, ok
}
