package complete

import (
	"github.com/arjunmahishi/scopeq/analysis"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/tidwall/btree"
)

// Binding is a local name visible at the cursor.
type Binding struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// shadowMap records bindings where the first definition of a name wins.
type shadowMap struct {
	m btree.Map[string, Kind]
}

func (s *shadowMap) insert(name string, kind Kind) {
	if name == "" {
		return
	}
	if _, ok := s.m.Get(name); ok {
		return
	}
	s.m.Set(name, kind)
}

func (s *shadowMap) has(name string) bool {
	_, ok := s.m.Get(name)
	return ok
}

func (s *shadowMap) bindings() []Binding {
	out := make([]Binding, 0, s.m.Len())
	s.m.Scan(func(name string, kind Kind) bool {
		out = append(out, Binding{Name: name, Kind: kind})
		return true
	})
	return out
}

// collectLocals gathers the names visible at the cursor leaf. Siblings are
// visited from the leaf backwards, then the walk moves to the parent, so
// nearer definitions shadow farther ones.
func (ctx *Context) collectLocals() *shadowMap {
	locals := &shadowMap{}
	for ancestor := ctx.Leaf; ancestor != nil; {
		for sibling := ancestor; sibling != nil; sibling = sibling.PrevSibling() {
			switch sibling.Kind() {
			case syntax.LetBinding:
				let, _ := syntax.AsLetBinding(sibling)
				kind := Variable
				if let.IsFunction() {
					kind = Function
				}
				for _, ident := range let.Bindings() {
					locals.insert(ident.Text(), kind)
				}
			case syntax.ModuleImport:
				imp, _ := syntax.AsModuleImport(sibling)
				ctx.collectImport(imp, locals)
			}
		}

		parent := ancestor.Parent()
		if parent == nil {
			break
		}
		switch parent.Kind() {
		case syntax.ForLoop:
			// The iterable is evaluated before the loop variable exists.
			if ancestor.PrevSiblingKind() != syntax.In {
				loop, _ := syntax.AsForLoop(parent)
				for _, ident := range syntax.Bindings(loop.Pattern()) {
					locals.insert(ident.Text(), Variable)
				}
			}
		case syntax.Closure:
			c, _ := syntax.AsClosure(parent)
			for _, p := range c.Params() {
				switch p.Kind {
				case syntax.ParamPos:
					for _, ident := range syntax.Bindings(p.Pattern()) {
						locals.insert(ident.Text(), Variable)
					}
				case syntax.ParamNamed:
					if name := p.Name(); name != nil {
						locals.insert(name.Text(), Variable)
					}
				case syntax.ParamSpread:
					if sink := p.Sink(); sink != nil {
						locals.insert(sink.Text(), Variable)
					}
				}
			}
		}
		ancestor = parent
	}
	return locals
}

func (ctx *Context) collectImport(imp syntax.ModuleImportNode, locals *shadowMap) {
	source := imp.Source()
	mod, err := analysis.Import(ctx.World, source)
	if err != nil {
		text := ""
		if source != nil {
			text = source.FullText()
		}
		ctx.Logger.Infow("failed to analyze import", "source", text, "error", err)
		return
	}

	if !imp.HasImports() {
		name := mod.Name
		if renamed := imp.NewName(); renamed != nil {
			name = renamed.Text()
		}
		locals.insert(name, Module)
		return
	}

	mod.Scope.Each(func(name string, v value.Value) bool {
		locals.insert(name, kindOf(v))
		return true
	})
	for _, item := range imp.Items() {
		if item.Bound == item.Original {
			continue
		}
		if v, ok := mod.Scope.Get(item.Original); ok {
			locals.insert(item.Bound, kindOf(v))
		}
	}
}

// Locals returns the local bindings visible at cursor, ordered by name.
func Locals(w World, src *syntax.Source, cursor int, opts Options) []Binding {
	ctx := NewContext(w, src, cursor, opts)
	if ctx == nil {
		return nil
	}
	return ctx.collectLocals().bindings()
}
