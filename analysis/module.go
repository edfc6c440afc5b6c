package analysis

import (
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
)

// ModuleOf builds the module a file exports: its top-level let bindings.
// Later definitions of a name replace earlier ones.
func ModuleOf(w World, name string, src *syntax.Source) *value.Module {
	scope := value.NewScope()
	e := &evaluator{world: w}
	for _, c := range src.Root().Children() {
		let, ok := syntax.AsLetBinding(c)
		if !ok {
			continue
		}
		for _, ident := range let.Bindings() {
			v, _, known := e.declared(c, ident.Text())
			if !known {
				v = value.Dyn{Text: ident.Text()}
			}
			scope.Define(ident.Text(), v)
		}
	}
	return &value.Module{Name: name, Scope: scope}
}
