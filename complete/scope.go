package complete

import (
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
)

// inMath reports whether the leaf completes against the math scope.
func inMath(leaf *syntax.Node) bool {
	parent := leaf.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case syntax.Equation, syntax.Math, syntax.MathFrac, syntax.MathAttach, syntax.MathDelimited:
		return true
	}
	return false
}

// scopeCompletions suggests the builtins accepted by filter followed by the
// local bindings. Locals shadow builtins of the same name.
func (ctx *Context) scopeCompletions(parens bool, filter func(value.Value) bool) {
	locals := ctx.collectLocals()

	lib := ctx.World.Library()
	scope := lib.Global
	if inMath(ctx.Leaf) {
		scope = lib.Math
	}
	scope.Each(func(name string, v value.Value) bool {
		if filter(v) && !locals.has(name) {
			ctx.push(ctx.valueCompletion(name, v, parens, ""))
		}
		return true
	})

	for _, b := range locals.bindings() {
		if b.Kind == Function {
			ctx.push(Completion{
				Kind:    Function,
				Label:   b.Name,
				Apply:   b.Name + "(${})",
				Command: TriggerSuggest,
			})
			continue
		}
		ctx.push(Completion{Kind: b.Kind, Label: b.Name})
	}
}

// codeCompletions suggests names in code. After a hash in markup only values
// that are useful there are offered.
func (ctx *Context) codeCompletions(hash bool) {
	ctx.scopeCompletions(true, func(v value.Value) bool {
		if !hash {
			return true
		}
		switch v.(type) {
		case value.Symbol, *value.Func, *value.Type, *value.Module:
			return true
		}
		return false
	})
}
