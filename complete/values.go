package complete

import (
	"fmt"

	"github.com/arjunmahishi/scopeq/analysis"
	"github.com/arjunmahishi/scopeq/value"
)

// valueCompletion suggests a value under label. With parens, functions are
// inserted as calls.
func (ctx *Context) valueCompletion(label string, v value.Value, parens bool, docs string) Completion {
	if label == "" {
		label = v.Repr()
	}
	c := Completion{Kind: kindOf(v), Label: label, Detail: docs}

	switch v := v.(type) {
	case *value.Func:
		if c.Detail == "" {
			c.Detail = PlainDocs(v.Docs())
		}
		if parens {
			if len(ctx.Signature(v).Primary().Params()) == 0 {
				c.Apply = label + "()${}"
			} else {
				c.Apply = label + "(${})"
				c.Command = TriggerSuggest
			}
		}
	case *value.Type:
		if c.Detail == "" {
			c.Detail = PlainDocs(v.Docs)
		}
	case value.Symbol:
		if c.Detail == "" {
			c.Detail = string(v)
		}
	default:
		if repr := v.Repr(); c.Detail == "" && repr != label {
			c.Detail = repr
		}
	}
	return c
}

// castCompletions suggests values a parameter with the given input accepts.
func (ctx *Context) castCompletions(info value.CastInfo) {
	switch c := info.(type) {
	case value.CastValue:
		ctx.pushCast(ctx.valueCompletion("", c.Value, true, PlainDocs(c.Docs)))
	case value.CastType:
		ctx.typeCompletions(c.Type)
	case value.CastUnion:
		for _, member := range c {
			ctx.castCompletions(member)
		}
	}
}

func (ctx *Context) snippet(label, apply, docs string) {
	ctx.pushCast(Completion{Kind: Constant, Label: label, Apply: apply, Detail: docs})
}

func (ctx *Context) typeCompletions(t *value.Type) {
	switch t.Name {
	case "none":
		ctx.snippet("none", "", "Nothing.")
	case "auto":
		ctx.snippet("auto", "", "A smart default.")
	case "bool":
		ctx.snippet("false", "", "No / Disabled.")
		ctx.snippet("true", "", "Yes / Enabled.")
	case "color":
		ctx.snippet("luma()", "luma(${})", "A custom grayscale color.")
		ctx.snippet("rgb()", "rgb(${})", "A custom RGBA color.")
		ctx.libraryValues("color")
	case "length":
		ctx.lengthSnippets()
	case "ratio":
		ctx.snippet("%", "${}%", "Percentage of a whole.")
	case "relative":
		ctx.lengthSnippets()
		ctx.snippet("%", "${}%", "Percentage of a whole.")
	case "fraction":
		ctx.snippet("fr", "${}fr", "Fraction of the remaining space.")
	case "angle":
		ctx.snippet("deg", "${}deg", "Degrees.")
		ctx.snippet("rad", "${}rad", "Radians.")
	case "alignment":
		ctx.libraryValues("alignment")
	case "content":
		ctx.snippet("[]", "[${}]", "Content.")
	case "str":
		ctx.snippet(`""`, `"${}"`, "A string.")
	case "label":
		ctx.snippet("<>", "<${}>", "A label.")
	case "array":
		ctx.snippet("(..)", "(${},)", "An array.")
	case "dictionary":
		ctx.snippet("(:)", "(${}: ${})", "A dictionary.")
	case "function":
		ctx.snippet("(..) =>", "(${}) => ${}", "A custom function.")
	}
}

func (ctx *Context) lengthSnippets() {
	ctx.snippet("pt", "${}pt", "Point length unit.")
	ctx.snippet("mm", "${}mm", "Millimeter length unit.")
	ctx.snippet("cm", "${}cm", "Centimeter length unit.")
	ctx.snippet("in", "${}in", "Inch length unit.")
	ctx.snippet("em", "${}em", "Em length unit, relative to the font size.")
}

// libraryValues suggests the global definitions of the named type.
func (ctx *Context) libraryValues(typeName string) {
	ctx.World.Library().Global.Each(func(name string, v value.Value) bool {
		if value.TypeName(v) == typeName {
			ctx.pushCast(ctx.valueCompletion(name, v, false, ""))
		}
		return true
	})
}

// fontCompletions suggests the families of the world's font book.
func (ctx *Context) fontCompletions() {
	for _, family := range ctx.World.Fonts() {
		n := len(family.Variants)
		detail := fmt.Sprintf("%d variant", n)
		if n != 1 {
			detail += "s"
		}
		ctx.pushCast(Completion{Kind: Constant, Label: `"` + family.Name + `"`, Detail: detail})
	}
}

// fieldCompletions suggests the members reachable through field access on v.
func (ctx *Context) fieldCompletions(v value.Value) {
	var scope *value.Scope
	switch v := v.(type) {
	case *value.Module:
		scope = v.Scope
	case *value.Func:
		scope = analysis.Unwrap(v).Scope()
	}
	scope.Each(func(name string, member value.Value) bool {
		ctx.push(ctx.valueCompletion(name, member, true, ""))
		return true
	})
}
