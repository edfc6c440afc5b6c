package complete

import (
	"strings"

	"github.com/arjunmahishi/scopeq/syntax"
)

// fontParam is the parameter whose values are font family names.
const fontParam = "font"

// namedValueCompletions suggests values for the named parameter being typed.
func (ctx *Context) namedValueCompletions(callee syntax.Span, name string) {
	f, ok := ctx.resolveFunc(callee)
	if !ok {
		return
	}
	p, ok := ctx.Signature(f).Primary().Param(name)
	if !ok || !p.Named {
		return
	}

	if p.Default != "" {
		ctx.pushCast(Completion{Kind: Constant, Label: p.Default, Detail: PlainDocs(p.Docs)})
	}
	ctx.castCompletions(p.Input)
	if name == fontParam {
		ctx.fontCompletions()
	}

	if strings.HasSuffix(ctx.Before, ":") {
		ctx.enrich(" ", "")
	}
}
