package complete

import (
	"strings"

	"github.com/arjunmahishi/scopeq/syntax"
)

// paramCompletions suggests the parameters of the called function that the
// argument list does not name yet. In set rules only settable parameters are
// offered.
func (ctx *Context) paramCompletions(callee syntax.Span, set bool, args *syntax.Node) {
	f, ok := ctx.resolveFunc(callee)
	if !ok {
		return
	}

	exclude := make(map[string]struct{})
	for _, name := range syntax.ArgNames(args) {
		exclude[name] = struct{}{}
	}

	for _, p := range ctx.Signature(f).Primary().Params() {
		if _, ok := exclude[p.Name]; ok {
			continue
		}
		if set && !p.Settable {
			continue
		}
		if p.Named {
			ctx.push(Completion{
				Kind:    Parameter,
				Label:   p.Name,
				Apply:   p.Name + ": ${}",
				Detail:  PlainDocs(p.Docs),
				Command: TriggerSuggest,
			})
		}
		if p.Positional {
			ctx.castCompletions(p.Input)
		}
	}

	if strings.HasSuffix(ctx.Before, ",") {
		ctx.enrich(" ", "")
	}
}
