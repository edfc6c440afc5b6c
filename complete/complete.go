package complete

import (
	"github.com/arjunmahishi/scopeq/analysis"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
)

// Complete returns the completions at cursor and the offset where the text
// they replace starts. Finding nothing is not an error.
func Complete(w World, src *syntax.Source, cursor int, opts Options) (int, []Completion) {
	ctx := NewContext(w, src, cursor, opts)
	if ctx == nil {
		return cursor, nil
	}
	_ = completeFieldAccess(ctx) || completeArgs(ctx) || completeNames(ctx)
	return ctx.From, ctx.Completions
}

// completeFieldAccess handles "calc.|" and "calc.po|".
func completeFieldAccess(ctx *Context) bool {
	leaf := ctx.Leaf

	// A dot in markup is text until a field name follows it.
	if leaf.Is(syntax.Dot) || (leaf.Is(syntax.Text) && leaf.Text() == ".") {
		if leaf.Span().End != ctx.Cursor {
			return false
		}
		target := leaf.PrevSibling()
		if target == nil || !target.Kind().IsExpr() {
			return false
		}
		v, ok := analysis.Eval(ctx.World, target)
		if !ok {
			return false
		}
		ctx.From = ctx.Cursor
		ctx.fieldCompletions(v)
		return true
	}

	if leaf.Is(syntax.Ident) {
		dot := leaf.PrevSibling()
		if !dot.Is(syntax.Dot) {
			return false
		}
		target := dot.PrevSibling()
		if target == nil || !target.Kind().IsExpr() {
			return false
		}
		v, ok := analysis.Eval(ctx.World, target)
		if !ok {
			return false
		}
		ctx.From = leaf.Offset()
		ctx.fieldCompletions(v)
		return true
	}
	return false
}

// completeArgs handles positions inside the argument list of a call or set
// rule.
func completeArgs(ctx *Context) bool {
	parent := ctx.Leaf.Parent()
	if parent.Is(syntax.Named) {
		parent = parent.Parent()
	}
	if !parent.Is(syntax.Args) {
		return false
	}
	args := parent

	// An empty span stands for a missing callee.
	var callee syntax.Span
	set := false
	switch grand := args.Parent(); {
	case grand.Is(syntax.FuncCall):
		call, _ := syntax.AsFuncCall(grand)
		callee = call.Callee().Span()
	case grand.Is(syntax.SetRule):
		rule, _ := syntax.AsSetRule(grand)
		if target := rule.Target(); target != nil {
			callee = target.Span()
		}
		set = true
	default:
		return false
	}

	// Walk back to the token that decides what is being completed.
	deciding := ctx.Leaf
	for !deciding.Is(syntax.LeftParen) && !deciding.Is(syntax.Comma) && !deciding.Is(syntax.Colon) {
		prev := deciding.PrevLeaf()
		if prev == nil {
			break
		}
		deciding = prev
	}

	switch deciding.Kind() {
	case syntax.Colon:
		// "f(param:|)" and "f(param: |)"
		name := deciding.PrevLeaf()
		if !name.Is(syntax.Ident) {
			return false
		}
		ctx.setFromNext(deciding)
		ctx.namedValueCompletions(callee, name.Text())
		return true
	case syntax.LeftParen, syntax.Comma:
		// "f(|)", "f(na|)" and "set f(a: 1,|)"
		ctx.setFromNext(deciding)
		ctx.paramCompletions(callee, set, args)
		return true
	}
	return false
}

// setFromNext starts the replaced text at the leaf after deciding, unless
// that leaf begins after the cursor.
func (ctx *Context) setFromNext(deciding *syntax.Node) {
	if next := deciding.NextLeaf(); next != nil && next.Offset() < ctx.Cursor {
		ctx.From = next.Offset()
	}
}

// completeNames handles identifiers being typed and empty expression
// positions.
func completeNames(ctx *Context) bool {
	leaf := ctx.Leaf
	switch {
	case leaf.Is(syntax.Hash) && leaf.Span().End == ctx.Cursor:
		// "#|"
		ctx.From = ctx.Cursor
		ctx.codeCompletions(true)
	case leaf.Is(syntax.Ident) && leaf.PrevSiblingKind() == syntax.Hash:
		// "#te|"
		ctx.From = leaf.Offset()
		ctx.codeCompletions(true)
	case inMath(leaf) && (leaf.Is(syntax.MathIdent) || leaf.Is(syntax.Text)):
		// "$al|$"
		ctx.From = leaf.Offset()
		ctx.scopeCompletions(true, func(value.Value) bool { return true })
	case leaf.Is(syntax.Ident):
		// "{ te| }"
		ctx.From = leaf.Offset()
		ctx.codeCompletions(false)
	case ctx.Explicit && inCode(leaf) &&
		(leaf.Kind().IsTrivia() || leaf.Is(syntax.LeftBrace) || leaf.Is(syntax.LeftParen)):
		// "{ | }"
		ctx.From = ctx.Cursor
		ctx.codeCompletions(false)
	default:
		return false
	}
	return true
}

// inCode reports whether the leaf sits in code rather than markup or math.
func inCode(leaf *syntax.Node) bool {
	for n := leaf.Parent(); n != nil; n = n.Parent() {
		switch n.Kind() {
		case syntax.Code, syntax.CodeBlock, syntax.Parenthesized, syntax.Array, syntax.Dict:
			return true
		case syntax.Markup, syntax.ContentBlock, syntax.Math, syntax.Equation:
			return false
		}
	}
	return false
}
