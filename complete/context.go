// Package complete computes completions at a cursor position: the names in
// scope, the parameters of the function being called and the values a
// parameter accepts.
package complete

import (
	"github.com/arjunmahishi/scopeq/analysis"
	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
	"go.uber.org/zap"
)

// World is the environment a document is completed in.
type World interface {
	analysis.World
	// Fonts returns the font families documents can use.
	Fonts() []fonts.Family
}

// Options configures Complete.
type Options struct {
	// Explicit marks a request the user invoked, rather than one triggered
	// by typing. Explicit requests also complete in empty code positions.
	Explicit bool

	// Logger receives diagnostics about parts of the document that could
	// not be analyzed. Defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Context is the state of one completion request.
type Context struct {
	World  World
	Source *syntax.Source
	Leaf   *syntax.Node
	Cursor int
	// Before and After hold the source text around the cursor.
	Before string
	After  string
	// From is where the text replaced by a completion starts.
	From        int
	Completions []Completion
	Explicit    bool
	Logger      *zap.SugaredLogger

	// ResolveCallee maps a callee expression to a function.
	ResolveCallee func(w analysis.World, callee *syntax.Node) (*value.Func, bool)
	// Signature introspects a function's parameters.
	Signature func(f *value.Func) *analysis.Signature

	seenCasts map[string]struct{}
}

// NewContext prepares a request at cursor. It returns nil when the cursor is
// outside the source.
func NewContext(w World, src *syntax.Source, cursor int, opts Options) *Context {
	leaf := src.LeafAt(cursor)
	if leaf == nil {
		return nil
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	text := src.Text()
	return &Context{
		World:         w,
		Source:        src,
		Leaf:          leaf,
		Cursor:        cursor,
		Before:        text[:cursor],
		After:         text[cursor:],
		From:          cursor,
		Explicit:      opts.Explicit,
		Logger:        logger,
		ResolveCallee: analysis.ResolveCallee,
		Signature:     analysis.SignatureOf,
		seenCasts:     make(map[string]struct{}),
	}
}

// push adds a completion. Entries without a label are dropped.
func (ctx *Context) push(c Completion) {
	if c.Label == "" {
		return
	}
	ctx.Completions = append(ctx.Completions, c)
}

// pushCast adds a value suggestion unless one with the same label was
// already suggested in this request.
func (ctx *Context) pushCast(c Completion) {
	if _, seen := ctx.seenCasts[c.Label]; seen {
		return
	}
	ctx.seenCasts[c.Label] = struct{}{}
	ctx.push(c)
}

// enrich wraps the inserted text of every completion.
func (ctx *Context) enrich(prefix, suffix string) {
	for i := range ctx.Completions {
		c := &ctx.Completions[i]
		apply := c.Apply
		if apply == "" {
			apply = c.Label
		}
		c.Apply = prefix + apply + suffix
	}
}

// resolveFunc resolves the callee covering span to its base function,
// peeling every layer of partial application.
func (ctx *Context) resolveFunc(span syntax.Span) (*value.Func, bool) {
	if span.Start >= span.End {
		return nil, false
	}
	callee := ctx.Source.Covering(span)
	if callee == nil || !callee.Kind().IsExpr() {
		return nil, false
	}
	f, ok := ctx.ResolveCallee(ctx.World, callee)
	if !ok {
		return nil, false
	}
	for {
		w, wrapped := f.Inner().(*value.With)
		if !wrapped {
			return f, true
		}
		f = w.Func
	}
}
