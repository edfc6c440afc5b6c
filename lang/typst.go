package lang

import (
	"context"

	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/syntax"
)

// Typst implements the Language interface for typst markup.
type Typst struct{}

func init() {
	Register(&Typst{})
}

func (t *Typst) Name() string {
	return "typst"
}

func (t *Typst) Extensions() []string {
	return []string{".typ"}
}

func (t *Typst) Parse(ctx context.Context, text string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Document{
		Lang:    t,
		Source:  syntax.Parse(text),
		Library: library.Default(),
	}, nil
}
