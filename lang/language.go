// Package lang holds the document languages scopeq can complete. Each
// language parses text into the shared syntax tree and supplies the builtin
// library its documents see.
package lang

import (
	"context"
	"sort"

	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/syntax"
	"github.com/arjunmahishi/scopeq/value"
)

// Language defines the interface for a supported document language.
type Language interface {
	// Name returns the language identifier (e.g., "typst", "go").
	Name() string

	// Extensions returns file extensions for this language (e.g., [".typ"]).
	Extensions() []string

	// Parse turns text into a document. Syntax errors do not fail a parse;
	// the tree keeps them as error nodes.
	Parse(ctx context.Context, text string) (*Document, error)
}

// ImportResolver resolves import sources to modules.
type ImportResolver interface {
	ResolveImport(path string) (*value.Module, error)
}

// Document is a parsed text together with what its language knows about it.
type Document struct {
	Lang    Language
	Source  *syntax.Source
	Library *library.Library

	// Imports resolves the document's imports when the language handles
	// them itself. Nil means imports name files and packages.
	Imports ImportResolver
}

// registry holds all registered languages.
var registry = make(map[string]Language)

// Register adds a language to the registry.
// This is typically called from init() functions in language implementation files.
func Register(lang Language) {
	registry[lang.Name()] = lang
}

// Get returns a language by name, or nil if not found.
func Get(name string) Language {
	return registry[name]
}

// List returns all registered language names, sorted.
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByExtension finds a language by file extension.
func ByExtension(ext string) Language {
	for _, lang := range registry {
		for _, e := range lang.Extensions() {
			if e == ext {
				return lang
			}
		}
	}
	return nil
}
