// Package output provides output formatting for scopeq.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
)

// Writer handles structured output.
type Writer struct {
	encoder *json.Encoder
	compact bool
}

// Config holds output configuration.
type Config struct {
	Compact bool
	Output  io.Writer
}

// New creates a new output Writer.
func New(cfg Config) *Writer {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	enc := json.NewEncoder(cfg.Output)
	enc.SetEscapeHTML(false)
	if !cfg.Compact {
		enc.SetIndent("", "  ")
	}

	return &Writer{
		encoder: enc,
		compact: cfg.Compact,
	}
}

// Write outputs a value as JSON.
func (w *Writer) Write(v any) error {
	return w.encoder.Encode(v)
}

// WriteError writes an error to stderr, with its hints when it has any.
func WriteError(err error) {
	writeError(os.Stderr, err)
}

func writeError(out io.Writer, err error) {
	msg := map[string]any{"error": err.Error()}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		msg["hints"] = hints
	}
	if encErr := json.NewEncoder(out).Encode(msg); encErr != nil {
		fmt.Fprintln(out, err)
	}
}
