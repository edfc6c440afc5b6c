package main

import (
	"testing"

	"github.com/arjunmahishi/scopeq/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorOffset(t *testing.T) {
	text := "#let a = 1\n#let αβ = 2\n"
	tests := []struct {
		name    string
		offset  int
		line    int
		column  int
		want    int
		wantErr string
	}{
		{name: "offset", offset: 3, want: 3},
		{name: "offset at end", offset: len(text), want: len(text)},
		{name: "offset past end", offset: len(text) + 1, wantErr: "past the end"},
		{name: "offset and line", offset: 1, line: 1, wantErr: "not both"},
		{name: "first column", offset: -1, line: 1, column: 1, want: 0},
		{name: "second line", offset: -1, line: 2, column: 2, want: 12},
		{name: "columns count characters", offset: -1, line: 2, column: 7, want: 18},
		{name: "end of line", offset: -1, line: 2, column: 12, want: len(text) - 1},
		{name: "column past line", offset: -1, line: 1, column: 12, wantErr: "column 12"},
		{name: "empty last line", offset: -1, line: 3, column: 1, want: len(text)},
		{name: "line past end", offset: -1, line: 4, column: 1, wantErr: "line 4"},
		{name: "no position", offset: -1, wantErr: "no cursor position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cursorOffset(text, tt.offset, tt.line, tt.column)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExampleConfigParses(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, config.Parse([]byte(exampleConfig), &cfg))
	assert.Equal(t, "vendor/packages", cfg.PackagePath)
	assert.Equal(t, []string{"drafts/**", "**/*.generated.typ"}, cfg.Exclude)
	assert.EqualValues(t, config.DefaultMaxBytes, cfg.MaxBytes)
}
