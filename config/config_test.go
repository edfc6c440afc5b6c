package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		check   func(t *testing.T, cfg Config)
		wantErr string
	}{
		{
			name: "empty keeps defaults",
			doc:  "",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "all keys",
			doc: `
root = "docs"
package-path = "/opt/typst"
font-paths = ["fonts", "/usr/share/fonts"]
system-fonts = false
exclude = ["drafts/**"]
max-bytes = 1024
jobs = 4

[log]
level = "debug"
json = true
`,
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Config{
					Root:        "docs",
					PackagePath: "/opt/typst",
					FontPaths:   []string{"fonts", "/usr/share/fonts"},
					SystemFonts: false,
					Exclude:     []string{"drafts/**"},
					MaxBytes:    1024,
					Jobs:        4,
					Log:         Log{Level: "debug", JSON: true},
				}, cfg)
			},
		},
		{
			name: "partial log table",
			doc:  "[log]\njson = true\n",
			check: func(t *testing.T, cfg Config) {
				assert.Equal(t, Log{Level: "info", JSON: true}, cfg.Log)
				assert.EqualValues(t, DefaultMaxBytes, cfg.MaxBytes)
			},
		},
		{name: "bad level", doc: "[log]\nlevel = \"loud\"\n", wantErr: "unknown log level"},
		{name: "negative jobs", doc: "jobs = -1", wantErr: "jobs must not be negative"},
		{name: "syntax error", doc: "root = ", wantErr: "line 1"},
		{name: "wrong type", doc: "jobs = \"four\"", wantErr: "toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Parse([]byte(tt.doc), &cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Root)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("root = \"book\"\njobs = 2\n"), 0o644))
	cfg, err = Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "book"), cfg.Root)
	assert.Equal(t, 2, cfg.Jobs)

	_, err = Load(filepath.Join(dir, "missing.toml"), dir)
	assert.Error(t, err)
}
