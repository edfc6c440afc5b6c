package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/arjunmahishi/scopeq/complete"
	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFiles creates files under dir from slash-separated relative paths.
func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func newWorkspace(t *testing.T, opts Options) *Workspace {
	t.Helper()
	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	ws, err := New(opts)
	require.NoError(t, err)
	return ws
}

// localsAt lists the bindings visible at the "|" marker of the file at rel.
func localsAt(t *testing.T, ws *Workspace, rel, text string) []complete.Binding {
	t.Helper()
	cursor := strings.Index(text, "|")
	require.GreaterOrEqual(t, cursor, 0)
	path := filepath.Join(ws.Root(), filepath.FromSlash(rel))
	ws.Open(path, text[:cursor]+text[cursor+1:])

	doc, err := ws.Document(context.Background(), path)
	require.NoError(t, err)
	return complete.Locals(ws.World(doc, path), doc.Source, cursor, complete.Options{})
}

func TestScanner(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.typ":             "#let a = 1",
		"chapters/intro.typ":   "= Intro",
		"node_modules/dep.typ": "",
		"drafts/old/notes.typ": "",
		"notes.txt":            "",
		"tools/gen.go":         "package tools",
		"big.typ":              strings.Repeat("x", 200),
		"chapters/UPPER.TYP":   "",
	})

	sc, err := NewScanner(ScannerConfig{
		Root:       root,
		Extensions: []string{".typ", ".go"},
		Exclude:    []string{"drafts/**"},
		MaxBytes:   100,
	})
	require.NoError(t, err)

	files, err := sc.Collect()
	require.NoError(t, err)
	var got []string
	for _, f := range files {
		got = append(got, f.DisplayPath)
		assert.True(t, filepath.IsAbs(f.AbsPath))
	}
	sort.Strings(got)
	assert.Equal(t, []string{"chapters/UPPER.TYP", "chapters/intro.typ", "main.typ", "tools/gen.go"}, got)

	_, err = NewScanner(ScannerConfig{Exclude: []string{"[unclosed"}})
	assert.Error(t, err)
}

// TestRunWorkers tests the generic worker pool for concurrency correctness.
// Run with -race flag to detect race conditions: go test -race
func TestRunWorkers(t *testing.T) {
	tests := []struct {
		name      string
		fileCount int
		jobs      int
	}{
		{"single_file_single_worker", 1, 1},
		{"multiple_files_single_worker", 5, 1},
		{"multiple_files_multiple_workers", 10, 4},
		{"more_workers_than_files", 3, 10},
		{"many_files_high_concurrency", 50, 16},
		{"zero_jobs_defaults_to_one", 5, 0},
		{"empty_files", 0, 4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var files []FileJob
			var expected []string
			for i := range tc.fileCount {
				name := fmt.Sprintf("file_%d.typ", i)
				files = append(files, FileJob{AbsPath: "/" + name, DisplayPath: name})
				if i%2 == 0 {
					expected = append(expected, name)
				}
			}

			// Odd files are rejected by the process function.
			results := runWorkers(files, tc.jobs, func(job FileJob) (string, bool) {
				var n int
				fmt.Sscanf(job.DisplayPath, "file_%d.typ", &n)
				return job.DisplayPath, n%2 == 0
			})

			sort.Strings(results)
			sort.Strings(expected)
			require.Equal(t, expected, results)
		})
	}
}

func TestIndexAndOverlays(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.typ":   "#let a = 1",
		"lib/x.typ":  "#let x = 2",
		"cmd/run.go": "package main\n\nfunc main() {}\n",
		"readme.md":  "# readme",
	})
	ws := newWorkspace(t, Options{Root: root, Jobs: 2})

	n, err := ws.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, ws.Indexed())

	path := filepath.Join(root, "main.typ")
	doc, err := ws.Document(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "#let a = 1", doc.Source.Text())

	ws.Open(path, "#let b = 2")
	doc, err = ws.Document(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "#let b = 2", doc.Source.Text())

	ws.Close(path)
	doc, err = ws.Document(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "#let a = 1", doc.Source.Text())

	_, err = ws.Document(context.Background(), filepath.Join(root, "readme.md"))
	assert.Error(t, err)
	_, err = ws.Document(context.Background(), filepath.Join(root, "missing.typ"))
	assert.Error(t, err)
}

func TestFileImports(t *testing.T) {
	ws := newWorkspace(t, Options{})
	writeFiles(t, ws.Root(), map[string]string{
		"lib/util.typ":    "#let helper(x) = x\n#let version = \"1.0\"",
		"chapters/a.typ":  "#let fromA = 1",
		"chapters/up.typ": "#let up = 1",
	})

	got := localsAt(t, ws, "chapters/main.typ",
		"#import \"../lib/util.typ\": helper\n#import \"/chapters/a.typ\" as a\n#import \"up.typ\"\n#import \"nope.typ\": *\n|")
	assert.Equal(t, []complete.Binding{
		{Name: "a", Kind: complete.Module},
		{Name: "helper", Kind: complete.Function},
		{Name: "up", Kind: complete.Module},
		{Name: "version", Kind: complete.Constant},
	}, got)
}

func TestCyclicImport(t *testing.T) {
	ws := newWorkspace(t, Options{})
	writeFiles(t, ws.Root(), map[string]string{
		"a.typ": "#import \"b.typ\": b\n#let a = 1",
		"b.typ": "#import \"a.typ\": a\n#let b = a",
	})

	path := filepath.Join(ws.Root(), "a.typ")
	doc, err := ws.Document(context.Background(), path)
	require.NoError(t, err)
	world := ws.World(doc, path)

	_, err = world.ResolveImport("a.typ")
	assert.True(t, errors.Is(err, ErrCyclicImport), "got %v", err)

	mod, err := world.ResolveImport("b.typ")
	require.NoError(t, err)
	b, ok := mod.Scope.Get("b")
	require.True(t, ok)
	assert.Equal(t, "b", b.Repr())
}

func TestParsePackageSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    string
		wantErr bool
	}{
		{spec: "@preview/cetz:0.2.2", want: "@preview/cetz:0.2.2"},
		{spec: "@local/notes", want: "@local/notes"},
		{spec: "@preview/cetz:latest", wantErr: true},
		{spec: "@preview/cetz:0.2", wantErr: true},
		{spec: "@preview", wantErr: true},
		{spec: "@/cetz", wantErr: true},
		{spec: "preview/cetz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			spec, err := ParsePackageSpec(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, spec.String())
		})
	}
}

func TestPackageImports(t *testing.T) {
	pkgs := t.TempDir()
	manifestFor := func(version string) string {
		return fmt.Sprintf("[package]\nname = \"shapes\"\nversion = %q\nentrypoint = \"src/lib.typ\"\n", version)
	}
	writeFiles(t, pkgs, map[string]string{
		"preview/shapes/0.1.0/typst.toml":   manifestFor("0.1.0"),
		"preview/shapes/0.1.0/src/lib.typ":  "#let circle(r) = r",
		"preview/shapes/0.10.0/typst.toml":  manifestFor("0.10.0"),
		"preview/shapes/0.10.0/src/lib.typ": "#let circle(r) = r\n#let square(a) = a",
		"preview/shapes/0.9.0/typst.toml":   manifestFor("0.9.0"),
		"preview/broken/1.0.0/typst.toml":   "[package]\nname = \"broken\"\n",
	})
	ws := newWorkspace(t, Options{PackagePath: pkgs})
	assert.Equal(t, pkgs, ws.PackageDirs()[0])

	got := localsAt(t, ws, "main.typ", "#import \"@preview/shapes\": *\n|")
	assert.Equal(t, []complete.Binding{
		{Name: "circle", Kind: complete.Function},
		{Name: "square", Kind: complete.Function},
	}, got)

	got = localsAt(t, ws, "main.typ", "#import \"@preview/shapes:0.1.0\"\n|")
	assert.Equal(t, []complete.Binding{{Name: "shapes", Kind: complete.Module}}, got)

	doc, err := ws.Document(context.Background(), filepath.Join(ws.Root(), "main.typ"))
	require.NoError(t, err)
	world := ws.World(doc, filepath.Join(ws.Root(), "main.typ"))

	_, err = world.ResolveImport("@preview/shapes:2.0.0")
	assert.ErrorContains(t, err, "not found")
	_, err = world.ResolveImport("@preview/broken")
	assert.ErrorContains(t, err, "no entrypoint")
	_, err = world.ResolveImport("@preview/shapes:x")
	assert.Error(t, err)
}

func TestGoDocumentWorld(t *testing.T) {
	book := fonts.NewBook(fonts.Family{Name: "Go Mono", Variants: []fonts.Variant{{}}})
	ws := newWorkspace(t, Options{Fonts: book})

	got := localsAt(t, ws, "main.go", "package main\n\nimport \"net/http\"\n\nfunc main() {\n\t|\n}\n")
	assert.Equal(t, []complete.Binding{{Name: "http", Kind: complete.Module}}, got)

	doc, err := ws.Document(context.Background(), filepath.Join(ws.Root(), "main.go"))
	require.NoError(t, err)
	families := ws.World(doc, "main.go").Fonts()
	require.Len(t, families, 1)
	assert.Equal(t, "Go Mono", families[0].Name)
}

func TestWatch(t *testing.T) {
	ws := newWorkspace(t, Options{})
	path := filepath.Join(ws.Root(), "main.typ")
	writeFiles(t, ws.Root(), map[string]string{"main.typ": "#let a = 1"})
	_, err := ws.Document(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan []string, 8)
	done := make(chan error, 1)
	go func() {
		done <- ws.Watch(ctx, 10*time.Millisecond, func(paths []string) { changed <- paths })
	}()

	// Give the watcher time to register the root.
	require.Eventually(t, func() bool {
		writeFiles(t, ws.Root(), map[string]string{"main.typ": "#let b = 2"})
		select {
		case paths := <-changed:
			return slices.Contains(paths, path)
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	doc, err := ws.Document(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "#let b = 2", doc.Source.Text())

	cancel()
	require.NoError(t, <-done)
}
