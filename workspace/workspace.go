// Package workspace indexes the documents under a root directory, keeps the
// buffers open in an editor, and resolves imports between files and
// packages.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/arjunmahishi/scopeq/lang"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

// Options configures a Workspace.
type Options struct {
	// Root is the directory holding the project. Imports starting with "/"
	// resolve against it. Defaults to the current directory.
	Root string

	// PackagePath is searched for packages before the XDG data and cache
	// directories.
	PackagePath string

	// Exclude holds doublestar patterns of paths to skip while indexing.
	Exclude []string

	// MaxBytes skips files larger than this size.
	// If 0, no size limit is enforced.
	MaxBytes int64

	// Jobs is the number of parallel workers.
	// If 0, defaults to number of CPUs.
	Jobs int

	// Fonts is the font book documents complete font names from.
	Fonts *fonts.Book

	// Logger defaults to a no-op logger.
	Logger *zap.SugaredLogger
}

// Workspace holds parsed documents. It is safe for concurrent use.
type Workspace struct {
	opts    Options
	root    string
	scanner *Scanner
	logger  *zap.SugaredLogger

	docs     cmap.ConcurrentMap[string, *lang.Document]
	overlays cmap.ConcurrentMap[string, string]
	modules  cmap.ConcurrentMap[string, *value.Module]
}

// New creates a workspace. Nothing is read until Index or Document is
// called.
func New(opts Options) (*Workspace, error) {
	if opts.Root == "" {
		opts.Root = "."
	}
	if opts.Jobs == 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root")
	}

	var exts []string
	for _, name := range lang.List() {
		exts = append(exts, lang.Get(name).Extensions()...)
	}
	sc, err := NewScanner(ScannerConfig{
		Root:       root,
		Extensions: exts,
		Exclude:    opts.Exclude,
		MaxBytes:   opts.MaxBytes,
	})
	if err != nil {
		return nil, err
	}

	return &Workspace{
		opts:     opts,
		root:     root,
		scanner:  sc,
		logger:   opts.Logger,
		docs:     cmap.New[*lang.Document](),
		overlays: cmap.New[string](),
		modules:  cmap.New[*value.Module](),
	}, nil
}

// Root returns the absolute workspace root.
func (w *Workspace) Root() string { return w.root }

// Fonts returns the workspace's font book.
func (w *Workspace) Fonts() *fonts.Book { return w.opts.Fonts }

// Index parses every supported file under the root and returns how many
// were indexed. Files that fail to parse are logged and skipped.
func (w *Workspace) Index(ctx context.Context) (int, error) {
	files, err := w.scanner.Collect()
	if err != nil {
		return 0, err
	}

	type parsed struct {
		path string
		doc  *lang.Document
	}
	results := runWorkers(files, w.opts.Jobs, func(job FileJob) (parsed, bool) {
		doc, err := w.load(ctx, job.AbsPath)
		if err != nil {
			w.logger.Warnw("failed to index file", "path", job.DisplayPath, "error", err)
			return parsed{}, false
		}
		return parsed{path: job.AbsPath, doc: doc}, true
	})
	for _, r := range results {
		w.docs.Set(r.path, r.doc)
	}
	w.modules.Clear()
	w.logger.Debugw("indexed workspace", "root", w.root, "files", len(results))
	return len(results), nil
}

// Document returns the parsed document at path, preferring an open buffer
// over the file on disk.
func (w *Workspace) Document(ctx context.Context, path string) (*lang.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "resolve path")
	}
	if doc, ok := w.docs.Get(abs); ok {
		return doc, nil
	}
	doc, err := w.load(ctx, abs)
	if err != nil {
		return nil, err
	}
	w.docs.Set(abs, doc)
	return doc, nil
}

// Open overlays the file at path with an editor buffer.
func (w *Workspace) Open(path, text string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.overlays.Set(abs, text)
	w.Invalidate(abs)
}

// Close drops the editor buffer of path, so the file on disk is used again.
func (w *Workspace) Close(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.overlays.Remove(abs)
	w.Invalidate(abs)
}

// Invalidate forgets the parsed document at path. Every cached module is
// dropped too, since any of them may import the file.
func (w *Workspace) Invalidate(path string) {
	w.docs.Remove(path)
	w.modules.Clear()
}

// Indexed returns the number of parsed documents held.
func (w *Workspace) Indexed() int { return w.docs.Count() }

// load reads and parses the file at abs.
func (w *Workspace) load(ctx context.Context, abs string) (*lang.Document, error) {
	ext := strings.ToLower(filepath.Ext(abs))
	l := lang.ByExtension(ext)
	if l == nil {
		return nil, errors.WithHint(
			errors.Newf("no language for %s", filepath.Base(abs)),
			"supported languages: "+strings.Join(lang.List(), ", "),
		)
	}

	text, ok := w.overlays.Get(abs)
	if !ok {
		data, err := os.ReadFile(abs)
		if err != nil {
			return nil, errors.Wrap(err, "read file")
		}
		text = string(data)
	}
	doc, err := l.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", filepath.Base(abs))
	}
	return doc, nil
}
