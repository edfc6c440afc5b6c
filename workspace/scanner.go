package workspace

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
)

// DefaultIgnoreDirs returns the default list of directories to ignore.
func DefaultIgnoreDirs() map[string]struct{} {
	return map[string]struct{}{
		".git":         {},
		".hg":          {},
		".svn":         {},
		".jj":          {},
		"node_modules": {},
		"vendor":       {},
		"dist":         {},
		"build":        {},
		"target":       {},
		".venv":        {},
		".cache":       {},
	}
}

// FileJob is a file to be indexed.
type FileJob struct {
	AbsPath     string
	DisplayPath string
}

// ScannerConfig holds scanner configuration.
type ScannerConfig struct {
	Root string
	// Extensions lists the file extensions to collect, e.g. ".typ".
	Extensions []string
	IgnoreDirs map[string]struct{}
	// Exclude holds doublestar patterns matched against slash-separated
	// paths relative to Root.
	Exclude  []string
	MaxBytes int64
}

// Scanner discovers files for indexing.
type Scanner struct {
	cfg ScannerConfig
}

// NewScanner creates a new Scanner with the given configuration.
func NewScanner(cfg ScannerConfig) (*Scanner, error) {
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = DefaultIgnoreDirs()
	}
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, errors.Newf("invalid exclude pattern %q", pattern)
		}
	}
	return &Scanner{cfg: cfg}, nil
}

// Collect finds all matching files.
func (s *Scanner) Collect() ([]FileJob, error) {
	absRoot, err := filepath.Abs(s.cfg.Root)
	if err != nil {
		return nil, errors.Wrap(err, "resolve root")
	}

	var jobs []FileJob
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			if s.shouldIgnoreDir(d.Name()) || s.excluded(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.Supports(d.Name()) || s.excluded(rel) {
			return nil
		}

		if s.cfg.MaxBytes > 0 {
			info, err := d.Info()
			if err != nil {
				// Skip files we can't stat
				return nil
			}
			if info.Size() > s.cfg.MaxBytes {
				return nil
			}
		}

		jobs = append(jobs, FileJob{
			AbsPath:     path,
			DisplayPath: rel,
		})
		return nil
	})

	if err != nil {
		return nil, errors.Wrapf(err, "scan %s", absRoot)
	}

	return jobs, nil
}

// IgnoresDir reports whether directories with this name are skipped.
func (s *Scanner) IgnoresDir(name string) bool {
	return s.shouldIgnoreDir(name)
}

func (s *Scanner) shouldIgnoreDir(name string) bool {
	_, ok := s.cfg.IgnoreDirs[name]
	return ok
}

func (s *Scanner) excluded(rel string) bool {
	for _, pattern := range s.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Supports reports whether the file name has one of the scanned extensions.
func (s *Scanner) Supports(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return false
	}
	for _, e := range s.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
