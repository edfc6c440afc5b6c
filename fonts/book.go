// Package fonts discovers font families that documents can refer to by name.
package fonts

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
)

// Variant is one face of a family.
type Variant struct {
	// Style is the subfamily name, e.g. "Bold Italic".
	Style string
	Path  string
	// Index is the face index inside a collection file.
	Index int
}

// Family groups the variants sharing a family name.
type Family struct {
	Name     string
	Variants []Variant
}

// Book is a set of families in natural name order.
type Book struct {
	families []Family
}

// NewBook builds a book from families, merging duplicates case-insensitively.
func NewBook(families ...Family) *Book {
	merged := make(map[string]int)
	var out []Family
	for _, f := range families {
		key := strings.ToLower(f.Name)
		if i, ok := merged[key]; ok {
			out[i].Variants = append(out[i].Variants, f.Variants...)
			continue
		}
		merged[key] = len(out)
		out = append(out, Family{Name: f.Name, Variants: append([]Variant(nil), f.Variants...)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return natural.Less(strings.ToLower(out[i].Name), strings.ToLower(out[j].Name))
	})
	return &Book{families: out}
}

// Families returns the families in the book.
func (b *Book) Families() []Family {
	if b == nil {
		return nil
	}
	return b.families
}

// Dirs returns the directories to scan: the configured paths followed by the
// system font directories when system is set.
func Dirs(paths []string, system bool) []string {
	dirs := append([]string(nil), paths...)
	if system {
		dirs = append(dirs, xdg.FontDirs...)
	}
	return dirs
}

var fontExts = map[string]bool{".ttf": true, ".otf": true, ".ttc": true, ".otc": true}

// Scan reads every font file below dirs. Unreadable fonts are logged and
// skipped; missing directories are ignored.
func Scan(dirs []string, logger *zap.SugaredLogger) (*Book, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	var families []Family
	for _, dir := range dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && errors.Is(err, fs.ErrNotExist) {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() || !fontExts[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			found, err := readFile(path)
			if err != nil {
				logger.Debugw("skipping font", "path", path, "error", err)
				return nil
			}
			families = append(families, found...)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scanning fonts in %s", dir)
		}
	}
	return NewBook(families...), nil
}

func readFile(path string) ([]Family, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	coll, err := sfnt.ParseCollection(data)
	if err != nil {
		return nil, errors.Wrap(err, "parsing font")
	}
	var buf sfnt.Buffer
	out := make([]Family, 0, coll.NumFonts())
	for i := 0; i < coll.NumFonts(); i++ {
		f, err := coll.Font(i)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", i)
		}
		name := faceName(f, &buf, sfnt.NameIDTypographicFamily, sfnt.NameIDFamily)
		if name == "" {
			continue
		}
		style := faceName(f, &buf, sfnt.NameIDTypographicSubfamily, sfnt.NameIDSubfamily)
		out = append(out, Family{
			Name:     name,
			Variants: []Variant{{Style: style, Path: path, Index: i}},
		})
	}
	return out, nil
}

// faceName returns the first of the given name table entries that is set.
func faceName(f *sfnt.Font, buf *sfnt.Buffer, ids ...sfnt.NameID) string {
	for _, id := range ids {
		if name, err := f.Name(buf, id); err == nil && name != "" {
			return name
		}
	}
	return ""
}
