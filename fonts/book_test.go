package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewBookMergesAndSorts(t *testing.T) {
	book := NewBook(
		Family{Name: "Noto Sans 10", Variants: []Variant{{Style: "Regular"}}},
		Family{Name: "Noto Sans 2", Variants: []Variant{{Style: "Regular"}}},
		Family{Name: "noto sans 2", Variants: []Variant{{Style: "Bold"}}},
		Family{Name: "DejaVu Serif"},
	)
	var names []string
	for _, f := range book.Families() {
		names = append(names, f.Name)
	}
	require.Equal(t, []string{"DejaVu Serif", "Noto Sans 2", "Noto Sans 10"}, names)
	require.Len(t, book.Families()[1].Variants, 2)

	var empty *Book
	require.Empty(t, empty.Families())
}

func TestScanSkipsBrokenFonts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.ttf"), []byte("not a font"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	core, logs := observer.New(zap.DebugLevel)
	book, err := Scan([]string{dir, filepath.Join(dir, "missing")}, zap.New(core).Sugar())
	require.NoError(t, err)
	require.Empty(t, book.Families())

	entries := logs.FilterMessage("skipping font").All()
	require.Len(t, entries, 1)
	require.Equal(t, filepath.Join(dir, "broken.ttf"), entries[0].ContextMap()["path"])
}

func TestDirs(t *testing.T) {
	require.Equal(t, []string{"/fonts"}, Dirs([]string{"/fonts"}, false))
	require.GreaterOrEqual(t, len(Dirs([]string{"/fonts"}, true)), 1)
}
