package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/adrg/xdg"
	"github.com/arjunmahishi/scopeq/analysis"
	"github.com/arjunmahishi/scopeq/complete"
	"github.com/arjunmahishi/scopeq/fonts"
	"github.com/arjunmahishi/scopeq/lang"
	"github.com/arjunmahishi/scopeq/library"
	"github.com/arjunmahishi/scopeq/value"
	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// ErrCyclicImport is returned when a file imports itself, directly or
// through other files.
var ErrCyclicImport = errors.New("cyclic import")

// manifestName is the package manifest file.
const manifestName = "typst.toml"

// World returns the environment to complete doc in. Path is where the
// document lives and anchors its relative imports.
func (w *Workspace) World(doc *lang.Document, path string) complete.World {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &fileWorld{ws: w, doc: doc, path: abs, stack: []string{abs}}
}

// fileWorld is the world of one document. Stack holds the files whose
// imports are being resolved, outermost first.
type fileWorld struct {
	ws    *Workspace
	doc   *lang.Document
	path  string
	stack []string
}

func (fw *fileWorld) Library() *library.Library { return fw.doc.Library }

func (fw *fileWorld) Fonts() []fonts.Family { return fw.ws.opts.Fonts.Families() }

func (fw *fileWorld) ResolveImport(path string) (*value.Module, error) {
	if fw.doc.Imports != nil {
		return fw.doc.Imports.ResolveImport(path)
	}
	if strings.HasPrefix(path, "@") {
		spec, err := ParsePackageSpec(path)
		if err != nil {
			return nil, err
		}
		return fw.ws.packageModule(spec, fw.stack)
	}

	var abs string
	if strings.HasPrefix(path, "/") {
		abs = filepath.Join(fw.ws.root, filepath.FromSlash(path))
	} else {
		abs = filepath.Join(filepath.Dir(fw.path), filepath.FromSlash(path))
	}
	name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
	return fw.ws.fileModule(abs, name, fw.stack)
}

// fileModule returns the module of the file at abs, building it on a cache
// miss.
func (w *Workspace) fileModule(abs, name string, stack []string) (*value.Module, error) {
	for _, p := range stack {
		if p == abs {
			return nil, errors.Wrapf(ErrCyclicImport, "%s", w.display(abs))
		}
	}
	key := name + "\x00" + abs
	if mod, ok := w.modules.Get(key); ok {
		return mod, nil
	}

	doc, err := w.Document(context.Background(), abs)
	if err != nil {
		return nil, err
	}
	child := &fileWorld{ws: w, doc: doc, path: abs, stack: append(stack[:len(stack):len(stack)], abs)}
	mod := analysis.ModuleOf(child, name, doc.Source)
	w.modules.Set(key, mod)
	return mod, nil
}

func (w *Workspace) display(abs string) string {
	if rel, err := filepath.Rel(w.root, abs); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return abs
}

// PackageSpec names a package: `@namespace/name:version`. Version is nil
// when the newest installed version is wanted.
type PackageSpec struct {
	Namespace string
	Name      string
	Version   *semver.Version
}

func (s PackageSpec) String() string {
	out := "@" + s.Namespace + "/" + s.Name
	if s.Version != nil {
		out += ":" + s.Version.String()
	}
	return out
}

// ParsePackageSpec parses `@namespace/name` with an optional `:version`.
func ParsePackageSpec(spec string) (PackageSpec, error) {
	rest, ok := strings.CutPrefix(spec, "@")
	if !ok {
		return PackageSpec{}, errors.Newf("package %q must start with @", spec)
	}
	ns, rest, ok := strings.Cut(rest, "/")
	if !ok || ns == "" {
		return PackageSpec{}, errors.Newf("package %q is missing a namespace", spec)
	}
	name, version, hasVersion := strings.Cut(rest, ":")
	if name == "" {
		return PackageSpec{}, errors.Newf("package %q is missing a name", spec)
	}

	out := PackageSpec{Namespace: ns, Name: name}
	if hasVersion {
		v, err := semver.StrictNewVersion(version)
		if err != nil {
			return PackageSpec{}, errors.WithHint(
				errors.Wrapf(err, "package %q has an invalid version", spec),
				"versions look like 1.2.3",
			)
		}
		out.Version = v
	}
	return out, nil
}

// PackageDirs returns the directories searched for packages, in order.
func (w *Workspace) PackageDirs() []string {
	var dirs []string
	if w.opts.PackagePath != "" {
		dirs = append(dirs, w.opts.PackagePath)
	}
	return append(dirs,
		filepath.Join(xdg.DataHome, "typst", "packages"),
		filepath.Join(xdg.CacheHome, "typst", "packages"),
	)
}

type manifest struct {
	Package struct {
		Name       string `toml:"name"`
		Version    string `toml:"version"`
		Entrypoint string `toml:"entrypoint"`
	} `toml:"package"`
}

// packageModule resolves a package to the module of its entrypoint.
func (w *Workspace) packageModule(spec PackageSpec, stack []string) (*value.Module, error) {
	dir, err := w.findPackage(spec)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if err != nil {
		return nil, errors.Wrapf(err, "read manifest of %s", spec)
	}
	var m manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "parse manifest of %s", spec)
	}
	if m.Package.Entrypoint == "" {
		return nil, errors.Newf("manifest of %s has no entrypoint", spec)
	}

	name := m.Package.Name
	if name == "" {
		name = spec.Name
	}
	return w.fileModule(filepath.Join(dir, filepath.FromSlash(m.Package.Entrypoint)), name, stack)
}

// findPackage returns the directory of the package, picking the newest
// installed version when spec has none.
func (w *Workspace) findPackage(spec PackageSpec) (string, error) {
	for _, root := range w.PackageDirs() {
		base := filepath.Join(root, spec.Namespace, spec.Name)
		if spec.Version != nil {
			dir := filepath.Join(base, spec.Version.String())
			if _, err := os.Stat(filepath.Join(dir, manifestName)); err == nil {
				return dir, nil
			}
			continue
		}

		entries, err := os.ReadDir(base)
		if err != nil {
			continue
		}
		var versions semver.Collection
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if v, err := semver.StrictNewVersion(e.Name()); err == nil {
				versions = append(versions, v)
			}
		}
		if len(versions) == 0 {
			continue
		}
		sort.Sort(versions)
		return filepath.Join(base, versions[len(versions)-1].Original()), nil
	}
	return "", errors.WithHint(
		errors.Newf("package %s not found", spec),
		"install the package or set package-path in scopeq.toml",
	)
}
