package fs

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// SourceExts are the recognized translation-unit extensions.
var SourceExts = []string{".cc", ".cpp", ".cxx", ".c++"}

// HeaderExts are the recognized header extensions.
var HeaderExts = []string{".h", ".hpp", ".hh", ".h++", ".hxx"}

// ModuleArtifactSuffixes marks dependency-output tokens that name a compiled
// module artifact rather than a header, e.g. Clang's "std.c++-module".
var ModuleArtifactSuffixes = []string{".c++-module", ".pcm", ".gcm"}

// IsSource reports whether path has a recognized source extension.
func IsSource(p string) bool {
	return hasAnyExt(p, SourceExts)
}

// IsHeader reports whether path has a recognized header extension.
func IsHeader(p string) bool {
	return hasAnyExt(p, HeaderExts)
}

// IsModuleArtifact reports whether path names a compiled-module artifact,
// which DepScanner must discard from a dependency-rule's token list.
func IsModuleArtifact(p string) bool {
	return hasAnyExt(p, ModuleArtifactSuffixes)
}

func hasAnyExt(p string, exts []string) bool {
	e := filepath.Ext(p)
	for _, want := range exts {
		if e == want {
			return true
		}
	}
	return false
}

// ToSlash normalizes a filesystem path to forward slashes. All graph-visible
// paths must go through this at the filesystem boundary.
func ToSlash(p string) string {
	return filepath.ToSlash(p)
}

// ParentDirOrDot returns the forward-slash parent directory of p, or "." if p
// has no parent component.
func ParentDirOrDot(p string) string {
	p = ToSlash(p)
	dir := path.Dir(p)
	if dir == "" {
		return "."
	}
	return dir
}

// stem returns the filename without its extension.
func stem(p string) string {
	base := path.Base(ToSlash(p))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Stem is the exported form of stem, for callers outside this package that
// need a source's bare name (e.g. configure's entry discovery, which compares
// it against "main"/"lib").
func Stem(p string) string {
	return stem(p)
}

// relUnder returns p relative to base, forward-slash normalized, and true if
// p actually lies under base. base and p are both assumed to be absolute or
// both relative to the same root.
func relUnder(base, p string) (string, bool) {
	base = ToSlash(base)
	p = ToSlash(p)
	base = strings.TrimSuffix(base, "/")
	if p == base {
		return "", true
	}
	prefix := base + "/"
	if !strings.HasPrefix(p, prefix) {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}

// MapHeaderToObj maps a header's path to the object target that would result
// from compiling its owning translation unit.
//
// header may lie under <rootPath>/src/<rel>/..., in which case the returned
// target is "<relBuildOut>/<rel>/<stem>.o", where relBuildOut is buildOutPath
// made relative to outBasePath. If the header sits directly under src/, the
// middle <rel> component is omitted.
func MapHeaderToObj(rootPath, buildOutPath, outBasePath, header string) (string, bool) {
	srcRoot := path.Join(ToSlash(rootPath), "src")
	rel, ok := relUnder(srcRoot, header)
	if !ok {
		return "", false
	}
	relBuildOut, ok := relUnder(outBasePath, buildOutPath)
	if !ok {
		relBuildOut = ToSlash(buildOutPath)
	}
	dir := path.Dir(rel)
	name := stem(rel) + ".o"
	var target string
	if dir == "." {
		target = path.Join(relBuildOut, name)
	} else {
		target = path.Join(relBuildOut, dir, name)
	}
	return cleanNoDotDot(target), true
}

// ObjectPathForSource mirrors MapHeaderToObj but preserves the basename the
// dependency scanner's own output already assigned (depObjectTarget, e.g.
// "main.o") instead of recomputing <stem>.o from the source path.
func ObjectPathForSource(rootPath, buildOutPath, outBasePath, source, depObjectTarget string) string {
	srcRoot := path.Join(ToSlash(rootPath), "src")
	rel, ok := relUnder(srcRoot, source)
	relBuildOut, okB := relUnder(outBasePath, buildOutPath)
	if !okB {
		relBuildOut = ToSlash(buildOutPath)
	}
	name := path.Base(ToSlash(depObjectTarget))
	if !ok {
		return cleanNoDotDot(path.Join(relBuildOut, name))
	}
	dir := path.Dir(rel)
	if dir == "." {
		return cleanNoDotDot(path.Join(relBuildOut, name))
	}
	return cleanNoDotDot(path.Join(relBuildOut, dir, name))
}

// cleanNoDotDot path.Cleans p, which removes every ".." segment that has a
// preceding segment to cancel against. A leading ".." (a relative path that
// climbs above its starting directory) is kept as is and is not reported.
func cleanNoDotDot(p string) string {
	cleaned := path.Clean(p)
	return cleaned
}

// ListSourcesSorted recursively lists every recognized source file under
// srcDir, sorted by path. It descends into every directory under srcDir; a
// build output directory placed under srcDir is walked like any other.
func ListSourcesSorted(srcDir string) ([]string, error) {
	var sources []string
	err := Walk(srcDir, func(name string, isDir bool) error {
		if isDir {
			return nil
		}
		if IsSource(name) {
			sources = append(sources, ToSlash(name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	return sources, nil
}
