package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParentDirOrDot(t *testing.T) {
	assert.Equal(t, "objs", ParentDirOrDot("objs/main.o"))
	assert.Equal(t, ".", ParentDirOrDot("main.o"))
}

func TestIsSourceIsHeader(t *testing.T) {
	assert.True(t, IsSource("src/main.cc"))
	assert.True(t, IsSource("src/foo.cpp"))
	assert.False(t, IsSource("include/foo.hpp"))
	assert.True(t, IsHeader("include/foo.hpp"))
	assert.False(t, IsHeader("src/main.cc"))
}

func TestIsModuleArtifact(t *testing.T) {
	assert.True(t, IsModuleArtifact("std.c++-module"))
	assert.True(t, IsModuleArtifact("build/std.pcm"))
	assert.False(t, IsModuleArtifact("include/foo.hpp"))
}

func TestMapHeaderToObj_DirectlyUnderSrc(t *testing.T) {
	target, ok := MapHeaderToObj("/repo", "/repo/build-out", "/repo", "/repo/src/foo.hpp")
	assert.True(t, ok)
	assert.Equal(t, "build-out/foo.o", target)
}

func TestMapHeaderToObj_Nested(t *testing.T) {
	target, ok := MapHeaderToObj("/repo", "/repo/build-out", "/repo", "/repo/src/sub/foo.hpp")
	assert.True(t, ok)
	assert.Equal(t, "build-out/sub/foo.o", target)
}

func TestMapHeaderToObj_IncludeDirNotUnderSrc(t *testing.T) {
	_, ok := MapHeaderToObj("/repo", "/repo/build-out", "/repo", "/repo/include/foo.hpp")
	assert.False(t, ok)
}

func TestObjectPathForSource_PreservesDepBasename(t *testing.T) {
	target := ObjectPathForSource("/repo", "/repo/build-out", "/repo", "/repo/src/main.cc", "main.o")
	assert.Equal(t, "build-out/main.o", target)
}

func TestObjectPathForSource_NestedPreservesBasename(t *testing.T) {
	target := ObjectPathForSource("/repo", "/repo/build-out", "/repo", "/repo/src/sub/util.cc", "util.o")
	assert.Equal(t, "build-out/sub/util.o", target)
}

func TestListSourcesSorted(t *testing.T) {
	dir := t.TempDir()
	must(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	must(t, os.WriteFile(filepath.Join(dir, "main.cc"), nil, 0o644))
	must(t, os.WriteFile(filepath.Join(dir, "sub", "util.cc"), nil, 0o644))
	must(t, os.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0o644))

	sources, err := ListSourcesSorted(dir)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		filepath.ToSlash(filepath.Join(dir, "main.cc")),
		filepath.ToSlash(filepath.Join(dir, "sub", "util.cc")),
	}, sources)
}

func TestIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	must(t, os.MkdirAll(srcDir, 0o755))
	must(t, os.WriteFile(filepath.Join(srcDir, "main.cc"), nil, 0o644))
	manifest := filepath.Join(dir, "cabin.toml")
	must(t, os.WriteFile(manifest, nil, 0o644))

	outBase := filepath.Join(dir, "out")
	must(t, os.MkdirAll(outBase, 0o755))
	outFile := filepath.Join(outBase, "build.ninja")
	must(t, os.WriteFile(outFile, nil, 0o644))

	old := time.Now().Add(-time.Hour)
	must(t, os.Chtimes(outFile, old, old))

	assert.False(t, IsUpToDate(outBase, "build.ninja", srcDir, manifest))

	future := time.Now().Add(time.Hour)
	must(t, os.Chtimes(outFile, future, future))
	assert.True(t, IsUpToDate(outBase, "build.ninja", srcDir, manifest))
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
