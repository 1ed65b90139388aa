package emit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cabinbuild/cabin/src/core"
)

func sampleGraph() *core.Graph {
	graph := core.NewGraph()
	builder := core.NewGraphBuilder(graph)
	builder.RegisterCompileUnit("objs/main.o", "src/main.cc", map[string]struct{}{"src/foo.hpp": {}}, false)
	builder.RegisterCompileUnit("objs/foo.o", "src/foo.cc", nil, false)
	builder.AddEdge(core.Edge{Outputs: []string{"myapp"}, Rule: core.RuleCxxLink, Inputs: []string{"objs/foo.o", "objs/main.o"}})
	builder.AddDefaultTarget("myapp")
	return graph
}

func TestEmitAllWritesFourFiles(t *testing.T) {
	out := t.TempDir()
	e := New(out)
	opts := core.CompilerOpts{
		CFlags:  core.CFlags{Others: []string{"-O2"}, Macros: []string{"FOO"}, IncludeDirs: []string{"include"}},
		LdFlags: core.LdFlags{Others: []string{"-pthread"}, LibDirs: []string{"lib"}, Libs: []string{"m"}},
	}
	require.NoError(t, e.EmitAll(opts, "g++", sampleGraph()))

	for _, name := range []string{"build.ninja", "config.ninja", "rules.ninja", "targets.ninja"} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	build, err := os.ReadFile(filepath.Join(out, "build.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(build), "ninja_required_version = 1.11")
	assert.Contains(t, string(build), "include config.ninja")
	assert.Contains(t, string(build), "default myapp\n")

	config, err := os.ReadFile(filepath.Join(out, "config.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(config), "CXX = g++")
	assert.Contains(t, string(config), "DEFINES = -DFOO")
	assert.Contains(t, string(config), "INCLUDES = -Iinclude")
	assert.Contains(t, string(config), "LDFLAGS = -pthread -Llib")
	assert.Contains(t, string(config), "LIBS = -lm")

	rules, err := os.ReadFile(filepath.Join(out, "rules.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(rules), "command = $CXX $DEFINES $INCLUDES $CXXFLAGS $extra_flags -c $in -o $out")
	assert.Contains(t, string(rules), "command = ar rcs $out $in")

	targets, err := os.ReadFile(filepath.Join(out, "targets.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(targets), "build objs/main.o: cxx_compile src/main.cc | src/foo.hpp")
	assert.Contains(t, string(targets), "build myapp: cxx_link objs/foo.o objs/main.o")
	assert.Contains(t, string(targets), "build all: phony myapp")
}

func TestEmitAllEmptyDefaultsOmitsTestsLine(t *testing.T) {
	out := t.TempDir()
	graph := core.NewGraph()
	require.NoError(t, New(out).EmitAll(core.CompilerOpts{}, "g++", graph))
	targets, err := os.ReadFile(filepath.Join(out, "targets.ninja"))
	require.NoError(t, err)
	assert.Contains(t, string(targets), "build all: phony\n")
	assert.NotContains(t, string(targets), "build tests:")

	build, err := os.ReadFile(filepath.Join(out, "build.ninja"))
	require.NoError(t, err)
	assert.NotContains(t, string(build), "default", "default line must be omitted when there are no default targets")
}
