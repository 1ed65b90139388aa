package depscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleBasic(t *testing.T) {
	target, deps, err := ParseRule("main.o: src/main.cc include/foo.hpp include/bar.hpp \\\n include/baz.hh\n")
	require.NoError(t, err)
	assert.Equal(t, "main.o", target)
	assert.Contains(t, deps, "include/foo.hpp")
	assert.Contains(t, deps, "include/bar.hpp")
	assert.Contains(t, deps, "include/baz.hh")
	assert.NotContains(t, deps, "src/main.cc")
	assert.NotContains(t, deps, "\\")
	assert.Len(t, deps, 3, "the line-continuation backslash must not itself become a dep")
}

func TestParseRuleDiscardsModuleArtifacts(t *testing.T) {
	target, deps, err := ParseRule("util.o: src/util.cc include/util.hpp std.c++-module\n")
	require.NoError(t, err)
	assert.Equal(t, "util.o", target)
	assert.Contains(t, deps, "include/util.hpp")
	assert.NotContains(t, deps, "std.c++-module")
}

func TestParseRuleNoColon(t *testing.T) {
	_, _, err := ParseRule("this has no colon\n")
	assert.Error(t, err)
}

func TestParseRuleSingleLineNoDeps(t *testing.T) {
	target, deps, err := ParseRule("foo.o: src/foo.cc\n")
	require.NoError(t, err)
	assert.Equal(t, "foo.o", target)
	assert.Empty(t, deps)
}
