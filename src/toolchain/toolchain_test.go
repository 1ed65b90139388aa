package toolchain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cabinbuild/cabin/src/core"
)

func TestParseGCCMajor(t *testing.T) {
	assert.Equal(t, 14, parseGCCMajor("g++ (GCC) 14.1.0\nCopyright (C) 2024 Free Software Foundation, Inc."))
}

func TestParseClangMajor(t *testing.T) {
	assert.Equal(t, 17, parseClangMajor("Ubuntu clang version 17.0.6\nTarget: x86_64-pc-linux-gnu"))
}

func TestFirstVersionMajorNoDigits(t *testing.T) {
	assert.Equal(t, 0, firstVersionMajor("no version here"))
}

func TestIsClangIsGCC(t *testing.T) {
	assert.True(t, isClang("clang++", "clang version 17.0.0"))
	assert.False(t, isGCC("clang++", "clang version 17.0.0"))
	assert.True(t, isGCC("g++", "g++ (GCC) 14.0.0"))
	assert.False(t, isClang("g++", "g++ (GCC) 14.0.0"))
}

func TestGCCCompilerMakeMMCmd(t *testing.T) {
	c := &gccCompiler{cxx: "g++", modules: true}
	opts := core.CompilerOpts{
		CFlags: core.CFlags{Others: []string{"-O2"}, Macros: []string{"FOO"}, IncludeDirs: []string{"include"}},
	}
	cmd := c.MakeMMCmd(opts, "src/main.cc", true)
	assert.Equal(t, "g++", cmd.Path)
	assert.Equal(t, []string{"-O2", "-DFOO", "-Iinclude", "-DCABIN_TEST", "-MM", "src/main.cc"}, cmd.Args)
	assert.True(t, c.SupportsModules())
}

func TestClangCompilerMakePreprocessCmd(t *testing.T) {
	c := &clangCompiler{cxx: "clang++", modules: false}
	cmd := c.MakePreprocessCmd(core.CompilerOpts{}, "src/util.cc", true)
	assert.Equal(t, "clang++", cmd.Path)
	assert.Equal(t, []string{"-DCABIN_TEST", "-E", "src/util.cc"}, cmd.Args)
	assert.False(t, c.SupportsModules())
}
