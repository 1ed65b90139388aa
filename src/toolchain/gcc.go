package toolchain

import "github.com/cabinbuild/cabin/src/core"

// gccCompiler implements core.Compiler for the GCC family (gcc/g++, not clang).
type gccCompiler struct {
	cxx     string
	modules bool
}

func (c *gccCompiler) Cxx() string { return c.cxx }

func (c *gccCompiler) MakeMMCmd(opts core.CompilerOpts, source string, isTest bool) core.Command {
	args := buildFlags(opts)
	if isTest {
		args = append(args, "-DCABIN_TEST")
	}
	args = append(args, "-MM", source)
	return core.Command{Path: c.cxx, Args: args}
}

func (c *gccCompiler) MakePreprocessCmd(opts core.CompilerOpts, source string, defineTest bool) core.Command {
	args := buildFlags(opts)
	if defineTest {
		args = append(args, "-DCABIN_TEST")
	}
	args = append(args, "-E", source)
	return core.Command{Path: c.cxx, Args: args}
}

func (c *gccCompiler) SupportsModules() bool { return c.modules }
