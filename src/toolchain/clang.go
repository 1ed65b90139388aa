package toolchain

import "github.com/cabinbuild/cabin/src/core"

// clangCompiler implements core.Compiler for the Clang family.
type clangCompiler struct {
	cxx     string
	modules bool
}

func (c *clangCompiler) Cxx() string { return c.cxx }

func (c *clangCompiler) MakeMMCmd(opts core.CompilerOpts, source string, isTest bool) core.Command {
	args := buildFlags(opts)
	if isTest {
		args = append(args, "-DCABIN_TEST")
	}
	args = append(args, "-MM", source)
	return core.Command{Path: c.cxx, Args: args}
}

func (c *clangCompiler) MakePreprocessCmd(opts core.CompilerOpts, source string, defineTest bool) core.Command {
	args := buildFlags(opts)
	if defineTest {
		args = append(args, "-DCABIN_TEST")
	}
	args = append(args, "-E", source)
	return core.Command{Path: c.cxx, Args: args}
}

func (c *clangCompiler) SupportsModules() bool { return c.modules }
