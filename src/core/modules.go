package core

import "strings"

// stdModuleName is the phony alias every compile unit registered after
// modules are enabled takes as an order-only input (§4.7).
const stdModuleName = "std-module"

// clangStdModuleSource is the open question flagged in §9: the location of
// Clang's standard-library module interface is hardcoded here, matching the
// original tool's behavior, rather than sourced from an environment variable
// or manifest setting.
const clangStdModuleSource = "/usr/share/libc++/v1/std.cppm"

// ModuleInfo describes the module-support edges EnableModules added, for
// ConfigureBuild's link-edge construction (§4.6 step 7).
type ModuleInfo struct {
	Enabled         bool
	IsClangFamily   bool
	StdModuleName   string
	StdArtifactPath string
}

// EnableModules wires the compiler-family-specific edges that precompile the
// standard-library module (§4.7), mutating opts in place for the Clang
// family's extra flags. It fails with UnsupportedCompilerError if compiler
// doesn't report module support.
func EnableModules(builder *GraphBuilder, opts *CompilerOpts, buildOutPath string, compiler Compiler) (ModuleInfo, error) {
	if !compiler.SupportsModules() {
		return ModuleInfo{}, &UnsupportedCompilerError{Cxx: compiler.Cxx()}
	}
	cxx := compiler.Cxx()
	switch {
	case isClangFamily(cxx):
		return enableClangModules(builder, opts, buildOutPath)
	case isGCCFamily(cxx):
		return enableGCCModules(builder, buildOutPath)
	default:
		return ModuleInfo{}, &UnsupportedCompilerError{Cxx: cxx}
	}
}

func isGCCFamily(cxx string) bool {
	if strings.Contains(cxx, "clang") {
		return false
	}
	return strings.Contains(cxx, "gcc") || strings.Contains(cxx, "g++")
}

func isClangFamily(cxx string) bool {
	return strings.Contains(cxx, "clang")
}

// enableGCCModules precompiles bits/std.cc into <build_out>/gcm.cache/std.gcm
// via the ordinary cxx_compile rule (its extra_flags binding carries
// -fsearch-include-path); ninja creates the gcm.cache directory itself when
// it creates the edge's output, so no separate directory-creation edge is
// needed.
func enableGCCModules(builder *GraphBuilder, buildOutPath string) (ModuleInfo, error) {
	gcmPath := buildOutPath + "/gcm.cache/std.gcm"
	builder.AddEdge(Edge{
		Outputs: []string{gcmPath},
		Rule:    RuleCxxCompile,
		Inputs:  []string{"bits/std.cc"},
		Bindings: []Binding{
			{Key: "out_dir", Value: buildOutPath + "/gcm.cache"},
			{Key: "extra_flags", Value: "-fsearch-include-path"},
		},
	})
	builder.AddPhony(stdModuleName, []string{gcmPath})
	builder.SetModulesEnabled(stdModuleName)
	return ModuleInfo{Enabled: true, IsClangFamily: false, StdModuleName: stdModuleName, StdArtifactPath: gcmPath}, nil
}

// enableClangModules prepends -stdlib=libc++ (and the warning-suppression
// flag the original tool also carries - see SPEC_FULL.md's supplemented
// features) to c_flags.others and ld_flags.others, precompiles std.cppm into
// std.pcm, and adds -fmodule-file=std=<std.pcm> to c_flags.others.
func enableClangModules(builder *GraphBuilder, opts *CompilerOpts, buildOutPath string) (ModuleInfo, error) {
	opts.CFlags.Others = append([]string{"-stdlib=libc++", "-Wno-unused-command-line-argument"}, opts.CFlags.Others...)
	opts.LdFlags.Others = append([]string{"-stdlib=libc++"}, opts.LdFlags.Others...)

	pcmPath := buildOutPath + "/std.pcm"
	builder.AddEdge(Edge{
		Outputs: []string{pcmPath},
		Rule:    RuleCxxCompile,
		Inputs:  []string{clangStdModuleSource},
		Bindings: []Binding{
			{Key: "out_dir", Value: buildOutPath},
			{Key: "extra_flags", Value: "--precompile"},
		},
	})
	opts.CFlags.Others = append(opts.CFlags.Others, "-fmodule-file=std="+pcmPath)
	builder.AddPhony(stdModuleName, []string{pcmPath})
	builder.SetModulesEnabled(stdModuleName)
	return ModuleInfo{Enabled: true, IsClangFamily: true, StdModuleName: stdModuleName, StdArtifactPath: pcmPath}, nil
}
