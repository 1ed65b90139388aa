// Package core holds the data model shared by every stage of build-graph
// generation: compile units, edges, the graph itself, and the compiler /
// project-context contracts that configure consumes.
package core

import (
	"strings"
	"time"
)

// CompilerOpts holds the compile and link flag fragments contributed by the
// manifest and the dependency installer. Every field is an ordered sequence
// of strings; order is preserved verbatim when joined.
//
// CompilerOpts is mutated by the (out-of-scope) installDeps/enableCoverage
// steps before ConfigureBuild begins. During configure the only writer is
// EnableModules, which adds the Clang family's module flags to it when the
// project opts into modules.
type CompilerOpts struct {
	CFlags  CFlags
	LdFlags LdFlags
}

// CFlags is the compile-side flag fragment.
type CFlags struct {
	Others      []string
	Macros      []string
	IncludeDirs []string
}

// LdFlags is the link-side flag fragment.
type LdFlags struct {
	Others  []string
	LibDirs []string
	Libs    []string
}

// JoinFlags joins a flag slice with single spaces, exactly as the emitted
// ninja variables expect. An empty slice joins to the empty string.
func JoinFlags(flags []string) string {
	return strings.Join(flags, " ")
}

// CombineFlags joins several already-rendered flag segments with single
// spaces, skipping empty segments. Used where a caller has a handful of
// independently-optional strings (e.g. "-O2", possibly "", "-fno-rtti").
func CombineFlags(segments ...string) string {
	nonEmpty := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, " ")
}

// ProjectContext is the read-only project configuration core operates
// against. It is assembled by the (out-of-scope) manifest parser.
type ProjectContext struct {
	RootPath        string
	BuildOutPath    string
	UnittestOutPath string
	OutBasePath     string
	ManifestPath    string
	PackageName     string
	UsesModules     bool
	CompilerOpts    CompilerOpts
	Metrics         MetricsConfig
}

// MetricsConfig controls the optional push-gateway metrics reporting done
// around a configure pass. A zero value (empty PushGatewayURL) disables
// metrics entirely.
type MetricsConfig struct {
	PushGatewayURL string
	PushFrequency  time.Duration // zero selects a sane default
	PushTimeout    time.Duration // zero selects a sane default
}

// Command is an external-process invocation: a command name/path plus its
// argv and the working directory it should run in. It's the thing
// Compiler.MakeMMCmd/MakePreprocessCmd build and src/process executes.
type Command struct {
	Path string
	Args []string
	Dir  string
}

// Compiler abstracts over a concrete compiler family (GCC, Clang, ...).
// ConfigureBuild and its helpers only ever see this interface; the concrete
// families live in src/toolchain.
type Compiler interface {
	// Cxx is the compiler command or path, e.g. "g++" or "/usr/bin/clang++".
	Cxx() string
	// MakeMMCmd builds the "emit make-style dependency info" invocation for source.
	MakeMMCmd(opts CompilerOpts, source string, isTest bool) Command
	// MakePreprocessCmd builds a preprocess-only invocation for source, optionally
	// defining the test macro.
	MakePreprocessCmd(opts CompilerOpts, source string, defineTest bool) Command
	// SupportsModules reports whether the detected compiler version supports
	// standard-library module precompilation.
	SupportsModules() bool
}
