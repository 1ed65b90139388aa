// Package depscan implements header-dependency extraction by invoking the
// compiler's "emit make-style dependency info" mode and parsing its output.
package depscan

import (
	"context"
	"strings"
	"time"

	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/fs"
	"github.com/cabinbuild/cabin/src/process"
)

// DefaultTimeout bounds a single dependency-scan compiler invocation.
const DefaultTimeout = 60 * time.Second

// Scanner runs the compiler in dependency-emission mode for one source file
// at a time. Many Scans may run concurrently against the same Scanner; it
// holds no mutable state of its own.
type Scanner struct {
	Compiler core.Compiler
	Executor *process.Executor
	Timeout  time.Duration
}

// New returns a Scanner using DefaultTimeout.
func New(compiler core.Compiler, executor *process.Executor) *Scanner {
	return &Scanner{Compiler: compiler, Executor: executor, Timeout: DefaultTimeout}
}

// Scan builds and runs the dependency-emission command for source, working
// in outBasePath, and parses its dependency-rule output. isTest appends the
// test macro to the invocation (§4.2 step 1). rawBytes is the size of the
// compiler's stdout before parsing, for callers that want to summarize scan
// volume (e.g. a humanize.Bytes log line).
func (s *Scanner) Scan(ctx context.Context, opts core.CompilerOpts, outBasePath, source string, isTest bool) (objectTarget string, deps map[string]struct{}, rawBytes int, err error) {
	cmd := s.Compiler.MakeMMCmd(opts, source, isTest)
	cmd.Dir = outBasePath
	stdout, _, runErr := s.Executor.Run(ctx, cmd, s.timeout())
	if runErr != nil {
		return "", nil, 0, &core.CompilerInvocationError{Cxx: s.Compiler.Cxx(), Args: cmd.Args, Reason: "dependency scan failed", Err: runErr}
	}
	target, deps, parseErr := ParseRule(string(stdout))
	if parseErr != nil {
		return "", nil, 0, &core.CompilerInvocationError{Cxx: s.Compiler.Cxx(), Args: cmd.Args, Reason: "malformed dependency output", Err: parseErr}
	}
	return target, deps, len(stdout), nil
}

func (s *Scanner) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

// ParseRule parses one "TARGET: DEP1 DEP2 \<newline>  DEP3 DEP4" rule, per
// §4.2 step 2. The first token after the target is the source itself and is
// discarded regardless of its content; tokens beginning with a backslash
// (line-continuation artifacts) or naming a compiled-module artifact are
// also discarded.
//
// This is the "all-lines, filter module artifacts" parser; a "first-line
// only" variant also existed upstream but is a bug and is not reproduced
// here (§9).
func ParseRule(output string) (target string, deps map[string]struct{}, err error) {
	idx := strings.IndexByte(output, ':')
	if idx < 0 {
		return "", nil, &parseError{msg: "no ':' found in dependency rule"}
	}
	target = strings.TrimSpace(output[:idx])
	if target == "" {
		return "", nil, &parseError{msg: "empty target in dependency rule"}
	}
	// Tokenize by whitespace, not shell-escape rules: a line-continuation
	// backslash at the end of a wrapped rule ("foo.hpp \<newline>  bar.hpp")
	// must survive as its own droppable token, which shlex's escaping
	// semantics would instead fold into the following line.
	fields := strings.Fields(output[idx+1:])
	deps = map[string]struct{}{}
	for i, tok := range fields {
		if i == 0 {
			continue // the source file itself
		}
		if strings.HasPrefix(tok, "\\") {
			continue // line-continuation artifact
		}
		if fs.IsModuleArtifact(tok) {
			continue
		}
		deps[fs.ToSlash(tok)] = struct{}{}
	}
	return target, deps, nil
}

type parseError struct{ msg string }

func (e *parseError) Error() string { return e.msg }
