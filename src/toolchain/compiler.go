// Package toolchain implements core.Compiler for the two supported compiler
// families (GCC, Clang), including the version probe that backs
// SupportsModules.
package toolchain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cabinbuild/cabin/src/cli/logging"
	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/process"
)

var log = logging.Log

// probeTimeout bounds the "cxx --version" invocation used to detect family
// and minimum-version module support.
const probeTimeout = 10 * time.Second

// minGCCModules and minClangModules are the minimum major versions documented
// to users as supporting standard-library module precompilation (§6).
const (
	minGCCModules   = 14
	minClangModules = 17
)

// Detect runs "<cxx> --version" and returns the core.Compiler for whichever
// family it identifies. It fails with core.UnsupportedCompilerError if cxx
// matches neither the GCC nor the Clang family.
func Detect(exec *process.Executor, cxx string) (core.Compiler, error) {
	out, _, err := exec.Run(context.Background(), core.Command{Path: cxx, Args: []string{"--version"}}, probeTimeout)
	if err != nil {
		return nil, &core.CompilerInvocationError{Cxx: cxx, Args: []string{"--version"}, Reason: "version probe failed", Err: err}
	}
	banner := string(out)
	switch {
	case isClang(cxx, banner):
		major := parseClangMajor(banner)
		log.Debug("detected clang-family compiler %q (major %d)", cxx, major)
		return &clangCompiler{cxx: cxx, modules: major >= minClangModules}, nil
	case isGCC(cxx, banner):
		major := parseGCCMajor(banner)
		log.Debug("detected gcc-family compiler %q (major %d)", cxx, major)
		return &gccCompiler{cxx: cxx, modules: major >= minGCCModules}, nil
	default:
		return nil, &core.UnsupportedCompilerError{Cxx: cxx}
	}
}

func isClang(cxx, banner string) bool {
	return strings.Contains(cxx, "clang") || strings.Contains(banner, "clang version")
}

func isGCC(cxx, banner string) bool {
	if strings.Contains(cxx, "clang") {
		return false
	}
	return strings.Contains(cxx, "gcc") || strings.Contains(cxx, "g++") || strings.Contains(banner, "Free Software Foundation")
}

// parseGCCMajor pulls the leading major-version digits out of a gcc/g++
// "--version" banner, e.g. "g++ (GCC) 14.1.0" -> 14.
func parseGCCMajor(banner string) int {
	return firstVersionMajor(banner)
}

// parseClangMajor pulls the major version out of a line like
// "clang version 17.0.6".
func parseClangMajor(banner string) int {
	idx := strings.Index(banner, "clang version ")
	if idx < 0 {
		return firstVersionMajor(banner)
	}
	return firstVersionMajor(banner[idx+len("clang version "):])
}

// firstVersionMajor scans s for the first run of digits followed by a '.'
// and returns it as an int, or 0 if none is found.
func firstVersionMajor(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			continue
		}
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j < len(s) && s[j] == '.' {
			var major int
			fmt.Sscanf(s[i:j], "%d", &major)
			return major
		}
		i = j
	}
	return 0
}

// buildFlags renders the shared positional flag set (-D, -I, and the raw
// "others" fragment) common to both families' dependency-scan and
// preprocess invocations.
func buildFlags(opts core.CompilerOpts) []string {
	args := make([]string, 0, len(opts.CFlags.Others)+len(opts.CFlags.Macros)+len(opts.CFlags.IncludeDirs))
	args = append(args, opts.CFlags.Others...)
	for _, m := range opts.CFlags.Macros {
		args = append(args, "-D"+m)
	}
	for _, inc := range opts.CFlags.IncludeDirs {
		args = append(args, "-I"+inc)
	}
	return args
}
