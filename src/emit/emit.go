// Package emit serializes an in-memory core.Graph to the four text files a
// downstream Ninja-compatible driver consumes.
package emit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cabinbuild/cabin/src/core"
)

// RequiredVersion is the ninja_required_version build.ninja declares.
const RequiredVersion = "1.11"

// Emitter writes the four fixed-format files into a project's out_base_path.
type Emitter struct {
	OutBasePath string
}

// New returns an Emitter writing into outBasePath.
func New(outBasePath string) *Emitter {
	return &Emitter{OutBasePath: outBasePath}
}

// EmitAll writes build.ninja, config.ninja, rules.ninja, and targets.ninja,
// in that order (§4.8).
func (e *Emitter) EmitAll(opts core.CompilerOpts, cxx string, graph *core.Graph) error {
	if err := e.writeFile("build.ninja", func(w *bufio.Writer) error { return writeBuildNinja(w, graph) }); err != nil {
		return err
	}
	if err := e.writeFile("config.ninja", func(w *bufio.Writer) error { return writeConfigNinja(w, opts, cxx) }); err != nil {
		return err
	}
	if err := e.writeFile("rules.ninja", writeRulesNinja); err != nil {
		return err
	}
	if err := e.writeFile("targets.ninja", func(w *bufio.Writer) error { return writeTargetsNinja(w, graph) }); err != nil {
		return err
	}
	return nil
}

func (e *Emitter) writeFile(name string, write func(*bufio.Writer) error) error {
	path := filepath.Join(e.OutBasePath, name)
	f, err := os.Create(path)
	if err != nil {
		return &core.IoError{Op: "create", Path: path, Err: err}
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return &core.IoError{Op: "write", Path: path, Err: err}
	}
	if err := w.Flush(); err != nil {
		return &core.IoError{Op: "flush", Path: path, Err: err}
	}
	return nil
}

func writeBuildNinja(w *bufio.Writer, graph *core.Graph) error {
	fmt.Fprintln(w, "# Generated by cabin. Do not edit by hand.")
	fmt.Fprintf(w, "ninja_required_version = %s\n", RequiredVersion)
	fmt.Fprintln(w, "include config.ninja")
	fmt.Fprintln(w, "include rules.ninja")
	fmt.Fprintln(w, "include targets.ninja")
	if len(graph.DefaultTargets) > 0 {
		fmt.Fprintf(w, "default%s\n", prefixedJoinSpace(graph.DefaultTargets))
	}
	return nil
}

func writeConfigNinja(w *bufio.Writer, opts core.CompilerOpts, cxx string) error {
	defines := prefixedJoin("-D", opts.CFlags.Macros)
	includes := prefixedJoin("-I", opts.CFlags.IncludeDirs)
	ldflags := core.CombineFlags(core.JoinFlags(opts.LdFlags.Others), prefixedJoin("-L", opts.LdFlags.LibDirs))
	libs := prefixedJoin("-l", opts.LdFlags.Libs)

	fmt.Fprintf(w, "CXX = %s\n", cxx)
	fmt.Fprintf(w, "CXXFLAGS = %s\n", core.JoinFlags(opts.CFlags.Others))
	fmt.Fprintf(w, "DEFINES = %s\n", defines)
	fmt.Fprintf(w, "INCLUDES = %s\n", includes)
	fmt.Fprintf(w, "LDFLAGS = %s\n", ldflags)
	fmt.Fprintf(w, "LIBS = %s\n", libs)
	return nil
}

func writeRulesNinja(w *bufio.Writer) error {
	fmt.Fprintln(w, "rule cxx_compile")
	fmt.Fprintln(w, "  command = $CXX $DEFINES $INCLUDES $CXXFLAGS $extra_flags -c $in -o $out")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "rule cxx_link")
	fmt.Fprintln(w, "  command = $CXX $in $LDFLAGS $LIBS -o $out")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "rule ar_archive")
	fmt.Fprintln(w, "  command = ar rcs $out $in")
	return nil
}

func writeTargetsNinja(w *bufio.Writer, graph *core.Graph) error {
	for i, edge := range graph.Edges {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeEdge(w, edge)
	}
	if len(graph.Edges) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "build all: phony%s\n", prefixedJoinSpace(graph.DefaultTargets))
	if len(graph.TestTargets) > 0 {
		fmt.Fprintf(w, "build tests: phony%s\n", prefixedJoinSpace(graph.TestTargets))
	}
	return nil
}

func writeEdge(w *bufio.Writer, edge core.Edge) {
	line := fmt.Sprintf("build %s: %s", strings.Join(edge.Outputs, " "), edge.Rule)
	if len(edge.Inputs) > 0 {
		line += " " + strings.Join(edge.Inputs, " ")
	}
	if len(edge.ImplicitInputs) > 0 {
		line += " | " + strings.Join(edge.ImplicitInputs, " ")
	}
	if len(edge.OrderOnlyInputs) > 0 {
		line += " || " + strings.Join(edge.OrderOnlyInputs, " ")
	}
	fmt.Fprintln(w, line)
	for _, b := range edge.Bindings {
		fmt.Fprintf(w, "  %s = %s\n", b.Key, b.Value)
	}
}

// prefixedJoin prepends prefix to each element of values and joins with a
// single space.
func prefixedJoin(prefix string, values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefixed := make([]string, len(values))
	for i, v := range values {
		prefixed[i] = prefix + v
	}
	return strings.Join(prefixed, " ")
}

// prefixedJoinSpace joins values with a leading space (or returns "" if
// empty), so callers can append it directly after a literal that already
// ends without a trailing space, e.g. "phony" + prefixedJoinSpace(targets).
func prefixedJoinSpace(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return " " + strings.Join(values, " ")
}
