// Package driver invokes the downstream build driver (a Ninja-compatible
// tool) against the files Emitter wrote. The graph file is the only
// interface between the two; the driver itself is an opaque process (§1,
// §6).
package driver

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/process"
)

// noWorkLine is the literal stdout line a dry run prints when nothing needs
// rebuilding (§6).
const noWorkLine = "ninja: no work to do."

// DefaultTimeout bounds a single driver invocation. A real build can run far
// longer than this; callers driving an actual compile should pass a
// generous timeout of their own by setting Driver.Timeout.
const DefaultTimeout = 30 * time.Minute

// Mode selects the driver's verbosity flag (§6: "--quiet when non-verbose,
// --verbose when extra-verbose").
type Mode int

const (
	// Normal passes neither --quiet nor --verbose.
	Normal Mode = iota
	// Quiet passes --quiet.
	Quiet
	// Verbose passes --verbose.
	Verbose
)

// Driver runs the build driver binary (ninja by default).
type Driver struct {
	Path     string
	Executor *process.Executor
	Timeout  time.Duration
}

// New returns a Driver invoking path (e.g. "ninja") through executor.
func New(path string, executor *process.Executor) *Driver {
	return &Driver{Path: path, Executor: executor, Timeout: DefaultTimeout}
}

// Build runs the driver against outBasePath with the given job count and
// output mode.
func (d *Driver) Build(ctx context.Context, outBasePath string, jobs int, mode Mode) error {
	args := d.baseArgs(outBasePath, jobs, mode)
	_, combined, err := d.Executor.Run(ctx, core.Command{Path: d.Path, Args: args}, d.timeout())
	if err != nil {
		return &core.DriverError{Driver: d.Path, Args: args, Err: fmt.Errorf("%w: %s", err, combined)}
	}
	return nil
}

// DryRun invokes the driver with -n and reports whether work remains: the
// literal "ninja: no work to do." line is absent, or the driver exited
// non-zero (§6).
func (d *Driver) DryRun(ctx context.Context, outBasePath string, jobs int) (workRemains bool, err error) {
	args := append(d.baseArgs(outBasePath, jobs, Normal), "-n")
	stdout, combined, runErr := d.Executor.Run(ctx, core.Command{Path: d.Path, Args: args}, d.timeout())
	if runErr != nil {
		return true, &core.DriverError{Driver: d.Path, Args: args, Err: fmt.Errorf("%w: %s", runErr, combined)}
	}
	return workRemains(stdout), nil
}

// workRemains reports whether a dry-run's stdout indicates there is still
// work to do: the absence of the literal no-work line (§6).
func workRemains(stdout []byte) bool {
	return !bytes.Contains(stdout, []byte(noWorkLine))
}

// Compdb asks the driver to dump its compile database for the cxx_compile
// rule (§6's "compile_commands.json" output).
func (d *Driver) Compdb(ctx context.Context, outBasePath string) ([]byte, error) {
	args := []string{"-C", outBasePath, "-t", "compdb", "cxx_compile"}
	stdout, combined, err := d.Executor.Run(ctx, core.Command{Path: d.Path, Args: args}, d.timeout())
	if err != nil {
		return nil, &core.DriverError{Driver: d.Path, Args: args, Err: fmt.Errorf("%w: %s", err, combined)}
	}
	return stdout, nil
}

// WriteCompileCommands writes the driver's compdb output to
// <outBasePath>/compile_commands.json.
func (d *Driver) WriteCompileCommands(ctx context.Context, outBasePath string) error {
	data, err := d.Compdb(ctx, outBasePath)
	if err != nil {
		return err
	}
	target := filepath.Join(outBasePath, "compile_commands.json")
	if err := os.WriteFile(target, data, 0644); err != nil {
		return &core.IoError{Op: "write", Path: target, Err: err}
	}
	return nil
}

func (d *Driver) baseArgs(outBasePath string, jobs int, mode Mode) []string {
	args := []string{"-C", outBasePath}
	if jobs > 0 {
		args = append(args, fmt.Sprintf("-j%d", jobs))
	}
	switch mode {
	case Quiet:
		args = append(args, "--quiet")
	case Verbose:
		args = append(args, "--verbose")
	}
	return args
}

func (d *Driver) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}
