// Package testprobe decides whether a source file participates in the test
// build, by preprocessing it twice (with and without the test macro) and
// comparing the results.
package testprobe

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"time"

	"github.com/cabinbuild/cabin/src/core"
	"github.com/cabinbuild/cabin/src/process"
)

// testMacroToken is the literal string a source must contain, at the text
// level, before a double-preprocess is even attempted.
const testMacroToken = "CABIN_TEST"

// DefaultTimeout bounds each of the two preprocess invocations.
const DefaultTimeout = 60 * time.Second

// Probe runs the fast literal-text scan and, when warranted, the double
// preprocess against a single compiler.
type Probe struct {
	Compiler core.Compiler
	Executor *process.Executor
	Timeout  time.Duration
}

// New returns a Probe using DefaultTimeout.
func New(compiler core.Compiler, executor *process.Executor) *Probe {
	return &Probe{Compiler: compiler, Executor: executor, Timeout: DefaultTimeout}
}

// ContainsTestCode reports whether source participates in the test build
// (§4.3). It fails only on a compiler-invocation error during the
// double-preprocess step; a failure to open source for the fast-path scan is
// not fatal and simply yields false.
func (p *Probe) ContainsTestCode(ctx context.Context, opts core.CompilerOpts, outBasePath, source string) (bool, error) {
	mentions, err := fileMentionsToken(source, testMacroToken)
	if err != nil || !mentions {
		return false, nil
	}
	plain, err := p.preprocess(ctx, opts, outBasePath, source, false)
	if err != nil {
		return false, err
	}
	withTest, err := p.preprocess(ctx, opts, outBasePath, source, true)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(plain, withTest), nil
}

func (p *Probe) preprocess(ctx context.Context, opts core.CompilerOpts, outBasePath, source string, defineTest bool) ([]byte, error) {
	cmd := p.Compiler.MakePreprocessCmd(opts, source, defineTest)
	cmd.Dir = outBasePath
	stdout, _, err := p.Executor.Run(ctx, cmd, p.timeout())
	if err != nil {
		return nil, &core.CompilerInvocationError{Cxx: p.Compiler.Cxx(), Args: cmd.Args, Reason: "preprocess failed", Err: err}
	}
	return stdout, nil
}

func (p *Probe) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

// fileMentionsToken scans source line-by-line for the literal token. A read
// failure is not fatal (§7): the probe just returns false as if the token
// were absent.
func fileMentionsToken(source, token string) (bool, error) {
	f, err := os.Open(source)
	if err != nil {
		return false, nil
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if bytes.Contains(scanner.Bytes(), []byte(token)) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
