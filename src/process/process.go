// Package process runs the external processes the build-graph generator
// depends on: the compiler (dependency scans, preprocesses, version probes)
// and, later, the build driver.
package process

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/cabinbuild/cabin/src/cli"
	"github.com/cabinbuild/cabin/src/cli/logging"
	"github.com/cabinbuild/cabin/src/core"
)

var log = logging.Log

// An Executor runs and tracks a set of subprocesses. It registers an AtExit
// handler so in-flight compiler/driver invocations are killed if cabin itself
// is killed.
type Executor struct {
	processes map[*exec.Cmd]<-chan error
	mutex     sync.Mutex
}

// New returns a new Executor.
func New() *Executor {
	e := &Executor{processes: map[*exec.Cmd]<-chan error{}}
	cli.AtExit(e.killAll)
	return e
}

// Run runs cmd to completion, subject to timeout. It returns stdout alone and
// the combined stdout+stderr: DepScanner and TestProbe read stdout, and the
// build driver puts the combined output into its error messages.
func (e *Executor) Run(ctx context.Context, cmd core.Command, timeout time.Duration) (stdout []byte, combined []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := exec.Command(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	setProcessGroup(c)

	var out bytes.Buffer
	var outerr safeBuffer
	c.Stdout = io.MultiWriter(&out, &outerr)
	c.Stderr = &outerr

	if startErr := c.Start(); startErr != nil {
		return nil, nil, startErr
	}
	ch := make(chan error, 1)
	e.registerProcess(c, ch)
	defer e.removeProcess(c)
	go func() { ch <- c.Wait() }()

	select {
	case err = <-ch:
	case <-ctx.Done():
		err = ctx.Err()
		e.killProcess(c, ch)
	}
	return out.Bytes(), outerr.Bytes(), err
}

func (e *Executor) removeProcess(cmd *exec.Cmd) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	delete(e.processes, cmd)
}

func (e *Executor) registerProcess(cmd *exec.Cmd, ch <-chan error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.processes[cmd] = ch
}

// killProcess sends SIGTERM followed by SIGKILL shortly after if it hasn't exited.
func (e *Executor) killProcess(cmd *exec.Cmd, ch <-chan error) {
	if cmd.Process == nil {
		return
	}
	success := sendSignal(cmd, ch, syscall.SIGTERM, 30*time.Millisecond)
	if !sendSignal(cmd, ch, syscall.SIGKILL, time.Second) && !success {
		log.Error("Failed to kill inferior process")
	}
	e.removeProcess(cmd)
}

func sendSignal(cmd *exec.Cmd, ch <-chan error, sig syscall.Signal, timeout time.Duration) bool {
	if cmd.Process == nil {
		return false
	}
	killGroup(cmd, sig)
	select {
	case <-ch:
		return true
	case <-time.After(timeout):
		return false
	}
}

// killAll kills all subprocesses of this executor. Registered with cli.AtExit.
func (e *Executor) killAll() {
	e.mutex.Lock()
	var wg sync.WaitGroup
	wg.Add(len(e.processes))
	defer wg.Wait()
	defer e.mutex.Unlock()
	for proc, ch := range e.processes {
		go func(proc *exec.Cmd, ch <-chan error) {
			e.killProcess(proc, ch)
			wg.Done()
		}(proc, ch)
	}
}

// ExecCommand is a utility function that runs the given argv with few options
// and returns its combined output. Used for one-shot invocations like
// compiler version probes.
func ExecCommand(args ...string) ([]byte, error) {
	cmd := exec.Command(args[0], args[1:]...)
	return cmd.CombinedOutput()
}

// safeBuffer is an io.Writer safe for concurrent writes from both stdout and
// stderr of the same subprocess.
type safeBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (sb *safeBuffer) Write(b []byte) (int, error) {
	sb.Lock()
	defer sb.Unlock()
	return sb.buf.Write(b)
}

func (sb *safeBuffer) Bytes() []byte {
	return sb.buf.Bytes()
}
