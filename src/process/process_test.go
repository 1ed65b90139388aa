package process

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cabinbuild/cabin/src/core"
)

func TestRunSuccess(t *testing.T) {
	_, combined, err := New().Run(context.Background(), core.Command{Path: "true"}, 10*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(combined))
}

func TestRunFailure(t *testing.T) {
	_, _, err := New().Run(context.Background(), core.Command{Path: "false"}, 10*time.Second)
	assert.Error(t, err)
}

func TestRunDeadlineExceeded(t *testing.T) {
	_, _, err := New().Run(context.Background(), core.Command{Path: "sleep", Args: []string{"10"}}, 1*time.Nanosecond)
	assert.Error(t, err)
	assert.Equal(t, context.DeadlineExceeded, err)
}

func TestRunCapturesStdout(t *testing.T) {
	stdout, combined, err := New().Run(context.Background(), core.Command{Path: "echo", Args: []string{"hello"}}, 10*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, "hello\n", string(stdout))
	assert.Equal(t, "hello\n", string(combined))
}

func TestExecCommand(t *testing.T) {
	out, err := ExecCommand("echo", "hi")
	assert.NoError(t, err)
	assert.Equal(t, "hi\n", string(out))
}
