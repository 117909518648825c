// Package agent invokes the completion agent, a headless coding CLI, against
// a working copy. The agent is an opaque capability: callers see only a
// success flag and the raw output.
package agent

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strconv"
	"time"
)

// Agent autonomously edits a working copy according to a task prompt,
// bounded by a turn budget. It may or may not commit; callers only rely on
// the success flag and raw output.
type Agent interface {
	Complete(ctx context.Context, dir, prompt string, maxTurns int) (success bool, output string)
}

// CLIAgent runs the agent CLI in headless mode.
type CLIAgent struct {
	Command string
	Timeout time.Duration
}

// NewCLIAgent returns an agent runner with the per-invocation wall clock
// bound. The turn budget bounds cost; the timeout bounds hangs.
func NewCLIAgent(command string) *CLIAgent {
	return &CLIAgent{
		Command: command,
		Timeout: 10 * time.Minute,
	}
}

// Complete runs the CLI against dir with the given prompt and turn budget.
// Non-zero exit, a missing binary, and a timeout all report failure with a
// diagnostic output string; none of them are returned as errors because the
// sweep treats agent failure as a per-repository outcome, not an exception.
func (a *CLIAgent) Complete(ctx context.Context, dir, prompt string, maxTurns int) (bool, string) {
	ctx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, a.Command,
		"-p", prompt,
		"--allowedTools", "Edit,Bash,Write,Read",
		"--max-turns", strconv.Itoa(maxTurns),
		"--output-format", "text",
	)
	cmd.Dir = dir

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return false, "TIMEOUT"
	}
	if errors.Is(err, exec.ErrNotFound) {
		return false, "CLI_NOT_FOUND"
	}
	return err == nil, buf.String()
}
