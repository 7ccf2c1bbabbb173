// Package shell runs the external tools a generated application relies on
// (bundle, sequel, tailwindcss).
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ExitError is returned when a command exits non-zero. Stderr holds what
// the command wrote to its error stream.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
	if first := firstLine(e.Stderr); first != "" {
		msg += ": " + first
	}
	return msg
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Output holds the captured streams of a finished command.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes commands in a fixed directory.
type Runner struct {
	Dir    string
	Env    []string  // appended to the current environment
	Stdout io.Writer // optional live copy of stdout
	Stderr io.Writer // optional live copy of stderr
	Logger *zap.Logger
}

// Run starts name with args and waits for it. Both output streams are
// drained concurrently so a chatty command cannot block on a full pipe.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Output, error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	command := strings.Join(append([]string{name}, args...), " ")

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stdout of %s: %w", name, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to attach stderr of %s: %w", name, err)
	}

	logger.Debug("running command", zap.String("command", command), zap.String("dir", r.Dir))
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", name, err)
	}

	var outBuf, errBuf bytes.Buffer
	var g errgroup.Group
	g.Go(func() error { return drain(stdout, &outBuf, r.Stdout) })
	g.Go(func() error { return drain(stderr, &errBuf, r.Stderr) })
	drainErr := g.Wait()

	waitErr := cmd.Wait()
	out := &Output{Stdout: outBuf.String(), Stderr: errBuf.String()}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			logger.Debug("command failed", zap.String("command", command), zap.Int("code", exitErr.ExitCode()))
			return out, &ExitError{Command: command, Code: exitErr.ExitCode(), Stderr: out.Stderr, Err: waitErr}
		}
		return out, fmt.Errorf("failed to run %s: %w", command, waitErr)
	}
	if drainErr != nil {
		return out, fmt.Errorf("failed to read output of %s: %w", command, drainErr)
	}

	return out, nil
}

func drain(r io.Reader, buf *bytes.Buffer, tee io.Writer) error {
	var w io.Writer = buf
	if tee != nil {
		w = io.MultiWriter(buf, tee)
	}
	_, err := io.Copy(w, r)
	return err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
