package shell

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestRunCapturesStreams(t *testing.T) {
	requireShell(t)

	var live bytes.Buffer
	r := &Runner{Dir: t.TempDir(), Stdout: &live}
	out, err := r.Run(context.Background(), "sh", "-c", "echo out; echo err 1>&2")
	require.NoError(t, err)

	assert.Equal(t, "out\n", out.Stdout)
	assert.Equal(t, "err\n", out.Stderr)
	assert.Equal(t, "out\n", live.String())
}

func TestRunNonZeroExitReturnsStderr(t *testing.T) {
	requireShell(t)

	r := &Runner{Dir: t.TempDir()}
	out, err := r.Run(context.Background(), "sh", "-c", "echo boom 1>&2; exit 3")
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "boom\n", exitErr.Stderr)
	assert.Contains(t, err.Error(), "status 3: boom")
	assert.Equal(t, "boom\n", out.Stderr)
}

func TestRunLargeOutputDoesNotBlock(t *testing.T) {
	requireShell(t)

	// more than a pipe buffer on both streams
	script := "i=0; while [ $i -lt 20000 ]; do echo line-$i; echo err-$i 1>&2; i=$((i+1)); done"
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	out, err := (&Runner{}).Run(ctx, "sh", "-c", script)
	require.NoError(t, err)
	assert.Equal(t, 20000, strings.Count(out.Stdout, "\n"))
	assert.Equal(t, 20000, strings.Count(out.Stderr, "\n"))
}

func TestRunEnv(t *testing.T) {
	requireShell(t)

	out, err := (&Runner{Env: []string{"BLUE_EYES_TEST=yes"}}).Run(context.Background(), "sh", "-c", "printf %s \"$BLUE_EYES_TEST\"")
	require.NoError(t, err)
	assert.Equal(t, "yes", out.Stdout)
}

func TestRunMissingCommand(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background(), "blue-eyes-no-such-command")
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestRunCancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&Runner{}).Run(ctx, "sh", "-c", "sleep 5")
	assert.Error(t, err)
}

func TestBundlerBuildsCommands(t *testing.T) {
	dir := t.TempDir()
	// a fake bundle that echoes its arguments
	script := "#!/bin/sh\necho \"$@\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bundle"), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	requireShell(t)

	b := Bundler{Runner: &Runner{Dir: dir}}
	out, err := b.Migrate(context.Background(), "db/migrations", "sqlite://blog.db")
	require.NoError(t, err)
	assert.Equal(t, "exec sequel -m db/migrations sqlite://blog.db\n", out.Stdout)

	out, err = b.Install(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "install\n", out.Stdout)
}
