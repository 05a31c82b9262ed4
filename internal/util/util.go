// Package util provides helpers for running the external tools archstrap orchestrates.
package util

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"
)

// CommandOutput wraps the output from an exec command as strings.
type CommandOutput struct {
	Stdout string
	Stderr string
}

// Streams holds the operator facing streams that live command output is copied to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// ExecuteCommand executes the command and returns Stdout and Stderr as strings.
func ExecuteCommand(ctx context.Context, c []string, envVars []string, stdin io.Reader) (output CommandOutput, err error) {
	cmd, err := newCommand(ctx, c, envVars)
	if err != nil {
		return CommandOutput{}, err
	}

	var stdoutb, stderrb bytes.Buffer
	cmd.Stdout = &stdoutb
	cmd.Stderr = &stderrb

	// Set command stdin if the stdin parameter is provided
	if stdin != nil {
		cmd.Stdin = stdin
	}

	logrus.WithField("cmd", c).Debug("Executing command")
	if err = cmd.Run(); err != nil {
		return CommandOutput{Stdout: stdoutb.String(), Stderr: stderrb.String()}, fmt.Errorf("%s: %w", c[0], err)
	}

	return CommandOutput{Stdout: stdoutb.String(), Stderr: stderrb.String()}, nil
}

// StreamCommand executes the command with its output copied live to the given streams. When stdin is nil the
// command reads from streams.In, which lets tools such as sudo or pacman prompt the operator.
func StreamCommand(ctx context.Context, c []string, streams Streams, stdin io.Reader) error {
	cmd, err := newCommand(ctx, c, nil)
	if err != nil {
		return err
	}

	cmd.Stdout = streams.Out
	cmd.Stderr = streams.Err
	if stdin != nil {
		cmd.Stdin = stdin
	} else {
		cmd.Stdin = streams.In
	}

	logrus.WithField("cmd", c).Debug("Executing command")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", c[0], err)
	}

	return nil
}

// PtyCommand executes the command attached to a pseudo-terminal and copies everything it prints to out. Tools
// like pacman only draw their progress output when attached to a terminal.
func PtyCommand(ctx context.Context, c []string, out io.Writer) error {
	cmd, err := newCommand(ctx, c, []string{"TERM=xterm-256color"})
	if err != nil {
		return err
	}

	logrus.WithField("cmd", c).Debug("Executing command in pty")
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("failed to run %s in pty: %w", c[0], err)
	}
	defer func() { _ = ptmx.Close() }()

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 40, Cols: 120}); err != nil {
		logrus.WithError(err).Debug("Unable to set pty size")
	}

	// Reading the master side returns EIO once the child exits, which is the normal end of output.
	if _, err := io.Copy(out, ptmx); err != nil && !isPtyClosed(err) {
		logrus.WithError(err).Warn("Error reading command output")
	}

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%s: %w", c[0], err)
	}

	return nil
}

// newCommand separates name and args and prepares the command with the current environment.
func newCommand(ctx context.Context, c []string, envVars []string) (*exec.Cmd, error) {
	// Check the empty struct case ([]string{}) for the command
	if len(c) == 0 {
		return nil, errors.New("must provide a command")
	}

	cmd := exec.CommandContext(ctx, c[0], c[1:]...)
	cmd.Env = append(os.Environ(), envVars...)

	return cmd, nil
}

func isPtyClosed(err error) bool {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return strings.Contains(pathErr.Err.Error(), "input/output error")
	}
	return false
}
