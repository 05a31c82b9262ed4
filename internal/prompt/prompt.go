// Package prompt provides the interactive questions an install asks the operator.
package prompt

//go:generate mockgen -destination mocks/mock_prompt.go github.com/archstrap/archstrap/internal/prompt Prompter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/archstrap/archstrap/internal/i18n"

	"golang.org/x/term"
)

// Prompter outlines the questions that can be asked of the operator.
type Prompter interface {
	// Input asks for a line of free text, surrounding whitespace is removed.
	Input(label string) (string, error)
	// Password asks for a secret without echoing it when possible. The answer is returned as typed.
	Password(label string) (string, error)
	// Confirm asks a yes/no question. Only "y" or "yes" accept, an empty answer takes defaultYes.
	Confirm(label string, defaultYes bool) (bool, error)
	// Notify prints a message to the operator.
	Notify(message string)
}

// Terminal implements Prompter on top of an input and an output stream.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	// fd is the terminal file descriptor of the input, -1 when the input is not a terminal.
	fd int
	// tty is the input when it is a terminal.
	tty *os.File
}

// Type assertion to ensure Terminal implements the Prompter interface.
var _ Prompter = (*Terminal)(nil)

// NewTerminal creates a Terminal reading answers from in and writing questions to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.fd = int(f.Fd())
		t.tty = f
	}

	return t
}

// Source returns the input for commands that prompt the operator themselves. Piped input is the buffered reader
// answers were read from. A terminal is returned unwrapped, it hands out one line per read so nothing is left
// in the buffer.
func (t *Terminal) Source() io.Reader {
	if t.tty != nil {
		return t.tty
	}
	return t.in
}

func (t *Terminal) Input(label string) (string, error) {
	fmt.Fprint(t.out, label)
	line, err := t.readLine()
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(line), nil
}

func (t *Terminal) Password(label string) (string, error) {
	fmt.Fprint(t.out, label)
	if t.fd < 0 {
		return t.readLine()
	}

	secret, err := term.ReadPassword(t.fd)
	// The newline typed by the operator is not echoed either
	fmt.Fprintln(t.out)
	if err != nil {
		return "", fmt.Errorf("prompt: failed to read password: %w", err)
	}

	return string(secret), nil
}

func (t *Terminal) Confirm(label string, defaultYes bool) (bool, error) {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}

	answer, err := t.Input(fmt.Sprintf("%s %s ", label, choices))
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func (t *Terminal) Notify(message string) {
	fmt.Fprintln(t.out, message)
}

// readLine reads up to the end of the line and strips the line terminator only. A final line without
// terminator is still returned, end of input without any text is an error.
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("prompt: no answer given: %w", io.ErrUnexpectedEOF)
		}
		return "", fmt.Errorf("prompt: failed to read answer: %w", err)
	}

	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// UntilValid keeps asking until validate accepts the answer. Every rejection is shown to the operator through p.
// Errors from ask end the loop.
func UntilValid(p Prompter, ask func() (string, error), validate func(string) error) (string, error) {
	for {
		answer, err := ask()
		if err != nil {
			return "", err
		}

		if err := validate(answer); err != nil {
			p.Notify(err.Error())
			continue
		}

		return answer, nil
	}
}

// ConfirmedPassword asks for a password twice until both entries are byte-equal.
func ConfirmedPassword(p Prompter, label, repeatLabel string) (string, error) {
	var first string
	ask := func() (string, error) {
		var err error
		if first, err = p.Password(label); err != nil {
			return "", err
		}
		return p.Password(repeatLabel)
	}
	matches := func(second string) error {
		if second != first {
			return errors.New(i18n.T(i18n.PasswordMismatch))
		}
		return nil
	}

	return UntilValid(p, ask, matches)
}
