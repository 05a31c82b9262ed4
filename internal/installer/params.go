package installer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/archstrap/archstrap/internal/i18n"
	"github.com/archstrap/archstrap/internal/prompt"
)

// Params holds the operator's answers. They only live in memory.
type Params struct {
	Disk     string
	Hostname string
	Username string
	Password string
}

// String formats the parameters with the password redacted.
func (p Params) String() string {
	return fmt.Sprintf("disk=%s hostname=%s username=%s password=[redacted]", p.Disk, p.Hostname, p.Username)
}

// Collect asks the operator for the install parameters. The password is asked twice until both entries match.
func Collect(p prompt.Prompter) (Params, error) {
	var params Params
	var err error

	if params.Disk, err = ask(p, i18n.DiskPrompt); err != nil {
		return Params{}, err
	}
	if params.Hostname, err = ask(p, i18n.HostnamePrompt); err != nil {
		return Params{}, err
	}
	if params.Username, err = ask(p, i18n.UsernamePrompt); err != nil {
		return Params{}, err
	}
	if params.Password, err = prompt.ConfirmedPassword(p, i18n.T(i18n.PasswordPrompt), i18n.T(i18n.RepeatPasswordPrompt)); err != nil {
		return Params{}, err
	}

	return params, nil
}

// ask reads a trimmed free text answer, repeating the question while it is empty.
func ask(p prompt.Prompter, label string) (string, error) {
	var answer string
	read := func() (string, error) {
		var err error
		answer, err = p.Input(i18n.T(label))
		answer = strings.TrimSpace(answer)
		return answer, err
	}
	nonEmpty := func(s string) error {
		if s == "" {
			return errors.New(i18n.T(i18n.EmptyAnswer))
		}
		return nil
	}

	return prompt.UntilValid(p, read, nonEmpty)
}
