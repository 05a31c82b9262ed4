// Package chroot runs commands inside the newly installed system.
package chroot

//go:generate mockgen -destination mocks/mock_chroot.go github.com/archstrap/archstrap/internal/chroot Runner

import (
	"context"
	"io"

	"github.com/archstrap/archstrap/internal/util"
)

// Runner outlines running commands inside the new root.
type Runner interface {
	// Run runs the command as root. Its output is streamed to the operator.
	Run(ctx context.Context, args ...string) error
	// RunWithInput runs the command as root reading stdin from input.
	RunWithInput(ctx context.Context, input io.Reader, args ...string) error
	// RunAs runs the command as the given user.
	RunAs(ctx context.Context, user string, args ...string) error
}

// Chroot implements Runner with arch-chroot, which also mounts the API filesystems and resolv.conf.
type Chroot struct {
	// Root is the path the new system is mounted at.
	Root    string
	Streams util.Streams
}

// Type assertion to ensure Chroot implements the Runner interface.
var _ Runner = (*Chroot)(nil)

// New creates a Chroot for the system mounted at root.
func New(root string, streams util.Streams) *Chroot {
	return &Chroot{Root: root, Streams: streams}
}

func (c *Chroot) Run(ctx context.Context, args ...string) error {
	return util.StreamCommand(ctx, c.Command("", args), c.Streams, nil)
}

func (c *Chroot) RunWithInput(ctx context.Context, input io.Reader, args ...string) error {
	return util.StreamCommand(ctx, c.Command("", args), c.Streams, input)
}

func (c *Chroot) RunAs(ctx context.Context, user string, args ...string) error {
	return util.StreamCommand(ctx, c.Command(user, args), c.Streams, nil)
}

// Command builds the arch-chroot invocation of args, run as user when one is given.
//   - -u - run the command as the specified user
func (c *Chroot) Command(user string, args []string) []string {
	cmd := []string{"arch-chroot"}
	if user != "" {
		cmd = append(cmd, "-u", user)
	}
	cmd = append(cmd, c.Root)

	return append(cmd, args...)
}
