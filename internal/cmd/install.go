package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/archstrap/archstrap/internal/bootstrap"
	"github.com/archstrap/archstrap/internal/chroot"
	"github.com/archstrap/archstrap/internal/configure"
	"github.com/archstrap/archstrap/internal/contextual"
	"github.com/archstrap/archstrap/internal/geo"
	"github.com/archstrap/archstrap/internal/installer"
	"github.com/archstrap/archstrap/internal/preflight"
	"github.com/archstrap/archstrap/internal/prompt"
	"github.com/archstrap/archstrap/internal/storage"
	"github.com/archstrap/archstrap/internal/util"
)

// installCommand creates a new command which runs the interactive install.
func installCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "install Arch Linux onto a disk",
		Long: strings.TrimSpace(`
install asks for the target disk, the hostname and the first user
and installs Arch Linux onto the disk. A disk that already holds
partitions is only overwritten after confirmation.

NOTE: every step changes the disk directly, a failed install is not rolled back
		`),
		Args:    cobra.NoArgs,
		PreRunE: assertRootPrivileges,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		platform := contextual.Platform(ctx)
		if platform == nil {
			return errors.New("platform required in context")
		}

		if err := preflight.Err((&preflight.Checker{Platform: platform}).Run(ctx)); err != nil {
			return err
		}

		cfg := opts.cfg
		term := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())
		// Commands share the prompt's reader so piped answers are not lost between them
		streams := util.Streams{In: term.Source(), Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
		fs := afero.NewOsFs()

		inst := &installer.Installer{
			Config:    cfg,
			Platform:  platform,
			Storage:   storage.New(streams),
			Prompter:  term,
			Scripts:   &bootstrap.InstallScripts{},
			Configure: configure.New(chroot.New(cfg.MountRoot, streams), fs, cfg.MountRoot),
			Locator:   geo.NewLocator(cfg.TimezoneURL, cfg.TimezoneRetries, cfg.TimezoneTimeout),
			Fs:        fs,
			Out:       streams.Out,
		}

		return runInstall(ctx, term, inst)
	}

	return cmd
}

// runInstall collects the install parameters and runs the install. A declined overwrite is a clean exit.
func runInstall(ctx context.Context, p prompt.Prompter, inst *installer.Installer) error {
	params, err := installer.Collect(p)
	if err != nil {
		return err
	}

	logrus.WithField("platform", inst.Platform).Info("Starting install")
	if err := inst.Run(ctx, params); err != nil {
		if errors.Is(err, installer.ErrAborted) {
			logrus.Info("Install aborted, the disk was not changed")
			return nil
		}
		return err
	}

	return nil
}
