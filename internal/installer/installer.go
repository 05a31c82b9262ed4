// Package installer runs the install as an ordered list of named steps.
package installer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/archstrap/archstrap/internal/bootstrap"
	"github.com/archstrap/archstrap/internal/config"
	"github.com/archstrap/archstrap/internal/configure"
	"github.com/archstrap/archstrap/internal/i18n"
	"github.com/archstrap/archstrap/internal/prompt"
	"github.com/archstrap/archstrap/internal/storage"
	"github.com/archstrap/archstrap/internal/system"
	"github.com/archstrap/archstrap/internal/telemetry"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ErrAborted is returned when the operator declined to overwrite the disk. The disk is untouched.
var ErrAborted = errors.New("installation aborted")

// StepError attributes a failure to the step it happened in.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Locator resolves the timezone of the machine.
type Locator interface {
	Timezone(ctx context.Context) (string, error)
}

// Step is a named unit of the install.
type Step struct {
	Name string
	Run  func(ctx context.Context) error
}

// Installer holds the collaborators of an install.
type Installer struct {
	Config    *config.Config
	Platform  *system.Platform
	Storage   storage.Storage
	Prompter  prompt.Prompter
	Scripts   bootstrap.Scripts
	Configure *configure.Configurator
	Locator   Locator
	// Fs is the live filesystem, the target is reached below Config.MountRoot.
	Fs  afero.Fs
	Out io.Writer
}

// run carries the values steps hand to later steps.
type run struct {
	params Params
	parts  *storage.Partitions
}

// Run performs every step in order and stops at the first failure.
func (i *Installer) Run(ctx context.Context, params Params) error {
	logrus.WithField("params", params.String()).Debug("Starting install")

	for _, step := range i.Steps(params) {
		if err := i.runStep(ctx, step); err != nil {
			return err
		}
	}

	fmt.Fprintln(i.Out, i18n.T(i18n.Complete, i.Config.MountRoot))
	return nil
}

func (i *Installer) runStep(ctx context.Context, step Step) error {
	ctx, span := telemetry.Tracer().Start(ctx, step.Name)
	defer span.End()
	span.SetAttributes(attribute.String("archstrap.step", step.Name))

	fmt.Fprintln(i.Out, i18n.T(i18n.StepHeader, step.Name))
	logrus.WithField("step", step.Name).Debug("Running step")

	if err := step.Run(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return &StepError{Step: step.Name, Err: err}
	}

	return nil
}

// Steps returns the install steps for the parameters.
func (i *Installer) Steps(params Params) []Step {
	r := &run{params: params}
	cfg := i.Config

	return []Step{
		{Name: "prepare-disk", Run: func(ctx context.Context) error {
			return i.prepareDisk(ctx, params.Disk)
		}},
		{Name: "detect-partitions", Run: func(ctx context.Context) error {
			parts, err := storage.DetectPartitions(ctx, i.Storage, params.Disk)
			if err != nil {
				return err
			}
			r.parts = parts
			return nil
		}},
		{Name: "format", Run: func(ctx context.Context) error {
			return storage.Format(ctx, i.Storage, r.parts)
		}},
		{Name: "create-subvolumes", Run: func(ctx context.Context) error {
			return storage.CreateSubvolumes(ctx, i.Storage, r.parts.Root, cfg.MountRoot, storage.DefaultLayout())
		}},
		{Name: "mount-subvolumes", Run: func(ctx context.Context) error {
			if err := storage.MountSubvolumes(ctx, i.Storage, i.Fs, r.parts.Root, cfg.MountRoot, storage.DefaultLayout(), cfg.MountOptions); err != nil {
				return err
			}
			return storage.MountEFI(ctx, i.Storage, i.Fs, r.parts.EFI, cfg.MountRoot)
		}},
		{Name: "bootstrap", Run: func(ctx context.Context) error {
			return bootstrap.Bootstrap(ctx, i.Scripts, cfg.MountRoot, bootstrap.Packages(cfg.Packages, i.Platform), i.Out)
		}},
		{Name: "fstab", Run: func(ctx context.Context) error {
			return bootstrap.WriteFstab(ctx, i.Scripts, i.Fs, cfg.MountRoot, i.Out)
		}},
		{Name: "timezone", Run: func(ctx context.Context) error {
			zone, err := i.timezone(ctx)
			if err != nil {
				return err
			}
			return i.Configure.Timezone(ctx, zone)
		}},
		{Name: "locale", Run: func(ctx context.Context) error {
			return i.Configure.Locale(ctx, cfg.Locale, cfg.Keymap)
		}},
		{Name: "hostname", Run: func(ctx context.Context) error {
			return i.Configure.Hostname(params.Hostname)
		}},
		{Name: "user", Run: func(ctx context.Context) error {
			return i.Configure.User(ctx, params.Username, params.Password, cfg.AdminGroup)
		}},
		{Name: "bootloader", Run: func(ctx context.Context) error {
			return i.Configure.Bootloader(ctx, cfg.GrubTarget, cfg.EFIDirectory, cfg.BootloaderID)
		}},
		{Name: "sudoers", Run: func(ctx context.Context) error {
			return i.Configure.Sudoers(ctx, cfg.AdminGroup)
		}},
		{Name: "services", Run: func(ctx context.Context) error {
			return i.Configure.Services(ctx, cfg.Services)
		}},
		{Name: "aur-helper", Run: func(ctx context.Context) error {
			if !cfg.BuildsAURHelper() {
				logrus.Info("Skipping AUR helper build")
				return nil
			}
			return i.Configure.AURHelper(ctx, params.Username, cfg.AURHelper, cfg.AURURL)
		}},
	}
}

// prepareDisk wipes and partitions the disk. A declined overwrite is reported to the operator and returned as
// ErrAborted.
func (i *Installer) prepareDisk(ctx context.Context, disk string) error {
	table, err := storage.ParsePartitionTable(i.Config.EFISize)
	if err != nil {
		return err
	}
	rendered, err := table.Render()
	if err != nil {
		return err
	}

	confirm := func(disk string) (bool, error) {
		return i.Prompter.Confirm(i18n.T(i18n.OverwritePrompt, disk), false)
	}

	err = storage.PrepareDisk(ctx, i.Storage, disk, confirm, strings.NewReader(rendered))
	if errors.Is(err, storage.ErrDeclined) {
		i.Prompter.Notify(i18n.T(i18n.Aborting))
		return ErrAborted
	}

	return err
}

// timezone returns the configured timezone or looks it up.
func (i *Installer) timezone(ctx context.Context) (string, error) {
	if i.Config.Timezone != "" {
		return i.Config.Timezone, nil
	}

	zone, err := i.Locator.Timezone(ctx)
	if err != nil {
		return "", err
	}
	logrus.WithField("timezone", zone).Info("Detected timezone")

	return zone, nil
}
