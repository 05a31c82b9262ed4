// Package bootstrap installs the base system into the mounted new root.
package bootstrap

//go:generate mockgen -destination mocks/mock_bootstrap.go github.com/archstrap/archstrap/internal/bootstrap Scripts

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/archstrap/archstrap/internal/system"
	"github.com/archstrap/archstrap/internal/util"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// fstabPath is the filesystem table below the new root.
const fstabPath = "etc/fstab"

// DefaultPackages is the package set installed into every new system, the microcode package is added to it.
var DefaultPackages = []string{
	"base",
	"base-devel",
	"linux",
	"linux-firmware",
	"git",
	"grub",
	"efibootmgr",
	"man",
	"sudo",
	"networkmanager",
}

// Scripts outlines the arch-install-scripts tools used to bootstrap a system.
type Scripts interface {
	// Pacstrap installs the packages into root, printing pacman's progress to out.
	Pacstrap(ctx context.Context, root string, packages []string, out io.Writer) error
	// Genfstab returns the filesystem table for everything mounted below root, using UUIDs.
	Genfstab(ctx context.Context, root string) (string, error)
}

// InstallScripts implements Scripts with the arch-install-scripts commands.
type InstallScripts struct{}

// Type assertion to ensure InstallScripts implements the Scripts interface.
var _ Scripts = (*InstallScripts)(nil)

// Pacstrap runs pacstrap in a pseudo-terminal, pacman only draws its progress bars on a terminal.
//   - -K - initialize an empty pacman keyring in the new root
func (s *InstallScripts) Pacstrap(ctx context.Context, root string, packages []string, out io.Writer) error {
	cmd := append([]string{"pacstrap", "-K", root}, packages...)
	if err := util.PtyCommand(ctx, cmd, out); err != nil {
		return fmt.Errorf("bootstrap: failed to install packages: %w", err)
	}

	return nil
}

// Genfstab runs genfstab and captures the generated table.
//   - -U - identify filesystems by UUID
func (s *InstallScripts) Genfstab(ctx context.Context, root string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"genfstab", "-U", root}, nil, nil)
	if err != nil {
		return "", fmt.Errorf("bootstrap: failed to generate fstab, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// Packages returns the packages to bootstrap: base followed by the microcode package for the platform's CPU.
func Packages(base []string, p *system.Platform) []string {
	vendor := system.Unknown
	if p != nil {
		vendor = p.Vendor
	}
	if vendor == system.Unknown {
		logrus.WithField("vendor_id", vendorID(p)).Warn("Unrecognized CPU vendor, installing Intel microcode")
	}

	packages := make([]string, 0, len(base)+1)
	packages = append(packages, base...)

	return append(packages, vendor.MicrocodePackage())
}

func vendorID(p *system.Platform) string {
	if p == nil {
		return ""
	}
	return p.VendorID
}

// Bootstrap installs the packages into the new root.
func Bootstrap(ctx context.Context, s Scripts, root string, packages []string, out io.Writer) error {
	logrus.WithFields(logrus.Fields{
		"root":     root,
		"packages": packages,
	}).Info("Bootstrapping system...")

	return s.Pacstrap(ctx, root, packages, out)
}

// WriteFstab generates the filesystem table of the new root, writes it to its etc/fstab and echoes it to out.
func WriteFstab(ctx context.Context, s Scripts, fs afero.Fs, root string, out io.Writer) error {
	table, err := s.Genfstab(ctx, root)
	if err != nil {
		return err
	}

	path := filepath.Join(root, fstabPath)
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("bootstrap: failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := afero.WriteFile(fs, path, []byte(table), 0644); err != nil {
		return fmt.Errorf("bootstrap: failed to write fstab: %w", err)
	}
	logrus.WithField("path", path).Info("Wrote fstab")

	_, err = io.WriteString(out, table)
	return err
}
