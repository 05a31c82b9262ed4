// Package configure performs the configuration of the newly installed system.
package configure

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/archstrap/archstrap/internal/chroot"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	localtimePath   = "/etc/localtime"
	zoneinfoDir     = "/usr/share/zoneinfo"
	localeGenPath   = "/etc/locale.gen"
	localeConfPath  = "/etc/locale.conf"
	vconsolePath    = "/etc/vconsole.conf"
	hostnamePath    = "/etc/hostname"
	hostsPath       = "/etc/hosts"
	sudoersPath     = "/etc/sudoers"
	grubConfigPath  = "/boot/grub/grub.cfg"
	homeDir         = "/home"
	configFileMode  = 0644
	sudoersFileMode = 0440
)

// Configurator configures the new system. Files are written through Fs, which is rooted at the new system root,
// and commands run through Chroot.
type Configurator struct {
	Chroot chroot.Runner
	Fs     afero.Fs
}

// New creates a Configurator for the system mounted at root.
func New(runner chroot.Runner, fs afero.Fs, root string) *Configurator {
	return &Configurator{Chroot: runner, Fs: afero.NewBasePathFs(fs, root)}
}

// Timezone points the local time at the zone and syncs the hardware clock to the system time.
func (c *Configurator) Timezone(ctx context.Context, zone string) error {
	if zone == "" || strings.Contains(zone, "..") {
		return fmt.Errorf("invalid timezone %q", zone)
	}

	logrus.WithField("timezone", zone).Info("Setting timezone")
	if err := c.Chroot.Run(ctx, "ln", "-sf", path.Join(zoneinfoDir, zone), localtimePath); err != nil {
		return err
	}

	return c.Chroot.Run(ctx, "hwclock", "--systohc")
}

// Locale enables the locale in locale.gen, generates it and makes it and the keymap the system defaults.
func (c *Configurator) Locale(ctx context.Context, locale, keymap string) error {
	logrus.WithField("locale", locale).Info("Generating locale")
	if err := c.enableLocale(locale); err != nil {
		return err
	}
	if err := c.Chroot.Run(ctx, "locale-gen"); err != nil {
		return err
	}

	if err := c.writeFile(localeConfPath, fmt.Sprintf("LANG=%s\n", locale)); err != nil {
		return err
	}

	return c.writeFile(vconsolePath, fmt.Sprintf("KEYMAP=%s\n", keymap))
}

// enableLocale uncomments every locale.gen line whose first field is the locale.
func (c *Configurator) enableLocale(locale string) error {
	data, err := afero.ReadFile(c.Fs, localeGenPath)
	if err != nil {
		return fmt.Errorf("unable to read locale.gen: %w", err)
	}

	enabled, found := uncommentLocale(data, locale)
	if !found {
		return fmt.Errorf("locale %s is not listed in locale.gen", locale)
	}

	return c.writeFile(localeGenPath, string(enabled))
}

// uncommentLocale removes the leading comment marker of the lines defining the locale. Lines that are already
// enabled count as found.
func uncommentLocale(data []byte, locale string) ([]byte, bool) {
	var out bytes.Buffer
	found := false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if rest, ok := strings.CutPrefix(line, "#"); ok && definesLocale(rest, locale) {
			line = rest
			found = true
		} else if definesLocale(line, locale) {
			found = true
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}

	return out.Bytes(), found
}

// definesLocale reports whether the line is a locale definition of the locale. Indented lines are prose of the
// file header, not definitions.
func definesLocale(line, locale string) bool {
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return false
	}
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == locale
}

// Hostname writes the hostname and the hosts file resolving it locally.
func (c *Configurator) Hostname(hostname string) error {
	logrus.WithField("hostname", hostname).Info("Configuring hosts")
	if err := c.writeFile(hostnamePath, hostname+"\n"); err != nil {
		return err
	}

	return c.writeFile(hostsPath, Hosts(hostname))
}

// Hosts returns the hosts file content for the hostname.
func Hosts(hostname string) string {
	return fmt.Sprintf("127.0.0.1 localhost\n::1 localhost\n127.0.1.1 %s\n", hostname)
}

// User creates the user with a home directory and membership of group, then sets its password.
func (c *Configurator) User(ctx context.Context, user, password, group string) error {
	logrus.WithFields(logrus.Fields{"user": user, "group": group}).Info("Creating user")
	if err := c.Chroot.Run(ctx, "useradd", "-mG", group, user); err != nil {
		return err
	}

	// chpasswd reads "user:password" lines, the password never appears on a command line
	input := strings.NewReader(fmt.Sprintf("%s:%s\n", user, password))
	if err := c.Chroot.RunWithInput(ctx, input, "chpasswd"); err != nil {
		return fmt.Errorf("unable to set password for %s: %w", user, err)
	}

	return nil
}

// Bootloader installs GRUB for UEFI and generates its configuration.
func (c *Configurator) Bootloader(ctx context.Context, target, efiDirectory, bootloaderID string) error {
	logrus.WithField("target", target).Info("Installing bootloader")
	err := c.Chroot.Run(ctx, "grub-install",
		"--target", target,
		"--efi-directory", efiDirectory,
		"--bootloader-id", bootloaderID)
	if err != nil {
		return err
	}

	return c.Chroot.Run(ctx, "grub-mkconfig", "-o", grubConfigPath)
}

// Sudoers grants the group sudo rights and validates the resulting sudoers file.
func (c *Configurator) Sudoers(ctx context.Context, group string) error {
	f, err := c.Fs.OpenFile(sudoersPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, sudoersFileMode)
	if err != nil {
		return fmt.Errorf("unable to open sudoers: %w", err)
	}
	if _, err := io.WriteString(f, SudoersRule(group)); err != nil {
		f.Close()
		return fmt.Errorf("unable to write sudoers: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to write sudoers: %w", err)
	}

	logrus.WithField("group", group).Info("Granted sudo rights")
	return c.Chroot.Run(ctx, "visudo", "-c")
}

// SudoersRule returns the sudoers line granting the group full sudo rights.
func SudoersRule(group string) string {
	return fmt.Sprintf("%%%s ALL=(ALL:ALL) ALL\n", group)
}

// Services enables the systemd units.
func (c *Configurator) Services(ctx context.Context, services []string) error {
	for _, svc := range services {
		logrus.WithField("service", svc).Info("Enabling service")
		if err := c.Chroot.Run(ctx, "systemctl", "enable", svc); err != nil {
			return err
		}
	}

	return nil
}

// AURHelper builds and installs the AUR package as the user. The build directory in the user's home is removed
// afterwards, even when the build failed.
func (c *Configurator) AURHelper(ctx context.Context, user, helper, aurURL string) (err error) {
	dir := path.Join(homeDir, user, helper)
	repo := strings.TrimSuffix(aurURL, "/") + "/" + helper + ".git"

	logrus.WithFields(logrus.Fields{"helper": helper, "repository": repo}).Info("Building AUR helper")
	if err := c.Chroot.RunAs(ctx, user, "git", "clone", repo, dir); err != nil {
		return err
	}

	defer func() {
		if rmErr := c.Chroot.Run(ctx, "rm", "-rf", dir); rmErr != nil {
			logrus.WithError(rmErr).WithField("dir", dir).Warn("Unable to remove build directory")
			if err == nil {
				err = rmErr
			}
		}
	}()

	// makepkg refuses to run as root, sudo lets it install the built package after asking for the password
	return c.Chroot.Run(ctx, "sudo", "-u", user, "--", "makepkg", "--dir", dir, "-si")
}

// writeFile replaces the file below the new root.
func (c *Configurator) writeFile(name, content string) error {
	if err := afero.WriteFile(c.Fs, name, []byte(content), configFileMode); err != nil {
		return fmt.Errorf("unable to write %s: %w", name, err)
	}
	logrus.WithField("file", name).Debug("Wrote file")

	return nil
}
