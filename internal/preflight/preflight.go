// Package preflight checks that the live system can run an install.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/archstrap/archstrap/internal/system"
	"github.com/archstrap/archstrap/internal/util"

	"github.com/Masterminds/semver"
	"github.com/sirupsen/logrus"
)

// RequiredTools are the commands an install invokes on the live system.
var RequiredTools = []string{
	"partprobe", "wipefs", "sfdisk", "udevadm", "lsblk",
	"mkfs.fat", "mkfs.btrfs", "btrfs", "mount", "umount",
	"pacstrap", "genfstab", "arch-chroot",
}

// minimumBtrfsProgs is the oldest btrfs-progs release archstrap is known to work with.
const minimumBtrfsProgs = ">= 5.15"

// btrfsVersionRegexp matches the version in "mkfs.btrfs, part of btrfs-progs v6.8.1".
var btrfsVersionRegexp = regexp.MustCompile(`v([0-9]+(\.[0-9]+)*)`)

// Severity ranks the outcome of a check.
type Severity uint8

const (
	OK Severity = iota
	Warning
	Failure
)

func (s Severity) String() string {
	switch s {
	case OK:
		return "ok"
	case Warning:
		return "warning"
	default:
		return "failed"
	}
}

// Result is the outcome of a single check.
type Result struct {
	Name     string
	Severity Severity
	Detail   string
}

// Checker runs the preflight checks. The function fields default to the live system when nil.
type Checker struct {
	Platform *system.Platform

	Euid         func() int
	LookPath     func(file string) (string, error)
	BtrfsVersion func(ctx context.Context) (string, error)
}

// Run performs every check and returns their results in a stable order.
func (c *Checker) Run(ctx context.Context) []Result {
	results := []Result{
		c.checkRoot(),
		c.checkFirmware(),
		c.checkVendor(),
		c.checkTools(),
		c.checkBtrfsProgs(ctx),
	}

	for _, r := range results {
		entry := logrus.WithFields(logrus.Fields{"check": r.Name, "detail": r.Detail})
		switch r.Severity {
		case OK:
			entry.Debug("Preflight check passed")
		case Warning:
			entry.Warn("Preflight check warning")
		default:
			entry.Error("Preflight check failed")
		}
	}

	return results
}

// Err returns an error naming every failed check, nil when none failed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if r.Severity == Failure {
			failed = append(failed, fmt.Sprintf("%s (%s)", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}

	return fmt.Errorf("preflight checks failed: %s", strings.Join(failed, ", "))
}

func (c *Checker) checkRoot() Result {
	euid := os.Geteuid
	if c.Euid != nil {
		euid = c.Euid
	}

	if euid() != 0 {
		return Result{Name: "root", Severity: Failure, Detail: "root privileges required, re-run with sudo"}
	}
	return Result{Name: "root", Severity: OK, Detail: "running as root"}
}

func (c *Checker) checkFirmware() Result {
	if c.Platform == nil {
		return Result{Name: "firmware", Severity: Failure, Detail: "platform unknown"}
	}
	if c.Platform.Firmware != system.UEFI {
		return Result{Name: "firmware", Severity: Failure, Detail: "booted in BIOS mode, the bootloader install needs UEFI"}
	}
	return Result{Name: "firmware", Severity: OK, Detail: c.Platform.Firmware.String()}
}

func (c *Checker) checkVendor() Result {
	if c.Platform == nil || c.Platform.Vendor == system.Unknown {
		vendorID := ""
		if c.Platform != nil {
			vendorID = c.Platform.VendorID
		}
		return Result{
			Name:     "microcode",
			Severity: Warning,
			Detail:   fmt.Sprintf("unrecognized CPU vendor %q, %s will be installed", vendorID, system.Unknown.MicrocodePackage()),
		}
	}

	return Result{
		Name:     "microcode",
		Severity: OK,
		Detail:   fmt.Sprintf("%s CPU, %s", c.Platform.Vendor, c.Platform.MicrocodePackage()),
	}
}

func (c *Checker) checkTools() Result {
	lookPath := exec.LookPath
	if c.LookPath != nil {
		lookPath = c.LookPath
	}

	var missing []string
	for _, tool := range RequiredTools {
		if _, err := lookPath(tool); err != nil {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return Result{Name: "tools", Severity: Failure, Detail: "missing " + strings.Join(missing, ", ")}
	}

	return Result{Name: "tools", Severity: OK, Detail: fmt.Sprintf("%d tools found", len(RequiredTools))}
}

func (c *Checker) checkBtrfsProgs(ctx context.Context) Result {
	btrfsVersion := mkfsBtrfsVersion
	if c.BtrfsVersion != nil {
		btrfsVersion = c.BtrfsVersion
	}

	out, err := btrfsVersion(ctx)
	if err != nil {
		return Result{Name: "btrfs-progs", Severity: Warning, Detail: fmt.Sprintf("unable to determine version: %v", err)}
	}

	version, err := parseBtrfsVersion(out)
	if err != nil {
		return Result{Name: "btrfs-progs", Severity: Warning, Detail: err.Error()}
	}

	constraint, err := semver.NewConstraint(minimumBtrfsProgs)
	if err != nil {
		return Result{Name: "btrfs-progs", Severity: Warning, Detail: err.Error()}
	}
	if !constraint.Check(version) {
		return Result{
			Name:     "btrfs-progs",
			Severity: Warning,
			Detail:   fmt.Sprintf("version %s does not satisfy %s", version, minimumBtrfsProgs),
		}
	}

	return Result{Name: "btrfs-progs", Severity: OK, Detail: "version " + version.String()}
}

// parseBtrfsVersion extracts the semantic version from the mkfs.btrfs version banner.
func parseBtrfsVersion(out string) (*semver.Version, error) {
	matches := btrfsVersionRegexp.FindStringSubmatch(out)
	if matches == nil {
		return nil, errors.New("no version in mkfs.btrfs output")
	}

	version, err := semver.NewVersion(matches[1])
	if err != nil {
		return nil, fmt.Errorf("invalid btrfs-progs version %q: %w", matches[1], err)
	}

	return version, nil
}

func mkfsBtrfsVersion(ctx context.Context) (string, error) {
	out, err := util.ExecuteCommand(ctx, []string{"mkfs.btrfs", "--version"}, nil, nil)
	if err != nil {
		return "", err
	}

	return out.Stdout, nil
}
