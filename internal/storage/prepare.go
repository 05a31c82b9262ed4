package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/archstrap/archstrap/internal/storage/identifier"
	"github.com/archstrap/archstrap/internal/storage/types"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const (
	// efiMountPoint is where the EFI partition is mounted below the new root.
	efiMountPoint = "efi"

	// subvolOption selects the subvolume a btrfs mount attaches.
	subvolOption = "subvol="
)

// ErrDeclined identifies an overwrite the operator refused. Nothing on the disk has been changed when it is returned.
var ErrDeclined = errors.New("overwrite declined")

// ConfirmFunc asks the operator whether the partitioned disk may be overwritten.
type ConfirmFunc func(disk string) (bool, error)

// Partitions holds the device paths of the two partitions the partition table creates.
type Partitions struct {
	EFI  string
	Root string
}

// PrepareDisk replaces the partition table of the disk by performing the following operations:
//  1. Probe the disk for an existing partition table or partitions.
//  2. If there are any, ask for confirmation and wipe every signature on the disk. A refusal returns ErrDeclined.
//  3. Apply the partition table.
func PrepareDisk(ctx context.Context, s Storage, disk string, confirm ConfirmFunc, table io.Reader) error {
	logrus.WithField("disk", disk).Info("Checking disk for existing partitions...")
	partitioned, err := s.HasPartitions(ctx, disk)
	if err != nil {
		return fmt.Errorf("unable to probe disk: %w", err)
	}

	if partitioned {
		ok, err := confirm(disk)
		if err != nil {
			return err
		}
		if !ok {
			return ErrDeclined
		}

		logrus.WithField("disk", disk).Info("Wiping disk signatures...")
		if err := s.Wipe(ctx, disk); err != nil {
			return fmt.Errorf("unable to wipe disk: %w", err)
		}
	}

	logrus.WithField("disk", disk).Info("Partitioning disk...")
	if err := s.Partition(ctx, disk, table); err != nil {
		return fmt.Errorf("unable to partition disk: %w", err)
	}

	return nil
}

// DetectPartitions reads the device tree of the disk and returns the first reported partition as the EFI
// partition and the second as the root partition.
func DetectPartitions(ctx context.Context, s Storage, disk string) (*Partitions, error) {
	devices, err := s.BlockDevices(ctx, disk)
	if err != nil {
		return nil, fmt.Errorf("unable to list partitions: %w", err)
	}

	children, err := devices.Partitions()
	if err != nil {
		return nil, err
	}
	if len(children) < 2 {
		return nil, fmt.Errorf("expected 2 partitions on %s, found %d", disk, len(children))
	}

	parts := &Partitions{
		EFI:  identifier.DevicePath(children[0].Name),
		Root: identifier.DevicePath(children[1].Name),
	}
	logrus.WithFields(logrus.Fields{
		"efi":       parts.EFI,
		"efi_size":  humanize.IBytes(uint64(children[0].Size)),
		"root":      parts.Root,
		"root_size": humanize.IBytes(uint64(children[1].Size)),
	}).Info("Detected partitions")

	return parts, nil
}

// Format creates the EFI and root filesystems, overwriting whatever the partitions held.
func Format(ctx context.Context, s Storage, parts *Partitions) error {
	logrus.WithField("device", parts.EFI).Info("Formatting EFI partition...")
	if err := s.FormatEFI(ctx, parts.EFI); err != nil {
		return err
	}

	logrus.WithField("device", parts.Root).Info("Formatting root partition...")
	if err := s.FormatRoot(ctx, parts.Root); err != nil {
		return err
	}

	return nil
}

// CreateSubvolumes mounts the root partition at mountRoot, creates one subvolume per layout entry and unmounts it
// again.
func CreateSubvolumes(ctx context.Context, s Storage, root, mountRoot string, layout Layout) error {
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("invalid subvolume layout: %w", err)
	}

	if err := s.Mount(ctx, root, mountRoot, nil); err != nil {
		return err
	}

	for _, sv := range layout {
		if err := s.CreateSubvolume(ctx, filepath.Join(mountRoot, sv.Label)); err != nil {
			if unmountErr := s.Unmount(ctx, mountRoot); unmountErr != nil {
				logrus.WithError(unmountErr).Warn("Unable to unmount root partition")
			}
			return err
		}
		logrus.WithField("subvolume", sv.Label).Info("Created subvolume")
	}

	return s.Unmount(ctx, mountRoot)
}

// MountSubvolumes mounts every subvolume of the layout, in order, at its mount point below mountRoot. Missing
// mount point directories are created on fs first.
func MountSubvolumes(ctx context.Context, s Storage, fs afero.Fs, root, mountRoot string, layout Layout, options []string) error {
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("invalid subvolume layout: %w", err)
	}

	for _, sv := range layout {
		target := sv.Target(mountRoot)
		if err := fs.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("unable to create mount point %s: %w", target, err)
		}

		if err := s.Mount(ctx, root, target, SubvolumeOptions(sv, options)); err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"subvolume": sv.Label,
			"target":    target,
		}).Info("Mounted subvolume")
	}

	return nil
}

// MountEFI mounts the EFI partition at the efi directory of the new root.
func MountEFI(ctx context.Context, s Storage, fs afero.Fs, efi, mountRoot string) error {
	target := filepath.Join(mountRoot, efiMountPoint)
	if err := fs.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("unable to create mount point %s: %w", target, err)
	}

	if err := s.Mount(ctx, efi, target, nil); err != nil {
		return err
	}
	logrus.WithFields(logrus.Fields{
		"device": efi,
		"target": target,
	}).Info("Mounted EFI partition")

	return nil
}

// SubvolumeOptions returns the mount options selecting the subvolume followed by the extra options.
func SubvolumeOptions(sv Subvolume, extra []string) []string {
	return append([]string{subvolOption + sv.Label}, extra...)
}

// Describe returns the partitions of a decoded device tree in a form fit for operator output.
func Describe(devices *types.BlockDevices) []string {
	var lines []string
	for _, dev := range devices.BlockDevices {
		lines = append(lines, fmt.Sprintf("%s %s %s", identifier.DevicePath(dev.Name), dev.Type, humanize.IBytes(uint64(dev.Size))))
		for _, child := range dev.Children {
			lines = append(lines, fmt.Sprintf("  %s %s %s", identifier.DevicePath(child.Name), child.Type, humanize.IBytes(uint64(child.Size))))
		}
	}

	return lines
}
