package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/archstrap/archstrap/internal/util"
)

// ErrUnrecognisedLabel identifies a disk that carries no partition table at all.
var ErrUnrecognisedLabel = errors.New("unrecognised disk label")

// UtilImpl outlines the functionality necessary for wrapping the Linux storage tools. The methods are named after
// the operation they perform and return the raw output of the tool where there is one.
type UtilImpl interface {
	// Probe returns the partition summary printed by partprobe for the disk.
	Probe(ctx context.Context, disk string) (string, error)
	// List returns the lsblk JSON device tree for the disk.
	List(ctx context.Context, disk string) (string, error)
	// Wipe erases all filesystem, RAID and partition table signatures from the disk.
	Wipe(ctx context.Context, disk string) (string, error)
	// ApplyTable writes the sfdisk script read from table onto the disk.
	ApplyTable(ctx context.Context, disk string, table io.Reader) error
	// Settle waits for udev to finish processing device events.
	Settle(ctx context.Context) (string, error)
	// FormatFAT creates a FAT32 filesystem on the device.
	FormatFAT(ctx context.Context, device string) error
	// FormatBtrfs creates a btrfs filesystem on the device, overwriting any existing one.
	FormatBtrfs(ctx context.Context, device string) error
	// CreateSubvolume creates a btrfs subvolume at path.
	CreateSubvolume(ctx context.Context, path string) (string, error)
	// Mount mounts the device at target with the given mount options.
	Mount(ctx context.Context, device, target string, options []string) (string, error)
	// Unmount unmounts target.
	Unmount(ctx context.Context, target string) (string, error)
}

// StorageCmd provides the implementation for the UtilImpl interface. Long running tools have their output
// streamed to Streams so the operator can follow them.
type StorageCmd struct {
	Streams util.Streams
}

// Probe uses partprobe in dry-run mode to print a summary of the disk's partitions.
//   - -d - don't update the kernel
//   - -s - print a summary of the devices and partitions
func (s *StorageCmd) Probe(ctx context.Context, disk string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"partprobe", "-d", "-s", disk}, nil, nil)
	if err != nil {
		if strings.Contains(cmdOut.Stderr, ErrUnrecognisedLabel.Error()) {
			return "", fmt.Errorf("storage: %s: %w", disk, ErrUnrecognisedLabel)
		}
		return cmdOut.Stdout, fmt.Errorf("storage: failed to probe disk, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// List uses lsblk to print the device tree for the disk in JSON with sizes in bytes.
func (s *StorageCmd) List(ctx context.Context, disk string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, listCommand(disk), nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to list block devices, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// Wipe uses wipefs to erase every signature on the disk.
func (s *StorageCmd) Wipe(ctx context.Context, disk string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"wipefs", "-a", disk}, nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to wipe disk, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// ApplyTable feeds the partition table script to sfdisk.
func (s *StorageCmd) ApplyTable(ctx context.Context, disk string, table io.Reader) error {
	if err := util.StreamCommand(ctx, []string{"sfdisk", disk}, s.Streams, table); err != nil {
		return fmt.Errorf("storage: failed to apply partition table: %w", err)
	}

	return nil
}

// Settle uses udevadm to wait until the partition device nodes exist.
func (s *StorageCmd) Settle(ctx context.Context) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"udevadm", "settle"}, nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to settle udev, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// FormatFAT uses mkfs.fat to create a FAT32 filesystem.
func (s *StorageCmd) FormatFAT(ctx context.Context, device string) error {
	if err := util.StreamCommand(ctx, []string{"mkfs.fat", "-F", "32", device}, s.Streams, nil); err != nil {
		return fmt.Errorf("storage: failed to format %s: %w", device, err)
	}

	return nil
}

// FormatBtrfs uses mkfs.btrfs to create a btrfs filesystem.
//   - -f - overwrite any existing filesystem
func (s *StorageCmd) FormatBtrfs(ctx context.Context, device string) error {
	if err := util.StreamCommand(ctx, []string{"mkfs.btrfs", "-f", device}, s.Streams, nil); err != nil {
		return fmt.Errorf("storage: failed to format %s: %w", device, err)
	}

	return nil
}

// CreateSubvolume uses the btrfs subvolume verb to create a subvolume.
func (s *StorageCmd) CreateSubvolume(ctx context.Context, path string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"btrfs", "subvolume", "create", path}, nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to create subvolume, stderr: [%s]: %w", cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// Mount uses mount to attach the device at target.
func (s *StorageCmd) Mount(ctx context.Context, device, target string, options []string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, mountCommand(device, target, options), nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to mount %s on %s, stderr: [%s]: %w", device, target, cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// Unmount uses umount to detach target.
func (s *StorageCmd) Unmount(ctx context.Context, target string) (string, error) {
	cmdOut, err := util.ExecuteCommand(ctx, []string{"umount", target}, nil, nil)
	if err != nil {
		return cmdOut.Stdout, fmt.Errorf("storage: failed to unmount %s, stderr: [%s]: %w", target, cmdOut.Stderr, err)
	}

	return cmdOut.Stdout, nil
}

// listCommand builds the lsblk invocation.
//   - -J - JSON output
//   - -b - sizes in bytes
//   - -o - only the columns types.BlockDevice decodes
func listCommand(disk string) []string {
	return []string{"lsblk", "-J", "-b", "-o", "NAME,PATH,SIZE,TYPE", disk}
}

// mountCommand builds the mount invocation, options are joined into a single -o argument.
func mountCommand(device, target string, options []string) []string {
	args := []string{"mount"}
	if len(options) > 0 {
		args = append(args, "-o", strings.Join(options, ","))
	}
	return append(args, device, target)
}
