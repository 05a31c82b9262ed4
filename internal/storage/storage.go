// Package storage provides the functionality necessary for partitioning, formatting and mounting the target disk
// with the Linux storage tools.
package storage

//go:generate mockgen -destination mocks/mock_storage.go github.com/archstrap/archstrap/internal/storage Storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/archstrap/archstrap/internal/storage/types"
	"github.com/archstrap/archstrap/internal/util"

	"github.com/sirupsen/logrus"
)

// Storage outlines the typed storage operations an install performs on the target disk.
type Storage interface {
	// HasPartitions reports whether the disk carries a partition table or partitions.
	HasPartitions(ctx context.Context, disk string) (bool, error)
	// Wipe erases every signature on the disk.
	Wipe(ctx context.Context, disk string) error
	// Partition applies the sfdisk script read from table and waits for the new device nodes.
	Partition(ctx context.Context, disk string, table io.Reader) error
	// BlockDevices fetches the decoded device tree for the disk.
	BlockDevices(ctx context.Context, disk string) (*types.BlockDevices, error)
	// FormatEFI creates the FAT32 filesystem of the EFI partition.
	FormatEFI(ctx context.Context, device string) error
	// FormatRoot creates the btrfs filesystem of the root partition.
	FormatRoot(ctx context.Context, device string) error
	// CreateSubvolume creates a btrfs subvolume at path.
	CreateSubvolume(ctx context.Context, path string) error
	// Mount mounts device at target with the given options.
	Mount(ctx context.Context, device, target string, options []string) error
	// Unmount unmounts target.
	Unmount(ctx context.Context, target string) error
}

// New creates the Storage implementation backed by the Linux storage tools. Long running tools stream their output
// to streams.
func New(streams util.Streams) Storage {
	return &linuxStorage{
		util: &StorageCmd{Streams: streams},
		dec:  &CommandDecoder{},
	}
}

// linuxStorage wires the raw UtilImpl output through a Decoder to provide the Storage interface.
type linuxStorage struct {
	util UtilImpl
	dec  Decoder
}

// Type assertion to ensure linuxStorage implements the Storage interface.
var _ Storage = (*linuxStorage)(nil)

func (s *linuxStorage) HasPartitions(ctx context.Context, disk string) (bool, error) {
	raw, err := s.util.Probe(ctx, disk)
	if errors.Is(err, ErrUnrecognisedLabel) {
		logrus.WithField("disk", disk).Debug("Disk has no partition table")
		return false, nil
	} else if err != nil {
		return false, err
	}

	probe, err := s.dec.DecodeProbe(strings.NewReader(raw))
	if err != nil {
		return false, err
	}
	logrus.WithFields(logrus.Fields{
		"disk":       disk,
		"table":      probe.Table,
		"partitions": probe.Partitions,
	}).Debug("Probed disk")

	return probe.HasPartitions(), nil
}

func (s *linuxStorage) Wipe(ctx context.Context, disk string) error {
	out, err := s.util.Wipe(ctx, disk)
	logrus.WithField("out", out).Debug("Wipe output")

	return err
}

func (s *linuxStorage) Partition(ctx context.Context, disk string, table io.Reader) error {
	if err := s.util.ApplyTable(ctx, disk, table); err != nil {
		return err
	}

	// The partition nodes normally appear on their own, settling only closes the race with lsblk.
	if _, err := s.util.Settle(ctx); err != nil {
		logrus.WithError(err).Warn("Unable to wait for udev, continuing")
	}

	return nil
}

func (s *linuxStorage) BlockDevices(ctx context.Context, disk string) (*types.BlockDevices, error) {
	raw, err := s.util.List(ctx, disk)
	if err != nil {
		return nil, err
	}

	return s.dec.DecodeBlockDevices(strings.NewReader(raw))
}

func (s *linuxStorage) FormatEFI(ctx context.Context, device string) error {
	return s.util.FormatFAT(ctx, device)
}

func (s *linuxStorage) FormatRoot(ctx context.Context, device string) error {
	return s.util.FormatBtrfs(ctx, device)
}

func (s *linuxStorage) CreateSubvolume(ctx context.Context, path string) error {
	out, err := s.util.CreateSubvolume(ctx, path)
	logrus.WithField("out", strings.TrimSpace(out)).Debug("Subvolume output")

	return err
}

func (s *linuxStorage) Mount(ctx context.Context, device, target string, options []string) error {
	_, err := s.util.Mount(ctx, device, target, options)

	return err
}

func (s *linuxStorage) Unmount(ctx context.Context, target string) error {
	_, err := s.util.Unmount(ctx, target)

	return err
}
