package storage

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/c2h5oh/datasize"
)

//go:embed templates/partitioning.sfdisk
var templates embed.FS

// MinimumEFISize is the smallest EFI partition that still holds a valid FAT32 filesystem.
const MinimumEFISize = 32 * datasize.MB

// Subvolume pairs a btrfs subvolume label with the path it is mounted at, relative to the new root.
type Subvolume struct {
	Label      string
	MountPoint string
}

// Layout is the ordered list of subvolumes. Subvolumes are created and mounted in list order.
type Layout []Subvolume

// DefaultLayout returns the subvolume layout archstrap installs.
func DefaultLayout() Layout {
	return Layout{
		{Label: "@", MountPoint: "/"},
		{Label: "@home", MountPoint: "/home"},
		{Label: "@snapshots", MountPoint: "/.snapshots"},
		{Label: "@var_log", MountPoint: "/var/log"},
		{Label: "@pkg", MountPoint: "/var/cache/pacman/pkg"},
	}
}

// Validate checks that the layout can be created and mounted in order: labels are unique plain names, mount
// points are unique absolute paths, the first entry is the root and no entry is mounted over an earlier one.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return errors.New("layout has no subvolumes")
	}
	if l[0].MountPoint != "/" {
		return fmt.Errorf("first subvolume %q must mount at /, not %q", l[0].Label, l[0].MountPoint)
	}

	labels := make(map[string]bool, len(l))
	mounts := make(map[string]bool, len(l))
	for i, sv := range l {
		if sv.Label == "" || strings.Contains(sv.Label, "/") {
			return fmt.Errorf("invalid subvolume label %q", sv.Label)
		}
		if labels[sv.Label] {
			return fmt.Errorf("duplicate subvolume label %q", sv.Label)
		}
		labels[sv.Label] = true

		if !path.IsAbs(sv.MountPoint) || path.Clean(sv.MountPoint) != sv.MountPoint {
			return fmt.Errorf("subvolume %q: mount point %q must be a clean absolute path", sv.Label, sv.MountPoint)
		}
		if mounts[sv.MountPoint] {
			return fmt.Errorf("duplicate mount point %q", sv.MountPoint)
		}
		mounts[sv.MountPoint] = true

		// Mounting over an earlier subvolume would hide it.
		for _, earlier := range l[:i] {
			if isAncestor(sv.MountPoint, earlier.MountPoint) {
				return fmt.Errorf("subvolume %q at %q must be mounted before %q at %q",
					sv.Label, sv.MountPoint, earlier.Label, earlier.MountPoint)
			}
		}
	}

	return nil
}

// Target returns the absolute path the subvolume is mounted at below mountRoot.
func (sv Subvolume) Target(mountRoot string) string {
	return filepath.Join(mountRoot, sv.MountPoint)
}

// isAncestor reports whether dir strictly contains p.
func isAncestor(dir, p string) bool {
	if dir == p {
		return false
	}
	if dir == "/" {
		return true
	}
	return strings.HasPrefix(p, dir+"/")
}

// PartitionTable is the sfdisk script that lays out the EFI partition first and the root partition after it.
type PartitionTable struct {
	EFISize datasize.ByteSize
}

// ParsePartitionTable builds a PartitionTable with the given EFI partition size (e.g. "512MB").
func ParsePartitionTable(efiSize string) (*PartitionTable, error) {
	size, err := datasize.ParseString(efiSize)
	if err != nil {
		return nil, fmt.Errorf("invalid EFI size %q: %w", efiSize, err)
	}
	if size < MinimumEFISize {
		return nil, fmt.Errorf("EFI size %s is below the minimum of %s", size.HR(), MinimumEFISize.HR())
	}

	return &PartitionTable{EFISize: size}, nil
}

// EFISizeMiB is the EFI partition size rounded down to whole mebibytes, the unit sfdisk is given.
func (t *PartitionTable) EFISizeMiB() uint64 {
	return uint64(t.EFISize / datasize.MB)
}

// Render executes the bundled sfdisk template.
func (t *PartitionTable) Render() (string, error) {
	tmpl, err := template.ParseFS(templates, "templates/partitioning.sfdisk")
	if err != nil {
		return "", fmt.Errorf("storage: failed to parse partition template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, t); err != nil {
		return "", fmt.Errorf("storage: failed to render partition template: %w", err)
	}

	return buf.String(), nil
}
