package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// BlockDevices mirrors the output format of the command "lsblk -J -b" to store a device tree.
type BlockDevices struct {
	BlockDevices []BlockDevice `json:"blockdevices"`
}

// BlockDevice stores relevant information about a disk or partition as reported by lsblk.
type BlockDevice struct {
	Name     string        `json:"name"`
	Path     string        `json:"path,omitempty"`
	Size     Size          `json:"size"`
	Type     string        `json:"type"`
	Children []BlockDevice `json:"children,omitempty"`
}

// Partitions returns the children of the first reported device, in the order lsblk reported them.
func (b *BlockDevices) Partitions() ([]BlockDevice, error) {
	if len(b.BlockDevices) == 0 {
		return nil, errors.New("no block devices reported")
	}

	return b.BlockDevices[0].Children, nil
}

// Size is a byte count. lsblk reports sizes as JSON numbers when run with --bytes on current
// util-linux releases and as strings on older ones, so both forms are accepted.
type Size uint64

// UnmarshalJSON provides the implementation for json.Unmarshaler.
func (s *Size) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = 0
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not a string, decode it as a number
		raw = string(data)
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid size %s: %w", data, err)
	}
	*s = Size(v)

	return nil
}

// ProbeResult stores the partition summary of a disk as printed by "partprobe -d -s".
type ProbeResult struct {
	// Table is the partition table type (e.g. gpt, msdos), empty when the disk has no label.
	Table string
	// Partitions lists the partition numbers in the order they were reported.
	Partitions []int
}

// HasPartitions reports whether the disk carries any partition structure, either a partition table or
// at least one partition.
func (p *ProbeResult) HasPartitions() bool {
	return p.Table != "" || len(p.Partitions) > 0
}
