package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/archstrap/archstrap/internal/storage/types"
)

// Decoder outlines the functionality necessary for decoding the output of the Linux storage tools.
type Decoder interface {
	DecodeBlockDevices(reader io.Reader) (*types.BlockDevices, error)
	DecodeProbe(reader io.Reader) (*types.ProbeResult, error)
}

// CommandDecoder is an empty struct that provides the implementation for the Decoder interface.
type CommandDecoder struct{}

// DecodeBlockDevices takes the raw JSON printed by lsblk and decodes it into a new BlockDevices struct.
func (d *CommandDecoder) DecodeBlockDevices(reader io.Reader) (*types.BlockDevices, error) {
	devices := &types.BlockDevices{}
	if err := json.NewDecoder(reader).Decode(devices); err != nil {
		return nil, fmt.Errorf("storage: failed to decode lsblk output: %w", err)
	}

	return devices, nil
}

var (
	// probeSummaryRegexp matches a partprobe summary line such as "/dev/sda: gpt partitions 1 2".
	probeSummaryRegexp = regexp.MustCompile(`^\S+:\s+(\S+)\s+partitions\b(.*)$`)
	// partitionNumberRegexp matches partition numbers, including extended ones printed as "<5 6>".
	partitionNumberRegexp = regexp.MustCompile(`[0-9]+`)
)

// DecodeProbe takes the summary printed by "partprobe -d -s" and decodes the partition table type and the listed
// partition numbers. Empty output decodes into an empty ProbeResult.
func (d *CommandDecoder) DecodeProbe(reader io.Reader) (*types.ProbeResult, error) {
	result := &types.ProbeResult{}

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		matches := probeSummaryRegexp.FindStringSubmatch(scanner.Text())
		if matches == nil {
			continue
		}

		result.Table = matches[1]
		for _, raw := range partitionNumberRegexp.FindAllString(matches[2], -1) {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("storage: invalid partition number %q: %w", raw, err)
			}
			result.Partitions = append(result.Partitions, n)
		}
		break
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage: failed to read partprobe output: %w", err)
	}

	return result, nil
}
