// Package system provides the functionality necessary for identifying the machine archstrap runs on.
package system

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

const (
	// cpuinfoPath is the path to the kernel's processor information.
	cpuinfoPath = "/proc/cpuinfo"

	// efiFirmwarePath only exists when the kernel was booted by UEFI firmware.
	efiFirmwarePath = "/sys/firmware/efi"

	// vendorIDKey is the cpuinfo field holding the processor vendor.
	vendorIDKey = "vendor_id"
)

// System correlates the raw processor information with a Platform.
type System struct {
	platform *Platform
}

func (sys *System) Platform() *Platform {
	return sys.platform
}

// Scan reads the processor and firmware information of the running system.
func Scan() (*System, error) {
	return ScanFs(afero.NewOsFs())
}

// ScanFs reads the processor and firmware information from the given filesystem.
func ScanFs(fs afero.Fs) (*System, error) {
	vendorID, err := readVendorID(fs)
	if err != nil {
		return nil, err
	}

	firmware := BIOS
	if exists, _ := afero.DirExists(fs, efiFirmwarePath); exists {
		firmware = UEFI
	}

	system := &System{
		platform: &Platform{
			Vendor:   vendorFromID(vendorID),
			VendorID: vendorID,
			Firmware: firmware,
		},
	}

	return system, nil
}

// readVendorID opens cpuinfo and returns the first vendor_id value.
func readVendorID(fs afero.Fs) (string, error) {
	f, err := fs.Open(cpuinfoPath)
	if err != nil {
		return "", fmt.Errorf("system: cannot read cpu information: %w", err)
	}
	defer f.Close()

	return decodeVendorID(f)
}

// decodeVendorID scans cpuinfo formatted data for the vendor_id field. Missing fields yield an empty string, not an
// error, since some architectures do not report one.
func decodeVendorID(reader io.Reader) (string, error) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		kv := strings.SplitN(scanner.Text(), ":", 2)
		if len(kv) < 2 {
			continue
		}
		if strings.TrimSpace(kv[0]) == vendorIDKey {
			return strings.TrimSpace(kv[1]), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("system: failed to scan cpu information: %w", err)
	}

	return "", nil
}
