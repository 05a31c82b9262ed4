package system

import (
	"fmt"
	"strings"
)

// Vendor is used to define CPU vendors in an enumerated constant (e.g. Intel, AMD).
type Vendor uint8

const (
	Unknown Vendor = iota
	Intel
	AMD
)

const (
	// amdVendorID is the vendor_id reported by AMD processors in /proc/cpuinfo.
	amdVendorID = "AuthenticAMD"
	// intelVendorID is the vendor_id reported by Intel processors in /proc/cpuinfo.
	intelVendorID = "GenuineIntel"

	amdMicrocode   = "amd-ucode"
	intelMicrocode = "intel-ucode"
)

func (v Vendor) String() string {
	switch v {
	case Intel:
		return "Intel"
	case AMD:
		return "AMD"
	default:
		return "unknown"
	}
}

// MicrocodePackage returns the microcode package to bootstrap for the vendor. Only AMD processors get amd-ucode,
// every other vendor (including Unknown) falls back to intel-ucode.
func (v Vendor) MicrocodePackage() string {
	if v == AMD {
		return amdMicrocode
	}
	return intelMicrocode
}

// vendorFromID identifies the Vendor from the raw vendor_id string.
func vendorFromID(id string) Vendor {
	switch {
	case strings.Contains(id, amdVendorID):
		return AMD
	case strings.Contains(id, intelVendorID):
		return Intel
	default:
		return Unknown
	}
}

// Firmware identifies how the live system was booted.
type Firmware uint8

const (
	BIOS Firmware = iota
	UEFI
)

func (f Firmware) String() string {
	if f == UEFI {
		return "UEFI"
	}
	return "BIOS"
}

// Platform identifies the processor and firmware of the machine being installed.
type Platform struct {
	Vendor
	// VendorID is the raw vendor_id value as reported by the kernel.
	VendorID string
	Firmware Firmware
}

func (p Platform) String() string {
	return fmt.Sprintf("%s CPU (%q), %s firmware", p.Vendor, p.VendorID, p.Firmware)
}
