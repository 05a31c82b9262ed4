package identifier

import (
	"path/filepath"
	"strings"
)

// devDir is the directory holding device nodes.
const devDir = "/dev"

// DevicePath builds the device node path for a kernel device name (e.g. sda1 or nvme0n1p1).
func DevicePath(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return filepath.Join(devDir, filepath.Base(name))
}
