//go:build linux

package hardware

import (
	"fmt"

	"github.com/prometheus/procfs"
	"golang.org/x/sys/unix"
)

// hostPlatform mirrors the browser's navigator.platform, e.g. "Linux armv8l".
func hostPlatform() (string, error) {
	var u unix.Utsname
	if err := unix.Uname(&u); err != nil {
		return "", fmt.Errorf("uname: %w", err)
	}
	return "Linux " + unix.ByteSliceToString(u.Machine[:]), nil
}

func totalMemory() (uint64, error) {
	fs, err := procfs.NewDefaultFS()
	if err != nil {
		return 0, fmt.Errorf("failed to open procfs: %w", err)
	}
	mi, err := fs.Meminfo()
	if err != nil {
		return 0, fmt.Errorf("failed to read meminfo: %w", err)
	}
	if mi.MemTotalBytes != nil {
		return *mi.MemTotalBytes, nil
	}
	if mi.MemTotal != nil {
		return *mi.MemTotal * 1024, nil
	}
	return 0, fmt.Errorf("meminfo has no MemTotal")
}
