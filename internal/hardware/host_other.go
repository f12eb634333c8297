//go:build !linux

package hardware

import (
	"errors"
	"runtime"
)

func hostPlatform() (string, error) {
	return runtime.GOOS + " " + runtime.GOARCH, nil
}

func totalMemory() (uint64, error) {
	return 0, errors.New("memory size is only read on linux")
}
