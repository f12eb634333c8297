// Package hardware audits the device the mapper runs on. The result is shown
// to the user and interpolated into the activation log.
package hardware

import (
	"cmp"
	"fmt"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
)

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "hardware").Logger()

const (
	UnknownAndroid     = "Android Custom / PC"
	DefaultGPUVendor   = "Generic"
	DefaultGPURenderer = "Default Renderer"
	DefaultRefreshRate = 60

	snapdragonPlatform = "Linux armv8l"
	snapdragonName     = "Snapdragon Powered Device"
	genericName        = "Generic Android Device"
)

var androidRe = regexp.MustCompile(`Android\s([0-9.]+)`)

// Device is a snapshot of the host hardware.
type Device struct {
	CPUCores       int    `json:"cpuCores"`
	GPURenderer    string `json:"gpuRenderer"`
	GPUVendor      string `json:"gpuVendor"`
	AndroidVersion string `json:"androidVersion"`
	DeviceName     string `json:"deviceName"`
	RefreshRate    int    `json:"refreshRate"`
	RAMEstimate    string `json:"ramEstimate,omitempty"`
}

// Hints carries what the client reports about itself. Empty fields are
// filled from the host.
type Hints struct {
	UserAgent   string `json:"userAgent"`
	Platform    string `json:"platform"`
	GPUVendor   string `json:"gpuVendor"`
	GPURenderer string `json:"gpuRenderer"`
	RefreshRate int    `json:"refreshRate"`
}

// Probe builds a Device from the client hints and the host. It never fails:
// anything that cannot be detected falls back to a generic value.
func Probe(h Hints, logger *zerolog.Logger) Device {
	if logger == nil {
		logger = &defaultLogger
	}

	d := Device{
		CPUCores:       runtime.NumCPU(),
		GPUVendor:      cmp.Or(h.GPUVendor, DefaultGPUVendor),
		GPURenderer:    cmp.Or(h.GPURenderer, DefaultGPURenderer),
		AndroidVersion: ParseAndroidVersion(h.UserAgent),
		RefreshRate:    h.RefreshRate,
	}
	if d.CPUCores <= 0 {
		d.CPUCores = 8
	}
	if d.RefreshRate <= 0 {
		d.RefreshRate = DefaultRefreshRate
	}

	platform := h.Platform
	if platform == "" {
		p, err := hostPlatform()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to read host platform")
		}
		platform = p
	}
	d.DeviceName = genericName
	if platform == snapdragonPlatform {
		d.DeviceName = snapdragonName
	}

	ram, err := totalMemory()
	if err != nil {
		logger.Debug().Err(err).Msg("memory size unavailable")
	} else {
		d.RAMEstimate = formatRAM(ram)
	}

	logger.Info().
		Int("cores", d.CPUCores).
		Str("android", d.AndroidVersion).
		Str("device", d.DeviceName).
		Str("ram", d.RAMEstimate).
		Msg("hardware audited")
	return d
}

// ParseAndroidVersion extracts "Android <version>" from a user agent string.
func ParseAndroidVersion(ua string) string {
	m := androidRe.FindStringSubmatch(ua)
	if m == nil {
		return UnknownAndroid
	}
	return "Android " + m[1]
}

// AndroidSemver returns the Android release as a semantic version. Devices
// without a recognizable release report an error.
func (d Device) AndroidSemver() (*semver.Version, error) {
	v, ok := strings.CutPrefix(d.AndroidVersion, "Android ")
	if !ok || d.AndroidVersion == UnknownAndroid {
		return nil, fmt.Errorf("no android release in %q", d.AndroidVersion)
	}
	sv, err := semver.NewVersion(strings.TrimSuffix(v, "."))
	if err != nil {
		return nil, fmt.Errorf("failed to parse android release %q: %w", v, err)
	}
	return sv, nil
}

// formatRAM rounds a byte count up to whole gigabytes.
func formatRAM(bytes uint64) string {
	const gib = 1 << 30
	return fmt.Sprintf("%d GB", (bytes+gib-1)/gib)
}
