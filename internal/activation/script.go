package activation

import (
	"regexp"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/mapping"
)

const (
	stepPrefix    = ">> "
	defaultTweaks = 16450
)

var (
	minAndroid  = semver.MustParse("11.0.0")
	pairingCode = regexp.MustCompile(`^[0-9]{6}$`)
)

type message struct {
	id   string
	data map[string]any
}

type step struct {
	message
	delay time.Duration
}

// script is a banner line followed by steps, each shown after its delay.
// status is the outcome once every step has been shown. Flows refused up
// front consist of the banner alone.
type script struct {
	banner message
	steps  []step
	status mapping.ActivationStatus
	method mapping.ActivationMethod
}

func at(id string, delay time.Duration, data map[string]any) step {
	return step{message: message{id: id, data: data}, delay: delay}
}

func shizukuScript(req Request) script {
	d := req.Device
	s := script{
		banner: message{id: "binder_start"},
		method: mapping.MethodShizuku,
	}
	if fail, ok := androidGate(d); ok {
		s.banner = fail
		s.status = mapping.StatusError
		return s
	}

	tweaks := req.Tweaks
	if tweaks == 0 {
		tweaks = defaultTweaks
	}
	s.steps = []step{
		at("adb_granted", 600*time.Millisecond, nil),
		at("kernel_checked", 500*time.Millisecond, map[string]any{"Android": d.AndroidVersion}),
		at("gpu_optimized", 700*time.Millisecond, map[string]any{"GPU": d.GPURenderer}),
		at("input_driver", 800*time.Millisecond, nil),
		at("tweaks_applied", 700*time.Millisecond, map[string]any{"Tweaks": tweaks}),
		at("hid_handshake", 500*time.Millisecond, nil),
		at("ready", 400*time.Millisecond, nil),
	}
	s.status = mapping.StatusActive
	return s
}

func wirelessScript(req Request) script {
	d := req.Device
	s := script{
		banner: message{id: "wireless_start"},
		method: mapping.MethodWirelessDebug,
	}
	if !pairingCode.MatchString(req.PairingCode) {
		s.banner = message{id: "pairing_required"}
		s.status = mapping.StatusPairingRequired
		return s
	}
	if fail, ok := androidGate(d); ok {
		s.banner = fail
		s.status = mapping.StatusError
		return s
	}

	s.steps = []step{
		at("pairing", 700*time.Millisecond, map[string]any{"Code": req.PairingCode}),
		at("adb_connected", 600*time.Millisecond, nil),
		at("kernel_checked", 500*time.Millisecond, map[string]any{"Android": d.AndroidVersion}),
		at("hid_handshake", 500*time.Millisecond, nil),
		at("ready", 400*time.Millisecond, nil),
	}
	s.status = mapping.StatusActive
	return s
}

// androidGate returns the refusal message for releases older than Android 11.
// Devices without a recognizable release are let through.
func androidGate(d hardware.Device) (message, bool) {
	v, err := d.AndroidSemver()
	if err != nil || !v.LessThan(minAndroid) {
		return message{}, false
	}
	return message{id: "android_unsupported", data: map[string]any{"Android": d.AndroidVersion}}, true
}
