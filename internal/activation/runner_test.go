package activation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/mapping"
)

var epoch = time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

var pixel = hardware.Device{
	CPUCores:       8,
	GPURenderer:    "Adreno (TM) 730",
	GPUVendor:      "Qualcomm",
	AndroidVersion: "Android 13",
	DeviceName:     "Snapdragon Powered Device",
}

type outcome struct {
	res Result
	err error
}

type recorder struct {
	mu    sync.Mutex
	lines []Line
}

func (r *recorder) emit(l Line) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, l)
}

func (r *recorder) texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.lines))
	for _, l := range r.lines {
		out = append(out, l.Text)
	}
	return out
}

func newRunner(t *testing.T) (*Runner, *clockwork.FakeClock) {
	t.Helper()
	fc := clockwork.NewFakeClockAt(epoch)
	logger := zerolog.Nop()
	r, err := NewRunner(WithClock(fc), WithLogger(&logger))
	require.NoError(t, err)
	return r, fc
}

func start(ctx context.Context, r *Runner, req Request, rec *recorder) <-chan outcome {
	done := make(chan outcome, 1)
	go func() {
		res, err := r.Run(ctx, req, rec.emit)
		done <- outcome{res, err}
	}()
	return done
}

// drive advances the fake clock through each pause once the runner waits on it.
func drive(t *testing.T, fc *clockwork.FakeClock, delays ...time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, d := range delays {
		require.NoError(t, fc.BlockUntilContext(ctx, 1))
		fc.Advance(d)
	}
}

func ms(v ...int) []time.Duration {
	out := make([]time.Duration, len(v))
	for i, n := range v {
		out[i] = time.Duration(n) * time.Millisecond
	}
	return out
}

func TestShizukuFlow(t *testing.T) {
	r, fc := newRunner(t)
	rec := &recorder{}

	done := start(context.Background(), r, Request{Method: mapping.MethodShizuku, Device: pixel}, rec)
	delays := ms(600, 500, 700, 800, 700, 500, 400)
	drive(t, fc, delays...)
	out := <-done

	require.NoError(t, out.err)
	assert.Equal(t, mapping.StatusActive, out.res.Status)
	assert.Equal(t, mapping.MethodShizuku, out.res.Method)
	assert.Equal(t, []string{
		"Iniciando Binder HID...",
		">> Privilégios ADB concedidos.",
		">> Kernel Android: Android 13 verificado.",
		">> Otimizando para GPU: Adreno (TM) 730",
		">> Driver de Input BlueStacks 5 carregado.",
		">> Tweaks de Sensibilidade aplicados (16450).",
		">> Handshake HID realizado com sucesso.",
		">> AxisKey Pro está PRONTO.",
	}, rec.texts())

	require.Len(t, out.res.Lines, 8)
	want := epoch
	assert.Equal(t, want, out.res.Lines[0].Time)
	for i, d := range delays {
		want = want.Add(d)
		assert.Equal(t, want, out.res.Lines[i+1].Time, "line %d", i+1)
	}
	assert.False(t, r.Running())
}

func TestShizukuFlowEnglish(t *testing.T) {
	r, fc := newRunner(t)
	rec := &recorder{}

	req := Request{Method: mapping.MethodShizuku, Device: pixel, Language: mapping.LanguageEnglish, Tweaks: 12000}
	done := start(context.Background(), r, req, rec)
	drive(t, fc, ms(600, 500, 700, 800, 700, 500, 400)...)
	out := <-done

	require.NoError(t, out.err)
	texts := rec.texts()
	assert.Equal(t, "Starting HID Binder...", texts[0])
	assert.Equal(t, ">> Sensitivity tweaks applied (12000).", texts[5])
	assert.Equal(t, ">> AxisKey Pro is READY.", texts[7])
}

func TestUnknownLanguageFallsBackToPortuguese(t *testing.T) {
	r, _ := newRunner(t)
	rec := &recorder{}

	out, err := r.Run(context.Background(), Request{Method: mapping.MethodWirelessDebug, Language: "xx-YY"}, rec.emit)
	require.NoError(t, err)
	assert.Equal(t, []string{"Código de pareamento de 6 dígitos obrigatório."}, rec.texts())
	assert.Equal(t, mapping.StatusPairingRequired, out.Status)
}

func TestWirelessRequiresPairingCode(t *testing.T) {
	r, _ := newRunner(t)

	for _, code := range []string{"", "12345", "abcdef", "1234567"} {
		rec := &recorder{}
		out, err := r.Run(context.Background(), Request{
			Method:      mapping.MethodWirelessDebug,
			PairingCode: code,
			Language:    mapping.LanguageEnglish,
			Device:      pixel,
		}, rec.emit)

		require.NoError(t, err, "code %q", code)
		assert.Equal(t, mapping.StatusPairingRequired, out.Status)
		assert.Equal(t, []string{"A 6-digit pairing code is required."}, rec.texts())
	}
}

func TestWirelessFlow(t *testing.T) {
	r, fc := newRunner(t)
	rec := &recorder{}

	req := Request{Method: mapping.MethodWirelessDebug, PairingCode: "482913", Device: pixel, Language: mapping.LanguageEnglish}
	done := start(context.Background(), r, req, rec)
	drive(t, fc, ms(700, 600, 500, 500, 400)...)
	out := <-done

	require.NoError(t, out.err)
	assert.Equal(t, mapping.StatusActive, out.res.Status)
	assert.Equal(t, mapping.MethodWirelessDebug, out.res.Method)
	assert.Equal(t, []string{
		"Starting wireless debugging...",
		">> Pairing with code 482913...",
		">> ADB connection established.",
		">> Android kernel: Android 13 verified.",
		">> HID handshake completed.",
		">> AxisKey Pro is READY.",
	}, rec.texts())
}

func TestOldAndroidRefused(t *testing.T) {
	r, _ := newRunner(t)
	rec := &recorder{}
	old := pixel
	old.AndroidVersion = "Android 10"

	out, err := r.Run(context.Background(), Request{Method: mapping.MethodShizuku, Device: old}, rec.emit)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusError, out.Status)
	assert.Equal(t, []string{"Android 10 não é suportado. Requer Android 11 ou superior."}, rec.texts())
}

func TestUnknownAndroidAllowed(t *testing.T) {
	r, fc := newRunner(t)
	rec := &recorder{}
	pc := pixel
	pc.AndroidVersion = hardware.UnknownAndroid

	done := start(context.Background(), r, Request{Method: mapping.MethodShizuku, Device: pc}, rec)
	drive(t, fc, ms(600, 500, 700, 800, 700, 500, 400)...)
	out := <-done

	require.NoError(t, out.err)
	assert.Equal(t, mapping.StatusActive, out.res.Status)
	assert.Contains(t, rec.texts(), ">> Kernel Android: Android Custom / PC verificado.")
}

func TestUnsupportedMethod(t *testing.T) {
	r, _ := newRunner(t)
	_, err := r.Run(context.Background(), Request{Method: mapping.MethodNone}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestSingleRunAndCancel(t *testing.T) {
	r, fc := newRunner(t)
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := start(ctx, r, Request{Method: mapping.MethodShizuku, Device: pixel}, rec)
	drive(t, fc, ms(600)...)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, fc.BlockUntilContext(waitCtx, 1))
	assert.True(t, r.Running())

	_, err := r.Run(context.Background(), Request{Method: mapping.MethodShizuku, Device: pixel}, nil)
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	cancel()
	out := <-done
	assert.ErrorIs(t, out.err, context.Canceled)
	assert.Equal(t, mapping.StatusInactive, out.res.Status)
	assert.Len(t, out.res.Lines, 2)
	assert.False(t, r.Running())

	// a new run may start once the previous one ended
	rec2 := &recorder{}
	res, err := r.Run(context.Background(), Request{Method: mapping.MethodWirelessDebug}, rec2.emit)
	require.NoError(t, err)
	assert.Equal(t, mapping.StatusPairingRequired, res.Status)
}
