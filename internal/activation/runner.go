// Package activation plays the simulated driver activation flows. A flow is
// a scripted list of log lines separated by fixed pauses; nothing here talks
// to a real device.
package activation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/mapping"
)

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "activation").Logger()

var (
	ErrAlreadyRunning    = errors.New("activation already running")
	ErrUnsupportedMethod = errors.New("unsupported activation method")
)

// Line is one entry of the activation log.
type Line struct {
	Text string    `json:"text"`
	Time time.Time `json:"time"`
}

// Request describes one activation attempt.
type Request struct {
	Method      mapping.ActivationMethod `json:"method"`
	PairingCode string                   `json:"pairingCode,omitempty"`
	Language    mapping.Language         `json:"language,omitempty"`
	Tweaks      int                      `json:"tweaks,omitempty"`
	Device      hardware.Device          `json:"-"`
}

// Result is the outcome of a flow that ran to its end.
type Result struct {
	Status mapping.ActivationStatus `json:"status"`
	Method mapping.ActivationMethod `json:"method"`
	Lines  []Line                   `json:"lines"`
}

type Runner struct {
	clock  clockwork.Clock
	log    *zerolog.Logger
	bundle *i18n.Bundle

	running atomic.Bool
}

type Option func(*Runner)

func WithClock(c clockwork.Clock) Option {
	return func(r *Runner) { r.clock = c }
}

func WithLogger(l *zerolog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func NewRunner(opts ...Option) (*Runner, error) {
	bundle, err := NewBundle()
	if err != nil {
		return nil, err
	}
	r := &Runner{
		clock:  clockwork.NewRealClock(),
		log:    &defaultLogger,
		bundle: bundle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Running reports whether a flow is in progress.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Run plays the flow selected by req.Method, calling emit for every line as
// it is produced. Only one flow runs at a time. Cancelling ctx stops the flow
// between lines and returns the context error.
func (r *Runner) Run(ctx context.Context, req Request, emit func(Line)) (Result, error) {
	var s script
	switch req.Method {
	case mapping.MethodShizuku:
		s = shizukuScript(req)
	case mapping.MethodWirelessDebug:
		s = wirelessScript(req)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	if !r.running.CompareAndSwap(false, true) {
		return Result{}, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	l := r.log.With().Str("method", string(req.Method)).Logger()
	l.Info().Str("android", req.Device.AndroidVersion).Msg("activation started")

	res, err := r.play(ctx, s, r.printer(req.Language), emit)
	if err != nil {
		l.Warn().Err(err).Int("lines", len(res.Lines)).Msg("activation interrupted")
		return res, err
	}
	l.Info().Str("status", string(res.Status)).Msg("activation finished")
	return res, nil
}

func (r *Runner) play(ctx context.Context, s script, p printer, emit func(Line)) (Result, error) {
	res := Result{Status: s.status, Method: s.method}
	push := func(text string) {
		line := Line{Text: text, Time: r.clock.Now()}
		res.Lines = append(res.Lines, line)
		if emit != nil {
			emit(line)
		}
	}

	push(p.sprint(s.banner.id, s.banner.data))
	for _, st := range s.steps {
		if err := r.sleep(ctx, st.delay); err != nil {
			res.Status = mapping.StatusInactive
			return res, err
		}
		push(stepPrefix + p.sprint(st.id, st.data))
	}
	return res, nil
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := r.clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}
