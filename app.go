package mapper

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/axiskey/mapper/internal/activation"
	"github.com/axiskey/mapper/internal/editor"
	"github.com/axiskey/mapper/internal/hardware"
	"github.com/axiskey/mapper/internal/hud"
	"github.com/axiskey/mapper/internal/kv"
	"github.com/axiskey/mapper/internal/mapping"
	"github.com/axiskey/mapper/internal/profile"
	"github.com/axiskey/mapper/internal/utils"
)

var ErrHUDDisabled = errors.New("HUD detection is not configured")

// App is one mapper instance: the profile store, the editor session on top
// of it and the simulated activation.
type App struct {
	cfg     *Config
	clock   clockwork.Clock
	backend kv.Store
	metrics *metrics

	store  *profile.Store
	editor *editor.Editor
	runner *activation.Runner
	hud    *hud.Async

	scheduler gocron.Scheduler

	hwMu  sync.RWMutex
	hw    hardware.Device
	hints hardware.Hints
}

type AppOption func(*App)

func WithClock(c clockwork.Clock) AppOption {
	return func(a *App) { a.clock = c }
}

// WithDetector replaces the HUD detector built from the configuration.
func WithDetector(d hud.Detector) AppOption {
	return func(a *App) { a.hud = hud.NewAsync(d, hudLogger) }
}

func NewApp(cfg *Config, backend kv.Store, opts ...AppOption) (*App, error) {
	a := &App{
		cfg:     cfg,
		clock:   clockwork.NewRealClock(),
		backend: backend,
		metrics: newMetrics(),
	}
	if cfg.HUD.Enabled() {
		a.hud = hud.NewAsync(hud.NewGeminiDetector(hud.GeminiConfig{
			Endpoint: cfg.HUD.Endpoint,
			Model:    cfg.HUD.Model,
			APIKey:   cfg.HUD.APIKey,
			Timeout:  cfg.HUD.Timeout,
		}), hudLogger)
	}
	for _, opt := range opts {
		opt(a)
	}

	a.store = profile.New(backend,
		profile.WithClock(a.clock),
		profile.WithLogger(storeLogger),
		profile.WithPersistHook(a.metrics.observeWrite),
	)
	games := a.store.LoadSnapshot()
	storeLogger.Info().Int("games", len(games)).Msg("catalog loaded")

	a.editor = editor.New(a.store, editorLogger)

	runner, err := activation.NewRunner(
		activation.WithClock(a.clock),
		activation.WithLogger(activationLogger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to init activation: %w", err)
	}
	a.runner = runner

	a.RefreshHardware(hardware.Hints{})
	a.metrics.observeProfile(a.store)
	a.setProcTitle(a.store.Config())
	return a, nil
}

// Start runs the background work: storage watching and the periodic
// hardware audit. It stops when ctx is done or Close is called.
func (a *App) Start(ctx context.Context) error {
	a.watchStorage(ctx)

	s, err := a.startJobs()
	if err != nil {
		return err
	}
	a.scheduler = s
	return nil
}

func (a *App) Close() error {
	if a.scheduler == nil {
		return nil
	}
	if err := a.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

// Hardware returns the last audit result.
func (a *App) Hardware() hardware.Device {
	a.hwMu.RLock()
	defer a.hwMu.RUnlock()
	return a.hw
}

// RefreshHardware audits the host again. Empty hints reuse the ones the
// client reported last.
func (a *App) RefreshHardware(h hardware.Hints) hardware.Device {
	a.hwMu.Lock()
	if h != (hardware.Hints{}) {
		a.hints = h
	}
	hints := a.hints
	a.hwMu.Unlock()

	d := hardware.Probe(hints, hardwareLogger)

	a.hwMu.Lock()
	a.hw = d
	a.hwMu.Unlock()

	a.metrics.observeHardware(d)
	return d
}

// Activate plays an activation flow and records its outcome in the config.
// Lines are passed to emit as they are produced.
func (a *App) Activate(ctx context.Context, req activation.Request, emit func(activation.Line)) (activation.Result, error) {
	cfg := a.store.Config()
	req.Device = a.Hardware()
	if req.Language == "" {
		req.Language = cfg.Language
	}
	if req.Tweaks == 0 {
		if p, ok := a.store.ActiveProfile(); ok {
			req.Tweaks = p.Sensitivity.Tweaks
		}
	}

	var once sync.Once
	res, err := a.runner.Run(ctx, req, func(l activation.Line) {
		once.Do(func() { a.setActivation(mapping.StatusPending, cfg.ActivationMethod) })
		if emit != nil {
			emit(l)
		}
	})
	if errors.Is(err, activation.ErrAlreadyRunning) || errors.Is(err, activation.ErrUnsupportedMethod) {
		return res, err
	}

	method := cfg.ActivationMethod
	if res.Status == mapping.StatusActive {
		method = res.Method
	}
	a.setActivation(res.Status, method)
	a.metrics.activations.WithLabelValues(string(req.Method), string(res.Status)).Inc()
	return res, err
}

func (a *App) setActivation(status mapping.ActivationStatus, method mapping.ActivationMethod) mapping.AppConfig {
	cfg := a.store.UpdateConfig(mapping.AppConfigPatch{
		ActivationStatus: &status,
		ActivationMethod: &method,
	})
	a.setProcTitle(cfg)
	return cfg
}

func (a *App) setProcTitle(cfg mapping.AppConfig) {
	utils.SetProcTitle(fmt.Sprintf("%s (%s)", cfg.ActivationStatus, cfg.ActivationMethod))
}

// DetectHUD analyzes a screenshot and places a control for every recognized
// HUD element. A newer request supersedes one still in flight, which then
// yields no controls.
func (a *App) DetectHUD(ctx context.Context, image []byte) ([]mapping.Control, error) {
	if a.hud == nil {
		return nil, ErrHUDDisabled
	}

	var suggestions []hud.Suggestion
	select {
	case suggestions = <-a.hud.Start(ctx, image):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if len(suggestions) == 0 {
		a.metrics.hudRequests.WithLabelValues("empty").Inc()
		return nil, nil
	}
	added := a.editor.ApplySuggestions(suggestions)
	if len(added) == 0 {
		result := "empty"
		if _, ok := a.store.ActiveProfile(); !ok {
			result = "no_profile"
		}
		a.metrics.hudRequests.WithLabelValues(result).Inc()
		return nil, nil
	}
	a.metrics.hudRequests.WithLabelValues("applied").Inc()
	a.metrics.observeProfile(a.store)
	return added, nil
}
