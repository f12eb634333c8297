// Package hud asks an image-analysis model where the controls of a game HUD
// are, returning placement suggestions.
package hud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Kind is the category of a detected HUD element.
type Kind string

const (
	KindFire   Kind = "FIRE"
	KindWASD   Kind = "WASD"
	KindAim    Kind = "AIM"
	KindJump   Kind = "JUMP"
	KindReload Kind = "RELOAD"
)

// Suggestion is one detected element; X and Y are percentages of the image.
type Suggestion struct {
	Type  Kind    `json:"type"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

var ErrNoSuggestions = errors.New("no suggestions")

// Detector analyzes an encoded image.
type Detector interface {
	Detect(ctx context.Context, image []byte) ([]Suggestion, error)
}

var defaultLogger = zerolog.New(os.Stdout).With().Str("subsystem", "hud").Logger()

var (
	arraySpan = regexp.MustCompile(`(?s)\[.*\]`)
	fences    = regexp.MustCompile("```json\\n?|```")
)

// ParseSuggestions extracts the JSON array from a model reply, tolerating
// markdown fences and surrounding prose.
func ParseSuggestions(text string) ([]Suggestion, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoSuggestions
	}

	sanitized := arraySpan.FindString(text)
	if sanitized == "" {
		sanitized = strings.TrimSpace(fences.ReplaceAllString(text, ""))
	}

	var out []Suggestion
	if err := json.Unmarshal([]byte(sanitized), &out); err != nil {
		return nil, fmt.Errorf("parse suggestions: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNoSuggestions
	}
	return out, nil
}

// Suggest runs d and turns every failure into an empty result.
func Suggest(ctx context.Context, d Detector, image []byte, logger *zerolog.Logger) []Suggestion {
	if logger == nil {
		logger = &defaultLogger
	}
	if d == nil {
		return nil
	}
	s, err := d.Detect(ctx, image)
	if err != nil {
		logger.Warn().Err(err).Msg("HUD detection failed")
		return nil
	}
	logger.Info().Int("suggestions", len(s)).Msg("HUD detection finished")
	return s
}

// Async runs at most one detection at a time. Starting a new one cancels
// the one in flight.
type Async struct {
	detector Detector
	log      *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

func NewAsync(d Detector, logger *zerolog.Logger) *Async {
	if logger == nil {
		logger = &defaultLogger
	}
	return &Async{detector: d, log: logger}
}

// Start begins a detection and returns a channel that receives its result
// exactly once. A failed or superseded detection delivers nil.
func (a *Async) Start(ctx context.Context, image []byte) <-chan []Suggestion {
	ctx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = cancel
	a.seq++
	seq := a.seq
	a.mu.Unlock()

	out := make(chan []Suggestion, 1)
	go func() {
		defer cancel()
		s := Suggest(ctx, a.detector, image, a.log)

		a.mu.Lock()
		if a.seq == seq {
			a.cancel = nil
		}
		a.mu.Unlock()

		if ctx.Err() != nil {
			s = nil
		}
		out <- s
		close(out)
	}()
	return out
}

// Pending reports whether a detection is in flight.
func (a *Async) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}
