package mapping

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

// Sensitivity is the aim/look tuning of a profile. Ranges are advisory; nothing
// here enforces them.
type Sensitivity struct {
	XSensitivity           float64 `json:"xSensitivity"`
	YSensitivity           float64 `json:"ySensitivity"`
	Tweaks                 int     `json:"tweaks"`
	LookSpeed              float64 `json:"lookSpeed"`
	Acceleration           bool    `json:"acceleration"`
	AccelerationMultiplier float64 `json:"accelerationMultiplier"`
	DeadZone               float64 `json:"deadZone"`
	ScanRate               int     `json:"scanRate"`
	Smoothing              int     `json:"smoothing"`
	MousePollingRate       int     `json:"mousePollingRate"`
}

// Slider bounds of the two axis sensitivity fields.
const (
	MinAxisSensitivity = 0.01
	MaxAxisSensitivity = 8.00
)

// PollingRates are the rates offered for scanRate and mousePollingRate, in Hz.
var PollingRates = []int{125, 250, 500, 1000, 2000}

// DefaultSensitivity returns the tuning a new profile starts with.
func DefaultSensitivity() Sensitivity {
	return Sensitivity{
		XSensitivity:           0.85,
		YSensitivity:           0.65,
		Tweaks:                 16450,
		LookSpeed:              1.0,
		Acceleration:           false,
		AccelerationMultiplier: 1.0,
		DeadZone:               0.1,
		ScanRate:               1000,
		Smoothing:              1,
		MousePollingRate:       1000,
	}
}

// SensitivityPatch is a partial update; nil fields are left untouched.
type SensitivityPatch struct {
	XSensitivity           *float64 `json:"xSensitivity,omitempty"`
	YSensitivity           *float64 `json:"ySensitivity,omitempty"`
	Tweaks                 *int     `json:"tweaks,omitempty"`
	LookSpeed              *float64 `json:"lookSpeed,omitempty"`
	Acceleration           *bool    `json:"acceleration,omitempty"`
	AccelerationMultiplier *float64 `json:"accelerationMultiplier,omitempty"`
	DeadZone               *float64 `json:"deadZone,omitempty"`
	ScanRate               *int     `json:"scanRate,omitempty"`
	Smoothing              *int     `json:"smoothing,omitempty"`
	MousePollingRate       *int     `json:"mousePollingRate,omitempty"`
}

// Apply merges p over s.
func (p SensitivityPatch) Apply(s Sensitivity) Sensitivity {
	set(&s.XSensitivity, p.XSensitivity)
	set(&s.YSensitivity, p.YSensitivity)
	set(&s.Tweaks, p.Tweaks)
	set(&s.LookSpeed, p.LookSpeed)
	set(&s.Acceleration, p.Acceleration)
	set(&s.AccelerationMultiplier, p.AccelerationMultiplier)
	set(&s.DeadZone, p.DeadZone)
	set(&s.ScanRate, p.ScanRate)
	set(&s.Smoothing, p.Smoothing)
	set(&s.MousePollingRate, p.MousePollingRate)
	return s
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Profile is the editable configuration of one game.
type Profile struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Controls      []Control   `json:"controls"`
	Sensitivity   Sensitivity `json:"sensitivity"`
	BackgroundURL null.String `json:"backgroundUrl"`
	LastModified  time.Time   `json:"lastModified"`
}

// NewProfile returns an empty profile named after its game.
func NewProfile(name string, now time.Time) Profile {
	return Profile{
		ID:           uuid.NewString(),
		Name:         name,
		Controls:     []Control{},
		Sensitivity:  DefaultSensitivity(),
		LastModified: Timestamp(now),
	}
}

// Timestamp normalizes t to the millisecond UTC precision profiles are stored with.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// Clone returns a deep copy of p.
func (p Profile) Clone() Profile {
	controls := make([]Control, len(p.Controls))
	for i, c := range p.Controls {
		controls[i] = c.Clone()
	}
	p.Controls = controls
	return p
}

// Control returns the control with the given id.
func (p Profile) Control(id string) (Control, int, bool) {
	for i, c := range p.Controls {
		if c.ID == id {
			return c, i, true
		}
	}
	return Control{}, -1, false
}

// ProfilePatch is a shallow partial update of a profile. A nil Controls slice
// leaves the list alone; an empty non-nil slice clears it.
type ProfilePatch struct {
	Name          *string
	Controls      []Control
	Sensitivity   *Sensitivity
	BackgroundURL *null.String
}

// Apply merges patch over p and stamps lastModified.
func (patch ProfilePatch) Apply(p Profile, now time.Time) Profile {
	set(&p.Name, patch.Name)
	if patch.Controls != nil {
		p.Controls = patch.Controls
	}
	set(&p.Sensitivity, patch.Sensitivity)
	set(&p.BackgroundURL, patch.BackgroundURL)
	p.LastModified = Timestamp(now)
	return p
}

// Game is a catalog entry owning exactly one profile.
type Game struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon"`
	PackageID     string  `json:"packageId"`
	Profile       Profile `json:"profile"`
	Compatibility int     `json:"compatibility"`
}

// Clone returns a deep copy of g.
func (g Game) Clone() Game {
	g.Profile = g.Profile.Clone()
	return g
}

// DefaultCatalog returns the seed games used on first run.
func DefaultCatalog(now time.Time) []Game {
	seeds := []Game{
		{
			ID:            "ff-01",
			Name:          "Free Fire MAX",
			PackageID:     "com.dts.freefiremax",
			Icon:          "https://play-lh.googleusercontent.com/6_2n07n_kK88VjA2iL6uF1R2_zK0Y3y1UfJ_Vp-r8j8_0B_Z_8J6Z_8J6Z_8J6Z_8J6=w240-h480-rw",
			Compatibility: 100,
		},
		{
			ID:            "cod-01",
			Name:          "COD: Mobile",
			PackageID:     "com.activision.callofduty.shooter",
			Icon:          "https://play-lh.googleusercontent.com/9v1W_8M8M8M8M8M8M8M8M8M8M8M8M8M8M8M8M8M8=w240-h480-rw",
			Compatibility: 98,
		},
	}
	for i := range seeds {
		seeds[i].Profile = NewProfile(seeds[i].Name, now)
	}
	return seeds
}
