package mapping

type Language string

const (
	LanguagePortuguese Language = "pt-BR"
	LanguageEnglish    Language = "en-US"
)

type ActivationStatus string

const (
	StatusInactive        ActivationStatus = "INACTIVE"
	StatusPending         ActivationStatus = "PENDING"
	StatusActive          ActivationStatus = "ACTIVE"
	StatusError           ActivationStatus = "ERROR"
	StatusShizukuWaiting  ActivationStatus = "SHIZUKU_WAITING"
	StatusPairingRequired ActivationStatus = "PAIRING_REQUIRED"
)

type ActivationMethod string

const (
	MethodShizuku       ActivationMethod = "SHIZUKU"
	MethodWirelessDebug ActivationMethod = "WIRELESS_DEBUG"
	MethodNone          ActivationMethod = "NONE"
)

// AppConfig is the persisted user preference entry.
type AppConfig struct {
	ShowOnboarding   bool             `json:"showOnboarding"`
	ThemeColor       string           `json:"themeColor"`
	Language         Language         `json:"language"`
	HapticFeedback   bool             `json:"hapticFeedback"`
	ShowFPS          bool             `json:"showFps"`
	ActivationStatus ActivationStatus `json:"activationStatus"`
	ActivationMethod ActivationMethod `json:"activationMethod"`
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ShowOnboarding:   true,
		ThemeColor:       "#0e62fe",
		Language:         LanguagePortuguese,
		HapticFeedback:   true,
		ShowFPS:          true,
		ActivationStatus: StatusInactive,
		ActivationMethod: MethodNone,
	}
}

// AppConfigPatch is a partial update of AppConfig; nil fields are left untouched.
type AppConfigPatch struct {
	ShowOnboarding   *bool             `json:"showOnboarding,omitempty"`
	ThemeColor       *string           `json:"themeColor,omitempty"`
	Language         *Language         `json:"language,omitempty"`
	HapticFeedback   *bool             `json:"hapticFeedback,omitempty"`
	ShowFPS          *bool             `json:"showFps,omitempty"`
	ActivationStatus *ActivationStatus `json:"activationStatus,omitempty"`
	ActivationMethod *ActivationMethod `json:"activationMethod,omitempty"`
}

func (p AppConfigPatch) Apply(c AppConfig) AppConfig {
	set(&c.ShowOnboarding, p.ShowOnboarding)
	set(&c.ThemeColor, p.ThemeColor)
	set(&c.Language, p.Language)
	set(&c.HapticFeedback, p.HapticFeedback)
	set(&c.ShowFPS, p.ShowFPS)
	set(&c.ActivationStatus, p.ActivationStatus)
	set(&c.ActivationMethod, p.ActivationMethod)
	return c
}
