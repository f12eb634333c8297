package mapper

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var rootLogger = newRootLogger()

var (
	logger           = subsystemLogger("mapper")
	configLogger     = subsystemLogger("config")
	storeLogger      = subsystemLogger("store")
	editorLogger     = subsystemLogger("editor")
	webLogger        = subsystemLogger("web")
	websocketLogger  = subsystemLogger("websocket")
	activationLogger = subsystemLogger("activation")
	hudLogger        = subsystemLogger("hud")
	hardwareLogger   = subsystemLogger("hardware")
	jobsLogger       = subsystemLogger("jobs")
)

func newRootLogger() zerolog.Logger {
	w := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(w).With().Timestamp().Logger()
}

func subsystemLogger(name string) *zerolog.Logger {
	l := rootLogger.With().Str("subsystem", name).Logger()
	return &l
}

// setLogLevel applies a level name such as "debug" to every logger. Unknown
// names keep the current level.
func setLogLevel(name string) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		configLogger.Warn().Str("level", name).Msg("unknown log level, keeping current")
		return
	}
	zerolog.SetGlobalLevel(level)
	configLogger.Info().Str("level", level.String()).Msg("log level set")
}
