package mapper

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"

	"github.com/axiskey/mapper/internal/hardware"
)

// cronLogger routes scheduler logs to zerolog. args are key/value pairs.
type cronLogger struct {
	l *zerolog.Logger
}

func (c cronLogger) Debug(msg string, args ...any) { c.l.Debug().Fields(args).Msg(msg) }
func (c cronLogger) Info(msg string, args ...any)  { c.l.Info().Fields(args).Msg(msg) }
func (c cronLogger) Warn(msg string, args ...any)  { c.l.Warn().Fields(args).Msg(msg) }
func (c cronLogger) Error(msg string, args ...any) { c.l.Error().Fields(args).Msg(msg) }

func (a *App) startJobs() (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler(
		gocron.WithClock(a.clock),
		gocron.WithLogger(cronLogger{l: jobsLogger}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	if a.cfg.HardwareRefresh > 0 {
		_, err = s.NewJob(
			gocron.DurationJob(a.cfg.HardwareRefresh),
			gocron.NewTask(func() {
				d := a.RefreshHardware(hardware.Hints{})
				jobsLogger.Debug().Str("android", d.AndroidVersion).Msg("hardware re-audited")
			}),
			gocron.WithName("hardware-audit"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = s.Shutdown()
			return nil, fmt.Errorf("failed to schedule hardware audit: %w", err)
		}
	}

	s.Start()
	jobsLogger.Info().Int("jobs", len(s.Jobs())).Msg("scheduler started")
	return s, nil
}
