package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KRoperUK/nrg-gyms/internal/config"
	"github.com/KRoperUK/nrg-gyms/internal/portal"
	"github.com/KRoperUK/nrg-gyms/internal/prefs"
	"github.com/KRoperUK/nrg-gyms/internal/report"
	"github.com/KRoperUK/nrg-gyms/internal/state"
)

// Options configure the application.
type Options struct {
	ConfigPath string
	PollEvery  int  // seconds, at least 300; zero uses the configured interval
	Once       bool // refresh once, print the report and exit
	Out        io.Writer
	Logger     *zerolog.Logger
	// Config skips loading from ConfigPath when set.
	Config *config.Config
}

// Run polls the portal until the context is cancelled, or once with Once.
func Run(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	remembered, _ := prefs.Load(cfg.StatePath)
	client, err := portal.NewClient(portal.Options{
		BaseURL:               cfg.BaseURL,
		Credentials:           portal.Credentials{Email: cfg.Email, Password: cfg.Password},
		BookingsPath:          cfg.BookingsPath,
		PreferredBookingsPath: remembered.BookingsPath,
		ClubID:                cfg.ClubID,
		Logger:                &logger,
	})
	if err != nil {
		return fmt.Errorf("init portal client: %w", err)
	}

	store := state.NewStore(nil)
	poller := NewPoller(client, store, logger)
	poller.OnBookingsPath = func(path string) {
		wrote, err := prefs.RememberBookingsPath(cfg.StatePath, path, time.Now())
		if err != nil {
			logger.Warn().Err(err).Str("state_path", cfg.StatePath).Msg("could not remember bookings endpoint")
			return
		}
		if wrote {
			logger.Info().Str("path", path).Msg("remembered bookings endpoint")
		}
	}

	if opts.Once {
		poller.Refresh(ctx)
		return report.Render(out, store.Snapshot(), time.Now(), time.Local)
	}

	interval := pollInterval(cfg, opts)
	logger.Info().Dur("interval", interval).Int64("club_id", cfg.ClubID).Msg("polling portal")

	done := StartPoller(ctx, poller, interval)
	<-done
	return nil
}

// pollInterval prefers PollEvery over the configured interval; either way it
// is never below config.MinUpdateInterval.
func pollInterval(cfg config.Config, opts Options) time.Duration {
	if opts.PollEvery > 0 {
		return config.ClampInterval(time.Duration(opts.PollEvery) * time.Second)
	}
	return config.ClampInterval(cfg.UpdateInterval)
}

func loadConfig(opts Options) (config.Config, error) {
	if opts.Config != nil {
		return *opts.Config, opts.Config.Validate()
	}
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
