package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/KRoperUK/nrg-gyms/internal/app"
	"github.com/KRoperUK/nrg-gyms/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "override config path (optional, defaults to ~/.config/nrggyms/config.toml)")
	pollSeconds := flag.Int("poll", 0, "refresh interval in seconds (optional, defaults to update_interval)")
	once := flag.Bool("once", false, "refresh once, print a report and exit")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (optional, overrides log_level)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error().Err(err).Msg("could not load the configuration")
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	setLogLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{Config: &cfg, Once: *once}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	if err := app.Run(ctx, opts); err != nil {
		log.Error().Err(err).Msg("nrggyms failed")
		return 1
	}
	return 0
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		log.Warn().Str("level", level).Msg("unknown log level, using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
