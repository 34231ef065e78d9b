package cmd

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"inkbound/internal/api"
	"inkbound/internal/config"
	"inkbound/internal/services"
	"inkbound/internal/store"
	"inkbound/internal/view"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func Run() {
	// Load configuration
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Open local state store
	db, err := store.Open(cfg.Storage.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open local store")
	}
	defer db.Close()

	// Resolve the backend address: explicit override, current-host
	// heuristic, stored auto-detected host, hardcoded fallback.
	override := cfg.API.BaseURL
	if override == "" {
		if v, err := db.GetSetting(store.SettingBaseURL); err == nil {
			override = v
		}
	}
	stored, _ := db.GetSetting(store.SettingDetectedHost)
	baseURL := config.ResolveBaseURL(override, cfg.API.Host, stored)

	// Persist the detected host for future runs
	if host := config.DetectedHost(cfg.API.Host); host != "" {
		if err := db.SetSetting(store.SettingDetectedHost, host); err != nil {
			log.Error().Err(err).Msg("Failed to persist detected host")
		}
	}

	client := api.NewClient(baseURL)
	log.Info().Str("base_url", baseURL).Msg("Backend address resolved")

	// Initialize services
	session := services.NewSessionService(client, db)
	interactions := services.NewInteractionService(client)
	comments := services.NewCommentService(client, interactions)
	feed := services.NewFeedService(client, session, cfg.Upload.MaxDimension)
	detail := services.NewDetailController(client, session, interactions, comments)
	search := services.NewSearchService(client, session)

	// Initialize view layer
	renderer := view.NewTextRenderer(os.Stdout)
	notifier := view.NewNotifier(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connectivity check
	if err := client.Ping(ctx); err != nil {
		log.Error().Err(err).Msg("API connection check failed")
		notifier.Show("Failed to connect to API. Check server settings.")
	} else {
		log.Info().Msg("Connected to API successfully")
	}

	// Restore a persisted session, if any
	if err := session.Restore(); err != nil {
		log.Error().Err(err).Msg("Failed to restore session")
	}

	sh := &shell{
		session:      session,
		interactions: interactions,
		feed:         feed,
		detail:       detail,
		search:       search,
		renderer:     renderer,
		notifier:     notifier,
		in:           bufio.NewScanner(os.Stdin),
		out:          os.Stdout,
	}

	sh.run(ctx)
	log.Info().Msg("Client exited")
}

func configPath() string {
	if path := os.Getenv("INKBOUND_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

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
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
