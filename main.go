package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"marketdash/api"
	"marketdash/config"
	"marketdash/favorites"
	"marketdash/logger"
	"marketdash/models"
	"marketdash/prefs"
	"marketdash/theme"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to a YAML config file")
		route      = flag.String("route", "/", "Page to open: /, /crypto, /stocks, /forex or /news")
	)
	flag.Parse()

	if err := run(*configPath, *route); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, route string) error {
	cfg, err := config.Load(config.Options{Path: configPath})
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logger.Sync(log)

	start, ok := models.ParseRoute(route)
	if !ok {
		fmt.Printf("Unknown route %q, opening the dashboard\n", route)
	}

	storage, err := prefs.NewFileStorage("")
	if err != nil {
		return fmt.Errorf("opening preferences: %w", err)
	}

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	env := models.NewEnv(client, cfg, theme.New(storage, theme.DetectTerminal, log), log)

	if cfg.Favorites.Persist {
		store, err := favorites.NewSQLiteStore(cfg.Favorites.DBPath)
		if err != nil {
			log.Warn("favorites will not be saved", zap.String("path", cfg.Favorites.DBPath), zap.Error(err))
		} else {
			defer store.Close()
			env.Favorites = store
		}
	}

	log.Info("starting", zap.String("route", string(start)), zap.String("api", cfg.API.BaseURL))

	model := models.NewAppModel(env, start)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
