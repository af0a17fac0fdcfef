package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"wallet_vote/internal/api"
	"wallet_vote/internal/app"
	"wallet_vote/internal/ballot"
	"wallet_vote/internal/config"
	"wallet_vote/internal/keyloader"
	"wallet_vote/internal/logger"
	"wallet_vote/internal/platform/database"
	"wallet_vote/internal/signing"
	"wallet_vote/internal/storage"
	"wallet_vote/internal/ui"
	"wallet_vote/internal/vote"
	"wallet_vote/internal/wallet"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"

	_ "github.com/mattn/go-sqlite3"
)

var (
	configPath = flag.String("config", "config/config.yml", "Path to the configuration file")
	keysPath   = flag.String("keys", "", "Path to the private keys file (overrides wallet.keys_path)")
	ballotPath = flag.String("ballot", "", "Path to a ballot file; runs headless ballot mode instead of the terminal UI")
	connect    = flag.Bool("connect", false, "Connect the first account on startup (terminal UI)")
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	logInstance := logger.NewColorLogger(os.Stderr, logger.LevelInfo)

	defer func() {
		if r := recover(); r != nil {
			logInstance.Fatal("Critical error (panic)", "error", r)
		}
	}()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		switch {
		case errors.Is(err, config.ErrConfigNotFound):
			logInstance.Fatal("Config file not found", "path", *configPath, "error", err)
		case errors.Is(err, config.ErrConfigParseFailed):
			logInstance.Fatal("Config file parse failed (check YAML syntax)", "path", *configPath, "error", err)
		default:
			logInstance.Fatal("Failed to load config file", "path", *configPath, "error", err)
		}
	}
	if *keysPath != "" {
		cfg.Wallet.KeysPath = *keysPath
	}

	tuiMode := *ballotPath == ""
	if tuiMode {
		logInstance = fileLogger(cfg, logInstance)
	} else {
		logInstance = logger.NewColorLogger(os.Stderr, logger.ParseLevel(cfg.Log.Level))
	}
	logInstance.Info("Config loaded", "path", *configPath, "api", cfg.API.BaseURL, "db_type", cfg.Database.Type)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go gracefulShutdown(cancel, logInstance)

	attempts, stateStorage, err := database.NewStorage(ctx, logInstance, cfg.Database.Type, cfg.Database.ConnectionString, cfg.Database.PoolMaxConns)
	if err != nil {
		if errors.Is(err, database.ErrUnsupportedDBType) || errors.Is(err, database.ErrMissingConnectionString) {
			logInstance.Fatal("Storage configuration error", "db_type", cfg.Database.Type, "error", err)
		} else {
			logInstance.Fatal("Failed to initialize storage", "db_type", cfg.Database.Type, "error", err)
		}
	}
	defer func() {
		logInstance.Debug("Closing storage...")
		if err := attempts.Close(); err != nil {
			logInstance.Error("Failed to close storage", "error", err)
		}
	}()

	keys, err := keyloader.LoadKeys(cfg.Wallet.KeysPath, logInstance)
	if err != nil {
		if errors.Is(err, keyloader.ErrKeysFileNotFound) {
			logInstance.Fatal("Key file not found", "path", cfg.Wallet.KeysPath, "error", err)
		} else if errors.Is(err, keyloader.ErrNoValidKeysFound) {
			logInstance.Fatal("No valid keys in key file", "path", cfg.Wallet.KeysPath, "error", err)
		} else {
			logInstance.Fatal("Failed to read key file", "path", cfg.Wallet.KeysPath, "error", err)
		}
	}
	logInstance.Info("Keys loaded", "count", len(keys))

	gateway, err := api.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout, logInstance)
	if err != nil {
		logInstance.Fatal("Invalid API configuration", "base_url", cfg.API.BaseURL, "error", err)
	}

	if tuiMode {
		if err := runTUI(ctx, cfg, keys, gateway, attempts, stateStorage, logInstance); err != nil {
			logInstance.Error("Terminal UI exited with error", "error", err)
		}
		cancel()
		return
	}

	plan, err := ballot.Load(*ballotPath)
	if err != nil {
		logInstance.Fatal("Failed to load ballot", "path", *ballotPath, "error", err)
	}

	app.NewApplication(cfg, keys, plan, gateway, &wg, attempts, stateStorage, logInstance).Run(ctx)

	select {
	case <-ctx.Done():
		logInstance.Warn("Context was cancelled.")
	default:
	}

	logInstance.Info("Waiting for running operations before exit...")
	wg.Wait()
	logInstance.Info("Ballot run finished.")
}

// runTUI wires the wallet, the vote controller and the terminal UI, and blocks
// until the user quits.
func runTUI(
	ctx context.Context,
	cfg *config.Config,
	keys []*keyloader.LoadedKey,
	gateway api.Gateway,
	attempts storage.AttemptLogger,
	prefs storage.StateStorage,
	log logger.Logger,
) error {
	observer := wallet.NewObserver()
	events, unsubscribe := observer.Subscribe()
	defer unsubscribe()

	w, err := wallet.NewLocalWallet(keys, observer, log)
	if err != nil {
		return err
	}

	ctrl := vote.NewController(gateway, signing.NewAdapter(w, cfg.Signing.PrefixLen(), log), attempts, log)
	defer ctrl.Close()

	var bg sync.WaitGroup
	defer bg.Wait()
	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	bg.Add(2)
	go func() {
		defer bg.Done()
		ctrl.LoadCatalog(runCtx)
	}()
	go func() {
		defer bg.Done()
		ctrl.Run(runCtx, events)
	}()

	if *connect {
		if err := w.Connect(0); err != nil {
			log.Warn("Initial connect failed", "module", "main", "error", err)
		}
	}

	theme := ui.LoadTheme(ctx, prefs, cfg.UI.DefaultTheme, log)
	m := ui.New(runCtx, ctrl, w, prefs, theme, log)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-runCtx.Done()
		p.Quit()
	}()
	_, err = p.Run()
	return err
}

// fileLogger redirects logging to ui.log_file so it does not draw over the
// terminal UI. It falls back to discarding output when the file cannot be opened.
func fileLogger(cfg *config.Config, fallback logger.Logger) logger.Logger {
	level := logger.ParseLevel(cfg.Log.Level)
	if cfg.UI.LogFile == "" {
		return logger.NewNopLogger()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.UI.LogFile), 0o755); err != nil {
		fallback.Warn("Cannot create log directory, logging disabled", "path", cfg.UI.LogFile, "error", err)
		return logger.NewNopLogger()
	}
	f, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fallback.Warn("Cannot open log file, logging disabled", "path", cfg.UI.LogFile, "error", err)
		return logger.NewNopLogger()
	}
	color.NoColor = true
	return logger.NewColorLogger(f, level)
}

// gracefulShutdown handles termination signals.
func gracefulShutdown(cancel context.CancelFunc, log logger.Logger) {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-signalChan
	log.Warn("Received termination signal", "signal", sig.String())
	log.Warn("Starting graceful shutdown... cancelling context.")
	cancel()
}
