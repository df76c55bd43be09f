package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/roamline/staykeeper/internal/config"
	"github.com/roamline/staykeeper/internal/handler"
	"github.com/roamline/staykeeper/internal/logger"
	"github.com/roamline/staykeeper/internal/reconcile"
	"github.com/roamline/staykeeper/internal/service"
	"github.com/roamline/staykeeper/internal/store"
)

type App struct {
	ctx        context.Context
	logger     *logger.Logger
	cfg        *config.Config
	featureCfg *service.FeatureConfig
	store      *store.SQLiteStore
	engine     *reconcile.Engine
}

func main() {
	app := &App{
		ctx:    context.Background(),
		logger: logger.New(),
	}

	if err := app.run(); err != nil {
		app.logger.Error("Application error", logger.Error(err))
		os.Exit(1)
	}
}

func (a *App) run() error {
	if err := a.initialize(); err != nil {
		return err
	}
	defer func() {
		if err := a.store.Close(); err != nil {
			a.logger.Error("Failed to close draft store", logger.Error(err))
		}
	}()

	mux := http.NewServeMux()
	handler.NewAPIHandler(a.engine, a.logger).Register(mux)

	a.logger.Info("Agent listening", logger.Action("startup"), logger.Status("ready"), logger.F("addr", a.cfg.ListenAddr))
	return http.ListenAndServe(a.cfg.ListenAddr, mux)
}

func (a *App) initialize() error {
	configPath := getEnvOrDefault("CONFIG_PATH", "./data/user_config.toml")
	featureCfg, err := service.LoadFeatureConfig(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			a.logger.Error("Failed to load feature config", logger.Error(err), logger.F("path", configPath))
			return err
		}
		// No user config yet; every feature falls back to its default.
		featureCfg = &service.FeatureConfig{}
	}
	a.featureCfg = featureCfg

	envPath := ".env"
	infraCfg, err := config.LoadWithFile(envPath)
	if err != nil {
		a.logger.Error("Failed to load infrastructure config", logger.Error(err), logger.F("path", envPath))
		return err
	}
	a.cfg = infraCfg

	token, err := a.resolveAPIToken(infraCfg)
	if err != nil {
		a.logger.Error("Failed to resolve API token", logger.Error(err))
		return err
	}

	st, err := store.NewSQLiteStore(infraCfg.DataDir)
	if err != nil {
		a.logger.Error("Failed to open draft store", logger.Error(err), logger.F("path", infraCfg.DataDir))
		return err
	}
	a.store = st

	remoteSvc, err := service.NewRemoteService(infraCfg.APIURL, token)
	if err != nil {
		a.logger.Error("Failed to initialize reservation client", logger.Error(err))
		return err
	}

	checkoutSvc, err := service.NewCheckoutService(infraCfg.APIURL, token)
	if err != nil {
		a.logger.Error("Failed to initialize checkout client", logger.Error(err))
		return err
	}

	a.engine = &reconcile.Engine{
		Logger:       a.logger,
		Store:        st,
		Remote:       remoteSvc,
		Gateway:      checkoutSvc,
		TTL:          featureCfg.DraftTTL(),
		PendingFirst: featureCfg.View.PendingFirst,
	}

	a.initializeCalendar(featureCfg)
	a.initializeEmail()

	return nil
}

// resolveAPIToken prefers the plain env token; otherwise the token is
// read from the sealed file named by STAYKEEPER_TOKEN_FILE.
func (a *App) resolveAPIToken(cfg *config.Config) (string, error) {
	if cfg.APIToken != "" {
		return cfg.APIToken, nil
	}

	vault := service.NewCredentialVault(filepath.Join(cfg.DataDir, "vault.key"))
	token, err := vault.Open(cfg.TokenFile)
	if err != nil {
		return "", err
	}
	a.logger.Info("API token loaded from sealed file", logger.F("file", cfg.TokenFile))
	return string(token), nil
}

func (a *App) initializeCalendar(featureCfg *service.FeatureConfig) {
	if !featureCfg.Calendar.Enabled {
		return
	}

	calendarSvc, err := service.NewCalendarService(a.ctx, featureCfg.Calendar)
	if err != nil {
		a.logger.Warn("Calendar export not available, stays will not be exported", logger.Error(err))
		return
	}
	a.engine.Calendar = calendarSvc
	a.logger.Info("Calendar export initialized", logger.Status("ready"))
}

func (a *App) initializeEmail() {
	smtpHost := getEnvOrDefault("SMTP_HOST", "smtp.gmail.com")
	smtpPort := getEnvOrDefault("SMTP_PORT", "587")
	smtpUsername := os.Getenv("SMTP_USERNAME")
	smtpPassword := os.Getenv("SMTP_PASSWORD")

	// Docker secrets mount the password as a file.
	if smtpPasswordFile := os.Getenv("SMTP_PASSWORD_FILE"); smtpPasswordFile != "" {
		passwordBytes, err := os.ReadFile(smtpPasswordFile)
		if err != nil {
			a.logger.Warn("Failed to read SMTP password file", logger.Error(err), logger.F("file", smtpPasswordFile))
		} else {
			smtpPassword = strings.TrimSpace(string(passwordBytes))
			a.logger.Info("SMTP password loaded from file", logger.F("file", smtpPasswordFile))
		}
	}

	if smtpUsername == "" || smtpPassword == "" {
		a.logger.Info("Email service not configured (SMTP_USERNAME/SMTP_PASSWORD missing)")
		return
	}

	smtpFrom := getEnvOrDefault("SMTP_FROM", smtpUsername)
	testEmailOnly := os.Getenv("TEST_EMAIL_ONLY")

	emailSvc, err := service.NewEmailService(smtpHost, smtpPort, smtpUsername, smtpPassword, smtpFrom, testEmailOnly)
	if err != nil {
		a.logger.Warn("Email service not available, confirmations will not be sent", logger.Error(err))
		return
	}
	a.engine.Email = emailSvc

	if testEmailOnly != "" {
		a.logger.Info("Email service initialized (TEST MODE)", logger.Status("ready"), logger.F("TEST_EMAIL", testEmailOnly))
	} else {
		a.logger.Info("Email service initialized", logger.Status("ready"))
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
