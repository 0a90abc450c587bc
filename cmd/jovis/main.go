package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jovisbot/jovis/internal/bot"
	"github.com/jovisbot/jovis/internal/bugreport"
	"github.com/jovisbot/jovis/internal/messaging"
	"github.com/jovisbot/jovis/internal/store"
	"github.com/jovisbot/jovis/internal/twiliowhatsapp"
	"github.com/jovisbot/jovis/internal/util"
	"github.com/jovisbot/jovis/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Jovis state data
	DefaultStateDir = "/var/lib/jovis"
	// DefaultAppDBFileName is the default SQLite database filename for application data
	DefaultAppDBFileName = "jovis.db"
	// DefaultWhatsAppDBFileName is the default SQLite database filename for whatsmeow session data
	DefaultWhatsAppDBFileName = "whatsmeow.db"
)

func main() {
	// Load environment configuration, then initialize the logger so the
	// debug toggle from .env is honored
	config := loadEnvironmentConfig()
	initializeLogger(config.Debug)

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	messenger, err := buildMessagingService(flags)
	if err != nil {
		slog.Error("Failed to initialize messaging service", "error", err)
		os.Exit(1)
	}

	b, err := bot.New(buildBotOptions(flags, st, messenger)...)
	if err != nil {
		slog.Error("Failed to initialize bot", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Bootstrapping Jovis", "backend", *flags.backend, "state_dir", *flags.stateDir)
	if err := b.Run(ctx); err != nil {
		slog.Error("Jovis failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Jovis exited successfully")
}

// Config holds environment configuration
type Config struct {
	ApplicationDBDSN string
	WhatsAppDBDSN    string
	StateDir         string
	Backend          string
	WebhookAddr      string
	ReminderCron     string
	AdminID          int64
	Debug            bool
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	waDSN        *string
	backend      *string
	webhookAddr  *string
	reminderCron *string
	adminID      *int64
}

// initializeLogger sets up structured logging
func initializeLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}

	config := Config{
		ApplicationDBDSN: os.Getenv("DATABASE_DSN"),
		WhatsAppDBDSN:    os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:         os.Getenv("JOVIS_STATE_DIR"),
		Backend:          os.Getenv("MESSAGING_BACKEND"),
		WebhookAddr:      os.Getenv("TWILIO_WEBHOOK_ADDR"),
		ReminderCron:     os.Getenv("REMINDER_SCHEDULE"),
		AdminID:          util.ParseInt64Env("JOVIS_ADMIN_ID", 0),
		Debug:            util.ParseBoolEnv("JOVIS_DEBUG", false),
	}

	// Legacy single-variable setup
	if config.ApplicationDBDSN == "" {
		config.ApplicationDBDSN = os.Getenv("DATABASE_URL")
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
	}
	if config.Backend == "" {
		config.Backend = "whatsapp"
	}
	if config.WebhookAddr == "" {
		config.WebhookAddr = ":8080"
	}

	// Default to SQLite files in the state directory
	if config.ApplicationDBDSN == "" {
		config.ApplicationDBDSN = filepath.Join(config.StateDir, DefaultAppDBFileName)
	}
	if config.WhatsAppDBDSN == "" {
		config.WhatsAppDBDSN = "file:" + filepath.Join(config.StateDir, DefaultWhatsAppDBFileName) + "?_foreign_keys=on"
	}

	slog.Debug("environment variables loaded",
		"DATABASE_DSN_SET", config.ApplicationDBDSN != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDBDSN != "",
		"JOVIS_STATE_DIR", config.StateDir,
		"MESSAGING_BACKEND", config.Backend,
		"REMINDER_SCHEDULE", config.ReminderCron,
		"JOVIS_ADMIN_ID_SET", config.AdminID != 0)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for Jovis data (overrides $JOVIS_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.ApplicationDBDSN, "database DSN for application data (overrides $DATABASE_DSN)"),
		waDSN:        flag.String("wa-db-dsn", config.WhatsAppDBDSN, "database DSN for the whatsmeow session store (overrides $WHATSAPP_DB_DSN)"),
		backend:      flag.String("backend", config.Backend, "messaging backend: whatsapp or twilio (overrides $MESSAGING_BACKEND)"),
		webhookAddr:  flag.String("webhook-addr", config.WebhookAddr, "listen address for the Twilio inbound webhook (overrides $TWILIO_WEBHOOK_ADDR)"),
		reminderCron: flag.String("reminder-cron", config.ReminderCron, "cron schedule for the daily due-date sweep (overrides $REMINDER_SCHEDULE)"),
		adminID:      flag.Int64("admin-id", config.AdminID, "user ID allowed to run admin commands (overrides $JOVIS_ADMIN_ID)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"waDSN_set", *flags.waDSN != "",
		"backend", *flags.backend,
		"reminderCron", *flags.reminderCron,
		"adminID_set", *flags.adminID != 0)

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) == "sqlite3" {
		stateDir := filepath.Dir(*flags.dbDSN)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
		slog.Debug("State directory ready", "state_dir", stateDir)
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
		storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
	} else {
		slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
		storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
	}
	return storeOpts
}

// buildStore opens the application store for the configured DSN
func buildStore(flags Flags) (store.Store, error) {
	opts := buildStoreOptions(flags)
	if store.DetectDSNType(*flags.dbDSN) == "postgres" {
		return store.NewPostgresStore(opts...)
	}
	return store.NewSQLiteStore(opts...)
}

// buildWhatsAppOptions constructs WhatsApp client configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.waDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDSN))
	}
	return waOpts
}

// buildMessagingService constructs the configured messaging backend
func buildMessagingService(flags Flags) (messaging.Service, error) {
	if *flags.backend == "twilio" {
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, err
		}
		svc := messaging.NewTwilioService(client)
		startTwilioWebhook(svc, *flags.webhookAddr)
		return svc, nil
	}

	client, err := whatsapp.NewClient(buildWhatsAppOptions(flags)...)
	if err != nil {
		return nil, err
	}
	return messaging.NewWhatsAppService(client), nil
}

// startTwilioWebhook serves the inbound message webhook for the Twilio backend
func startTwilioWebhook(svc *messaging.TwilioService, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook/twilio", svc.WebhookHandler)
	go func() {
		slog.Info("Twilio webhook listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("Twilio webhook server failed", "error", err)
		}
	}()
}

// buildBotOptions constructs bot configuration options
func buildBotOptions(flags Flags, st store.Store, messenger messaging.Service) []bot.Option {
	botOpts := []bot.Option{
		bot.WithStore(st),
		bot.WithMessenger(messenger),
	}
	if *flags.adminID != 0 {
		botOpts = append(botOpts, bot.WithAdminID(*flags.adminID))
	}
	if *flags.reminderCron != "" {
		botOpts = append(botOpts, bot.WithReminderCron(*flags.reminderCron))
	}
	if reporter, err := bugreport.NewSMTPReporter(); err != nil {
		slog.Warn("SMTP bug reporter not configured, bug reports will be discarded", "error", err)
	} else {
		botOpts = append(botOpts, bot.WithBugReporter(reporter))
	}
	return botOpts
}
