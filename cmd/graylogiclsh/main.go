// Command graylogiclsh runs the Gray Logic LSH orchestrator: the
// service that watches MQTT traffic from LSH button/actuator devices,
// arbitrates button clicks via a two-phase commit, tracks device
// liveness with a watchdog, and republishes derived commands and
// telemetry.
//
// For architecture details, see SPEC_FULL.md at the repository root.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/nerrad567/gray-logic-lsh/internal/adapter"
	"github.com/nerrad567/gray-logic-lsh/internal/api"
	"github.com/nerrad567/gray-logic-lsh/internal/audit"
	"github.com/nerrad567/gray-logic-lsh/internal/contextstore"
	"github.com/nerrad567/gray-logic-lsh/internal/discovery"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-lsh/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-lsh/internal/schema"
	"github.com/nerrad567/gray-logic-lsh/internal/sysd"

	// Registers the embedded migration SQL with internal/infrastructure/database.
	_ "github.com/nerrad567/gray-logic-lsh/migrations"
)

// version is set at build time via -ldflags "-X main.version=1.2.3".
var version = "dev"

// cli is the root kong command: "serve" (the default, implicit when no
// subcommand is given) starts the orchestrator; "migrate" applies
// pending SQLite migrations and exits.
var cli struct {
	Config   string `help:"Path to the YAML config file." type:"path" default:"config.yaml" short:"c"`
	LogLevel string `help:"Override the configured log level (debug, info, warn, error)." name:"log-level"`

	Migrate struct {
		Down bool `help:"Roll back the most recently applied migration instead of applying pending ones."`
	} `cmd:"" help:"Apply (or roll back) database migrations, then exit."`

	Serve struct{} `cmd:"" default:"1" help:"Run the orchestrator (default command)."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("graylogiclsh"),
		kong.Description("Gray Logic LSH device orchestrator."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging, version)

	switch ctx.Command() {
	case "migrate":
		runMigrate(logger, cfg)
	case "serve":
		runServe(logger, cfg)
	default:
		ctx.Fatalf("unknown command %q", ctx.Command())
	}
}

func runMigrate(logger *logging.Logger, cfg *config.Config) {
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		logger.Error("opening database for migration failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if cli.Migrate.Down {
		if err := db.MigrateDown(ctx); err != nil {
			logger.Error("rolling back migration failed", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back most recent migration")
		return
	}

	if err := db.Migrate(ctx); err != nil {
		logger.Error("applying migrations failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migrations applied")
}

//nolint:gocognit // top-level wiring: every infrastructure component is constructed and shut down here, same shape as the teacher's intended main
func runServe(logger *logging.Logger, cfg *config.Config) {
	logger.Info("starting graylogiclsh", "version", version, "site", cfg.Site.ID)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		logger.Error("opening database failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(ctx, 30*time.Second)
	migrateErr := db.Migrate(migrateCtx)
	migrateCancel()
	if migrateErr != nil {
		logger.Error("applying migrations failed", "error", migrateErr)
		os.Exit(1)
	}

	validators, err := schema.Compile()
	if err != nil {
		logger.Error("compiling LSH payload schemas failed", "error", err)
		os.Exit(1)
	}

	topics := mqtt.Topics{HomieBase: cfg.LSH.HomieBase, LSHBase: cfg.LSH.LSHBase}
	mqttClient, err := mqtt.Connect(cfg.MQTT, topics)
	if err != nil {
		logger.Error("connecting to MQTT broker failed", "error", err)
		os.Exit(1)
	}
	mqttClient.SetLogger(logger)
	defer mqttClient.Close()

	var influxClient *influxdb.Client
	if ic, err := influxdb.Connect(ctx, cfg.InfluxDB); err != nil {
		if !errors.Is(err, influxdb.ErrDisabled) {
			logger.Warn("connecting to InfluxDB failed, telemetry disabled", "error", err)
		}
	} else {
		influxClient = ic
		defer influxClient.Close()
	}

	auditRepo := audit.NewSQLiteRepository(db.DB)
	ctxStore := contextstore.New(db.DB, logger)
	disc := discovery.New(mqttClient, topics)
	notifier := sysd.New()

	adapterSvc := adapter.New(adapter.Deps{
		Config:     cfg,
		Logger:     logger.With("component", "adapter"),
		MQTTClient: mqttClient,
		Topics:     topics,
		Schema:     validators,
		Influx:     influxClient,
		Discovery:  disc,
		CtxStore:   ctxStore,
		Audit:      auditRepo,
		Notifier:   notifier,
	})

	watcher, err := config.NewWatcher([]string{cfg.LSH.SystemConfigPath}, func(path string) {
		reloadCtx, reloadCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer reloadCancel()
		if err := adapterSvc.ReloadSystemConfig(reloadCtx); err != nil {
			logger.Warn("reloading system config after file change failed", "path", path, "error", err)
		} else {
			logger.Info("reloaded system config after file change", "path", path)
		}
	})
	if err != nil {
		logger.Warn("watching system config file for hot-reload failed", "error", err)
	} else {
		defer watcher.Close()
	}

	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WS,
		Logger:   logger.With("component", "api"),
		Adapter:  adapterSvc,
		Audit:    auditRepo,
		CtxStore: ctxStore,
		Version:  version,
	})
	if err != nil {
		logger.Error("constructing API server failed", "error", err)
		os.Exit(1)
	}
	if err := apiServer.Start(ctx); err != nil {
		logger.Error("starting API server failed", "error", err)
		os.Exit(1)
	}
	defer apiServer.Close()

	logger.Info("graylogiclsh ready")

	if err := adapterSvc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("adapter service stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("graylogiclsh stopped")
}
