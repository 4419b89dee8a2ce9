package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dukerupert/famdo/internal/backup"
	"github.com/dukerupert/famdo/internal/config"
	"github.com/dukerupert/famdo/internal/coordinator"
	"github.com/dukerupert/famdo/internal/database"
	"github.com/dukerupert/famdo/internal/logging"
	"github.com/dukerupert/famdo/internal/metrics"
	"github.com/dukerupert/famdo/internal/notify"
	"github.com/dukerupert/famdo/internal/store"
	ws "github.com/dukerupert/famdo/internal/websocket"
)

// app is the wired core shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	hub     *ws.Hub
	coord   *coordinator.Coordinator
	backups *backup.Manager
	closer  io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()

	backend, closer, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", "postgres", cfg.UsePostgres(), "key", cfg.StorageKey)

	hub := ws.NewHub(logger.With("component", "websocket"), m)
	st := store.NewDocumentStore(backend, cfg.StorageKey, logger)
	emitter := notify.Multi{notify.NewLogEmitter(logger), hub}
	coord := coordinator.New(st, notify.NewListeners(logger), emitter, logger, coordinator.WithMetrics(m))
	if err := coord.Load(ctx); err != nil {
		closer.Close()
		return nil, err
	}
	if cfg.FamilyName != "" {
		if _, err := coord.UpdateFamilyName(ctx, cfg.FamilyName); err != nil {
			closer.Close()
			return nil, fmt.Errorf("apply family name: %w", err)
		}
	}
	coord.Subscribe(hub.Publish)

	mgr := backup.NewManager(backup.Config{
		S3: backup.S3Config{
			Endpoint:  cfg.Backup.Endpoint,
			Bucket:    cfg.Backup.Bucket,
			Region:    cfg.Backup.Region,
			AccessKey: cfg.Backup.AccessKey,
			SecretKey: cfg.Backup.SecretKey,
		},
		Passphrase:    cfg.Backup.Passphrase,
		ScheduleHour:  cfg.Backup.ScheduleHour,
		RetentionDays: cfg.Backup.RetentionDays,
	}, coord, func(s backup.Status) {
		hub.Broadcast(ws.NewMessage(ws.Namespace, "backup_status", map[string]any{
			"state":       s.State,
			"in_progress": s.InProgress,
			"last_backup": s.LastBackup,
			"error":       s.Error,
		}))
	}, logger.With("component", "backup"))

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		hub:     hub,
		coord:   coord,
		backups: mgr,
		closer:  closer,
	}, nil
}

func (a *app) Close() error {
	return a.closer.Close()
}

func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, io.Closer, error) {
	if cfg.UsePostgres() {
		pg, err := store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg, nil
	}
	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return store.NewSQLiteBackend(db), db, nil
}
