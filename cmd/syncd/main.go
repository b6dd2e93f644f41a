package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/MKhiriev/go-settings-sync/internal/config"
	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/service"
	"github.com/MKhiriev/go-settings-sync/internal/store"
	"github.com/MKhiriev/go-settings-sync/internal/utils"
	"github.com/MKhiriev/go-settings-sync/internal/watcher"
	"github.com/MKhiriev/go-settings-sync/internal/workers"
	"github.com/MKhiriev/go-settings-sync/migrations"
	"github.com/MKhiriev/go-settings-sync/models"
	"github.com/spf13/afero"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("syncd").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewLogger("syncd")
	if cfg.App.LogFilePath != "" {
		log = logger.NewFileLogger("syncd", cfg.App.LogFilePath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	machineIDPath := cfg.App.MachineIDPath
	if machineIDPath == "" {
		machineIDPath = filepath.Join(cfg.Storage.StateDir, "machine-id")
	}
	machineID, err := utils.MachineID(machineIDPath)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve machine id")
	}
	log.Info().Str("machine_id", machineID).Msg("machine identity resolved")

	remote, err := newRemoteStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create remote store")
	}

	backupDB, err := store.NewConnectSQLite(ctx, cfg.Storage.Backups.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("open backup database")
	}
	defer backupDB.Close()
	if err = migrations.MigrateSQLite(backupDB.DB); err != nil {
		log.Fatal().Err(err).Msg("migrate backup database")
	}
	backups := store.NewSQLiteBackupStore(backupDB, log)

	files := store.NewFileService(afero.NewOsFs(), log)

	schemaVersion := cfg.Sync.SchemaVersion
	if schemaVersion <= 0 {
		schemaVersion = 1
	}

	sync := service.NewJSONFileSynchronizer(service.FileSynchronizerOptions{
		SynchronizerOptions: service.SynchronizerOptions{
			Resource:        cfg.Sync.Resource,
			Version:         schemaVersion,
			MachineID:       machineID,
			LastSyncPath:    filepath.Join(cfg.Storage.StateDir, "lastSync-"+cfg.Sync.Resource+".json"),
			DebounceWindow:  cfg.Sync.DebounceWindow,
			MaxSyncAttempts: cfg.Sync.MaxSyncAttempts,
			RetryBaseDelay:  cfg.Sync.RetryBaseDelay,
			BackupRetention: cfg.Storage.Backups.Retention,
		},
		FilePath: cfg.Sync.FilePath,
	}, service.NewManualMerger(), remote, backups, files, log)

	sync.OnDidChangeStatus(func(status models.SyncStatus) {
		log.Info().Str("resource", cfg.Sync.Resource).Str("status", string(status)).Msg("sync status changed")
	})
	sync.OnDidChangeConflicts(func(conflicts []models.Conflict) {
		log.Info().Str("resource", cfg.Sync.Resource).Int("count", len(conflicts)).Msg("conflict set changed")
	})
	sync.OnDidChangeLocal(func() {
		_ = sync.Sync(ctx, nil)
	})

	fw, err := watcher.NewFileWatcher(log)
	if err != nil {
		log.Fatal().Err(err).Msg("create file watcher")
	}
	if err = fw.Start(cfg.Sync.FilePath); err != nil {
		log.Fatal().Err(err).Msg("watch synchronized file")
	}

	job := service.NewSyncJob(service.NewStoreManifestSource(remote, cfg.Sync.Resource), sync)

	workers.NewWorkers(
		workers.WorkerFunc(func() { job.Start(ctx, cfg.Workers.SyncInterval) }),
		workers.WorkerFunc(func() { go pumpFileEvents(ctx, fw, sync, log) }),
	).Run()

	if err = sync.Sync(ctx, nil); err != nil {
		log.Warn().Err(err).Msg("initial sync failed")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	job.Stop()
	if err = fw.Stop(); err != nil {
		log.Warn().Err(err).Msg("stop file watcher")
	}
	if err = sync.Stop(context.Background()); err != nil {
		log.Warn().Err(err).Msg("stop synchronizer")
	}
}

// newRemoteStore opens the PostgreSQL-backed remote store, or the in-memory
// one when no DSN is configured (single-host demo mode).
func newRemoteStore(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (store.RemoteStore, error) {
	if cfg.Storage.DB.DSN == "" {
		log.Warn().Msg("no database uri configured, remote state will not survive restarts")
		return store.NewMemoryRemoteStore(), nil
	}

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB.DSN, log)
	if err != nil {
		return nil, err
	}
	if err = migrations.MigratePostgres(db.DB); err != nil {
		return nil, err
	}
	return store.NewPostgresRemoteStore(db, log), nil
}

// pumpFileEvents forwards watcher events for the synchronized file into the
// synchronizer until the watcher or ctx shuts down.
func pumpFileEvents(ctx context.Context, fw *watcher.FileWatcher, sync *service.JSONFileSynchronizer, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.Events():
			if !ok {
				return
			}
			log.Debug().Str("path", event.Path).Str("op", event.Op.String()).Msg("file changed")
			sync.HandleFileChange(ctx)
		case err, ok := <-fw.Errors():
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("file watcher error")
		}
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
