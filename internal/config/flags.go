package config

import (
	"flag"
	"os"
	"time"
)

// ParseFlags parses all configuration flags from the process arguments.
//
// Flags:
//
//	-d database DSN of the remote store
//	-b local backup database path
//	-s state directory for last-sync records
//	-f path of the file to synchronize
//	-r resource identifier
//	-c/-config json file path with configs
//	-machine-id-path machine identity file path
//	-log-file log output file path
//	-schema-version content schema version
//	-debounce local change debounce window (e.g., "50ms")
//	-max-attempts optimistic-concurrency attempt budget
//	-retry-base-delay backoff seed between retries (e.g., "100ms")
//	-sync-interval periodic sync interval (e.g., "5m")
func ParseFlags() *StructuredConfig {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg := parseFlags(fs, os.Args[1:])
	return cfg
}

func parseFlags(fs *flag.FlagSet, args []string) *StructuredConfig {
	var databaseDSN string
	var backupPath string
	var backupRetention int
	var stateDir string
	var filePath string
	var resource string
	var jsonConfigPath string
	var machineIDPath string
	var logFilePath string
	var schemaVersion int
	var debounceWindow time.Duration
	var maxAttempts uint64
	var retryBaseDelay time.Duration
	var syncInterval time.Duration

	fs.StringVar(&databaseDSN, "d", "", "Database DSN of the remote store")
	fs.StringVar(&backupPath, "b", "", "Local backup database path")
	fs.IntVar(&backupRetention, "backup-retention", 0, "Snapshots kept per resource")
	fs.StringVar(&stateDir, "s", "", "State directory for last-sync records")
	fs.StringVar(&filePath, "f", "", "Path of the file to synchronize")
	fs.StringVar(&resource, "r", "", "Resource identifier")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&machineIDPath, "machine-id-path", "", "Machine identity file path")
	fs.StringVar(&logFilePath, "log-file", "", "Log output file path")
	fs.IntVar(&schemaVersion, "schema-version", 0, "Content schema version")
	fs.DurationVar(&debounceWindow, "debounce", 0, "Local change debounce window (e.g., 50ms)")
	fs.Uint64Var(&maxAttempts, "max-attempts", 0, "Optimistic-concurrency attempt budget")
	fs.DurationVar(&retryBaseDelay, "retry-base-delay", 0, "Backoff seed between retries (e.g., 100ms)")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval (e.g., 5m)")

	_ = fs.Parse(args)

	return &StructuredConfig{
		App: App{
			MachineIDPath: machineIDPath,
			LogFilePath:   logFilePath,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
			Backups: Backups{
				Path:      backupPath,
				Retention: backupRetention,
			},
			StateDir: stateDir,
		},
		Sync: Sync{
			Resource:        resource,
			FilePath:        filePath,
			SchemaVersion:   schemaVersion,
			DebounceWindow:  debounceWindow,
			MaxSyncAttempts: maxAttempts,
			RetryBaseDelay:  retryBaseDelay,
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		JSONFilePath: jsonConfigPath,
	}
}
