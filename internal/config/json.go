package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		MachineIDPath string `json:"machine_id_path"`
		LogFilePath   string `json:"log_file_path"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`

		Backups struct {
			Path      string `json:"path"`
			Retention int    `json:"retention"`
		} `json:"backups,omitempty"`

		StateDir string `json:"state_dir"`
	} `json:"storage,omitempty"`

	Sync struct {
		Resource        string   `json:"resource"`
		FilePath        string   `json:"file_path"`
		SchemaVersion   int      `json:"schema_version"`
		DebounceWindow  Duration `json:"debounce_window"`
		MaxSyncAttempts uint64   `json:"max_attempts"`
		RetryBaseDelay  Duration `json:"retry_base_delay"`
	} `json:"sync,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			MachineIDPath: jsonCfg.App.MachineIDPath,
			LogFilePath:   jsonCfg.App.LogFilePath,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
			Backups: Backups{
				Path:      jsonCfg.Storage.Backups.Path,
				Retention: jsonCfg.Storage.Backups.Retention,
			},
			StateDir: jsonCfg.Storage.StateDir,
		},
		Sync: Sync{
			Resource:        jsonCfg.Sync.Resource,
			FilePath:        jsonCfg.Sync.FilePath,
			SchemaVersion:   jsonCfg.Sync.SchemaVersion,
			DebounceWindow:  time.Duration(jsonCfg.Sync.DebounceWindow),
			MaxSyncAttempts: jsonCfg.Sync.MaxSyncAttempts,
			RetryBaseDelay:  time.Duration(jsonCfg.Sync.RetryBaseDelay),
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
