// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks that the final merged [StructuredConfig] satisfies the
// daemon's invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.FilePath == "" {
		return fmt.Errorf("%w: file path is required", ErrInvalidSyncConfigs)
	}
	if cfg.Sync.Resource == "" {
		return fmt.Errorf("%w: resource identifier is required", ErrInvalidSyncConfigs)
	}

	if cfg.Workers.SyncInterval < 0 {
		return fmt.Errorf("%w: sync interval must not be negative", ErrInvalidWorkerConfigs)
	}

	return nil
}
