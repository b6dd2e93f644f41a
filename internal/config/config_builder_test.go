package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSyncConfig() *StructuredConfig {
	return &StructuredConfig{
		Sync: Sync{Resource: "settings", FilePath: "/home/user/settings.json"},
	}
}

func TestConfigBuilder_MergePrecedence(t *testing.T) {
	// mergo keeps the first non-zero value, so earlier sources win.
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{
			Sync: Sync{Resource: "settings", FilePath: "/from-env.json", DebounceWindow: 25 * time.Millisecond},
		},
		&StructuredConfig{
			Sync:    Sync{Resource: "ignored", FilePath: "/from-flags.json", MaxSyncAttempts: 4},
			Workers: Workers{SyncInterval: time.Minute},
		},
	)

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "settings", cfg.Sync.Resource)
	assert.Equal(t, "/from-env.json", cfg.Sync.FilePath)
	assert.Equal(t, 25*time.Millisecond, cfg.Sync.DebounceWindow)
	// Fields absent from the first source fall through to the next.
	assert.Equal(t, uint64(4), cfg.Sync.MaxSyncAttempts)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
}

func TestConfigBuilder_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		cfg  *StructuredConfig
		want error
	}{
		{
			name: "missing file path",
			cfg:  &StructuredConfig{Sync: Sync{Resource: "settings"}},
			want: ErrInvalidSyncConfigs,
		},
		{
			name: "missing resource",
			cfg:  &StructuredConfig{Sync: Sync{FilePath: "/f.json"}},
			want: ErrInvalidSyncConfigs,
		},
		{
			name: "negative interval",
			cfg: &StructuredConfig{
				Sync:    Sync{Resource: "settings", FilePath: "/f.json"},
				Workers: Workers{SyncInterval: -time.Second},
			},
			want: ErrInvalidWorkerConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newConfigBuilder()
			b.configs = append(b.configs, tt.cfg)
			_, err := b.build()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfigBuilder_ValidConfig(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, validSyncConfig())

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "settings", cfg.Sync.Resource)
}
