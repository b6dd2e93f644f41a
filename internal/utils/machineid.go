package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MachineID resolves the stable identifier of this machine, creating and
// persisting one on first use. The identifier is recorded in remote sync
// payloads so other devices can tell which machine produced a revision.
func MachineID(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(raw))
		if id != "" {
			return id, nil
		}
	}
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("read machine id file: %w", err)
	}

	id := NewUUIDGenerator().Generate()

	dir := filepath.Dir(path)
	if dir != "." {
		if err = os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create machine id dir: %w", err)
		}
	}
	if err = os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write machine id file: %w", err)
	}

	return id, nil
}
