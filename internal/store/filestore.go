package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/spf13/afero"
)

// aferoFileService implements [FileService] on top of an afero filesystem.
// Production code passes afero.NewOsFs(); tests pass afero.NewMemMapFs().
//
// The previous-content precondition on WriteFile is a read-compare-write:
// the engine assumes the backing file is single-writer within this process,
// so the check only needs to catch external edits between the engine's read
// and its write, not to be atomic against them.
type aferoFileService struct {
	fs     afero.Fs
	logger *logger.Logger
}

// NewFileService constructs a [FileService] over fs.
func NewFileService(fs afero.Fs, log *logger.Logger) FileService {
	return &aferoFileService{fs: fs, logger: log}
}

func (f *aferoFileService) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := afero.ReadFile(f.fs, path)
	if os.IsNotExist(err) {
		return "", ErrFileNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return string(raw), nil
}

func (f *aferoFileService) WriteFile(ctx context.Context, path, content string, previous *string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if previous != nil {
		current, err := afero.ReadFile(f.fs, path)
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		if err != nil {
			return fmt.Errorf("read file %s for precondition: %w", path, err)
		}
		if !bytes.Equal(current, []byte(*previous)) {
			return ErrFileModifiedSince
		}
	}

	if err := afero.WriteFile(f.fs, path, []byte(content), 0o600); err != nil {
		f.logger.Err(err).Str("func", "aferoFileService.WriteFile").Str("path", path).Msg("write failed")
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

func (f *aferoFileService) CreateFile(ctx context.Context, path, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := afero.Exists(f.fs, path)
	if err != nil {
		return fmt.Errorf("stat file %s: %w", path, err)
	}
	if exists {
		return ErrFileAlreadyExists
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err = f.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	if err = afero.WriteFile(f.fs, path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("create file %s: %w", path, err)
	}
	return nil
}

func (f *aferoFileService) DeleteFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := f.fs.Remove(path)
	if os.IsNotExist(err) {
		return ErrFileNotFound
	}
	if err != nil {
		return fmt.Errorf("delete file %s: %w", path, err)
	}
	return nil
}

func (f *aferoFileService) Exists(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	exists, err := afero.Exists(f.fs, path)
	if err != nil {
		return false, fmt.Errorf("stat file %s: %w", path, err)
	}
	return exists, nil
}
