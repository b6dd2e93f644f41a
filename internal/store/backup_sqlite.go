package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/utils"
	"github.com/MKhiriev/go-settings-sync/models"
)

// sqliteBackupStore is the SQLite-backed implementation of [BackupStore].
// Snapshots are append-only; nothing ever updates a written row. Prune is
// the only deletion path and is driven by the retention setting.
type sqliteBackupStore struct {
	db     *DB
	refs   *utils.UUIDGenerator
	logger *logger.Logger
}

// NewSQLiteBackupStore constructs a [BackupStore] backed by the provided
// database connection and logger.
func NewSQLiteBackupStore(db *DB, log *logger.Logger) BackupStore {
	return &sqliteBackupStore{
		db:     db,
		refs:   utils.NewUUIDGenerator(),
		logger: log,
	}
}

func (s *sqliteBackupStore) Backup(ctx context.Context, resource, content string) (models.ResourceRef, error) {
	log := logger.FromContext(ctx)

	ref := models.ResourceRef{
		Ref:     s.refs.Generate(),
		Created: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, insertBackup, resource, ref.Ref, content, ref.Created)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteBackupStore.Backup").
			Str("resource", resource).
			Msg("failed to append backup snapshot")
		return models.ResourceRef{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return ref, nil
}

func (s *sqliteBackupStore) ResolveContent(ctx context.Context, resource, ref string) (string, error) {
	var content string
	err := s.db.QueryRowContext(ctx, resolveBackupContent, resource, ref).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return content, nil
}

func (s *sqliteBackupStore) GetAllRefs(ctx context.Context, resource string) ([]models.ResourceRef, error) {
	log := logger.FromContext(ctx)

	rows, err := s.db.QueryContext(ctx, getBackupRefs, resource)
	if err != nil {
		log.Err(err).
			Str("func", "sqliteBackupStore.GetAllRefs").
			Str("resource", resource).
			Msg("failed to query backup history")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	refs := make([]models.ResourceRef, 0, 16)
	for rows.Next() {
		var r models.ResourceRef
		if err = rows.Scan(&r.Ref, &r.Created); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		refs = append(refs, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return refs, nil
}

func (s *sqliteBackupStore) Prune(ctx context.Context, resource string, keep int) error {
	if keep < 0 {
		keep = 0
	}

	_, err := s.db.ExecContext(ctx, pruneBackups, resource, resource, keep)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}
