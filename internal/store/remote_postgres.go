package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/utils"
	"github.com/MKhiriev/go-settings-sync/models"
	"github.com/jackc/pgerrcode"
)

// postgresRemoteStore is the PostgreSQL-backed implementation of
// [RemoteStore]. The current remote state of every resource lives in the
// sync_resources pointer table; every written revision is appended to the
// sync_resource_refs history table. The ref precondition is enforced by the
// database itself: an UPDATE guarded by the expected ref, or an INSERT that
// trips the primary key when the resource already exists.
type postgresRemoteStore struct {
	db     *DB
	refs   *utils.UUIDGenerator
	logger *logger.Logger
}

// NewPostgresRemoteStore constructs a [RemoteStore] backed by the provided
// database connection and logger.
func NewPostgresRemoteStore(db *DB, log *logger.Logger) RemoteStore {
	return &postgresRemoteStore{
		db:     db,
		refs:   utils.NewUUIDGenerator(),
		logger: log,
	}
}

func (p *postgresRemoteStore) Read(ctx context.Context, resource, lastKnownRef string) (RemoteData, error) {
	log := logger.FromContext(ctx)

	var ref, content string
	err := p.db.QueryRowContext(ctx, getCurrentRevision, resource).Scan(&ref, &content)
	if errors.Is(err, sql.ErrNoRows) {
		// Never written remotely.
		return RemoteData{}, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "postgresRemoteStore.Read").
			Str("resource", resource).
			Bool("retryable", p.db.errorClassificator.Classify(err) == Retryable).
			Msg("failed to read current revision")
		return RemoteData{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if lastKnownRef != "" && ref == lastKnownRef {
		return RemoteData{Ref: ref}, nil
	}
	return RemoteData{Ref: ref, Content: &content}, nil
}

func (p *postgresRemoteStore) Write(ctx context.Context, resource, content, expectedRef string) (string, error) {
	log := logger.FromContext(ctx)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer func() { _ = tx.Rollback() }()

	newRef := p.refs.Generate()

	if expectedRef == "" {
		// First write: the pointer row must not exist yet. A concurrent
		// first writer trips the primary key instead.
		if _, err = tx.ExecContext(ctx, insertCurrentRef, resource, newRef); err != nil {
			if postgresError(err) == pgerrcode.UniqueViolation {
				return "", ErrPreconditionFailed
			}
			log.Err(err).
				Str("func", "postgresRemoteStore.Write").
				Str("resource", resource).
				Bool("retryable", p.db.errorClassificator.Classify(err) == Retryable).
				Msg("failed to insert current ref")
			return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	} else {
		result, execErr := tx.ExecContext(ctx, updateCurrentRef, resource, expectedRef, newRef)
		if execErr != nil {
			log.Err(execErr).
				Str("func", "postgresRemoteStore.Write").
				Str("resource", resource).
				Bool("retryable", p.db.errorClassificator.Classify(execErr) == Retryable).
				Msg("failed to update current ref")
			return "", fmt.Errorf("%w: %w", ErrExecutingStatement, execErr)
		}
		affected, raErr := result.RowsAffected()
		if raErr != nil {
			return "", fmt.Errorf("%w: %w", ErrExecutingStatement, raErr)
		}
		if affected == 0 {
			// The expected ref no longer matches the current server state:
			// another writer updated the resource concurrently.
			return "", ErrPreconditionFailed
		}
	}

	if _, err = tx.ExecContext(ctx, insertRevision, resource, newRef, content); err != nil {
		log.Err(err).
			Str("func", "postgresRemoteStore.Write").
			Str("resource", resource).
			Str("ref", newRef).
			Msg("failed to append revision")
		return "", fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return newRef, nil
}

func (p *postgresRemoteStore) ResolveContent(ctx context.Context, resource, ref string) (string, error) {
	var content string
	err := p.db.QueryRowContext(ctx, resolveRevisionContent, resource, ref).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return content, nil
}

func (p *postgresRemoteStore) GetAllRefs(ctx context.Context, resource string) ([]models.ResourceRef, error) {
	log := logger.FromContext(ctx)

	// squirrel generates the placeholder numbering for us; the query gains
	// optional clauses over time (since/limit filters for history browsing).
	query, args, err := sq.Select("ref", "created_at").
		From("sync_resource_refs").
		Where(sq.Eq{"resource": resource}).
		OrderBy("id DESC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build refs query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "postgresRemoteStore.GetAllRefs").
			Str("resource", resource).
			Msg("failed to query ref history")
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

func (p *postgresRemoteStore) LatestRef(ctx context.Context, resource string) (string, error) {
	var ref string
	err := p.db.QueryRowContext(ctx, getCurrentRef, resource).Scan(&ref)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return ref, nil
}
