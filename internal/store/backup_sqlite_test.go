package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/utils"
)

func newTestBackupStore(t *testing.T) (*sqliteBackupStore, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	l := logger.NewLogger("test")
	return &sqliteBackupStore{
		db:     &DB{DB: db, logger: l},
		refs:   utils.NewUUIDGenerator(),
		logger: l,
	}, mock
}

func TestSQLiteBackupStore_Backup(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectExec("INSERT INTO sync_backups").
		WithArgs("settings", sqlmock.AnyArg(), `{"a":1}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ref, err := repo.Backup(context.Background(), "settings", `{"a":1}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Ref == "" {
		t.Error("expected a non-empty ref")
	}
	if ref.Created.IsZero() {
		t.Error("expected a creation timestamp")
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_Backup_ExecError(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectExec("INSERT INTO sync_backups").
		WithArgs("settings", sqlmock.AnyArg(), "{}", sqlmock.AnyArg()).
		WillReturnError(errors.New("database is locked"))

	_, err := repo.Backup(context.Background(), "settings", "{}")
	if !errors.Is(err, ErrExecutingStatement) {
		t.Fatalf("expected ErrExecutingStatement, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_ResolveContent(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectQuery("SELECT content").
		WithArgs("settings", "ref-1").
		WillReturnRows(sqlmock.NewRows([]string{"content"}).AddRow(`{"a":1}`))

	content, err := repo.ResolveContent(context.Background(), "settings", "ref-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content != `{"a":1}` {
		t.Errorf("expected snapshot content, got %q", content)
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_ResolveContent_NotFound(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectQuery("SELECT content").
		WithArgs("settings", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"content"}))

	_, err := repo.ResolveContent(context.Background(), "settings", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_GetAllRefs(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT ref, created_at FROM sync_backups").
		WithArgs("settings").
		WillReturnRows(sqlmock.NewRows([]string{"ref", "created_at"}).
			AddRow("ref-2", now).
			AddRow("ref-1", now.Add(-time.Hour)))

	refs, err := repo.GetAllRefs(context.Background(), "settings")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 2 || refs[0].Ref != "ref-2" {
		t.Errorf("expected newest-first refs, got %+v", refs)
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_Prune(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectExec("DELETE FROM sync_backups").
		WithArgs("settings", "settings", 10).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.Prune(context.Background(), "settings", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}

func TestSQLiteBackupStore_Prune_NegativeKeepClampsToZero(t *testing.T) {
	repo, mock := newTestBackupStore(t)

	mock.ExpectExec("DELETE FROM sync_backups").
		WithArgs("settings", "settings", 0).
		WillReturnResult(sqlmock.NewResult(0, 5))

	if err := repo.Prune(context.Background(), "settings", -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectationsMet(t, mock)
}
