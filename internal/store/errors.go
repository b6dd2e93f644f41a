package store

import "errors"

// Sentinel errors returned by store implementations to signal well-known
// failure conditions. Callers should use [errors.Is] to match against these
// values.
var (
	// ErrNotFound is returned when a ref-addressed lookup (remote content,
	// backup snapshot) targets a resource or ref that does not exist.
	ErrNotFound = errors.New("sync resource not found")

	// ErrPreconditionFailed is returned when an optimistic-concurrency check
	// fails on a remote write: the expected ref supplied by the caller no
	// longer matches the current server state, meaning another writer
	// updated the resource concurrently. The sync engine recovers from this
	// by re-fetching and retrying.
	ErrPreconditionFailed = errors.New("remote write precondition failed")
)

// File-level sentinel errors. The file service distinguishes "file does not
// exist" from "file changed under us" so the sync engine can translate both
// into a local precondition failure without inspecting raw filesystem errors.
var (
	// ErrFileNotFound is returned when the target file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrFileAlreadyExists is returned by CreateFile when the target file
	// already exists.
	ErrFileAlreadyExists = errors.New("file already exists")

	// ErrFileModifiedSince is returned when a write carried a
	// previous-content precondition and the on-disk content no longer
	// matches it, meaning the file was edited concurrently.
	ErrFileModifiedSince = errors.New("file was modified since last read")
)

// Low-level database operation errors. These are returned (or wrapped) by
// the SQL-backed stores when an operation fails before any domain logic can
// be applied.
var (
	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrBeginningTransaction is returned when the database driver cannot
	// start a new transaction.
	ErrBeginningTransaction = errors.New("failed to begin transaction")

	// ErrCommitingTransaction is returned when committing an open
	// transaction fails. The transaction is considered rolled back at this
	// point.
	ErrCommitingTransaction = errors.New("failed to commit transaction")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to execute statement")

	// ErrScanningRow is returned when scanning column values from a result
	// row into a destination fails.
	ErrScanningRow = errors.New("failed to scan row")
)
