package store

import (
	"context"

	"github.com/MKhiriev/go-settings-sync/models"
)

//go:generate mockgen -source=sync_interfaces.go -destination=../mock/store_mock.go -package=mock

// RemoteData is one read of the remote blob store for a resource.
// A nil Content means either the resource has never been written remotely
// (Ref is empty in that case) or the content was omitted because Ref equals
// the lastKnownRef supplied to Read and the caller already holds it.
type RemoteData struct {
	Ref     string
	Content *string
}

// RemoteStore is the key-versioned blob store holding the remote copy of
// every synchronized resource. Implementations may be shared with other
// synchronizer instances on other devices; all correctness comes from the
// ref precondition on Write, never from locking.
type RemoteStore interface {
	// Read returns the current ref and content for resource. When the
	// current ref equals lastKnownRef the implementation may omit the
	// content; the caller falls back to its cached copy. An empty
	// lastKnownRef always returns the full content.
	Read(ctx context.Context, resource, lastKnownRef string) (RemoteData, error)

	// Write stores content under resource and returns the newly assigned
	// ref. A non-empty expectedRef is an optimistic-concurrency
	// precondition: if it no longer matches the current server state the
	// write fails with ErrPreconditionFailed. An empty expectedRef asserts
	// that the resource has never been written.
	Write(ctx context.Context, resource, content, expectedRef string) (string, error)

	// ResolveContent returns the content stored for resource at ref.
	// Fails with ErrNotFound when the ref does not exist.
	ResolveContent(ctx context.Context, resource, ref string) (string, error)

	// GetAllRefs returns the ref history for resource, newest first.
	GetAllRefs(ctx context.Context, resource string) ([]models.ResourceRef, error)

	// LatestRef returns the current ref for resource, or an empty string if
	// the resource has never been written. Used to assemble manifests.
	LatestRef(ctx context.Context, resource string) (string, error)
}

// BackupStore is the append-only ref-addressed log of local snapshots taken
// before each destructive sync step.
type BackupStore interface {
	// Backup appends content as a new snapshot of resource and returns the
	// assigned ref with its creation timestamp.
	Backup(ctx context.Context, resource, content string) (models.ResourceRef, error)

	// ResolveContent returns the snapshot content for resource at ref.
	// Fails with ErrNotFound when the ref does not exist.
	ResolveContent(ctx context.Context, resource, ref string) (string, error)

	// GetAllRefs returns the snapshot history for resource, newest first.
	GetAllRefs(ctx context.Context, resource string) ([]models.ResourceRef, error)

	// Prune removes all but the newest keep snapshots of resource.
	Prune(ctx context.Context, resource string, keep int) error
}

// FileService is the filesystem abstraction used for the backing file, the
// last-sync cache, and transient preview artifacts. Writes can carry a
// previous-content precondition so concurrent external edits are detected.
type FileService interface {
	// ReadFile returns the file content. Fails with ErrFileNotFound when
	// the file does not exist.
	ReadFile(ctx context.Context, path string) (string, error)

	// WriteFile replaces the file content. When previous is non-nil the
	// write only succeeds if the current on-disk content still equals
	// *previous; otherwise it fails with ErrFileModifiedSince, or with
	// ErrFileNotFound when the file vanished.
	WriteFile(ctx context.Context, path, content string, previous *string) error

	// CreateFile writes a new file, creating parent directories as needed.
	// Fails with ErrFileAlreadyExists when the file already exists.
	CreateFile(ctx context.Context, path, content string) error

	// DeleteFile removes the file. Fails with ErrFileNotFound when it does
	// not exist.
	DeleteFile(ctx context.Context, path string) error

	// Exists reports whether the file exists.
	Exists(ctx context.Context, path string) (bool, error)
}
