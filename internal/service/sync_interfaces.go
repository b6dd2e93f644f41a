package service

import (
	"context"

	"github.com/MKhiriev/go-settings-sync/models"
)

// ResourceSynchronizer is the full surface of one resource's sync engine:
// the state machine, conflict bookkeeping, history browsing and the change
// events consumed by whoever hosts the synchronizer.
type ResourceSynchronizer interface {
	// Resource returns the identifier this synchronizer reconciles.
	Resource() string

	// Status returns the current lifecycle state.
	Status() models.SyncStatus

	// Conflicts returns the pending conflict set. Non-empty exactly while
	// Status is SyncStatusHasConflicts.
	Conflicts() []models.Conflict

	// Sync runs one reconciliation pass. A nil manifest disables the
	// fetch-avoidance shortcut; the sync still proceeds. Re-entrant calls
	// while syncing or while conflicts are pending are no-ops.
	Sync(ctx context.Context, manifest models.Manifest) error

	// Stop aborts any in-flight work, discards transient preview state and
	// forces the status back to SyncStatusIdle.
	Stop(ctx context.Context) error

	// Replace overwrites both the local and the remote state with the
	// historical snapshot addressed by uri. Returns false without error when
	// the snapshot cannot be resolved or is not recognizable sync data.
	Replace(ctx context.Context, uri string) (bool, error)

	// GetSyncPreview computes what a sync would do right now without
	// performing it. Returns an empty preview when the resource is disabled.
	GetSyncPreview(ctx context.Context) (*SyncPreview, error)

	// ResetLocal discards the persisted last-sync record so the next sync
	// starts from a clean slate. Never fails; problems are logged.
	ResetLocal(ctx context.Context)

	// GetRemoteSyncResourceHandles lists the remote ref history, newest
	// first, as addressable handles.
	GetRemoteSyncResourceHandles(ctx context.Context) ([]models.ResourceHandle, error)

	// GetLocalSyncResourceHandles lists the local backup history, newest
	// first, as addressable handles.
	GetLocalSyncResourceHandles(ctx context.Context) ([]models.ResourceHandle, error)

	// GetMachineID returns the machine identifier recorded in the remote
	// snapshot behind handle, or an empty string when none was recorded.
	GetMachineID(ctx context.Context, handle models.ResourceHandle) (string, error)

	// ResolveContent returns the content behind a sync-scheme URI: a backup
	// snapshot or a side of the pending conflict preview.
	ResolveContent(ctx context.Context, uri string) (string, error)

	// SetEnabled administratively enables or disables the resource. Syncing
	// a disabled resource stops any running sync and returns immediately.
	SetEnabled(enabled bool)

	// TriggerLocalChange schedules a debounced check of whether the local
	// state diverged from the last sync point, firing the local-change event
	// if so.
	TriggerLocalChange()

	// OnDidChangeStatus registers a callback invoked on every status
	// transition.
	OnDidChangeStatus(fn func(models.SyncStatus))

	// OnDidChangeConflicts registers a callback invoked whenever the
	// conflict set changes, including when it is cleared.
	OnDidChangeConflicts(fn func([]models.Conflict))

	// OnDidChangeLocal registers a callback invoked when the debounced
	// local-change check detects divergence from the last sync point.
	OnDidChangeLocal(fn func())
}

// ResourceStrategy is the resource-specific half of a synchronizer: it knows
// how to compare, merge and apply one kind of content, while the owning
// Synchronizer drives the state machine, caching and retry around it.
type ResourceStrategy interface {
	// PerformSync reconciles local state against remote using lastSync as
	// the common ancestor, applying whatever writes are needed, and returns
	// the resulting status: SyncStatusIdle when reconciled or
	// SyncStatusHasConflicts when both sides diverged irreconcilably.
	PerformSync(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (models.SyncStatus, error)

	// GeneratePreview computes the comparison between local state, remote
	// and lastSync without applying anything.
	GeneratePreview(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (*SyncPreview, error)

	// PerformReplace overwrites local and remote state with data,
	// using remote.Ref as the write precondition.
	PerformReplace(ctx context.Context, data *models.SyncData, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error

	// StopStrategy discards any transient strategy state (cached previews,
	// preview artifacts) when the owning synchronizer is stopped.
	StopStrategy(ctx context.Context) error
}

// SyncPreview is the outcome of comparing local state, remote state and the
// last sync point, before any of it is applied.
type SyncPreview struct {
	// HasLocalChanged reports that local state diverged from the last sync
	// point and a push is needed.
	HasLocalChanged bool

	// HasRemoteChanged reports that the remote content differs from current
	// local state and a pull would change it.
	HasRemoteChanged bool

	// HasConflicts reports that both sides diverged and the merger could not
	// reconcile them.
	HasConflicts bool

	// Content is the resolved content a conflict-free sync would leave on
	// both sides.
	Content string

	// LocalContent is the local state captured when the preview was
	// computed. It doubles as the write precondition when the preview is
	// applied.
	LocalContent string

	// HasLocalState reports whether local state existed at capture time.
	HasLocalState bool

	// Remote and LastSync are the inputs the preview was computed from.
	Remote   models.RemoteUserData
	LastSync *models.LastSyncUserData
}

// MergeResult is a ContentMerger's verdict on a two-sided divergence.
type MergeResult struct {
	Content      string
	HasConflicts bool
}

// ContentMerger decides the outcome when local and remote both changed since
// the common ancestor. base is nil when no ancestor exists and remote is nil
// when the resource was never written remotely.
type ContentMerger interface {
	Merge(ctx context.Context, local string, remote, base *string) (MergeResult, error)
}
