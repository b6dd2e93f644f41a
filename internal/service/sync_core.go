// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/store"
	"github.com/MKhiriev/go-settings-sync/models"
	"github.com/sethvargo/go-retry"
)

const (
	// defaultMaxSyncAttempts bounds how many times one sync pass will chase a
	// moving remote ref before surfacing the precondition failure.
	defaultMaxSyncAttempts = 5

	// defaultRetryBaseDelay seeds the fibonacci backoff between attempts.
	defaultRetryBaseDelay = 100 * time.Millisecond

	// defaultBackupRetention is how many local snapshots are kept per resource.
	defaultBackupRetention = 10
)

// SynchronizerOptions configures one resource synchronizer.
type SynchronizerOptions struct {
	// Resource is the identifier under which remote state, backups and the
	// last-sync record are keyed.
	Resource string

	// Version is the highest remote schema version this synchronizer can
	// merge. Remote snapshots with a greater version abort the sync.
	Version int

	// MachineID is recorded in every remote snapshot this device writes.
	MachineID string

	// LastSyncPath is where the persisted last-sync record lives.
	LastSyncPath string

	// DebounceWindow holds back local-change checks after a trigger burst.
	// Zero selects the default.
	DebounceWindow time.Duration

	// MaxSyncAttempts and RetryBaseDelay shape the optimistic-concurrency
	// retry loop. Zero values select the defaults.
	MaxSyncAttempts uint64
	RetryBaseDelay  time.Duration

	// BackupRetention is how many local snapshots to keep. Zero selects the
	// default.
	BackupRetention int
}

// Synchronizer is the resource-agnostic half of a sync engine: the
// Idle/Syncing/HasConflicts state machine, the last-sync cache, the
// optimistic-concurrency retry loop and conflict bookkeeping. Everything
// content-specific is delegated to a ResourceStrategy.
type Synchronizer struct {
	resource        string
	version         int
	machineID       string
	lastSyncPath    string
	maxAttempts     uint64
	retryBase       time.Duration
	backupRetention int

	strategy ResourceStrategy
	remote   store.RemoteStore
	backups  store.BackupStore
	files    store.FileService
	logger   *logger.Logger

	localChange *debouncer

	mu           sync.Mutex
	status       models.SyncStatus
	conflicts    []models.Conflict
	enabled      bool
	statusSubs   []func(models.SyncStatus)
	conflictSubs []func([]models.Conflict)
	localSubs    []func()
}

// NewSynchronizer wires a Synchronizer around strategy and the given stores.
// The strategy may be nil at construction time and set by an embedding type
// before first use.
func NewSynchronizer(opts SynchronizerOptions, strategy ResourceStrategy, remote store.RemoteStore, backups store.BackupStore, files store.FileService, log *logger.Logger) *Synchronizer {
	if log == nil {
		log = logger.Nop()
	}
	if opts.MaxSyncAttempts == 0 {
		opts.MaxSyncAttempts = defaultMaxSyncAttempts
	}
	if opts.RetryBaseDelay <= 0 {
		opts.RetryBaseDelay = defaultRetryBaseDelay
	}
	if opts.BackupRetention <= 0 {
		opts.BackupRetention = defaultBackupRetention
	}

	s := &Synchronizer{
		resource:        opts.Resource,
		version:         opts.Version,
		machineID:       opts.MachineID,
		lastSyncPath:    opts.LastSyncPath,
		maxAttempts:     opts.MaxSyncAttempts,
		retryBase:       opts.RetryBaseDelay,
		backupRetention: opts.BackupRetention,
		strategy:        strategy,
		remote:          remote,
		backups:         backups,
		files:           files,
		logger:          log,
		status:          models.SyncStatusIdle,
		enabled:         true,
	}
	s.localChange = newDebouncer(opts.DebounceWindow, s.checkLocalChanged)
	return s
}

// Resource returns the identifier this synchronizer reconciles.
func (s *Synchronizer) Resource() string {
	return s.resource
}

// Status returns the current lifecycle state.
func (s *Synchronizer) Status() models.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Conflicts returns the pending conflict set.
func (s *Synchronizer) Conflicts() []models.Conflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.conflicts)
}

// SetEnabled administratively enables or disables the resource.
func (s *Synchronizer) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	if !enabled {
		s.localChange.Cancel()
	}
}

func (s *Synchronizer) isEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// OnDidChangeStatus registers fn for status transitions.
func (s *Synchronizer) OnDidChangeStatus(fn func(models.SyncStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusSubs = append(s.statusSubs, fn)
}

// OnDidChangeConflicts registers fn for conflict-set changes.
func (s *Synchronizer) OnDidChangeConflicts(fn func([]models.Conflict)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conflictSubs = append(s.conflictSubs, fn)
}

// OnDidChangeLocal registers fn for debounced local-change notifications.
func (s *Synchronizer) OnDidChangeLocal(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localSubs = append(s.localSubs, fn)
}

// Sync runs one reconciliation pass against the remote store. The manifest,
// when non-nil, lets the pass skip the remote read entirely if the last-sync
// record already matches the server's current ref.
func (s *Synchronizer) Sync(ctx context.Context, manifest models.Manifest) error {
	log := s.logger.With().Str("func", "Sync").Str("resource", s.resource).Logger()

	if !s.isEnabled() {
		log.Debug().Msg("resource is disabled, skipping sync")
		if s.Status() != models.SyncStatusIdle {
			return s.Stop(ctx)
		}
		return nil
	}

	if !s.claimSyncing(false) {
		log.Info().Str("status", string(s.Status())).Msg("sync skipped, a pass is running or conflicts are pending")
		return nil
	}

	return s.runSync(ctx, manifest)
}

// runSync owns the machine from Syncing to its settled state. The deferred
// transition guarantees the status never sticks at Syncing, whatever goes
// wrong in between.
func (s *Synchronizer) runSync(ctx context.Context, manifest models.Manifest) error {
	log := s.logger.With().Str("func", "Sync").Str("resource", s.resource).Logger()

	status := models.SyncStatusIdle
	var conflicts []models.Conflict
	defer func() {
		s.transition(status, conflicts)
	}()

	lastSync := s.readLastSync(ctx)

	remote, err := s.getLatestRemoteUserData(ctx, manifest, lastSync)
	if err != nil {
		return fmt.Errorf("fetch remote state for %s: %w", s.resource, err)
	}

	if remote.SyncData != nil && remote.SyncData.Version > s.version {
		log.Warn().Int("remote_version", remote.SyncData.Version).Int("supported_version", s.version).
			Msg("remote snapshot was written by a newer client")
		return fmt.Errorf("%w: remote version %d, supported up to %d", ErrIncompatibleRemote, remote.SyncData.Version, s.version)
	}

	result, err := s.syncWithRetry(ctx, remote, lastSync)
	if err != nil {
		return fmt.Errorf("sync %s: %w", s.resource, err)
	}

	status = result
	if status == models.SyncStatusHasConflicts {
		conflicts = previewConflicts(s.resource)
	}
	log.Debug().Str("status", string(status)).Msg("sync pass finished")
	return nil
}

// resync re-runs reconciliation with already-fetched remote state. Used when
// the backing local state changes while conflicts are pending: the cached
// remote data is still current, only the local side moved.
func (s *Synchronizer) resync(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error {
	if !s.claimSyncing(true) {
		return nil
	}

	status := models.SyncStatusIdle
	var conflicts []models.Conflict
	defer func() {
		s.transition(status, conflicts)
	}()

	result, err := s.syncWithRetry(ctx, remote, lastSync)
	if err != nil {
		return fmt.Errorf("resync %s: %w", s.resource, err)
	}

	status = result
	if status == models.SyncStatusHasConflicts {
		conflicts = previewConflicts(s.resource)
	}
	return nil
}

func (s *Synchronizer) syncWithRetry(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (models.SyncStatus, error) {
	status := models.SyncStatusIdle
	err := s.doWithRetry(ctx, remote, lastSync, func(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error {
		result, err := s.strategy.PerformSync(ctx, remote, lastSync)
		if err != nil {
			return err
		}
		status = result
		return nil
	})
	return status, err
}

// doWithRetry runs attempt, and whenever the remote write precondition fails
// underneath it, re-fetches the remote state (bypassing the cache shortcut),
// re-reads the last-sync record and retries with backoff. The final
// precondition failure surfaces once the attempt budget is spent.
func (s *Synchronizer) doWithRetry(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData,
	attempt func(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error) error {

	backoff := retry.WithMaxRetries(s.maxAttempts-1, retry.NewFibonacci(s.retryBase))
	tries := 0

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		tries++
		err := attempt(ctx, remote, lastSync)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrPreconditionFailed) {
			return err
		}

		s.logger.Info().Str("resource", s.resource).Int("attempt", tries).
			Msg("remote changed underneath the write, refetching")

		fresh, ferr := s.fetchRemote(ctx, "", nil)
		if ferr != nil {
			return fmt.Errorf("refetch after precondition failure: %w", ferr)
		}
		if fresh.SyncData != nil && fresh.SyncData.Version > s.version {
			return fmt.Errorf("%w: remote version %d, supported up to %d", ErrIncompatibleRemote, fresh.SyncData.Version, s.version)
		}

		remote = fresh
		lastSync = s.readLastSync(ctx)
		return retry.RetryableError(err)
	})
}

// getLatestRemoteUserData returns the current remote state, reusing the
// last-sync record when the manifest proves the remote has not moved since.
func (s *Synchronizer) getLatestRemoteUserData(ctx context.Context, manifest models.Manifest, lastSync *models.LastSyncUserData) (models.RemoteUserData, error) {
	if lastSync != nil {
		if ref, ok := manifest.LatestRef(s.resource); ok {
			if ref == lastSync.Ref {
				return models.RemoteUserData{Ref: lastSync.Ref, SyncData: lastSync.SyncData}, nil
			}
		} else if manifest != nil && lastSync.Ref == "" && lastSync.SyncData == nil {
			// The manifest knows nothing about this resource and neither did
			// the last sync: the remote still holds no data.
			return models.RemoteUserData{}, nil
		}
	}

	lastKnownRef := ""
	if lastSync != nil {
		lastKnownRef = lastSync.Ref
	}
	return s.fetchRemote(ctx, lastKnownRef, lastSync)
}

// fetchRemote reads the remote store. A non-empty lastKnownRef lets the store
// omit the content when nothing changed; the cached copy fills the gap.
func (s *Synchronizer) fetchRemote(ctx context.Context, lastKnownRef string, lastSync *models.LastSyncUserData) (models.RemoteUserData, error) {
	data, err := s.remote.Read(ctx, s.resource, lastKnownRef)
	if err != nil {
		return models.RemoteUserData{}, fmt.Errorf("read remote %s: %w", s.resource, err)
	}

	if data.Ref == "" {
		return models.RemoteUserData{}, nil
	}

	if data.Content == nil {
		if lastSync != nil && lastSync.Ref == data.Ref {
			return models.RemoteUserData{Ref: data.Ref, SyncData: lastSync.SyncData}, nil
		}
		return models.RemoteUserData{}, fmt.Errorf("remote omitted content for %s at ref %s without a cached copy", s.resource, data.Ref)
	}

	syncData, err := models.ParseSyncData([]byte(*data.Content))
	if err != nil {
		return models.RemoteUserData{}, fmt.Errorf("%w: %w", ErrIncompatibleRemote, err)
	}
	return models.RemoteUserData{Ref: data.Ref, SyncData: syncData}, nil
}

// readLastSync loads the persisted last-sync record. Absence, corruption and
// read failures all degrade to "no last sync": the pass still works, it just
// fetches and compares more.
func (s *Synchronizer) readLastSync(ctx context.Context) *models.LastSyncUserData {
	content, err := s.files.ReadFile(ctx, s.lastSyncPath)
	if err != nil {
		if !errors.Is(err, store.ErrFileNotFound) {
			s.logger.Warn().Err(err).Str("resource", s.resource).Msg("failed to read last sync record, proceeding without it")
		}
		return nil
	}

	last, err := models.DecodeLastSync([]byte(content))
	if err != nil {
		s.logger.Warn().Err(err).Str("resource", s.resource).Msg("last sync record is corrupt, proceeding without it")
		return nil
	}
	return last
}

// updateLastSync persists last as the new sync point.
func (s *Synchronizer) updateLastSync(ctx context.Context, last models.LastSyncUserData) error {
	raw, err := models.EncodeLastSync(last)
	if err != nil {
		return fmt.Errorf("encode last sync record: %w", err)
	}

	exists, err := s.files.Exists(ctx, s.lastSyncPath)
	if err != nil {
		return fmt.Errorf("stat last sync record: %w", err)
	}
	if !exists {
		if err = s.files.CreateFile(ctx, s.lastSyncPath, string(raw)); err != nil {
			return fmt.Errorf("create last sync record: %w", err)
		}
		return nil
	}
	if err = s.files.WriteFile(ctx, s.lastSyncPath, string(raw), nil); err != nil {
		return fmt.Errorf("write last sync record: %w", err)
	}
	return nil
}

// updateRemote pushes content as the new remote snapshot for this resource,
// with expectedRef as the optimistic-concurrency precondition. Precondition
// failures flow through untouched so the retry loop can see them.
func (s *Synchronizer) updateRemote(ctx context.Context, content, expectedRef string) (models.RemoteUserData, error) {
	data := models.SyncData{Version: s.version, MachineID: s.machineID, Content: content}
	payload, err := json.Marshal(data)
	if err != nil {
		return models.RemoteUserData{}, fmt.Errorf("encode sync data: %w", err)
	}

	ref, err := s.remote.Write(ctx, s.resource, string(payload), expectedRef)
	if err != nil {
		return models.RemoteUserData{}, err
	}
	return models.RemoteUserData{Ref: ref, SyncData: &data}, nil
}

// backupLocal snapshots content into the local backup log before a
// destructive overwrite. Backup failures are logged, never fatal: losing a
// safety copy must not block the sync itself.
func (s *Synchronizer) backupLocal(ctx context.Context, content string) {
	if _, err := s.backups.Backup(ctx, s.resource, content); err != nil {
		s.logger.Warn().Err(err).Str("resource", s.resource).Msg("failed to back up local state before overwrite")
		return
	}
	if err := s.backups.Prune(ctx, s.resource, s.backupRetention); err != nil {
		s.logger.Warn().Err(err).Str("resource", s.resource).Msg("failed to prune old backups")
	}
}

// Stop aborts in-flight work and settles the machine back to Idle.
func (s *Synchronizer) Stop(ctx context.Context) error {
	s.localChange.Cancel()

	if s.strategy != nil {
		if err := s.strategy.StopStrategy(ctx); err != nil {
			return fmt.Errorf("stop %s synchronizer: %w", s.resource, err)
		}
	}

	s.transition(models.SyncStatusIdle, nil)
	return nil
}

// Replace overwrites local and remote state with the snapshot behind uri.
func (s *Synchronizer) Replace(ctx context.Context, uri string) (bool, error) {
	log := s.logger.With().Str("func", "Replace").Str("resource", s.resource).Logger()

	parsed, err := models.ParseSyncResourceURI(uri)
	if err != nil {
		log.Warn().Err(err).Str("uri", uri).Msg("replace target is not a valid sync resource uri")
		return false, nil
	}

	var data *models.SyncData
	switch parsed.Authority {
	case models.AuthorityRemoteBackup:
		content, rerr := s.remote.ResolveContent(ctx, parsed.Resource, parsed.Ref)
		if rerr != nil {
			log.Warn().Err(rerr).Str("uri", uri).Msg("failed to resolve replace target")
			return false, nil
		}
		data, err = models.ParseSyncData([]byte(content))
		if err != nil {
			log.Warn().Str("uri", uri).Msg("replace target is not recognizable sync data")
			return false, nil
		}
	case models.AuthorityLocalBackup:
		// Local snapshots hold the raw file content captured before an
		// overwrite, not a serialized record. Stamp it with this device's
		// identity like any other locally authored revision.
		content, rerr := s.backups.ResolveContent(ctx, parsed.Resource, parsed.Ref)
		if rerr != nil {
			log.Warn().Err(rerr).Str("uri", uri).Msg("failed to resolve replace target")
			return false, nil
		}
		data = &models.SyncData{Version: s.version, MachineID: s.machineID, Content: content}
	default:
		log.Warn().Str("uri", uri).Msg("replace target must address a backup snapshot")
		return false, nil
	}

	if err = s.Stop(ctx); err != nil {
		return false, err
	}
	if !s.claimSyncing(false) {
		log.Debug().Msg("replace skipped, resource is disabled")
		return false, nil
	}

	status := models.SyncStatusIdle
	defer func() {
		s.transition(status, nil)
	}()

	lastSync := s.readLastSync(ctx)
	lastKnownRef := ""
	if lastSync != nil {
		lastKnownRef = lastSync.Ref
	}
	remote, err := s.fetchRemote(ctx, lastKnownRef, lastSync)
	if err != nil {
		return false, fmt.Errorf("fetch remote state for replace: %w", err)
	}

	err = s.doWithRetry(ctx, remote, lastSync, func(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error {
		return s.strategy.PerformReplace(ctx, data, remote, lastSync)
	})
	if err != nil {
		return false, fmt.Errorf("replace %s from %s: %w", s.resource, uri, err)
	}

	log.Info().Str("uri", uri).Msg("replaced state from snapshot")
	return true, nil
}

// GetSyncPreview computes what a sync would do right now, without applying
// anything. Disabled resources report an empty preview.
func (s *Synchronizer) GetSyncPreview(ctx context.Context) (*SyncPreview, error) {
	if !s.isEnabled() {
		return &SyncPreview{}, nil
	}

	lastSync := s.readLastSync(ctx)
	remote, err := s.getLatestRemoteUserData(ctx, nil, lastSync)
	if err != nil {
		return nil, fmt.Errorf("fetch remote state for preview: %w", err)
	}
	return s.strategy.GeneratePreview(ctx, remote, lastSync)
}

// ResetLocal discards the persisted last-sync record. Missing records are
// fine; anything else is logged and swallowed.
func (s *Synchronizer) ResetLocal(ctx context.Context) {
	err := s.files.DeleteFile(ctx, s.lastSyncPath)
	if err != nil && !errors.Is(err, store.ErrFileNotFound) {
		s.logger.Warn().Err(err).Str("resource", s.resource).Msg("failed to reset last sync record")
	}
}

// GetRemoteSyncResourceHandles lists the remote ref history, newest first.
func (s *Synchronizer) GetRemoteSyncResourceHandles(ctx context.Context) ([]models.ResourceHandle, error) {
	refs, err := s.remote.GetAllRefs(ctx, s.resource)
	if err != nil {
		return nil, fmt.Errorf("list remote refs for %s: %w", s.resource, err)
	}

	handles := make([]models.ResourceHandle, 0, len(refs))
	for _, ref := range refs {
		handles = append(handles, models.ResourceHandle{
			Created: ref.Created,
			URI:     models.RemoteBackupURI(s.resource, ref.Ref),
		})
	}
	return handles, nil
}

// GetLocalSyncResourceHandles lists the local backup history, newest first.
func (s *Synchronizer) GetLocalSyncResourceHandles(ctx context.Context) ([]models.ResourceHandle, error) {
	refs, err := s.backups.GetAllRefs(ctx, s.resource)
	if err != nil {
		return nil, fmt.Errorf("list local backups for %s: %w", s.resource, err)
	}

	handles := make([]models.ResourceHandle, 0, len(refs))
	for _, ref := range refs {
		handles = append(handles, models.ResourceHandle{
			Created: ref.Created,
			URI:     models.LocalBackupURI(s.resource, ref.Ref),
		})
	}
	return handles, nil
}

// GetMachineID returns the machine identifier recorded in the remote
// snapshot behind handle. Unrecognizable snapshots report no machine id.
func (s *Synchronizer) GetMachineID(ctx context.Context, handle models.ResourceHandle) (string, error) {
	parsed, err := models.ParseSyncResourceURI(handle.URI)
	if err != nil {
		return "", err
	}
	if parsed.Authority != models.AuthorityRemoteBackup {
		return "", fmt.Errorf("%w: machine id is only recorded on remote snapshots", models.ErrInvalidSyncURI)
	}

	content, err := s.remote.ResolveContent(ctx, parsed.Resource, parsed.Ref)
	if err != nil {
		return "", fmt.Errorf("resolve remote snapshot %s: %w", handle.URI, err)
	}

	data, err := models.ParseSyncData([]byte(content))
	if err != nil {
		return "", nil
	}
	return data.MachineID, nil
}

// ResolveContent returns the content behind a backup snapshot URI. Preview
// URIs are handled by the owning strategy, not here.
func (s *Synchronizer) ResolveContent(ctx context.Context, uri string) (string, error) {
	parsed, err := models.ParseSyncResourceURI(uri)
	if err != nil {
		return "", err
	}

	switch parsed.Authority {
	case models.AuthorityRemoteBackup:
		return s.remote.ResolveContent(ctx, parsed.Resource, parsed.Ref)
	case models.AuthorityLocalBackup:
		return s.backups.ResolveContent(ctx, parsed.Resource, parsed.Ref)
	default:
		return "", fmt.Errorf("%w: no content behind authority %q", models.ErrInvalidSyncURI, parsed.Authority)
	}
}

// TriggerLocalChange schedules a debounced local-divergence check.
func (s *Synchronizer) TriggerLocalChange() {
	if !s.isEnabled() {
		return
	}
	s.localChange.Trigger()
}

// checkLocalChanged detects local divergence from the last sync point by
// generating a preview with the last-sync record standing in for the remote:
// a reported remote change then means the local side is the one that moved.
func (s *Synchronizer) checkLocalChanged() {
	ctx := s.logger.WithContext(context.Background())

	lastSync := s.readLastSync(ctx)
	remote := models.RemoteUserData{}
	if lastSync != nil {
		remote = models.RemoteUserData{Ref: lastSync.Ref, SyncData: lastSync.SyncData}
	}

	preview, err := s.strategy.GeneratePreview(ctx, remote, lastSync)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Str("resource", s.resource).Msg("local change check failed")
		}
		return
	}
	if preview == nil || !preview.HasRemoteChanged {
		return
	}

	s.mu.Lock()
	subs := slices.Clone(s.localSubs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// claimSyncing atomically moves the machine to Syncing. fromConflicts permits
// the conflict-resolution re-entry; otherwise pending conflicts block the
// claim. Returns false when the resource is disabled or another pass owns
// the machine.
func (s *Synchronizer) claimSyncing(fromConflicts bool) bool {
	s.mu.Lock()
	if !s.enabled ||
		s.status == models.SyncStatusSyncing ||
		(s.status == models.SyncStatusHasConflicts && !fromConflicts) {
		s.mu.Unlock()
		return false
	}

	prevConflicts := s.conflicts
	s.status = models.SyncStatusSyncing
	s.conflicts = nil
	statusSubs := slices.Clone(s.statusSubs)
	conflictSubs := slices.Clone(s.conflictSubs)
	s.mu.Unlock()

	if len(prevConflicts) > 0 {
		s.logger.Debug().Str("resource", s.resource).Msg("re-syncing with pending conflicts")
		for _, fn := range conflictSubs {
			fn(nil)
		}
	}
	for _, fn := range statusSubs {
		fn(models.SyncStatusSyncing)
	}
	return true
}

// transition settles the machine into status and fires events outside the
// lock. Conflict telemetry is derived from the edges: entering HasConflicts
// logs a detection, leaving it for Idle logs a resolution.
func (s *Synchronizer) transition(status models.SyncStatus, conflicts []models.Conflict) {
	s.mu.Lock()
	prev := s.status
	prevConflicts := s.conflicts
	if prev == status && slices.Equal(prevConflicts, conflicts) {
		s.mu.Unlock()
		return
	}
	s.status = status
	s.conflicts = conflicts
	statusSubs := slices.Clone(s.statusSubs)
	conflictSubs := slices.Clone(s.conflictSubs)
	s.mu.Unlock()

	if prev != status {
		switch {
		case status == models.SyncStatusHasConflicts:
			s.logger.Info().Str("resource", s.resource).Msg("sync conflicts detected")
		case prev == models.SyncStatusHasConflicts && status == models.SyncStatusIdle:
			s.logger.Info().Str("resource", s.resource).Msg("sync conflicts resolved")
		}
		for _, fn := range statusSubs {
			fn(status)
		}
	}
	if !slices.Equal(prevConflicts, conflicts) {
		for _, fn := range conflictSubs {
			fn(slices.Clone(conflicts))
		}
	}
}

func previewConflicts(resource string) []models.Conflict {
	return []models.Conflict{{
		Local:  models.LocalPreviewURI(resource),
		Remote: models.RemotePreviewURI(resource),
	}}
}
