// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/store"
	"github.com/MKhiriev/go-settings-sync/internal/utils"
	"github.com/MKhiriev/go-settings-sync/models"
)

var (
	_ ResourceSynchronizer = (*FileSynchronizer)(nil)
	_ ResourceStrategy     = (*FileSynchronizer)(nil)
)

// FileSynchronizerOptions configures a file-backed synchronizer.
type FileSynchronizerOptions struct {
	SynchronizerOptions

	// FilePath is the backing file whose content is synchronized.
	FilePath string

	// PreviewPath is where the editable local side of a pending conflict is
	// parked. Empty selects FilePath + ".sync-preview".
	PreviewPath string
}

// FileSynchronizer reconciles a single file against the remote store. It is
// the ResourceStrategy for its embedded Synchronizer: the core drives the
// state machine and retry loop, this type knows how to read, compare, merge
// and write the file.
type FileSynchronizer struct {
	*Synchronizer

	filePath    string
	previewPath string
	merger      ContentMerger

	pmu      sync.Mutex
	inflight *previewComputation
}

// NewFileSynchronizer builds a file-backed synchronizer. merger decides the
// outcome whenever both the file and the remote moved since the last sync.
func NewFileSynchronizer(opts FileSynchronizerOptions, merger ContentMerger, remote store.RemoteStore, backups store.BackupStore, files store.FileService, log *logger.Logger) *FileSynchronizer {
	if opts.PreviewPath == "" {
		opts.PreviewPath = opts.FilePath + ".sync-preview"
	}

	f := &FileSynchronizer{
		filePath:    opts.FilePath,
		previewPath: opts.PreviewPath,
		merger:      merger,
	}
	f.Synchronizer = NewSynchronizer(opts.SynchronizerOptions, f, remote, backups, files, log)
	return f
}

// FilePath returns the backing file this synchronizer reconciles.
func (f *FileSynchronizer) FilePath() string {
	return f.filePath
}

// PerformSync reconciles the backing file against remote. The preview is
// computed through the shared in-flight slot so a conflict leaves it cached
// for resolution, and a concurrent local-change check joins it instead of
// racing its own.
func (f *FileSynchronizer) PerformSync(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (models.SyncStatus, error) {
	preview, err := f.getPreview(ctx, remote, lastSync)
	if err != nil {
		f.discardPreview()
		return models.SyncStatusIdle, err
	}

	if preview.HasConflicts {
		// Park the local side as an editable artifact; the preview itself
		// stays cached so resolution can re-sync against the same remote.
		if werr := f.writePreviewArtifact(ctx, preview.LocalContent); werr != nil {
			f.logger.Warn().Err(werr).Str("resource", f.resource).Msg("failed to write conflict preview artifact")
		}
		return models.SyncStatusHasConflicts, nil
	}

	err = f.applyPreview(ctx, preview)
	f.discardPreview()
	if err != nil {
		return models.SyncStatusIdle, err
	}

	// A clean apply also retires any artifact left by an earlier conflict.
	if derr := f.files.DeleteFile(ctx, f.previewPath); derr != nil && !errors.Is(derr, store.ErrFileNotFound) {
		f.logger.Warn().Err(derr).Str("resource", f.resource).Msg("failed to remove conflict preview artifact")
	}
	return models.SyncStatusIdle, nil
}

// applyPreview writes the resolved content to whichever sides diverge from
// it, then advances the last-sync record. The file write is preconditioned
// on the content captured at preview time; the remote write on the ref the
// preview was computed from.
func (f *FileSynchronizer) applyPreview(ctx context.Context, preview *SyncPreview) error {
	remote := preview.Remote

	if !preview.HasLocalState && remote.SyncData == nil {
		// Nothing exists on either side. Record the empty sync point so the
		// manifest shortcut works on the next pass.
		return f.updateLastSync(ctx, models.LastSyncUserData{Ref: remote.Ref})
	}

	content := preview.Content

	if !preview.HasLocalState {
		if err := f.files.CreateFile(ctx, f.filePath, content); err != nil {
			if errors.Is(err, store.ErrFileAlreadyExists) {
				return fmt.Errorf("%w: %w", ErrLocalPreconditionFailed, err)
			}
			return fmt.Errorf("create %s: %w", f.filePath, err)
		}
	} else if content != preview.LocalContent {
		f.backupLocal(ctx, preview.LocalContent)

		previous := preview.LocalContent
		if err := f.files.WriteFile(ctx, f.filePath, content, &previous); err != nil {
			if errors.Is(err, store.ErrFileModifiedSince) || errors.Is(err, store.ErrFileNotFound) {
				return fmt.Errorf("%w: %w", ErrLocalPreconditionFailed, err)
			}
			return fmt.Errorf("write %s: %w", f.filePath, err)
		}
	}

	newRemote := remote
	if remote.SyncData == nil || remote.SyncData.Content != content {
		updated, err := f.updateRemote(ctx, content, remote.Ref)
		if err != nil {
			return err
		}
		newRemote = updated
		f.logger.Debug().Str("resource", f.resource).Str("ref", updated.Ref).
			Str("content_sha256", utils.Fingerprint(content)).
			Msg("pushed local content to remote")
	}

	return f.updateLastSync(ctx, models.LastSyncUserData{Ref: newRemote.Ref, SyncData: newRemote.SyncData})
}

// GeneratePreview compares the backing file against remote and lastSync
// without applying anything.
func (f *FileSynchronizer) GeneratePreview(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (*SyncPreview, error) {
	return f.computePreview(ctx, remote, lastSync)
}

func (f *FileSynchronizer) computePreview(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (*SyncPreview, error) {
	local, err := f.files.ReadFile(ctx, f.filePath)
	hasLocal := true
	if err != nil {
		if !errors.Is(err, store.ErrFileNotFound) {
			return nil, fmt.Errorf("read %s: %w", f.filePath, err)
		}
		hasLocal, local = false, ""
	}

	var remoteContent, baseContent *string
	if remote.SyncData != nil {
		remoteContent = &remote.SyncData.Content
	}
	if lastSync != nil && lastSync.SyncData != nil {
		baseContent = &lastSync.SyncData.Content
	}

	preview := &SyncPreview{
		HasLocalChanged:  localDiverged(hasLocal, local, baseContent),
		HasRemoteChanged: remoteDiffers(hasLocal, local, remoteContent),
		LocalContent:     local,
		HasLocalState:    hasLocal,
		Content:          local,
		Remote:           remote,
		LastSync:         lastSync,
	}

	switch {
	case preview.HasLocalChanged && sideMoved(remoteContent, baseContent):
		result, err := f.merger.Merge(ctx, local, remoteContent, baseContent)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", f.resource, err)
		}
		preview.Content = result.Content
		preview.HasConflicts = result.HasConflicts
	case remoteContent != nil:
		preview.Content = *remoteContent
	}

	return preview, nil
}

// localDiverged reports whether the local side moved relative to the last
// sync point. A file with no sync point behind it counts as moved.
func localDiverged(hasLocal bool, local string, base *string) bool {
	if !hasLocal {
		return base != nil
	}
	return base == nil || *base != local
}

// remoteDiffers reports whether pulling the remote content would change the
// local side.
func remoteDiffers(hasLocal bool, local string, remote *string) bool {
	if remote == nil {
		return hasLocal
	}
	return *remote != local
}

// sideMoved reports whether content moved from base.
func sideMoved(content, base *string) bool {
	switch {
	case content == nil && base == nil:
		return false
	case content == nil || base == nil:
		return true
	default:
		return *content != *base
	}
}

// PerformReplace overwrites the backing file and the remote snapshot with
// data, re-stamped with this device's schema version and machine id.
func (f *FileSynchronizer) PerformReplace(ctx context.Context, data *models.SyncData, remote models.RemoteUserData, lastSync *models.LastSyncUserData) error {
	local, err := f.files.ReadFile(ctx, f.filePath)
	switch {
	case err == nil:
		f.backupLocal(ctx, local)
		previous := local
		if werr := f.files.WriteFile(ctx, f.filePath, data.Content, &previous); werr != nil {
			if errors.Is(werr, store.ErrFileModifiedSince) || errors.Is(werr, store.ErrFileNotFound) {
				return fmt.Errorf("%w: %w", ErrLocalPreconditionFailed, werr)
			}
			return fmt.Errorf("write %s: %w", f.filePath, werr)
		}
	case errors.Is(err, store.ErrFileNotFound):
		if cerr := f.files.CreateFile(ctx, f.filePath, data.Content); cerr != nil {
			return fmt.Errorf("create %s: %w", f.filePath, cerr)
		}
	default:
		return fmt.Errorf("read %s: %w", f.filePath, err)
	}

	updated, err := f.updateRemote(ctx, data.Content, remote.Ref)
	if err != nil {
		return err
	}
	return f.updateLastSync(ctx, models.LastSyncUserData{Ref: updated.Ref, SyncData: updated.SyncData})
}

// StopStrategy discards the cached preview and removes the conflict artifact.
func (f *FileSynchronizer) StopStrategy(ctx context.Context) error {
	f.discardPreview()

	err := f.files.DeleteFile(ctx, f.previewPath)
	if err != nil && !errors.Is(err, store.ErrFileNotFound) {
		return fmt.Errorf("remove preview artifact %s: %w", f.previewPath, err)
	}
	return nil
}

// HandleFileChange reacts to a change of the backing file. With conflicts
// pending the change may be the user resolving them in place, so the
// reconciliation re-runs against the cached remote state; otherwise the
// debounced local-change check is scheduled.
func (f *FileSynchronizer) HandleFileChange(ctx context.Context) {
	if f.Status() != models.SyncStatusHasConflicts {
		f.TriggerLocalChange()
		return
	}

	f.pmu.Lock()
	comp := f.inflight
	f.inflight = nil
	f.pmu.Unlock()

	var (
		remote   models.RemoteUserData
		lastSync *models.LastSyncUserData
	)
	if comp != nil {
		comp.Cancel()
		remote, lastSync = comp.remote, comp.lastSync
	} else {
		// No cached preview (for example after a restart into a conflicted
		// state): fetch fresh inputs instead.
		lastSync = f.readLastSync(ctx)
		fetched, err := f.getLatestRemoteUserData(ctx, nil, lastSync)
		if err != nil {
			f.logger.Warn().Err(err).Str("resource", f.resource).Msg("failed to fetch remote state for conflict resync")
			return
		}
		remote = fetched
	}

	if err := f.resync(ctx, remote, lastSync); err != nil {
		f.logger.Warn().Err(err).Str("resource", f.resource).Msg("conflict resync failed")
	}
}

// ResolveContent additionally serves the two sides of the pending conflict
// preview; backup URIs fall through to the core.
func (f *FileSynchronizer) ResolveContent(ctx context.Context, uri string) (string, error) {
	parsed, err := models.ParseSyncResourceURI(uri)
	if err != nil {
		return "", err
	}
	if parsed.Authority != models.AuthorityPreview {
		return f.Synchronizer.ResolveContent(ctx, uri)
	}

	f.pmu.Lock()
	comp := f.inflight
	f.pmu.Unlock()
	if comp == nil {
		return "", fmt.Errorf("no pending conflict preview for %s: %w", parsed.Resource, store.ErrNotFound)
	}
	preview, err := comp.Wait(ctx)
	if err != nil {
		return "", err
	}

	switch parsed.Ref {
	case models.PreviewSideLocal:
		// The parked artifact wins when it exists: the user may have edited it.
		if content, rerr := f.files.ReadFile(ctx, f.previewPath); rerr == nil {
			return content, nil
		}
		return preview.LocalContent, nil
	case models.PreviewSideRemote:
		if preview.Remote.SyncData == nil {
			return "", fmt.Errorf("conflict preview has no remote side: %w", store.ErrNotFound)
		}
		return preview.Remote.SyncData.Content, nil
	default:
		return "", fmt.Errorf("%w: unknown preview side %q", models.ErrInvalidSyncURI, parsed.Ref)
	}
}

// getPreview returns the shared preview for remote, starting a computation
// when none is in flight or the cached one was computed from another ref.
func (f *FileSynchronizer) getPreview(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (*SyncPreview, error) {
	f.pmu.Lock()
	comp := f.inflight
	if comp == nil || comp.remote.Ref != remote.Ref {
		if comp != nil {
			comp.Cancel()
		}
		comp = newPreviewComputation(remote, lastSync, f.computePreview)
		f.inflight = comp
	}
	f.pmu.Unlock()

	return comp.Wait(ctx)
}

func (f *FileSynchronizer) discardPreview() {
	f.pmu.Lock()
	defer f.pmu.Unlock()

	if f.inflight != nil {
		f.inflight.Cancel()
		f.inflight = nil
	}
}

func (f *FileSynchronizer) writePreviewArtifact(ctx context.Context, content string) error {
	exists, err := f.files.Exists(ctx, f.previewPath)
	if err != nil {
		return err
	}
	if !exists {
		return f.files.CreateFile(ctx, f.previewPath, content)
	}
	return f.files.WriteFile(ctx, f.previewPath, content, nil)
}
