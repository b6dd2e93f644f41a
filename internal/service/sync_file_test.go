// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/store"
	"github.com/MKhiriev/go-settings-sync/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testResource     = "settings"
	testFilePath     = "/home/user/.config/settings.json"
	testLastSyncPath = "/home/user/.state/lastSync-settings.json"
)

// remoteInterceptor wraps a RemoteStore to count traffic and inject write
// precondition failures.
type remoteInterceptor struct {
	store.RemoteStore

	mu         sync.Mutex
	reads      int
	writes     int
	failWrites int
}

func (r *remoteInterceptor) Read(ctx context.Context, resource, lastKnownRef string) (store.RemoteData, error) {
	r.mu.Lock()
	r.reads++
	r.mu.Unlock()
	return r.RemoteStore.Read(ctx, resource, lastKnownRef)
}

func (r *remoteInterceptor) Write(ctx context.Context, resource, content, expectedRef string) (string, error) {
	r.mu.Lock()
	r.writes++
	fail := r.failWrites > 0
	if fail {
		r.failWrites--
	}
	r.mu.Unlock()

	if fail {
		return "", store.ErrPreconditionFailed
	}
	return r.RemoteStore.Write(ctx, resource, content, expectedRef)
}

func (r *remoteInterceptor) readCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}

func (r *remoteInterceptor) writeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writes
}

// stubBackupStore keeps snapshots in memory; no database in these tests.
type stubBackupStore struct {
	mu       sync.Mutex
	refs     []models.ResourceRef
	contents map[string]string
}

func newStubBackupStore() *stubBackupStore {
	return &stubBackupStore{contents: make(map[string]string)}
}

func (b *stubBackupStore) Backup(_ context.Context, resource, content string) (models.ResourceRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ref := models.ResourceRef{Ref: fmt.Sprintf("backup-%d", len(b.refs)+1), Created: time.Now()}
	b.refs = append(b.refs, ref)
	b.contents[ref.Ref] = content
	return ref, nil
}

func (b *stubBackupStore) ResolveContent(_ context.Context, _, ref string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	content, ok := b.contents[ref]
	if !ok {
		return "", store.ErrNotFound
	}
	return content, nil
}

func (b *stubBackupStore) GetAllRefs(_ context.Context, _ string) ([]models.ResourceRef, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	refs := make([]models.ResourceRef, 0, len(b.refs))
	for i := len(b.refs) - 1; i >= 0; i-- {
		refs = append(refs, b.refs[i])
	}
	return refs, nil
}

func (b *stubBackupStore) Prune(_ context.Context, _ string, _ int) error { return nil }

type testEnv struct {
	sync    *FileSynchronizer
	remote  *remoteInterceptor
	backups *stubBackupStore
	files   store.FileService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	remote := &remoteInterceptor{RemoteStore: store.NewMemoryRemoteStore()}
	backups := newStubBackupStore()
	files := store.NewFileService(afero.NewMemMapFs(), logger.Nop())

	opts := FileSynchronizerOptions{
		SynchronizerOptions: SynchronizerOptions{
			Resource:        testResource,
			Version:         1,
			MachineID:       "machine-a",
			LastSyncPath:    testLastSyncPath,
			DebounceWindow:  5 * time.Millisecond,
			MaxSyncAttempts: 3,
			RetryBaseDelay:  time.Millisecond,
		},
		FilePath: testFilePath,
	}
	s := NewFileSynchronizer(opts, NewManualMerger(), remote, backups, files, logger.Nop())

	return &testEnv{sync: s, remote: remote, backups: backups, files: files}
}

func (e *testEnv) writeLocal(t *testing.T, content string) {
	t.Helper()
	ctx := context.Background()
	exists, err := e.files.Exists(ctx, testFilePath)
	require.NoError(t, err)
	if exists {
		require.NoError(t, e.files.WriteFile(ctx, testFilePath, content, nil))
		return
	}
	require.NoError(t, e.files.CreateFile(ctx, testFilePath, content))
}

func (e *testEnv) readLocal(t *testing.T) string {
	t.Helper()
	content, err := e.files.ReadFile(context.Background(), testFilePath)
	require.NoError(t, err)
	return content
}

// writeRemote stores content on the remote as another device would, on top
// of whatever revision is current.
func (e *testEnv) writeRemote(t *testing.T, content string) string {
	t.Helper()
	ctx := context.Background()

	current, err := e.remote.RemoteStore.LatestRef(ctx, testResource)
	require.NoError(t, err)

	payload, err := json.Marshal(models.SyncData{Version: 1, MachineID: "machine-b", Content: content})
	require.NoError(t, err)

	ref, err := e.remote.RemoteStore.Write(ctx, testResource, string(payload), current)
	require.NoError(t, err)
	return ref
}

func (e *testEnv) remoteContent(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	data, err := e.remote.RemoteStore.Read(ctx, testResource, "")
	require.NoError(t, err)
	require.NotNil(t, data.Content)

	parsed, err := models.ParseSyncData([]byte(*data.Content))
	require.NoError(t, err)
	return parsed.Content
}

// ── Sync: push, pull, no-op ──────────────────────────────────────────────────

func TestFileSynchronizer_FirstSyncPushesLocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"theme":"dark"}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Equal(t, `{"theme":"dark"}`, env.remoteContent(t))

	// The last-sync record now mirrors the pushed snapshot.
	raw, err := env.files.ReadFile(ctx, testLastSyncPath)
	require.NoError(t, err)
	last, err := models.DecodeLastSync([]byte(raw))
	require.NoError(t, err)
	require.NotNil(t, last.SyncData)
	assert.Equal(t, `{"theme":"dark"}`, last.SyncData.Content)
	assert.Equal(t, "machine-a", last.SyncData.MachineID)
}

func TestFileSynchronizer_PullsRemoteIntoMissingFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeRemote(t, `{"theme":"light"}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Equal(t, `{"theme":"light"}`, env.readLocal(t))
}

func TestFileSynchronizer_RemoteEditOverwritesUnchangedLocal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	env.writeRemote(t, `{"a":2}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	assert.Equal(t, `{"a":2}`, env.readLocal(t))
	// The overwritten local content was snapshotted first.
	refs, err := env.backups.GetAllRefs(ctx, testResource)
	require.NoError(t, err)
	require.NotEmpty(t, refs)
	snap, err := env.backups.ResolveContent(ctx, testResource, refs[0].Ref)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, snap)
}

func TestFileSynchronizer_NothingOnEitherSide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sync.Sync(ctx, nil))

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	exists, err := env.files.Exists(ctx, testFilePath)
	require.NoError(t, err)
	assert.False(t, exists, "sync must not invent a local file")
}

// ── State machine ────────────────────────────────────────────────────────────

func TestSynchronizer_StatusSettlesAfterFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var seen []models.SyncStatus
	env.sync.OnDidChangeStatus(func(status models.SyncStatus) {
		seen = append(seen, status)
	})

	// Corrupt remote payload: fetch succeeds, parsing fails.
	_, err := env.remote.RemoteStore.Write(ctx, testResource, `{"what":"ever"}`, "")
	require.NoError(t, err)

	err = env.sync.Sync(ctx, nil)
	require.ErrorIs(t, err, ErrIncompatibleRemote)

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status(), "status must never stick at syncing")
	assert.Equal(t, []models.SyncStatus{models.SyncStatusSyncing, models.SyncStatusIdle}, seen)
}

func TestSynchronizer_ReentrantSyncIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Force the machine into HasConflicts and verify a plain Sync backs off
	// without touching the remote.
	env.sync.transition(models.SyncStatusHasConflicts, previewConflicts(testResource))

	before := env.remote.readCount()
	require.NoError(t, env.sync.Sync(ctx, nil))
	assert.Equal(t, before, env.remote.readCount())
	assert.Equal(t, models.SyncStatusHasConflicts, env.sync.Status())
}

func TestSynchronizer_DisabledResource(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.sync.SetEnabled(false)
	env.writeLocal(t, `{"a":1}`)

	require.NoError(t, env.sync.Sync(ctx, nil))
	assert.Zero(t, env.remote.readCount())
	assert.Zero(t, env.remote.writeCount())

	preview, err := env.sync.GetSyncPreview(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncPreview{}, preview)
}

// ── Version gate ─────────────────────────────────────────────────────────────

func TestSynchronizer_IncompatibleRemoteVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload, err := json.Marshal(models.SyncData{Version: 99, Content: `{"future":true}`})
	require.NoError(t, err)
	_, err = env.remote.RemoteStore.Write(ctx, testResource, string(payload), "")
	require.NoError(t, err)

	env.writeLocal(t, `{"a":1}`)
	err = env.sync.Sync(ctx, nil)
	require.ErrorIs(t, err, ErrIncompatibleRemote)

	// Neither side was touched.
	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Equal(t, `{"a":1}`, env.readLocal(t))
	exists, err := env.files.Exists(ctx, testLastSyncPath)
	require.NoError(t, err)
	assert.False(t, exists, "last-sync record must stay unmodified on incompatible remote")
}

// ── Manifest shortcut ────────────────────────────────────────────────────────

func TestSynchronizer_ManifestShortcutSkipsFetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	ref, err := env.remote.RemoteStore.LatestRef(ctx, testResource)
	require.NoError(t, err)

	before := env.remote.readCount()
	require.NoError(t, env.sync.Sync(ctx, models.Manifest{testResource: ref}))
	assert.Equal(t, before, env.remote.readCount(), "matching manifest ref must avoid the remote read")
}

func TestSynchronizer_StaleManifestStillFetches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	env.writeRemote(t, `{"a":2}`)

	ref, err := env.remote.RemoteStore.LatestRef(ctx, testResource)
	require.NoError(t, err)

	before := env.remote.readCount()
	require.NoError(t, env.sync.Sync(ctx, models.Manifest{testResource: ref}))
	assert.Greater(t, env.remote.readCount(), before)
	assert.Equal(t, `{"a":2}`, env.readLocal(t))
}

// ── Optimistic-concurrency retry ─────────────────────────────────────────────

func TestSynchronizer_RetriesOncePerPreconditionFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	env.writeLocal(t, `{"a":2}`)
	env.remote.mu.Lock()
	env.remote.failWrites = 1
	env.remote.mu.Unlock()

	readsBefore := env.remote.readCount()
	writesBefore := env.remote.writeCount()

	require.NoError(t, env.sync.Sync(ctx, nil))

	assert.Equal(t, `{"a":2}`, env.remoteContent(t))
	assert.Equal(t, writesBefore+2, env.remote.writeCount(), "one failed write, one successful retry")
	// The retry re-fetched the remote, bypassing the cache shortcut.
	assert.GreaterOrEqual(t, env.remote.readCount(), readsBefore+1)
}

func TestSynchronizer_RetryBudgetExhausted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	env.remote.mu.Lock()
	env.remote.failWrites = 100
	env.remote.mu.Unlock()

	err := env.sync.Sync(ctx, nil)
	require.ErrorIs(t, err, store.ErrPreconditionFailed)

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Equal(t, 3, env.remote.writeCount(), "attempt budget bounds the chase")
}

// ── Conflicts ────────────────────────────────────────────────────────────────

func conflictedEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"base":true}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	env.writeLocal(t, `{"local":true}`)
	env.writeRemote(t, `{"remote":true}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	require.Equal(t, models.SyncStatusHasConflicts, env.sync.Status())
	return env
}

func TestSynchronizer_ConflictDetection(t *testing.T) {
	env := conflictedEnv(t)
	ctx := context.Background()

	conflicts := env.sync.Conflicts()
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.LocalPreviewURI(testResource), conflicts[0].Local)
	assert.Equal(t, models.RemotePreviewURI(testResource), conflicts[0].Remote)

	local, err := env.sync.ResolveContent(ctx, conflicts[0].Local)
	require.NoError(t, err)
	assert.Equal(t, `{"local":true}`, local)

	remote, err := env.sync.ResolveContent(ctx, conflicts[0].Remote)
	require.NoError(t, err)
	assert.Equal(t, `{"remote":true}`, remote)

	// The file itself is untouched while the conflict is pending.
	assert.Equal(t, `{"local":true}`, env.readLocal(t))
}

func TestSynchronizer_ConflictResolvedByEditingFile(t *testing.T) {
	env := conflictedEnv(t)
	ctx := context.Background()

	var conflictEvents [][]models.Conflict
	env.sync.OnDidChangeConflicts(func(conflicts []models.Conflict) {
		conflictEvents = append(conflictEvents, conflicts)
	})

	// The user settles on the remote version by editing the file.
	env.writeLocal(t, `{"remote":true}`)
	env.sync.HandleFileChange(ctx)

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Empty(t, env.sync.Conflicts())
	require.NotEmpty(t, conflictEvents)
	assert.Empty(t, conflictEvents[len(conflictEvents)-1])
	assert.Equal(t, `{"remote":true}`, env.remoteContent(t))
}

func TestSynchronizer_StopClearsConflicts(t *testing.T) {
	env := conflictedEnv(t)
	ctx := context.Background()

	require.NoError(t, env.sync.Stop(ctx))

	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Empty(t, env.sync.Conflicts())

	exists, err := env.files.Exists(ctx, testFilePath+".sync-preview")
	require.NoError(t, err)
	assert.False(t, exists, "stop must remove the conflict preview artifact")
}

// ── Replace ──────────────────────────────────────────────────────────────────

func TestSynchronizer_ReplaceFromRemoteBackup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"v":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	firstRef, err := env.remote.RemoteStore.LatestRef(ctx, testResource)
	require.NoError(t, err)

	env.writeLocal(t, `{"v":2}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	ok, err := env.sync.Replace(ctx, models.RemoteBackupURI(testResource, firstRef))
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, `{"v":1}`, env.readLocal(t))
	assert.Equal(t, `{"v":1}`, env.remoteContent(t))
	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
}

func TestSynchronizer_ReplaceFromLocalBackup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	// A remote edit overwrites the unchanged local file, snapshotting it.
	env.writeRemote(t, `{"a":2}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	require.Equal(t, `{"a":2}`, env.readLocal(t))

	handles, err := env.sync.GetLocalSyncResourceHandles(ctx)
	require.NoError(t, err)
	require.Len(t, handles, 1)

	// The snapshot is raw file content, and it must restore both sides.
	ok, err := env.sync.Replace(ctx, handles[0].URI)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, `{"a":1}`, env.readLocal(t))
	assert.Equal(t, `{"a":1}`, env.remoteContent(t))
	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
}

func TestSynchronizer_ReplaceUnresolvableTarget(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	ok, err := env.sync.Replace(ctx, "not a uri")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = env.sync.Replace(ctx, models.RemoteBackupURI(testResource, "missing-ref"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// ── Last-sync record lifecycle ───────────────────────────────────────────────

func TestSynchronizer_CorruptLastSyncDegradesToFullFetch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	require.NoError(t, env.files.WriteFile(ctx, testLastSyncPath, "%% not json %%", nil))

	// The record is unreadable, so the pass fetches in full; local and
	// remote still agree, so it reconciles cleanly and rebuilds the record.
	before := env.remote.readCount()
	require.NoError(t, env.sync.Sync(ctx, nil))
	assert.Greater(t, env.remote.readCount(), before, "corrupt record must disable the cache shortcut")
	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())

	raw, err := env.files.ReadFile(ctx, testLastSyncPath)
	require.NoError(t, err)
	last, err := models.DecodeLastSync([]byte(raw))
	require.NoError(t, err)
	assert.NotEmpty(t, last.Ref)
}

func TestSynchronizer_ResetLocalNeverFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	env.sync.ResetLocal(ctx)
	exists, err := env.files.Exists(ctx, testLastSyncPath)
	require.NoError(t, err)
	assert.False(t, exists)

	// Nothing to delete is fine too.
	env.sync.ResetLocal(ctx)
}

// ── Local-change detection ───────────────────────────────────────────────────

func TestSynchronizer_LocalChangeEventAfterEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	fired := make(chan struct{}, 1)
	env.sync.OnDidChangeLocal(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	env.writeLocal(t, `{"a":2}`)
	env.sync.TriggerLocalChange()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("expected a local-change event after editing the file")
	}
}

func TestSynchronizer_NoLocalChangeEventWhenClean(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	fired := make(chan struct{}, 1)
	env.sync.OnDidChangeLocal(func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	env.sync.TriggerLocalChange()

	select {
	case <-fired:
		t.Fatal("no event expected for an unchanged file")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSynchronizer_DebounceCoalescesTriggers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"a":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	env.writeLocal(t, `{"a":2}`)

	var mu sync.Mutex
	count := 0
	env.sync.OnDidChangeLocal(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 10; i++ {
		env.sync.TriggerLocalChange()
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return count == 1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, count, "a burst of triggers must produce one check")
}

// ── History and snapshots ────────────────────────────────────────────────────

func TestSynchronizer_ResourceHandlesAndMachineID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"v":1}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	env.writeLocal(t, `{"v":2}`)
	require.NoError(t, env.sync.Sync(ctx, nil))

	remoteHandles, err := env.sync.GetRemoteSyncResourceHandles(ctx)
	require.NoError(t, err)
	require.Len(t, remoteHandles, 2)

	machineID, err := env.sync.GetMachineID(ctx, remoteHandles[0])
	require.NoError(t, err)
	assert.Equal(t, "machine-a", machineID)

	content, err := env.sync.ResolveContent(ctx, remoteHandles[0].URI)
	require.NoError(t, err)
	parsed, err := models.ParseSyncData([]byte(content))
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, parsed.Content)

	// Both syncs pushed; the file itself was never overwritten, so no local
	// backups were taken.
	localHandles, err := env.sync.GetLocalSyncResourceHandles(ctx)
	require.NoError(t, err)
	assert.Empty(t, localHandles)
}

// ── Preview ──────────────────────────────────────────────────────────────────

func TestSynchronizer_GetSyncPreviewDoesNotApply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.writeLocal(t, `{"base":true}`)
	require.NoError(t, env.sync.Sync(ctx, nil))
	env.writeLocal(t, `{"local":true}`)
	env.writeRemote(t, `{"remote":true}`)

	preview, err := env.sync.GetSyncPreview(ctx)
	require.NoError(t, err)
	assert.True(t, preview.HasLocalChanged)
	assert.True(t, preview.HasRemoteChanged)
	assert.True(t, preview.HasConflicts)

	// Still idle, nothing written anywhere.
	assert.Equal(t, models.SyncStatusIdle, env.sync.Status())
	assert.Equal(t, `{"local":true}`, env.readLocal(t))
	assert.Equal(t, `{"remote":true}`, env.remoteContent(t))
}

// gatedFileService blocks reads of one path until the read's context is
// cancelled, pinning a preview computation in flight.
type gatedFileService struct {
	store.FileService

	blockPath string
	entered   chan struct{}
	once      sync.Once
}

func (g *gatedFileService) ReadFile(ctx context.Context, path string) (string, error) {
	if path == g.blockPath {
		g.once.Do(func() { close(g.entered) })
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.FileService.ReadFile(ctx, path)
}

func TestFileSynchronizer_StopDuringPreviewSettlesIdle(t *testing.T) {
	remote := &remoteInterceptor{RemoteStore: store.NewMemoryRemoteStore()}
	backups := newStubBackupStore()
	gated := &gatedFileService{
		FileService: store.NewFileService(afero.NewMemMapFs(), logger.Nop()),
		blockPath:   testFilePath,
		entered:     make(chan struct{}),
	}

	opts := FileSynchronizerOptions{
		SynchronizerOptions: SynchronizerOptions{
			Resource:        testResource,
			Version:         1,
			MachineID:       "machine-a",
			LastSyncPath:    testLastSyncPath,
			MaxSyncAttempts: 3,
			RetryBaseDelay:  time.Millisecond,
		},
		FilePath: testFilePath,
	}
	s := NewFileSynchronizer(opts, NewManualMerger(), remote, backups, gated, logger.Nop())
	ctx := context.Background()

	syncErr := make(chan error, 1)
	go func() { syncErr <- s.Sync(ctx, nil) }()

	// The pass is pinned inside the preview read.
	<-gated.entered
	require.Equal(t, models.SyncStatusSyncing, s.Status())

	require.NoError(t, s.Stop(ctx))

	err := <-syncErr
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, models.SyncStatusIdle, s.Status())
}
