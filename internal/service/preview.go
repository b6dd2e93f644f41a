package service

import (
	"context"

	"github.com/MKhiriev/go-settings-sync/models"
)

// previewComputation is one cancelable in-flight preview. Concurrent callers
// (a running sync and a debounced local-change check) share the same
// computation instead of racing their own; whoever holds it can cancel it
// when its inputs went stale.
type previewComputation struct {
	remote   models.RemoteUserData
	lastSync *models.LastSyncUserData

	cancel context.CancelFunc
	done   chan struct{}

	preview *SyncPreview
	err     error
}

type previewFunc func(ctx context.Context, remote models.RemoteUserData, lastSync *models.LastSyncUserData) (*SyncPreview, error)

// newPreviewComputation starts compute in its own goroutine with a context
// detached from any caller, so one caller going away does not abort the
// computation for the others.
func newPreviewComputation(remote models.RemoteUserData, lastSync *models.LastSyncUserData, compute previewFunc) *previewComputation {
	ctx, cancel := context.WithCancel(context.Background())
	comp := &previewComputation{
		remote:   remote,
		lastSync: lastSync,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(comp.done)
		comp.preview, comp.err = compute(ctx, remote, lastSync)
	}()

	return comp
}

// Wait blocks until the computation finishes or ctx is done. A cancelled
// computation reports context.Canceled through its own error.
func (c *previewComputation) Wait(ctx context.Context) (*SyncPreview, error) {
	select {
	case <-c.done:
		return c.preview, c.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel aborts the computation. Waiters receive the computation's error.
func (c *previewComputation) Cancel() {
	c.cancel()
}
