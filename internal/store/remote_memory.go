package store

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-settings-sync/internal/utils"
	"github.com/MKhiriev/go-settings-sync/models"
)

// memoryRemoteStore is an in-memory RemoteStore used by tests and by the
// single-host demo mode. It keeps the full ref history per resource, exactly
// like the durable implementations, so the optimistic-concurrency protocol
// can be exercised without a database.
type memoryRemoteStore struct {
	refs *utils.UUIDGenerator

	mu        sync.RWMutex
	revisions map[string][]remoteRevision
}

type remoteRevision struct {
	ref     string
	content string
	created time.Time
}

// NewMemoryRemoteStore constructs an empty in-memory RemoteStore.
func NewMemoryRemoteStore() RemoteStore {
	return &memoryRemoteStore{
		refs:      utils.NewUUIDGenerator(),
		revisions: make(map[string][]remoteRevision),
	}
}

func (s *memoryRemoteStore) Read(ctx context.Context, resource, lastKnownRef string) (RemoteData, error) {
	if err := ctx.Err(); err != nil {
		return RemoteData{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.revisions[resource]
	if len(history) == 0 {
		return RemoteData{}, nil
	}

	current := history[len(history)-1]
	if lastKnownRef != "" && current.ref == lastKnownRef {
		// Unchanged since the caller last looked; omit the content.
		return RemoteData{Ref: current.ref}, nil
	}

	content := current.content
	return RemoteData{Ref: current.ref, Content: &content}, nil
}

func (s *memoryRemoteStore) Write(ctx context.Context, resource, content, expectedRef string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	currentRef := ""
	history := s.revisions[resource]
	if len(history) > 0 {
		currentRef = history[len(history)-1].ref
	}
	if currentRef != expectedRef {
		return "", ErrPreconditionFailed
	}

	revision := remoteRevision{
		ref:     s.refs.Generate(),
		content: content,
		created: time.Now(),
	}
	s.revisions[resource] = append(history, revision)

	return revision.ref, nil
}

func (s *memoryRemoteStore) ResolveContent(ctx context.Context, resource, ref string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, revision := range s.revisions[resource] {
		if revision.ref == ref {
			return revision.content, nil
		}
	}
	return "", ErrNotFound
}

func (s *memoryRemoteStore) GetAllRefs(ctx context.Context, resource string) ([]models.ResourceRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// Append order is authoritative; created stamps can collide within timer
	// granularity, so the history is walked in reverse instead of sorted.
	history := s.revisions[resource]
	refs := make([]models.ResourceRef, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		refs = append(refs, models.ResourceRef{Ref: history[i].ref, Created: history[i].created})
	}

	return refs, nil
}

func (s *memoryRemoteStore) LatestRef(ctx context.Context, resource string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.revisions[resource]
	if len(history) == 0 {
		return "", nil
	}
	return history[len(history)-1].ref, nil
}
