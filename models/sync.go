package models

import (
	"encoding/json"
	"errors"
	"time"
)

// SyncStatus is the lifecycle state of a single resource synchronizer.
// Exactly one status is active per synchronizer instance at any time.
type SyncStatus string

const (
	// SyncStatusIdle is the initial and terminal state: no sync is running
	// and no conflicts are pending.
	SyncStatusIdle SyncStatus = "idle"

	// SyncStatusSyncing is the transient state while a sync or replace
	// operation is in flight.
	SyncStatusSyncing SyncStatus = "syncing"

	// SyncStatusHasConflicts is entered when a sync detects divergent local
	// and remote versions that need external resolution. The synchronizer
	// stays in this state until a subsequent sync resolves it.
	SyncStatusHasConflicts SyncStatus = "hasConflicts"
)

// SyncData is the versioned payload stored in the remote blob store.
// Version is the schema version of Content and is checked against the
// synchronizer's own supported version before any merge is attempted.
// Content is an opaque serialized payload whose format is decided by the
// concrete resource type.
type SyncData struct {
	Version   int    `json:"version"`
	MachineID string `json:"machineId,omitempty"`
	Content   string `json:"content"`
}

// RemoteUserData is one read of the remote store for a resource.
// Ref is the opaque version token assigned by the store on every write and
// used as the optimistic-concurrency precondition on the next write.
// A nil SyncData means the resource has never been written remotely.
type RemoteUserData struct {
	Ref      string
	SyncData *SyncData
}

// LastSyncUserData mirrors the most recently reconciled RemoteUserData.
// It is persisted on disk per resource and is the authority for "has the
// remote actually changed since we last looked".
type LastSyncUserData struct {
	Ref      string
	SyncData *SyncData
}

// Conflict is a pair of addressable preview resources representing two
// divergent versions of the same resource. Held only while the owning
// synchronizer's status is SyncStatusHasConflicts.
type Conflict struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// ResourceHandle identifies one historical snapshot, remote or local-backup,
// for browsing and diffing. It carries no content itself; the content is
// resolved through the URI.
type ResourceHandle struct {
	Created time.Time
	URI     string
}

// ResourceRef is one entry of a store's ref history for a resource.
type ResourceRef struct {
	Ref     string
	Created time.Time
}

// Manifest is the server-supplied mapping from resource identifier to the
// remote store's current ref for that resource. It is used purely as a
// fetch-avoidance hint; a nil Manifest disables the shortcut.
type Manifest map[string]string

// LatestRef reports the manifest's latest known ref for resource.
// Safe to call on a nil Manifest.
func (m Manifest) LatestRef(resource string) (string, bool) {
	if m == nil {
		return "", false
	}
	ref, ok := m[resource]
	return ref, ok
}

var ErrInvalidSyncData = errors.New("content is not valid sync data")

// IsSyncData reports whether raw is a serialized SyncData record.
//
// A record is recognized only if it is a JSON object with exactly the fields
// {version, content} or {version, content, machineId} and the field values
// have the expected types. Any other shape is rejected as corrupt or foreign
// data.
func IsSyncData(raw []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return false
	}

	version, hasVersion := fields["version"]
	content, hasContent := fields["content"]
	if !hasVersion || !hasContent {
		return false
	}

	machineID, hasMachineID := fields["machineId"]
	expected := 2
	if hasMachineID {
		expected = 3
	}
	if len(fields) != expected {
		return false
	}

	var v int
	if err := json.Unmarshal(version, &v); err != nil {
		return false
	}
	var c string
	if err := json.Unmarshal(content, &c); err != nil {
		return false
	}
	if hasMachineID {
		var m string
		if err := json.Unmarshal(machineID, &m); err != nil {
			return false
		}
	}

	return true
}

// ParseSyncData deserializes raw into a SyncData record, enforcing the same
// strict shape as [IsSyncData]. Returns ErrInvalidSyncData for anything that
// is not a recognized record.
func ParseSyncData(raw []byte) (*SyncData, error) {
	if !IsSyncData(raw) {
		return nil, ErrInvalidSyncData
	}

	var data SyncData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, ErrInvalidSyncData
	}
	return &data, nil
}

// lastSyncRecord is the on-disk shape of LastSyncUserData: the ref plus the
// raw serialized SyncData, or null content when the remote had no data at
// the last sync point.
type lastSyncRecord struct {
	Ref     string  `json:"ref"`
	Content *string `json:"content"`
}

// EncodeLastSync serializes last into its persisted {ref, content|null} form.
func EncodeLastSync(last LastSyncUserData) ([]byte, error) {
	record := lastSyncRecord{Ref: last.Ref}
	if last.SyncData != nil {
		payload, err := json.Marshal(last.SyncData)
		if err != nil {
			return nil, err
		}
		content := string(payload)
		record.Content = &content
	}
	return json.Marshal(record)
}

// DecodeLastSync deserializes a persisted last-sync record. Null content
// yields a record with nil SyncData. Content that is present but not a
// recognized SyncData shape yields ErrInvalidSyncData; callers treat that
// as "no last sync".
func DecodeLastSync(raw []byte) (*LastSyncUserData, error) {
	var record lastSyncRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}

	last := &LastSyncUserData{Ref: record.Ref}
	if record.Content == nil {
		return last, nil
	}

	data, err := ParseSyncData([]byte(*record.Content))
	if err != nil {
		return nil, err
	}
	last.SyncData = data
	return last, nil
}
