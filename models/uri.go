package models

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// SyncScheme is the private URI scheme under which all addressable sync
// resources (backup snapshots and conflict previews) live.
const SyncScheme = "settingssync"

// Authorities of the sync scheme. Backup authorities address historical
// snapshots as /{resource}/{ref}; the preview authority addresses the two
// sides of a pending conflict as /{resource}/local and /{resource}/remote.
const (
	AuthorityRemoteBackup = "remote-backup"
	AuthorityLocalBackup  = "local-backup"
	AuthorityPreview      = "preview"
)

const (
	PreviewSideLocal  = "local"
	PreviewSideRemote = "remote"
)

var ErrInvalidSyncURI = errors.New("invalid sync resource uri")

// SyncResourceURI is a parsed sync-scheme URI.
type SyncResourceURI struct {
	Authority string
	Resource  string
	Ref       string
}

// String renders the URI in its canonical settingssync://authority/resource/ref form.
func (u SyncResourceURI) String() string {
	return fmt.Sprintf("%s://%s/%s/%s", SyncScheme, u.Authority, u.Resource, u.Ref)
}

// RemoteBackupURI addresses the remote snapshot of resource at ref.
func RemoteBackupURI(resource, ref string) string {
	return SyncResourceURI{Authority: AuthorityRemoteBackup, Resource: resource, Ref: ref}.String()
}

// LocalBackupURI addresses the local backup snapshot of resource at ref.
func LocalBackupURI(resource, ref string) string {
	return SyncResourceURI{Authority: AuthorityLocalBackup, Resource: resource, Ref: ref}.String()
}

// LocalPreviewURI addresses the local side of a pending conflict for resource.
func LocalPreviewURI(resource string) string {
	return SyncResourceURI{Authority: AuthorityPreview, Resource: resource, Ref: PreviewSideLocal}.String()
}

// RemotePreviewURI addresses the remote side of a pending conflict for resource.
func RemotePreviewURI(resource string) string {
	return SyncResourceURI{Authority: AuthorityPreview, Resource: resource, Ref: PreviewSideRemote}.String()
}

// ParseSyncResourceURI parses raw as a sync-scheme URI. The path must have
// exactly two segments: the resource identifier and the ref (or preview side).
func ParseSyncResourceURI(raw string) (SyncResourceURI, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return SyncResourceURI{}, fmt.Errorf("%w: %w", ErrInvalidSyncURI, err)
	}
	if parsed.Scheme != SyncScheme {
		return SyncResourceURI{}, fmt.Errorf("%w: unexpected scheme %q", ErrInvalidSyncURI, parsed.Scheme)
	}

	switch parsed.Host {
	case AuthorityRemoteBackup, AuthorityLocalBackup, AuthorityPreview:
	default:
		return SyncResourceURI{}, fmt.Errorf("%w: unexpected authority %q", ErrInvalidSyncURI, parsed.Host)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return SyncResourceURI{}, fmt.Errorf("%w: path %q is not /{resource}/{ref}", ErrInvalidSyncURI, parsed.Path)
	}

	return SyncResourceURI{
		Authority: parsed.Host,
		Resource:  segments[0],
		Ref:       segments[1],
	}, nil
}
