package service

import "errors"

// ErrIncompatibleRemote signals that the remote snapshot cannot be merged by
// this synchronizer: its schema version is newer than the supported one, or
// its payload shape is not recognizable sync data. The sync aborts before
// touching local state or the last-sync record.
var ErrIncompatibleRemote = errors.New("remote content is incompatible with this synchronizer")

// ErrLocalPreconditionFailed signals that the backing local state was
// modified externally between preview capture and apply. The sync pass that
// observed it gives up; the file watcher triggers a fresh pass.
var ErrLocalPreconditionFailed = errors.New("local state changed while syncing")

// ErrInvalidContent signals syntactically broken content that a validating
// merger refuses to reconcile.
var ErrInvalidContent = errors.New("content has syntax errors")
