package service

import "context"

// manualMerger never merges on its own: a two-sided divergence where the
// sides disagree is a conflict for the user to resolve. Identical edits on
// both sides reconcile silently.
type manualMerger struct{}

// NewManualMerger returns the default ContentMerger.
func NewManualMerger() ContentMerger {
	return manualMerger{}
}

func (manualMerger) Merge(_ context.Context, local string, remote, base *string) (MergeResult, error) {
	if remote == nil || *remote == local {
		return MergeResult{Content: local}, nil
	}
	if base != nil && *base == local {
		// The local side never actually moved; take the remote.
		return MergeResult{Content: *remote}, nil
	}
	return MergeResult{Content: local, HasConflicts: true}, nil
}
