// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MKhiriev/go-settings-sync/internal/logger"
	"github.com/MKhiriev/go-settings-sync/internal/store"
	"github.com/tailscale/hujson"
)

// HasJSONErrors reports whether content is syntactically broken JSON.
// Empty content is fine, and so are the human artifacts settings files
// accumulate: comments and trailing commas.
func HasJSONErrors(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	_, err := hujson.Parse([]byte(content))
	return err != nil
}

// FormattingOptions are the whitespace conventions of a JSON settings file,
// preserved across merges so a sync never reformats the user's file.
type FormattingOptions struct {
	InsertSpaces bool
	TabSize      int
	EOL          string
}

func defaultFormattingOptions() FormattingOptions {
	return FormattingOptions{InsertSpaces: true, TabSize: 4, EOL: "\n"}
}

// detectFormatting infers the conventions from existing content: the line
// ending actually used and the indentation of the first indented line.
func detectFormatting(content string) FormattingOptions {
	opts := defaultFormattingOptions()

	if strings.Contains(content, "\r\n") {
		opts.EOL = "\r\n"
	}

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" || (line[0] != ' ' && line[0] != '\t') {
			continue
		}
		if line[0] == '\t' {
			opts.InsertSpaces = false
			return opts
		}
		width := 0
		for width < len(line) && line[width] == ' ' {
			width++
		}
		if width < len(line) {
			opts.TabSize = width
			return opts
		}
	}
	return opts
}

// jsonValidatingMerger guards an inner merger against syntactically broken
// documents: merging garbage would only propagate it to every device.
type jsonValidatingMerger struct {
	inner ContentMerger
}

func (m *jsonValidatingMerger) Merge(ctx context.Context, local string, remote, base *string) (MergeResult, error) {
	if HasJSONErrors(local) {
		return MergeResult{}, fmt.Errorf("%w: local document", ErrInvalidContent)
	}
	if remote != nil && HasJSONErrors(*remote) {
		return MergeResult{}, fmt.Errorf("%w: remote document", ErrInvalidContent)
	}
	return m.inner.Merge(ctx, local, remote, base)
}

// JSONFileSynchronizer is a FileSynchronizer for JSON settings files: merges
// refuse syntactically broken documents, and the file's formatting
// conventions are resolved once and cached for the mergers that need them.
type JSONFileSynchronizer struct {
	*FileSynchronizer

	fmtOnce sync.Once
	fmtOpts FormattingOptions
}

// NewJSONFileSynchronizer wraps merger with JSON validation and builds the
// file synchronizer around it.
func NewJSONFileSynchronizer(opts FileSynchronizerOptions, merger ContentMerger, remote store.RemoteStore, backups store.BackupStore, files store.FileService, log *logger.Logger) *JSONFileSynchronizer {
	j := &JSONFileSynchronizer{}
	j.FileSynchronizer = NewFileSynchronizer(opts, &jsonValidatingMerger{inner: merger}, remote, backups, files, log)
	return j
}

// GetFormattingOptions resolves the backing file's formatting conventions.
// The detection runs once; later calls return the cached result even if the
// file changes underneath, which keeps merge output stable within a session.
func (j *JSONFileSynchronizer) GetFormattingOptions(ctx context.Context) FormattingOptions {
	j.fmtOnce.Do(func() {
		j.fmtOpts = defaultFormattingOptions()
		if content, err := j.files.ReadFile(ctx, j.filePath); err == nil {
			j.fmtOpts = detectFormatting(content)
		}
	})
	return j.fmtOpts
}
