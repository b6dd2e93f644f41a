// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

const (
	// Current-pointer table: one row per resource holding the ref that is
	// the present remote state. All optimistic-concurrency checks happen
	// against this table.
	insertCurrentRef = `
		INSERT INTO sync_resources (resource, ref)
		VALUES ($1, $2);`

	updateCurrentRef = `
		UPDATE sync_resources
		SET ref = $3, updated_at = NOW()
		WHERE resource = $1 AND ref = $2;`

	getCurrentRef = `
		SELECT ref
		FROM sync_resources
		WHERE resource = $1;`

	// History table: append-only, one row per written revision.
	insertRevision = `
		INSERT INTO sync_resource_refs (resource, ref, content)
		VALUES ($1, $2, $3);`

	getCurrentRevision = `
		SELECT r.ref, h.content
		FROM sync_resources r
		JOIN sync_resource_refs h ON h.resource = r.resource AND h.ref = r.ref
		WHERE r.resource = $1;`

	resolveRevisionContent = `
		SELECT content
		FROM sync_resource_refs
		WHERE resource = $1 AND ref = $2;`
)

const (
	// Backup log (sqlite). Refs are UUIDv7, so insertion order and ref order
	// agree; id keeps ordering stable even within the same millisecond.
	insertBackup = `
		INSERT INTO sync_backups (resource, ref, content, created_at)
		VALUES (?, ?, ?, ?);`

	resolveBackupContent = `
		SELECT content
		FROM sync_backups
		WHERE resource = ? AND ref = ?;`

	getBackupRefs = `
		SELECT ref, created_at
		FROM sync_backups
		WHERE resource = ?
		ORDER BY id DESC;`

	pruneBackups = `
		DELETE FROM sync_backups
		WHERE resource = ?
		  AND id NOT IN (
			SELECT id FROM sync_backups
			WHERE resource = ?
			ORDER BY id DESC
			LIMIT ?
		  );`
)
