package utils

import "github.com/google/uuid"

// UUIDGenerator mints the opaque refs handed out by the stores. Refs are
// UUIDv7, so lexicographic order tracks creation order; the backup log and
// ref-history listings lean on that when ordering snapshots.
type UUIDGenerator struct {
}

// NewUUIDGenerator returns a ready-to-use generator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a fresh ref. Falls back to a random UUIDv4 if the
// time-ordered variant cannot be produced, trading ordering for uniqueness.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
