// Package fileid provides deterministic record ids for watched files.
package fileid

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Namespace for file-derived record ids (random, fixed at first release).
var namespace = uuid.MustParse("9d0c6f3a-52b1-4e7f-8a64-2f1f0cde6b11")

// EntityID returns a stable entity id for the given absolute path. The same
// path always yields the same id, so re-ingesting a changed file replaces
// its records instead of duplicating them.
func EntityID(absolutePath string) string {
	return uuid.NewSHA1(namespace, []byte(filepath.Clean(absolutePath))).String()
}

// RecordID returns a stable record id for one modality of the given path.
// Ids are UUIDs so every store backend accepts them.
func RecordID(absolutePath, modality string) string {
	key := filepath.Clean(absolutePath) + "\x00" + modality
	return uuid.NewSHA1(namespace, []byte(key)).String()
}
