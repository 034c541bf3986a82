// Package sessionstore discovers and reads conversation session logs
// from the on-disk project layout spec §4.13 describes: a project is a
// directory holding a JSON metadata file and a sessions/ subdirectory
// of JSONL transcripts, one file per session. A read-through cache sits
// in front of the filesystem scan, grounded on the same TTL-checked-on-
// read pattern internal/codeunit's cache uses for its database-backed
// lookups.
package sessionstore

import "time"

// Project is one discovered project directory.
type Project struct {
	ID            string
	Dir           string
	WorkspacePath string
	Metadata      map[string]interface{}
}

// SessionMeta identifies one session transcript file without loading
// its contents.
type SessionMeta struct {
	ID        string
	ProjectID string
	Path      string
	ModifiedAt time.Time
}

// Message is one JSONL line from a session transcript. Content is kept
// as a raw decoded map rather than a fixed schema since the wire format
// of a message record is owned by the client writing it, not this
// store.
type Message struct {
	Raw map[string]interface{}
}
