// Package ids defines the opaque, globally-unique identifiers used
// throughout the engine. Each subtype is a nominal wrapper around a
// uuid.UUID so that a SymbolId can never be passed where a SessionId is
// expected, even though both are 128-bit values underneath.
package ids

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// ID is the underlying 128-bit opaque identifier type.
type ID uuid.UUID

// String renders the canonical hyphenated form.
func (i ID) String() string { return uuid.UUID(i).String() }

// IsZero reports whether the identifier is the zero value.
func (i ID) IsZero() bool { return i == ID{} }

func newID() ID { return ID(uuid.New()) }

// ParseID parses the canonical hyphenated form produced by String().
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, err
	}
	return ID(u), nil
}

// SymbolId identifies a code unit's stable cross-reference symbol.
type SymbolId ID

func NewSymbolId() SymbolId   { return SymbolId(newID()) }
func (s SymbolId) String() string { return ID(s).String() }
func (s SymbolId) IsZero() bool   { return ID(s).IsZero() }

// SessionId identifies a conversation/session log.
type SessionId ID

func NewSessionId() SessionId     { return SessionId(newID()) }
func (s SessionId) String() string { return ID(s).String() }
func (s SessionId) IsZero() bool   { return ID(s).IsZero() }

// WorkspaceId identifies a workspace.
type WorkspaceId ID

func NewWorkspaceId() WorkspaceId   { return WorkspaceId(newID()) }
func (w WorkspaceId) String() string { return ID(w).String() }
func (w WorkspaceId) IsZero() bool  { return ID(w).IsZero() }

// ParseWorkspaceId parses the canonical hyphenated form.
func ParseWorkspaceId(s string) (WorkspaceId, error) {
	id, err := ParseID(s)
	return WorkspaceId(id), err
}

// UnitId identifies a code unit record.
type UnitId ID

func NewUnitId() UnitId       { return UnitId(newID()) }
func (u UnitId) String() string { return ID(u).String() }
func (u UnitId) IsZero() bool   { return ID(u).IsZero() }

// ParseUnitId parses the canonical hyphenated form.
func ParseUnitId(s string) (UnitId, error) {
	id, err := ParseID(s)
	return UnitId(id), err
}

// VNodeId identifies a VFS node (file, directory, or document record).
type VNodeId ID

func NewVNodeId() VNodeId      { return VNodeId(newID()) }
func (v VNodeId) String() string { return ID(v).String() }
func (v VNodeId) IsZero() bool   { return ID(v).IsZero() }

// ParseVNodeId parses the canonical hyphenated form.
func ParseVNodeId(s string) (VNodeId, error) {
	id, err := ParseID(s)
	return VNodeId(id), err
}

// EpisodeId identifies a memory episode. Episode IDs are time-ordered
// (UUIDv7, timestamp-prefixed) because episodic queries by time window
// benefit from a naturally sortable key, while equality remains
// bytewise like every other ID.
type EpisodeId ID

func NewEpisodeId() EpisodeId {
	u, err := uuid.NewV7()
	if err != nil {
		u = uuid.New()
	}
	return EpisodeId(u)
}
func (e EpisodeId) String() string { return ID(e).String() }
func (e EpisodeId) IsZero() bool   { return ID(e).IsZero() }

// ContentHash identifies an immutable content blob by its SHA-256 digest.
type ContentHash [32]byte

// HashContent computes the content-addressed hash of bytes.
func HashContent(b []byte) ContentHash {
	return ContentHash(sha256.Sum256(b))
}

func (h ContentHash) String() string { return hex.EncodeToString(h[:]) }

// IsZero reports whether h is the zero hash (never a valid content hash
// since HashContent always produces a real digest, used as a sentinel).
func (h ContentHash) IsZero() bool { return h == ContentHash{} }

// ParseContentHash parses a hex-encoded digest produced by String().
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, err
	}
	if len(b) != len(h) {
		return h, errShortHash
	}
	copy(h[:], b)
	return h, nil
}

var errShortHash = shortHashErr{}

type shortHashErr struct{}

func (shortHashErr) Error() string { return "ids: content hash must be 32 bytes" }
