// Package vpath implements the root-relative virtual path algebra used by
// the VFS (spec §3 "VirtualPath"). A Path is an ordered sequence of
// non-empty segments; it never escapes its workspace root and never
// carries OS-specific separators once parsed.
package vpath

import (
	"strings"
)

// Path is an immutable, ordered sequence of path segments relative to a
// workspace root.
type Path struct {
	segments []string
}

// Root is the empty path, displayed as "/".
var Root = Path{}

// New parses s (a "/"-joined display form) into a normalized Path.
// "." segments are elided and ".." pops the previous segment without ever
// escaping the root, matching spec invariant: "never escapes root".
func New(s string) Path {
	raw := strings.Split(s, "/")
	var out []string
	for _, seg := range raw {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return Path{segments: out}
}

// Segments returns a copy of the path's segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// String renders the display form: segments joined by "/", or "/" for Root.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return "/"
	}
	return strings.Join(p.segments, "/")
}

// IsRoot reports whether p is the empty path.
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

// Join appends segments (parsed the same way as New) and returns the
// normalized result.
func (p Path) Join(more ...string) Path {
	return New(p.String() + "/" + strings.Join(more, "/"))
}

// Parent returns the path with its last segment removed; Root's parent is
// Root.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return Root
	}
	out := make([]string, len(p.segments)-1)
	copy(out, p.segments[:len(p.segments)-1])
	return Path{segments: out}
}

// FileName returns the last segment, or "" for Root.
func (p Path) FileName() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Extension returns the file extension (with leading dot, lowercase) of
// the final segment, or "" if there is none.
func (p Path) Extension() string {
	name := p.FileName()
	idx := strings.LastIndex(name, ".")
	if idx <= 0 { // leading dot (dotfile) doesn't count as an extension
		return ""
	}
	return strings.ToLower(name[idx:])
}

// StartsWith reports whether prefix's segments are a prefix of p's.
func (p Path) StartsWith(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return false
		}
	}
	return true
}

// Normalize returns p unchanged: New() already normalizes on construction,
// so Normalize is idempotent by definition (Normalize().Normalize() == Normalize()).
func (p Path) Normalize() Path { return p }

// Equal reports structural equality of two paths.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// Valid reports whether every segment is free of NUL and "/" (the latter
// is structurally impossible post-parse, but checked for defense when a
// Path is built via unexported fields in tests).
func (p Path) Valid() bool {
	for _, seg := range p.segments {
		if seg == "" || strings.ContainsRune(seg, 0) || strings.ContainsRune(seg, '/') {
			return false
		}
	}
	return true
}

// ToPhysical maps p onto an OS filesystem path rooted at base, using the
// OS-native separator.
func (p Path) ToPhysical(base string) string {
	if len(p.segments) == 0 {
		return base
	}
	return base + string(osSeparator) + strings.Join(p.segments, string(osSeparator))
}

// FromPhysical maps an OS filesystem path back to a workspace-relative
// Path given the same base used by ToPhysical.
func FromPhysical(physical, base string) Path {
	rel := strings.TrimPrefix(physical, base)
	rel = strings.TrimPrefix(rel, string(osSeparator))
	rel = strings.ReplaceAll(rel, string(osSeparator), "/")
	return New(rel)
}
