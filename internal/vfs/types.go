package vfs

import (
	"time"

	"codegraph/internal/ids"
	"codegraph/internal/vpath"
)

// WorkspaceType is one of the workspace kinds from spec §3.
type WorkspaceType string

const (
	WorkspaceCode          WorkspaceType = "Code"
	WorkspaceDocumentation WorkspaceType = "Documentation"
	WorkspaceMixed         WorkspaceType = "Mixed"
	WorkspaceExternal      WorkspaceType = "External"
)

// Workspace is a named scope owning a set of VNodes (spec §3 "Workspace").
type Workspace struct {
	ID         ids.WorkspaceId
	Name       string
	Type       WorkspaceType
	SourceType string
	Namespace  string
	SourcePath string
	ReadOnly   bool
	Parent     *ids.WorkspaceId

	// AllowedWritePolicy overrides the default code-extension rejection
	// set for this workspace (Open Question #1 decision: configurable
	// per workspace, nil means "use the fixed default").
	AllowedWritePolicy *PolicySet

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PolicySet is the set of file extensions the VFS write policy rejects.
type PolicySet map[string]bool

// NewPolicySet builds a PolicySet from a slice of extensions (each
// expected to include the leading dot, e.g. ".go").
func NewPolicySet(extensions []string) PolicySet {
	p := make(PolicySet, len(extensions))
	for _, ext := range extensions {
		p[ext] = true
	}
	return p
}

// Kind is the VNode kind (spec §3 "VNode").
type Kind string

const (
	KindFile      Kind = "File"
	KindDirectory Kind = "Directory"
	KindDocument  Kind = "Document"
)

// VNode is a workspace-scoped file or directory record (spec §3 "VNode").
type VNode struct {
	ID          ids.VNodeId
	WorkspaceID ids.WorkspaceId
	Path        vpath.Path
	Kind        Kind
	Blob        *ids.ContentHash
	SizeBytes   int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Language    string
}

// IsDirectory reports whether the node is a directory.
func (v *VNode) IsDirectory() bool { return v.Kind == KindDirectory }
