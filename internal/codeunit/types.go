// Package codeunit stores and serves parsed code units (functions,
// methods, types, modules) behind a dual LRU cache, grounded on the
// teacher's knowledge-store conventions
// (internal/store/local_knowledge.go's SQLite schema/index shape) and
// generalized from "knowledge atoms" to the spec's qualified-name-keyed
// code units.
package codeunit

import (
	"time"

	"codegraph/internal/ids"
)

// UnitKind is one of the code unit kinds from spec §3.
type UnitKind string

const (
	KindFunction UnitKind = "Function"
	KindMethod   UnitKind = "Method"
	KindType     UnitKind = "Type"
	KindModule   UnitKind = "Module"
)

// Visibility mirrors the unit's source-level access modifier.
type Visibility string

const (
	VisibilityPublic  Visibility = "Public"
	VisibilityPrivate Visibility = "Private"
)

// Complexity holds the per-unit metrics summary a CodeUnit carries
// alongside its source location, computed by internal/metrics.
type Complexity struct {
	Cyclomatic int
	Cognitive  int
	Nesting    int
	Lines      int
}

// CodeUnit is one parsed function, method, type, or module (spec §3
// "Code unit"). QualifiedName is unique per workspace; Version
// increases monotonically on every UpdateCodeUnit.
type CodeUnit struct {
	ID            ids.UnitId
	WorkspaceID   ids.WorkspaceId
	Kind          UnitKind
	Name          string
	QualifiedName string
	DisplayName   string
	FilePath      string
	Language      string
	StartLine     int
	EndLine       int
	StartCol      int
	EndCol        int
	Signature     string
	Body          string
	Docstring     string
	Visibility    Visibility
	IsAsync       bool
	IsExported    bool
	Complexity    Complexity
	Dependencies  []ids.UnitId
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
