// Package docs ingests non-code documents (Markdown, plain text, HTML,
// JSON, YAML, CSV, PDF) into the same chunk-oriented shape the search
// and memory planes already consume, mirroring the teacher's knowledge
// atom: a concept, a content body, and metadata to re-find it by.
// Markdown gets the richest treatment — frontmatter plus section and
// code-block aware chunking — because the engine's own docs, READMEs,
// and design notes are Markdown.
package docs

import (
	"time"

	"codegraph/internal/ids"
)

// ContentType identifies the detected document format.
type ContentType string

const (
	ContentMarkdown ContentType = "markdown"
	ContentText     ContentType = "text"
	ContentHTML     ContentType = "html"
	ContentJSON     ContentType = "json"
	ContentYAML     ContentType = "yaml"
	ContentCSV      ContentType = "csv"
	ContentPDF      ContentType = "pdf"
)

// Chunk is one addressable slice of a processed document. For plain text,
// YAML and Markdown, ByteStart and ByteEnd index into the original
// document's raw bytes, so callers can re-slice the source for exact
// provenance. For JSON, CSV and HTML they index TextContent and do not
// map back to the raw bytes.
type Chunk struct {
	Index      int
	Heading    string // section title, empty outside Markdown
	Language   string // fenced code-block language, empty for prose
	Text       string
	ByteStart  int
	ByteEnd    int
}

// ProcessedContent is the uniform result of running any processor over a
// document's raw bytes.
type ProcessedContent struct {
	ContentType    ContentType
	TextContent    string
	StructuredData interface{} // decoded JSON/YAML/CSV value, nil otherwise
	Metadata       map[string]string
	Chunks         []Chunk
}

// Document is a persisted, processed document record. SymbolID links it
// to a code unit when known; otherwise resolution falls back to
// full-text search of the symbol name across stored document content
// (see Store.ResolveBySymbolName).
type Document struct {
	ID          ids.VNodeId
	Path        string
	ContentType ContentType
	TextContent string
	Metadata    map[string]string
	SymbolID    *ids.UnitId
	IngestedAt  time.Time
}

// Processor converts a document's raw bytes into ProcessedContent.
// Implementations never fail on malformed input for best-effort formats
// (text, Markdown, HTML); JSON/YAML/CSV fail closed since structured
// decoding is the point of running them at all.
type Processor interface {
	Process(raw []byte) (ProcessedContent, error)
}
