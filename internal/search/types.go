// Package search implements the full-text + semantic search engine
// spec §4.9 describes: a buffered, explicitly-committed index over code
// units and documents with deterministic BM25-style ranking, a fuzzy
// name lookup, exact file-path lookup, a semantic (vector) filter leg,
// a similar-to-unit query, and textual find_references. Grounded on the
// teacher's internal/store/reflection_search.go (lexical fallback over
// keyword extraction + scoring) and vector_store.go (sqlite-vec ANN
// search with a brute-force cosine fallback), generalized from
// knowledge-store recall to a general-purpose indexed-document store.
package search

// EntityType distinguishes the two document families the index
// carries, per spec §4.9.
type EntityType string

const (
	EntityUnit     EntityType = "Unit"
	EntityDocument EntityType = "Document"
)

// Document is one indexed record — a code unit or a document chunk.
// Unit-only fields (Signature, Docstring, Kind) and document-only
// fields (Content, Heading, SectionPath, DocType) are simply left zero
// for the other entity type, matching spec §4.9's two overlapping
// field sets.
type Document struct {
	ID            string
	EntityType    EntityType
	Name          string
	QualifiedName string
	Signature     string
	Body          string
	Docstring     string
	FilePath      string
	Language      string
	Kind          string
	Content       string
	Heading       string
	SectionPath   string
	DocType       string
	// Embedding is optional; when set, Commit also indexes it for the
	// semantic-filter leg (sqlite-vec ANN when available, brute-force
	// cosine similarity otherwise).
	Embedding []float32
}

// Filters narrows a query's candidate set before ranking, per spec
// §4.9's "semantic filter" query: entity type, language, unit kind and
// minimum score. There is no filter on arbitrary metadata.
type Filters struct {
	EntityType EntityType
	Language   string
	Kind       string
	MinScore   float64
}

// Hit is one ranked search result.
type Hit struct {
	ID            string
	EntityType    EntityType
	QualifiedName string
	FilePath      string
	Score         float64
}

// Reference is one textual occurrence of a unit's name found in
// another indexed body, per spec §4.9's find_references.
type Reference struct {
	DocID    string
	FilePath string
	Offset   int
}
