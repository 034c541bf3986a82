package memory

import (
	"database/sql"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
)

// SemanticStore tracks derived knowledge about code units: summaries
// and typed dependency edges between them. Code units themselves live
// in codeunit.Store; this store only holds what memory derives about
// them, mirroring the teacher's knowledge_atoms-as-a-bridge-table
// pattern in internal/store/local_knowledge.go rather than duplicating
// the unit records.
type SemanticStore struct {
	db *sql.DB
}

func openSemanticStore(db *sql.DB) (*SemanticStore, error) {
	s := &SemanticStore{db: db}
	const schema = `
	CREATE TABLE IF NOT EXISTS memory_semantic_summary (
		unit_id TEXT PRIMARY KEY,
		summary TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS memory_semantic_edge (
		from_unit TEXT NOT NULL,
		kind      TEXT NOT NULL,
		to_unit   TEXT NOT NULL,
		PRIMARY KEY (from_unit, kind, to_unit)
	);
	CREATE INDEX IF NOT EXISTS idx_memory_edge_from ON memory_semantic_edge(from_unit);
	CREATE INDEX IF NOT EXISTS idx_memory_edge_to ON memory_semantic_edge(to_unit);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: migrate semantic")
	}
	return s, nil
}

// SetSummary stores (or replaces) a code unit's derived summary.
func (s *SemanticStore) SetSummary(unit ids.UnitId, summary string) error {
	_, err := s.db.Exec(`
		INSERT INTO memory_semantic_summary (unit_id, summary) VALUES (?, ?)
		ON CONFLICT(unit_id) DO UPDATE SET summary = excluded.summary`,
		unit.String(), summary)
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "memory: set summary for %s", unit)
	}
	return nil
}

// Summary fetches a code unit's derived summary, if any.
func (s *SemanticStore) Summary(unit ids.UnitId) (string, bool, error) {
	var summary string
	err := s.db.QueryRow(`SELECT summary FROM memory_semantic_summary WHERE unit_id = ?`, unit.String()).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(goerr.StorageError, err, "memory: get summary for %s", unit)
	}
	return summary, true, nil
}

// LinkEdge records a directed, typed dependency edge; duplicate edges
// are no-ops.
func (s *SemanticStore) LinkEdge(edge SemanticEdge) error {
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO memory_semantic_edge (from_unit, kind, to_unit) VALUES (?, ?, ?)`,
		edge.From.String(), string(edge.Kind), edge.To.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "memory: link edge %s --%s--> %s", edge.From, edge.Kind, edge.To)
	}
	return nil
}

// DirectDependencies returns every unit that unit directly depends on.
func (s *SemanticStore) DirectDependencies(unit ids.UnitId) ([]SemanticEdge, error) {
	return s.queryEdges(`SELECT from_unit, kind, to_unit FROM memory_semantic_edge WHERE from_unit = ?`, unit.String())
}

// ReverseDependencies returns every unit that depends on unit.
func (s *SemanticStore) ReverseDependencies(unit ids.UnitId) ([]SemanticEdge, error) {
	return s.queryEdges(`SELECT from_unit, kind, to_unit FROM memory_semantic_edge WHERE to_unit = ?`, unit.String())
}

func (s *SemanticStore) queryEdges(query string, args ...interface{}) ([]SemanticEdge, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: query edges")
	}
	defer rows.Close()

	var edges []SemanticEdge
	for rows.Next() {
		var from, kind, to string
		if err := rows.Scan(&from, &kind, &to); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "memory: scan edge")
		}
		fromID, err := ids.ParseID(from)
		if err != nil {
			return nil, err
		}
		toID, err := ids.ParseID(to)
		if err != nil {
			return nil, err
		}
		edges = append(edges, SemanticEdge{From: ids.UnitId(fromID), Kind: EdgeKind(kind), To: ids.UnitId(toID)})
	}
	return edges, nil
}

// ComplexUnit is one result of FindComplexUnits: a unit together with
// the complexity figures that crossed the requested threshold.
type ComplexUnit struct {
	UnitID     ids.UnitId
	Cyclomatic int
	Cognitive  int
}

// FindComplexUnits queries the code_unit table directly (joining past
// this store's own tables) for units whose cyclomatic or cognitive
// complexity meets or exceeds threshold, ordered worst-first. This is
// the one semantic-store query that reaches into codeunit's schema
// rather than memory's own, since "complex units" is a property of the
// unit record itself, not of anything memory derives about it.
func (s *SemanticStore) FindComplexUnits(minCyclomatic, minCognitive int) ([]ComplexUnit, error) {
	rows, err := s.db.Query(`
		SELECT id, cyclomatic, cognitive FROM code_unit
		WHERE cyclomatic >= ? OR cognitive >= ?
		ORDER BY cyclomatic DESC, cognitive DESC`, minCyclomatic, minCognitive)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: find complex units")
	}
	defer rows.Close()

	var out []ComplexUnit
	for rows.Next() {
		var idStr string
		var cu ComplexUnit
		if err := rows.Scan(&idStr, &cu.Cyclomatic, &cu.Cognitive); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "memory: scan complex unit")
		}
		id, err := ids.ParseID(idStr)
		if err != nil {
			return nil, err
		}
		cu.UnitID = ids.UnitId(id)
		out = append(out, cu)
	}
	return out, nil
}
