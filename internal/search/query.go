package search

import (
	"database/sql"
	"sort"
	"strings"

	"codegraph/internal/goerr"
)

type docRow struct {
	id, entityType, name, qualifiedName, signature, body, docstring string
	filePath, language, kind, content, heading                      string
	docLength                                                       int
}

const docColumns = `id, entity_type, name, qualified_name, signature, body, docstring, file_path, language, kind, content, heading, doc_length`

func scanDocRow(row interface{ Scan(...interface{}) error }) (*docRow, error) {
	var d docRow
	err := row.Scan(&d.id, &d.entityType, &d.name, &d.qualifiedName, &d.signature, &d.body, &d.docstring,
		&d.filePath, &d.language, &d.kind, &d.content, &d.heading, &d.docLength)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (idx *Index) getDoc(id string) (*docRow, error) {
	row := idx.db.QueryRow(`SELECT `+docColumns+` FROM search_document WHERE id = ?`, id)
	d, err := scanDocRow(row)
	if err == sql.ErrNoRows {
		return nil, goerr.New(goerr.NotFound, "search: document %s not found", id)
	}
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: get document %s", id)
	}
	return d, nil
}

func matchesFilters(d *docRow, f Filters) bool {
	if f.EntityType != "" && EntityType(d.entityType) != f.EntityType {
		return false
	}
	if f.Language != "" && d.language != f.Language {
		return false
	}
	if f.Kind != "" && d.kind != f.Kind {
		return false
	}
	return true
}

// TextSearch implements spec §4.9's text query: boolean/phrase syntax,
// default operator OR, BM25-style ranking, deterministic tie-break by
// qualified_name ascending. Quoted substrings are required phrases
// (AND'd in); bare words are OR'd keywords scored by BM25.
func (idx *Index) TextSearch(query string, f Filters, limit int) ([]Hit, error) {
	phrases, rest := extractPhrases(query)
	keywords := tokenize(rest)
	if len(keywords) == 0 && len(phrases) == 0 {
		return nil, nil
	}

	rows, err := idx.db.Query(`SELECT ` + docColumns + ` FROM search_document`)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: text search scan")
	}
	defer rows.Close()

	var docs []*docRow
	totalLength := 0
	for rows.Next() {
		d, err := scanDocRow(rows)
		if err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: text search row")
		}
		docs = append(docs, d)
		totalLength += d.docLength
	}
	if len(docs) == 0 {
		return nil, nil
	}
	avgDocLength := float64(totalLength) / float64(len(docs))
	if avgDocLength == 0 {
		avgDocLength = 1
	}

	termDocFreq := make(map[string]int)
	termCounts := make(map[string]map[string]int) // term -> doc_id -> freq
	for _, term := range keywords {
		rows, err := idx.db.Query(`SELECT doc_id, term_freq FROM search_posting WHERE term = ?`, term)
		if err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: posting lookup %q", term)
		}
		counts := make(map[string]int)
		for rows.Next() {
			var docID string
			var freq int
			if err := rows.Scan(&docID, &freq); err != nil {
				rows.Close()
				return nil, goerr.Wrap(goerr.StorageError, err, "search: posting scan %q", term)
			}
			counts[docID] = freq
		}
		rows.Close()
		termDocFreq[term] = len(counts)
		termCounts[term] = counts
	}

	var hits []Hit
	for _, d := range docs {
		if !matchesFilters(d, f) {
			continue
		}
		if !docContainsAllPhrases(d, phrases) {
			continue
		}
		score := 0.0
		matched := len(phrases) > 0
		for _, term := range keywords {
			if freq, ok := termCounts[term][d.id]; ok {
				score += bm25Score(freq, d.docLength, avgDocLength, termDocFreq[term], len(docs))
				matched = true
			}
		}
		if !matched {
			continue
		}
		if score < f.MinScore {
			continue
		}
		hits = append(hits, Hit{ID: d.id, EntityType: EntityType(d.entityType), QualifiedName: d.qualifiedName, FilePath: d.filePath, Score: score})
	}

	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func docContainsAllPhrases(d *docRow, phrases []string) bool {
	if len(phrases) == 0 {
		return true
	}
	haystack := strings.ToLower(d.name + " " + d.qualifiedName + " " + d.signature + " " + d.body + " " +
		d.docstring + " " + d.content + " " + d.heading)
	for _, p := range phrases {
		if !strings.Contains(haystack, p) {
			return false
		}
	}
	return true
}

func sortHits(hits []Hit) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].QualifiedName < hits[j].QualifiedName
	})
}

// FuzzySearch implements spec §4.9's fuzzy-over-name query: edit
// distance <= maxDistance, deterministic tie-break by qualified_name.
func (idx *Index) FuzzySearch(name string, maxDistance, limit int) ([]Hit, error) {
	rows, err := idx.db.Query(`SELECT id, entity_type, name, qualified_name, file_path FROM search_document`)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: fuzzy scan")
	}
	defer rows.Close()

	target := strings.ToLower(name)
	var hits []Hit
	for rows.Next() {
		var id, entityType, candName, qname, filePath string
		if err := rows.Scan(&id, &entityType, &candName, &qname, &filePath); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: fuzzy row")
		}
		dist := levenshtein(target, strings.ToLower(candName))
		if dist > maxDistance {
			continue
		}
		score := 1 - float64(dist)/float64(maxDistance+1)
		hits = append(hits, Hit{ID: id, EntityType: EntityType(entityType), QualifiedName: qname, FilePath: filePath, Score: score})
	}

	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// ByFilePath implements spec §4.9's exact stored-field file-path
// lookup.
func (idx *Index) ByFilePath(path string) ([]Hit, error) {
	rows, err := idx.db.Query(`SELECT id, entity_type, qualified_name, file_path FROM search_document WHERE file_path = ? ORDER BY qualified_name ASC`, path)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: by file path")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var entityType string
		if err := rows.Scan(&h.ID, &entityType, &h.QualifiedName, &h.FilePath); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: by file path row")
		}
		h.EntityType = EntityType(entityType)
		h.Score = 1
		hits = append(hits, h)
	}
	return hits, nil
}

// SimilarToUnit implements spec §4.9's similar-to-unit query: builds a
// text query from the reference unit's signature + body, filters to
// the same kind, excludes the reference id.
func (idx *Index) SimilarToUnit(unitID string, limit int) ([]Hit, error) {
	ref, err := idx.getDoc(unitID)
	if err != nil {
		return nil, err
	}
	queryText := ref.signature + " " + ref.body
	hits, err := idx.TextSearch(queryText, Filters{EntityType: EntityUnit, Kind: ref.kind}, 0)
	if err != nil {
		return nil, err
	}

	out := hits[:0]
	for _, h := range hits {
		if h.ID == unitID {
			continue
		}
		out = append(out, h)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindReferences implements spec §4.9's find_references: a syntactic
// scan for textual occurrences of the unit's qualified name in other
// indexed bodies. This is explicitly a textual search, not a semantic
// one — callers needing real call-graph references should consult the
// dependency edges codeunit.CodeUnit.Dependencies records.
func (idx *Index) FindReferences(unitID string) ([]Reference, error) {
	ref, err := idx.getDoc(unitID)
	if err != nil {
		return nil, err
	}
	needle := ref.qualifiedName
	if needle == "" {
		needle = ref.name
	}

	rows, err := idx.db.Query(`SELECT id, file_path, body, content FROM search_document WHERE id != ?`, unitID)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: find references scan")
	}
	defer rows.Close()

	var refs []Reference
	for rows.Next() {
		var id, filePath, body, content string
		if err := rows.Scan(&id, &filePath, &body, &content); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: find references row")
		}
		haystack := body + content
		start := 0
		for {
			i := strings.Index(haystack[start:], needle)
			if i < 0 {
				break
			}
			refs = append(refs, Reference{DocID: id, FilePath: filePath, Offset: start + i})
			start += i + len(needle)
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].FilePath != refs[j].FilePath {
			return refs[i].FilePath < refs[j].FilePath
		}
		return refs[i].Offset < refs[j].Offset
	})
	return refs, nil
}
