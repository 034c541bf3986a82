package search

import (
	"bytes"
	"encoding/binary"
	"sort"

	"codegraph/internal/embedding"
	"codegraph/internal/goerr"
)

// encodeEmbedding serializes a float32 vector as a little-endian blob,
// the binary layout sqlite-vec's vec0 virtual tables and
// internal/store/vector_store.go's encodeFloat32Slice both use.
func encodeEmbedding(vec []float32) []byte {
	buf := &bytes.Buffer{}
	_ = binary.Write(buf, binary.LittleEndian, vec)
	return buf.Bytes()
}

func decodeEmbedding(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	_ = binary.Read(bytes.NewReader(blob), binary.LittleEndian, &vec)
	return vec
}

// SemanticSearch implements spec §4.9's semantic-filter leg over
// precomputed embeddings: ANN via sqlite-vec's vec_distance_cosine
// when the extension loaded, brute-force cosine similarity otherwise.
// Grounded on internal/store/vector_store.go's vectorRecallVec /
// vectorRecallBruteForce pair; generating the query embedding itself
// is the caller's responsibility (embedding generation is out of
// scope here, per spec §1's non-goals).
func (idx *Index) SemanticSearch(queryVector []float32, f Filters, limit int) ([]Hit, error) {
	if idx.vectorExt {
		return idx.semanticSearchVec(queryVector, f, limit)
	}
	return idx.semanticSearchBruteForce(queryVector, f, limit)
}

func (idx *Index) semanticSearchBruteForce(queryVector []float32, f Filters, limit int) ([]Hit, error) {
	rows, err := idx.db.Query(`
		SELECT d.id, d.entity_type, d.qualified_name, d.file_path, d.language, d.kind, e.embedding
		FROM search_embedding e JOIN search_document d ON d.id = e.doc_id`)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "search: semantic scan")
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var id, entityType, qname, filePath, language, kind string
		var blob []byte
		if err := rows.Scan(&id, &entityType, &qname, &filePath, &language, &kind, &blob); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: semantic row")
		}
		d := &docRow{id: id, entityType: entityType, qualifiedName: qname, filePath: filePath, language: language, kind: kind}
		if !matchesFilters(d, f) {
			continue
		}
		sim, err := embedding.CosineSimilarity(queryVector, decodeEmbedding(blob))
		if err != nil || sim < f.MinScore {
			continue
		}
		hits = append(hits, Hit{ID: id, EntityType: EntityType(entityType), QualifiedName: qname, FilePath: filePath, Score: sim})
	}

	sortHits(hits)
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (idx *Index) semanticSearchVec(queryVector []float32, f Filters, limit int) ([]Hit, error) {
	// The sqlite-vec extension scores by distance, not similarity; rank
	// all candidates then apply entity/language/kind filters and
	// min_score in Go, the same post-filter shape
	// vectorRecallVec/matchesMetadata use in vector_store.go.
	queryBlob := encodeEmbedding(queryVector)
	fetchLimit := limit
	if fetchLimit <= 0 || fetchLimit > 500 {
		fetchLimit = 500
	}

	rows, err := idx.db.Query(`
		SELECT d.id, d.entity_type, d.qualified_name, d.file_path, d.language, d.kind,
		       vec_distance_cosine(e.embedding, ?) AS distance
		FROM search_embedding e JOIN search_document d ON d.id = e.doc_id
		ORDER BY distance ASC LIMIT ?`, queryBlob, fetchLimit)
	if err != nil {
		return idx.semanticSearchBruteForce(queryVector, f, limit)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var id, entityType, qname, filePath, language, kind string
		var distance float64
		if err := rows.Scan(&id, &entityType, &qname, &filePath, &language, &kind, &distance); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "search: semantic vec row")
		}
		d := &docRow{id: id, entityType: entityType, qualifiedName: qname, filePath: filePath, language: language, kind: kind}
		if !matchesFilters(d, f) {
			continue
		}
		score := 1 - distance
		if score < f.MinScore {
			continue
		}
		hits = append(hits, Hit{ID: id, EntityType: EntityType(entityType), QualifiedName: qname, FilePath: filePath, Score: score})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].QualifiedName < hits[j].QualifiedName
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}
