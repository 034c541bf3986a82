package memory

import (
	"database/sql"
	"time"

	"codegraph/internal/goerr"
)

// ProceduralStore holds learned patterns: recurring task shapes that
// produced a recorded outcome, with occurrence counts and a
// feedback-adjusted confidence. Grounded on
// internal/store/learning_candidates.go's count-on-conflict increment
// idiom, generalized from taxonomy phrases to arbitrary pattern
// descriptions.
type ProceduralStore struct {
	db *sql.DB
}

func openProceduralStore(db *sql.DB) (*ProceduralStore, error) {
	s := &ProceduralStore{db: db}
	const schema = `
	CREATE TABLE IF NOT EXISTS memory_pattern (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL UNIQUE,
		occurrences INTEGER NOT NULL DEFAULT 1,
		confidence  REAL NOT NULL DEFAULT 0.5,
		last_seen_at DATETIME NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: migrate procedural")
	}
	return s, nil
}

// RecordMatch increments a pattern's occurrence count, creating it at
// occurrence 1 / confidence 0.5 the first time it is seen.
func (s *ProceduralStore) RecordMatch(description string) (Pattern, error) {
	now := time.Now().UTC()
	_, err := s.db.Exec(`
		INSERT INTO memory_pattern (description, occurrences, confidence, last_seen_at)
		VALUES (?, 1, 0.5, ?)
		ON CONFLICT(description) DO UPDATE SET
			occurrences = occurrences + 1,
			last_seen_at = excluded.last_seen_at`,
		description, now)
	if err != nil {
		return Pattern{}, goerr.Wrap(goerr.StorageError, err, "memory: record pattern match %q", description)
	}
	return s.byDescription(description)
}

func (s *ProceduralStore) byDescription(description string) (Pattern, error) {
	var p Pattern
	err := s.db.QueryRow(`SELECT id, description, occurrences, confidence, last_seen_at FROM memory_pattern WHERE description = ?`, description).
		Scan(&p.ID, &p.Description, &p.Occurrences, &p.Confidence, &p.LastSeenAt)
	if err != nil {
		return Pattern{}, goerr.Wrap(goerr.StorageError, err, "memory: get pattern %q", description)
	}
	return p, nil
}

// AdjustConfidence applies feedback to a pattern's confidence, clamped
// to [0, 1]: confidence <- clamp(confidence + adjustment, 0, 1).
func (s *ProceduralStore) AdjustConfidence(id int64, adjustment float64) (Pattern, error) {
	var current float64
	if err := s.db.QueryRow(`SELECT confidence FROM memory_pattern WHERE id = ?`, id).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return Pattern{}, goerr.New(goerr.NotFound, "memory: pattern %d not found", id)
		}
		return Pattern{}, goerr.Wrap(goerr.StorageError, err, "memory: get confidence for pattern %d", id)
	}

	next := clamp(current+adjustment, 0, 1)
	if _, err := s.db.Exec(`UPDATE memory_pattern SET confidence = ? WHERE id = ?`, next, id); err != nil {
		return Pattern{}, goerr.Wrap(goerr.StorageError, err, "memory: set confidence for pattern %d", id)
	}

	var p Pattern
	err := s.db.QueryRow(`SELECT id, description, occurrences, confidence, last_seen_at FROM memory_pattern WHERE id = ?`, id).
		Scan(&p.ID, &p.Description, &p.Occurrences, &p.Confidence, &p.LastSeenAt)
	if err != nil {
		return Pattern{}, goerr.Wrap(goerr.StorageError, err, "memory: reread pattern %d", id)
	}
	return p, nil
}

// AboveFrequency returns every pattern whose occurrence count has
// reached minFrequency, used when consolidation extracts patterns from
// clusters of qualifying episodes.
func (s *ProceduralStore) AboveFrequency(minFrequency int) ([]Pattern, error) {
	rows, err := s.db.Query(`SELECT id, description, occurrences, confidence, last_seen_at FROM memory_pattern WHERE occurrences >= ? ORDER BY occurrences DESC`, minFrequency)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: query patterns above frequency")
	}
	defer rows.Close()

	var out []Pattern
	for rows.Next() {
		var p Pattern
		if err := rows.Scan(&p.ID, &p.Description, &p.Occurrences, &p.Confidence, &p.LastSeenAt); err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "memory: scan pattern")
		}
		out = append(out, p)
	}
	return out, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
