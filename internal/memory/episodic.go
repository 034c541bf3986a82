package memory

import (
	"database/sql"
	"encoding/json"
	"time"

	"codegraph/internal/goerr"
	"codegraph/internal/ids"
)

// EpisodicStore is the append-only log of episodes, queryable by id,
// agent, outcome, and time window, plus a text-contains scan over
// task_description. Grounded on internal/store/local_knowledge.go's
// SQLite schema-creation and JSON-column idiom (there, knowledge
// atoms' Tags column; here, Episode.Entities).
type EpisodicStore struct {
	db *sql.DB
}

func openEpisodicStore(db *sql.DB) (*EpisodicStore, error) {
	s := &EpisodicStore{db: db}
	const schema = `
	CREATE TABLE IF NOT EXISTS memory_episode (
		id          TEXT PRIMARY KEY,
		agent_id    TEXT NOT NULL,
		task        TEXT NOT NULL,
		outcome     TEXT NOT NULL,
		entities    TEXT NOT NULL DEFAULT '[]',
		importance  REAL NOT NULL DEFAULT 1.0,
		occurred_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memory_episode_agent ON memory_episode(agent_id);
	CREATE INDEX IF NOT EXISTS idx_memory_episode_outcome ON memory_episode(outcome);
	CREATE INDEX IF NOT EXISTS idx_memory_episode_occurred ON memory_episode(occurred_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: migrate episodic")
	}
	return s, nil
}

// Record appends a new episode, assigning an ID if the caller left it
// zero.
func (s *EpisodicStore) Record(ep Episode) (Episode, error) {
	if ep.ID.IsZero() {
		ep.ID = ids.NewEpisodeId()
	}
	if ep.OccurredAt.IsZero() {
		ep.OccurredAt = time.Now().UTC()
	}
	entities, err := json.Marshal(ep.Entities)
	if err != nil {
		entities = []byte("[]")
	}
	_, err = s.db.Exec(`
		INSERT INTO memory_episode (id, agent_id, task, outcome, entities, importance, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ep.ID.String(), ep.AgentID, ep.TaskDescription, string(ep.Outcome), string(entities), ep.Importance, ep.OccurredAt)
	if err != nil {
		return Episode{}, goerr.Wrap(goerr.StorageError, err, "memory: record episode")
	}
	return ep, nil
}

const episodeColumns = `id, agent_id, task, outcome, entities, importance, occurred_at`

func scanEpisode(row interface{ Scan(...interface{}) error }) (Episode, error) {
	var ep Episode
	var idStr, outcome, entitiesJSON string
	if err := row.Scan(&idStr, &ep.AgentID, &ep.TaskDescription, &outcome, &entitiesJSON, &ep.Importance, &ep.OccurredAt); err != nil {
		return Episode{}, err
	}
	id, err := ids.ParseID(idStr)
	if err != nil {
		return Episode{}, err
	}
	ep.ID = ids.EpisodeId(id)
	ep.Outcome = Outcome(outcome)
	_ = json.Unmarshal([]byte(entitiesJSON), &ep.Entities)
	return ep, nil
}

// GetByID fetches a single episode.
func (s *EpisodicStore) GetByID(id ids.EpisodeId) (Episode, error) {
	row := s.db.QueryRow(`SELECT `+episodeColumns+` FROM memory_episode WHERE id = ?`, id.String())
	ep, err := scanEpisode(row)
	if err == sql.ErrNoRows {
		return Episode{}, goerr.New(goerr.NotFound, "memory: episode %s not found", id)
	}
	if err != nil {
		return Episode{}, goerr.Wrap(goerr.StorageError, err, "memory: get episode %s", id)
	}
	return ep, nil
}

// ByAgent returns every episode recorded for agentID, most recent
// first.
func (s *EpisodicStore) ByAgent(agentID string) ([]Episode, error) {
	return s.queryEpisodes(`SELECT `+episodeColumns+` FROM memory_episode WHERE agent_id = ? ORDER BY occurred_at DESC`, agentID)
}

// ByOutcome returns every episode with the given outcome, most recent
// first.
func (s *EpisodicStore) ByOutcome(outcome Outcome) ([]Episode, error) {
	return s.queryEpisodes(`SELECT `+episodeColumns+` FROM memory_episode WHERE outcome = ? ORDER BY occurred_at DESC`, string(outcome))
}

// ByTimeWindow returns episodes that occurred within [from, to].
func (s *EpisodicStore) ByTimeWindow(from, to time.Time) ([]Episode, error) {
	return s.queryEpisodes(`SELECT `+episodeColumns+` FROM memory_episode WHERE occurred_at >= ? AND occurred_at <= ? ORDER BY occurred_at ASC`, from, to)
}

// ContainsText returns episodes whose task_description contains
// substr, case-insensitively.
func (s *EpisodicStore) ContainsText(substr string) ([]Episode, error) {
	return s.queryEpisodes(`SELECT `+episodeColumns+` FROM memory_episode WHERE task LIKE ? ORDER BY occurred_at DESC`, "%"+substr+"%")
}

// All returns every recorded episode, oldest first — used by
// consolidation passes that need the full set.
func (s *EpisodicStore) All() ([]Episode, error) {
	return s.queryEpisodes(`SELECT ` + episodeColumns + ` FROM memory_episode ORDER BY occurred_at ASC`)
}

func (s *EpisodicStore) queryEpisodes(query string, args ...interface{}) ([]Episode, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "memory: query episodes")
	}
	defer rows.Close()

	var out []Episode
	for rows.Next() {
		ep, err := scanEpisode(rows)
		if err != nil {
			return nil, goerr.Wrap(goerr.StorageError, err, "memory: scan episode")
		}
		out = append(out, ep)
	}
	return out, nil
}

// SetImportance overwrites an episode's importance score, used by the
// decay step of consolidation.
func (s *EpisodicStore) SetImportance(id ids.EpisodeId, importance float64) error {
	_, err := s.db.Exec(`UPDATE memory_episode SET importance = ? WHERE id = ?`, importance, id.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "memory: set importance for %s", id)
	}
	return nil
}

// Delete removes an episode, used when consolidation merges duplicates
// into a single survivor.
func (s *EpisodicStore) Delete(id ids.EpisodeId) error {
	_, err := s.db.Exec(`DELETE FROM memory_episode WHERE id = ?`, id.String())
	if err != nil {
		return goerr.Wrap(goerr.StorageError, err, "memory: delete episode %s", id)
	}
	return nil
}
