package sessionstore

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codegraph/internal/clock"
	"codegraph/internal/goerr"
	"codegraph/internal/logging"
)

const metadataFileName = "metadata.json"
const sessionsDirName = "sessions"

// Store scans a root directory of project directories on demand,
// caching what it finds behind a TTL (see cache.go).
type Store struct {
	root  string
	cache *cache
}

// Open creates a Store rooted at root (conventionally
// ~/.claude/projects) with the given cache TTL.
func Open(root string, ttl time.Duration, clk clock.Clock) *Store {
	return &Store{root: root, cache: newCache(ttl, clk)}
}

// ListProjects returns every discovered project, read-through cached.
func (s *Store) ListProjects() ([]Project, error) {
	if projects, ok := s.cache.getProjects(); ok {
		return projects, nil
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			s.cache.putProjects(nil)
			return nil, nil
		}
		return nil, goerr.Wrap(goerr.StorageError, err, "read projects root %q", s.root)
	}

	var projects []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		p, err := s.loadProject(entry.Name())
		if err != nil {
			logging.Get(logging.CategorySession).Error("skipping malformed project %s: %v", entry.Name(), err)
			continue
		}
		projects = append(projects, p)
	}

	s.cache.putProjects(projects)
	return projects, nil
}

func (s *Store) loadProject(id string) (Project, error) {
	dir := filepath.Join(s.root, id)
	metaPath := filepath.Join(dir, metadataFileName)

	raw, err := os.ReadFile(metaPath)
	if err != nil {
		return Project{}, goerr.Wrap(goerr.StorageError, err, "read project metadata %q", metaPath)
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return Project{}, goerr.Wrap(goerr.ParseError, err, "decode project metadata %q", metaPath)
	}

	workspacePath, _ := metadata["workspace_path"].(string)

	return Project{
		ID:            id,
		Dir:           dir,
		WorkspacePath: workspacePath,
		Metadata:      metadata,
	}, nil
}

// ListSessions returns every session transcript under a project,
// read-through cached per project id.
func (s *Store) ListSessions(projectID string) ([]SessionMeta, error) {
	if sessions, ok := s.cache.getSessions(projectID); ok {
		return sessions, nil
	}

	sessionsDir := filepath.Join(s.root, projectID, sessionsDirName)
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			s.cache.putSessions(projectID, nil)
			return nil, nil
		}
		return nil, goerr.Wrap(goerr.StorageError, err, "read sessions dir %q", sessionsDir)
	}

	var sessions []SessionMeta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sessions = append(sessions, SessionMeta{
			ID:         strings.TrimSuffix(entry.Name(), ".jsonl"),
			ProjectID:  projectID,
			Path:       filepath.Join(sessionsDir, entry.Name()),
			ModifiedAt: info.ModTime(),
		})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })

	s.cache.putSessions(projectID, sessions)
	return sessions, nil
}

// LoadSessionHistory finds sessionID across every project's sessions
// directory and decodes its JSONL transcript one message per line.
func (s *Store) LoadSessionHistory(sessionID string) ([]Message, error) {
	projects, err := s.ListProjects()
	if err != nil {
		return nil, err
	}

	for _, p := range projects {
		sessions, err := s.ListSessions(p.ID)
		if err != nil {
			return nil, err
		}
		for _, sess := range sessions {
			if sess.ID == sessionID {
				return readTranscript(sess.Path)
			}
		}
	}
	return nil, goerr.New(goerr.NotFound, "session %q not found in any project", sessionID)
}

func readTranscript(path string) ([]Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "open session transcript %q", path)
	}
	defer f.Close()

	var messages []Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw map[string]interface{}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, goerr.Wrap(goerr.ParseError, err, "decode transcript line in %q", path)
		}
		messages = append(messages, Message{Raw: raw})
	}
	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(goerr.StorageError, err, "scan session transcript %q", path)
	}
	return messages, nil
}

// FindProjectByPath canonicalizes wsPath and returns the project whose
// recorded WorkspacePath canonicalizes to the same value.
func (s *Store) FindProjectByPath(wsPath string) (Project, error) {
	target, err := canonicalize(wsPath)
	if err != nil {
		return Project{}, goerr.Wrap(goerr.InvalidPath, err, "canonicalize workspace path %q", wsPath)
	}

	projects, err := s.ListProjects()
	if err != nil {
		return Project{}, err
	}
	for _, p := range projects {
		if p.WorkspacePath == "" {
			continue
		}
		candidate, err := canonicalize(p.WorkspacePath)
		if err != nil {
			continue
		}
		if candidate == target {
			return p, nil
		}
	}
	return Project{}, goerr.New(goerr.NotFound, "no project found for workspace path %q", wsPath)
}

// Invalidate drops the read-through cache, forcing the next call to
// rescan the filesystem.
func (s *Store) Invalidate() {
	s.cache.Invalidate()
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}
