// Package content loads and serves the static curriculum: sessions, quizzes,
// scenarios, flashcard decks and the reference material. Content is read-only
// input data; the edits package layers admin overrides on top at render time.
package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// sessionFile is the on-disk shape of a *.session.yaml document.
type sessionFile struct {
	Session  Session         `yaml:"session"`
	Quiz     []QuizQuestion  `yaml:"quiz"`
	Scenario *Scenario       `yaml:"scenario"`
	Decks    []FlashcardDeck `yaml:"decks"`
}

// referenceFile is the on-disk shape of reference.yaml.
type referenceFile struct {
	Frameworks   []Framework    `yaml:"frameworks"`
	DecisionTree []DecisionNode `yaml:"decision_tree"`
}

// Catalog loads and caches curriculum content from the filesystem.
type Catalog struct {
	rootDir      string
	sessions     map[int]Session
	quizzes      map[int][]QuizQuestion
	scenarios    map[int]Scenario
	decks        map[int][]FlashcardDeck
	frameworks   []Framework
	decisionTree []DecisionNode
	mu           sync.RWMutex
}

// NewCatalog creates a catalog and loads all content under rootDir.
func NewCatalog(rootDir string) (*Catalog, error) {
	c := &Catalog{
		rootDir:   rootDir,
		sessions:  make(map[int]Session),
		quizzes:   make(map[int][]QuizQuestion),
		scenarios: make(map[int]Scenario),
		decks:     make(map[int][]FlashcardDeck),
	}

	if err := c.loadAll(); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}

	slog.Info("content loaded", "sessions", len(c.sessions), "frameworks", len(c.frameworks))
	return c, nil
}

func (c *Catalog) loadAll() error {
	return filepath.Walk(c.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}

		switch {
		case strings.HasSuffix(path, ".session.yaml"):
			return c.loadSession(path)
		case filepath.Base(path) == "reference.yaml":
			return c.loadReference(path)
		}
		return nil
	})
}

func (c *Catalog) loadSession(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file sessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid session YAML", "path", path, "error", err)
		return nil
	}
	if file.Session.ID == 0 {
		return nil // Not a session file
	}

	id := file.Session.ID

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessions[id] = file.Session
	for i := range file.Quiz {
		file.Quiz[i].SessionID = id
	}
	c.quizzes[id] = file.Quiz
	if file.Scenario != nil {
		file.Scenario.SessionID = id
		c.scenarios[id] = *file.Scenario
	}
	for i := range file.Decks {
		file.Decks[i].SessionID = id
	}
	c.decks[id] = file.Decks

	return nil
}

func (c *Catalog) loadReference(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var file referenceFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		slog.Warn("skipping invalid reference YAML", "path", path, "error", err)
		return nil
	}

	c.mu.Lock()
	c.frameworks = file.Frameworks
	c.decisionTree = file.DecisionTree
	c.mu.Unlock()

	return nil
}

// Session returns a session by id.
func (c *Catalog) Session(id int) (Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[id]
	return s, ok
}

// Sessions returns all sessions ordered by id.
func (c *Catalog) Sessions() []Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sessions := make([]Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions
}

// SessionCount returns the number of loaded sessions.
func (c *Catalog) SessionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// Quiz returns the quiz questions for a session.
func (c *Catalog) Quiz(sessionID int) []QuizQuestion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quizzes[sessionID]
}

// Question looks up a quiz question by its id.
func (c *Catalog) Question(questionID string) (QuizQuestion, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, questions := range c.quizzes {
		for _, q := range questions {
			if q.ID == questionID {
				return q, true
			}
		}
	}
	return QuizQuestion{}, false
}

// Scenario returns the practice scenario for a session.
func (c *Catalog) Scenario(sessionID int) (Scenario, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.scenarios[sessionID]
	return s, ok
}

// Decks returns the flashcard decks for a session.
func (c *Catalog) Decks(sessionID int) []FlashcardDeck {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decks[sessionID]
}

// Frameworks returns the reference-page frameworks.
func (c *Catalog) Frameworks() []Framework {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frameworks
}

// DecisionTree returns the reference-page decision tree nodes.
func (c *Catalog) DecisionTree() []DecisionNode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decisionTree
}
