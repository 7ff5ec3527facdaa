package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the tracker.
const (
	EventQuizScored       = "quiz_scored"
	EventQuizCleared      = "quiz_cleared"
	EventScenarioViewed   = "scenario_viewed"
	EventChecklistToggled = "checklist_toggled"
	EventFlashcardViewed  = "flashcard_viewed"
	EventSessionCompleted = "session_completed"
	EventSessionVisited   = "session_visited"
)

// Event is an analytics record of one progress mutation. Events are
// observational only; they never feed back into gating.
type Event struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	EventType string         `json:"event_type"`
	SessionID int            `json:"session_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// EventLogger defines event logging behavior.
type EventLogger interface {
	LogEvent(event Event) error
}

// NopEventLogger ignores all events.
type NopEventLogger struct{}

func (NopEventLogger) LogEvent(Event) error {
	return nil
}

// MemoryEventLogger stores events in memory for tests.
type MemoryEventLogger struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventLogger() *MemoryEventLogger {
	return &MemoryEventLogger{
		events: []Event{},
	}
}

func (l *MemoryEventLogger) LogEvent(event Event) error {
	if event.EventType == "" {
		return fmt.Errorf("event_type is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	return nil
}

func (l *MemoryEventLogger) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event{}, l.events...)
}

// newEvent builds a tracker event with a fresh id.
func newEvent(email, eventType string, sessionID int, data map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Email:     email,
		EventType: eventType,
		SessionID: sessionID,
		Data:      data,
		CreatedAt: time.Now(),
	}
}
