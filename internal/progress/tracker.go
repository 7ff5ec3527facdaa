package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"

	"github.com/nextpv/bd-academy/internal/identity"
	"github.com/nextpv/bd-academy/internal/platform/kv"
)

const (
	// DefaultSessionCount is the number of sessions in the curriculum.
	DefaultSessionCount = 6

	// PassingScore is the minimum quiz percentage that satisfies gating.
	PassingScore = 70

	keyPrefix = "progress:"
)

// SessionState is the derived state of one session for one identity.
type SessionState string

const (
	StateLocked     SessionState = "locked"
	StateInProgress SessionState = "in_progress"
	StateEligible   SessionState = "eligible"
	StateComplete   SessionState = "complete"
)

// Key returns the storage key for a learner's progress record.
func Key(email string) string {
	return keyPrefix + email
}

// Tracker owns per-learner progress records. Records are cached in memory
// per normalized email and every mutation is written through to the store
// best-effort, so the tracker stays authoritative for the life of the
// process even when persistence is down.
//
// All mutations run under one mutex: two calls issued back to back always
// observe each other's effects. Concurrent writers against the same backing
// store from another process are last-write-wins by design.
type Tracker struct {
	store        kv.Store
	events       EventLogger
	sessionCount int

	mu      sync.Mutex
	records map[string]*Record
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithSessionCount overrides the curriculum length.
func WithSessionCount(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.sessionCount = n
		}
	}
}

// WithEventLogger attaches an analytics event logger.
func WithEventLogger(l EventLogger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.events = l
		}
	}
}

// NewTracker creates a progress tracker over the given store.
func NewTracker(store kv.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:        store,
		events:       NopEventLogger{},
		sessionCount: DefaultSessionCount,
		records:      make(map[string]*Record),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// SessionCount returns the curriculum length the tracker gates over.
func (t *Tracker) SessionCount() int {
	return t.sessionCount
}

// record returns the cached record for email, loading or creating it.
// Callers must hold t.mu. Documents that fail schema validation degrade to
// the empty record.
func (t *Tracker) record(ctx context.Context, email string) *Record {
	if r, ok := t.records[email]; ok {
		return r
	}

	r := emptyRecord()
	if raw, ok, err := t.store.Get(ctx, Key(email)); err != nil {
		slog.Warn("progress read failed, starting fresh", "email", email, "error", err)
	} else if ok {
		if !validRecordDocument(raw) {
			slog.Warn("progress document invalid, starting fresh", "email", email)
		} else if err := json.Unmarshal(raw, r); err != nil {
			slog.Warn("progress document corrupt, starting fresh", "email", email, "error", err)
			r = emptyRecord()
		} else {
			r.normalize()
		}
	}

	t.records[email] = r
	return r
}

// save persists the record best-effort. Callers must hold t.mu.
func (t *Tracker) save(ctx context.Context, email string, r *Record) {
	kv.SaveBestEffort(ctx, t.store, Key(email), r)
}

func (t *Tracker) log(event Event) {
	if err := t.events.LogEvent(event); err != nil {
		slog.Warn("progress event not logged", "type", event.EventType, "error", err)
	}
}

func (t *Tracker) validSession(sessionID int) bool {
	return sessionID >= 1 && sessionID <= t.sessionCount
}

// Snapshot returns a copy of the learner's raw record.
func (t *Tracker) Snapshot(ctx context.Context, email string) Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record(ctx, email).clone()
}

// SetQuizScore records the latest quiz score for a session. Scores are
// clamped to 0-100; out-of-range session ids are ignored.
func (t *Tracker) SetQuizScore(ctx context.Context, email string, sessionID, score int) {
	if !t.validSession(sessionID) {
		return
	}
	score = min(100, max(0, score))

	t.mu.Lock()
	r := t.record(ctx, email)
	r.QuizScores[sessionID] = score
	t.save(ctx, email, r)
	t.mu.Unlock()

	t.log(newEvent(email, EventQuizScored, sessionID, map[string]any{"score": score}))
}

// ClearQuizScore removes the quiz entry for a session, returning it to "not
// attempted". Distinct from setting 0: presence marks an attempt. Completion
// already attained is never revoked, but downstream sessions unlocked off
// this score will re-lock on their next evaluation.
func (t *Tracker) ClearQuizScore(ctx context.Context, email string, sessionID int) {
	if !t.validSession(sessionID) {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	delete(r.QuizScores, sessionID)
	t.save(ctx, email, r)
	t.mu.Unlock()

	t.log(newEvent(email, EventQuizCleared, sessionID, nil))
}

// MarkScenarioViewed records that the learner submitted a response to the
// session's scenario. Idempotent.
func (t *Tracker) MarkScenarioViewed(ctx context.Context, email string, sessionID int) {
	if !t.validSession(sessionID) {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	already := r.ScenariosViewed[sessionID]
	r.ScenariosViewed[sessionID] = true
	t.save(ctx, email, r)
	t.mu.Unlock()

	if !already {
		t.log(newEvent(email, EventScenarioViewed, sessionID, nil))
	}
}

// ToggleChecklistItem flips a checklist item, defaulting to false.
func (t *Tracker) ToggleChecklistItem(ctx context.Context, email, itemKey string) {
	if itemKey == "" {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	r.ChecklistItems[itemKey] = !r.ChecklistItems[itemKey]
	done := r.ChecklistItems[itemKey]
	t.save(ctx, email, r)
	t.mu.Unlock()

	t.log(newEvent(email, EventChecklistToggled, 0, map[string]any{"key": itemKey, "done": done}))
}

// MarkFlashcardViewed records a card view. Idempotent; display-only, never a
// gating input.
func (t *Tracker) MarkFlashcardViewed(ctx context.Context, email, cardID string) {
	if cardID == "" {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	already := r.FlashcardsViewed[cardID]
	r.FlashcardsViewed[cardID] = true
	t.save(ctx, email, r)
	t.mu.Unlock()

	if !already {
		t.log(newEvent(email, EventFlashcardViewed, 0, map[string]any{"card": cardID}))
	}
}

// MarkSessionComplete adds the session to the completed set. The tracker
// defends its own invariants: the call is a silent no-op when the session is
// not eligible (own quiz below passing or scenario unviewed), and idempotent
// when already complete. Completion is terminal; nothing transitions back.
func (t *Tracker) MarkSessionComplete(ctx context.Context, email string, sessionID int) {
	if !t.validSession(sessionID) {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	if r.isComplete(sessionID) {
		t.mu.Unlock()
		return
	}
	if !eligible(r, sessionID) {
		t.mu.Unlock()
		return
	}
	r.CompletedSessions = append(r.CompletedSessions, sessionID)
	t.save(ctx, email, r)
	t.mu.Unlock()

	t.log(newEvent(email, EventSessionCompleted, sessionID, nil))
}

// SetLastVisited records the most recently opened session for the "continue
// where you left off" affordance. Unconditional overwrite.
func (t *Tracker) SetLastVisited(ctx context.Context, email string, sessionID int) {
	if !t.validSession(sessionID) {
		return
	}

	t.mu.Lock()
	r := t.record(ctx, email)
	r.LastVisited = sessionID
	t.save(ctx, email, r)
	t.mu.Unlock()

	t.log(newEvent(email, EventSessionVisited, sessionID, nil))
}

// eligible reports whether the session's own gating facts are satisfied:
// latest quiz score at or above passing AND scenario viewed.
func eligible(r *Record, sessionID int) bool {
	score, attempted := r.QuizScores[sessionID]
	return attempted && score >= PassingScore && r.ScenariosViewed[sessionID]
}

// IsSessionUnlocked reports whether the identity may open the session.
// Session 1 is always unlocked; session n requires session n-1's gating
// facts; admins bypass gating entirely. Always evaluated against current
// data, so clearing an upstream quiz score re-locks downstream sessions.
func (t *Tracker) IsSessionUnlocked(ctx context.Context, ident identity.Identity, sessionID int) bool {
	if !t.validSession(sessionID) {
		return false
	}
	if sessionID == 1 || ident.IsAdmin {
		return true
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return eligible(t.record(ctx, ident.Email), sessionID-1)
}

// IsEligibleForCompletion reports whether the session's own quiz and
// scenario requirements are met.
func (t *Tracker) IsEligibleForCompletion(ctx context.Context, email string, sessionID int) bool {
	if !t.validSession(sessionID) {
		return false
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return eligible(t.record(ctx, email), sessionID)
}

// IsSessionComplete reports whether the session was explicitly completed.
func (t *Tracker) IsSessionComplete(ctx context.Context, email string, sessionID int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.record(ctx, email).isComplete(sessionID)
}

// State derives the session's display state for an identity.
func (t *Tracker) State(ctx context.Context, ident identity.Identity, sessionID int) SessionState {
	if !t.validSession(sessionID) {
		return StateLocked
	}

	t.mu.Lock()
	r := t.record(ctx, ident.Email)
	complete := r.isComplete(sessionID)
	own := eligible(r, sessionID)
	unlocked := sessionID == 1 || ident.IsAdmin || eligible(r, sessionID-1)
	t.mu.Unlock()

	switch {
	case complete:
		return StateComplete
	case !unlocked:
		return StateLocked
	case own:
		return StateEligible
	default:
		return StateInProgress
	}
}

// OverallProgress returns the rounded completion percentage.
func (t *Tracker) OverallProgress(ctx context.Context, email string) int {
	t.mu.Lock()
	completed := len(t.record(ctx, email).CompletedSessions)
	t.mu.Unlock()

	return int(math.Round(100 * float64(completed) / float64(t.sessionCount)))
}
