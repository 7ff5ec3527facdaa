package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/nextpv/bd-academy/internal/content"
	"github.com/nextpv/bd-academy/internal/edits"
	"github.com/nextpv/bd-academy/internal/identity"
	"github.com/nextpv/bd-academy/internal/progress"
	"github.com/nextpv/bd-academy/internal/report"
)

// identityHeader carries the caller's email on API requests. It is
// self-asserted: the app runs inside the company and trusts its users, the
// header only selects whose progress record to operate on.
const identityHeader = "X-Academy-Email"

type server struct {
	identities *identity.Service
	tracker    *progress.Tracker
	catalog    *content.Catalog
	edits      *edits.Store
	reports    *report.Writer
}

func newServer(identities *identity.Service, tracker *progress.Tracker, catalog *content.Catalog, overrides *edits.Store, reports *report.Writer) *server {
	return &server{
		identities: identities,
		tracker:    tracker,
		catalog:    catalog,
		edits:      overrides,
		reports:    reports,
	}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /readyz", handleReadyz)

	mux.HandleFunc("POST /api/signin", s.handleSignIn)
	mux.HandleFunc("POST /api/signout", s.handleSignOut)
	mux.HandleFunc("GET /api/me", s.handleMe)

	mux.HandleFunc("GET /api/sessions", s.handleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSession)
	mux.HandleFunc("POST /api/sessions/{id}/quiz", s.handleQuizSubmit)
	mux.HandleFunc("DELETE /api/sessions/{id}/quiz", s.handleQuizRetry)
	mux.HandleFunc("POST /api/sessions/{id}/scenario", s.handleScenario)
	mux.HandleFunc("POST /api/sessions/{id}/complete", s.handleComplete)
	mux.HandleFunc("POST /api/checklist/{key}/toggle", s.handleChecklistToggle)
	mux.HandleFunc("POST /api/flashcards/{id}/viewed", s.handleFlashcardViewed)
	mux.HandleFunc("POST /api/visited/{id}", s.handleVisited)
	mux.HandleFunc("GET /api/progress", s.handleProgress)

	mux.HandleFunc("POST /api/edits/{key}/propose", s.handleEditPropose)
	mux.HandleFunc("POST /api/edits/{key}/commit", s.handleEditCommit)
	mux.HandleFunc("POST /api/edits/{key}/cancel", s.handleEditCancel)
	mux.HandleFunc("POST /api/edits/clear", s.handleEditsClear)

	mux.HandleFunc("GET /api/report.xlsx", s.handleReport)

	return mux
}

// callerIdentity resolves the request's identity: the header when present,
// otherwise the persisted sign-in.
func (s *server) callerIdentity(r *http.Request) (identity.Identity, bool) {
	if email := r.Header.Get(identityHeader); email != "" {
		return s.identities.Resolver().Resolve(email)
	}
	return s.identities.Current()
}

func (s *server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ident, ok := s.identities.SignIn(r.Context(), req.Email)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "not a valid email address")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

func (s *server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.identities.SignOut(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, ident)
}

// sessionSummary is the list-view shape of a session.
type sessionSummary struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	State    string `json:"state"`
	Unlocked bool   `json:"unlocked"`
	Complete bool   `json:"complete"`
}

func (s *server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx := r.Context()
	sessions := s.catalog.Sessions()
	out := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, sessionSummary{
			ID:       session.ID,
			Title:    s.edits.Resolve(content.SessionTitleKey(session.ID), session.Title),
			Duration: session.Duration,
			State:    string(s.tracker.State(ctx, ident, session.ID)),
			Unlocked: s.tracker.IsSessionUnlocked(ctx, ident, session.ID),
			Complete: s.tracker.IsSessionComplete(ctx, ident.Email, session.ID),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// questionView is a quiz question as shown to learners: the answer key and
// explanation stay on the server until the attempt is graded.
type questionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// scenarioView hides each option's ideal flag and feedback until the learner
// submits a choice.
type scenarioView struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Situation string   `json:"situation"`
	Options   []string `json:"options"`
}

type sessionView struct {
	content.Session
	Quiz     []questionView          `json:"quiz"`
	Scenario *scenarioView           `json:"scenario,omitempty"`
	Decks    []content.FlashcardDeck `json:"decks,omitempty"`
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	session, ok := s.catalog.Session(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	if !s.tracker.IsSessionUnlocked(r.Context(), ident, id) {
		writeError(w, http.StatusForbidden, "session is locked")
		return
	}

	view := sessionView{Session: s.resolveSession(session)}

	for _, q := range s.catalog.Quiz(id) {
		qv := questionView{
			ID:       q.ID,
			Question: s.edits.Resolve(content.QuestionKey(q.ID), q.Question),
			Options:  make([]string, len(q.Options)),
		}
		for i, opt := range q.Options {
			qv.Options[i] = s.edits.Resolve(content.QuestionOptionKey(q.ID, i), opt)
		}
		view.Quiz = append(view.Quiz, qv)
	}

	if scenario, ok := s.catalog.Scenario(id); ok {
		sv := scenarioView{
			ID:        scenario.ID,
			Title:     scenario.Title,
			Situation: s.edits.Resolve(content.ScenarioSituationKey(scenario.ID), scenario.Situation),
			Options:   make([]string, len(scenario.Options)),
		}
		for i, opt := range scenario.Options {
			sv.Options[i] = opt.Text
		}
		view.Scenario = &sv
	}

	for _, deck := range s.catalog.Decks(id) {
		deck.Cards = slices.Clone(deck.Cards)
		for i, card := range deck.Cards {
			deck.Cards[i].Front = s.edits.Resolve(content.CardFrontKey(card.ID), card.Front)
			deck.Cards[i].Back = s.edits.Resolve(content.CardBackKey(card.ID), card.Back)
		}
		view.Decks = append(view.Decks, deck)
	}

	writeJSON(w, http.StatusOK, view)
}

// resolveSession applies content overrides to a session's display text.
// The catalog hands out structs whose slices alias its cache, so the
// sections are cloned before rewriting: the static text must stay intact
// for future fallbacks and for concurrent readers.
func (s *server) resolveSession(session content.Session) content.Session {
	session.Title = s.edits.Resolve(content.SessionTitleKey(session.ID), session.Title)
	session.Objective = s.edits.Resolve(content.SessionObjectiveKey(session.ID), session.Objective)
	session.Sections = slices.Clone(session.Sections)
	for i, section := range session.Sections {
		session.Sections[i].Heading = s.edits.Resolve(content.SectionHeadingKey(section.ID), section.Heading)
		session.Sections[i].Content = s.edits.Resolve(content.SectionContentKey(section.ID), section.Content)
	}
	return session
}

func (s *server) handleQuizSubmit(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req struct {
		Score   *int           `json:"score"`
		Answers map[string]int `json:"answers"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()

	// Graded path: the server scores the attempt against the question bank.
	if req.Answers != nil {
		questions := s.catalog.Quiz(id)
		if len(questions) == 0 {
			writeError(w, http.StatusNotFound, "session has no quiz")
			return
		}
		result := content.GradeQuiz(questions, req.Answers)
		s.tracker.SetQuizScore(ctx, ident.Email, id, result.Score)
		writeJSON(w, http.StatusOK, result)
		return
	}

	if req.Score == nil {
		writeError(w, http.StatusUnprocessableEntity, "score or answers required")
		return
	}
	s.tracker.SetQuizScore(ctx, ident.Email, id, *req.Score)
	snap := s.tracker.Snapshot(ctx, ident.Email)
	writeJSON(w, http.StatusOK, map[string]int{"score": snap.QuizScores[id]})
}

func (s *server) handleQuizRetry(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	s.tracker.ClearQuizScore(r.Context(), ident.Email, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleScenario(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	scenario, ok := s.catalog.Scenario(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session has no scenario")
		return
	}

	var req struct {
		Option int `json:"option"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Option < 0 || req.Option >= len(scenario.Options) {
		writeError(w, http.StatusUnprocessableEntity, "option out of range")
		return
	}

	// Any submitted choice counts as viewing; correctness is feedback only.
	s.tracker.MarkScenarioViewed(r.Context(), ident.Email, id)

	chosen := scenario.Options[req.Option]
	writeJSON(w, http.StatusOK, map[string]any{
		"ideal":    chosen.Ideal,
		"feedback": chosen.Feedback,
	})
}

func (s *server) handleComplete(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	ctx := r.Context()
	s.tracker.MarkSessionComplete(ctx, ident.Email, id)
	writeJSON(w, http.StatusOK, map[string]any{
		"complete": s.tracker.IsSessionComplete(ctx, ident.Email, id),
		"overall":  s.tracker.OverallProgress(ctx, ident.Email),
	})
}

func (s *server) handleChecklistToggle(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	s.tracker.ToggleChecklistItem(r.Context(), ident.Email, r.PathValue("key"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleFlashcardViewed(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	s.tracker.MarkFlashcardViewed(r.Context(), ident.Email, r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleVisited(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}
	s.tracker.SetLastVisited(r.Context(), ident.Email, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	ctx := r.Context()
	states := make(map[int]string, s.tracker.SessionCount())
	for id := 1; id <= s.tracker.SessionCount(); id++ {
		states[id] = string(s.tracker.State(ctx, ident, id))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"record":  s.tracker.Snapshot(ctx, ident.Email),
		"states":  states,
		"overall": s.tracker.OverallProgress(ctx, ident.Email),
	})
}

func (s *server) handleEditPropose(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}

	var req struct {
		Fallback string `json:"fallback"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	proposal, ok := s.edits.ProposeEdit(ident, r.PathValue("key"), req.Fallback)
	if !ok {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func (s *server) handleEditCommit(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if !ident.IsAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if !s.edits.CommitEdit(r.Context(), ident, r.PathValue("key"), req.Value) {
		writeError(w, http.StatusConflict, "no proposal open for this key")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleEditCancel(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if !ident.IsAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	s.edits.CancelEdit(ident, r.PathValue("key"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleEditsClear(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if !s.edits.ClearAll(r.Context(), ident) {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	ident, ok := s.callerIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "not signed in")
		return
	}
	if !ident.IsAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	// Admins can pull another learner's report via ?email=.
	email := ident.Email
	if q := r.URL.Query().Get("email"); q != "" {
		if resolved, ok := s.identities.Resolver().Resolve(q); ok {
			email = resolved.Email
		} else {
			writeError(w, http.StatusUnprocessableEntity, "not a valid email address")
			return
		}
	}

	// Render to a buffer first so a failed export is a clean 500 instead
	// of a truncated 200.
	var buf bytes.Buffer
	if err := s.reports.Write(r.Context(), &buf, email); err != nil {
		slog.Error("report export failed", "email", email, "error", err)
		writeError(w, http.StatusInternalServerError, "report export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.xlsx"`)
	w.Write(buf.Bytes())
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func handleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
