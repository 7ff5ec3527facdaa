package content_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nextpv/bd-academy/internal/content"
)

func TestCatalog_LoadSessions(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if catalog.SessionCount() != 2 {
		t.Errorf("SessionCount() = %d, want 2", catalog.SessionCount())
	}

	sessions := catalog.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("Sessions() = %d entries, want 2", len(sessions))
	}
	if sessions[0].ID != 1 || sessions[1].ID != 2 {
		t.Errorf("Sessions() order = [%d %d], want [1 2]", sessions[0].ID, sessions[1].ID)
	}
}

func TestCatalog_Session(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	s, found := catalog.Session(1)
	if !found {
		t.Fatal("Session(1) not found")
	}
	if s.Title != "Discovery First" {
		t.Errorf("Title = %q, want \"Discovery First\"", s.Title)
	}
	if s.Duration != 90 {
		t.Errorf("Duration = %d, want 90", s.Duration)
	}
	if len(s.Sections) != 1 {
		t.Errorf("Sections = %d, want 1", len(s.Sections))
	}
	if len(s.Checklist) != 2 {
		t.Errorf("Checklist = %d, want 2", len(s.Checklist))
	}
}

func TestCatalog_Session_NotFound(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	if _, found := catalog.Session(99); found {
		t.Error("Session(99) should not be found")
	}
}

func TestCatalog_Quiz(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	quiz := catalog.Quiz(1)
	if len(quiz) != 2 {
		t.Fatalf("Quiz(1) = %d questions, want 2", len(quiz))
	}
	if quiz[0].SessionID != 1 {
		t.Errorf("SessionID = %d, want 1 (derived from session file)", quiz[0].SessionID)
	}
	if quiz[0].CorrectIndex != 1 {
		t.Errorf("CorrectIndex = %d, want 1", quiz[0].CorrectIndex)
	}

	q, found := catalog.Question("s1-q2")
	if !found {
		t.Fatal("Question(s1-q2) not found")
	}
	if q.SessionID != 1 {
		t.Errorf("Question SessionID = %d, want 1", q.SessionID)
	}
}

func TestCatalog_Scenario(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	sc, found := catalog.Scenario(1)
	if !found {
		t.Fatal("Scenario(1) not found")
	}
	if sc.SessionID != 1 {
		t.Errorf("SessionID = %d, want 1", sc.SessionID)
	}
	if len(sc.Options) != 2 {
		t.Fatalf("Options = %d, want 2", len(sc.Options))
	}
	if !sc.Options[1].Ideal {
		t.Error("Options[1].Ideal = false, want true")
	}
}

func TestCatalog_Decks(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	decks := catalog.Decks(1)
	if len(decks) != 1 {
		t.Fatalf("Decks(1) = %d, want 1", len(decks))
	}
	if len(decks[0].Cards) != 2 {
		t.Errorf("Cards = %d, want 2", len(decks[0].Cards))
	}
}

func TestCatalog_Reference(t *testing.T) {
	dir := setupTestContent(t)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}

	frameworks := catalog.Frameworks()
	if len(frameworks) != 1 {
		t.Fatalf("Frameworks() = %d, want 1", len(frameworks))
	}
	if frameworks[0].Acronym != "SPIN" {
		t.Errorf("Acronym = %q, want SPIN", frameworks[0].Acronym)
	}

	tree := catalog.DecisionTree()
	if len(tree) != 1 {
		t.Errorf("DecisionTree() = %d nodes, want 1", len(tree))
	}
}

func TestCatalog_SkipsUnrelatedYAML(t *testing.T) {
	dir := setupTestContent(t)

	os.WriteFile(filepath.Join(dir, "notes.yaml"), []byte("just: notes\n"), 0o644)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if catalog.SessionCount() != 2 {
		t.Errorf("SessionCount() = %d, want 2 (unrelated YAML skipped)", catalog.SessionCount())
	}
}

func TestCatalog_EmptyDir(t *testing.T) {
	catalog, err := content.NewCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("NewCatalog() error = %v", err)
	}
	if catalog.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d, want 0 for empty dir", catalog.SessionCount())
	}
}

func TestCatalog_InvalidSessionYAML(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "broken.session.yaml"), []byte("{{nope"), 0o644)

	catalog, err := content.NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog() error = %v (invalid files should be skipped)", err)
	}
	if catalog.SessionCount() != 0 {
		t.Errorf("SessionCount() = %d, want 0", catalog.SessionCount())
	}
}

func TestEditKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"session title", content.SessionTitleKey(3), "session.3.title"},
		{"session objective", content.SessionObjectiveKey(1), "session.1.objective"},
		{"section heading", content.SectionHeadingKey("s1-intro"), "section.s1-intro.heading"},
		{"section content", content.SectionContentKey("s1-intro"), "section.s1-intro.content"},
		{"question", content.QuestionKey("s3-q2"), "quiz.s3-q2.question"},
		{"question option", content.QuestionOptionKey("s3-q2", 0), "quiz.s3-q2.option.0"},
		{"explanation", content.QuestionExplanationKey("s3-q2"), "quiz.s3-q2.explanation"},
		{"scenario", content.ScenarioSituationKey("scenario-1"), "scenario.scenario-1.situation"},
		{"card front", content.CardFrontKey("spin-s"), "card.spin-s.front"},
		{"card back", content.CardBackKey("spin-s"), "card.spin-s.back"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("key = %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func setupTestContent(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	os.WriteFile(filepath.Join(dir, "01.session.yaml"), []byte(`
session:
  id: 1
  title: "Discovery First"
  duration: 90
  prerequisite: "None"
  objective: "Run a value-first conversation without feature-dumping."
  sections:
    - id: s1-intro
      type: text
      heading: "What BD Is Responsible For"
      content: "Sales is about qualified progression."
  mistakes:
    - "Opening with a feature dump."
  resources:
    - title: "Sales Process Guide v2, Chapter 1"
      description: "Principles of Selling"
  checklist:
    - key: s1-check-1
      text: "Write three discovery openers."
    - key: s1-check-2
      text: "Record one practice call."
quiz:
  - id: s1-q1
    question: "What comes first?"
    options: ["Tell", "Ask", "Pitch"]
    correct_index: 1
    explanation: "Ask first. Teach second. Tell third."
  - id: s1-q2
    question: "Which is trust language?"
    options: ["We are the best", "Zero critical findings in three years"]
    correct_index: 1
    explanation: "Trust language is specific and measurable."
scenario:
  id: scenario-1
  title: "The Feature-Dump Opening"
  situation: "First call with a Head of PV. You open with?"
  options:
    - text: "List every service."
      ideal: false
      feedback: "Feature-dump trap."
    - text: "Ask about their current PV setup."
      ideal: true
      feedback: "Discovery-first mindset."
decks:
  - id: spin-deck
    title: "SPIN Questions"
    description: "The four SPIN question types."
    cards:
      - id: spin-s
        front: "S"
        back: "Situation questions"
      - id: spin-p
        front: "P"
        back: "Problem questions"
`), 0o644)

	os.WriteFile(filepath.Join(dir, "02.session.yaml"), []byte(`
session:
  id: 2
  title: "Buyer Journey"
  duration: 90
  prerequisite: "Session 1"
  objective: "Map the buying phases."
quiz:
  - id: s2-q1
    question: "How many phases?"
    options: ["Two", "Three"]
    correct_index: 1
    explanation: "Awareness, consideration, decision."
scenario:
  id: scenario-2
  title: "Phase Misread"
  situation: "Prospect is comparing vendors."
  options:
    - text: "Explain everything."
      ideal: false
      feedback: "Wrong phase."
    - text: "Discover evaluation criteria."
      ideal: true
      feedback: "Matches consideration phase."
`), 0o644)

	os.WriteFile(filepath.Join(dir, "reference.yaml"), []byte(`
frameworks:
  - id: spin
    title: "SPIN Selling"
    acronym: "SPIN"
    tagline: "Question sequence for discovery."
    steps:
      - label: "Situation"
        description: "Understand the current state."
      - label: "Problem"
        description: "Surface pain."
    when_to_use: "Every discovery conversation."
decision_tree:
  - id: root
    question: "Does the prospect have budget?"
    options:
      - label: "Yes"
        result: "Qualify further"
      - label: "No"
        action: "Nurture"
`), 0o644)

	return dir
}
