package content

// Section is one block of session body content.
type Section struct {
	ID          string `yaml:"id" json:"id"`
	Type        string `yaml:"type" json:"type"` // text, table, callout, framework, exercise
	Heading     string `yaml:"heading,omitempty" json:"heading,omitempty"`
	Content     string `yaml:"content,omitempty" json:"content,omitempty"`
	CalloutType string `yaml:"callout_type,omitempty" json:"calloutType,omitempty"` // warning, tip, info
	Table       *Table `yaml:"table,omitempty" json:"table,omitempty"`
}

// Table holds tabular section data.
type Table struct {
	Headers []string   `yaml:"headers" json:"headers"`
	Rows    [][]string `yaml:"rows" json:"rows"`
}

// Resource points at supporting reading for a session.
type Resource struct {
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
}

// ChecklistItem is a per-session practice task. Display-only: checklist
// completion never gates progression.
type ChecklistItem struct {
	Key  string `yaml:"key" json:"key"`
	Text string `yaml:"text" json:"text"`
}

// Session is one of the six curriculum sessions.
type Session struct {
	ID           int             `yaml:"id" json:"id"`
	Title        string          `yaml:"title" json:"title"`
	Duration     int             `yaml:"duration" json:"duration"` // minutes
	Prerequisite string          `yaml:"prerequisite" json:"prerequisite"`
	Objective    string          `yaml:"objective" json:"objective"`
	Sections     []Section       `yaml:"sections" json:"sections"`
	Mistakes     []string        `yaml:"mistakes" json:"mistakes"`
	Resources    []Resource      `yaml:"resources" json:"resources"`
	Checklist    []ChecklistItem `yaml:"checklist" json:"checklist"`
}

// QuizQuestion is a single-choice quiz question.
type QuizQuestion struct {
	ID           string   `yaml:"id" json:"id"`
	SessionID    int      `yaml:"-" json:"sessionId"`
	Question     string   `yaml:"question" json:"question"`
	Options      []string `yaml:"options" json:"options"`
	CorrectIndex int      `yaml:"correct_index" json:"correctIndex"`
	Explanation  string   `yaml:"explanation" json:"explanation"`
}

// ScenarioOption is one response choice in a practice scenario.
type ScenarioOption struct {
	Text     string `yaml:"text" json:"text"`
	Ideal    bool   `yaml:"ideal" json:"ideal"`
	Feedback string `yaml:"feedback" json:"feedback"`
}

// Scenario is the per-session practice exercise. Submitting any choice counts
// as viewing it; correctness is feedback, not a gate.
type Scenario struct {
	ID        string           `yaml:"id" json:"id"`
	SessionID int              `yaml:"-" json:"sessionId"`
	Title     string           `yaml:"title" json:"title"`
	Situation string           `yaml:"situation" json:"situation"`
	Options   []ScenarioOption `yaml:"options" json:"options"`
}

// Flashcard is one card in a deck.
type Flashcard struct {
	ID      string `yaml:"id" json:"id"`
	Front   string `yaml:"front" json:"front"`
	Back    string `yaml:"back" json:"back"`
	Example string `yaml:"example,omitempty" json:"example,omitempty"`
}

// FlashcardDeck groups flashcards for a session.
type FlashcardDeck struct {
	ID          string      `yaml:"id" json:"id"`
	SessionID   int         `yaml:"-" json:"sessionId"`
	Title       string      `yaml:"title" json:"title"`
	Description string      `yaml:"description" json:"description"`
	Cards       []Flashcard `yaml:"cards" json:"cards"`
}

// FrameworkStep is one step of a reference framework.
type FrameworkStep struct {
	Label       string `yaml:"label" json:"label"`
	Description string `yaml:"description" json:"description"`
	Example     string `yaml:"example,omitempty" json:"example,omitempty"`
}

// Framework is a reference-page selling framework (SPIN, FAB, LARA, BANT+).
type Framework struct {
	ID        string          `yaml:"id" json:"id"`
	Title     string          `yaml:"title" json:"title"`
	Acronym   string          `yaml:"acronym,omitempty" json:"acronym,omitempty"`
	Tagline   string          `yaml:"tagline" json:"tagline"`
	Steps     []FrameworkStep `yaml:"steps" json:"steps"`
	WhenToUse string          `yaml:"when_to_use" json:"whenToUse"`
}

// DecisionOption is one branch out of a decision-tree node.
type DecisionOption struct {
	Label  string `yaml:"label" json:"label"`
	NextID string `yaml:"next_id,omitempty" json:"nextId,omitempty"`
	Result string `yaml:"result,omitempty" json:"result,omitempty"`
	Action string `yaml:"action,omitempty" json:"action,omitempty"`
}

// DecisionNode is one node of the reference-page decision tree.
type DecisionNode struct {
	ID       string           `yaml:"id" json:"id"`
	Question string           `yaml:"question" json:"question"`
	Options  []DecisionOption `yaml:"options" json:"options"`
}
