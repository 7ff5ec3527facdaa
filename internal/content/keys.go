package content

import "fmt"

// Edit keys are the stable identifiers the override layer uses to shadow a
// piece of static text. Renderers pass the key together with the static
// default through edits.Store.Resolve.

// SessionTitleKey returns the edit key for a session title.
func SessionTitleKey(sessionID int) string {
	return fmt.Sprintf("session.%d.title", sessionID)
}

// SessionObjectiveKey returns the edit key for a session objective.
func SessionObjectiveKey(sessionID int) string {
	return fmt.Sprintf("session.%d.objective", sessionID)
}

// SectionHeadingKey returns the edit key for a section heading.
func SectionHeadingKey(sectionID string) string {
	return fmt.Sprintf("section.%s.heading", sectionID)
}

// SectionContentKey returns the edit key for a section body.
func SectionContentKey(sectionID string) string {
	return fmt.Sprintf("section.%s.content", sectionID)
}

// QuestionKey returns the edit key for a quiz question prompt.
func QuestionKey(questionID string) string {
	return fmt.Sprintf("quiz.%s.question", questionID)
}

// QuestionOptionKey returns the edit key for one quiz option.
func QuestionOptionKey(questionID string, optionIndex int) string {
	return fmt.Sprintf("quiz.%s.option.%d", questionID, optionIndex)
}

// QuestionExplanationKey returns the edit key for a quiz explanation.
func QuestionExplanationKey(questionID string) string {
	return fmt.Sprintf("quiz.%s.explanation", questionID)
}

// ScenarioSituationKey returns the edit key for a scenario situation text.
func ScenarioSituationKey(scenarioID string) string {
	return fmt.Sprintf("scenario.%s.situation", scenarioID)
}

// CardFrontKey returns the edit key for a flashcard front.
func CardFrontKey(cardID string) string {
	return fmt.Sprintf("card.%s.front", cardID)
}

// CardBackKey returns the edit key for a flashcard back.
func CardBackKey(cardID string) string {
	return fmt.Sprintf("card.%s.back", cardID)
}
