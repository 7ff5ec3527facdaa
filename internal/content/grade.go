package content

import "math"

// QuestionResult is the graded outcome for a single question.
type QuestionResult struct {
	QuestionID   string `json:"questionId"`
	Selected     int    `json:"selected"`
	CorrectIndex int    `json:"correctIndex"`
	Correct      bool   `json:"correct"`
	Explanation  string `json:"explanation"`
}

// QuizResult is the graded outcome for a whole quiz attempt.
type QuizResult struct {
	Score     int              `json:"score"` // rounded percentage, 0-100
	Correct   int              `json:"correct"`
	Total     int              `json:"total"`
	Questions []QuestionResult `json:"questions"`
}

// GradeQuiz scores an attempt against the question set. answers maps question
// id to the selected option index; missing or out-of-range selections count
// as wrong. An empty question set scores 0.
func GradeQuiz(questions []QuizQuestion, answers map[string]int) QuizResult {
	result := QuizResult{
		Total:     len(questions),
		Questions: make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		selected, answered := answers[q.ID]
		if !answered || selected < 0 || selected >= len(q.Options) {
			selected = -1
		}

		correct := selected == q.CorrectIndex
		if correct {
			result.Correct++
		}
		result.Questions = append(result.Questions, QuestionResult{
			QuestionID:   q.ID,
			Selected:     selected,
			CorrectIndex: q.CorrectIndex,
			Correct:      correct,
			Explanation:  q.Explanation,
		})
	}

	if result.Total > 0 {
		result.Score = int(math.Round(100 * float64(result.Correct) / float64(result.Total)))
	}
	return result
}
