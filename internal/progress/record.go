// Package progress owns per-learner course progress and the session unlock
// state machine. All derived predicates (unlocked, eligible, complete) are
// recomputed from the raw record on every read; nothing derived is stored.
package progress

import "slices"

// Record is the persisted course progress for one learner, keyed by
// normalized email at "progress:<email>".
//
// QuizScores holds the latest score per session; absence means "not
// attempted" and is distinct from a failing score of 0.
type Record struct {
	CompletedSessions []int           `json:"completedSessions"`
	QuizScores        map[int]int     `json:"quizScores"`
	ScenariosViewed   map[int]bool    `json:"scenariosViewed"`
	ChecklistItems    map[string]bool `json:"checklistItems"`
	FlashcardsViewed  map[string]bool `json:"flashcardsViewed"`
	LastVisited       int             `json:"lastVisited"`
}

// emptyRecord is the state of a learner who has never been seen.
func emptyRecord() *Record {
	return &Record{
		CompletedSessions: []int{},
		QuizScores:        map[int]int{},
		ScenariosViewed:   map[int]bool{},
		ChecklistItems:    map[string]bool{},
		FlashcardsViewed:  map[string]bool{},
		LastVisited:       1,
	}
}

// normalize repairs a record loaded from storage so partial documents behave
// like fresh ones.
func (r *Record) normalize() {
	if r.CompletedSessions == nil {
		r.CompletedSessions = []int{}
	}
	if r.QuizScores == nil {
		r.QuizScores = map[int]int{}
	}
	if r.ScenariosViewed == nil {
		r.ScenariosViewed = map[int]bool{}
	}
	if r.ChecklistItems == nil {
		r.ChecklistItems = map[string]bool{}
	}
	if r.FlashcardsViewed == nil {
		r.FlashcardsViewed = map[string]bool{}
	}
	if r.LastVisited < 1 {
		r.LastVisited = 1
	}
}

// clone returns a deep copy suitable for handing to callers.
func (r *Record) clone() Record {
	out := Record{
		CompletedSessions: slices.Clone(r.CompletedSessions),
		QuizScores:        make(map[int]int, len(r.QuizScores)),
		ScenariosViewed:   make(map[int]bool, len(r.ScenariosViewed)),
		ChecklistItems:    make(map[string]bool, len(r.ChecklistItems)),
		FlashcardsViewed:  make(map[string]bool, len(r.FlashcardsViewed)),
		LastVisited:       r.LastVisited,
	}
	for k, v := range r.QuizScores {
		out.QuizScores[k] = v
	}
	for k, v := range r.ScenariosViewed {
		out.ScenariosViewed[k] = v
	}
	for k, v := range r.ChecklistItems {
		out.ChecklistItems[k] = v
	}
	for k, v := range r.FlashcardsViewed {
		out.FlashcardsViewed[k] = v
	}
	return out
}

func (r *Record) isComplete(sessionID int) bool {
	return slices.Contains(r.CompletedSessions, sessionID)
}
