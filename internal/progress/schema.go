package progress

import (
	"github.com/xeipuuv/gojsonschema"
)

// recordSchema guards the tracker against malformed persisted documents.
// Anything that fails validation degrades to the empty record instead of
// poisoning the in-memory state.
const recordSchema = `{
  "type": "object",
  "properties": {
    "completedSessions": {
      "type": "array",
      "items": { "type": "integer" }
    },
    "quizScores": {
      "type": "object",
      "additionalProperties": { "type": "integer", "minimum": 0, "maximum": 100 }
    },
    "scenariosViewed": {
      "type": "object",
      "additionalProperties": { "type": "boolean" }
    },
    "checklistItems": {
      "type": "object",
      "additionalProperties": { "type": "boolean" }
    },
    "flashcardsViewed": {
      "type": "object",
      "additionalProperties": { "type": "boolean" }
    },
    "lastVisited": { "type": "integer", "minimum": 1 }
  },
  "additionalProperties": false
}`

var recordSchemaLoader = gojsonschema.NewStringLoader(recordSchema)

// validRecordDocument reports whether raw is a structurally valid progress
// document.
func validRecordDocument(raw []byte) bool {
	result, err := gojsonschema.Validate(recordSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return false
	}
	return result.Valid()
}
