package task

import (
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
)

const properties = `{
    "title": {"type": "string", "minLength": 1, "maxLength": 500, "pattern": "\\S"},
    "description": {"type": "string", "maxLength": 20000},
    "status": {"enum": ["not-started", "in-progress", "done"]},
    "importance": {"enum": ["low", "medium", "high"]},
    "projectId": {"type": "string"},
    "categoryId": {"type": "string"},
    "dueDate": {"oneOf": [{"type": "null"}, {"$ref": "#/$defs/timestamp"}]},
    "members": {"type": "array", "items": {"type": "string", "minLength": 1}, "uniqueItems": true},
    "calendarEventId": {"type": "string"}
  }`

const defs = `{
    "timestamp": {
      "type": "object",
      "properties": {
        "seconds": {"type": "integer"},
        "nanoseconds": {"type": "integer", "minimum": 0, "maximum": 999999999}
      },
      "required": ["seconds"],
      "additionalProperties": false
    }
  }`

var (
	documentSchema = entity.MustCompileSchema("task.json", `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "$defs": `+defs+`,
  "properties": `+properties+`,
  "required": ["title", "status", "importance"],
  "additionalProperties": false
}`)
	patchSchema = entity.MustCompileSchema("task-patch.json", `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "$defs": `+defs+`,
  "properties": `+properties+`,
  "additionalProperties": false
}`)
)

var (
	statusValues     = []string{string(entity.StatusNotStarted), string(entity.StatusInProgress), string(entity.StatusDone)}
	importanceValues = []string{string(ImportanceLow), string(ImportanceMedium), string(ImportanceHigh)}
)

// Codec maps tasks to and from gateway documents.
type Codec struct{}

// Decode normalizes a raw task document. Missing status and importance default to
// not-started and medium.
func (Codec) Decode(doc gateway.Document) (Task, []string) {
	d := entity.NewDecoder(doc.Body)
	t := Task{
		Base:            d.Base(doc.ID),
		Title:           d.String("title"),
		Description:     d.String("description"),
		Status:          entity.Status(d.Enum("status", statusValues, string(entity.StatusNotStarted))),
		Importance:      Importance(d.Enum("importance", importanceValues, string(ImportanceMedium))),
		ProjectID:       d.String("projectId"),
		CategoryID:      d.String("categoryId"),
		DueDate:         d.OptionalTime("dueDate"),
		Members:         d.Strings("members"),
		CalendarEventID: d.String("calendarEventId"),
	}
	t.Invalid = d.Invalid()
	return t, t.Invalid
}

// Encode validates a draft and fills defaults.
func (Codec) Encode(t Task) (map[string]any, error) {
	status := t.Status
	if status == "" {
		status = entity.StatusNotStarted
	}
	importance := t.Importance
	if importance == "" {
		importance = ImportanceMedium
	}
	body := map[string]any{
		"title":      t.Title,
		"status":     string(status),
		"importance": string(importance),
	}
	if t.Description != "" {
		body["description"] = t.Description
	}
	if t.ProjectID != "" {
		body["projectId"] = t.ProjectID
	}
	if t.CategoryID != "" {
		body["categoryId"] = t.CategoryID
	}
	if t.DueDate != nil {
		body["dueDate"] = entity.TimeValue(t.DueDate)
	}
	if len(t.Members) > 0 {
		body["members"] = t.Members
	}
	if t.CalendarEventID != "" {
		body["calendarEventId"] = t.CalendarEventID
	}
	if err := documentSchema.Validate(body); err != nil {
		return nil, err
	}
	return body, nil
}

// ValidatePatch checks a partial task body.
func (Codec) ValidatePatch(patch map[string]any) error {
	return patchSchema.Validate(patch)
}
