package project

import (
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
)

const properties = `{
    "name": {"type": "string", "minLength": 1, "maxLength": 200, "pattern": "\\S"},
    "description": {"type": "string", "maxLength": 20000},
    "status": {"enum": ["not-started", "in-progress", "done"]},
    "members": {"type": "array", "items": {"type": "string", "minLength": 1}, "uniqueItems": true},
    "dueDate": {"oneOf": [{"type": "null"}, {"$ref": "#/$defs/timestamp"}]}
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
	documentSchema = entity.MustCompileSchema("project.json", `{
  "type": "object",
  "$defs": `+defs+`,
  "properties": `+properties+`,
  "required": ["name", "status"],
  "additionalProperties": false
}`)
	patchSchema = entity.MustCompileSchema("project-patch.json", `{
  "type": "object",
  "$defs": `+defs+`,
  "properties": `+properties+`,
  "additionalProperties": false
}`)
)

var statusValues = []string{string(entity.StatusNotStarted), string(entity.StatusInProgress), string(entity.StatusDone)}

// Codec maps projects to and from gateway documents.
type Codec struct{}

// Decode normalizes a raw project document.
func (Codec) Decode(doc gateway.Document) (Project, []string) {
	d := entity.NewDecoder(doc.Body)
	p := Project{
		Base:        d.Base(doc.ID),
		Name:        d.String("name"),
		Description: d.String("description"),
		Status:      entity.Status(d.Enum("status", statusValues, string(entity.StatusNotStarted))),
		Members:     d.Strings("members"),
		Tasks:       d.Strings("tasks"),
		DueDate:     d.OptionalTime("dueDate"),
	}
	p.Invalid = d.Invalid()
	return p, p.Invalid
}

// Encode validates a draft. The tasks hint is never written.
func (Codec) Encode(p Project) (map[string]any, error) {
	status := p.Status
	if status == "" {
		status = entity.StatusNotStarted
	}
	body := map[string]any{
		"name":   p.Name,
		"status": string(status),
	}
	if p.Description != "" {
		body["description"] = p.Description
	}
	if len(p.Members) > 0 {
		body["members"] = p.Members
	}
	if p.DueDate != nil {
		body["dueDate"] = entity.TimeValue(p.DueDate)
	}
	if err := documentSchema.Validate(body); err != nil {
		return nil, err
	}
	return body, nil
}

// ValidatePatch checks a partial project body.
func (Codec) ValidatePatch(patch map[string]any) error {
	if _, ok := patch["tasks"]; ok {
		return ErrTasksReadOnly
	}
	return patchSchema.Validate(patch)
}
