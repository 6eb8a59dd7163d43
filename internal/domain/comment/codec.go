package comment

import (
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
)

var (
	documentSchema = entity.MustCompileSchema("comment.json", `{
  "type": "object",
  "properties": {
    "taskId": {"type": "string", "minLength": 1},
    "parentId": {"type": ["string", "null"], "minLength": 1},
    "text": {"type": "string", "minLength": 1, "maxLength": 10000, "pattern": "\\S"},
    "authorName": {"type": "string"}
  },
  "required": ["taskId", "text"],
  "additionalProperties": false
}`)
	patchSchema = entity.MustCompileSchema("comment-patch.json", `{
  "type": "object",
  "properties": {
    "text": {"type": "string", "minLength": 1, "maxLength": 10000, "pattern": "\\S"}
  },
  "additionalProperties": false
}`)
)

// Codec maps comments to and from gateway documents.
type Codec struct{}

// Decode normalizes a raw comment document. An empty parentId is read as top-level.
func (Codec) Decode(doc gateway.Document) (Comment, []string) {
	d := entity.NewDecoder(doc.Body)
	c := Comment{
		Base:       d.Base(doc.ID),
		TaskID:     d.String("taskId"),
		ParentID:   d.OptionalString("parentId"),
		Text:       d.String("text"),
		AuthorName: d.String("authorName"),
	}
	if c.ParentID != nil && *c.ParentID == "" {
		c.ParentID = nil
	}
	c.Invalid = d.Invalid()
	return c, c.Invalid
}

// Encode validates a draft.
func (Codec) Encode(c Comment) (map[string]any, error) {
	body := map[string]any{
		"taskId":   c.TaskID,
		"text":     c.Text,
		"parentId": nil,
	}
	if c.IsReply() {
		body["parentId"] = *c.ParentID
	}
	if c.AuthorName != "" {
		body["authorName"] = c.AuthorName
	}
	if err := documentSchema.Validate(body); err != nil {
		return nil, err
	}
	return body, nil
}

// ValidatePatch allows editing the text only.
func (Codec) ValidatePatch(patch map[string]any) error {
	return patchSchema.Validate(patch)
}
