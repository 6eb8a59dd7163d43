package category

import (
	"github.com/rpggio/tasksync/internal/domain/entity"
	"github.com/rpggio/tasksync/internal/gateway"
)

const properties = `{
    "name": {"type": "string", "minLength": 1, "maxLength": 100, "pattern": "\\S"},
    "color": {"type": "string", "pattern": "^#[0-9a-fA-F]{6}$"}
  }`

var (
	documentSchema = entity.MustCompileSchema("category.json", `{
  "type": "object",
  "properties": `+properties+`,
  "required": ["name", "color"],
  "additionalProperties": false
}`)
	patchSchema = entity.MustCompileSchema("category-patch.json", `{
  "type": "object",
  "properties": `+properties+`,
  "additionalProperties": false
}`)
)

// Codec maps categories to and from gateway documents.
type Codec struct{}

// Decode normalizes a raw category document. A missing color gets the default.
func (Codec) Decode(doc gateway.Document) (Category, []string) {
	d := entity.NewDecoder(doc.Body)
	c := Category{
		Base:  d.Base(doc.ID),
		Name:  d.String("name"),
		Color: d.String("color"),
	}
	if c.Color == "" {
		c.Color = DefaultColor
	}
	c.Invalid = d.Invalid()
	return c, c.Invalid
}

// Encode validates a draft.
func (Codec) Encode(c Category) (map[string]any, error) {
	color := c.Color
	if color == "" {
		color = DefaultColor
	}
	body := map[string]any{"name": c.Name, "color": color}
	if err := documentSchema.Validate(body); err != nil {
		return nil, err
	}
	return body, nil
}

// ValidatePatch checks a partial category body.
func (Codec) ValidatePatch(patch map[string]any) error {
	return patchSchema.Validate(patch)
}
