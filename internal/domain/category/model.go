// Package category implements task categories.
package category

import "github.com/rpggio/tasksync/internal/domain/entity"

// Collection is the gateway collection categories live in.
const Collection = "categories"

// DefaultColor is used when a category is created without one.
const DefaultColor = "#9e9e9e"

// Category labels tasks.
type Category struct {
	entity.Base
	Name  string `json:"name"`
	Color string `json:"color"`
}
