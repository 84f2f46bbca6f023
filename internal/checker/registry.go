package checker

import (
	"github.com/wangyue6761/CodeReview/internal/task"
)

// Registry maps risk categories to the ordered checker set that will run
// for tasks of that category. Registration order is execution order.
type Registry struct {
	byCategory map[task.Category][]Checker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byCategory: make(map[task.Category][]Checker)}
}

// Register appends a checker for one category.
func (r *Registry) Register(cat task.Category, c Checker) {
	r.byCategory[cat] = append(r.byCategory[cat], c)
}

// RegisterAll appends a checker for every category.
func (r *Registry) RegisterAll(c Checker) {
	for _, cat := range task.Categories() {
		r.Register(cat, c)
	}
}

// For returns the checkers for a category in registration order. The
// returned slice is shared; callers must not mutate it.
func (r *Registry) For(cat task.Category) []Checker {
	return r.byCategory[cat]
}

// Empty reports whether no checker is registered for the category.
func (r *Registry) Empty(cat task.Category) bool {
	return len(r.byCategory[cat]) == 0
}
