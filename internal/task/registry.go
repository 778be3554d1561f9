// Package task maintains the registry of predefined task cards that can spawn
// scripted chats.
package task

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Category groups task cards for display
type Category string

const (
	CategoryRecommended   Category = "recommended"
	CategoryOrderHelp     Category = "order-help"
	CategoryComplaints    Category = "complaints"
	CategoryProductSearch Category = "product-search"
	CategoryOther         Category = "other"
)

// Categories lists the fixed set of categories in display order
var Categories = []Category{
	CategoryRecommended,
	CategoryOrderHelp,
	CategoryComplaints,
	CategoryProductSearch,
	CategoryOther,
}

// Task is one card in the registry. Its title doubles as the key into the scripted
// walkthrough template table when the task spawns a chat.
type Task struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Icon      string    `json:"icon"`
	Platform  string    `json:"platform"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry is an owned, injectable task store with explicit lifecycle; consumers
// receive a reference rather than reaching into ambient global state.
type Registry struct {
	mu    sync.RWMutex
	tasks map[Category][]Task
	now   func() time.Time
}

type RegistryOption func(*Registry)

// WithRegistryClock overrides the registry's time source
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry with the fixed categories, all empty
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		tasks: map[Category][]Task{},
		now:   time.Now,
	}
	for _, cat := range Categories {
		r.tasks[cat] = []Task{}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add inserts a task into a category, assigning the next id and creation time.
// Ids increase across the whole registry, not per category.
func (r *Registry) Add(cat Category, t Task) Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxID := 0
	for _, tasks := range r.tasks {
		for _, existing := range tasks {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
	}
	t.ID = maxID + 1
	t.CreatedAt = r.now()
	r.tasks[cat] = append(r.tasks[cat], t)
	return t
}

// Update replaces the task with the same id in a category
func (r *Registry) Update(cat Category, t Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.tasks[cat] {
		if existing.ID == t.ID {
			r.tasks[cat][i] = t
			return nil
		}
	}
	return fmt.Errorf("no task %d in category %q", t.ID, cat)
}

// Remove deletes the task with the given id from a category. Removing an unknown
// id is a no-op.
func (r *Registry) Remove(cat Category, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks := r.tasks[cat]
	for i, existing := range tasks {
		if existing.ID == id {
			r.tasks[cat] = append(tasks[:i], tasks[i+1:]...)
			return
		}
	}
}

// ByCategory returns a copy of the tasks in a category
func (r *Registry) ByCategory(cat Category) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, len(r.tasks[cat]))
	copy(out, r.tasks[cat])
	return out
}

// Recent returns up to limit tasks across all categories, newest first. A limit of
// zero or less means the default of 5.
func (r *Registry) Recent(limit int) []Task {
	if limit <= 0 {
		limit = 5
	}

	r.mu.RLock()
	all := []Task{}
	for _, tasks := range r.tasks {
		all = append(all, tasks...)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}
