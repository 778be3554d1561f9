package task

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (fc *fakeClock) Now() time.Time {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.t = fc.t.Add(time.Minute)
	return fc.t
}

func newTestRegistry() *Registry {
	fc := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	return NewRegistry(WithRegistryClock(fc.Now))
}

func TestAdd_AssignsIncrementingIDsAcrossCategories(t *testing.T) {
	r := newTestRegistry()

	first := r.Add(CategoryOrderHelp, Task{Title: "Track My Order"})
	second := r.Add(CategoryComplaints, Task{Title: "Raise a Complaint"})
	third := r.Add(CategoryOrderHelp, Task{Title: "Return an Item"})

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, 3, third.ID)
	assert.False(t, third.CreatedAt.IsZero())
}

func TestUpdate_ReplacesMatchingTask(t *testing.T) {
	r := newTestRegistry()
	added := r.Add(CategoryOther, Task{Title: "Book a Table", Status: "pending"})

	added.Status = "done"
	require.NoError(t, r.Update(CategoryOther, added))

	tasks := r.ByCategory(CategoryOther)
	require.Len(t, tasks, 1)
	assert.Equal(t, "done", tasks[0].Status)
}

func TestUpdate_UnknownTask(t *testing.T) {
	r := newTestRegistry()
	err := r.Update(CategoryOther, Task{ID: 42})
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	r := newTestRegistry()
	added := r.Add(CategoryOther, Task{Title: "Book a Table"})

	r.Remove(CategoryOther, added.ID)
	assert.Empty(t, r.ByCategory(CategoryOther))

	// Removing an unknown id is a no-op
	r.Remove(CategoryOther, 99)
}

func TestRecent_NewestFirstWithLimit(t *testing.T) {
	r := newTestRegistry()
	for _, title := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		r.Add(CategoryOther, Task{Title: title})
	}

	recent := r.Recent(0) // default limit of 5
	require.Len(t, recent, 5)
	assert.Equal(t, "g", recent[0].Title)
	assert.Equal(t, "c", recent[4].Title)

	assert.Len(t, r.Recent(2), 2)
}

func TestByCategory_ReturnsCopy(t *testing.T) {
	r := newTestRegistry()
	r.Add(CategoryOther, Task{Title: "original"})

	tasks := r.ByCategory(CategoryOther)
	tasks[0].Title = "mutated"

	fresh := r.ByCategory(CategoryOther)
	assert.Equal(t, "original", fresh[0].Title)
}
