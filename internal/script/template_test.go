package script

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinLibrary_Parses(t *testing.T) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)

	for _, name := range []string{"Track My Order", "Cancel Subscription", "Raise a Complaint", "default"} {
		tmpl := lib.Resolve(name)
		assert.Equal(t, name, tmpl.Name)
		assert.NotEmpty(t, tmpl.InitialMessage)
		assert.Len(t, tmpl.Steps, 4)
		assert.Len(t, tmpl.SupportLinks, 3)
		assert.Len(t, tmpl.Responses, 3)
	}
}

func TestBuiltinLibrary_StepDelays(t *testing.T) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)

	steps := lib.Resolve("Track My Order").Steps
	assert.Equal(t, time.Duration(0), steps[0].Delay())
	assert.Equal(t, 3*time.Second, steps[3].Delay())
	assert.Equal(t, StepCurrent, steps[3].Status)
}

func testResolveFallsBack(t *testing.T, title string) {
	lib, err := BuiltinLibrary()
	require.NoError(t, err)

	tmpl := lib.Resolve(title)
	assert.Equal(t, DefaultTemplateName, tmpl.Name)
}

func TestResolve_UnknownTitle(t *testing.T) {
	testResolveFallsBack(t, "Book a Flight")
}

func TestResolve_EmptyTitle(t *testing.T) {
	testResolveFallsBack(t, "")
}

func TestResolve_CaseSensitive(t *testing.T) {
	// Lookup is exact-match: a case variation of a known title is an unknown title
	testResolveFallsBack(t, "track my order")
}

func TestLoadLibrary_RequiresDefault(t *testing.T) {
	_, err := LoadLibrary([]byte(`
Some Task:
  initialMessage: "hello"
`))
	require.Error(t, err)
}

func TestLoadLibrary_RejectsMalformedYAML(t *testing.T) {
	_, err := LoadLibrary([]byte("{not yaml"))
	require.Error(t, err)
}
