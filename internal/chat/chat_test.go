package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testDeriveTitle(t *testing.T, input string, expected string) {
	assert.Equal(t, expected, DeriveTitle(input))
}

func TestDeriveTitle_Short(t *testing.T) {
	testDeriveTitle(t, "I want to cancel my subscription", "I want to cancel my subscription...")
}

func TestDeriveTitle_ExactBound(t *testing.T) {
	input := strings.Repeat("a", 50)
	testDeriveTitle(t, input, input+"...")
}

func TestDeriveTitle_Truncated(t *testing.T) {
	input := strings.Repeat("a", 50) + "tail that should be cut"
	testDeriveTitle(t, input, strings.Repeat("a", 50)+"...")
}

func TestDeriveTitle_MultibyteNotSplit(t *testing.T) {
	input := strings.Repeat("é", 60)
	testDeriveTitle(t, input, strings.Repeat("é", 50)+"...")
}
