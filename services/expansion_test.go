package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandIncludesOriginalFirst(t *testing.T) {
	expander := &fakeExpanderClient{alts: []string{"children factory work schedule", "factory hours for minors"}}
	s := NewExpansionService(expander, 3, time.Second)

	queries := s.Expand(context.Background(), "child labor hours")
	require.Len(t, queries, 3)
	assert.Equal(t, "child labor hours", queries[0])
	assert.Equal(t, "children factory work schedule", queries[1])
}

func TestExpandDegradesToOriginalOnFailure(t *testing.T) {
	expander := &fakeExpanderClient{err: errors.New("model unavailable")}
	s := NewExpansionService(expander, 3, time.Second)

	queries := s.Expand(context.Background(), "child labor hours")
	assert.Equal(t, []string{"child labor hours"}, queries)
}

func TestExpandDegradesToOriginalOnEmptyOutput(t *testing.T) {
	s := NewExpansionService(&fakeExpanderClient{}, 3, time.Second)
	queries := s.Expand(context.Background(), "child labor hours")
	assert.Equal(t, []string{"child labor hours"}, queries)
}

func TestExpandFiltersDuplicatesOfOriginal(t *testing.T) {
	expander := &fakeExpanderClient{alts: []string{"Child Labor Hours", "", "working hours of children"}}
	s := NewExpansionService(expander, 3, time.Second)

	queries := s.Expand(context.Background(), "child labor hours")
	assert.Equal(t, []string{"child labor hours", "working hours of children"}, queries)
}

func TestExpandCapsAlternateCount(t *testing.T) {
	expander := &fakeExpanderClient{alts: []string{"a", "b", "c", "d", "e"}}
	s := NewExpansionService(expander, 2, time.Second)

	queries := s.Expand(context.Background(), "q")
	assert.Len(t, queries, 3) // original + 2 alternates
}

func TestParseExpansionLinesStripsBulletsAndNumbering(t *testing.T) {
	lines := parseExpansionLines("1. first phrasing\n- second phrasing\n\n  * third phrasing\n12) fourth phrasing\n")
	assert.Equal(t, []string{"first phrasing", "second phrasing", "third phrasing", "fourth phrasing"}, lines)
}

func TestParseExpansionLinesKeepsLeadingYears(t *testing.T) {
	lines := parseExpansionLines("1833 Factory Act provisions\n1.5 million workers surveyed\n")
	assert.Equal(t, []string{"1833 Factory Act provisions", "1.5 million workers surveyed"}, lines)
}
