package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMapping_RejectsDuplicates(t *testing.T) {
	_, err := NewMapping([]Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 1, ID: "ch01-other"},
	})
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	_, err = NewMapping([]Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 2, ID: "ch01-intro"},
	})
	assert.ErrorIs(t, err, ErrDuplicateDocument)

	_, err = NewMapping([]Entry{{Number: 0, ID: "ch00"}})
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestMapping_ResolveAndNumberOf(t *testing.T) {
	m, err := NewMapping([]Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 9, ID: "ch09-context-engineering-deep-dive"},
	})
	require.NoError(t, err)

	id, ok := m.Resolve(9)
	require.True(t, ok)
	assert.Equal(t, "ch09-context-engineering-deep-dive", id)

	n, ok := m.NumberOf("ch01-intro")
	require.True(t, ok)
	assert.Equal(t, 1, n)

	_, ok = m.Resolve(4)
	assert.False(t, ok)
}

func TestMapping_InsertShiftsFollowingChapters(t *testing.T) {
	m, err := NewMapping([]Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 2, ID: "ch02-basics"},
		{Number: 3, ID: "ch03-advanced"},
	})
	require.NoError(t, err)

	require.NoError(t, m.Insert(2, "ch02-new-topic"))

	assert.Equal(t, []Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 2, ID: "ch02-new-topic"},
		{Number: 3, ID: "ch02-basics"},
		{Number: 4, ID: "ch03-advanced"},
	}, m.Entries())

	n, ok := m.NumberOf("ch03-advanced")
	require.True(t, ok)
	assert.Equal(t, 4, n)
}

func TestMapping_InsertAtEnd(t *testing.T) {
	m, err := NewMapping([]Entry{{Number: 1, ID: "ch01-intro"}})
	require.NoError(t, err)

	require.NoError(t, m.Insert(2, "ch02-basics"))
	assert.Equal(t, []int{1, 2}, m.Numbers())
}

func TestMapping_InsertRejectsKnownDocument(t *testing.T) {
	m, err := NewMapping([]Entry{{Number: 1, ID: "ch01-intro"}})
	require.NoError(t, err)

	assert.ErrorIs(t, m.Insert(1, "ch01-intro"), ErrDuplicateDocument)
}

func TestSplitStem(t *testing.T) {
	n, slug := SplitStem("ch09-context-engineering-deep-dive")
	assert.Equal(t, 9, n)
	assert.Equal(t, "context-engineering-deep-dive", slug)

	n, slug = SplitStem("ch07")
	assert.Equal(t, 7, n)
	assert.Equal(t, "", slug)

	n, _ = SplitStem("appendix-a")
	assert.Equal(t, 0, n)
}
