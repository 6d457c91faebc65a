// Package canonical maintains the authoritative mapping of logical chapter
// numbers to physical document identifiers. The mapping is supplied as
// configuration and never inferred from document content; it is the single
// source of truth every validation rule consults.
package canonical

import (
	"errors"
	"fmt"
	"sort"
)

// Entry is one configured mapping row.
type Entry struct {
	// Number is the logical chapter number, positive and unique.
	Number int `yaml:"number" json:"number"`

	// ID is the document identifier the chapter lives in, e.g.
	// "ch09-context-engineering-deep-dive".
	ID string `yaml:"id" json:"id"`
}

// Sentinel errors for mapping construction.
var (
	// ErrDuplicateNumber is returned when two entries share a logical number.
	ErrDuplicateNumber = errors.New("duplicate logical chapter number")
	// ErrDuplicateDocument is returned when two entries share a document ID.
	ErrDuplicateDocument = errors.New("duplicate document id in mapping")
	// ErrInvalidNumber is returned for non-positive logical numbers.
	ErrInvalidNumber = errors.New("logical chapter number must be positive")
)

// Mapping is the canonical number <-> document table. It is immutable during
// a validation run; Insert is the only remapping operation and is meant for
// configuration maintenance between runs.
type Mapping struct {
	byNumber map[int]string
	byID     map[string]int
}

// NewMapping validates the configured entries and builds the mapping.
// Duplicate numbers, duplicate document IDs, and non-positive numbers are
// fatal configuration errors.
func NewMapping(entries []Entry) (*Mapping, error) {
	m := &Mapping{
		byNumber: make(map[int]string, len(entries)),
		byID:     make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if e.Number <= 0 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidNumber, e.Number)
		}
		if id, ok := m.byNumber[e.Number]; ok {
			return nil, fmt.Errorf("%w: %d maps to both %q and %q", ErrDuplicateNumber, e.Number, id, e.ID)
		}
		if n, ok := m.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %q mapped to both %d and %d", ErrDuplicateDocument, e.ID, n, e.Number)
		}
		m.byNumber[e.Number] = e.ID
		m.byID[e.ID] = e.Number
	}
	return m, nil
}

// Resolve returns the document ID for a logical chapter number.
func (m *Mapping) Resolve(number int) (string, bool) {
	id, ok := m.byNumber[number]
	return id, ok
}

// NumberOf returns the logical chapter number for a document ID.
func (m *Mapping) NumberOf(id string) (int, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// Numbers returns all mapped logical numbers in ascending order.
func (m *Mapping) Numbers() []int {
	out := make([]int, 0, len(m.byNumber))
	for n := range m.byNumber {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// IDs returns all mapped document IDs in ascending order.
func (m *Mapping) IDs() []string {
	out := make([]string, 0, len(m.byID))
	for id := range m.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of mapped chapters.
func (m *Mapping) Len() int {
	return len(m.byNumber)
}

// Insert remaps the mapping for an inserted chapter: every logical number
// greater than or equal to number shifts up by one, and the new number maps
// to id. This is the one configuration mutation for chapter insertion; it
// propagates to all rules through the mapping rather than through N manual
// text edits.
func (m *Mapping) Insert(number int, id string) error {
	if number <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidNumber, number)
	}
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDocument, id)
	}

	numbers := m.Numbers()
	// Shift from the top down so no intermediate state collides.
	for i := len(numbers) - 1; i >= 0; i-- {
		n := numbers[i]
		if n < number {
			break
		}
		doc := m.byNumber[n]
		delete(m.byNumber, n)
		m.byNumber[n+1] = doc
		m.byID[doc] = n + 1
	}

	m.byNumber[number] = id
	m.byID[id] = number
	return nil
}

// Entries returns the mapping as sorted configuration entries.
func (m *Mapping) Entries() []Entry {
	out := make([]Entry, 0, len(m.byNumber))
	for _, n := range m.Numbers() {
		out = append(out, Entry{Number: n, ID: m.byNumber[n]})
	}
	return out
}
