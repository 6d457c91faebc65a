// Package corpus loads a directory tree of manuscript documents into an
// immutable in-memory corpus.
package corpus

import (
	"errors"
	"fmt"
	"sort"
)

// Role classifies a document by the root it was loaded from.
type Role string

const (
	// RoleChapter marks a chapter manuscript.
	RoleChapter Role = "chapter"
	// RolePRD marks a product-requirement document describing a chapter.
	RolePRD Role = "prd"
)

// Heading is a single ATX heading recorded during the load pass.
type Heading struct {
	// Level is the heading depth (1 for "#", 2 for "##", ...).
	Level int `json:"level"`

	// Text is the heading text with markers and surrounding space stripped.
	Text string `json:"text"`

	// Line is the 1-indexed line number the heading appears on.
	Line int `json:"line"`
}

// Document is one loaded manuscript file. Documents are immutable once the
// corpus is constructed; re-validation requires a fresh load.
type Document struct {
	// ID is the filename stem, e.g. "ch01-intro".
	ID string `json:"id"`

	// Role records which configured root the document came from.
	Role Role `json:"role"`

	// Path is the load path relative to the corpus root.
	Path string `json:"path"`

	// Title is the text of the first heading, empty if the document has none.
	Title string `json:"title"`

	// BodyLines holds the raw text lines; line N of the file is BodyLines[N-1].
	BodyLines []string `json:"-"`

	// WordCount is the prose word count, excluding fenced code blocks and
	// table rows.
	WordCount int `json:"word_count"`

	// Headings lists every ATX heading in document order.
	Headings []Heading `json:"headings,omitempty"`
}

// Corpus is the full set of loaded documents, keyed by unique ID.
type Corpus struct {
	docs  map[string]*Document
	order []string
}

// Sentinel errors for corpus construction.
var (
	// ErrDuplicateID is returned when two files resolve to the same document ID.
	ErrDuplicateID = errors.New("duplicate document id")
)

// CorpusError is a fatal load failure. No partial corpus is produced when one
// is returned.
type CorpusError struct {
	// Op names the failing operation (e.g. "discover", "read", "identify").
	Op string

	// Path is the file or directory involved, when known.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error returns the formatted error message.
func (e *CorpusError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corpus %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("corpus %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *CorpusError) Unwrap() error {
	return e.Err
}

// New builds a Corpus from loaded documents, enforcing ID uniqueness. This
// is the single synchronization barrier after parallel loads.
func New(docs []*Document) (*Corpus, error) {
	c := &Corpus{docs: make(map[string]*Document, len(docs))}
	for _, d := range docs {
		if prev, ok := c.docs[d.ID]; ok {
			return nil, &CorpusError{
				Op:   "identify",
				Path: d.Path,
				Err:  fmt.Errorf("%w: %q also loaded from %s", ErrDuplicateID, d.ID, prev.Path),
			}
		}
		c.docs[d.ID] = d
		c.order = append(c.order, d.ID)
	}
	sort.Strings(c.order)
	return c, nil
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id string) (*Document, bool) {
	d, ok := c.docs[id]
	return d, ok
}

// Documents returns all documents ordered by ID.
func (c *Corpus) Documents() []*Document {
	out := make([]*Document, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.docs[id])
	}
	return out
}

// ByRole returns all documents with the given role, ordered by ID.
func (c *Corpus) ByRole(role Role) []*Document {
	var out []*Document
	for _, id := range c.order {
		if c.docs[id].Role == role {
			out = append(out, c.docs[id])
		}
	}
	return out
}

// Len returns the number of documents in the corpus.
func (c *Corpus) Len() int {
	return len(c.docs)
}

// TotalWordCount sums the word counts of every document with the given role.
func (c *Corpus) TotalWordCount(role Role) int {
	total := 0
	for _, d := range c.ByRole(role) {
		total += d.WordCount
	}
	return total
}
