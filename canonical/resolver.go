package canonical

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/c360studio/crossref/corpus"
)

// filenameNumber extracts the assumed chapter number a filename stem encodes,
// e.g. "ch07" or "ch07-anything".
var filenameNumber = regexp.MustCompile(`^ch(\d{1,3})(?:-(.*))?$`)

// Resolver joins the canonical mapping with a loaded corpus, answering the
// lookups rules need: number <-> document and document -> title.
type Resolver struct {
	mapping *Mapping
	corpus  *corpus.Corpus
}

// NewResolver creates a Resolver over an immutable mapping and corpus
// snapshot.
func NewResolver(mapping *Mapping, c *corpus.Corpus) *Resolver {
	return &Resolver{mapping: mapping, corpus: c}
}

// Mapping returns the underlying canonical mapping.
func (r *Resolver) Mapping() *Mapping {
	return r.mapping
}

// Resolve returns the document ID for a logical chapter number.
func (r *Resolver) Resolve(number int) (string, bool) {
	return r.mapping.Resolve(number)
}

// NumberOf returns the canonical chapter number for a document ID.
func (r *Resolver) NumberOf(id string) (int, bool) {
	return r.mapping.NumberOf(id)
}

// ResolveTitle returns the loaded title of a document.
func (r *Resolver) ResolveTitle(id string) (string, bool) {
	doc, ok := r.corpus.Get(id)
	if !ok {
		return "", false
	}
	return doc.Title, true
}

// ResolveByTitle returns the chapter document whose title matches,
// case-insensitively. The second return is false when no chapter or more
// than one chapter carries the title.
func (r *Resolver) ResolveByTitle(title string) (string, bool) {
	want := strings.ToLower(strings.TrimSpace(title))
	if want == "" {
		return "", false
	}

	var found string
	for _, doc := range r.corpus.ByRole(corpus.RoleChapter) {
		if strings.ToLower(strings.TrimSpace(doc.Title)) == want {
			if found != "" {
				return "", false
			}
			found = doc.ID
		}
	}
	return found, found != ""
}

// ResolveBySlug returns the mapped document whose ID carries the given slug
// (the text after the "chNN-" filename prefix). The second return is false
// when the slug is empty, unmapped, or ambiguous.
func (r *Resolver) ResolveBySlug(slug string) (string, bool) {
	if slug == "" {
		return "", false
	}

	var found string
	for _, id := range r.mapping.IDs() {
		if _, s := SplitStem(id); s == slug {
			if found != "" {
				return "", false
			}
			found = id
		}
	}
	return found, found != ""
}

// SplitStem splits a document ID into its assumed chapter number and slug.
// ok is false when the stem does not encode a number.
func SplitStem(stem string) (number int, slug string) {
	m := filenameNumber.FindStringSubmatch(stem)
	if m == nil {
		return 0, ""
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, ""
	}
	return n, m[2]
}

// Misalignment records divergence between a filename-encoded chapter number
// and the canonical mapping.
type Misalignment struct {
	// DocumentID is the secondary-root document whose name encodes the
	// assumed number, e.g. a PRD "ch07".
	DocumentID string `json:"document_id"`

	// AssumedNumber is the number the filename encodes.
	AssumedNumber int `json:"assumed_number"`

	// ActualNumber is the canonical number of the chapter the document
	// describes. Zero when Unmapped.
	ActualNumber int `json:"actual_number,omitempty"`

	// SubjectID is the chapter document the secondary document was matched
	// to. Empty when Unmapped.
	SubjectID string `json:"subject_id,omitempty"`

	// Unmapped marks documents whose subject has no canonical mapping entry.
	// These are reported rather than silently skipped.
	Unmapped bool `json:"unmapped,omitempty"`
}

// Misalignments compares every PRD document whose filename encodes a chapter
// number against the canonical mapping. The check is total: each such
// document either aligns, diverges, or is reported unmapped. The subject
// chapter is matched by title first, then by ID slug. Output is sorted by
// document ID.
func (r *Resolver) Misalignments() []Misalignment {
	var out []Misalignment

	for _, doc := range r.corpus.ByRole(corpus.RolePRD) {
		assumed, slug := SplitStem(doc.ID)
		if assumed == 0 {
			continue
		}

		subject, ok := r.ResolveByTitle(doc.Title)
		if !ok {
			subject, ok = r.ResolveBySlug(slug)
		}
		if !ok {
			out = append(out, Misalignment{
				DocumentID:    doc.ID,
				AssumedNumber: assumed,
				Unmapped:      true,
			})
			continue
		}

		actual, mapped := r.mapping.NumberOf(subject)
		if !mapped {
			out = append(out, Misalignment{
				DocumentID:    doc.ID,
				AssumedNumber: assumed,
				SubjectID:     subject,
				Unmapped:      true,
			})
			continue
		}

		if actual != assumed {
			out = append(out, Misalignment{
				DocumentID:    doc.ID,
				AssumedNumber: assumed,
				ActualNumber:  actual,
				SubjectID:     subject,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out
}
