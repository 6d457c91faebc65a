// Package rules runs the validation rule set over a loaded corpus and its
// reference graph, producing a uniform list of findings.
package rules

import "fmt"

// Category identifies a finding class. The set is closed: severities are
// fixed per category by the emitting rule, never ad hoc.
type Category string

const (
	CategoryBrokenLink     Category = "broken-link"
	CategoryWrongNumber    Category = "wrong-number"
	CategoryMissingSection Category = "missing-section"
	CategoryWordCountBound Category = "word-count-bound"
	CategoryMissingAsset   Category = "missing-asset"
)

// Categories lists all finding categories in report order.
var Categories = []Category{
	CategoryBrokenLink,
	CategoryWrongNumber,
	CategoryMissingSection,
	CategoryWordCountBound,
	CategoryMissingAsset,
}

// Severity is the closed severity scale.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities for sorting: critical sorts first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	default:
		return 3
	}
}

// MaxSeverity returns the more severe of two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() < a.Rank() {
		return b
	}
	return a
}

// Location pins a finding to a document and, where line-level precision
// exists, a line. Line 0 means the finding applies to the document or a
// whole section.
type Location struct {
	// DocumentID is the document the finding applies to.
	DocumentID string `json:"document_id"`

	// Line is the 1-indexed line number, 0 for document-scope findings.
	Line int `json:"line,omitempty"`

	// Section names the section involved, for section-scope findings.
	Section string `json:"section,omitempty"`
}

// String renders the location for task titles and report tables.
func (l Location) String() string {
	switch {
	case l.Line > 0:
		return fmt.Sprintf("%s:%d", l.DocumentID, l.Line)
	case l.Section != "":
		return fmt.Sprintf("%s §%s", l.DocumentID, l.Section)
	default:
		return l.DocumentID
	}
}

// Detail carries the structured observed/expected pair so downstream
// reporting stays deterministic. Expected is empty when no unambiguous
// correction could be derived.
type Detail struct {
	Observed string `json:"observed"`
	Expected string `json:"expected,omitempty"`
}

// Finding is one validation result. Findings are comparable value objects:
// two findings with equal category, location, and detail are the same
// finding, and the struct itself serves as the deduplication key.
type Finding struct {
	Category Category `json:"category"`
	Severity Severity `json:"severity"`
	Location Location `json:"location"`
	Detail   Detail   `json:"detail"`
}
