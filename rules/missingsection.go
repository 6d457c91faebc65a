package rules

import (
	"strings"

	"github.com/c360studio/crossref/corpus"
)

// MissingSectionRule checks that each chapter carries every configured
// required section. Detection is strictly binary presence or absence: a
// section that is present but incomplete needs human judgment and is never
// auto-flagged here.
type MissingSectionRule struct{}

// Name implements Rule.
func (r *MissingSectionRule) Name() string { return string(CategoryMissingSection) }

// Check implements Rule.
func (r *MissingSectionRule) Check(in *Input) []Finding {
	var out []Finding

	for _, doc := range in.Corpus.ByRole(corpus.RoleChapter) {
		for _, pattern := range in.RequiredHeadings {
			if hasSection(doc, pattern) {
				continue
			}
			out = append(out, Finding{
				Category: CategoryMissingSection,
				Severity: SeverityMedium,
				Location: Location{DocumentID: doc.ID, Section: pattern},
				Detail:   Detail{Observed: "absent", Expected: pattern},
			})
		}
	}

	return out
}

// hasSection reports whether the document carries the section, either as a
// heading or as a bare marker line. Some manuscripts write section markers
// as plain "Related chapters:" lines rather than headings, so both forms
// count as present.
func hasSection(doc *corpus.Document, pattern string) bool {
	want := normalizeSection(pattern)

	for _, h := range doc.Headings {
		if normalizeSection(h.Text) == want {
			return true
		}
	}
	for _, line := range doc.BodyLines {
		if normalizeSection(line) == want {
			return true
		}
	}
	return false
}

// normalizeSection lowercases and strips heading markers, emphasis, and a
// trailing colon.
func normalizeSection(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "#")
	s = strings.Trim(s, "*_")
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.ToLower(strings.TrimSpace(s))
}
