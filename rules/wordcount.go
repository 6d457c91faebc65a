package rules

import (
	"fmt"

	"github.com/c360studio/crossref/corpus"
)

// WordCountRule checks each chapter's word count against the configured
// closed interval. Counts exactly at the minimum or maximum are compliant;
// one word under the minimum is a genuine violation, with no tolerance
// margin.
type WordCountRule struct{}

// Name implements Rule.
func (r *WordCountRule) Name() string { return string(CategoryWordCountBound) }

// Check implements Rule.
func (r *WordCountRule) Check(in *Input) []Finding {
	var out []Finding

	for _, doc := range in.Corpus.ByRole(corpus.RoleChapter) {
		if in.Bounds.Contains(doc.WordCount) {
			continue
		}
		out = append(out, Finding{
			Category: CategoryWordCountBound,
			Severity: SeverityLow,
			Location: Location{DocumentID: doc.ID},
			Detail: Detail{
				Observed: fmt.Sprintf("%d words", doc.WordCount),
				Expected: fmt.Sprintf("%d-%d words", in.Bounds.Min, in.Bounds.Max),
			},
		})
	}

	return out
}
