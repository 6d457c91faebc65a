package rules

import (
	"fmt"

	"github.com/c360studio/crossref/refgraph"
)

// WrongNumberRule checks every prose chapter mention against the canonical
// mapping. The mentioned document is resolved through the mention's link
// target when one exists, else through its title label; a mention that
// resolves to nothing is not a finding (the grammar already declined it a
// target). Each mismatching mention yields exactly one finding.
type WrongNumberRule struct{}

// Name implements Rule.
func (r *WrongNumberRule) Name() string { return string(CategoryWrongNumber) }

// Check implements Rule.
func (r *WrongNumberRule) Check(in *Input) []Finding {
	var out []Finding

	for _, ref := range in.Graph.ByKind(refgraph.KindChapterMention) {
		subject, ok := r.resolveSubject(in, ref)
		if !ok {
			continue
		}

		actual, mapped := in.Resolver.NumberOf(subject)
		if !mapped || actual == ref.Number {
			continue
		}

		out = append(out, Finding{
			Category: CategoryWrongNumber,
			Severity: SeverityCritical,
			Location: Location{DocumentID: ref.SourceID, Line: ref.SourceLine},
			Detail: Detail{
				Observed: fmt.Sprintf("Chapter %d", ref.Number),
				Expected: fmt.Sprintf("Chapter %d", actual),
			},
		})
	}

	return out
}

// resolveSubject finds the document a mention is talking about.
func (r *WrongNumberRule) resolveSubject(in *Input, ref refgraph.Reference) (string, bool) {
	if ref.LinkTarget != "" {
		stem := TargetStem(ref.LinkTarget)
		if _, ok := in.Resolver.NumberOf(stem); ok {
			return stem, true
		}
		if _, ok := in.Corpus.Get(stem); ok {
			return stem, true
		}
	}
	if ref.Label != "" {
		return in.Resolver.ResolveByTitle(ref.Label)
	}
	return "", false
}
