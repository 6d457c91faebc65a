package rules

import (
	"path"
	"strings"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/refgraph"
)

// BrokenLinkRule checks that every file link resolves to a loaded document.
// For broken targets it derives a best-guess correction by matching the
// target's slug against the canonical mapping; when no unambiguous match
// exists the finding carries an empty expected value.
type BrokenLinkRule struct{}

// Name implements Rule.
func (r *BrokenLinkRule) Name() string { return string(CategoryBrokenLink) }

// Check implements Rule.
func (r *BrokenLinkRule) Check(in *Input) []Finding {
	var out []Finding

	for _, ref := range in.Graph.ByKind(refgraph.KindFileLink) {
		stem := TargetStem(ref.RawTarget)
		if _, ok := in.Corpus.Get(stem); ok {
			continue
		}

		expected := ""
		if _, slug := canonical.SplitStem(stem); slug != "" {
			if id, ok := in.Resolver.ResolveBySlug(slug); ok {
				expected = id + ".md"
			}
		}

		out = append(out, Finding{
			Category: CategoryBrokenLink,
			Severity: SeverityCritical,
			Location: Location{DocumentID: ref.SourceID, Line: ref.SourceLine},
			Detail:   Detail{Observed: ref.RawTarget, Expected: expected},
		})
	}

	return out
}

// TargetStem reduces a link target to a document ID: anchors and relative
// path segments are stripped, the extension removed, and the stem lowercased.
func TargetStem(target string) string {
	if i := strings.IndexByte(target, '#'); i >= 0 {
		target = target[:i]
	}
	base := path.Base(path.Clean(target))
	return strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
}
