package rules

import (
	"path"
	"strings"

	"github.com/c360studio/crossref/corpus"
	"github.com/c360studio/crossref/refgraph"
)

// MissingAssetRule checks that every referenced asset exists under the
// configured assets root.
type MissingAssetRule struct{}

// Name implements Rule.
func (r *MissingAssetRule) Name() string { return string(CategoryMissingAsset) }

// Check implements Rule.
func (r *MissingAssetRule) Check(in *Input) []Finding {
	var out []Finding

	for _, ref := range in.Graph.ByKind(refgraph.KindAssetReference) {
		rel := assetRelPath(ref.RawTarget, in.AssetsPrefix)
		if corpus.AssetExists(in.AssetsDir, rel) {
			continue
		}
		out = append(out, Finding{
			Category: CategoryMissingAsset,
			Severity: SeverityMedium,
			Location: Location{DocumentID: ref.SourceID, Line: ref.SourceLine},
			Detail:   Detail{Observed: ref.RawTarget},
		})
	}

	return out
}

// assetRelPath reduces an asset target to its path below the assets root.
// Targets written relative to a document ("../assets/fig.svg") and targets
// already below the root ("fig.svg") both normalize to the same lookup key.
func assetRelPath(target, prefix string) string {
	clean := path.Clean(strings.TrimPrefix(target, "./"))
	if prefix != "" {
		segs := strings.Split(clean, "/")
		for i, seg := range segs {
			if seg == prefix {
				return path.Join(segs[i+1:]...)
			}
		}
	}
	return strings.TrimPrefix(clean, "../")
}
