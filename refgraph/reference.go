// Package refgraph extracts cross-document references from a loaded corpus
// into a directed reference graph.
package refgraph

// Kind discriminates the three reference classes. A broken file link and a
// stale prose mention are different failure classes needing different fixes
// (file rename vs. prose edit), so links and mentions are extracted
// separately even when they point at the same logical target.
type Kind string

const (
	// KindFileLink is a markdown link whose target is another document.
	KindFileLink Kind = "file-link"
	// KindChapterMention is a free-text "Chapter N" mention in prose.
	KindChapterMention Kind = "chapter-mention"
	// KindAssetReference is a link or image whose target is an asset file.
	KindAssetReference Kind = "asset-reference"
)

// Reference is one extracted cross-document edge. References are created
// during graph extraction and never mutated; validators only read them.
type Reference struct {
	// SourceID is the document the reference appears in.
	SourceID string `json:"source_id"`

	// SourceLine is the 1-indexed line the reference appears on.
	SourceLine int `json:"source_line"`

	// RawTarget is the literal link target, asset path, or mention text.
	RawTarget string `json:"raw_target"`

	// Kind classifies the reference.
	Kind Kind `json:"kind"`

	// Number is the asserted chapter number. Chapter mentions only.
	Number int `json:"number,omitempty"`

	// Label is the title text following "Chapter N:". Chapter mentions only.
	Label string `json:"label,omitempty"`

	// LinkTarget is the enclosing link's target when the mention is itself a
	// link label. Chapter mentions only.
	LinkTarget string `json:"link_target,omitempty"`
}

// Graph holds the extracted references in deterministic document order.
type Graph struct {
	refs []Reference
}

// All returns every reference in extraction order.
func (g *Graph) All() []Reference {
	return g.refs
}

// ByKind returns every reference of the given kind, in extraction order.
func (g *Graph) ByKind(kind Kind) []Reference {
	var out []Reference
	for _, r := range g.refs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// FromDocument returns every reference originating in the given document.
func (g *Graph) FromDocument(id string) []Reference {
	var out []Reference
	for _, r := range g.refs {
		if r.SourceID == id {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the total number of references.
func (g *Graph) Len() int {
	return len(g.refs)
}
