package refgraph

import (
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/c360studio/crossref/corpus"
)

// linkPattern matches inline markdown links and images, capturing the
// optional image marker, label, and target. A quoted markdown title after
// the target is accepted and discarded.
var linkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)(?:[ \t]+(?:"[^"]*"|'[^']*'))?\)`)

// assetExtensions are link targets treated as asset references regardless of
// where the path points.
var assetExtensions = map[string]bool{
	".png":  true,
	".svg":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// Options configures reference extraction.
type Options struct {
	// AssetsPrefix is the path segment that marks a link target as an asset
	// reference (e.g. "assets").
	AssetsPrefix string

	// AllowAbbreviated also recognizes "Ch. N" and "Ch N" chapter mentions
	// in addition to "Chapter N". Matching is case-insensitive either way;
	// text that does not match the grammar is simply not a Reference.
	AllowAbbreviated bool
}

// Extractor scans documents for file links, chapter mentions, and asset
// references. The three scanners are independent: a linked mention such as
// "[Chapter 7: Title](ch07-title.md)" yields both a file-link and a
// chapter-mention reference.
type Extractor struct {
	opts    Options
	mention *regexp.Regexp
	logger  *slog.Logger
}

// NewExtractor creates an Extractor with the given options.
func NewExtractor(opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	word := `chapter`
	if opts.AllowAbbreviated {
		word = `chapter|ch\.?`
	}
	// "Chapter N" with an optional ": Title" tail. The tail stops at
	// sentence punctuation or a closing link-label bracket.
	mention := regexp.MustCompile(`(?i)\b(?:` + word + `)[ \t]+(\d{1,3})\b(?::[ \t]*([^\]\n.,;)]+))?`)

	return &Extractor{opts: opts, mention: mention, logger: logger}
}

// Extract builds the reference graph for the whole corpus. Extraction order
// is deterministic: documents by ID, lines in order, matches left to right.
func (e *Extractor) Extract(c *corpus.Corpus) *Graph {
	g := &Graph{}
	for _, doc := range c.Documents() {
		g.refs = append(g.refs, e.extractDocument(doc)...)
	}
	e.logger.Debug("references extracted", slog.Int("count", g.Len()))
	return g
}

// extractDocument scans a single document. Fenced code blocks are excluded
// from all three scanners.
func (e *Extractor) extractDocument(doc *corpus.Document) []Reference {
	var refs []Reference

	fence := ""
	for i, line := range doc.BodyLines {
		trimmed := strings.TrimSpace(line)
		if marker, ok := corpus.FenceMarker(trimmed); ok {
			switch fence {
			case "":
				fence = marker
			case marker:
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}

		lineNum := i + 1
		links := linkPattern.FindAllStringSubmatchIndex(line, -1)

		for _, m := range links {
			isImage := line[m[2]:m[3]] == "!"
			target := line[m[6]:m[7]]

			switch {
			case isExternal(target), strings.HasPrefix(target, "#"):
				// Web links and intra-document anchors are out of scope.
			case isImage || e.isAssetTarget(target):
				refs = append(refs, Reference{
					SourceID:   doc.ID,
					SourceLine: lineNum,
					RawTarget:  target,
					Kind:       KindAssetReference,
				})
			default:
				refs = append(refs, Reference{
					SourceID:   doc.ID,
					SourceLine: lineNum,
					RawTarget:  target,
					Kind:       KindFileLink,
				})
			}
		}

		for _, m := range e.mention.FindAllStringSubmatchIndex(line, -1) {
			number, err := strconv.Atoi(line[m[2]:m[3]])
			if err != nil {
				continue
			}

			ref := Reference{
				SourceID:   doc.ID,
				SourceLine: lineNum,
				RawTarget:  strings.TrimSpace(line[m[0]:m[1]]),
				Kind:       KindChapterMention,
				Number:     number,
			}
			if m[4] >= 0 {
				ref.Label = strings.TrimSpace(line[m[4]:m[5]])
			}
			// A mention inside a link label inherits the link's target, so
			// the wrong-number rule can resolve the mentioned document.
			for _, lm := range links {
				if m[0] >= lm[4] && m[1] <= lm[5] {
					ref.LinkTarget = line[lm[6]:lm[7]]
					break
				}
			}
			refs = append(refs, ref)
		}
	}

	return refs
}

// isExternal reports whether a link target points outside the corpus.
func isExternal(target string) bool {
	return strings.Contains(target, "://") || strings.HasPrefix(target, "mailto:")
}

// isAssetTarget reports whether a target path passes through the configured
// assets root, e.g. "assets/fig-1.svg" or "../assets/fig-1.svg".
func (e *Extractor) isAssetTarget(target string) bool {
	clean := path.Clean(strings.TrimPrefix(target, "./"))
	if assetExtensions[strings.ToLower(path.Ext(clean))] {
		return true
	}
	if e.opts.AssetsPrefix == "" {
		return false
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == e.opts.AssetsPrefix {
			return true
		}
	}
	return false
}
