package corpus

import (
	"path/filepath"
	"strings"
)

// DocumentID derives the stable document ID from a filename: the base name
// with its extension removed, lowercased.
func DocumentID(filename string) string {
	base := filepath.Base(filename)
	return strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
}

// ParseDocument builds a Document from raw markdown content. Parsing is a
// single pass over the line sequence: headings are recorded as encountered,
// the first heading becomes the title, and prose words are counted with
// fenced code blocks and table rows excluded.
func ParseDocument(id string, role Role, path string, content []byte) *Document {
	lines := splitLines(string(content))

	doc := &Document{
		ID:        id,
		Role:      role,
		Path:      path,
		BodyLines: lines,
	}

	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if marker, ok := FenceMarker(trimmed); ok {
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

		if h, ok := parseHeading(trimmed, i+1); ok {
			doc.Headings = append(doc.Headings, h)
			if doc.Title == "" {
				doc.Title = h.Text
			}
			doc.WordCount += len(strings.Fields(h.Text))
			continue
		}

		// Table rows are structure, not prose.
		if strings.HasPrefix(trimmed, "|") {
			continue
		}

		doc.WordCount += len(strings.Fields(trimmed))
	}

	return doc
}

// splitLines splits content into lines, normalising CRLF endings and
// dropping a single trailing empty line caused by a final newline.
func splitLines(content string) []string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// FenceMarker reports whether a trimmed line is a code-fence delimiter and
// which marker it uses. A fence only closes on the marker that opened it, so
// a backtick line inside a tilde fence is fenced content, not a delimiter.
func FenceMarker(trimmed string) (string, bool) {
	switch {
	case strings.HasPrefix(trimmed, "```"):
		return "```", true
	case strings.HasPrefix(trimmed, "~~~"):
		return "~~~", true
	}
	return "", false
}

// parseHeading parses an ATX heading from a trimmed line.
func parseHeading(trimmed string, lineNum int) (Heading, bool) {
	if !strings.HasPrefix(trimmed, "#") {
		return Heading{}, false
	}

	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level > 6 {
		return Heading{}, false
	}
	rest := trimmed[level:]
	if rest != "" && !strings.HasPrefix(rest, " ") && !strings.HasPrefix(rest, "\t") {
		// "#hashtag" is not a heading.
		return Heading{}, false
	}

	return Heading{
		Level: level,
		Text:  strings.TrimSpace(rest),
		Line:  lineNum,
	}, true
}
