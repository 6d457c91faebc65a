package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocument_HeadingsAndTitle(t *testing.T) {
	content := `# Context Engineering Deep Dive

Intro paragraph.

## Background

More text.

### Details

#notaheading
`

	doc := ParseDocument("ch09-context-engineering-deep-dive", RoleChapter, "chapters/ch09.md", []byte(content))

	assert.Equal(t, "Context Engineering Deep Dive", doc.Title)
	require.Len(t, doc.Headings, 3)
	assert.Equal(t, Heading{Level: 1, Text: "Context Engineering Deep Dive", Line: 1}, doc.Headings[0])
	assert.Equal(t, Heading{Level: 2, Text: "Background", Line: 5}, doc.Headings[1])
	assert.Equal(t, Heading{Level: 3, Text: "Details", Line: 9}, doc.Headings[2])
}

func TestParseDocument_WordCountExcludesCodeBlocks(t *testing.T) {
	content := "# Title\n\none two three\n\n```go\nfunc main() { /* not prose words */ }\n```\n\nfour five\n"

	doc := ParseDocument("ch01", RoleChapter, "chapters/ch01.md", []byte(content))

	// "Title" + "one two three" + "four five"
	assert.Equal(t, 6, doc.WordCount)
}

func TestParseDocument_TildeFenceIgnoresBacktickLines(t *testing.T) {
	content := "# Title\n\n~~~\nexample fence content\n```\nstill fenced words here\n~~~\n\nclosing prose\n"

	doc := ParseDocument("ch01", RoleChapter, "chapters/ch01.md", []byte(content))

	// "Title" + "closing prose"; the backtick line must not close the
	// tilde fence.
	assert.Equal(t, 3, doc.WordCount)
}

func TestParseDocument_WordCountExcludesTableRows(t *testing.T) {
	content := `# Title

before table

| Col A | Col B |
|-------|-------|
| x     | y     |

after table
`

	doc := ParseDocument("ch02", RoleChapter, "chapters/ch02.md", []byte(content))

	// "Title" + "before table" + "after table"
	assert.Equal(t, 5, doc.WordCount)
}

func TestParseDocument_WordCountNonNegativeAndStable(t *testing.T) {
	contents := []string{
		"",
		"\n\n\n",
		"```\ncode only\n```\n",
		"| a | b |\n",
	}
	for _, content := range contents {
		first := ParseDocument("doc", RoleChapter, "doc.md", []byte(content))
		second := ParseDocument("doc", RoleChapter, "doc.md", []byte(content))
		assert.GreaterOrEqual(t, first.WordCount, 0)
		assert.Equal(t, first.WordCount, second.WordCount)
		assert.Equal(t, first.Headings, second.Headings)
	}
}

func TestParseDocument_CRLFNormalized(t *testing.T) {
	doc := ParseDocument("ch03", RoleChapter, "chapters/ch03.md", []byte("# Title\r\n\r\nsome words here\r\n"))

	assert.Equal(t, "Title", doc.Title)
	assert.Equal(t, 4, doc.WordCount)
	require.Len(t, doc.BodyLines, 3)
}

func TestDocumentID(t *testing.T) {
	assert.Equal(t, "ch01-intro", DocumentID("chapters/ch01-intro.md"))
	assert.Equal(t, "ch07", DocumentID("/abs/path/prds/CH07.md"))
	assert.Equal(t, "notes", DocumentID("notes.md"))
}
