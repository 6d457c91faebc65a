package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/config"
	"github.com/c360studio/crossref/rules"
)

func wordBounds(min, max int) config.WordsConfig {
	return config.WordsConfig{Min: &min, Max: &max}
}

// fixtureTree builds a small manuscript corpus with one defect of every
// category.
func fixtureTree(t *testing.T) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()

	write := func(rel, content string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	write("chapters/ch01-intro.md", `# Introduction

See [the deep dive](ch07-context-engineering-deep-dive.md) and
[Chapter 7: Context Engineering Deep Dive](ch07-context-engineering-deep-dive.md).

![flow](../assets/diagrams/missing.svg)

## Related Chapters

- [Basics](ch02-basics.md)
`)
	write("chapters/ch02-basics.md", `# Basics

short chapter body

## Related Chapters

- [Introduction](ch01-intro.md)
`)
	write("chapters/ch09-context-engineering-deep-dive.md", "# Context Engineering Deep Dive\n")
	write("prds/ch07.md", "# Context Engineering Deep Dive\n\nprd body\n")
	write("assets/diagrams/arch.svg", "<svg/>")

	cfg := config.DefaultConfig()
	cfg.Merge(&config.Config{Words: wordBounds(6, 20)})
	cfg.Mapping = []canonical.Entry{
		{Number: 1, ID: "ch01-intro"},
		{Number: 2, ID: "ch02-basics"},
		{Number: 9, ID: "ch09-context-engineering-deep-dive"},
	}
	require.NoError(t, cfg.Validate())

	return root, cfg
}

func TestApp_RunProducesExpectedFindings(t *testing.T) {
	root, cfg := fixtureTree(t)

	rep, err := NewApp(cfg, root, nil).Run()
	require.NoError(t, err)

	byCat := make(map[rules.Category][]rules.Finding)
	for _, f := range rep.Findings {
		byCat[f.Category] = append(byCat[f.Category], f)
	}

	// Two links to the stale chapter 7 filename.
	require.Len(t, byCat[rules.CategoryBrokenLink], 2)
	for _, f := range byCat[rules.CategoryBrokenLink] {
		assert.Equal(t, "ch09-context-engineering-deep-dive.md", f.Detail.Expected)
	}

	require.Len(t, byCat[rules.CategoryWrongNumber], 1)
	assert.Equal(t, rules.Detail{Observed: "Chapter 7", Expected: "Chapter 9"},
		byCat[rules.CategoryWrongNumber][0].Detail)

	// ch09 has no Related Chapters section.
	require.Len(t, byCat[rules.CategoryMissingSection], 1)
	assert.Equal(t, "ch09-context-engineering-deep-dive", byCat[rules.CategoryMissingSection][0].Location.DocumentID)

	require.Len(t, byCat[rules.CategoryMissingAsset], 1)
	assert.Equal(t, "../assets/diagrams/missing.svg", byCat[rules.CategoryMissingAsset][0].Detail.Observed)

	// ch09 is a stub under the word minimum.
	require.Len(t, byCat[rules.CategoryWordCountBound], 1)
	assert.Equal(t, "ch09-context-engineering-deep-dive", byCat[rules.CategoryWordCountBound][0].Location.DocumentID)

	// The PRD still carries the pre-renumbering chapter 7 filename.
	require.Len(t, rep.Misalignments, 1)
	assert.Equal(t, canonical.Misalignment{
		DocumentID:    "ch07",
		AssumedNumber: 7,
		ActualNumber:  9,
		SubjectID:     "ch09-context-engineering-deep-dive",
	}, rep.Misalignments[0])
}

func TestApp_RunIsIdempotent(t *testing.T) {
	root, cfg := fixtureTree(t)
	app := NewApp(cfg, root, nil)

	first, err := app.Run()
	require.NoError(t, err)
	second, err := app.Run()
	require.NoError(t, err)

	assert.Equal(t, first.Findings, second.Findings)
	assert.Equal(t, first.Tasks, second.Tasks)

	var bodyA, bodyB, tasksA, tasksB bytes.Buffer
	require.NoError(t, first.RenderBody(&bodyA))
	require.NoError(t, second.RenderBody(&bodyB))
	require.NoError(t, first.WriteTasks(&tasksA))
	require.NoError(t, second.WriteTasks(&tasksB))

	assert.Equal(t, bodyA.String(), bodyB.String())
	assert.Equal(t, tasksA.String(), tasksB.String())
}

func TestApp_RunFailsOnDuplicateID(t *testing.T) {
	root, cfg := fixtureTree(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "chapters", "drafts"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "chapters", "drafts", "ch01-intro.md"),
		[]byte("# Duplicate\n"), 0644))

	_, err := NewApp(cfg, root, nil).Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate document id")
}
