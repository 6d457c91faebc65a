package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/crossref/corpus"
	"github.com/c360studio/crossref/rules"
)

func finding(cat rules.Category, sev rules.Severity, doc string, line int, observed string) rules.Finding {
	return rules.Finding{
		Category: cat,
		Severity: sev,
		Location: rules.Location{DocumentID: doc, Line: line},
		Detail:   rules.Detail{Observed: observed},
	}
}

func TestAggregate_DeduplicatesStructuralEquals(t *testing.T) {
	f := finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 3, "ch07.md")

	got := Aggregate([]rules.Finding{f, f, f})

	assert.Len(t, got, 1)
}

func TestAggregate_DistinctDetailsNeverMerge(t *testing.T) {
	// Details containing separator-like characters must still be compared
	// field by field, not through a joined string.
	a := finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 3, "a|")
	a.Detail.Expected = "b"
	b := finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 3, "a")
	b.Detail.Expected = "|b"

	got := Aggregate([]rules.Finding{a, b})

	assert.Len(t, got, 2)
}

func TestAggregate_OrderingContract(t *testing.T) {
	in := []rules.Finding{
		finding(rules.CategoryWordCountBound, rules.SeverityLow, "ch01", 0, "100 words"),
		finding(rules.CategoryMissingSection, rules.SeverityMedium, "ch09", 0, "absent"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch09", 12, "x.md"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 40, "y.md"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 7, "z.md"),
	}

	got := Aggregate(in)

	require.Len(t, got, 5)
	// critical first, ties by document id then line
	assert.Equal(t, "z.md", got[0].Detail.Observed)
	assert.Equal(t, "y.md", got[1].Detail.Observed)
	assert.Equal(t, "x.md", got[2].Detail.Observed)
	assert.Equal(t, rules.SeverityMedium, got[3].Severity)
	assert.Equal(t, rules.SeverityLow, got[4].Severity)
}

func TestDeriveTasks_GroupsByCategoryAndDocument(t *testing.T) {
	in := Aggregate([]rules.Finding{
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 7, "a.md"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 12, "b.md"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 40, "c.md"),
		finding(rules.CategoryMissingSection, rules.SeverityMedium, "ch01", 0, "absent"),
	})

	tasks := DeriveTasks(in)

	require.Len(t, tasks, 2, "three broken links in one document become one task")

	assert.Equal(t, "task.broken-link.ch01", tasks[0].ID)
	assert.Equal(t, "fix", tasks[0].Type)
	assert.Equal(t, "Fix broken-link in ch01", tasks[0].Title)
	assert.Equal(t, rules.SeverityCritical, tasks[0].Priority)
	assert.Equal(t, 3, tasks[0].Findings)

	assert.Equal(t, "task.missing-section.ch01", tasks[1].ID)
	assert.Equal(t, rules.SeverityMedium, tasks[1].Priority)
}

func TestDeriveTasks_PriorityIsMaxSeverity(t *testing.T) {
	// Findings of one category share a severity by rule; the grouping still
	// takes the max defensively when inputs disagree.
	tasks := DeriveTasks([]rules.Finding{
		finding(rules.CategoryMissingAsset, rules.SeverityMedium, "ch02", 4, "a.svg"),
		finding(rules.CategoryMissingAsset, rules.SeverityCritical, "ch02", 9, "b.svg"),
	})

	require.Len(t, tasks, 1)
	assert.Equal(t, rules.SeverityCritical, tasks[0].Priority)
}

func TestDeriveTasks_Ordering(t *testing.T) {
	in := Aggregate([]rules.Finding{
		finding(rules.CategoryWordCountBound, rules.SeverityLow, "ch01", 0, "100 words"),
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch09", 3, "x.md"),
		finding(rules.CategoryMissingSection, rules.SeverityMedium, "ch02", 0, "absent"),
	})

	tasks := DeriveTasks(in)

	require.Len(t, tasks, 3)
	assert.Equal(t, "task.broken-link.ch09", tasks[0].ID)
	assert.Equal(t, "task.missing-section.ch02", tasks[1].ID)
	assert.Equal(t, "task.word-count-bound.ch01", tasks[2].ID)
}

func sampleReport() *Report {
	findings := Aggregate([]rules.Finding{
		finding(rules.CategoryBrokenLink, rules.SeverityCritical, "ch01", 3, "ch07.md"),
		finding(rules.CategoryWordCountBound, rules.SeverityLow, "ch06", 0, "2400 words"),
	})
	return &Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Findings:    findings,
		Tasks:       DeriveTasks(findings),
		Rollup: []RollupRow{
			{DocumentID: "ch01", Words: 2816, Status: RollupOK},
			{DocumentID: "ch06", Words: 2400, Status: RollupLow},
		},
		TotalWords: 5216,
		Bounds:     rules.Bounds{Min: 2500, Max: 4000},
	}
}

func TestReport_RenderBodyDeterministic(t *testing.T) {
	var first, second bytes.Buffer

	require.NoError(t, sampleReport().RenderBody(&first))
	require.NoError(t, sampleReport().RenderBody(&second))

	assert.Equal(t, first.String(), second.String(), "identical input must render byte-identically")
}

func TestReport_RenderBodyContent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().RenderBody(&buf))
	out := buf.String()

	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Broken Links")
	assert.Contains(t, out, "## Word Counts")
	assert.Contains(t, out, "| ch06 | 2400 | 2500-4000 | LOW |")
	assert.Contains(t, out, "Total words: 5216")
	assert.NotContains(t, out, "run-1", "run metadata stays out of the deterministic body")
}

func TestReport_WriteTasksOrderedJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleReport().WriteTasks(&buf))

	out := buf.String()
	assert.Contains(t, out, `"task.broken-link.ch01"`)
	assert.Less(t,
		bytes.Index(buf.Bytes(), []byte("broken-link")),
		bytes.Index(buf.Bytes(), []byte("word-count-bound")),
		"critical tasks serialize before low ones")
}

func TestBuildRollup_Statuses(t *testing.T) {
	docs := []*corpus.Document{
		corpus.ParseDocument("ch01-short", corpus.RoleChapter, "ch01.md", []byte("# T\n\ntoo short\n")),
		corpus.ParseDocument("ch02-ok", corpus.RoleChapter, "ch02.md", []byte("# T\n\none two three four\n")),
	}
	c, err := corpus.New(docs)
	require.NoError(t, err)

	rows := BuildRollup(c, rules.Bounds{Min: 4, Max: 10})

	require.Len(t, rows, 2)
	assert.Equal(t, RollupRow{DocumentID: "ch01-short", Words: 3, Status: RollupLow}, rows[0])
	assert.Equal(t, RollupRow{DocumentID: "ch02-ok", Words: 5, Status: RollupOK}, rows[1])
}
