package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c360studio/crossref/canonical"
	"github.com/c360studio/crossref/corpus"
	"github.com/c360studio/crossref/rules"
)

// RollupStatus classifies a chapter's word count against the bounds.
type RollupStatus string

const (
	RollupOK   RollupStatus = "OK"
	RollupLow  RollupStatus = "LOW"
	RollupHigh RollupStatus = "HIGH"
)

// RollupRow is one chapter in the word-count rollup table.
type RollupRow struct {
	DocumentID string       `json:"document_id"`
	Words      int          `json:"words"`
	Status     RollupStatus `json:"status"`
}

// Report is the full result of one validation run.
type Report struct {
	// RunID identifies the run; it varies between runs and lives only in
	// the report header, so body output stays byte-identical for identical
	// input.
	RunID string `json:"run_id"`

	// GeneratedAt is the run timestamp.
	GeneratedAt time.Time `json:"generated_at"`

	// Findings is the aggregated, ordered finding list.
	Findings []rules.Finding `json:"findings"`

	// Tasks is the derived, ordered task list.
	Tasks []Task `json:"tasks"`

	// Misalignments lists filename-numbering divergence from the canonical
	// mapping.
	Misalignments []canonical.Misalignment `json:"misalignments,omitempty"`

	// Rollup is the per-chapter word-count table.
	Rollup []RollupRow `json:"rollup"`

	// TotalWords is the chapter word-count sum.
	TotalWords int `json:"total_words"`

	// Bounds is the configured word-count range the rollup was measured
	// against.
	Bounds rules.Bounds `json:"bounds"`
}

// BuildRollup computes the word-count rollup over chapter documents, in
// document-ID order.
func BuildRollup(c *corpus.Corpus, bounds rules.Bounds) []RollupRow {
	var rows []RollupRow
	for _, doc := range c.ByRole(corpus.RoleChapter) {
		status := RollupOK
		switch {
		case doc.WordCount < bounds.Min:
			status = RollupLow
		case doc.WordCount > bounds.Max:
			status = RollupHigh
		}
		rows = append(rows, RollupRow{DocumentID: doc.ID, Words: doc.WordCount, Status: status})
	}
	return rows
}

// CriticalCount returns the number of critical findings.
func (r *Report) CriticalCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == rules.SeverityCritical {
			n++
		}
	}
	return n
}

// Render writes the human-readable markdown report: a run header, the
// summary count table, per-category finding tables, the misalignment table,
// and the word-count rollup.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Cross-Reference Validation Report\n\n")
	fmt.Fprintf(&b, "Run %s, generated %s\n\n", r.RunID, r.GeneratedAt.UTC().Format(time.RFC3339))

	r.renderBody(&b)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderBody writes only the deterministic report body, without the run
// header. Identical input produces byte-identical body output.
func (r *Report) RenderBody(w io.Writer) error {
	var b strings.Builder
	r.renderBody(&b)
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Report) renderBody(b *strings.Builder) {
	counts := make(map[rules.Category]int)
	criticals := make(map[rules.Category]int)
	for _, f := range r.Findings {
		counts[f.Category]++
		if f.Severity == rules.SeverityCritical {
			criticals[f.Category]++
		}
	}

	b.WriteString("## Summary\n\n")
	b.WriteString("| Category | Findings | Critical |\n")
	b.WriteString("|----------|----------|----------|\n")
	for _, cat := range rules.Categories {
		fmt.Fprintf(b, "| %s | %d | %d |\n", cat, counts[cat], criticals[cat])
	}
	fmt.Fprintf(b, "| **total** | **%d** | **%d** |\n\n", len(r.Findings), r.CriticalCount())

	for _, cat := range rules.Categories {
		if counts[cat] == 0 {
			continue
		}
		fmt.Fprintf(b, "## %s\n\n", headingFor(cat))
		b.WriteString("| Severity | Location | Observed | Expected |\n")
		b.WriteString("|----------|----------|----------|----------|\n")
		for _, f := range r.Findings {
			if f.Category != cat {
				continue
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n",
				f.Severity, f.Location, tableCell(f.Detail.Observed), tableCell(f.Detail.Expected))
		}
		b.WriteString("\n")
	}

	if len(r.Misalignments) > 0 {
		b.WriteString("## Chapter Numbering Misalignments\n\n")
		b.WriteString("| Document | Assumed | Actual | Subject |\n")
		b.WriteString("|----------|---------|--------|---------|\n")
		for _, m := range r.Misalignments {
			actual := "unmapped"
			if !m.Unmapped {
				actual = fmt.Sprintf("%d", m.ActualNumber)
			}
			fmt.Fprintf(b, "| %s | %d | %s | %s |\n", m.DocumentID, m.AssumedNumber, actual, tableCell(m.SubjectID))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Word Counts\n\n")
	fmt.Fprintf(b, "| Document | Words | Target | Status |\n")
	b.WriteString("|----------|-------|--------|--------|\n")
	for _, row := range r.Rollup {
		fmt.Fprintf(b, "| %s | %d | %d-%d | %s |\n",
			row.DocumentID, row.Words, r.Bounds.Min, r.Bounds.Max, row.Status)
	}
	fmt.Fprintf(b, "\nTotal words: %d\n", r.TotalWords)
}

// WriteTasks writes the machine-readable task list as indented JSON, in the
// task ordering contract's order.
func (r *Report) WriteTasks(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.Tasks)
}

// headingFor maps a category to its report section heading.
func headingFor(cat rules.Category) string {
	switch cat {
	case rules.CategoryBrokenLink:
		return "Broken Links"
	case rules.CategoryWrongNumber:
		return "Chapter Reference Issues"
	case rules.CategoryMissingSection:
		return "Missing Sections"
	case rules.CategoryWordCountBound:
		return "Word Count Bounds"
	case rules.CategoryMissingAsset:
		return "Missing Assets"
	default:
		return string(cat)
	}
}

// tableCell escapes pipes and substitutes a dash for empty values so table
// rows stay well-formed.
func tableCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
