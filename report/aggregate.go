// Package report aggregates rule findings into the ordered report and task
// list artifacts.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/crossref/rules"
)

// Aggregate deduplicates findings by structural equality and applies the
// ordering contract: critical first, then medium, then low; ties broken by
// document ID ascending, then line ascending. Downstream automation consumes
// the result positionally, so the order is part of the interface.
func Aggregate(findings []rules.Finding) []rules.Finding {
	seen := make(map[rules.Finding]bool, len(findings))
	out := make([]rules.Finding, 0, len(findings))
	for _, f := range findings {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Location.DocumentID != b.Location.DocumentID {
			return a.Location.DocumentID < b.Location.DocumentID
		}
		if a.Location.Line != b.Location.Line {
			return a.Location.Line < b.Location.Line
		}
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		return a.Detail.Observed < b.Detail.Observed
	})

	return out
}

// Task is one remediation unit derived from findings. Findings that share a
// category and document collapse into a single task.
type Task struct {
	// ID is stable across runs, derived from category and document.
	ID string `json:"id"`

	// Type is always "fix" in this domain.
	Type string `json:"type"`

	// Title is built from category and location, not free-form.
	Title string `json:"title"`

	// Priority is the maximum severity among the source findings.
	Priority rules.Severity `json:"priority"`

	// Description lists each constituent finding's observed/expected pair.
	Description string `json:"description,omitempty"`

	// Findings counts the constituent findings.
	Findings int `json:"findings"`
}

// DeriveTasks groups aggregated findings into the ordered task list. The
// input is assumed already aggregated; the output follows the same ordering
// contract as findings (priority, then document ID, then first line).
func DeriveTasks(findings []rules.Finding) []Task {
	type group struct {
		category rules.Category
		docID    string
		severity rules.Severity
		firstLn  int
		lines    []string
	}

	groups := make(map[string]*group)
	var order []string

	for _, f := range findings {
		key := string(f.Category) + "|" + f.Location.DocumentID
		g, ok := groups[key]
		if !ok {
			g = &group{
				category: f.Category,
				docID:    f.Location.DocumentID,
				severity: f.Severity,
				firstLn:  f.Location.Line,
			}
			groups[key] = g
			order = append(order, key)
		}
		g.severity = rules.MaxSeverity(g.severity, f.Severity)
		if f.Location.Line > 0 && (g.firstLn == 0 || f.Location.Line < g.firstLn) {
			g.firstLn = f.Location.Line
		}
		g.lines = append(g.lines, describeFinding(f))
	}

	ordered := make([]*group, 0, len(order))
	for _, key := range order {
		ordered = append(ordered, groups[key])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.severity.Rank() != b.severity.Rank() {
			return a.severity.Rank() < b.severity.Rank()
		}
		if a.docID != b.docID {
			return a.docID < b.docID
		}
		if a.firstLn != b.firstLn {
			return a.firstLn < b.firstLn
		}
		return a.category < b.category
	})

	tasks := make([]Task, 0, len(ordered))
	for _, g := range ordered {
		tasks = append(tasks, Task{
			ID:          fmt.Sprintf("task.%s.%s", g.category, g.docID),
			Type:        "fix",
			Title:       fmt.Sprintf("Fix %s in %s", g.category, g.docID),
			Priority:    g.severity,
			Description: strings.Join(g.lines, "\n"),
			Findings:    len(g.lines),
		})
	}

	return tasks
}

// describeFinding renders one finding for a task description.
func describeFinding(f rules.Finding) string {
	if f.Detail.Expected != "" {
		return fmt.Sprintf("%s: observed %q, expected %q", f.Location, f.Detail.Observed, f.Detail.Expected)
	}
	return fmt.Sprintf("%s: observed %q", f.Location, f.Detail.Observed)
}
