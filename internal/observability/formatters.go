// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/portfolio-admin/internal/site"
	"github.com/jonathan/portfolio-admin/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, boxWidth-4)
		pad := boxWidth - 4 - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func writeList(sb *strings.Builder, title string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s:\n", title)
	for _, it := range items[:min(len(items), limit)] {
		fmt.Fprintf(sb, "  • %s\n", it)
	}
	if len(items) > limit {
		fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
	}
}

// PrintDocument outputs a summary of a content document.
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Name:      %s\n", doc.Profile.Name)
	fmt.Fprintf(&sb, "Headline:  %s\n", doc.Profile.Headline)
	fmt.Fprintf(&sb, "Photo:     %s\n", assetSummary(doc.Profile.Photo))
	fmt.Fprintf(&sb, "Resume:    %s\n", assetSummary(doc.Profile.Resume))
	sb.WriteString("\n")

	s := doc.Skills
	skills := len(s.Languages) + len(s.MachineLearning) + len(s.DeepLearningNLP) +
		len(s.DataViz) + len(s.DatabasesCloud) + len(s.Tools)
	fmt.Fprintf(&sb, "Skills:          %d\n", skills)
	fmt.Fprintf(&sb, "Experience:      %d\n", len(doc.Experience))
	fmt.Fprintf(&sb, "Projects:        %d\n", len(doc.Projects))
	fmt.Fprintf(&sb, "Education:       %d\n", len(doc.Education))
	fmt.Fprintf(&sb, "Certifications:  %d\n", len(doc.Certifications))
	sb.WriteString("\n")

	writeList(&sb, "Project filters", site.Categories(doc.Projects), maxItemsToShow)

	p.printBox("CONTENT DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

func assetSummary(v string) string {
	switch {
	case v == "":
		return "(none)"
	case strings.HasPrefix(v, "data:"):
		if i := strings.IndexByte(v, ';'); i > 0 {
			return "embedded " + v[len("data:"):i]
		}
		return "embedded"
	default:
		return v
	}
}

// PrintIssues outputs validation problems, one per line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(title string, issues []string) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "NO ISSUES FOUND")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d issues:\n\n", len(issues))
	for _, issue := range issues {
		fmt.Fprintf(&sb, "⚠ %s\n", issue)
	}
	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintPublish outputs what the publisher reported.
func (p *Printer) PrintPublish(resp *types.PublishResponse) {
	if resp == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "OK:       %t\n", resp.OK)
	if resp.ContentPath != "" {
		fmt.Fprintf(&sb, "Content:  %s\n", resp.ContentPath)
	}
	if resp.PhotoPath != "" {
		fmt.Fprintf(&sb, "Photo:    %s\n", resp.PhotoPath)
	}
	if len(resp.Content) > 0 {
		sb.WriteString("Publisher returned its copy of the document\n")
	}
	p.printBox("PUBLISHED", strings.TrimSuffix(sb.String(), "\n"))
}
