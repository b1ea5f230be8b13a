// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-intake/internal/pipeline"
	"github.com/jonathan/resume-intake/internal/types"
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

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", inner, truncate(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		line = truncate(line, inner)
		pad := inner - utf8.RuneCountInString(line)
		fmt.Fprintf(p.out, "│ %s%s │\n", line, strings.Repeat(" ", pad))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func statusMark(e types.ProgressEntry) string {
	switch {
	case !e.Completed:
		return "…"
	case e.Error != "":
		return "✗"
	default:
		return "✓"
	}
}

// PrintProgress outputs one line per mapping in the given order. Sources
// without an entry are shown as pending.
func (p *Printer) PrintProgress(mappings []types.SourceDocumentMapping, state types.ProgressState) {
	if len(mappings) == 0 {
		return
	}

	var sb strings.Builder
	for _, m := range mappings {
		entry, ok := state[m.SourceID]
		if !ok {
			sb.WriteString(fmt.Sprintf("· %s: pending\n", m.Name()))
			continue
		}
		sb.WriteString(fmt.Sprintf("%s %s: %s", statusMark(entry), m.Name(), entry.StatusText))
		if entry.LastProcessed != nil {
			sb.WriteString(fmt.Sprintf(" (%s)", entry.LastProcessed.Format("15:04:05")))
		}
		sb.WriteString("\n")
	}

	p.printBox("EXTRACTION PROGRESS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBatch outputs the summary of a batch run
func (p *Printer) PrintBatch(res pipeline.BatchResult) {
	var sb strings.Builder
	sb.WriteString(res.Status + "\n")
	if res.BatchID != "" {
		sb.WriteString(fmt.Sprintf("Batch: %s\n", res.BatchID))
	}
	if len(res.Outcomes) > 0 {
		sb.WriteString("\n")
	}
	for _, out := range res.Outcomes {
		switch {
		case !out.Succeeded():
			sb.WriteString(fmt.Sprintf("  ✗ %s: %v\n", out.Mapping.Name(), out.Err))
		case !out.Attempt.FinalIsValid:
			sb.WriteString(fmt.Sprintf("  ! %s: saved, structure invalid\n", out.Mapping.Name()))
		case out.Attempt.RepairAttempted:
			sb.WriteString(fmt.Sprintf("  ✓ %s: saved after repair\n", out.Mapping.Name()))
		default:
			sb.WriteString(fmt.Sprintf("  ✓ %s: saved\n", out.Mapping.Name()))
		}
	}

	p.printBox("BATCH EXTRACTION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtraction outputs a stored extraction record
func (p *Printer) PrintExtraction(targetID string, rec *types.ExtractionRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source:    %s\n", rec.SourceDocument))
	sb.WriteString(fmt.Sprintf("Processed: %s\n", rec.ProcessedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Valid:     %t", rec.IsValidStructure))
	if rec.RepairAttempted {
		sb.WriteString(" (repair attempted)")
	}
	sb.WriteString("\n")
	if rec.StructureError != nil {
		sb.WriteString(fmt.Sprintf("Error:     %s\n", *rec.StructureError))
	}
	writeShapeErrors(&sb, rec.ShapeErrors)
	sb.WriteString("\n")
	writeResume(&sb, rec.StructuredResult)

	p.printBox("EXTRACTION "+targetID, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCanonical outputs the consolidated resume record
func (p *Printer) PrintCanonical(rec *types.CanonicalResumeRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Sources (%d): %s\n", rec.NumberOfSourceDocuments, strings.Join(rec.SourceDocumentNames, ", ")))
	sb.WriteString(fmt.Sprintf("Processed:   %s\n", rec.ProcessedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Valid:       %t\n", rec.IsValidStructure))
	if rec.StructureError != nil {
		sb.WriteString(fmt.Sprintf("Error:       %s\n", *rec.StructureError))
	}
	writeShapeErrors(&sb, rec.ShapeErrors)
	sb.WriteString("\n")
	writeResume(&sb, rec.StructuredResult)

	p.printBox("CANONICAL RESUME", strings.TrimSuffix(sb.String(), "\n"))
}

func writeShapeErrors(sb *strings.Builder, errs []string) {
	if len(errs) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("Shape issues: %d\n", len(errs)))
	count := min(len(errs), 3)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", errs[i]))
	}
}

// writeResume summarises structured text. Text that does not decode into a
// resume is shown as a short raw excerpt.
func writeResume(sb *strings.Builder, structured string) {
	var r types.Resume
	if err := json.Unmarshal([]byte(structured), &r); err != nil {
		sb.WriteString("Raw result:\n")
		sb.WriteString(truncate(strings.ReplaceAll(structured, "\n", " "), 200))
		sb.WriteString("\n")
		return
	}

	sb.WriteString(fmt.Sprintf("Name:     %s\n", r.FullName))
	if r.Contact.Email != "" || r.Contact.Location != "" {
		sb.WriteString(fmt.Sprintf("Contact:  %s\n", strings.Trim(strings.Join([]string{r.Contact.Email, r.Contact.Phone, r.Contact.Location}, " | "), " |")))
	}

	if len(r.WorkExperience) > 0 {
		sb.WriteString(fmt.Sprintf("\nExperience (%d):\n", len(r.WorkExperience)))
		count := min(len(r.WorkExperience), maxItemsToShow)
		for i := 0; i < count; i++ {
			w := r.WorkExperience[i]
			sb.WriteString(fmt.Sprintf("  • %s, %s (%s – %s)\n", w.JobTitle, w.Company, w.StartDate, w.EndDate))
		}
		if len(r.WorkExperience) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(r.WorkExperience)-maxItemsToShow))
		}
	}

	if len(r.Education) > 0 {
		sb.WriteString(fmt.Sprintf("\nEducation (%d):\n", len(r.Education)))
		for _, e := range r.Education {
			line := fmt.Sprintf("  • %s, %s", e.Degree, e.Institution)
			if e.GPA != "" {
				line += fmt.Sprintf(" (GPA %s)", e.GPA)
			}
			sb.WriteString(line + "\n")
		}
	}

	if len(r.Skills) > 0 {
		skills := append([]string(nil), r.Skills...)
		sort.Strings(skills)
		sb.WriteString(fmt.Sprintf("\nSkills (%d): %s\n", len(skills), strings.Join(skills, ", ")))
	}
}
