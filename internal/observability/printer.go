// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/daniel/dataset-miner/internal/record"
	"github.com/daniel/dataset-miner/internal/submission"
)

// boxWidth is the default width for formatted output boxes
const boxWidth = 60

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDataset outputs a summary of the loaded evaluation dataset.
func (p *Printer) PrintDataset(path string, count int) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Path:     %s\n", path))
	sb.WriteString(fmt.Sprintf("Records:  %d", count))
	p.printBox("Evaluation Dataset", sb.String())
}

// PrintArtifact outputs a summary of a built submission artifact.
func (p *Printer) PrintArtifact(artifact *submission.Artifact) {
	if artifact == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", artifact.FilePath))
	sb.WriteString(fmt.Sprintf("Records:  %d", len(artifact.Items)))
	p.printBox("Submission Artifact", sb.String())
}

// PrintModelRecord outputs the record about to be announced to the ledger.
func (p *Printer) PrintModelRecord(rec record.ModelRecord) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Namespace:    %s\n", rec.Namespace))
	sb.WriteString(fmt.Sprintf("Commit:       %s\n", rec.CommitRef))
	sb.WriteString(fmt.Sprintf("Competition:  %s", rec.CompetitionID))
	p.printBox("Model Record", sb.String())
}
