package summary

import (
	"fmt"
	"strings"

	"github.com/carechart/carechart/internal/domain/record"
)

// taskInstruction is the fixed instruction prefixed to every rendered
// record. The document that follows it is the complete request payload.
const taskInstruction = "You are a clinical assistant. Summarize the following patient " +
	"record concisely for a treating physician. Highlight trends in the " +
	"measurements and any notable findings from the notes. Do not invent " +
	"information that is not in the record."

// Rendering bounds. A note longer than maxNoteChars is excerpted; a document
// that would exceed maxDocumentChars stops adding entries and says so.
const (
	maxNoteChars     = 2000
	maxDocumentChars = 20000
)

const truncationMarker = "(record truncated for length)"

// BuildDocument renders a merged timeline into the natural-language document
// sent to the summarizer. Three ordered sections: vitals history, doctor's
// notes, uploaded file references (names only, never contents). A section
// whose source collection is empty is omitted entirely, header included.
// Entries keep timeline order, so each section reads oldest first.
func BuildDocument(patientName string, timeline record.Timeline) string {
	var vitals, notes, files []string
	for _, e := range timeline {
		switch v := e.(type) {
		case *record.Vital:
			vitals = append(vitals, renderVital(v))
		case *record.Note:
			notes = append(notes, renderNote(v))
		case *record.FileMeta:
			files = append(files, fmt.Sprintf("- %s: %s", v.CreatedAt.Format("2006-01-02"), v.FileName))
		}
	}

	var b strings.Builder
	b.WriteString(taskInstruction)
	b.WriteString("\n\nPatient: ")
	b.WriteString(patientName)
	b.WriteString("\n")

	if len(vitals)+len(notes)+len(files) == 0 {
		b.WriteString("\nNo records on file.\n")
		return b.String()
	}

	writeSection(&b, "Vitals History:", vitals)
	writeSection(&b, "Doctor's Notes:", notes)
	writeSection(&b, "Uploaded Files:", files)
	return b.String()
}

// writeSection appends a titled section, stopping at the document bound.
// An empty section writes nothing, not even its header.
func writeSection(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	for _, line := range lines {
		if b.Len()+len(line) > maxDocumentChars {
			b.WriteString(truncationMarker)
			b.WriteString("\n")
			return
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func renderVital(v *record.Vital) string {
	var parts []string
	if v.BPSystolic != nil && v.BPDiastolic != nil {
		parts = append(parts, fmt.Sprintf("BP %d/%d", *v.BPSystolic, *v.BPDiastolic))
	}
	if v.HeartRateBPM != nil {
		parts = append(parts, fmt.Sprintf("heart rate %d bpm", *v.HeartRateBPM))
	}
	if v.TemperatureCelsius != nil {
		parts = append(parts, fmt.Sprintf("temperature %.1f C", *v.TemperatureCelsius))
	}
	if v.WeightKg != nil {
		parts = append(parts, fmt.Sprintf("weight %.1f kg", *v.WeightKg))
	}
	if v.OxygenSaturation != nil {
		parts = append(parts, fmt.Sprintf("SpO2 %.0f%%", *v.OxygenSaturation))
	}
	if v.RespiratoryRateBPM != nil {
		parts = append(parts, fmt.Sprintf("respiratory rate %d/min", *v.RespiratoryRateBPM))
	}
	if len(parts) == 0 {
		parts = append(parts, "no measurements recorded")
	}
	return fmt.Sprintf("- %s: %s", v.CreatedAt.Format("2006-01-02"), strings.Join(parts, ", "))
}

func renderNote(n *record.Note) string {
	author := "Unknown"
	if n.DoctorName != nil && *n.DoctorName != "" {
		author = *n.DoctorName
	}
	content := n.Content
	if len(content) > maxNoteChars {
		content = content[:maxNoteChars] + "..."
	}
	return fmt.Sprintf("- %s (%s): %s", n.CreatedAt.Format("2006-01-02"), author, content)
}
