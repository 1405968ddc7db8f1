package analysis

import "strings"

// Query kinds, in the order they are issued.
const (
	KindMetadata    = "metadata"
	KindRisks       = "risks"
	KindSummary     = "summary"
	KindObligations = "obligations"
	KindDates       = "dates"
)

const MetadataPrompt = `Extract metadata from this legal document:
- Parties involved
- Effective date
- Document type
- Key stakeholders
Format as JSON:
`

const RisksPrompt = `Identify potential legal risks in this document:
- Unbalanced obligations
- Ambiguous terms
- Compliance issues
Format as bullet points:
`

const ObligationsPrompt = "List all party obligations from this legal clause:\n"

const DatesPrompt = "Extract all critical dates and deadlines in YYYY-MM-DD format:\n"

// SummaryPrompt asks for a three-bullet summary of the named clause.
func SummaryPrompt(sectionName string) string {
	var sb strings.Builder
	sb.WriteString("Summarize this ")
	sb.WriteString(strings.ReplaceAll(sectionName, "_", " "))
	sb.WriteString(" clause in 3 bullet points:\n")
	return sb.String()
}
