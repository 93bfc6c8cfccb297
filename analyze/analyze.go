// Package analyze holds the types shared by the per-signal analyzers.
package analyze

// Severity grades how problematic a detected issue is.
type Severity string

// Severity buckets, ordered from least to most problematic.
const (
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
)

// Rank returns a sortable rank: higher means more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 2
	case SeverityModerate:
		return 1
	default:
		return 0
	}
}
