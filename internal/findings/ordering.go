package findings

import "sort"

// SortBySeverity returns a copy of the findings ordered error, warning, info.
// Findings of equal severity keep their relative order.
func SortBySeverity(unordered []Finding) []Finding {
	ordered := make([]Finding, len(unordered))
	copy(ordered, unordered)
	sort.SliceStable(ordered, func(leftIndex int, rightIndex int) bool {
		return ordered[leftIndex].Severity.Rank() < ordered[rightIndex].Severity.Rank()
	})
	return ordered
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(auditFindings []Finding) map[Severity]int {
	counts := make(map[Severity]int, len(severityRanks))
	for _, severity := range Severities() {
		counts[severity] = 0
	}
	for _, finding := range auditFindings {
		counts[finding.Severity]++
	}
	return counts
}

// CountAtLeast counts findings at least as urgent as the threshold.
func CountAtLeast(auditFindings []Finding, threshold Severity) int {
	count := 0
	for _, finding := range auditFindings {
		if finding.Severity.AtLeast(threshold) {
			count++
		}
	}
	return count
}

// AnyAtLeast reports whether any finding is at least as urgent as the threshold.
func AnyAtLeast(auditFindings []Finding, threshold Severity) bool {
	return CountAtLeast(auditFindings, threshold) > 0
}
