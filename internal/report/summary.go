package report

import (
	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

// Summary tallies findings by severity alongside the size of the audited workspace.
type Summary struct {
	Errors         int `json:"errors" yaml:"errors"`
	Warnings       int `json:"warnings" yaml:"warnings"`
	Infos          int `json:"infos" yaml:"infos"`
	TotalTags      int `json:"totalTags" yaml:"totalTags"`
	TotalTriggers  int `json:"totalTriggers" yaml:"totalTriggers"`
	TotalVariables int `json:"totalVariables" yaml:"totalVariables"`
}

// Summarize computes the Summary for an audit run.
func Summarize(auditFindings []findings.Finding, snapshot workspace.Snapshot) Summary {
	counts := findings.CountBySeverity(auditFindings)
	return Summary{
		Errors:         counts[findings.SeverityError],
		Warnings:       counts[findings.SeverityWarning],
		Infos:          counts[findings.SeverityInfo],
		TotalTags:      len(snapshot.Tags),
		TotalTriggers:  len(snapshot.Triggers),
		TotalVariables: len(snapshot.Variables),
	}
}

// Perfect reports whether the audit produced no findings at all.
func (summary Summary) Perfect() bool {
	return summary.Errors == 0 && summary.Warnings == 0 && summary.Infos == 0
}
