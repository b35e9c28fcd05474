package audit

import (
	"time"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/report"
	"github.com/temirov/tagaudit/internal/workspace"
)

// FailOnNone disables the failure threshold.
const FailOnNone = "none"

// CommandOptions captures the resolved parameters for one audit run.
type CommandOptions struct {
	SnapshotPath  string
	Format        report.Format
	OutputPath    string
	Workspaces    int
	WorkspaceName string
	AccountName   string
	FailOn        findings.Severity
	Concurrent    bool
	Colorize      bool
	Clock         Clock
}

// FailOnChoices lists the accepted failure threshold values.
func FailOnChoices() []string {
	choices := make([]string, 0, len(findings.Severities())+1)
	for _, severity := range findings.Severities() {
		choices = append(choices, string(severity))
	}
	return append(choices, FailOnNone)
}

// ApplyMetadataOverrides replaces snapshot metadata with explicitly configured values.
// Zero workspace counts and empty names leave the snapshot's values in place.
func (options CommandOptions) ApplyMetadataOverrides(metadata workspace.Metadata) workspace.Metadata {
	resolved := metadata
	if options.Workspaces > 0 {
		resolved.TotalWorkspaces = options.Workspaces
	}
	if len(options.WorkspaceName) > 0 {
		resolved.CurrentWorkspaceName = options.WorkspaceName
	}
	return resolved
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Result summarizes a completed audit run.
type Result struct {
	Findings    []findings.Finding
	Summary     report.Summary
	Destination string
}
