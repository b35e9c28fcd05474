package audit

import (
	"fmt"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	workspaceCountThresholdConstant       = 3
	workspaceCountMessageTemplateConstant = "%d active workspaces found. High risk of conflicts."
	defaultWorkspaceNameMessageConstant   = "Workspace is named 'Default Workspace'. Rename to describe changes."
)

// EvaluateHygiene reports workspace-level process problems.
func EvaluateHygiene(_ workspace.Snapshot, metadata workspace.Metadata) []findings.Finding {
	hygieneFindings := []findings.Finding{}

	if metadata.TotalWorkspaces > workspaceCountThresholdConstant {
		hygieneFindings = append(hygieneFindings, findings.New(
			findings.SeverityWarning,
			findings.CategoryHygiene,
			fmt.Sprintf(workspaceCountMessageTemplateConstant, metadata.TotalWorkspaces),
			"",
		))
	}

	if metadata.CurrentWorkspaceName == workspace.DefaultWorkspaceName {
		hygieneFindings = append(hygieneFindings, findings.New(
			findings.SeverityWarning,
			findings.CategoryHygiene,
			defaultWorkspaceNameMessageConstant,
			"",
		))
	}

	return hygieneFindings
}
