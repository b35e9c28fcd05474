package audit

import (
	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const orphanTriggerMessageConstant = "Trigger is not used by any tag"

// EvaluateTriggers reports triggers that no tag fires on.
func EvaluateTriggers(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	usedTriggerIDs := map[string]struct{}{}
	for _, tag := range snapshot.Tags {
		for _, triggerID := range tag.FiringTriggerIDs {
			usedTriggerIDs[triggerID] = struct{}{}
		}
	}

	triggerFindings := []findings.Finding{}
	for _, trigger := range snapshot.Triggers {
		if _, used := usedTriggerIDs[trigger.ID]; used {
			continue
		}
		triggerFindings = append(triggerFindings, findings.New(findings.SeverityWarning, findings.CategoryTriggers, orphanTriggerMessageConstant, trigger.Name))
	}
	return triggerFindings
}
