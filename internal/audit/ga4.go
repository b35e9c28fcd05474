package audit

import (
	"fmt"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const multipleGA4ConfigurationMessageTemplateConstant = "Multiple GA4 Config tags found (%d)"

// EvaluateGA4 reports a single workspace-level error when more than one GA4 configuration tag exists.
func EvaluateGA4(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	configurationTagCount := 0
	for _, tag := range snapshot.Tags {
		if tag.Type == workspace.TagTypeGA4Configuration || tag.Type == workspace.TagTypeGoogleTag {
			configurationTagCount++
		}
	}

	if configurationTagCount <= 1 {
		return []findings.Finding{}
	}
	return []findings.Finding{
		findings.New(
			findings.SeverityError,
			findings.CategoryGA4,
			fmt.Sprintf(multipleGA4ConfigurationMessageTemplateConstant, configurationTagCount),
			"",
		),
	}
}
