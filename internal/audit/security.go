package audit

import (
	"strings"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	documentWriteMarkerConstant  = "document.write"
	evalMarkerConstant           = "eval("
	documentWriteMessageConstant = "Contains 'document.write' (Performance/Security Risk)"
	evalMessageConstant          = "Contains 'eval()' (High Security Risk)"
)

// EvaluateSecurity scans custom HTML tags for risky script constructs.
func EvaluateSecurity(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	securityFindings := []findings.Finding{}
	for _, tag := range snapshot.Tags {
		if tag.Type != workspace.TagTypeCustomHTML {
			continue
		}

		parameterText := serialize(tag.Parameters)
		if strings.Contains(parameterText, documentWriteMarkerConstant) {
			securityFindings = append(securityFindings, findings.New(findings.SeverityError, findings.CategorySecurity, documentWriteMessageConstant, tag.Name))
		}
		if strings.Contains(parameterText, evalMarkerConstant) {
			securityFindings = append(securityFindings, findings.New(findings.SeverityError, findings.CategorySecurity, evalMessageConstant, tag.Name))
		}
	}
	return securityFindings
}
