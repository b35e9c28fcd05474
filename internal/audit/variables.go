package audit

import (
	"strings"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	unusedVariableMessageConstant     = "Variable appears unused"
	domElementVariableMessageConstant = "Avoid DOM Element variables (fragile)"
)

// EvaluateVariables flags variables whose names never appear in tag or trigger configuration and variables
// that scrape the page DOM. Usage detection is a substring search, so short names can match unrelated text.
func EvaluateVariables(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	referenceText := serialize(snapshot.Tags) + serialize(snapshot.Triggers)

	variableFindings := []findings.Finding{}
	for _, variable := range snapshot.Variables {
		if !strings.Contains(referenceText, variable.Name) {
			variableFindings = append(variableFindings, findings.New(findings.SeverityWarning, findings.CategoryVariables, unusedVariableMessageConstant, variable.Name))
		}
		if variable.Type == workspace.VariableTypeDOMElement {
			variableFindings = append(variableFindings, findings.New(findings.SeverityWarning, findings.CategoryVariables, domElementVariableMessageConstant, variable.Name))
		}
	}
	return variableFindings
}
