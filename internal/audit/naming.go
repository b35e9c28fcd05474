package audit

import (
	"regexp"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const nonstandardPrefixMessageConstant = "Tag name does not start with a standard prefix"

// Only the leading characters are checked: "GA4_pageView" passes, "ga4_pageview" does not.
var standardPrefixPattern = regexp.MustCompile(`^[A-Z0-9]+`)

// EvaluateNaming reports tags whose names do not begin with an upper-case or numeric prefix.
func EvaluateNaming(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	namingFindings := []findings.Finding{}
	for _, tag := range snapshot.Tags {
		if standardPrefixPattern.MatchString(tag.Name) {
			continue
		}
		namingFindings = append(namingFindings, findings.New(findings.SeverityInfo, findings.CategoryNaming, nonstandardPrefixMessageConstant, tag.Name))
	}
	return namingFindings
}
