package audit

import (
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	ghostTagMessageConstant                 = "Tag has no triggers (Ghost Tag)"
	pausedTagMessageConstant                = "Tag is paused"
	duplicateTagMessageTemplateConstant     = "Potential duplicate of \"%s\""
	missingConsentMessageConstant           = "Marketing tag likely missing Consent Mode v2"
	consentSettingsMarkerConstant           = "consentSettings"
	duplicateSignatureSeparatorConstant     = "-"
	duplicateSignatureTriggerJoinerConstant = ","
)

var marketingNameMarkers = []string{"GA4", "ADS", "META", "FB", "CAPI", "TIKTOK", "LNK", "INSIGHT"}

// EvaluateTags inspects every tag for ghost, paused, duplicate, and consent problems, in that order per tag.
func EvaluateTags(snapshot workspace.Snapshot, _ workspace.Metadata) []findings.Finding {
	tagFindings := []findings.Finding{}
	firstTagNameBySignature := map[string]string{}

	for _, tag := range snapshot.Tags {
		if tag.IsGhost() {
			tagFindings = append(tagFindings, findings.New(findings.SeverityError, findings.CategoryTags, ghostTagMessageConstant, tag.Name))
		}

		if tag.Paused {
			tagFindings = append(tagFindings, findings.New(findings.SeverityInfo, findings.CategoryTags, pausedTagMessageConstant, tag.Name))
		}

		if !tag.IsGhost() {
			signature := duplicateSignature(tag)
			if firstTagName, seen := firstTagNameBySignature[signature]; seen {
				tagFindings = append(tagFindings, findings.New(
					findings.SeverityWarning,
					findings.CategoryTags,
					fmt.Sprintf(duplicateTagMessageTemplateConstant, firstTagName),
					tag.Name,
				))
			} else {
				firstTagNameBySignature[signature] = tag.Name
			}
		}

		if isMarketingTagName(tag.Name) && !strings.Contains(serialize(tag.Attributes)+serialize(tag.Parameters), consentSettingsMarkerConstant) {
			tagFindings = append(tagFindings, findings.New(findings.SeverityError, findings.CategoryConsent, missingConsentMessageConstant, tag.Name))
		}
	}

	return tagFindings
}

// duplicateSignature combines the tag type with its sorted trigger identifiers. The tag itself is left untouched.
func duplicateSignature(tag workspace.Tag) string {
	sortedTriggerIDs := append([]string(nil), tag.FiringTriggerIDs...)
	sort.Strings(sortedTriggerIDs)
	return tag.Type + duplicateSignatureSeparatorConstant + strings.Join(sortedTriggerIDs, duplicateSignatureTriggerJoinerConstant)
}

func isMarketingTagName(tagName string) bool {
	upperName := strings.ToUpper(tagName)
	for _, marker := range marketingNameMarkers {
		if strings.Contains(upperName, marker) {
			return true
		}
	}
	return false
}
