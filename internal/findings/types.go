package findings

import (
	"fmt"
	"strings"
)

const (
	severityErrorValueConstant          = "error"
	severityWarningValueConstant        = "warning"
	severityInfoValueConstant           = "info"
	unsupportedSeverityTemplateConstant = "unsupported severity: %s"
	unknownSeverityRankConstant         = 3
	categoryHygieneValueConstant        = "Hygiene"
	categoryTagsValueConstant           = "Tags"
	categoryConsentValueConstant        = "Consent"
	categoryTriggersValueConstant       = "Triggers"
	categoryVariablesValueConstant      = "Variables"
	categoryGA4ValueConstant            = "GA4"
	categoryNamingValueConstant         = "Naming"
	categorySecurityValueConstant       = "Security"
)

// Severity grades how urgently a finding needs attention.
type Severity string

// Supported severities ordered from most to least urgent.
const (
	SeverityError   Severity = Severity(severityErrorValueConstant)
	SeverityWarning Severity = Severity(severityWarningValueConstant)
	SeverityInfo    Severity = Severity(severityInfoValueConstant)
)

var severityRanks = map[Severity]int{
	SeverityError:   0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// Rank returns the sort position of the severity. Lower ranks sort first; unknown severities sort last.
func (severity Severity) Rank() int {
	rank, known := severityRanks[severity]
	if !known {
		return unknownSeverityRankConstant
	}
	return rank
}

// AtLeast reports whether the severity is as urgent as the threshold or more.
func (severity Severity) AtLeast(threshold Severity) bool {
	return severity.Rank() <= threshold.Rank()
}

// ParseSeverity converts user input into a Severity, ignoring case and surrounding whitespace.
func ParseSeverity(rawSeverity string) (Severity, error) {
	candidate := Severity(strings.ToLower(strings.TrimSpace(rawSeverity)))
	if _, known := severityRanks[candidate]; !known {
		return "", fmt.Errorf(unsupportedSeverityTemplateConstant, rawSeverity)
	}
	return candidate, nil
}

// Severities lists every supported severity in rank order.
func Severities() []Severity {
	return []Severity{SeverityError, SeverityWarning, SeverityInfo}
}

// Category groups findings by the rule area that produced them.
type Category string

// Supported finding categories.
const (
	CategoryHygiene   Category = Category(categoryHygieneValueConstant)
	CategoryTags      Category = Category(categoryTagsValueConstant)
	CategoryConsent   Category = Category(categoryConsentValueConstant)
	CategoryTriggers  Category = Category(categoryTriggersValueConstant)
	CategoryVariables Category = Category(categoryVariablesValueConstant)
	CategoryGA4       Category = Category(categoryGA4ValueConstant)
	CategoryNaming    Category = Category(categoryNamingValueConstant)
	CategorySecurity  Category = Category(categorySecurityValueConstant)
)

// Categories lists every supported category.
func Categories() []Category {
	return []Category{
		CategoryHygiene,
		CategoryTags,
		CategoryConsent,
		CategoryTriggers,
		CategoryVariables,
		CategoryGA4,
		CategoryNaming,
		CategorySecurity,
	}
}

// Finding is a single audit observation. ItemName is empty for workspace-level findings.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Category Category `json:"category" yaml:"category"`
	Message  string   `json:"message" yaml:"message"`
	ItemName string   `json:"itemName" yaml:"itemName"`
}

// New constructs a Finding.
func New(severity Severity, category Category, message string, itemName string) Finding {
	return Finding{
		Severity: severity,
		Category: category,
		Message:  message,
		ItemName: itemName,
	}
}
