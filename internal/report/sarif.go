package report

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/temirov/tagaudit/internal/findings"
)

const (
	sarifToolNameConstant                    = "tagaudit"
	sarifToolInformationURIConstant          = "https://github.com/temirov/tagaudit"
	sarifLevelErrorConstant                  = "error"
	sarifLevelWarningConstant                = "warning"
	sarifLevelNoteConstant                   = "note"
	sarifRuleDescriptionTemplateConstant     = "%s checks for tag-management workspaces"
	sarifReportCreationErrorTemplateConstant = "unable to create SARIF report: %w"
)

var sarifLevels = map[findings.Severity]string{
	findings.SeverityError:   sarifLevelErrorConstant,
	findings.SeverityWarning: sarifLevelWarningConstant,
	findings.SeverityInfo:    sarifLevelNoteConstant,
}

// RenderSARIF writes a SARIF 2.1.0 report with one rule per finding category. Item names become
// logical locations; workspace-level findings carry no location.
func RenderSARIF(writer io.Writer, document Document) error {
	sarifReport, creationError := BuildSARIF(document)
	if creationError != nil {
		return creationError
	}
	return sarifReport.PrettyWrite(writer)
}

// BuildSARIF converts the document into a SARIF report.
func BuildSARIF(document Document) (*sarif.Report, error) {
	sarifReport, creationError := sarif.New(sarif.Version210)
	if creationError != nil {
		return nil, fmt.Errorf(sarifReportCreationErrorTemplateConstant, creationError)
	}

	run := sarif.NewRunWithInformationURI(sarifToolNameConstant, sarifToolInformationURIConstant)
	for _, finding := range document.Findings {
		ruleID := string(finding.Category)
		run.AddRule(ruleID).
			WithName(ruleID).
			WithDescription(fmt.Sprintf(sarifRuleDescriptionTemplateConstant, ruleID))

		result := sarif.NewRuleResult(ruleID).
			WithMessage(sarif.NewTextMessage(finding.Message)).
			WithLevel(sarifLevel(finding.Severity))
		if len(finding.ItemName) > 0 {
			result.WithLocations([]*sarif.Location{
				sarif.NewLocation().WithLogicalLocations([]*sarif.LogicalLocation{
					sarif.NewLogicalLocation().WithName(finding.ItemName),
				}),
			})
		}
		run.AddResult(result)
	}

	sarifReport.AddRun(run)
	return sarifReport, nil
}

func sarifLevel(severity findings.Severity) string {
	if level, known := sarifLevels[severity]; known {
		return level
	}
	return sarifLevelNoteConstant
}
