package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/temirov/tagaudit/internal/findings"
)

const (
	tableTitleConstant                  = "Workspace audit"
	tableTitleAccountTemplateConstant   = "%s: %s"
	tableTitleWorkspaceTemplateConstant = "%s (%s)"
	tableSummaryTemplateConstant        = "%d errors, %d warnings, %d info, %d tags"
	perfectAuditMessageConstant         = "Perfect Audit! No issues found."
	tableSeverityHeaderConstant         = "Severity"
	tableCategoryHeaderConstant         = "Category"
	tableIssueHeaderConstant            = "Issue"
	tableItemHeaderConstant             = "Item Name"
	tableWorkspaceLevelItemConstant     = "-"
)

var severityColorAttributes = map[findings.Severity][]color.Attribute{
	findings.SeverityError:   {color.FgRed, color.Bold},
	findings.SeverityWarning: {color.FgYellow},
	findings.SeverityInfo:    {color.FgBlue},
}

// RenderTable writes a human-readable table: a summary title, one row per finding, and a totals footer.
// Severity cells are colored when colorize is true.
func RenderTable(writer io.Writer, document Document, colorize bool) error {
	tableWriter := table.NewWriter()
	tableWriter.SetOutputMirror(writer)
	tableWriter.SetTitle("%s", tableTitle(document))

	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tableWriter.SetStyle(style)

	tableWriter.AppendHeader(table.Row{tableSeverityHeaderConstant, tableCategoryHeaderConstant, tableIssueHeaderConstant, tableItemHeaderConstant})
	for _, finding := range document.Findings {
		itemName := finding.ItemName
		if len(itemName) == 0 {
			itemName = tableWorkspaceLevelItemConstant
		}
		tableWriter.AppendRow(table.Row{
			severityLabel(finding.Severity, colorize),
			string(finding.Category),
			finding.Message,
			itemName,
		})
	}

	summary := document.Summary
	if summary.Perfect() {
		tableWriter.AppendFooter(table.Row{perfectAuditMessageConstant})
	} else {
		tableWriter.AppendFooter(table.Row{fmt.Sprintf(tableSummaryTemplateConstant, summary.Errors, summary.Warnings, summary.Infos, summary.TotalTags)})
	}

	tableWriter.Render()
	return nil
}

func tableTitle(document Document) string {
	title := tableTitleConstant
	if len(document.AccountName) > 0 {
		title = fmt.Sprintf(tableTitleAccountTemplateConstant, title, document.AccountName)
	}
	if len(document.WorkspaceName) > 0 {
		title = fmt.Sprintf(tableTitleWorkspaceTemplateConstant, title, document.WorkspaceName)
	}
	return title
}

func severityLabel(severity findings.Severity, colorize bool) string {
	label := strings.ToUpper(string(severity))
	if !colorize {
		return label
	}
	attributes, known := severityColorAttributes[severity]
	if !known {
		return label
	}
	severityColor := color.New(attributes...)
	severityColor.EnableColor()
	return severityColor.Sprint(label)
}
