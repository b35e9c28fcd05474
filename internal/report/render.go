package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/tagaudit/internal/findings"
)

const (
	formatTableValueConstant          = "table"
	formatCSVValueConstant            = "csv"
	formatJSONValueConstant           = "json"
	formatYAMLValueConstant           = "yaml"
	formatSARIFValueConstant          = "sarif"
	textFileExtensionConstant         = ".txt"
	csvFileExtensionConstant          = ".csv"
	jsonFileExtensionConstant         = ".json"
	yamlFileExtensionConstant         = ".yaml"
	sarifFileExtensionConstant        = ".sarif"
	unsupportedFormatTemplateConstant = "unsupported report format: %s"
	renderErrorTemplateConstant       = "unable to render %s report: %w"
	jsonIndentConstant                = "  "
	yamlIndentConstant                = 2
)

// Format selects a report encoding.
type Format string

// Supported report formats.
const (
	FormatTable Format = Format(formatTableValueConstant)
	FormatCSV   Format = Format(formatCSVValueConstant)
	FormatJSON  Format = Format(formatJSONValueConstant)
	FormatYAML  Format = Format(formatYAMLValueConstant)
	FormatSARIF Format = Format(formatSARIFValueConstant)
)

var formatFileExtensions = map[Format]string{
	FormatTable: textFileExtensionConstant,
	FormatCSV:   csvFileExtensionConstant,
	FormatJSON:  jsonFileExtensionConstant,
	FormatYAML:  yamlFileExtensionConstant,
	FormatSARIF: sarifFileExtensionConstant,
}

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML, FormatSARIF}
}

// FormatNames lists the supported formats as strings for flag usage text.
func FormatNames() []string {
	names := make([]string, 0, len(formatFileExtensions))
	for _, format := range Formats() {
		names = append(names, string(format))
	}
	return names
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(rawFormat string) (Format, error) {
	candidate := Format(strings.ToLower(strings.TrimSpace(rawFormat)))
	if _, supported := formatFileExtensions[candidate]; !supported {
		return "", fmt.Errorf(unsupportedFormatTemplateConstant, rawFormat)
	}
	return candidate, nil
}

// FileExtension returns the conventional file extension for the format.
func (format Format) FileExtension() string {
	return formatFileExtensions[format]
}

// ExportFileNameForFormat names a report file the way ExportFileName does, with the format's extension.
func ExportFileNameForFormat(format Format, accountName string, exportDate time.Time) string {
	csvName := ExportFileName(accountName, exportDate)
	return strings.TrimSuffix(csvName, csvFileExtensionConstant) + format.FileExtension()
}

// Document is everything a renderer needs for one audit run.
type Document struct {
	AccountName   string             `json:"account,omitempty" yaml:"account,omitempty"`
	WorkspaceName string             `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	GeneratedAt   time.Time          `json:"generatedAt" yaml:"generatedAt"`
	Summary       Summary            `json:"summary" yaml:"summary"`
	Findings      []findings.Finding `json:"findings" yaml:"findings"`
}

// Render writes the document to writer in the requested format.
func Render(writer io.Writer, format Format, document Document) error {
	if document.Findings == nil {
		document.Findings = []findings.Finding{}
	}

	var renderError error
	switch format {
	case FormatTable:
		renderError = RenderTable(writer, document, false)
	case FormatCSV:
		renderError = WriteCSV(writer, document.Findings)
	case FormatJSON:
		renderError = renderJSON(writer, document)
	case FormatYAML:
		renderError = renderYAML(writer, document)
	case FormatSARIF:
		renderError = RenderSARIF(writer, document)
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}

	if renderError != nil {
		return fmt.Errorf(renderErrorTemplateConstant, format, renderError)
	}
	return nil
}

func renderJSON(writer io.Writer, document Document) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", jsonIndentConstant)
	encoder.SetEscapeHTML(false)
	return encoder.Encode(document)
}

func renderYAML(writer io.Writer, document Document) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(document); encodeError != nil {
		return encodeError
	}
	return encoder.Close()
}
