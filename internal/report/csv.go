package report

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/temirov/tagaudit/internal/findings"
)

const (
	csvHeaderConstant                   = "Severity,Category,Issue,Item Name"
	csvFieldSeparatorConstant           = ","
	csvRowSeparatorConstant             = "\n"
	csvQuoteConstant                    = `"`
	csvEscapedQuoteConstant             = `""`
	csvColumnCountConstant              = 4
	exportFileNameTemplateConstant      = "GTM_Audit_%s_%s.csv"
	exportDateLayoutConstant            = "2006-01-02"
	exportAccountReplacementConstant    = "_"
	csvWriteErrorTemplateConstant       = "unable to write audit export: %w"
	csvReadErrorTemplateConstant        = "unable to read audit export: %w"
	csvHeaderMismatchTemplateConstant   = "unexpected audit export header %q"
	csvRowSeverityErrorTemplateConstant = "audit export row %d: %w"
	csvRowColumnsErrorTemplateConstant  = "audit export row %d has %d columns, expected %d"
	csvRecordErrorTemplateConstant      = "record %d: %w"
	csvCarriageReturnConstant           = '\r'
	csvLineFeedConstant                 = '\n'
	csvFieldSeparatorByteConstant       = ','
	csvQuoteByteConstant                = '"'
)

var (
	// ErrEmptyExport indicates that an export contained no header row.
	ErrEmptyExport = errors.New("audit export is empty")
	// ErrUnterminatedQuote indicates that a quoted field never closes.
	ErrUnterminatedQuote = errors.New("quoted field is not terminated")
	// ErrUnexpectedCharacter indicates text between a closing quote and the next separator.
	ErrUnexpectedCharacter = errors.New("unexpected character after quoted field")
)

var nonAlphanumericPattern = regexp.MustCompile(`[^a-zA-Z0-9]`)

// EncodeCSV renders findings as the audit export: a header row followed by one row per finding,
// joined by newlines without a trailing newline. Message and item columns are always quoted.
func EncodeCSV(auditFindings []findings.Finding) string {
	rows := make([]string, 0, len(auditFindings)+1)
	rows = append(rows, csvHeaderConstant)
	for _, finding := range auditFindings {
		rows = append(rows, strings.Join([]string{
			strings.ToUpper(string(finding.Severity)),
			string(finding.Category),
			quoteField(finding.Message),
			quoteField(finding.ItemName),
		}, csvFieldSeparatorConstant))
	}
	return strings.Join(rows, csvRowSeparatorConstant)
}

// WriteCSV writes the audit export to writer.
func WriteCSV(writer io.Writer, auditFindings []findings.Finding) error {
	if _, writeError := io.WriteString(writer, EncodeCSV(auditFindings)); writeError != nil {
		return fmt.Errorf(csvWriteErrorTemplateConstant, writeError)
	}
	return nil
}

// ParseCSV reads an audit export back into findings with lower-case severities. Quoted fields keep their
// content byte for byte, including carriage returns.
func ParseCSV(reader io.Reader) ([]findings.Finding, error) {
	content, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, readError)
	}

	records, parseError := parseExportRecords(string(content))
	if parseError != nil {
		return nil, fmt.Errorf(csvReadErrorTemplateConstant, parseError)
	}
	if len(records) == 0 {
		return nil, ErrEmptyExport
	}

	header := strings.Join(records[0], csvFieldSeparatorConstant)
	if header != csvHeaderConstant {
		return nil, fmt.Errorf(csvHeaderMismatchTemplateConstant, header)
	}

	parsedFindings := make([]findings.Finding, 0, len(records)-1)
	for recordIndex, record := range records[1:] {
		if len(record) != csvColumnCountConstant {
			return nil, fmt.Errorf(csvRowColumnsErrorTemplateConstant, recordIndex+1, len(record), csvColumnCountConstant)
		}
		severity, severityError := findings.ParseSeverity(record[0])
		if severityError != nil {
			return nil, fmt.Errorf(csvRowSeverityErrorTemplateConstant, recordIndex+1, severityError)
		}
		parsedFindings = append(parsedFindings, findings.New(severity, findings.Category(record[1]), record[2], record[3]))
	}
	return parsedFindings, nil
}

// parseExportRecords splits export text into records. Rows end with LF or CRLF outside quotes and blank
// rows are skipped.
func parseExportRecords(content string) ([][]string, error) {
	records := [][]string{}
	position := 0
	for position < len(content) {
		if content[position] == csvLineFeedConstant {
			position++
			continue
		}
		record, nextPosition, recordError := parseExportRecord(content, position)
		if recordError != nil {
			return nil, fmt.Errorf(csvRecordErrorTemplateConstant, len(records), recordError)
		}
		records = append(records, record)
		position = nextPosition
	}
	return records, nil
}

func parseExportRecord(content string, position int) ([]string, int, error) {
	fields := []string{}
	for {
		if position < len(content) && content[position] == csvQuoteByteConstant {
			value, nextPosition, quoteError := parseQuotedField(content, position+1)
			if quoteError != nil {
				return nil, 0, quoteError
			}
			fields = append(fields, value)
			position = nextPosition
		} else {
			fieldEnd := position
			for fieldEnd < len(content) && content[fieldEnd] != csvFieldSeparatorByteConstant && content[fieldEnd] != csvLineFeedConstant {
				fieldEnd++
			}
			fields = append(fields, strings.TrimSuffix(content[position:fieldEnd], string(csvCarriageReturnConstant)))
			position = fieldEnd
		}

		if position >= len(content) {
			return fields, position, nil
		}
		switch content[position] {
		case csvFieldSeparatorByteConstant:
			position++
		case csvLineFeedConstant:
			return fields, position + 1, nil
		case csvCarriageReturnConstant:
			if position+1 < len(content) && content[position+1] == csvLineFeedConstant {
				return fields, position + 2, nil
			}
			return nil, 0, ErrUnexpectedCharacter
		default:
			return nil, 0, ErrUnexpectedCharacter
		}
	}
}

// parseQuotedField reads from just after an opening quote and returns the unescaped value together with
// the position following the closing quote.
func parseQuotedField(content string, position int) (string, int, error) {
	var builder strings.Builder
	for {
		quoteOffset := strings.IndexByte(content[position:], csvQuoteByteConstant)
		if quoteOffset < 0 {
			return "", 0, ErrUnterminatedQuote
		}
		builder.WriteString(content[position : position+quoteOffset])
		position += quoteOffset + 1
		if position < len(content) && content[position] == csvQuoteByteConstant {
			builder.WriteByte(csvQuoteByteConstant)
			position++
			continue
		}
		return builder.String(), position, nil
	}
}

// ExportFileName names the export for an account on a given day. Every character outside [A-Za-z0-9]
// in the account name becomes an underscore.
func ExportFileName(accountName string, exportDate time.Time) string {
	sanitizedAccount := nonAlphanumericPattern.ReplaceAllString(accountName, exportAccountReplacementConstant)
	return fmt.Sprintf(exportFileNameTemplateConstant, sanitizedAccount, exportDate.Format(exportDateLayoutConstant))
}

func quoteField(value string) string {
	return csvQuoteConstant + strings.ReplaceAll(value, csvQuoteConstant, csvEscapedQuoteConstant) + csvQuoteConstant
}
