package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/report"
	"github.com/temirov/tagaudit/internal/utils"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	standardOutputDestinationConstant = "stdout"
	outputCreateErrorTemplateConstant = "unable to create report file %s: %w"
	outputCloseErrorTemplateConstant  = "unable to close report file %s: %w"
	thresholdErrorTemplateConstant    = "%w: %d finding(s) at or above %s"
	auditReportedMessageConstant      = "workspace audit reported"
	logFieldSnapshotConstant          = "snapshot"
	logFieldDestinationConstant       = "destination"
	logFieldFormatConstant            = "format"
	logFieldErrorsConstant            = "errors"
	logFieldWarningsConstant          = "warnings"
	logFieldInfosConstant             = "infos"
	logFieldConfigurationConstant     = "configuration"
	outputFilePermissionsConstant     = 0o644
	outputFileFlagsConstant           = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
)

// ErrFindingsAtThreshold indicates that the audit produced findings at or above the configured failure severity.
var ErrFindingsAtThreshold = errors.New("audit findings reached the failure threshold")

// SnapshotLoader reads workspace snapshots.
type SnapshotLoader interface {
	Load(snapshotPath string) (workspace.Document, error)
}

// OutputFileSystem exposes the file operations needed to write reports.
type OutputFileSystem interface {
	Stat(path string) (os.FileInfo, error)
	Create(path string) (io.WriteCloser, error)
}

// OSFileSystem implements OutputFileSystem with the os package.
type OSFileSystem struct{}

// Stat returns file information for path.
func (OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// Create opens path for writing, truncating existing content.
func (OSFileSystem) Create(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, outputFileFlagsConstant, outputFilePermissionsConstant)
}

// Service loads a snapshot, audits it, renders the report, and enforces the failure threshold.
type Service struct {
	loader       SnapshotLoader
	fileSystem   OutputFileSystem
	outputWriter io.Writer
	logger       *zap.Logger
}

// NewService constructs a Service using the provided dependencies.
func NewService(loader SnapshotLoader, fileSystem OutputFileSystem, outputWriter io.Writer, logger *zap.Logger) *Service {
	if fileSystem == nil {
		fileSystem = OSFileSystem{}
	}
	if outputWriter == nil {
		outputWriter = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		loader:       loader,
		fileSystem:   fileSystem,
		outputWriter: outputWriter,
		logger:       logger,
	}
}

// Run executes one audit according to the provided options. The returned Result is populated even when
// the failure threshold is reached.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (Result, error) {
	document, loadError := service.loader.Load(options.SnapshotPath)
	if loadError != nil {
		return Result{}, loadError
	}

	metadata := options.ApplyMetadataOverrides(document.Metadata)
	engine := NewEngine(service.logger, options.Concurrent)
	auditFindings, auditError := engine.Audit(executionContext, document.Snapshot, metadata)
	if auditError != nil {
		return Result{}, auditError
	}

	clock := options.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	generatedAt := clock.Now()

	reportDocument := report.Document{
		AccountName:   options.AccountName,
		WorkspaceName: metadata.CurrentWorkspaceName,
		GeneratedAt:   generatedAt,
		Summary:       report.Summarize(auditFindings, document.Snapshot),
		Findings:      auditFindings,
	}

	destination, writeError := service.writeReport(options, reportDocument)
	if writeError != nil {
		return Result{}, writeError
	}

	logFields := []zap.Field{
		zap.String(logFieldSnapshotConstant, options.SnapshotPath),
		zap.String(logFieldFormatConstant, string(options.Format)),
		zap.String(logFieldDestinationConstant, destination),
		zap.Int(logFieldErrorsConstant, reportDocument.Summary.Errors),
		zap.Int(logFieldWarningsConstant, reportDocument.Summary.Warnings),
		zap.Int(logFieldInfosConstant, reportDocument.Summary.Infos),
	}
	if configurationFilePath, available := utils.ConfigurationFileFromContext(executionContext); available {
		logFields = append(logFields, zap.String(logFieldConfigurationConstant, configurationFilePath))
	}
	service.logger.Info(auditReportedMessageConstant, logFields...)

	result := Result{
		Findings:    auditFindings,
		Summary:     reportDocument.Summary,
		Destination: destination,
	}

	if len(options.FailOn) > 0 {
		if thresholdCount := findings.CountAtLeast(auditFindings, options.FailOn); thresholdCount > 0 {
			return result, fmt.Errorf(thresholdErrorTemplateConstant, ErrFindingsAtThreshold, thresholdCount, options.FailOn)
		}
	}
	return result, nil
}

func (service *Service) writeReport(options CommandOptions, reportDocument report.Document) (string, error) {
	if len(options.OutputPath) == 0 {
		return standardOutputDestinationConstant, render(service.outputWriter, options, reportDocument)
	}

	destination := options.OutputPath
	if fileInfo, statError := service.fileSystem.Stat(destination); statError == nil && fileInfo.IsDir() {
		destination = filepath.Join(destination, report.ExportFileNameForFormat(options.Format, options.AccountName, reportDocument.GeneratedAt))
	}

	outputFile, createError := service.fileSystem.Create(destination)
	if createError != nil {
		return destination, fmt.Errorf(outputCreateErrorTemplateConstant, destination, createError)
	}

	renderError := render(outputFile, options, reportDocument)
	closeError := outputFile.Close()
	if renderError != nil {
		return destination, renderError
	}
	if closeError != nil {
		return destination, fmt.Errorf(outputCloseErrorTemplateConstant, destination, closeError)
	}
	return destination, nil
}

func render(writer io.Writer, options CommandOptions, reportDocument report.Document) error {
	if options.Format == report.FormatTable && options.Colorize && len(options.OutputPath) == 0 {
		return report.RenderTable(writer, reportDocument, true)
	}
	return report.Render(writer, options.Format, reportDocument)
}
