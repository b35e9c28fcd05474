package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/tagaudit/internal/audit"
	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/report"
	"github.com/temirov/tagaudit/internal/utils"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	serviceSnapshotPathConstant    = "/snapshots/workspace.json"
	serviceOutputDirectoryConstant = "/exports"
	serviceSubtestTemplateConstant = "%d_%s"
)

type stubSnapshotLoader struct {
	document      workspace.Document
	err           error
	requestedPath string
}

func (loader *stubSnapshotLoader) Load(snapshotPath string) (workspace.Document, error) {
	loader.requestedPath = snapshotPath
	return loader.document, loader.err
}

type stubFileInfo struct {
	os.FileInfo
	directory bool
}

func (info stubFileInfo) IsDir() bool {
	return info.directory
}

type closingBuffer struct {
	bytes.Buffer
	closed bool
}

func (buffer *closingBuffer) Close() error {
	buffer.closed = true
	return nil
}

type stubOutputFileSystem struct {
	directories map[string]bool
	created     map[string]*closingBuffer
	createError error
}

func newStubOutputFileSystem(directories ...string) *stubOutputFileSystem {
	fileSystem := &stubOutputFileSystem{directories: map[string]bool{}, created: map[string]*closingBuffer{}}
	for _, directory := range directories {
		fileSystem.directories[directory] = true
	}
	return fileSystem
}

func (fileSystem *stubOutputFileSystem) Stat(path string) (os.FileInfo, error) {
	if fileSystem.directories[path] {
		return stubFileInfo{directory: true}, nil
	}
	return nil, os.ErrNotExist
}

func (fileSystem *stubOutputFileSystem) Create(path string) (io.WriteCloser, error) {
	if fileSystem.createError != nil {
		return nil, fileSystem.createError
	}
	buffer := &closingBuffer{}
	fileSystem.created[path] = buffer
	return buffer, nil
}

func serviceDocument() workspace.Document {
	return workspace.Document{
		Snapshot: workspace.Snapshot{
			Tags: []workspace.Tag{
				{ID: "1", Name: "HTML - Loader", Type: workspace.TagTypeCustomHTML, FiringTriggerIDs: []string{"5"}, Parameters: map[string]any{"html": "<script>eval(payload)</script>"}},
				{ID: "2", Name: "ADS - Conversion", Type: "awct"},
			},
			Triggers:  []workspace.Trigger{{ID: "5", Name: "All Pages"}},
			Variables: []workspace.Variable{},
		},
		Metadata:         workspace.Metadata{TotalWorkspaces: 1, CurrentWorkspaceName: "Launch"},
		MetadataProvided: true,
	}
}

func TestServiceRunWritesReportToOutputWriter(testInstance *testing.T) {
	loader := &stubSnapshotLoader{document: serviceDocument()}
	var outputBuffer bytes.Buffer
	service := audit.NewService(loader, newStubOutputFileSystem(), &outputBuffer, zap.NewNop())

	result, runError := service.Run(context.Background(), audit.CommandOptions{
		SnapshotPath: serviceSnapshotPathConstant,
		Format:       report.FormatCSV,
	})
	require.NoError(testInstance, runError)

	expectedFindings := []findings.Finding{
		findings.New(findings.SeverityError, findings.CategoryTags, "Tag has no triggers (Ghost Tag)", "ADS - Conversion"),
		findings.New(findings.SeverityError, findings.CategoryConsent, "Marketing tag likely missing Consent Mode v2", "ADS - Conversion"),
		findings.New(findings.SeverityError, findings.CategorySecurity, "Contains 'eval()' (High Security Risk)", "HTML - Loader"),
	}
	require.Equal(testInstance, serviceSnapshotPathConstant, loader.requestedPath)
	require.Equal(testInstance, expectedFindings, result.Findings)
	require.Equal(testInstance, "stdout", result.Destination)
	require.Equal(testInstance, report.Summary{Errors: 3, TotalTags: 2, TotalTriggers: 1}, result.Summary)
	require.Equal(testInstance, report.EncodeCSV(expectedFindings), outputBuffer.String())
}

func TestServiceRunResolvesOutputDestination(testInstance *testing.T) {
	generatedAt := time.Date(2024, time.March, 7, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name                string
		outputPath          string
		format              report.Format
		expectedDestination string
	}{
		{
			name:                "directory_csv",
			outputPath:          serviceOutputDirectoryConstant,
			format:              report.FormatCSV,
			expectedDestination: filepath.Join(serviceOutputDirectoryConstant, "GTM_Audit_Acme_2024-03-07.csv"),
		},
		{
			name:                "directory_json",
			outputPath:          serviceOutputDirectoryConstant,
			format:              report.FormatJSON,
			expectedDestination: filepath.Join(serviceOutputDirectoryConstant, "GTM_Audit_Acme_2024-03-07.json"),
		},
		{
			name:                "explicit_file",
			outputPath:          "/exports/audit.sarif",
			format:              report.FormatSARIF,
			expectedDestination: "/exports/audit.sarif",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(serviceSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			fileSystem := newStubOutputFileSystem(serviceOutputDirectoryConstant)
			var outputBuffer bytes.Buffer
			service := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, fileSystem, &outputBuffer, nil)

			result, runError := service.Run(context.Background(), audit.CommandOptions{
				SnapshotPath: serviceSnapshotPathConstant,
				Format:       testCase.format,
				OutputPath:   testCase.outputPath,
				AccountName:  "Acme",
				Clock:        fixedClock{instant: generatedAt},
			})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedDestination, result.Destination)
			require.Empty(testInstance, outputBuffer.String())

			createdFile, created := fileSystem.created[testCase.expectedDestination]
			require.True(testInstance, created)
			require.True(testInstance, createdFile.closed)
			require.NotEmpty(testInstance, createdFile.String())
		})
	}
}

func TestServiceRunAppliesMetadataOverrides(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	service := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, nil, &outputBuffer, nil)

	result, runError := service.Run(context.Background(), audit.CommandOptions{
		SnapshotPath:  serviceSnapshotPathConstant,
		Format:        report.FormatCSV,
		Workspaces:    4,
		WorkspaceName: workspace.DefaultWorkspaceName,
	})
	require.NoError(testInstance, runError)
	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityError, findings.CategoryTags, "Tag has no triggers (Ghost Tag)", "ADS - Conversion"),
		findings.New(findings.SeverityError, findings.CategoryConsent, "Marketing tag likely missing Consent Mode v2", "ADS - Conversion"),
		findings.New(findings.SeverityError, findings.CategorySecurity, "Contains 'eval()' (High Security Risk)", "HTML - Loader"),
		findings.New(findings.SeverityWarning, findings.CategoryHygiene, "4 active workspaces found. High risk of conflicts.", ""),
		findings.New(findings.SeverityWarning, findings.CategoryHygiene, "Workspace is named 'Default Workspace'. Rename to describe changes.", ""),
	}, result.Findings)
}

func TestServiceRunEnforcesFailureThreshold(testInstance *testing.T) {
	var outputBuffer bytes.Buffer
	service := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, nil, &outputBuffer, nil)

	result, runError := service.Run(context.Background(), audit.CommandOptions{
		SnapshotPath: serviceSnapshotPathConstant,
		Format:       report.FormatJSON,
		FailOn:       findings.SeverityError,
	})

	require.ErrorIs(testInstance, runError, audit.ErrFindingsAtThreshold)
	require.EqualError(testInstance, runError, "audit findings reached the failure threshold: 3 finding(s) at or above error")
	require.Len(testInstance, result.Findings, 3)
	require.NotEmpty(testInstance, outputBuffer.String())
}

func TestServiceRunPropagatesFailures(testInstance *testing.T) {
	loadFailure := errors.New("snapshot unavailable")
	createFailure := errors.New("read-only file system")

	_, loadError := audit.NewService(&stubSnapshotLoader{err: loadFailure}, nil, nil, nil).
		Run(context.Background(), audit.CommandOptions{SnapshotPath: serviceSnapshotPathConstant, Format: report.FormatCSV})
	require.ErrorIs(testInstance, loadError, loadFailure)

	fileSystem := newStubOutputFileSystem()
	fileSystem.createError = createFailure
	_, createError := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, fileSystem, nil, nil).
		Run(context.Background(), audit.CommandOptions{SnapshotPath: serviceSnapshotPathConstant, Format: report.FormatCSV, OutputPath: "/exports/audit.csv"})
	require.ErrorIs(testInstance, createError, createFailure)
	require.EqualError(testInstance, createError, "unable to create report file /exports/audit.csv: read-only file system")

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	_, cancelledError := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, nil, nil, nil).
		Run(cancelledContext, audit.CommandOptions{SnapshotPath: serviceSnapshotPathConstant, Format: report.FormatCSV})
	require.ErrorIs(testInstance, cancelledError, context.Canceled)
}

func TestServiceRunLogsReportSummary(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	service := audit.NewService(&stubSnapshotLoader{document: serviceDocument()}, nil, io.Discard, zap.New(observedCore))

	executionContext := utils.WithConfigurationFile(context.Background(), "/etc/tagaudit/config.yaml")
	_, runError := service.Run(executionContext, audit.CommandOptions{SnapshotPath: serviceSnapshotPathConstant, Format: report.FormatYAML})
	require.NoError(testInstance, runError)

	entries := observedLogs.FilterMessage("workspace audit reported").All()
	require.Len(testInstance, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(testInstance, serviceSnapshotPathConstant, fields["snapshot"])
	require.Equal(testInstance, "yaml", fields["format"])
	require.Equal(testInstance, "stdout", fields["destination"])
	require.EqualValues(testInstance, 3, fields["errors"])
	require.Equal(testInstance, "/etc/tagaudit/config.yaml", fields["configuration"])
}
