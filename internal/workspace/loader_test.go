package workspace_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	testJSONSnapshotConstant = `{
	"tags": [{"tagId": "1", "name": "HTML - Legacy", "type": "html", "firingTriggerId": ["2"]}],
	"triggers": [{"triggerId": "2", "name": "All Pages"}],
	"meta": {"totalWorkspaces": 2, "currentWorkspaceName": "Release"}
}`
	testYAMLSnapshotConstant = `tags:
  - id: "1"
    name: GA4 Config
    type: gaawc
    firingTriggerIds: ["2"]
triggers:
  - id: "2"
    name: All Pages
variables:
  - id: "5"
    name: promo_id
    type: v
`
)

type stubPathExpander struct {
	expansions map[string]string
}

func (expander stubPathExpander) Expand(candidatePath string) string {
	if expanded, found := expander.expansions[candidatePath]; found {
		return expanded
	}
	return candidatePath
}

func TestParseDocumentFormats(testInstance *testing.T) {
	testCases := []struct {
		name               string
		content            string
		expectedTagNames   []string
		expectedTriggerIDs []string
		expectedMetadata   bool
	}{
		{name: "json", content: testJSONSnapshotConstant, expectedTagNames: []string{"HTML - Legacy"}, expectedTriggerIDs: []string{"2"}, expectedMetadata: true},
		{name: "yaml", content: testYAMLSnapshotConstant, expectedTagNames: []string{"GA4 Config"}, expectedTriggerIDs: []string{"2"}, expectedMetadata: false},
		{name: "empty", content: "  \n", expectedTagNames: []string{}, expectedTriggerIDs: []string{}, expectedMetadata: false},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			document, parseError := workspace.ParseDocument([]byte(testCase.content))
			require.NoError(testInstance, parseError)

			tagNames := []string{}
			for _, tag := range document.Snapshot.Tags {
				tagNames = append(tagNames, tag.Name)
			}
			triggerIDs := []string{}
			for _, trigger := range document.Snapshot.Triggers {
				triggerIDs = append(triggerIDs, trigger.ID)
			}

			require.Equal(testInstance, testCase.expectedTagNames, tagNames)
			require.Equal(testInstance, testCase.expectedTriggerIDs, triggerIDs)
			require.Equal(testInstance, testCase.expectedMetadata, document.MetadataProvided)
		})
	}
}

func TestLoaderReadsFilesAndStandardInput(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	snapshotPath := filepath.Join(temporaryDirectory, "workspace.json")
	require.NoError(testInstance, os.WriteFile(snapshotPath, []byte(testJSONSnapshotConstant), 0o600))

	loader := workspace.NewLoaderWithDependencies(
		stubPathExpander{expansions: map[string]string{"~/workspace.json": snapshotPath}},
		os.ReadFile,
		strings.NewReader(testYAMLSnapshotConstant),
	)

	fileDocument, fileError := loader.Load("~/workspace.json")
	require.NoError(testInstance, fileError)
	require.Equal(testInstance, workspace.Metadata{TotalWorkspaces: 2, CurrentWorkspaceName: "Release"}, fileDocument.Metadata)
	require.Len(testInstance, fileDocument.Snapshot.Tags, 1)
	require.Equal(testInstance, []string{"2"}, fileDocument.Snapshot.Tags[0].FiringTriggerIDs)

	inputDocument, inputError := loader.Load(" - ")
	require.NoError(testInstance, inputError)
	require.Len(testInstance, inputDocument.Snapshot.Variables, 1)
	require.Equal(testInstance, "promo_id", inputDocument.Snapshot.Variables[0].Name)
}

func TestLoaderErrors(testInstance *testing.T) {
	failingReader := func(path string) ([]byte, error) {
		return nil, errors.New("permission denied")
	}
	loader := workspace.NewLoaderWithDependencies(nil, failingReader, nil)

	_, emptyPathError := loader.Load("   ")
	require.ErrorIs(testInstance, emptyPathError, workspace.ErrSnapshotPathRequired)

	_, readError := loader.Load("/snapshots/workspace.json")
	require.EqualError(testInstance, readError, "unable to read workspace snapshot /snapshots/workspace.json: permission denied")

	parsingLoader := workspace.NewLoaderWithDependencies(nil, func(path string) ([]byte, error) {
		return []byte(`{"tags": `), nil
	}, nil)
	_, parseError := parsingLoader.Load("broken.json")
	require.Error(testInstance, parseError)
	require.True(testInstance, strings.HasPrefix(parseError.Error(), "unable to parse workspace snapshot broken.json: "))
}
