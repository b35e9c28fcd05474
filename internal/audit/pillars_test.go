package audit_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/tagaudit/internal/audit"
	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/workspace"
)

const testSubtestTemplateConstant = "%d_%s"

func TestEvaluateHygiene(testInstance *testing.T) {
	testCases := []struct {
		name             string
		metadata         workspace.Metadata
		expectedFindings []findings.Finding
	}{
		{
			name:             "quiet_workspace",
			metadata:         workspace.Metadata{TotalWorkspaces: 3, CurrentWorkspaceName: "Release 12"},
			expectedFindings: []findings.Finding{},
		},
		{
			name:     "too_many_workspaces",
			metadata: workspace.Metadata{TotalWorkspaces: 5, CurrentWorkspaceName: "Release 12"},
			expectedFindings: []findings.Finding{
				findings.New(findings.SeverityWarning, findings.CategoryHygiene, "5 active workspaces found. High risk of conflicts.", ""),
			},
		},
		{
			name:     "default_workspace_name",
			metadata: workspace.Metadata{TotalWorkspaces: 1, CurrentWorkspaceName: "Default Workspace"},
			expectedFindings: []findings.Finding{
				findings.New(findings.SeverityWarning, findings.CategoryHygiene, "Workspace is named 'Default Workspace'. Rename to describe changes.", ""),
			},
		},
		{
			name:             "default_name_is_case_sensitive",
			metadata:         workspace.Metadata{TotalWorkspaces: 1, CurrentWorkspaceName: "default workspace"},
			expectedFindings: []findings.Finding{},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedFindings, audit.EvaluateHygiene(workspace.Snapshot{}, testCase.metadata))
		})
	}
}

func TestEvaluateTagsGhostAndPaused(testInstance *testing.T) {
	snapshot := workspace.Snapshot{Tags: []workspace.Tag{
		{ID: "1", Name: "T1", FiringTriggerIDs: []string{}},
		{ID: "2", Name: "T2", Paused: true, FiringTriggerIDs: []string{"9"}},
		{ID: "3", Name: "T3"},
	}}

	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityError, findings.CategoryTags, "Tag has no triggers (Ghost Tag)", "T1"),
		findings.New(findings.SeverityInfo, findings.CategoryTags, "Tag is paused", "T2"),
		findings.New(findings.SeverityError, findings.CategoryTags, "Tag has no triggers (Ghost Tag)", "T3"),
	}, audit.EvaluateTags(snapshot, workspace.Metadata{}))
}

func TestEvaluateTagsDuplicatesReferenceFirstTag(testInstance *testing.T) {
	snapshot := workspace.Snapshot{Tags: []workspace.Tag{
		{ID: "1", Name: "HTML Pixel A", Type: "html", FiringTriggerIDs: []string{"20", "10"}},
		{ID: "2", Name: "HTML Pixel B", Type: "html", FiringTriggerIDs: []string{"10", "20"}},
		{ID: "3", Name: "HTML Pixel C", Type: "html", FiringTriggerIDs: []string{"20", "10"}},
		{ID: "4", Name: "HTML Pixel D", Type: "img", FiringTriggerIDs: []string{"10", "20"}},
		{ID: "5", Name: "HTML Pixel E", Type: "html", FiringTriggerIDs: []string{"10"}},
		{ID: "6", Name: "HTML Ghost A", Type: "html"},
		{ID: "7", Name: "HTML Ghost B", Type: "html"},
	}}

	tagFindings := audit.EvaluateTags(snapshot, workspace.Metadata{})

	duplicateFindings := []findings.Finding{}
	for _, finding := range tagFindings {
		if finding.Severity == findings.SeverityWarning {
			duplicateFindings = append(duplicateFindings, finding)
		}
	}
	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityWarning, findings.CategoryTags, `Potential duplicate of "HTML Pixel A"`, "HTML Pixel B"),
		findings.New(findings.SeverityWarning, findings.CategoryTags, `Potential duplicate of "HTML Pixel A"`, "HTML Pixel C"),
	}, duplicateFindings)
	require.Equal(testInstance, []string{"20", "10"}, snapshot.Tags[0].FiringTriggerIDs)
}

func TestEvaluateTagsDuplicateStateDoesNotLeakAcrossCalls(testInstance *testing.T) {
	snapshot := workspace.Snapshot{Tags: []workspace.Tag{
		{ID: "1", Name: "HTML One", Type: "html", FiringTriggerIDs: []string{"1"}},
	}}

	require.Empty(testInstance, audit.EvaluateTags(snapshot, workspace.Metadata{}))
	require.Empty(testInstance, audit.EvaluateTags(snapshot, workspace.Metadata{}))
}

func TestEvaluateTagsConsent(testInstance *testing.T) {
	testCases := []struct {
		name          string
		tag           workspace.Tag
		expectFinding bool
	}{
		{name: "marketing_without_consent", tag: workspace.Tag{Name: "GA4_Purchase", Type: "gaawe", Parameters: map[string]any{"eventName": "purchase"}}, expectFinding: true},
		{name: "marketing_without_parameters", tag: workspace.Tag{Name: "Meta CAPI Lead"}, expectFinding: true},
		{name: "lower_case_marker", tag: workspace.Tag{Name: "tiktok view", Parameters: map[string]any{}}, expectFinding: true},
		{name: "consent_in_tag_attributes", tag: workspace.Tag{Name: "META Lead", Attributes: map[string]any{"consentSettings": map[string]any{"consentStatus": "needed"}}}, expectFinding: false},
		{name: "marketing_with_consent", tag: workspace.Tag{Name: "FB Pixel", Parameters: map[string]any{"consentSettings": map[string]any{"consentStatus": "needed"}}}, expectFinding: false},
		{name: "consent_marker_nested_in_text", tag: workspace.Tag{Name: "LinkedIn Insight", Parameters: map[string]any{"note": "see consentSettings"}}, expectFinding: false},
		{name: "non_marketing", tag: workspace.Tag{Name: "HTML Chat Widget", Parameters: map[string]any{}}, expectFinding: false},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			tag := testCase.tag
			tag.FiringTriggerIDs = []string{"1"}
			tagFindings := audit.EvaluateTags(workspace.Snapshot{Tags: []workspace.Tag{tag}}, workspace.Metadata{})

			expected := []findings.Finding{}
			if testCase.expectFinding {
				expected = append(expected, findings.New(findings.SeverityError, findings.CategoryConsent, "Marketing tag likely missing Consent Mode v2", tag.Name))
			}
			require.Equal(testInstance, expected, tagFindings)
		})
	}
}

func TestEvaluateTriggers(testInstance *testing.T) {
	snapshot := workspace.Snapshot{
		Tags: []workspace.Tag{
			{Name: "A", FiringTriggerIDs: []string{"1", "2"}},
			{Name: "B", FiringTriggerIDs: []string{"2"}},
		},
		Triggers: []workspace.Trigger{
			{ID: "1", Name: "All Pages"},
			{ID: "3", Name: "Outbound Click"},
			{ID: "2", Name: "Form Submit"},
		},
	}

	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityWarning, findings.CategoryTriggers, "Trigger is not used by any tag", "Outbound Click"),
	}, audit.EvaluateTriggers(snapshot, workspace.Metadata{}))
}

func TestEvaluateVariables(testInstance *testing.T) {
	snapshot := workspace.Snapshot{
		Tags: []workspace.Tag{
			{Name: "GA4 Event", Parameters: map[string]any{"value": "{{transaction_total}}"}},
		},
		Triggers: []workspace.Trigger{
			{ID: "1", Name: "Checkout", Configuration: map[string]any{"filter": []any{map[string]any{"arg0": "{{page_path}}"}}}},
		},
		Variables: []workspace.Variable{
			{Name: "transaction_total", Type: "v"},
			{Name: "page_path", Type: "u"},
			{Name: "promo_id", Type: "v"},
			{Name: "hero_banner", Type: "dom"},
			{Name: "GA4 Event", Type: "dom"},
		},
	}

	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityWarning, findings.CategoryVariables, "Variable appears unused", "promo_id"),
		findings.New(findings.SeverityWarning, findings.CategoryVariables, "Variable appears unused", "hero_banner"),
		findings.New(findings.SeverityWarning, findings.CategoryVariables, "Avoid DOM Element variables (fragile)", "hero_banner"),
		findings.New(findings.SeverityWarning, findings.CategoryVariables, "Avoid DOM Element variables (fragile)", "GA4 Event"),
	}, audit.EvaluateVariables(snapshot, workspace.Metadata{}))
}

func TestEvaluateVariablesMatchesLineSeparatorNames(testInstance *testing.T) {
	snapshot := workspace.Snapshot{
		Tags: []workspace.Tag{
			{Name: "GA4 Event", Parameters: map[string]any{"value": "{{promo\u2028code}} {{hero\u2029slot}}", "path": `C:\u2028`}},
		},
		Variables: []workspace.Variable{
			{Name: "promo\u2028code", Type: "v"},
			{Name: "hero\u2029slot", Type: "v"},
			{Name: "C:\\\u2028", Type: "v"},
		},
	}

	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityWarning, findings.CategoryVariables, "Variable appears unused", "C:\\\u2028"),
	}, audit.EvaluateVariables(snapshot, workspace.Metadata{}))
}

func TestEvaluateGA4(testInstance *testing.T) {
	testCases := []struct {
		name             string
		tagTypes         []string
		expectedFindings []findings.Finding
	}{
		{name: "single_configuration", tagTypes: []string{"gaawc", "gaawe", "html"}, expectedFindings: []findings.Finding{}},
		{
			name:     "two_configurations",
			tagTypes: []string{"gaawc", "googtag"},
			expectedFindings: []findings.Finding{
				findings.New(findings.SeverityError, findings.CategoryGA4, "Multiple GA4 Config tags found (2)", ""),
			},
		},
		{
			name:     "three_configurations",
			tagTypes: []string{"googtag", "gaawc", "googtag"},
			expectedFindings: []findings.Finding{
				findings.New(findings.SeverityError, findings.CategoryGA4, "Multiple GA4 Config tags found (3)", ""),
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			snapshot := workspace.Snapshot{}
			for tagIndex, tagType := range testCase.tagTypes {
				snapshot.Tags = append(snapshot.Tags, workspace.Tag{Name: fmt.Sprintf("GA4 %d", tagIndex), Type: tagType})
			}
			require.Equal(testInstance, testCase.expectedFindings, audit.EvaluateGA4(snapshot, workspace.Metadata{}))
		})
	}
}

func TestEvaluateNamingChecksPrefixOnly(testInstance *testing.T) {
	testCases := []struct {
		tagName       string
		expectFinding bool
	}{
		{tagName: "GA4 - Config", expectFinding: false},
		{tagName: "OK_badSuffix", expectFinding: false},
		{tagName: "2024 Promo", expectFinding: false},
		{tagName: "ok_badSuffix", expectFinding: true},
		{tagName: "Meta Pixel", expectFinding: false},
		{tagName: "meta pixel", expectFinding: true},
		{tagName: "_internal", expectFinding: true},
		{tagName: "", expectFinding: true},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testSubtestTemplateConstant, testCaseIndex, testCase.tagName), func(testInstance *testing.T) {
			namingFindings := audit.EvaluateNaming(workspace.Snapshot{Tags: []workspace.Tag{{Name: testCase.tagName}}}, workspace.Metadata{})
			if !testCase.expectFinding {
				require.Empty(testInstance, namingFindings)
				return
			}
			require.Equal(testInstance, []findings.Finding{
				findings.New(findings.SeverityInfo, findings.CategoryNaming, "Tag name does not start with a standard prefix", testCase.tagName),
			}, namingFindings)
		})
	}
}

func TestEvaluateSecurity(testInstance *testing.T) {
	snapshot := workspace.Snapshot{Tags: []workspace.Tag{
		{Name: "HTML Both", Type: "html", Parameters: map[string]any{"parameter": []any{map[string]any{"key": "html", "value": "<script>document.write('<b>'); eval(payload)</script>"}}}},
		{Name: "HTML Write", Type: "html", Parameters: map[string]any{"html": "document.write(x)"}},
		{Name: "HTML Clean", Type: "html", Parameters: map[string]any{"html": "<script>evaluate()</script>"}},
		{Name: "Image With Eval", Type: "img", Parameters: map[string]any{"url": "eval(1)"}},
	}}

	require.Equal(testInstance, []findings.Finding{
		findings.New(findings.SeverityError, findings.CategorySecurity, "Contains 'document.write' (Performance/Security Risk)", "HTML Both"),
		findings.New(findings.SeverityError, findings.CategorySecurity, "Contains 'eval()' (High Security Risk)", "HTML Both"),
		findings.New(findings.SeverityError, findings.CategorySecurity, "Contains 'document.write' (Performance/Security Risk)", "HTML Write"),
	}, audit.EvaluateSecurity(snapshot, workspace.Metadata{}))
}

func TestEvaluateSecurityIgnoresTagAttributes(testInstance *testing.T) {
	document, parseError := workspace.ParseDocument([]byte(`{"tag":[{"tagId":"3","name":"HTML - Banner","type":"html","firingTriggerId":["1"],` +
		`"notes":"legacy: replaced document.write and eval( calls",` +
		`"parameter":[{"type":"template","key":"html","value":"<div>ok</div>"}]}]}`))
	require.NoError(testInstance, parseError)

	require.Empty(testInstance, audit.EvaluateSecurity(document.Snapshot, workspace.Metadata{}))
}
