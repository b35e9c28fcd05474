package audit

import "strings"

const (
	configurationSnapshotKeyConstant      = "snapshot"
	configurationFormatKeyConstant        = "format"
	configurationOutputKeyConstant        = "output"
	configurationWorkspacesKeyConstant    = "workspaces"
	configurationWorkspaceNameKeyConstant = "workspace_name"
	configurationAccountKeyConstant       = "account"
	configurationFailOnKeyConstant        = "fail_on"
	configurationConcurrentKeyConstant    = "concurrent"
	configurationKeySeparatorConstant     = "."
	defaultFormatConstant                 = "table"
)

// CommandConfiguration captures persistent settings for the audit command.
type CommandConfiguration struct {
	Snapshot      string `mapstructure:"snapshot"`
	Format        string `mapstructure:"format"`
	Output        string `mapstructure:"output"`
	Workspaces    int    `mapstructure:"workspaces"`
	WorkspaceName string `mapstructure:"workspace_name"`
	Account       string `mapstructure:"account"`
	FailOn        string `mapstructure:"fail_on"`
	Concurrent    bool   `mapstructure:"concurrent"`
}

// DefaultCommandConfiguration returns baseline configuration values for the audit command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Snapshot:      "",
		Format:        defaultFormatConstant,
		Output:        "",
		Workspaces:    0,
		WorkspaceName: "",
		Account:       "",
		FailOn:        FailOnNone,
		Concurrent:    false,
	}
}

// DefaultConfigurationValues exposes the defaults as configuration keys rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationKey(rootKey, configurationSnapshotKeyConstant):      defaults.Snapshot,
		configurationKey(rootKey, configurationFormatKeyConstant):        defaults.Format,
		configurationKey(rootKey, configurationOutputKeyConstant):        defaults.Output,
		configurationKey(rootKey, configurationWorkspacesKeyConstant):    defaults.Workspaces,
		configurationKey(rootKey, configurationWorkspaceNameKeyConstant): defaults.WorkspaceName,
		configurationKey(rootKey, configurationAccountKeyConstant):       defaults.Account,
		configurationKey(rootKey, configurationFailOnKeyConstant):        defaults.FailOn,
		configurationKey(rootKey, configurationConcurrentKeyConstant):    defaults.Concurrent,
	}
}

// sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration

	sanitized.Snapshot = strings.TrimSpace(configuration.Snapshot)
	sanitized.Format = strings.TrimSpace(configuration.Format)
	if len(sanitized.Format) == 0 {
		sanitized.Format = defaults.Format
	}
	sanitized.Output = strings.TrimSpace(configuration.Output)
	if sanitized.Workspaces < 0 {
		sanitized.Workspaces = 0
	}
	sanitized.WorkspaceName = strings.TrimSpace(configuration.WorkspaceName)
	sanitized.Account = strings.TrimSpace(configuration.Account)
	sanitized.FailOn = strings.TrimSpace(configuration.FailOn)
	if len(sanitized.FailOn) == 0 {
		sanitized.FailOn = defaults.FailOn
	}

	return sanitized
}

func configurationKey(rootKey string, key string) string {
	if len(rootKey) == 0 {
		return key
	}
	return rootKey + configurationKeySeparatorConstant + key
}
