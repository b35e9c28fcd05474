package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// SnapshotFlagName exposes the shared workspace snapshot flag name.
	SnapshotFlagName = "snapshot"
	// SnapshotFlagShorthand provides the shorthand for the snapshot flag.
	SnapshotFlagShorthand = "s"
	// SnapshotFlagUsage describes the shared snapshot flag purpose.
	SnapshotFlagUsage = "Workspace snapshot file (JSON or YAML); use - for standard input"
	// WorkspacesFlagName exposes the active workspace count flag name.
	WorkspacesFlagName = "workspaces"
	// WorkspacesFlagUsage describes the active workspace count flag purpose.
	WorkspacesFlagUsage = "Number of active workspaces in the container"
	// WorkspaceNameFlagName exposes the current workspace name flag name.
	WorkspaceNameFlagName = "workspace-name"
	// WorkspaceNameFlagUsage describes the current workspace name flag purpose.
	WorkspaceNameFlagUsage = "Name of the workspace being audited"
	// AccountFlagName exposes the account name flag name.
	AccountFlagName = "account"
	// AccountFlagUsage describes the account name flag purpose.
	AccountFlagUsage = "Account name used in report titles and export file names"
)

// SnapshotFlagDefinition captures configuration for the snapshot flag.
type SnapshotFlagDefinition struct {
	Name       string
	Shorthand  string
	Usage      string
	Enabled    bool
	Persistent bool
}

// SnapshotFlagValues stores the snapshot flag value.
type SnapshotFlagValues struct {
	Path string
}

// BindSnapshotFlag attaches the workspace snapshot flag to the provided command.
func BindSnapshotFlag(command *cobra.Command, defaults SnapshotFlagValues, definition SnapshotFlagDefinition) *SnapshotFlagValues {
	values := defaults
	if command == nil || !definition.Enabled {
		return &values
	}

	flagName := definition.Name
	if len(flagName) == 0 {
		flagName = SnapshotFlagName
	}
	flagUsage := definition.Usage
	if len(flagUsage) == 0 {
		flagUsage = SnapshotFlagUsage
	}

	targetSet := command.Flags()
	if definition.Persistent {
		targetSet = command.PersistentFlags()
	}
	if targetSet.Lookup(flagName) == nil {
		targetSet.StringVarP(&values.Path, flagName, definition.Shorthand, defaults.Path, flagUsage)
	}
	return &values
}

// WorkspaceContextFlagDefinition captures configuration for one workspace context flag.
type WorkspaceContextFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// WorkspaceContextFlagDefinitions groups workspace context flag definitions.
type WorkspaceContextFlagDefinitions struct {
	Workspaces    WorkspaceContextFlagDefinition
	WorkspaceName WorkspaceContextFlagDefinition
	Account       WorkspaceContextFlagDefinition
}

// DefaultWorkspaceContextFlagDefinitions enables every workspace context flag with its standard name.
func DefaultWorkspaceContextFlagDefinitions() WorkspaceContextFlagDefinitions {
	return WorkspaceContextFlagDefinitions{
		Workspaces:    WorkspaceContextFlagDefinition{Name: WorkspacesFlagName, Usage: WorkspacesFlagUsage, Enabled: true},
		WorkspaceName: WorkspaceContextFlagDefinition{Name: WorkspaceNameFlagName, Usage: WorkspaceNameFlagUsage, Enabled: true},
		Account:       WorkspaceContextFlagDefinition{Name: AccountFlagName, Usage: AccountFlagUsage, Enabled: true},
	}
}

// WorkspaceContextFlagValues stores workspace context flag values.
type WorkspaceContextFlagValues struct {
	Workspaces    int
	WorkspaceName string
	Account       string
}

// BindWorkspaceContextFlags attaches the workspace metadata flags that describe where a snapshot came from.
func BindWorkspaceContextFlags(command *cobra.Command, defaults WorkspaceContextFlagValues, definitions WorkspaceContextFlagDefinitions) *WorkspaceContextFlagValues {
	values := defaults
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if definitions.Workspaces.Enabled && missingFlag(flagSet, definitions.Workspaces.Name) {
		flagSet.IntVar(&values.Workspaces, definitions.Workspaces.Name, defaults.Workspaces, definitions.Workspaces.Usage)
	}
	if definitions.WorkspaceName.Enabled && missingFlag(flagSet, definitions.WorkspaceName.Name) {
		flagSet.StringVar(&values.WorkspaceName, definitions.WorkspaceName.Name, defaults.WorkspaceName, definitions.WorkspaceName.Usage)
	}
	if definitions.Account.Enabled && missingFlag(flagSet, definitions.Account.Name) {
		flagSet.StringVar(&values.Account, definitions.Account.Name, defaults.Account, definitions.Account.Usage)
	}
	return &values
}

func missingFlag(flagSet *pflag.FlagSet, flagName string) bool {
	return len(flagName) > 0 && flagSet.Lookup(flagName) == nil
}
