package audit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/tagaudit/internal/findings"
	"github.com/temirov/tagaudit/internal/report"
	"github.com/temirov/tagaudit/internal/utils/flags"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	commandUseConstant                    = "audit [snapshot]"
	commandShortDescriptionConstant       = "Audit a tag-management workspace snapshot"
	commandLongDescriptionConstant        = "audit checks a workspace snapshot for hygiene, tag, trigger, variable, GA4, naming, and security problems and reports the findings ordered by severity."
	commandExecutionErrorTemplateConstant = "workspace audit failed: %w"
	missingSnapshotMessageConstant        = "no workspace snapshot provided; pass a path, use --snapshot, or configure tools.audit.snapshot"
	maximumPositionalArgumentsConstant    = 1
)

var errMissingSnapshot = errors.New(missingSnapshotMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the loaded audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Loader                SnapshotLoader
	FileSystem            OutputFileSystem
	Clock                 Clock
}

// CommandFlags holds the flag values bound to an audit-running command.
type CommandFlags struct {
	snapshot         *flags.SnapshotFlagValues
	workspaceContext *flags.WorkspaceContextFlagValues
	execution        *flags.ExecutionFlagValues
}

// Build constructs the cobra command for workspace audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumPositionalArgumentsConstant),
	}

	commandFlags := builder.BindFlags(command)
	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, commandFlags)
	}

	return command, nil
}

// BindFlags attaches the audit flags to command. Defaults come from DefaultCommandConfiguration; loaded
// configuration is applied when options are resolved.
func (builder *CommandBuilder) BindFlags(command *cobra.Command) *CommandFlags {
	defaults := DefaultCommandConfiguration()
	return &CommandFlags{
		snapshot: flags.BindSnapshotFlag(
			command,
			flags.SnapshotFlagValues{Path: defaults.Snapshot},
			flags.SnapshotFlagDefinition{Shorthand: flags.SnapshotFlagShorthand, Enabled: true},
		),
		workspaceContext: flags.BindWorkspaceContextFlags(
			command,
			flags.WorkspaceContextFlagValues{Workspaces: defaults.Workspaces, WorkspaceName: defaults.WorkspaceName, Account: defaults.Account},
			flags.DefaultWorkspaceContextFlagDefinitions(),
		),
		execution: flags.BindExecutionFlags(
			command,
			flags.ExecutionDefaults{Format: defaults.Format, Output: defaults.Output, FailOn: defaults.FailOn, Concurrent: defaults.Concurrent},
			flags.ExecutionChoices{Formats: report.FormatNames(), FailOn: FailOnChoices()},
		),
	}
}

// ResolveOptions merges configuration, changed flags, and the positional snapshot argument, in that order of precedence.
func (builder *CommandBuilder) ResolveOptions(command *cobra.Command, arguments []string, commandFlags *CommandFlags) (CommandOptions, error) {
	configuration := builder.resolveConfiguration()

	if commandFlags != nil && command != nil {
		changed := command.Flags().Changed
		if changed(flags.SnapshotFlagName) {
			configuration.Snapshot = commandFlags.snapshot.Path
		}
		if changed(flags.WorkspacesFlagName) {
			configuration.Workspaces = commandFlags.workspaceContext.Workspaces
		}
		if changed(flags.WorkspaceNameFlagName) {
			configuration.WorkspaceName = commandFlags.workspaceContext.WorkspaceName
		}
		if changed(flags.AccountFlagName) {
			configuration.Account = commandFlags.workspaceContext.Account
		}
		if changed(flags.FormatFlagName) {
			configuration.Format = commandFlags.execution.Format
		}
		if changed(flags.OutputFlagName) {
			configuration.Output = commandFlags.execution.Output
		}
		if changed(flags.FailOnFlagName) {
			configuration.FailOn = commandFlags.execution.FailOn
		}
		if changed(flags.ConcurrentFlagName) {
			configuration.Concurrent = commandFlags.execution.Concurrent
		}
	}
	if len(arguments) > 0 && len(strings.TrimSpace(arguments[0])) > 0 {
		configuration.Snapshot = arguments[0]
	}
	configuration = configuration.sanitize()

	if len(configuration.Snapshot) == 0 {
		if helpError := displayCommandHelp(command); helpError != nil {
			return CommandOptions{}, helpError
		}
		return CommandOptions{}, errMissingSnapshot
	}

	formatName, formatError := flags.NormalizeChoice(flags.FormatFlagName, configuration.Format, defaultFormatConstant, report.FormatNames())
	if formatError != nil {
		return CommandOptions{}, formatError
	}

	failOnName, failOnError := flags.NormalizeChoice(flags.FailOnFlagName, configuration.FailOn, FailOnNone, FailOnChoices())
	if failOnError != nil {
		return CommandOptions{}, failOnError
	}
	var failOn findings.Severity
	if failOnName != FailOnNone {
		failOn = findings.Severity(failOnName)
	}

	return CommandOptions{
		SnapshotPath:  configuration.Snapshot,
		Format:        report.Format(formatName),
		OutputPath:    configuration.Output,
		Workspaces:    configuration.Workspaces,
		WorkspaceName: configuration.WorkspaceName,
		AccountName:   configuration.Account,
		FailOn:        failOn,
		Concurrent:    configuration.Concurrent,
		Colorize:      !color.NoColor,
		Clock:         builder.Clock,
	}, nil
}

// NewService constructs the audit service writing to the command's standard output.
func (builder *CommandBuilder) NewService(command *cobra.Command) *Service {
	loader := builder.Loader
	if loader == nil {
		loader = workspace.NewLoader(command.InOrStdin())
	}
	return NewService(loader, builder.FileSystem, command.OutOrStdout(), builder.ResolveLogger())
}

// ResolveLogger returns the configured logger or a no-op logger.
func (builder *CommandBuilder) ResolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, commandFlags *CommandFlags) error {
	options, optionsError := builder.ResolveOptions(command, arguments, commandFlags)
	if optionsError != nil {
		return optionsError
	}

	service := builder.NewService(command)
	if _, runError := service.Run(command.Context(), options); runError != nil {
		return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func displayCommandHelp(command *cobra.Command) error {
	if command == nil {
		return nil
	}
	return command.Help()
}
