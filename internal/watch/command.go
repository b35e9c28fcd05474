package watch

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/tagaudit/internal/audit"
	"github.com/temirov/tagaudit/internal/utils"
	"github.com/temirov/tagaudit/internal/workspace"
)

const (
	commandUseConstant                    = "watch [snapshot]"
	commandShortDescriptionConstant       = "Re-run the workspace audit whenever the snapshot changes"
	commandLongDescriptionConstant        = "watch audits a workspace snapshot, then audits it again each time the file is written, until interrupted. It accepts the same flags as audit."
	commandExecutionErrorTemplateConstant = "workspace watch failed: %w"
	debounceFlagNameConstant              = "debounce"
	debounceFlagUsageConstant             = "Quiet period after the last write before the audit re-runs"
	maximumPositionalArgumentsConstant    = 1
)

// CommandBuilder assembles the watch cobra command.
type CommandBuilder struct {
	LoggerProvider        audit.LoggerProvider
	ConfigurationProvider audit.ConfigurationProvider
	WatcherFactory        WatcherFactory
	Loader                audit.SnapshotLoader
	Clock                 audit.Clock
}

// Build constructs the watch command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.MaximumNArgs(maximumPositionalArgumentsConstant),
	}

	auditBuilder := builder.auditBuilder()
	auditFlags := auditBuilder.BindFlags(command)
	debounce := command.Flags().Duration(debounceFlagNameConstant, defaultDebounceIntervalConstant, debounceFlagUsageConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		options, optionsError := auditBuilder.ResolveOptions(command, arguments, auditFlags)
		if optionsError != nil {
			return optionsError
		}
		options.Colorize = false

		loader := builder.Loader
		if loader == nil {
			loader = workspace.NewLoader(command.InOrStdin())
		}
		logger := auditBuilder.ResolveLogger()
		auditService := audit.NewService(loader, nil, utils.NewFlushingWriter(command.OutOrStdout()), logger)

		service := NewService(auditService, builder.WatcherFactory, logger, *debounce)
		if _, watchError := service.Watch(command.Context(), options); watchError != nil {
			return fmt.Errorf(commandExecutionErrorTemplateConstant, watchError)
		}
		return nil
	}

	return command, nil
}

func (builder *CommandBuilder) auditBuilder() *audit.CommandBuilder {
	return &audit.CommandBuilder{
		LoggerProvider:        builder.LoggerProvider,
		ConfigurationProvider: builder.ConfigurationProvider,
		Loader:                builder.Loader,
		Clock:                 builder.Clock,
	}
}

// DefaultDebounceInterval reports the quiet period used when none is configured.
func DefaultDebounceInterval() time.Duration {
	return defaultDebounceIntervalConstant
}
