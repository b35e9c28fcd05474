// Package flags provides helpers for binding standardized audit flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
)

const (
	// FormatFlagName exposes the report format flag name.
	FormatFlagName = "format"
	// FormatFlagShorthand provides the shorthand for the report format flag.
	FormatFlagShorthand = "f"
	// FormatFlagDescription describes the report format flag purpose.
	FormatFlagDescription = "Report format."
	// OutputFlagName exposes the report destination flag name.
	OutputFlagName = "output"
	// OutputFlagShorthand provides the shorthand for the report destination flag.
	OutputFlagShorthand = "o"
	// OutputFlagUsage describes the report destination flag purpose.
	OutputFlagUsage = "Write the report to this file, or into this directory using the export file name"
	// FailOnFlagName exposes the failure threshold flag name.
	FailOnFlagName = "fail-on"
	// FailOnFlagDescription describes the failure threshold flag purpose.
	FailOnFlagDescription = "Exit with an error when a finding at or above this severity exists."
	// ConcurrentFlagName exposes the parallel evaluation flag name.
	ConcurrentFlagName = "concurrent"
	// ConcurrentFlagUsage describes the parallel evaluation flag purpose.
	ConcurrentFlagUsage = "Evaluate rule pillars in parallel"
)

// ExecutionDefaults describes default flag values shared by audit-running commands.
type ExecutionDefaults struct {
	Format     string
	Output     string
	FailOn     string
	Concurrent bool
}

// ExecutionChoices lists the accepted values for enumerated execution flags.
type ExecutionChoices struct {
	Formats []string
	FailOn  []string
}

// ExecutionFlagValues stores execution flag values after parsing.
type ExecutionFlagValues struct {
	Format     string
	Output     string
	FailOn     string
	Concurrent bool
}

// BindExecutionFlags attaches report and evaluation flags to the provided command.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionDefaults, choices ExecutionChoices) *ExecutionFlagValues {
	values := ExecutionFlagValues{
		Format:     defaults.Format,
		Output:     defaults.Output,
		FailOn:     defaults.FailOn,
		Concurrent: defaults.Concurrent,
	}
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	if missingFlag(flagSet, FormatFlagName) {
		flagSet.StringVarP(&values.Format, FormatFlagName, FormatFlagShorthand, defaults.Format, FormatChoiceUsage(defaults.Format, choices.Formats, FormatFlagDescription))
	}
	if missingFlag(flagSet, OutputFlagName) {
		flagSet.StringVarP(&values.Output, OutputFlagName, OutputFlagShorthand, defaults.Output, OutputFlagUsage)
	}
	if missingFlag(flagSet, FailOnFlagName) {
		flagSet.StringVar(&values.FailOn, FailOnFlagName, defaults.FailOn, FormatChoiceUsage(defaults.FailOn, choices.FailOn, FailOnFlagDescription))
	}
	if missingFlag(flagSet, ConcurrentFlagName) {
		AddToggleFlag(flagSet, &values.Concurrent, ConcurrentFlagName, "", defaults.Concurrent, ConcurrentFlagUsage)
	}
	return &values
}
