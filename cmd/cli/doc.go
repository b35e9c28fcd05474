// Package cli constructs the tagaudit command-line interface. It wires the Cobra command hierarchy to the
// Viper-backed configuration loader and zap logging, and registers the audit and watch commands.
package cli
