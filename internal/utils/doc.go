// Package utils exposes helpers shared by the tagaudit commands.
//
// ConfigurationLoader layers embedded defaults, configuration files, and environment variables through Viper.
// LoggerFactory builds zap loggers in structured or console encodings. FlushingWriter keeps watch output
// visible as each report is rendered.
package utils
