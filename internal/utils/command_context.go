package utils

import "context"

type commandContextKey string

const configurationFileContextKeyConstant = commandContextKey("configurationFile")

// WithConfigurationFile records the configuration file that produced the command's settings.
func WithConfigurationFile(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFileContextKeyConstant, configurationFilePath)
}

// ConfigurationFileFromContext returns the configuration file recorded by WithConfigurationFile.
// Empty paths are reported as absent.
func ConfigurationFileFromContext(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, available := executionContext.Value(configurationFileContextKeyConstant).(string)
	if !available || len(configurationFilePath) == 0 {
		return "", false
	}
	return configurationFilePath, true
}
