package utils

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorConstant                 = "."
	environmentVariableSeparatorConstant            = "_"
	configurationReadErrorTemplateConstant          = "unable to read configuration %s: %w"
	configurationUnmarshalErrorTemplateConstant     = "unable to parse configuration: %w"
	embeddedConfigurationMergeErrorTemplateConstant = "unable to merge embedded configuration: %w"
)

// ConfigurationSource identifies which layer supplied the file-level configuration.
type ConfigurationSource string

// Configuration sources in increasing order of precedence.
const (
	ConfigurationSourceDefaults ConfigurationSource = "defaults"
	ConfigurationSourceEmbedded ConfigurationSource = "embedded"
	ConfigurationSourceFile     ConfigurationSource = "file"
)

// ConfigurationLoaderOptions describes where configuration is searched for.
type ConfigurationLoaderOptions struct {
	Name              string
	Type              string
	EnvironmentPrefix string
	SearchPaths       []string
}

// ConfigurationLoader layers defaults, embedded configuration, a configuration file, and environment
// variables, in that order of precedence, and decodes the result with mapstructure tags.
type ConfigurationLoader struct {
	options                   ConfigurationLoaderOptions
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration reports how the configuration was resolved.
type LoadedConfiguration struct {
	ConfigFileUsed string
	Source         ConfigurationSource
}

// NewConfigurationLoader creates a loader for the provided options.
func NewConfigurationLoader(options ConfigurationLoaderOptions) *ConfigurationLoader {
	options.SearchPaths = append([]string(nil), options.SearchPaths...)
	return &ConfigurationLoader{options: options}
}

// SetEmbeddedConfiguration stores configuration shipped with the binary. It is merged beneath any configuration file.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
}

// EnvironmentVariableName returns the variable that overrides configurationKey.
func (loader *ConfigurationLoader) EnvironmentVariableName(configurationKey string) string {
	variableName := strings.ToUpper(strings.ReplaceAll(configurationKey, environmentKeySeparatorConstant, environmentVariableSeparatorConstant))
	if len(loader.options.EnvironmentPrefix) == 0 {
		return variableName
	}
	return strings.ToUpper(loader.options.EnvironmentPrefix) + environmentVariableSeparatorConstant + variableName
}

// LoadConfiguration decodes the layered configuration into targetConfiguration. An explicit
// configurationFilePath must exist; otherwise a missing configuration file is not an error.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	loaded := LoadedConfiguration{Source: ConfigurationSourceDefaults}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedConfigurationType
		if len(embeddedType) == 0 {
			embeddedType = loader.options.Type
		}
		viperInstance.SetConfigType(embeddedType)
		if mergeError := viperInstance.MergeConfig(bytes.NewReader(loader.embeddedConfiguration)); mergeError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationMergeErrorTemplateConstant, mergeError)
		}
		loaded.Source = ConfigurationSourceEmbedded
	}

	viperInstance.SetConfigName(loader.options.Name)
	viperInstance.SetConfigType(loader.options.Type)
	for _, searchPath := range loader.options.SearchPaths {
		viperInstance.AddConfigPath(searchPath)
	}
	if len(configurationFilePath) > 0 {
		viperInstance.SetConfigFile(configurationFilePath)
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if len(configurationFilePath) > 0 || !errors.As(readError, &notFoundError) {
			configurationLabel := configurationFilePath
			if len(configurationLabel) == 0 {
				configurationLabel = loader.options.Name
			}
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, configurationLabel, readError)
		}
	} else {
		loaded.ConfigFileUsed = viperInstance.ConfigFileUsed()
		loaded.Source = ConfigurationSourceFile
	}

	viperInstance.SetEnvPrefix(loader.options.EnvironmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorConstant, environmentVariableSeparatorConstant))
	viperInstance.AutomaticEnv()

	if unmarshalError := viperInstance.Unmarshal(targetConfiguration); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}
	return loaded, nil
}
