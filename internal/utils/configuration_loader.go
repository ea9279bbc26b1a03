package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant             = "."
	environmentKeySeparatorNewConstant             = "_"
	sliceSeparatorConstant                         = ","
	configurationReadErrorTemplateConstant         = "failed to read configuration %s: %w"
	configurationUnmarshalErrorTemplateConstant    = "failed to parse configuration: %w"
	embeddedConfigurationReadErrorTemplateConstant = "failed to read embedded configuration: %w"
	missingTargetConfigurationMessageConstant      = "configuration target must not be nil"
)

// ConfigurationLoader layers defaults, embedded settings, a configuration file,
// and prefixed environment variables into a single decoded structure.
type ConfigurationLoader struct {
	configurationName         string
	configurationType         string
	environmentPrefix         string
	searchPaths               []string
	embeddedConfiguration     []byte
	embeddedConfigurationType string
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
	// FileKeys lists the keys whose effective value came from ConfigFileUsed.
	FileKeys []string
}

// DefinedInFile reports whether the effective value of configurationKey came from the configuration file.
func (loadedConfiguration LoadedConfiguration) DefinedInFile(configurationKey string) bool {
	return slices.Contains(loadedConfiguration.FileKeys, strings.ToLower(configurationKey))
}

// NewConfigurationLoader creates a loader that searches searchPaths for configurationName
// and reads overrides from environment variables named with environmentPrefix.
func NewConfigurationLoader(configurationName string, configurationType string, environmentPrefix string, searchPaths []string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationName: configurationName,
		configurationType: configurationType,
		environmentPrefix: environmentPrefix,
		searchPaths:       append([]string(nil), searchPaths...),
	}
}

// SetEmbeddedConfiguration registers configuration bundled with the binary. It overrides
// the defaults passed to LoadConfiguration and sits below configuration files.
func (loader *ConfigurationLoader) SetEmbeddedConfiguration(configurationData []byte, configurationType string) {
	if loader == nil {
		return
	}
	loader.embeddedConfigurationType = strings.TrimSpace(configurationType)
	loader.embeddedConfiguration = append([]byte(nil), configurationData...)
}

// EnvironmentVariableName reports the variable that overrides configurationKey.
func (loader *ConfigurationLoader) EnvironmentVariableName(configurationKey string) string {
	variableName := strings.ToUpper(strings.ReplaceAll(configurationKey, environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant))
	if len(loader.environmentPrefix) == 0 {
		return variableName
	}
	return strings.ToUpper(loader.environmentPrefix) + environmentKeySeparatorNewConstant + variableName
}

// LoadConfiguration decodes every layer into targetConfiguration. Keys that do not map
// onto targetConfiguration are rejected and string values are trimmed.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	if targetConfiguration == nil {
		return LoadedConfiguration{}, errors.New(missingTargetConfigurationMessageConstant)
	}

	viperInstance := viper.New()
	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	// Embedded values act as defaults so that only the configuration file populates the config layer.
	// Embedded values are seeded as defaults so that InConfig reports only keys from the configuration file.
	if len(loader.embeddedConfiguration) > 0 {
		embeddedType := loader.embeddedConfigurationType
		if len(embeddedType) == 0 {
			embeddedType = loader.configurationType
		}
		embeddedInstance := viper.New()
		embeddedInstance.SetConfigType(embeddedType)
		if readError := embeddedInstance.ReadConfig(bytes.NewReader(loader.embeddedConfiguration)); readError != nil {
			return LoadedConfiguration{}, fmt.Errorf(embeddedConfigurationReadErrorTemplateConstant, readError)
		}
		for _, embeddedKey := range embeddedInstance.AllKeys() {
			viperInstance.SetDefault(embeddedKey, embeddedInstance.Get(embeddedKey))
		}
	}

	viperInstance.SetConfigType(loader.configurationType)
	trimmedFilePath := strings.TrimSpace(configurationFilePath)
	if len(trimmedFilePath) > 0 {
		viperInstance.SetConfigFile(trimmedFilePath)
	} else {
		viperInstance.SetConfigName(loader.configurationName)
		for _, searchPath := range loader.searchPaths {
			viperInstance.AddConfigPath(searchPath)
		}
	}

	if readError := viperInstance.MergeInConfig(); readError != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(readError, &notFoundError) {
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, viperInstance.ConfigFileUsed(), readError)
		}
	}

	viperInstance.SetEnvPrefix(loader.environmentPrefix)
	viperInstance.SetEnvKeyReplacer(strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant))
	viperInstance.AutomaticEnv()

	unmarshalError := viperInstance.Unmarshal(
		targetConfiguration,
		viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
			trimStringHook(),
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(sliceSeparatorConstant),
		)),
		func(decoderConfiguration *mapstructure.DecoderConfig) {
			decoderConfiguration.ErrorUnused = true
		},
	)
	if unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return LoadedConfiguration{
		ConfigFileUsed: viperInstance.ConfigFileUsed(),
		FileKeys:       loader.fileKeys(viperInstance),
	}, nil
}

func (loader *ConfigurationLoader) fileKeys(viperInstance *viper.Viper) []string {
	var keys []string
	for _, configurationKey := range viperInstance.AllKeys() {
		if !viperInstance.InConfig(configurationKey) {
			continue
		}
		if environmentValue, present := os.LookupEnv(loader.EnvironmentVariableName(configurationKey)); present && len(environmentValue) > 0 {
			continue
		}
		keys = append(keys, configurationKey)
	}
	slices.Sort(keys)
	return keys
}

func trimStringHook() mapstructure.DecodeHookFuncKind {
	return func(sourceKind reflect.Kind, targetKind reflect.Kind, data any) (any, error) {
		if sourceKind != reflect.String || targetKind != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(reflect.ValueOf(data).String()), nil
	}
}
