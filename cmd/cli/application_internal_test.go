package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/mockscaffold/internal/utils"
)

const applicationSubtestNameTemplate = "%d_%s"

func TestApplicationResolveProjectRoot(t *testing.T) {
	configurationDirectory := t.TempDir()
	configurationFile := filepath.Join(configurationDirectory, "config.yaml")
	absoluteRoot := t.TempDir()

	rootFileKeys := []string{scaffoldRootConfigKeyConstant}

	testCases := []struct {
		name              string
		configurationFile string
		fileKeys          []string
		configuredRoot    string
		expectedRoot      string
	}{
		{name: "relative_root_anchored_at_configuration", configurationFile: configurationFile, fileKeys: rootFileKeys, configuredRoot: "fixtures", expectedRoot: filepath.Join(configurationDirectory, "fixtures")},
		{name: "dot_root_is_configuration_directory", configurationFile: configurationFile, fileKeys: rootFileKeys, configuredRoot: ".", expectedRoot: configurationDirectory},
		{name: "absolute_root_kept", configurationFile: configurationFile, fileKeys: rootFileKeys, configuredRoot: absoluteRoot, expectedRoot: absoluteRoot},
		{name: "home_root_kept", configurationFile: configurationFile, fileKeys: rootFileKeys, configuredRoot: "~/project", expectedRoot: "~/project"},
		{name: "empty_root_kept", configurationFile: configurationFile, fileKeys: rootFileKeys, configuredRoot: " ", expectedRoot: ""},
		{name: "relative_root_without_configuration", configuredRoot: "fixtures", expectedRoot: "fixtures"},
		{name: "root_not_set_by_configuration_kept", configurationFile: configurationFile, fileKeys: []string{"scaffold.working_tree"}, configuredRoot: "fixtures", expectedRoot: "fixtures"},
	}

	for testCaseIndex, testCase := range testCases {
		t.Run(fmt.Sprintf(applicationSubtestNameTemplate, testCaseIndex, testCase.name), func(t *testing.T) {
			application := &Application{
				logger: zap.NewNop(),
				configurationMetadata: utils.LoadedConfiguration{
					ConfigFileUsed: testCase.configurationFile,
					FileKeys:       testCase.fileKeys,
				},
			}
			require.Equal(t, testCase.expectedRoot, application.resolveProjectRoot(testCase.configuredRoot))
		})
	}
}

func TestApplicationRootAnchoringFollowsConfigurationSource(t *testing.T) {
	testCases := []struct {
		name                 string
		configurationContent string
		environmentRoot      string
		expectAnchored       bool
	}{
		{name: "root_from_file_is_anchored", configurationContent: "scaffold:\n  root: fixtures\n", expectAnchored: true},
		{name: "default_root_is_not_anchored", configurationContent: "scaffold:\n  working_tree: mock\n"},
		{name: "environment_root_is_not_anchored", configurationContent: "scaffold:\n  root: ignored\n", environmentRoot: "fixtures"},
	}

	for testCaseIndex, testCase := range testCases {
		t.Run(fmt.Sprintf(applicationSubtestNameTemplate, testCaseIndex, testCase.name), func(t *testing.T) {
			configurationDirectory := t.TempDir()
			configurationFilePath := filepath.Join(configurationDirectory, "config.yaml")
			require.NoError(t, os.WriteFile(configurationFilePath, []byte(testCase.configurationContent), 0o600))
			t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())

			application := NewApplication()
			application.configurationFilePath = configurationFilePath
			if len(testCase.environmentRoot) > 0 {
				t.Setenv(application.configurationLoader.EnvironmentVariableName(scaffoldRootConfigKeyConstant), testCase.environmentRoot)
			}
			installCommand, _, findError := application.rootCommand.Find([]string{"install"})
			require.NoError(t, findError)
			require.NoError(t, application.initializeConfiguration(installCommand))

			expectedRoot := ""
			switch {
			case testCase.expectAnchored:
				expectedRoot = filepath.Join(configurationDirectory, "fixtures")
			case len(testCase.environmentRoot) > 0:
				expectedRoot = testCase.environmentRoot
			}
			require.Equal(t, expectedRoot, application.configuration.Scaffold.ProjectRoot)
		})
	}
}

func TestApplicationHumanReadableLogging(t *testing.T) {
	application := &Application{}
	application.configuration.Common.LogFormat = "Console"
	require.True(t, application.humanReadableLoggingEnabled())

	application.configuration.Common.LogFormat = string(utils.LogFormatStructured)
	require.False(t, application.humanReadableLoggingEnabled())
}

func TestApplicationLogFlagsOverrideConfiguration(t *testing.T) {
	configurationDirectory := t.TempDir()
	configurationContent := "common:\n  log_level: error\n  log_format: structured\n"
	require.NoError(t, os.WriteFile(filepath.Join(configurationDirectory, "config.yaml"), []byte(configurationContent), 0o600))
	t.Setenv(configurationSearchPathEnvironmentName, configurationDirectory)

	application := NewApplication()
	installCommand, _, findError := application.rootCommand.Find([]string{"install"})
	require.NoError(t, findError)
	require.NoError(t, application.rootCommand.PersistentFlags().Set(logFormatFlagNameConstant, string(utils.LogFormatConsole)))

	require.NoError(t, application.initializeConfiguration(installCommand))
	require.Equal(t, "error", application.configuration.Common.LogLevel)
	require.Equal(t, string(utils.LogFormatConsole), application.configuration.Common.LogFormat)
	require.True(t, application.humanReadableLoggingEnabled())

	configurationFilePath, available := application.commandContextAccessor.ConfigurationFilePath(installCommand.Context())
	require.True(t, available)
	require.Equal(t, filepath.Join(configurationDirectory, "config.yaml"), configurationFilePath)
}

func TestApplicationRejectsUnsupportedLogLevel(t *testing.T) {
	t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())
	t.Setenv(environmentPrefixConstant+"_COMMON_LOG_LEVEL", "verbose")

	application := NewApplication()
	require.Error(t, application.InitializeForCommand("remove"))
}

func TestApplicationInitializeForUnknownCommand(t *testing.T) {
	t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())
	require.Error(t, NewApplication().InitializeForCommand("deploy"))
}
