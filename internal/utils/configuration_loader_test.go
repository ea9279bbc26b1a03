package utils_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mockscaffold/internal/utils"
)

const (
	testEnvironmentPrefixConstant          = "TESTSCAFFOLD"
	testWorkingTreeKeyConstant             = "scaffold.working_tree"
	testDefaultWorkingTreeConstant         = "mock"
	testEmbeddedWorkingTreeConstant        = "embedded"
	testFileWorkingTreeConstant            = "from-file"
	testEnvironmentWorkingTreeConstant     = "from-environment"
	testConfigFileNameConstant             = "config.yaml"
	testConfigContentTemplateConstant      = "scaffold:\n  working_tree: %s\n"
	testUnknownKeyContentConstant          = "scaffold:\n  working_tree: mock\n  workingtree: typo\n"
	testPaddedValueContentConstant         = "scaffold:\n  working_tree: \"  padded  \"\n"
	testConfigurationNameConstant          = "config"
	testConfigurationTypeConstant          = "yaml"
	configurationLoaderSubtestNameTemplate = "%d_%s"
)

type configurationFixture struct {
	Scaffold scaffoldConfigurationFixture `mapstructure:"scaffold"`
}

type scaffoldConfigurationFixture struct {
	WorkingTree string `mapstructure:"working_tree"`
}

func writeConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()
	configurationFilePath := filepath.Join(directory, testConfigFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(content), 0o600))
	return configurationFilePath
}

func newTestLoader(searchPaths ...string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, testEnvironmentPrefixConstant, searchPaths)
}

func testDefaults() map[string]any {
	return map[string]any{testWorkingTreeKeyConstant: testDefaultWorkingTreeConstant}
}

func TestConfigurationLoaderLayers(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		embeddedWorkingTree   string
		explicitFileTree      string
		searchedFileTree      string
		environmentTree       string
		expectedWorkingTree   string
		expectConfigFileFound bool
		expectDefinedInFile   bool
	}{
		{
			name:                "defaults_only",
			expectedWorkingTree: testDefaultWorkingTreeConstant,
		},
		{
			name:                "embedded_over_defaults",
			embeddedWorkingTree: testEmbeddedWorkingTreeConstant,
			expectedWorkingTree: testEmbeddedWorkingTreeConstant,
		},
		{
			name:                  "explicit_file_over_embedded",
			expectDefinedInFile:   true,
			embeddedWorkingTree:   testEmbeddedWorkingTreeConstant,
			explicitFileTree:      testFileWorkingTreeConstant,
			expectedWorkingTree:   testFileWorkingTreeConstant,
			expectConfigFileFound: true,
		},
		{
			name:                  "searched_file_over_embedded",
			expectDefinedInFile:   true,
			embeddedWorkingTree:   testEmbeddedWorkingTreeConstant,
			searchedFileTree:      testFileWorkingTreeConstant,
			expectedWorkingTree:   testFileWorkingTreeConstant,
			expectConfigFileFound: true,
		},
		{
			name:                  "environment_over_file",
			embeddedWorkingTree:   testEmbeddedWorkingTreeConstant,
			searchedFileTree:      testFileWorkingTreeConstant,
			environmentTree:       testEnvironmentWorkingTreeConstant,
			expectedWorkingTree:   testEnvironmentWorkingTreeConstant,
			expectConfigFileFound: true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			searchDirectory := testInstance.TempDir()
			explicitDirectory := testInstance.TempDir()
			loader := newTestLoader(searchDirectory)

			if len(testCase.embeddedWorkingTree) > 0 {
				loader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testCase.embeddedWorkingTree)), testConfigurationTypeConstant)
			}

			expectedConfigFile := ""
			explicitFilePath := ""
			if len(testCase.explicitFileTree) > 0 {
				explicitFilePath = writeConfigurationFile(testInstance, explicitDirectory, fmt.Sprintf(testConfigContentTemplateConstant, testCase.explicitFileTree))
				expectedConfigFile = explicitFilePath
			}
			if len(testCase.searchedFileTree) > 0 {
				expectedConfigFile = writeConfigurationFile(testInstance, searchDirectory, fmt.Sprintf(testConfigContentTemplateConstant, testCase.searchedFileTree))
			}
			if len(testCase.environmentTree) > 0 {
				testInstance.Setenv(loader.EnvironmentVariableName(testWorkingTreeKeyConstant), testCase.environmentTree)
			}

			loadedConfiguration := configurationFixture{}
			metadata, loadError := loader.LoadConfiguration(explicitFilePath, testDefaults(), &loadedConfiguration)
			require.NoError(testInstance, loadError)
			require.Equal(testInstance, testCase.expectedWorkingTree, loadedConfiguration.Scaffold.WorkingTree)

			if testCase.expectConfigFileFound {
				require.Equal(testInstance, expectedConfigFile, metadata.ConfigFileUsed)
			} else {
				require.Empty(testInstance, metadata.ConfigFileUsed)
			}
			require.Equal(testInstance, testCase.expectDefinedInFile, metadata.DefinedInFile(testWorkingTreeKeyConstant))
		})
	}
}

func TestConfigurationLoaderFileKeysExcludeUnsetKeys(testInstance *testing.T) {
	directory := testInstance.TempDir()
	configurationFilePath := writeConfigurationFile(testInstance, directory, "scaffold: {}\n")
	loader := newTestLoader()
	loader.SetEmbeddedConfiguration([]byte(fmt.Sprintf(testConfigContentTemplateConstant, testEmbeddedWorkingTreeConstant)), testConfigurationTypeConstant)

	loadedConfiguration := configurationFixture{}
	metadata, loadError := loader.LoadConfiguration(configurationFilePath, testDefaults(), &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, metadata.ConfigFileUsed)
	require.Equal(testInstance, testEmbeddedWorkingTreeConstant, loadedConfiguration.Scaffold.WorkingTree)
	require.False(testInstance, metadata.DefinedInFile(testWorkingTreeKeyConstant))
	require.NotContains(testInstance, metadata.FileKeys, testWorkingTreeKeyConstant)
}

func TestConfigurationLoaderRejectsInvalidInput(testInstance *testing.T) {
	testCases := []struct {
		name          string
		configuration func(testInstance *testing.T, directory string) string
	}{
		{
			name: "unknown_key",
			configuration: func(testInstance *testing.T, directory string) string {
				return writeConfigurationFile(testInstance, directory, testUnknownKeyContentConstant)
			},
		},
		{
			name: "missing_explicit_file",
			configuration: func(_ *testing.T, directory string) string {
				return filepath.Join(directory, testConfigFileNameConstant)
			},
		},
		{
			name: "malformed_yaml",
			configuration: func(testInstance *testing.T, directory string) string {
				return writeConfigurationFile(testInstance, directory, "scaffold: [\n")
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(configurationLoaderSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			directory := testInstance.TempDir()
			configurationFilePath := testCase.configuration(testInstance, directory)

			loadedConfiguration := configurationFixture{}
			_, loadError := newTestLoader(directory).LoadConfiguration(configurationFilePath, testDefaults(), &loadedConfiguration)
			require.Error(testInstance, loadError)
		})
	}
}

func TestConfigurationLoaderTrimsStrings(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeConfigurationFile(testInstance, directory, testPaddedValueContentConstant)

	loadedConfiguration := configurationFixture{}
	_, loadError := newTestLoader(directory).LoadConfiguration("", testDefaults(), &loadedConfiguration)
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "padded", loadedConfiguration.Scaffold.WorkingTree)
}

func TestConfigurationLoaderEnvironmentVariableName(testInstance *testing.T) {
	require.Equal(testInstance, "TESTSCAFFOLD_SCAFFOLD_WORKING_TREE", newTestLoader().EnvironmentVariableName(testWorkingTreeKeyConstant))
	unprefixedLoader := utils.NewConfigurationLoader(testConfigurationNameConstant, testConfigurationTypeConstant, "", nil)
	require.Equal(testInstance, "COMMON_LOG_LEVEL", unprefixedLoader.EnvironmentVariableName("common.log_level"))
}

func TestConfigurationLoaderRequiresTarget(testInstance *testing.T) {
	_, loadError := newTestLoader().LoadConfiguration("", testDefaults(), nil)
	require.Error(testInstance, loadError)
}
