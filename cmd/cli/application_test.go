package cli_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mockscaffold/cmd/cli"
	"github.com/temirov/mockscaffold/internal/layout"
	"github.com/temirov/mockscaffold/internal/scaffold/testsupport"
)

const (
	applicationNameConstant                = "mockscaffold"
	configurationFileNameConstant          = "config.yaml"
	configurationSearchPathEnvironmentName = "MOCKSCAFFOLD_CONFIG_SEARCH_PATH"
	workingTreeEnvironmentName             = "MOCKSCAFFOLD_SCAFFOLD_WORKING_TREE"
	configuredWorkingTreeConstant          = "scratch"
	environmentWorkingTreeConstant         = "from-environment"
	configurationContentTemplate           = "common:\n  log_level: error\nscaffold:\n  root: %s\n  working_tree: %s\n"
)

func runApplication(t *testing.T, arguments ...string) error {
	t.Helper()

	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
	})
	os.Args = append([]string{applicationNameConstant}, arguments...)

	return cli.NewApplication().Execute()
}

func writeConfiguration(t *testing.T, directory string, root string, workingTree string) string {
	t.Helper()
	configurationPath := filepath.Join(directory, configurationFileNameConstant)
	require.NoError(t, os.WriteFile(configurationPath, []byte(fmt.Sprintf(configurationContentTemplate, root, workingTree)), 0o600))
	return configurationPath
}

func TestApplicationInstallAndRemoveWithConfiguredLayout(t *testing.T) {
	projectRoot := t.TempDir()
	testsupport.Materialize(t, projectRoot)
	writeConfiguration(t, projectRoot, ".", configuredWorkingTreeConstant)
	before := testsupport.Snapshot(t, projectRoot)
	t.Setenv(configurationSearchPathEnvironmentName, projectRoot)

	require.NoError(t, runApplication(t, "install", "--contract", testsupport.SimpleTokenContract, "--test", testsupport.SimpleTest))

	configuredLayout := layout.Layout{ProjectRoot: projectRoot, WorkingTreeDirectory: configuredWorkingTreeConstant}.Sanitize()
	require.FileExists(t, configuredLayout.ContractDestinationPath(testsupport.SimpleTokenContract))
	require.FileExists(t, configuredLayout.TestDestinationPath(testsupport.SimpleTest))
	require.FileExists(t, configuredLayout.DeployScriptPath())
	require.FileExists(t, configuredLayout.CoverageConfigurationPath())
	require.NoDirExists(t, filepath.Join(projectRoot, "mock"))

	require.NoError(t, runApplication(t, "remove"))
	require.Equal(t, before, testsupport.Snapshot(t, projectRoot))
}

func TestApplicationEnvironmentOverridesWorkingTree(t *testing.T) {
	projectRoot := t.TempDir()
	testsupport.Materialize(t, projectRoot)

	configurationDirectory := t.TempDir()
	configurationPath := writeConfiguration(t, configurationDirectory, projectRoot, configuredWorkingTreeConstant)
	t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())
	t.Setenv(workingTreeEnvironmentName, environmentWorkingTreeConstant)

	require.NoError(t, runApplication(t,
		"install-multiple", testsupport.BaseContract, testsupport.DerivedContract,
		"--config", configurationPath,
		"--test", testsupport.InheritTest,
	))

	environmentLayout := layout.Layout{ProjectRoot: projectRoot, WorkingTreeDirectory: environmentWorkingTreeConstant}.Sanitize()
	require.FileExists(t, environmentLayout.ContractDestinationPath(testsupport.BaseContract))
	require.FileExists(t, environmentLayout.ContractDestinationPath(testsupport.DerivedContract))
	require.NoDirExists(t, filepath.Join(projectRoot, configuredWorkingTreeConstant))
}

func TestApplicationRootFlagOverridesConfiguration(t *testing.T) {
	configuredRoot := t.TempDir()
	flaggedRoot := t.TempDir()
	testsupport.Materialize(t, flaggedRoot)

	configurationDirectory := t.TempDir()
	writeConfiguration(t, configurationDirectory, configuredRoot, "mock")
	t.Setenv(configurationSearchPathEnvironmentName, configurationDirectory)

	require.NoError(t, runApplication(t, "install", "--root", flaggedRoot, "--contract", testsupport.FooContract, "--test", testsupport.FooTest))

	flaggedLayout := layout.DefaultLayout(flaggedRoot)
	require.FileExists(t, flaggedLayout.ContractDestinationPath(testsupport.FooContract))
	require.NoDirExists(t, layout.DefaultLayout(configuredRoot).WorkingTreePath())
}

func TestApplicationRejectsUnknownConfigurationKey(t *testing.T) {
	configurationDirectory := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(configurationDirectory, configurationFileNameConstant), []byte("scaffold:\n  workingtree: typo\n"), 0o600))
	t.Setenv(configurationSearchPathEnvironmentName, configurationDirectory)

	require.Error(t, runApplication(t, "remove"))
}

func TestApplicationInstallFailsForMissingFixture(t *testing.T) {
	projectRoot := t.TempDir()
	testsupport.Materialize(t, projectRoot)
	t.Setenv(configurationSearchPathEnvironmentName, t.TempDir())

	installError := runApplication(t, "install", "--root", projectRoot, "--contract", testsupport.MissingContract, "--test", testsupport.SimpleTest)
	require.Error(t, installError)
}
