package scaffold

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/temirov/mockscaffold/internal/filesystem"
	"github.com/temirov/mockscaffold/internal/layout"
	"github.com/temirov/mockscaffold/internal/ui"
	"github.com/temirov/mockscaffold/internal/utils"
	flagutils "github.com/temirov/mockscaffold/internal/utils/flags"
	pathutils "github.com/temirov/mockscaffold/internal/utils/path"
)

const (
	installCommandUseConstant                   = "install"
	installCommandShortDescriptionConstant      = "Build a single-contract mock project"
	installCommandLongDescriptionConstant       = "install copies the template tree into the working tree, adds the contract and the test, and writes the deploy script, the build configuration, and the coverage configuration."
	installCommandExampleConstant               = "mockscaffold install --contract SimpleToken --test simpleTest.js --solcover solcover.yaml"
	installMultipleCommandUseConstant           = "install-multiple <dependency> <dependent>"
	installMultipleCommandShortDescription      = "Build a mock project with a linked library contract"
	installMultipleCommandLongDescription       = "install-multiple copies both contracts into the working tree and writes a deploy script that deploys the dependency, links it into the dependent, and deploys the dependent."
	installMultipleCommandExampleConstant       = "mockscaffold install-multiple Base Derived --test inherit.js"
	removeCommandUseConstant                    = "remove"
	removeCommandShortDescriptionConstant       = "Delete the mock project and coverage output"
	removeCommandLongDescriptionConstant        = "remove deletes the working tree, both coverage configuration locations, the coverage report directory, and the coverage report file. Missing paths are ignored."
	flagContractNameConstant                    = "contract"
	flagContractUsageConstant                   = "Contract name resolved against the fixture contract sources"
	flagTestNameConstant                        = "test"
	flagTestUsageConstant                       = "Test file name resolved against the fixture test sources"
	flagSolcoverNameConstant                    = "solcover"
	flagSolcoverUsageConstant                   = "YAML or JSON file holding the coverage configuration (defaults to an empty object)"
	flagBuildConfigFileNameConstant             = "build-config-file"
	flagBuildConfigFileUsageConstant            = "File whose contents replace the default build configuration"
	flagBuildConfigNameNameConstant             = "build-config-name"
	flagBuildConfigNameUsageConstant            = "File name of the build configuration inside the working tree"
	flagSkipMigrationNameConstant               = "skip-migration"
	flagSkipMigrationUsageConstant              = "Do not write the deploy script"
	unexpectedArgumentsTemplateConstant         = "%s does not accept positional arguments"
	coverageConfigurationReadErrorTemplate      = "unable to read coverage configuration %s: %w"
	coverageConfigurationDecodeErrorTemplate    = "unable to decode coverage configuration %s: %w"
	buildConfigurationReadErrorTemplateConstant = "unable to read build configuration %s: %w"
	layoutResolutionErrorTemplateConstant       = "unable to resolve scaffold layout: %w"
	reportErrorTemplateConstant                 = "unable to report scaffold artifacts: %w"
	applicationNameConstant                     = "mockscaffold"
	logFieldConfigFileConstant                  = "config_file"
	scaffoldCommandStartedMessageConstant       = "Scaffold command started"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the install, install-multiple, and remove commands.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() layout.Layout
	FileSystem                   filesystem.FileSystem
	RootResolver                 *pathutils.RootResolver
}

// Build constructs every scaffold command.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	installCommand, installBuildError := builder.BuildInstall()
	if installBuildError != nil {
		return nil, installBuildError
	}
	installMultipleCommand, installMultipleBuildError := builder.BuildInstallMultiple()
	if installMultipleBuildError != nil {
		return nil, installMultipleBuildError
	}
	removeCommand, removeBuildError := builder.BuildRemove()
	if removeBuildError != nil {
		return nil, removeBuildError
	}
	return []*cobra.Command{installCommand, installMultipleCommand, removeCommand}, nil
}

// BuildInstall constructs the install command.
func (builder *CommandBuilder) BuildInstall() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     installCommandUseConstant,
		Short:   installCommandShortDescriptionConstant,
		Long:    installCommandLongDescriptionConstant,
		Example: installCommandExampleConstant,
		RunE:    builder.runInstall,
	}

	flagutils.BindRootFlag(command, "")
	command.Flags().String(flagContractNameConstant, "", flagContractUsageConstant)
	command.Flags().String(flagTestNameConstant, "", flagTestUsageConstant)
	command.Flags().String(flagSolcoverNameConstant, "", flagSolcoverUsageConstant)
	command.Flags().String(flagBuildConfigFileNameConstant, "", flagBuildConfigFileUsageConstant)
	command.Flags().String(flagBuildConfigNameNameConstant, "", flagBuildConfigNameUsageConstant)
	command.Flags().Bool(flagSkipMigrationNameConstant, false, flagSkipMigrationUsageConstant)

	return command, nil
}

// BuildInstallMultiple constructs the install-multiple command.
func (builder *CommandBuilder) BuildInstallMultiple() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:     installMultipleCommandUseConstant,
		Short:   installMultipleCommandShortDescription,
		Long:    installMultipleCommandLongDescription,
		Example: installMultipleCommandExampleConstant,
		Args:    cobra.ArbitraryArgs,
		RunE:    builder.runInstallMultiple,
	}

	flagutils.BindRootFlag(command, "")
	command.Flags().String(flagTestNameConstant, "", flagTestUsageConstant)
	command.Flags().String(flagSolcoverNameConstant, "", flagSolcoverUsageConstant)

	return command, nil
}

// BuildRemove constructs the remove command.
func (builder *CommandBuilder) BuildRemove() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortDescriptionConstant,
		Long:  removeCommandLongDescriptionConstant,
		RunE:  builder.runRemove,
	}

	flagutils.BindRootFlag(command, "")

	return command, nil
}

func (builder *CommandBuilder) runInstall(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedArgumentsTemplateConstant, installCommandUseConstant)
	}

	projectLayout, layoutError := builder.resolveLayout(command)
	if layoutError != nil {
		return layoutError
	}

	coverageConfiguration, coverageError := builder.readCoverageConfiguration(command)
	if coverageError != nil {
		return coverageError
	}

	buildConfigurationContent := ""
	buildConfigurationFile, _ := command.Flags().GetString(flagBuildConfigFileNameConstant)
	if trimmedFile := strings.TrimSpace(buildConfigurationFile); len(trimmedFile) > 0 {
		contents, readError := builder.resolveFileSystem().ReadFile(trimmedFile)
		if readError != nil {
			return fmt.Errorf(buildConfigurationReadErrorTemplateConstant, trimmedFile, readError)
		}
		buildConfigurationContent = string(contents)
	}

	contractName, _ := command.Flags().GetString(flagContractNameConstant)
	testName, _ := command.Flags().GetString(flagTestNameConstant)
	buildConfigurationName, _ := command.Flags().GetString(flagBuildConfigNameNameConstant)
	skipMigration, _ := command.Flags().GetBool(flagSkipMigrationNameConstant)

	scaffoldBuilder, builderError := NewBuilder(projectLayout, builder.dependencies(command))
	if builderError != nil {
		return builderError
	}

	result, installError := scaffoldBuilder.Install(InstallOptions{
		Contract:                   strings.TrimSpace(contractName),
		Test:                       strings.TrimSpace(testName),
		CoverageConfiguration:      coverageConfiguration,
		BuildConfigurationContent:  buildConfigurationContent,
		BuildConfigurationFileName: strings.TrimSpace(buildConfigurationName),
		SkipMigration:              skipMigration,
	})
	if installError != nil {
		return installError
	}

	return builder.reportInstall(command, projectLayout, result)
}

func (builder *CommandBuilder) runInstallMultiple(command *cobra.Command, arguments []string) error {
	projectLayout, layoutError := builder.resolveLayout(command)
	if layoutError != nil {
		return layoutError
	}

	coverageConfiguration, coverageError := builder.readCoverageConfiguration(command)
	if coverageError != nil {
		return coverageError
	}

	testName, _ := command.Flags().GetString(flagTestNameConstant)
	contractNames := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		contractNames = append(contractNames, strings.TrimSpace(argument))
	}

	scaffoldBuilder, builderError := NewBuilder(projectLayout, builder.dependencies(command))
	if builderError != nil {
		return builderError
	}

	result, installError := scaffoldBuilder.InstallMultiple(MultipleInstallOptions{
		Contracts:             contractNames,
		Test:                  strings.TrimSpace(testName),
		CoverageConfiguration: coverageConfiguration,
	})
	if installError != nil {
		return installError
	}

	return builder.reportInstall(command, projectLayout, result)
}

func (builder *CommandBuilder) runRemove(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf(unexpectedArgumentsTemplateConstant, removeCommandUseConstant)
	}

	projectLayout, layoutError := builder.resolveLayout(command)
	if layoutError != nil {
		return layoutError
	}

	reaper, reaperError := NewReaper(projectLayout, builder.dependencies(command))
	if reaperError != nil {
		return reaperError
	}

	result, removeError := reaper.Remove()

	if reportError := builder.reporter(command).ReportRemoved(result.Removed); reportError != nil {
		return errors.Join(removeError, fmt.Errorf(reportErrorTemplateConstant, reportError))
	}
	return removeError
}

func (builder *CommandBuilder) resolveLayout(command *cobra.Command) (layout.Layout, error) {
	configuredLayout := layout.DefaultLayout("")
	if builder.ConfigurationProvider != nil {
		configuredLayout = builder.ConfigurationProvider()
	}
	configuredLayout.ProjectRoot = flagutils.ResolveRoot(command, configuredLayout.ProjectRoot)

	resolvedLayout, resolveError := configuredLayout.Resolve(builder.RootResolver)
	if resolveError != nil {
		return layout.Layout{}, fmt.Errorf(layoutResolutionErrorTemplateConstant, resolveError)
	}
	return resolvedLayout, nil
}

// readCoverageConfiguration decodes the --solcover file with YAML semantics, which
// also accept JSON documents. An absent flag yields an empty object.
func (builder *CommandBuilder) readCoverageConfiguration(command *cobra.Command) (any, error) {
	configurationPath, _ := command.Flags().GetString(flagSolcoverNameConstant)
	trimmedPath := strings.TrimSpace(configurationPath)
	if len(trimmedPath) == 0 {
		return map[string]any{}, nil
	}

	contents, readError := builder.resolveFileSystem().ReadFile(trimmedPath)
	if readError != nil {
		return nil, fmt.Errorf(coverageConfigurationReadErrorTemplate, trimmedPath, readError)
	}

	var coverageConfiguration any
	if decodeError := yaml.Unmarshal(contents, &coverageConfiguration); decodeError != nil {
		return nil, OperationError{
			Operation: OperationRenderCoverageConfiguration,
			Path:      trimmedPath,
			Kind:      ErrMalformedConfiguration,
			Cause:     fmt.Errorf(coverageConfigurationDecodeErrorTemplate, trimmedPath, decodeError),
		}
	}
	if coverageConfiguration == nil {
		return map[string]any{}, nil
	}
	return coverageConfiguration, nil
}

func (builder *CommandBuilder) reportInstall(command *cobra.Command, projectLayout layout.Layout, result InstallResult) error {
	reporter := builder.reporter(command)

	createdPaths := append([]string{result.WorkingTree}, result.Artifacts...)
	if reportError := reporter.ReportCreated(createdPaths); reportError != nil {
		return fmt.Errorf(reportErrorTemplateConstant, reportError)
	}

	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	teardownCommand := ui.TeardownCommand{
		ApplicationName:       applicationNameConstant,
		ProjectRoot:           projectLayout.ProjectRoot,
		ConfigurationFilePath: configurationFilePath,
	}
	if reportError := reporter.ReportTeardown(teardownCommand); reportError != nil {
		return fmt.Errorf(reportErrorTemplateConstant, reportError)
	}
	return nil
}

func (builder *CommandBuilder) dependencies(command *cobra.Command) Dependencies {
	logger := builder.resolveLogger()
	configurationFilePath, _ := utils.NewCommandContextAccessor().ConfigurationFilePath(command.Context())
	logger.Debug(
		scaffoldCommandStartedMessageConstant,
		zap.String(logFieldOperationConstant, command.Name()),
		zap.String(logFieldConfigFileConstant, configurationFilePath),
	)
	return Dependencies{FileSystem: builder.resolveFileSystem(), Logger: logger}
}

func (builder *CommandBuilder) reporter(command *cobra.Command) *ui.ArtifactReporter {
	colorize := false
	if builder.HumanReadableLoggingProvider != nil {
		colorize = builder.HumanReadableLoggingProvider() && !color.NoColor
	}
	return ui.NewArtifactReporter(command.OutOrStdout(), colorize)
}

func (builder *CommandBuilder) resolveFileSystem() filesystem.FileSystem {
	if builder.FileSystem == nil {
		return filesystem.OSFileSystem{}
	}
	return builder.FileSystem
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}
