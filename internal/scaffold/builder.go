package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/mockscaffold/internal/filesystem"
	"github.com/temirov/mockscaffold/internal/layout"
	"github.com/temirov/mockscaffold/internal/solcover"
)

const (
	directoryPermissionConstant             = fs.FileMode(0o755)
	generatedFilePermissionConstant         = fs.FileMode(0o644)
	requiredContractCountConstant           = 2
	contractReferenceNameConstant           = "contract"
	testReferenceNameConstant               = "test"
	buildConfigurationReferenceNameConstant = "build configuration file name"
	contractCountTemplateConstant           = "expected exactly %d contracts, received %d"
	duplicateContractTemplateConstant       = "dependency and dependent contracts must differ: %s"
	layoutValidationErrorTemplateConstant   = "invalid scaffold layout: %w"
	scaffoldStepCompletedMessageConstant    = "Scaffold step completed"
	scaffoldInstalledMessageConstant        = "Scaffold installed"
	scaffoldInstallFailedMessageConstant    = "Scaffold installation failed"
	logFieldOperationConstant               = "operation"
	logFieldPathConstant                    = "path"
	logFieldWorkingTreeConstant             = "working_tree"
	logFieldContractsConstant               = "contracts"
	logFieldTestConstant                    = "test"
	logFieldArtifactsConstant               = "artifacts"
	logFieldTemplateEntryCountConstant      = "template_entries"
	logFieldMigrationSkippedConstant        = "migration_skipped"
	logFieldBuildConfigurationConstant      = "build_configuration"
	logFieldBuildOverriddenConstant         = "build_configuration_overridden"
)

// Dependencies supplies collaborators shared by builders and reapers.
type Dependencies struct {
	FileSystem filesystem.FileSystem
	Logger     *zap.Logger
}

// InstallOptions configures a single contract scaffold.
type InstallOptions struct {
	// Contract names <contract><extension> in the fixture contract sources.
	Contract string
	// Test names a file in the fixture test sources.
	Test string
	// CoverageConfiguration is serialized into the coverage tool configuration module.
	CoverageConfiguration any
	// BuildConfigurationContent replaces the default build tool configuration when non-empty.
	BuildConfigurationContent string
	// BuildConfigurationFileName replaces the default build tool configuration file name when non-empty.
	BuildConfigurationFileName string
	// SkipMigration suppresses the generated deploy script.
	SkipMigration bool
}

// MultipleInstallOptions configures a scaffold with a dependency contract linked into a dependent contract.
type MultipleInstallOptions struct {
	// Contracts holds the dependency followed by the dependent.
	Contracts             []string
	Test                  string
	CoverageConfiguration any
}

// InstallResult reports what a builder wrote.
type InstallResult struct {
	WorkingTree     string
	TemplateEntries []string
	Artifacts       []string
}

// Builder materializes mock projects inside a layout's working tree.
type Builder struct {
	layout     layout.Layout
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

type installationStep struct {
	operation OperationName
	path      string
	execute   func() ([]string, error)
}

type installationPlan struct {
	contracts       []string
	test            string
	skipMigration   bool
	buildFile       string
	buildOverridden bool
	steps           []installationStep
}

// NewBuilder validates the layout and constructs a Builder.
func NewBuilder(projectLayout layout.Layout, dependencies Dependencies) (*Builder, error) {
	sanitizedLayout := projectLayout.Sanitize()
	if validationError := sanitizedLayout.Validate(); validationError != nil {
		return nil, fmt.Errorf(layoutValidationErrorTemplateConstant, validationError)
	}

	fileSystem := dependencies.FileSystem
	if fileSystem == nil {
		fileSystem = filesystem.OSFileSystem{}
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Builder{layout: sanitizedLayout, fileSystem: fileSystem, logger: logger}, nil
}

// Layout returns the sanitized layout the builder writes into.
func (builder *Builder) Layout() layout.Layout {
	return builder.layout
}

// Install creates the working tree, copies the template, the contract, and the
// test, and writes the deploy script, build configuration, and coverage configuration.
// Every destination and generated artifact is computed before the first write.
// A failure stops at the failing step and leaves earlier steps in place.
func (builder *Builder) Install(options InstallOptions) (InstallResult, error) {
	plan, planError := builder.planInstall(options)
	if planError != nil {
		return InstallResult{}, planError
	}
	return builder.execute(plan)
}

// InstallMultiple creates a scaffold holding two contracts whose deploy script
// deploys the first contract, links it into the second, and deploys the second.
func (builder *Builder) InstallMultiple(options MultipleInstallOptions) (InstallResult, error) {
	plan, planError := builder.planInstallMultiple(options)
	if planError != nil {
		return InstallResult{}, planError
	}
	return builder.execute(plan)
}

func (builder *Builder) planInstall(options InstallOptions) (installationPlan, error) {
	if referenceError := validateReference(contractReferenceNameConstant, options.Contract); referenceError != nil {
		return installationPlan{}, referenceError
	}
	if referenceError := validateReference(testReferenceNameConstant, options.Test); referenceError != nil {
		return installationPlan{}, referenceError
	}
	if len(options.BuildConfigurationFileName) > 0 {
		if referenceError := validateReference(buildConfigurationReferenceNameConstant, options.BuildConfigurationFileName); referenceError != nil {
			return installationPlan{}, referenceError
		}
	}

	coverageModule, renderError := renderCoverageConfiguration(options.CoverageConfiguration)
	if renderError != nil {
		return installationPlan{}, renderError
	}

	buildContent := options.BuildConfigurationContent
	if len(buildContent) == 0 {
		buildContent = DefaultBuildConfiguration
	}
	buildPath := builder.layout.BuildConfigurationPath(options.BuildConfigurationFileName)

	plan := installationPlan{
		contracts:       []string{options.Contract},
		test:            options.Test,
		skipMigration:   options.SkipMigration,
		buildFile:       buildPath,
		buildOverridden: len(options.BuildConfigurationContent) > 0,
	}

	plan.steps = append(plan.steps, builder.workingTreeSteps()...)
	plan.steps = append(plan.steps, builder.copyFixtureStep(OperationCopyContract, builder.layout.ContractSourcePath(options.Contract), builder.layout.ContractDestinationPath(options.Contract)))
	if !options.SkipMigration {
		plan.steps = append(plan.steps, builder.writeStep(OperationWriteDeployScript, builder.layout.DeployScriptPath(), []byte(RenderDeployScript(options.Contract))))
	}
	plan.steps = append(plan.steps,
		builder.writeStep(OperationWriteBuildConfiguration, buildPath, []byte(buildContent)),
		builder.writeStep(OperationWriteCoverageConfiguration, builder.layout.CoverageConfigurationPath(), coverageModule),
		builder.copyFixtureStep(OperationCopyTest, builder.layout.TestSourcePath(options.Test), builder.layout.TestDestinationPath(options.Test)),
	)

	return plan, nil
}

func (builder *Builder) planInstallMultiple(options MultipleInstallOptions) (installationPlan, error) {
	if len(options.Contracts) != requiredContractCountConstant {
		return installationPlan{}, OperationError{
			Operation: OperationValidateReferences,
			Kind:      ErrInvalidReference,
			Cause:     fmt.Errorf(contractCountTemplateConstant, requiredContractCountConstant, len(options.Contracts)),
		}
	}
	dependencyName, dependentName := options.Contracts[0], options.Contracts[1]
	for _, contractName := range options.Contracts {
		if referenceError := validateReference(contractReferenceNameConstant, contractName); referenceError != nil {
			return installationPlan{}, referenceError
		}
	}
	if dependencyName == dependentName {
		return installationPlan{}, OperationError{
			Operation: OperationValidateReferences,
			Kind:      ErrInvalidReference,
			Cause:     fmt.Errorf(duplicateContractTemplateConstant, dependencyName),
		}
	}
	if referenceError := validateReference(testReferenceNameConstant, options.Test); referenceError != nil {
		return installationPlan{}, referenceError
	}

	coverageModule, renderError := renderCoverageConfiguration(options.CoverageConfiguration)
	if renderError != nil {
		return installationPlan{}, renderError
	}

	buildPath := builder.layout.BuildConfigurationPath("")
	plan := installationPlan{
		contracts: []string{dependencyName, dependentName},
		test:      options.Test,
		buildFile: buildPath,
	}

	plan.steps = append(plan.steps, builder.workingTreeSteps()...)
	for _, contractName := range plan.contracts {
		plan.steps = append(plan.steps, builder.copyFixtureStep(OperationCopyContract, builder.layout.ContractSourcePath(contractName), builder.layout.ContractDestinationPath(contractName)))
	}
	plan.steps = append(plan.steps,
		builder.writeStep(OperationWriteDeployScript, builder.layout.DeployScriptPath(), []byte(RenderLinkedDeployScript(dependencyName, dependentName))),
		builder.writeStep(OperationWriteBuildConfiguration, buildPath, []byte(DefaultBuildConfiguration)),
		builder.writeStep(OperationWriteCoverageConfiguration, builder.layout.CoverageConfigurationPath(), coverageModule),
		builder.copyFixtureStep(OperationCopyTest, builder.layout.TestSourcePath(options.Test), builder.layout.TestDestinationPath(options.Test)),
	)

	return plan, nil
}

func (builder *Builder) workingTreeSteps() []installationStep {
	workingTree := builder.layout.WorkingTreePath()
	templatePath := builder.layout.TemplatePath()

	return []installationStep{
		{
			operation: OperationCreateWorkingTree,
			path:      workingTree,
			execute: func() ([]string, error) {
				if mkdirError := builder.fileSystem.MkdirAll(workingTree, directoryPermissionConstant); mkdirError != nil {
					return nil, OperationError{Operation: OperationCreateWorkingTree, Path: workingTree, Kind: ErrFilesystem, Cause: mkdirError}
				}
				return nil, nil
			},
		},
		{
			operation: OperationCopyTemplate,
			path:      templatePath,
			execute: func() ([]string, error) {
				if fixtureError := builder.ensureFixture(OperationCopyTemplate, templatePath); fixtureError != nil {
					return nil, fixtureError
				}
				copiedPaths, copyError := filesystem.CopyTree(builder.fileSystem, templatePath, workingTree)
				if copyError != nil {
					return copiedPaths, OperationError{Operation: OperationCopyTemplate, Path: templatePath, Kind: ErrFilesystem, Cause: copyError}
				}
				return copiedPaths, nil
			},
		},
	}
}

func (builder *Builder) copyFixtureStep(operation OperationName, sourcePath string, destinationPath string) installationStep {
	return installationStep{
		operation: operation,
		path:      destinationPath,
		execute: func() ([]string, error) {
			if fixtureError := builder.ensureFixture(operation, sourcePath); fixtureError != nil {
				return nil, fixtureError
			}
			if copyError := filesystem.CopyFile(builder.fileSystem, sourcePath, destinationPath); copyError != nil {
				return nil, OperationError{Operation: operation, Path: destinationPath, Kind: ErrFilesystem, Cause: copyError}
			}
			return []string{destinationPath}, nil
		},
	}
}

func (builder *Builder) writeStep(operation OperationName, destinationPath string, contents []byte) installationStep {
	return installationStep{
		operation: operation,
		path:      destinationPath,
		execute: func() ([]string, error) {
			if mkdirError := builder.fileSystem.MkdirAll(filepath.Dir(destinationPath), directoryPermissionConstant); mkdirError != nil {
				return nil, OperationError{Operation: operation, Path: destinationPath, Kind: ErrFilesystem, Cause: mkdirError}
			}
			if writeError := builder.fileSystem.WriteFile(destinationPath, contents, generatedFilePermissionConstant); writeError != nil {
				return nil, OperationError{Operation: operation, Path: destinationPath, Kind: ErrFilesystem, Cause: writeError}
			}
			return []string{destinationPath}, nil
		},
	}
}

func (builder *Builder) ensureFixture(operation OperationName, sourcePath string) error {
	_, statError := builder.fileSystem.Stat(sourcePath)
	switch {
	case statError == nil:
		return nil
	case errors.Is(statError, fs.ErrNotExist):
		return OperationError{Operation: operation, Path: sourcePath, Kind: ErrMissingFixture, Cause: statError}
	default:
		return OperationError{Operation: operation, Path: sourcePath, Kind: ErrFilesystem, Cause: statError}
	}
}

func (builder *Builder) execute(plan installationPlan) (InstallResult, error) {
	result := InstallResult{WorkingTree: builder.layout.WorkingTreePath()}

	for _, step := range plan.steps {
		writtenPaths, stepError := step.execute()
		if step.operation == OperationCopyTemplate {
			result.TemplateEntries = append(result.TemplateEntries, writtenPaths...)
		} else {
			result.Artifacts = append(result.Artifacts, writtenPaths...)
		}

		if stepError != nil {
			builder.logger.Error(
				scaffoldInstallFailedMessageConstant,
				zap.String(logFieldOperationConstant, string(step.operation)),
				zap.String(logFieldPathConstant, step.path),
				zap.Error(stepError),
			)
			return result, stepError
		}

		builder.logger.Debug(
			scaffoldStepCompletedMessageConstant,
			zap.String(logFieldOperationConstant, string(step.operation)),
			zap.String(logFieldPathConstant, step.path),
		)
	}

	builder.logger.Info(
		scaffoldInstalledMessageConstant,
		zap.String(logFieldWorkingTreeConstant, result.WorkingTree),
		zap.Strings(logFieldContractsConstant, plan.contracts),
		zap.String(logFieldTestConstant, plan.test),
		zap.Bool(logFieldMigrationSkippedConstant, plan.skipMigration),
		zap.String(logFieldBuildConfigurationConstant, plan.buildFile),
		zap.Bool(logFieldBuildOverriddenConstant, plan.buildOverridden),
		zap.Int(logFieldTemplateEntryCountConstant, len(result.TemplateEntries)),
		zap.Strings(logFieldArtifactsConstant, result.Artifacts),
	)

	return result, nil
}

func validateReference(referenceName string, value string) error {
	if validationError := layout.ValidateFileName(referenceName, value); validationError != nil {
		return OperationError{Operation: OperationValidateReferences, Kind: ErrInvalidReference, Cause: validationError}
	}
	return nil
}

func renderCoverageConfiguration(value any) ([]byte, error) {
	module, renderError := solcover.Render(value)
	if renderError != nil {
		return nil, OperationError{Operation: OperationRenderCoverageConfiguration, Kind: ErrMalformedConfiguration, Cause: renderError}
	}
	return module, nil
}
