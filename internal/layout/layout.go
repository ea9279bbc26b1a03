package layout

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	pathutils "github.com/temirov/mockscaffold/internal/utils/path"
)

const (
	defaultTemplateDirectoryConstant           = "test/integration/truffle"
	defaultContractSourcesDirectoryConstant    = "test/sources/solidity/contracts/app"
	defaultTestSourcesDirectoryConstant        = "test/sources/js"
	defaultWorkingTreeDirectoryConstant        = "mock"
	defaultContractsDirectoryConstant          = "contracts"
	defaultMigrationsDirectoryConstant         = "migrations"
	defaultTestsDirectoryConstant              = "test"
	defaultDeployScriptFileNameConstant        = "2_deploy.js"
	defaultBuildConfigurationFileNameConstant  = "truffle-config.js"
	defaultCoverageConfigurationFileConstant   = ".solcover.js"
	defaultCoverageReportDirectoryConstant     = "coverage"
	defaultCoverageReportFileConstant          = "coverage.json"
	defaultContractExtensionConstant           = ".sol"
	parentDirectoryReferenceConstant           = ".."
	currentDirectoryReferenceConstant          = "."
	relativePathRequiredTemplateConstant       = "%s must be a relative path inside the project root: %q"
	relativePathEmptyTemplateConstant          = "%s must not be empty"
	fileNameInvalidTemplateConstant            = "%s must be a plain file name: %q"
	projectRootResolutionErrorTemplateConstant = "unable to resolve project root: %w"
	workingTreeNestedTemplateConstant          = "%s must not be located inside the working tree: %q"
	workingTreeOverlapsTemplateConstant        = "working tree must not contain the project root or the template: %q"
	workingTreeSingleElementTemplateConstant   = "working tree must be a single directory name directly under the project root: %q"
	contractExtensionInvalidTemplateConstant   = "contract extension must start with a dot and must not contain separators or parent references: %q"
	extensionPrefixConstant                    = "."
	keyTemplateConstant                        = "%s.%s"
	projectRootKeyConstant                     = "root"
	templateDirectoryKeyConstant               = "template"
	contractSourcesDirectoryKeyConstant        = "contract_sources"
	testSourcesDirectoryKeyConstant            = "test_sources"
	workingTreeDirectoryKeyConstant            = "working_tree"
	contractsDirectoryKeyConstant              = "contracts_directory"
	migrationsDirectoryKeyConstant             = "migrations_directory"
	testsDirectoryKeyConstant                  = "tests_directory"
	deployScriptFileNameKeyConstant            = "deploy_script"
	buildConfigurationFileNameKeyConstant      = "build_config"
	coverageConfigurationFileNameKeyConstant   = "coverage_config"
	coverageReportDirectoryKeyConstant         = "coverage_report_directory"
	coverageReportFileKeyConstant              = "coverage_report_file"
	contractExtensionKeyConstant               = "contract_extension"
)

// Layout describes where a scaffold reads its fixtures and writes its artifacts.
// Every relative entry is resolved against ProjectRoot.
type Layout struct {
	ProjectRoot                   string `mapstructure:"root"`
	TemplateDirectory             string `mapstructure:"template"`
	ContractSourcesDirectory      string `mapstructure:"contract_sources"`
	TestSourcesDirectory          string `mapstructure:"test_sources"`
	WorkingTreeDirectory          string `mapstructure:"working_tree"`
	ContractsDirectory            string `mapstructure:"contracts_directory"`
	MigrationsDirectory           string `mapstructure:"migrations_directory"`
	TestsDirectory                string `mapstructure:"tests_directory"`
	DeployScriptFileName          string `mapstructure:"deploy_script"`
	BuildConfigurationFileName    string `mapstructure:"build_config"`
	CoverageConfigurationFileName string `mapstructure:"coverage_config"`
	CoverageReportDirectory       string `mapstructure:"coverage_report_directory"`
	CoverageReportFile            string `mapstructure:"coverage_report_file"`
	ContractExtension             string `mapstructure:"contract_extension"`
}

// DefaultLayout returns the conventional Truffle mock layout rooted at projectRoot.
func DefaultLayout(projectRoot string) Layout {
	return Layout{
		ProjectRoot:                   projectRoot,
		TemplateDirectory:             defaultTemplateDirectoryConstant,
		ContractSourcesDirectory:      defaultContractSourcesDirectoryConstant,
		TestSourcesDirectory:          defaultTestSourcesDirectoryConstant,
		WorkingTreeDirectory:          defaultWorkingTreeDirectoryConstant,
		ContractsDirectory:            defaultContractsDirectoryConstant,
		MigrationsDirectory:           defaultMigrationsDirectoryConstant,
		TestsDirectory:                defaultTestsDirectoryConstant,
		DeployScriptFileName:          defaultDeployScriptFileNameConstant,
		BuildConfigurationFileName:    defaultBuildConfigurationFileNameConstant,
		CoverageConfigurationFileName: defaultCoverageConfigurationFileConstant,
		CoverageReportDirectory:       defaultCoverageReportDirectoryConstant,
		CoverageReportFile:            defaultCoverageReportFileConstant,
		ContractExtension:             defaultContractExtensionConstant,
	}
}

// DefaultConfigurationValues exposes the default layout as configuration keys under prefix.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultLayout("")
	values := map[string]any{
		projectRootKeyConstant:                   defaults.ProjectRoot,
		templateDirectoryKeyConstant:             defaults.TemplateDirectory,
		contractSourcesDirectoryKeyConstant:      defaults.ContractSourcesDirectory,
		testSourcesDirectoryKeyConstant:          defaults.TestSourcesDirectory,
		workingTreeDirectoryKeyConstant:          defaults.WorkingTreeDirectory,
		contractsDirectoryKeyConstant:            defaults.ContractsDirectory,
		migrationsDirectoryKeyConstant:           defaults.MigrationsDirectory,
		testsDirectoryKeyConstant:                defaults.TestsDirectory,
		deployScriptFileNameKeyConstant:          defaults.DeployScriptFileName,
		buildConfigurationFileNameKeyConstant:    defaults.BuildConfigurationFileName,
		coverageConfigurationFileNameKeyConstant: defaults.CoverageConfigurationFileName,
		coverageReportDirectoryKeyConstant:       defaults.CoverageReportDirectory,
		coverageReportFileKeyConstant:            defaults.CoverageReportFile,
		contractExtensionKeyConstant:             defaults.ContractExtension,
	}

	trimmedPrefix := strings.TrimSpace(prefix)
	if len(trimmedPrefix) == 0 {
		return values
	}

	prefixed := make(map[string]any, len(values))
	for key, value := range values {
		prefixed[fmt.Sprintf(keyTemplateConstant, trimmedPrefix, key)] = value
	}
	return prefixed
}

// Sanitize trims every entry and fills blanks from the default layout.
func (layout Layout) Sanitize() Layout {
	defaults := DefaultLayout(strings.TrimSpace(layout.ProjectRoot))
	sanitized := defaults

	sanitized.TemplateDirectory = valueOrDefault(layout.TemplateDirectory, defaults.TemplateDirectory)
	sanitized.ContractSourcesDirectory = valueOrDefault(layout.ContractSourcesDirectory, defaults.ContractSourcesDirectory)
	sanitized.TestSourcesDirectory = valueOrDefault(layout.TestSourcesDirectory, defaults.TestSourcesDirectory)
	sanitized.WorkingTreeDirectory = valueOrDefault(layout.WorkingTreeDirectory, defaults.WorkingTreeDirectory)
	sanitized.ContractsDirectory = valueOrDefault(layout.ContractsDirectory, defaults.ContractsDirectory)
	sanitized.MigrationsDirectory = valueOrDefault(layout.MigrationsDirectory, defaults.MigrationsDirectory)
	sanitized.TestsDirectory = valueOrDefault(layout.TestsDirectory, defaults.TestsDirectory)
	sanitized.DeployScriptFileName = valueOrDefault(layout.DeployScriptFileName, defaults.DeployScriptFileName)
	sanitized.BuildConfigurationFileName = valueOrDefault(layout.BuildConfigurationFileName, defaults.BuildConfigurationFileName)
	sanitized.CoverageConfigurationFileName = valueOrDefault(layout.CoverageConfigurationFileName, defaults.CoverageConfigurationFileName)
	sanitized.CoverageReportDirectory = valueOrDefault(layout.CoverageReportDirectory, defaults.CoverageReportDirectory)
	sanitized.CoverageReportFile = valueOrDefault(layout.CoverageReportFile, defaults.CoverageReportFile)
	sanitized.ContractExtension = valueOrDefault(layout.ContractExtension, defaults.ContractExtension)

	return sanitized
}

// Resolve sanitizes the layout, absolutizes the project root, and validates every entry.
func (layout Layout) Resolve(resolver *pathutils.RootResolver) (Layout, error) {
	sanitized := layout.Sanitize()
	if resolver == nil {
		resolver = pathutils.NewRootResolver()
	}

	resolvedRoot, resolveError := resolver.Resolve(sanitized.ProjectRoot)
	if resolveError != nil {
		return Layout{}, fmt.Errorf(projectRootResolutionErrorTemplateConstant, resolveError)
	}
	sanitized.ProjectRoot = resolvedRoot

	if validationError := sanitized.Validate(); validationError != nil {
		return Layout{}, validationError
	}
	return sanitized, nil
}

// Validate ensures every entry stays inside the project root, that the working tree
// is a single directory directly under the root, and that it never swallows the
// fixtures it is built from.
func (layout Layout) Validate() error {
	relativeEntries := []struct {
		name  string
		value string
	}{
		{name: templateDirectoryKeyConstant, value: layout.TemplateDirectory},
		{name: contractSourcesDirectoryKeyConstant, value: layout.ContractSourcesDirectory},
		{name: testSourcesDirectoryKeyConstant, value: layout.TestSourcesDirectory},
		{name: workingTreeDirectoryKeyConstant, value: layout.WorkingTreeDirectory},
		{name: contractsDirectoryKeyConstant, value: layout.ContractsDirectory},
		{name: migrationsDirectoryKeyConstant, value: layout.MigrationsDirectory},
		{name: testsDirectoryKeyConstant, value: layout.TestsDirectory},
		{name: coverageReportDirectoryKeyConstant, value: layout.CoverageReportDirectory},
		{name: coverageReportFileKeyConstant, value: layout.CoverageReportFile},
	}

	var validationErrors []error
	for _, entry := range relativeEntries {
		if entryError := validateRelativePath(entry.name, entry.value); entryError != nil {
			validationErrors = append(validationErrors, entryError)
		}
	}

	fileNameEntries := []struct {
		name  string
		value string
	}{
		{name: deployScriptFileNameKeyConstant, value: layout.DeployScriptFileName},
		{name: buildConfigurationFileNameKeyConstant, value: layout.BuildConfigurationFileName},
		{name: coverageConfigurationFileNameKeyConstant, value: layout.CoverageConfigurationFileName},
	}
	for _, entry := range fileNameEntries {
		if entryError := ValidateFileName(entry.name, entry.value); entryError != nil {
			validationErrors = append(validationErrors, entryError)
		}
	}

	if extensionError := validateContractExtension(layout.ContractExtension); extensionError != nil {
		validationErrors = append(validationErrors, extensionError)
	}

	if len(validationErrors) > 0 {
		return errors.Join(validationErrors...)
	}

	workingTree := filepath.Clean(filepath.FromSlash(layout.WorkingTreeDirectory))
	if workingTree == currentDirectoryReferenceConstant {
		return fmt.Errorf(workingTreeOverlapsTemplateConstant, layout.WorkingTreeDirectory)
	}
	// Only the working tree itself is a removal target, never its parents.
	if strings.ContainsRune(workingTree, filepath.Separator) {
		return fmt.Errorf(workingTreeSingleElementTemplateConstant, layout.WorkingTreeDirectory)
	}
	fixtureEntries := []struct {
		name  string
		value string
	}{
		{name: templateDirectoryKeyConstant, value: layout.TemplateDirectory},
		{name: contractSourcesDirectoryKeyConstant, value: layout.ContractSourcesDirectory},
		{name: testSourcesDirectoryKeyConstant, value: layout.TestSourcesDirectory},
	}
	for _, entry := range fixtureEntries {
		fixturePath := filepath.Clean(filepath.FromSlash(entry.value))
		if isWithin(workingTree, fixturePath) || isWithin(fixturePath, workingTree) {
			return fmt.Errorf(workingTreeNestedTemplateConstant, entry.name, entry.value)
		}
	}

	return nil
}

// ValidateFileName rejects values that are not a single path element.
func ValidateFileName(name string, value string) error {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fmt.Errorf(relativePathEmptyTemplateConstant, name)
	}
	if trimmedValue != value ||
		trimmedValue == currentDirectoryReferenceConstant ||
		trimmedValue == parentDirectoryReferenceConstant ||
		strings.ContainsAny(trimmedValue, `/\`) {
		return fmt.Errorf(fileNameInvalidTemplateConstant, name, value)
	}
	return nil
}

// TemplatePath returns the absolute location of the template tree.
func (layout Layout) TemplatePath() string {
	return layout.join(layout.TemplateDirectory)
}

// ContractSourcePath returns the fixture source file for the named contract.
func (layout Layout) ContractSourcePath(contractName string) string {
	return filepath.Join(layout.join(layout.ContractSourcesDirectory), contractName+layout.ContractExtension)
}

// TestSourcePath returns the fixture test file with the provided name.
func (layout Layout) TestSourcePath(testName string) string {
	return filepath.Join(layout.join(layout.TestSourcesDirectory), testName)
}

// WorkingTreePath returns the root of the mutable scaffold.
func (layout Layout) WorkingTreePath() string {
	return layout.join(layout.WorkingTreeDirectory)
}

// ContractDestinationPath returns where the named contract lands inside the working tree.
func (layout Layout) ContractDestinationPath(contractName string) string {
	return filepath.Join(layout.WorkingTreePath(), filepath.FromSlash(layout.ContractsDirectory), contractName+layout.ContractExtension)
}

// TestDestinationPath returns where the named test lands inside the working tree.
func (layout Layout) TestDestinationPath(testName string) string {
	return filepath.Join(layout.WorkingTreePath(), filepath.FromSlash(layout.TestsDirectory), testName)
}

// DeployScriptPath returns the generated migration location.
func (layout Layout) DeployScriptPath() string {
	return filepath.Join(layout.WorkingTreePath(), filepath.FromSlash(layout.MigrationsDirectory), layout.DeployScriptFileName)
}

// BuildConfigurationPath returns the build tool configuration location for fileName,
// falling back to the layout default when fileName is empty.
func (layout Layout) BuildConfigurationPath(fileName string) string {
	if len(fileName) == 0 {
		fileName = layout.BuildConfigurationFileName
	}
	return filepath.Join(layout.WorkingTreePath(), fileName)
}

// CoverageConfigurationPath returns the generated coverage configuration location.
func (layout Layout) CoverageConfigurationPath() string {
	return filepath.Join(layout.WorkingTreePath(), layout.CoverageConfigurationFileName)
}

// ProjectCoverageConfigurationPath returns the coverage configuration location at the project root.
func (layout Layout) ProjectCoverageConfigurationPath() string {
	return filepath.Join(layout.ProjectRoot, layout.CoverageConfigurationFileName)
}

// CoverageReportDirectoryPath returns the coverage report directory a coverage run produces.
func (layout Layout) CoverageReportDirectoryPath() string {
	return layout.join(layout.CoverageReportDirectory)
}

// CoverageReportFilePath returns the coverage data file a coverage run produces.
func (layout Layout) CoverageReportFilePath() string {
	return layout.join(layout.CoverageReportFile)
}

// RemovalTargets lists every path a reaper deletes, in deletion order.
// The working tree entry covers every artifact written by a builder.
func (layout Layout) RemovalTargets() []string {
	return []string{
		layout.CoverageConfigurationPath(),
		layout.ProjectCoverageConfigurationPath(),
		layout.WorkingTreePath(),
		layout.CoverageReportDirectoryPath(),
		layout.CoverageReportFilePath(),
	}
}

// Covers reports whether path is one of the removal targets or nested under one.
func (layout Layout) Covers(path string) bool {
	cleanedPath := filepath.Clean(path)
	for _, target := range layout.RemovalTargets() {
		if isWithin(filepath.Clean(target), cleanedPath) {
			return true
		}
	}
	return false
}

func (layout Layout) join(relativePath string) string {
	return filepath.Join(layout.ProjectRoot, filepath.FromSlash(relativePath))
}

func validateRelativePath(name string, value string) error {
	if len(value) == 0 {
		return fmt.Errorf(relativePathEmptyTemplateConstant, name)
	}

	localPath := filepath.FromSlash(value)
	if filepath.IsAbs(localPath) || strings.HasPrefix(value, "/") || filepath.VolumeName(localPath) != "" {
		return fmt.Errorf(relativePathRequiredTemplateConstant, name, value)
	}

	cleanedPath := filepath.Clean(localPath)
	if cleanedPath == parentDirectoryReferenceConstant || strings.HasPrefix(cleanedPath, parentDirectoryReferenceConstant+string(filepath.Separator)) {
		return fmt.Errorf(relativePathRequiredTemplateConstant, name, value)
	}
	return nil
}

func validateContractExtension(extension string) error {
	if !strings.HasPrefix(extension, extensionPrefixConstant) ||
		len(extension) == len(extensionPrefixConstant) ||
		strings.Contains(extension, parentDirectoryReferenceConstant) ||
		strings.ContainsAny(extension, `/\`) {
		return fmt.Errorf(contractExtensionInvalidTemplateConstant, extension)
	}
	return nil
}

func isWithin(parentPath string, candidatePath string) bool {
	if parentPath == candidatePath {
		return true
	}
	relativePath, relativeError := filepath.Rel(parentPath, candidatePath)
	if relativeError != nil {
		return false
	}
	return relativePath != parentDirectoryReferenceConstant &&
		!strings.HasPrefix(relativePath, parentDirectoryReferenceConstant+string(filepath.Separator)) &&
		!filepath.IsAbs(relativePath)
}

func valueOrDefault(value string, fallback string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallback
	}
	return trimmedValue
}
