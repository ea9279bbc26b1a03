package ui_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mockscaffold/internal/ui"
)

const (
	testProjectRootConstant        = "/tmp/project"
	testProjectRootWithSpace       = "/tmp/my project"
	testConfigurationPathConstant  = "/tmp/my project/config.yaml"
	testWorkingTreePathConstant    = "/tmp/project/mock"
	testDeployScriptPathConstant   = "/tmp/project/mock/migrations/2_deploy.js"
	testCoverageReportPathConstant = "/tmp/project/coverage.json"
	reportSubtestNameTemplate      = "%d_%s"
)

func TestArtifactReporterWritesLabeledLines(testInstance *testing.T) {
	testCases := []struct {
		name           string
		invoke         func(reporter *ui.ArtifactReporter) error
		expectedOutput string
	}{
		{
			name: "created_paths",
			invoke: func(reporter *ui.ArtifactReporter) error {
				return reporter.ReportCreated([]string{testWorkingTreePathConstant, testDeployScriptPathConstant})
			},
			expectedOutput: "CREATED: " + testWorkingTreePathConstant + "\nCREATED: " + testDeployScriptPathConstant + "\n",
		},
		{
			name: "removed_paths",
			invoke: func(reporter *ui.ArtifactReporter) error {
				return reporter.ReportRemoved([]string{testWorkingTreePathConstant})
			},
			expectedOutput: "REMOVED: " + testWorkingTreePathConstant + "\n",
		},
		{
			name: "removed_coverage_report",
			invoke: func(reporter *ui.ArtifactReporter) error {
				return reporter.ReportRemoved([]string{testCoverageReportPathConstant})
			},
			expectedOutput: "REMOVED: " + testCoverageReportPathConstant + "\n",
		},
		{
			name: "no_paths",
			invoke: func(reporter *ui.ArtifactReporter) error {
				return reporter.ReportCreated(nil)
			},
			expectedOutput: "",
		},
		{
			name: "teardown_hint",
			invoke: func(reporter *ui.ArtifactReporter) error {
				return reporter.ReportTeardown(ui.TeardownCommand{ApplicationName: "mockscaffold", ProjectRoot: testProjectRootConstant})
			},
			expectedOutput: "TEARDOWN: mockscaffold remove --root /tmp/project\n",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(reportSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			reporter := ui.NewArtifactReporter(outputBuffer, false)

			require.NoError(testInstance, testCase.invoke(reporter))
			require.Equal(testInstance, testCase.expectedOutput, outputBuffer.String())
		})
	}
}

func TestArtifactReporterColorizesLabels(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}
	reporter := ui.NewArtifactReporter(outputBuffer, true)

	require.NoError(testInstance, reporter.ReportCreated([]string{testWorkingTreePathConstant}))
	require.Contains(testInstance, outputBuffer.String(), "\x1b[")
	require.Contains(testInstance, outputBuffer.String(), testWorkingTreePathConstant)
}

func TestTeardownCommandQuotesArguments(testInstance *testing.T) {
	teardownCommand := ui.TeardownCommand{
		ProjectRoot:           testProjectRootWithSpace,
		ConfigurationFilePath: testConfigurationPathConstant,
	}

	require.Equal(
		testInstance,
		"mockscaffold remove --config '/tmp/my project/config.yaml' --root '/tmp/my project'",
		teardownCommand.String(),
	)
}
