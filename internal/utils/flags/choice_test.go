package flags_test

import (
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/mockscaffold/internal/utils/flags"
)

const (
	flagsSubtestNameTemplate   = "%d_%s"
	testConfiguredRootConstant = "/workspace/configured"
	testFlagRootConstant       = "/workspace/flag"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "default_first_choice",
			defaultChoice:  "structured",
			choices:        []string{"structured", "console"},
			description:    "Override the configured log format.",
			expectedOutput: "`<STRUCTURED|console>` Override the configured log format.",
		},
		{
			name:           "default_later_choice",
			defaultChoice:  "info",
			choices:        []string{"debug", "info", "warn", "error"},
			description:    "Override the configured log level.",
			expectedOutput: "`<debug|INFO|warn|error>` Override the configured log level.",
		},
		{
			name:           "empty_description",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "duplicates_and_blanks_ignored",
			defaultChoice:  "beta",
			choices:        []string{"beta", " ", "BETA", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(flagsSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedOutput, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestResolveRoot(testInstance *testing.T) {
	testCases := []struct {
		name         string
		arguments    []string
		expectedRoot string
	}{
		{
			name:         "configured_root_without_flag",
			arguments:    []string{},
			expectedRoot: testConfiguredRootConstant,
		},
		{
			name:         "flag_overrides_configuration",
			arguments:    []string{"--root", testFlagRootConstant},
			expectedRoot: testFlagRootConstant,
		},
		{
			name:         "blank_flag_keeps_configuration",
			arguments:    []string{"--root", " "},
			expectedRoot: testConfiguredRootConstant,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(flagsSubtestNameTemplate, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			command := &cobra.Command{Use: "choose", RunE: func(*cobra.Command, []string) error { return nil }}
			flags.BindRootFlag(command, "")
			command.SetArgs(testCase.arguments)
			require.NoError(testInstance, command.Execute())

			require.Equal(testInstance, testCase.expectedRoot, flags.ResolveRoot(command, testConfiguredRootConstant))
		})
	}
}
