package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

const (
	// RootFlagName exposes the shared project root flag name.
	RootFlagName = "root"
	// RootFlagUsage describes the shared project root flag purpose.
	RootFlagUsage = "Project root holding the fixtures and the scaffold (defaults to the configured root or the working directory)"
)

// RootFlagValue stores the project root flag value.
type RootFlagValue struct {
	Root string
}

// BindRootFlag attaches the project root flag to command unless it is already defined.
func BindRootFlag(command *cobra.Command, defaultRoot string) *RootFlagValue {
	value := &RootFlagValue{Root: defaultRoot}
	if command == nil {
		return value
	}
	if command.Flags().Lookup(RootFlagName) == nil {
		command.Flags().StringVar(&value.Root, RootFlagName, defaultRoot, RootFlagUsage)
	}
	return value
}

// ResolveRoot returns the flag value when the user set it explicitly, and configuredRoot otherwise.
func ResolveRoot(command *cobra.Command, configuredRoot string) string {
	if command == nil {
		return configuredRoot
	}
	rootFlag := command.Flags().Lookup(RootFlagName)
	if rootFlag == nil || !rootFlag.Changed {
		return configuredRoot
	}
	flagValue := strings.TrimSpace(rootFlag.Value.String())
	if len(flagValue) == 0 {
		return configuredRoot
	}
	return flagValue
}
