package pathutils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	tildeSymbolConstant               = "~"
	tildeForwardSlashPrefixConstant   = "~/"
	currentDirectoryConstant          = "."
	rootAbsoluteErrorTemplateConstant = "unable to resolve project root %s: %w"
)

var tildeWithPathSeparatorPrefix = tildeSymbolConstant + string(os.PathSeparator)

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// AbsolutePathProvider converts a path into an absolute one.
type AbsolutePathProvider func(string) (string, error)

// RootResolver turns user supplied project roots into cleaned absolute paths.
type RootResolver struct {
	homeDirectoryProvider HomeDirectoryProvider
	absolutePathProvider  AbsolutePathProvider
	homeDirectory         string
	homeDirectoryError    error
	initializationGuard   sync.Once
}

// NewRootResolver constructs a RootResolver backed by the operating system.
func NewRootResolver() *RootResolver {
	return NewRootResolverWithProviders(os.UserHomeDir, filepath.Abs)
}

// NewRootResolverWithProviders constructs a RootResolver with custom lookups.
func NewRootResolverWithProviders(homeProvider HomeDirectoryProvider, absoluteProvider AbsolutePathProvider) *RootResolver {
	if homeProvider == nil {
		homeProvider = os.UserHomeDir
	}
	if absoluteProvider == nil {
		absoluteProvider = filepath.Abs
	}
	return &RootResolver{homeDirectoryProvider: homeProvider, absolutePathProvider: absoluteProvider}
}

// ExpandHome resolves a leading tilde to the user's home directory.
func (resolver *RootResolver) ExpandHome(candidatePath string) string {
	if resolver == nil || len(candidatePath) == 0 || !strings.HasPrefix(candidatePath, tildeSymbolConstant) {
		return candidatePath
	}

	resolvedHomeDirectory := resolver.resolveHomeDirectory()
	if len(resolvedHomeDirectory) == 0 {
		return candidatePath
	}

	switch {
	case candidatePath == tildeSymbolConstant:
		return resolvedHomeDirectory
	case strings.HasPrefix(candidatePath, tildeForwardSlashPrefixConstant):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeForwardSlashPrefixConstant))
	case tildeWithPathSeparatorPrefix != tildeForwardSlashPrefixConstant && strings.HasPrefix(candidatePath, tildeWithPathSeparatorPrefix):
		return filepath.Join(resolvedHomeDirectory, strings.TrimPrefix(candidatePath, tildeWithPathSeparatorPrefix))
	}

	return candidatePath
}

// Resolve trims, expands, and absolutizes the supplied project root.
// An empty root resolves to the current working directory.
func (resolver *RootResolver) Resolve(candidateRoot string) (string, error) {
	trimmedRoot := strings.TrimSpace(candidateRoot)
	if len(trimmedRoot) == 0 {
		trimmedRoot = currentDirectoryConstant
	}

	expandedRoot := resolver.ExpandHome(trimmedRoot)

	absoluteProvider := filepath.Abs
	if resolver != nil && resolver.absolutePathProvider != nil {
		absoluteProvider = resolver.absolutePathProvider
	}

	absoluteRoot, absoluteError := absoluteProvider(expandedRoot)
	if absoluteError != nil {
		return "", fmt.Errorf(rootAbsoluteErrorTemplateConstant, expandedRoot, absoluteError)
	}

	return filepath.Clean(absoluteRoot), nil
}

func (resolver *RootResolver) resolveHomeDirectory() string {
	resolver.initializationGuard.Do(func() {
		resolver.homeDirectory, resolver.homeDirectoryError = resolver.homeDirectoryProvider()
	})
	if resolver.homeDirectoryError != nil {
		return ""
	}
	return resolver.homeDirectory
}
