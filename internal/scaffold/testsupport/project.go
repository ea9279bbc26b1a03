package testsupport

import (
	_ "embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/temirov/mockscaffold/internal/filesystem"
	"github.com/temirov/mockscaffold/internal/layout"
)

// Fixture references available in the materialized project.
const (
	SimpleTokenContract = "SimpleToken"
	BaseContract        = "Base"
	DerivedContract     = "Derived"
	FooContract         = "Foo"
	SimpleTest          = "simpleTest.js"
	InheritTest         = "inherit.js"
	FooTest             = "foo.js"
	MissingContract     = "Missing"
	MissingTest         = "missing.js"
)

const (
	directorySnapshotSuffix = "/"
	symlinkSnapshotPrefix   = "-> "
	fixtureDirectoryMode    = fs.FileMode(0o755)
	fixtureFileMode         = fs.FileMode(0o644)
)

//go:embed project.txtar
var projectArchive []byte

// Materialize writes the fixture project under projectRoot and returns the default layout rooted there.
func Materialize(testInstance testing.TB, projectRoot string) layout.Layout {
	testInstance.Helper()

	archive := txtar.Parse(projectArchive)
	for _, archiveFile := range archive.Files {
		destinationPath := filepath.Join(projectRoot, filepath.FromSlash(archiveFile.Name))
		require.NoError(testInstance, os.MkdirAll(filepath.Dir(destinationPath), fixtureDirectoryMode))
		require.NoError(testInstance, os.WriteFile(destinationPath, archiveFile.Data, fixtureFileMode))
	}

	return layout.DefaultLayout(projectRoot)
}

// FixtureContents returns the archived contents of the fixture file at relativePath.
func FixtureContents(testInstance testing.TB, relativePath string) []byte {
	testInstance.Helper()

	for _, archiveFile := range txtar.Parse(projectArchive).Files {
		if archiveFile.Name == relativePath {
			return archiveFile.Data
		}
	}
	require.FailNowf(testInstance, "unknown fixture", "fixture %s is not archived", relativePath)
	return nil
}

// TemplateEntries lists the template tree files relative to the template root.
func TemplateEntries(templateDirectory string) []string {
	var entries []string
	prefix := templateDirectory + directorySnapshotSuffix
	for _, archiveFile := range txtar.Parse(projectArchive).Files {
		if relativePath, found := strings.CutPrefix(archiveFile.Name, prefix); found {
			entries = append(entries, relativePath)
		}
	}
	return entries
}

// Snapshot maps every path under projectRoot to its contents. Directories carry a
// trailing slash and symbolic links record their target.
func Snapshot(testInstance testing.TB, projectRoot string) map[string]string {
	testInstance.Helper()

	snapshot := map[string]string{}
	walkError := filepath.WalkDir(projectRoot, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}
		relativePath, relativeError := filepath.Rel(projectRoot, path)
		if relativeError != nil {
			return relativeError
		}
		if relativePath == "." {
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)

		switch {
		case entry.IsDir():
			snapshot[relativePath+directorySnapshotSuffix] = ""
		case entry.Type()&fs.ModeSymlink != 0:
			linkTarget, readlinkError := os.Readlink(path)
			if readlinkError != nil {
				return readlinkError
			}
			snapshot[relativePath] = symlinkSnapshotPrefix + linkTarget
		default:
			contents, readError := os.ReadFile(path)
			if readError != nil {
				return readError
			}
			snapshot[relativePath] = string(contents)
		}
		return nil
	})
	require.NoError(testInstance, walkError)
	return snapshot
}

// FileSystemStub delegates to the operating system and injects failures per path.
type FileSystemStub struct {
	filesystem.OSFileSystem
	WriteErrors     map[string]error
	RemoveAllErrors map[string]error
	RemovedPaths    []string
}

// WriteFile fails with the configured error for path, or writes through.
func (stub *FileSystemStub) WriteFile(path string, data []byte, permissions fs.FileMode) error {
	if injectedError, exists := stub.WriteErrors[path]; exists {
		return injectedError
	}
	return stub.OSFileSystem.WriteFile(path, data, permissions)
}

// RemoveAll records the request and fails with the configured error for path, or removes through.
func (stub *FileSystemStub) RemoveAll(path string) error {
	stub.RemovedPaths = append(stub.RemovedPaths, path)
	if injectedError, exists := stub.RemoveAllErrors[path]; exists {
		return injectedError
	}
	return stub.OSFileSystem.RemoveAll(path)
}
