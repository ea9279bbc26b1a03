package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

const (
	directoryPermissionConstant          = fs.FileMode(0o755)
	copySourceNotDirectoryTemplate       = "copy source is not a directory: %s"
	copyRelativePathErrorTemplate        = "unable to resolve %s relative to %s: %w"
	copyReadErrorTemplate                = "unable to read %s: %w"
	copyWriteErrorTemplate               = "unable to write %s: %w"
	copyDirectoryErrorTemplate           = "unable to create directory %s: %w"
	copyStatErrorTemplate                = "unable to stat %s: %w"
	copySymlinkErrorTemplate             = "unable to copy symbolic link %s: %w"
	copyUnsupportedEntryTemplate         = "unsupported file type at %s"
	copyReplaceExistingEntryTemplate     = "unable to replace %s: %w"
	copyDestinationNotDirectoryTemplate  = "copy destination is not a directory: %s"
	copyDestinationParentCreateTemplate  = "unable to create parent directory for %s: %w"
	copyDestinationDirectoryInspectError = "unable to inspect destination %s: %w"
)

// CopyFile copies sourcePath to destinationPath, preserving the source permission bits.
// The destination parent directory is created when missing and an existing destination file is overwritten.
func CopyFile(fileSystem FileSystem, sourcePath string, destinationPath string) error {
	sourceInfo, statError := fileSystem.Stat(sourcePath)
	if statError != nil {
		return fmt.Errorf(copyStatErrorTemplate, sourcePath, statError)
	}

	contents, readError := fileSystem.ReadFile(sourcePath)
	if readError != nil {
		return fmt.Errorf(copyReadErrorTemplate, sourcePath, readError)
	}

	if mkdirError := fileSystem.MkdirAll(filepath.Dir(destinationPath), directoryPermissionConstant); mkdirError != nil {
		return fmt.Errorf(copyDestinationParentCreateTemplate, destinationPath, mkdirError)
	}

	if writeError := fileSystem.WriteFile(destinationPath, contents, sourceInfo.Mode().Perm()); writeError != nil {
		return fmt.Errorf(copyWriteErrorTemplate, destinationPath, writeError)
	}

	return nil
}

// CopyTree recursively copies the contents of sourceDirectory into destinationDirectory.
// Paths already present at the destination are overwritten; unrelated destination paths are left untouched.
// It returns the destination paths it wrote, in walk order.
func CopyTree(fileSystem FileSystem, sourceDirectory string, destinationDirectory string) ([]string, error) {
	sourceInfo, statError := fileSystem.Stat(sourceDirectory)
	if statError != nil {
		return nil, fmt.Errorf(copyStatErrorTemplate, sourceDirectory, statError)
	}
	if !sourceInfo.IsDir() {
		return nil, fmt.Errorf(copySourceNotDirectoryTemplate, sourceDirectory)
	}

	var copiedPaths []string

	walkError := fileSystem.WalkDir(sourceDirectory, func(path string, entry fs.DirEntry, walkError error) error {
		if walkError != nil {
			return walkError
		}

		relativePath, relativeError := filepath.Rel(sourceDirectory, path)
		if relativeError != nil {
			return fmt.Errorf(copyRelativePathErrorTemplate, path, sourceDirectory, relativeError)
		}
		destinationPath := filepath.Join(destinationDirectory, relativePath)

		switch {
		case entry.IsDir():
			if ensureError := ensureDirectory(fileSystem, destinationPath); ensureError != nil {
				return ensureError
			}
		case entry.Type()&fs.ModeSymlink != 0:
			if linkError := copySymlink(fileSystem, path, destinationPath); linkError != nil {
				return linkError
			}
		case entry.Type().IsRegular():
			if copyError := CopyFile(fileSystem, path, destinationPath); copyError != nil {
				return copyError
			}
		default:
			return fmt.Errorf(copyUnsupportedEntryTemplate, path)
		}

		if relativePath != "." {
			copiedPaths = append(copiedPaths, destinationPath)
		}
		return nil
	})
	if walkError != nil {
		return copiedPaths, walkError
	}

	return copiedPaths, nil
}

func ensureDirectory(fileSystem FileSystem, path string) error {
	existingInfo, statError := fileSystem.Lstat(path)
	switch {
	case statError == nil && existingInfo.IsDir():
		return nil
	case statError == nil:
		return fmt.Errorf(copyDestinationNotDirectoryTemplate, path)
	case !errors.Is(statError, fs.ErrNotExist):
		return fmt.Errorf(copyDestinationDirectoryInspectError, path, statError)
	}

	if mkdirError := fileSystem.MkdirAll(path, directoryPermissionConstant); mkdirError != nil {
		return fmt.Errorf(copyDirectoryErrorTemplate, path, mkdirError)
	}
	return nil
}

func copySymlink(fileSystem FileSystem, sourcePath string, destinationPath string) error {
	linkTarget, readlinkError := fileSystem.Readlink(sourcePath)
	if readlinkError != nil {
		return fmt.Errorf(copySymlinkErrorTemplate, sourcePath, readlinkError)
	}

	if _, statError := fileSystem.Lstat(destinationPath); statError == nil {
		if removeError := fileSystem.Remove(destinationPath); removeError != nil {
			return fmt.Errorf(copyReplaceExistingEntryTemplate, destinationPath, removeError)
		}
	}

	if symlinkError := fileSystem.Symlink(linkTarget, destinationPath); symlinkError != nil {
		return fmt.Errorf(copySymlinkErrorTemplate, sourcePath, symlinkError)
	}
	return nil
}
