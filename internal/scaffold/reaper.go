package scaffold

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/temirov/mockscaffold/internal/filesystem"
	"github.com/temirov/mockscaffold/internal/layout"
)

const (
	artifactRemovedMessageConstant       = "Scaffold artifact removed"
	artifactRemovalFailedMessageConstant = "Scaffold artifact removal failed"
	scaffoldRemovedMessageConstant       = "Scaffold removed"
	logFieldRemovedConstant              = "removed"
	logFieldAbsentConstant               = "absent"
	logFieldFailureCountConstant         = "failures"
)

// RemovalResult reports which removal targets existed and which were already gone.
type RemovalResult struct {
	Removed []string
	Absent  []string
}

// Reaper deletes every artifact a builder can create together with the coverage output.
type Reaper struct {
	layout     layout.Layout
	fileSystem filesystem.FileSystem
	logger     *zap.Logger
}

// NewReaper validates the layout and constructs a Reaper.
func NewReaper(projectLayout layout.Layout, dependencies Dependencies) (*Reaper, error) {
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

	return &Reaper{layout: sanitizedLayout, fileSystem: fileSystem, logger: logger}, nil
}

// Remove deletes every removal target. Missing targets are neither errors nor reported
// above debug level.
// Every target is attempted; failures are joined into the returned error.
func (reaper *Reaper) Remove() (RemovalResult, error) {
	var result RemovalResult
	var removalErrors []error

	for _, targetPath := range reaper.layout.RemovalTargets() {
		_, inspectError := reaper.fileSystem.Lstat(targetPath)
		if errors.Is(inspectError, fs.ErrNotExist) {
			result.Absent = append(result.Absent, targetPath)
			continue
		}

		removalError := inspectError
		if removalError == nil {
			removalError = reaper.fileSystem.RemoveAll(targetPath)
		}
		if removalError != nil {
			wrappedError := OperationError{Operation: OperationRemoveArtifact, Path: targetPath, Kind: ErrFilesystem, Cause: removalError}
			removalErrors = append(removalErrors, wrappedError)
			reaper.logger.Warn(
				artifactRemovalFailedMessageConstant,
				zap.String(logFieldPathConstant, targetPath),
				zap.Error(removalError),
			)
			continue
		}

		result.Removed = append(result.Removed, targetPath)
		reaper.logger.Debug(artifactRemovedMessageConstant, zap.String(logFieldPathConstant, targetPath))
	}

	summaryLevel := zapcore.InfoLevel
	if len(result.Removed) == 0 && len(removalErrors) == 0 {
		summaryLevel = zapcore.DebugLevel
	}
	reaper.logger.Log(
		summaryLevel,
		scaffoldRemovedMessageConstant,
		zap.Strings(logFieldRemovedConstant, result.Removed),
		zap.Strings(logFieldAbsentConstant, result.Absent),
		zap.Int(logFieldFailureCountConstant, len(removalErrors)),
	)

	return result, errors.Join(removalErrors...)
}
