package scaffold

import (
	"errors"
	"fmt"
)

const (
	operationErrorTemplateConstant          = "%s failed for %s: %v"
	operationErrorWithoutPathTemplate       = "%s failed: %v"
	operationErrorWithoutCauseTemplate      = "%s failed for %s"
	operationErrorWithoutPathOrCauseMessage = "%s failed"
)

// OperationName identifies a scaffold step.
type OperationName string

// Scaffold steps in the order a builder performs them, followed by the reaper step.
const (
	OperationCreateWorkingTree           OperationName = OperationName("create-working-tree")
	OperationCopyTemplate                OperationName = OperationName("copy-template")
	OperationCopyContract                OperationName = OperationName("copy-contract")
	OperationWriteDeployScript           OperationName = OperationName("write-deploy-script")
	OperationWriteBuildConfiguration     OperationName = OperationName("write-build-configuration")
	OperationWriteCoverageConfiguration  OperationName = OperationName("write-coverage-configuration")
	OperationCopyTest                    OperationName = OperationName("copy-test")
	OperationRenderCoverageConfiguration OperationName = OperationName("render-coverage-configuration")
	OperationValidateReferences          OperationName = OperationName("validate-references")
	OperationRemoveArtifact              OperationName = OperationName("remove-artifact")
)

// Failure categories matched with errors.Is against an OperationError.
var (
	ErrMissingFixture         = errors.New("missing fixture")
	ErrFilesystem             = errors.New("filesystem failure")
	ErrMalformedConfiguration = errors.New("malformed configuration")
	ErrInvalidReference       = errors.New("invalid reference")
)

// OperationError wraps a failed scaffold step together with its category.
type OperationError struct {
	Operation OperationName
	Path      string
	Kind      error
	Cause     error
}

// Error describes the failed step.
func (operationError OperationError) Error() string {
	hasPath := len(operationError.Path) > 0
	switch {
	case hasPath && operationError.Cause != nil:
		return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Path, operationError.Cause)
	case operationError.Cause != nil:
		return fmt.Sprintf(operationErrorWithoutPathTemplate, operationError.Operation, operationError.Cause)
	case hasPath:
		return fmt.Sprintf(operationErrorWithoutCauseTemplate, operationError.Operation, operationError.Path)
	default:
		return fmt.Sprintf(operationErrorWithoutPathOrCauseMessage, operationError.Operation)
	}
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Is reports whether target is the failure category of this error.
func (operationError OperationError) Is(target error) bool {
	return operationError.Kind != nil && target == operationError.Kind
}
