package solcover

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
)

const (
	moduleExportsPrefixConstant         = "module.exports = "
	moduleExportsAssignmentConstant     = "module.exports"
	assignmentOperatorConstant          = "="
	statementTerminatorConstant         = ";"
	rootValuePathConstant               = "$"
	mapKeyPathTemplateConstant          = "%s.%s"
	sequenceIndexPathTemplateConstant   = "%s[%d]"
	unsupportedKindTemplateConstant     = "unsupported %s value"
	nonStringKeyTemplateConstant        = "map key type %s is not a string"
	nonFiniteNumberMessageConstant      = "number is not finite"
	cycleDetectedMessageConstant        = "value contains a reference cycle"
	byteSequenceMessageConstant         = "byte slices encode as base64 strings"
	encodeErrorTemplateConstant         = "%w: %v"
	moduleMissingExportsMessageConstant = "module does not assign module.exports"
	moduleDecodeErrorTemplateConstant   = "unable to decode module value: %w"
	moduleTrailingContentMessage        = "module contains content after the exported value"
)

// ErrUnsupportedValue marks values outside the JSON representable model.
var ErrUnsupportedValue = errors.New("value is not JSON representable")

// ValueError reports the location of an unsupported value inside a configuration.
type ValueError struct {
	Path   string
	Reason string
}

// Error describes the unsupported value.
func (valueError ValueError) Error() string {
	return fmt.Sprintf("%s: %s", valueError.Path, valueError.Reason)
}

// Is matches ErrUnsupportedValue.
func (valueError ValueError) Is(target error) bool {
	return target == ErrUnsupportedValue
}

// Validate checks that value only consists of nil, booleans, finite numbers,
// strings, sequences, and string keyed mappings without reference cycles.
func Validate(value any) error {
	inspector := valueInspector{activeReferences: map[referenceKey]struct{}{}}
	return inspector.inspect(reflect.ValueOf(value), rootValuePathConstant)
}

// Render serializes value into a CommonJS module whose exported value equals value.
// Map keys are emitted in sorted order so identical inputs always yield identical modules.
func Render(value any) ([]byte, error) {
	if validationError := Validate(value); validationError != nil {
		return nil, validationError
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, fmt.Errorf(encodeErrorTemplateConstant, ErrUnsupportedValue, encodeError)
	}

	encodedValue := bytes.TrimRight(buffer.Bytes(), "\n")
	module := make([]byte, 0, len(moduleExportsPrefixConstant)+len(encodedValue))
	module = append(module, moduleExportsPrefixConstant...)
	module = append(module, encodedValue...)
	return module, nil
}

// Parse loads a module produced by Render and returns its exported value
// decoded with encoding/json semantics.
func Parse(module []byte) (any, error) {
	trimmedModule := strings.TrimSpace(string(module))
	if !strings.HasPrefix(trimmedModule, moduleExportsAssignmentConstant) {
		return nil, errors.New(moduleMissingExportsMessageConstant)
	}

	assignment := strings.TrimSpace(strings.TrimPrefix(trimmedModule, moduleExportsAssignmentConstant))
	if !strings.HasPrefix(assignment, assignmentOperatorConstant) {
		return nil, errors.New(moduleMissingExportsMessageConstant)
	}
	expression := strings.TrimSpace(strings.TrimPrefix(assignment, assignmentOperatorConstant))
	expression = strings.TrimSpace(strings.TrimSuffix(expression, statementTerminatorConstant))

	decoder := json.NewDecoder(strings.NewReader(expression))
	var decodedValue any
	if decodeError := decoder.Decode(&decodedValue); decodeError != nil {
		return nil, fmt.Errorf(moduleDecodeErrorTemplateConstant, decodeError)
	}
	if decoder.More() {
		return nil, errors.New(moduleTrailingContentMessage)
	}
	return decodedValue, nil
}

type referenceKey struct {
	kind    reflect.Kind
	pointer uintptr
	length  int
}

type valueInspector struct {
	activeReferences map[referenceKey]struct{}
}

func (inspector valueInspector) inspect(value reflect.Value, path string) error {
	if !value.IsValid() {
		return nil
	}

	switch value.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return nil
	case reflect.Float32, reflect.Float64:
		if math.IsNaN(value.Float()) || math.IsInf(value.Float(), 0) {
			return ValueError{Path: path, Reason: nonFiniteNumberMessageConstant}
		}
		return nil
	case reflect.Interface:
		if value.IsNil() {
			return nil
		}
		return inspector.inspect(value.Elem(), path)
	case reflect.Pointer:
		if value.IsNil() {
			return nil
		}
		return inspector.inspectReference(value, path, func() error {
			return inspector.inspect(value.Elem(), path)
		})
	case reflect.Slice:
		if value.IsNil() {
			return nil
		}
		if value.Type().Elem().Kind() == reflect.Uint8 {
			return ValueError{Path: path, Reason: byteSequenceMessageConstant}
		}
		return inspector.inspectReference(value, path, func() error {
			return inspector.inspectSequence(value, path)
		})
	case reflect.Array:
		return inspector.inspectSequence(value, path)
	case reflect.Map:
		if value.IsNil() {
			return nil
		}
		if value.Type().Key().Kind() != reflect.String {
			return ValueError{Path: path, Reason: fmt.Sprintf(nonStringKeyTemplateConstant, value.Type().Key())}
		}
		return inspector.inspectReference(value, path, func() error {
			iterator := value.MapRange()
			for iterator.Next() {
				entryPath := fmt.Sprintf(mapKeyPathTemplateConstant, path, iterator.Key().String())
				if entryError := inspector.inspect(iterator.Value(), entryPath); entryError != nil {
					return entryError
				}
			}
			return nil
		})
	default:
		return ValueError{Path: path, Reason: fmt.Sprintf(unsupportedKindTemplateConstant, value.Kind())}
	}
}

func (inspector valueInspector) inspectSequence(value reflect.Value, path string) error {
	for index := 0; index < value.Len(); index++ {
		if elementError := inspector.inspect(value.Index(index), fmt.Sprintf(sequenceIndexPathTemplateConstant, path, index)); elementError != nil {
			return elementError
		}
	}
	return nil
}

// inspectReference tracks references on the current descent path only, so
// shared substructures are accepted while self references are rejected.
func (inspector valueInspector) inspectReference(value reflect.Value, path string, descend func() error) error {
	key := referenceKey{kind: value.Kind(), pointer: value.Pointer()}
	if value.Kind() == reflect.Slice {
		key.length = value.Len()
	}

	if _, active := inspector.activeReferences[key]; active {
		return ValueError{Path: path, Reason: cycleDetectedMessageConstant}
	}
	inspector.activeReferences[key] = struct{}{}
	defer delete(inspector.activeReferences, key)

	return descend()
}
