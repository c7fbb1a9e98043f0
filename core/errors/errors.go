// Package errors provides the error taxonomy shared by the annotation core
// and the tooling around it.
//
// Every typed error unwraps to one sentinel so callers can branch with
// errors.Is without knowing the concrete type:
//
//	if errors.Is(err, apperrors.ErrHierarchy) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrTypeMismatch indicates a value of the wrong type or kind
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvariant indicates an operation would break a structural invariant
	ErrInvariant = errors.New("invariant violation")
	// ErrHierarchy indicates a mutation would break a hierarchy link
	ErrHierarchy = errors.New("hierarchy violation")
	// ErrVocabulary indicates a tag outside a controlled vocabulary
	ErrVocabulary = errors.New("vocabulary violation")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
	// ErrIndexOutOfRange indicates an index-based accessor was out of range
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidInput indicates invalid input or a parsing failure
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnsupported indicates an unsupported operation or format
	ErrUnsupported = errors.New("unsupported")
)

// TypeError reports a value that does not have the expected type or kind.
type TypeError struct {
	Value    string // Offending value, rendered as text
	Expected string // Expected type or kind (e.g. "int", "interval")
	Err      error  // Underlying error, if any
}

func (e *TypeError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("type mismatch: %q is not of type %s", e.Value, e.Expected)
	}
	return fmt.Sprintf("type mismatch: expected %s", e.Expected)
}

// Unwrap returns ErrTypeMismatch and the underlying error, if any.
func (e *TypeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTypeMismatch, e.Err}
	}
	return []error{ErrTypeMismatch}
}

// InvariantError reports an operation rejected because it would leave an
// object in an inconsistent state.
type InvariantError struct {
	Object  string // Kind of object (e.g. "interval", "tier")
	Message string // Human-readable reason
	Err     error  // Underlying error, if any
}

func (e *InvariantError) Error() string {
	if e.Object != "" {
		return fmt.Sprintf("%s: %s", e.Object, e.Message)
	}
	return e.Message
}

// Unwrap returns ErrInvariant and the underlying error, if any.
func (e *InvariantError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvariant, e.Err}
	}
	return []error{ErrInvariant}
}

// HierarchyError reports a violated or impossible hierarchy link.
type HierarchyError struct {
	Link    string // Link type (e.g. "TimeAlignment")
	Parent  string // Parent tier name
	Child   string // Child tier name
	Message string // Human-readable reason
}

func (e *HierarchyError) Error() string {
	if e.Link != "" {
		return fmt.Sprintf("hierarchy %s %q -> %q: %s", e.Link, e.Parent, e.Child, e.Message)
	}
	return fmt.Sprintf("hierarchy: %s", e.Message)
}

func (e *HierarchyError) Unwrap() error {
	return ErrHierarchy
}

// VocabularyError reports a tag missing from a controlled vocabulary.
type VocabularyError struct {
	Vocab string // Controlled vocabulary name
	Tag   string // Tag content
}

func (e *VocabularyError) Error() string {
	return fmt.Sprintf("tag %q is not in controlled vocabulary %q", e.Tag, e.Vocab)
}

func (e *VocabularyError) Unwrap() error {
	return ErrVocabulary
}

// IndexError reports an out-of-range index.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0:%d]", e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// NotFoundError represents a resource not found error with context
type NotFoundError struct {
	Resource string // Type of resource (e.g., "tier", "profile", "snapshot")
	ID       string // Identifier of the resource
	Err      error  // Underlying error, if any
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrNotFound
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a parsing or deserialization error
type ParseError struct {
	Format  string // Format being parsed (e.g., "labels", "snapshot", "config")
	Path    string // File path, if applicable
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to parse %s at %s: %s", e.Format, e.Path, e.Message)
	}
	return fmt.Sprintf("failed to parse %s: %s", e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidInput
}

// UnsupportedError represents an unsupported feature or format
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewType creates a TypeError
func NewType(value, expected string) *TypeError {
	return &TypeError{Value: value, Expected: expected}
}

// NewInvariant creates an InvariantError
func NewInvariant(object, message string) *InvariantError {
	return &InvariantError{Object: object, Message: message}
}

// NewInvariantf creates an InvariantError with a formatted message
func NewInvariantf(object, format string, args ...interface{}) *InvariantError {
	return &InvariantError{Object: object, Message: fmt.Sprintf(format, args...)}
}

// NewHierarchy creates a HierarchyError
func NewHierarchy(link, parent, child, message string) *HierarchyError {
	return &HierarchyError{
		Link:    link,
		Parent:  parent,
		Child:   child,
		Message: message,
	}
}

// NewVocabulary creates a VocabularyError
func NewVocabulary(vocab, tag string) *VocabularyError {
	return &VocabularyError{Vocab: vocab, Tag: tag}
}

// NewIndex creates an IndexError
func NewIndex(index, length int) *IndexError {
	return &IndexError{Index: index, Len: length}
}

// NewNotFound creates a NotFoundError
func NewNotFound(resource, id string) *NotFoundError {
	return &NotFoundError{
		Resource: resource,
		ID:       id,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewParse creates a ParseError
func NewParse(format, path, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Path:    path,
		Message: message,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}
