package errors

import (
	stdErrors "errors"
	"fmt"
)

var (
	// ErrNodeNotFound marks a graph lookup for a node id that is not in the document.
	ErrNodeNotFound = stdErrors.New("node not found")
	// ErrWidgetNotFound marks a graph lookup for a widget the node does not declare.
	ErrWidgetNotFound = stdErrors.New("widget not found")
	// ErrNoImagesFound is returned when a result folder holds no coordinate-named images.
	ErrNoImagesFound = stdErrors.New("no xyz images found")
)

// ParseError represents a YAML or JSON parsing failure with optional line metadata.
type ParseError struct {
	Path    string
	Line    int
	Message string
	Err     error
}

// NewParseError constructs a ParseError.
func NewParseError(path string, line int, err error) error {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &ParseError{Path: path, Line: line, Message: message, Err: err}
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}

	if e.Line > 0 {
		return fmt.Sprintf("parse error: %s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s: %s", e.Path, e.Message)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ValidationError captures input validation issues raised before any side effect.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError constructs a ValidationError.
func NewValidationError(field, message string, err error) error {
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ""
	}
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// Unwrap exposes the underlying error.
func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// GraphReferenceError reports an axis reference that does not resolve inside a graph document.
type GraphReferenceError struct {
	NodeID    string
	NodeTitle string
	Widget    string
	Err       error
}

// NewNodeNotFoundError constructs a GraphReferenceError wrapping ErrNodeNotFound.
func NewNodeNotFoundError(nodeID string) error {
	return &GraphReferenceError{NodeID: nodeID, Err: ErrNodeNotFound}
}

// NewWidgetNotFoundError constructs a GraphReferenceError wrapping ErrWidgetNotFound.
func NewWidgetNotFoundError(nodeID, nodeTitle, widget string) error {
	return &GraphReferenceError{NodeID: nodeID, NodeTitle: nodeTitle, Widget: widget, Err: ErrWidgetNotFound}
}

func (e *GraphReferenceError) Error() string {
	if e == nil {
		return ""
	}
	if stdErrors.Is(e.Err, ErrWidgetNotFound) {
		title := e.NodeTitle
		if title == "" {
			title = "unknown"
		}
		return fmt.Sprintf("graph reference error: widget '%s' was not found on node #%s (%s)", e.Widget, e.NodeID, title)
	}
	if stdErrors.Is(e.Err, ErrNodeNotFound) {
		return fmt.Sprintf("graph reference error: node id '%s' does not exist in prompt", e.NodeID)
	}
	return fmt.Sprintf("graph reference error: node #%s: %v", e.NodeID, e.Err)
}

// Unwrap exposes the sentinel describing the failed lookup.
func (e *GraphReferenceError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// TransportError represents a failed submission to the execution host.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

// NewTransportError constructs a TransportError. Status is zero when no response was received.
func NewTransportError(status int, body string, err error) error {
	return &TransportError{Status: status, Body: body, Err: err}
}

func (e *TransportError) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("queueing XYZ prompt failed (%d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("queueing XYZ prompt failed: %v", e.Err)
}

// Unwrap exposes the underlying transport error.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// RecoveryError wraps a failure to derive grid metadata from a result folder.
type RecoveryError struct {
	Folder string
	Err    error
}

// NewRecoveryError constructs a RecoveryError for the given folder path.
func NewRecoveryError(folder string, err error) error {
	return &RecoveryError{Folder: folder, Err: err}
}

func (e *RecoveryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v in folder: %s", e.Err, e.Folder)
}

// Unwrap exposes the root error.
func (e *RecoveryError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ExecutionError represents a runtime failure while executing a node invocation.
type ExecutionError struct {
	NodeID string
	Err    error
}

// NewExecutionError constructs an ExecutionError.
func NewExecutionError(nodeID string, err error) error {
	return &ExecutionError{NodeID: nodeID, Err: err}
}

func (e *ExecutionError) Error() string {
	if e == nil {
		return ""
	}
	if e.NodeID != "" {
		return fmt.Sprintf("execution error on node %s: %v", e.NodeID, e.Err)
	}
	return fmt.Sprintf("execution error: %v", e.Err)
}

// Unwrap exposes the root error.
func (e *ExecutionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
