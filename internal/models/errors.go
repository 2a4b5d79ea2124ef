package models

import "fmt"

// ValidationError reports a malformed or contradictory request shape.
// It maps to a client-fault response and is never retried.
type ValidationError struct {
	Message string
}

// NewValidationError returns a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ModalityInputError reports text or image input that could not be turned
// into an embedding: empty text, an unreachable image URL, or undecodable
// image bytes. Ingestion of the offending item aborts with nothing stored.
type ModalityInputError struct {
	Modality string // "text" or "image"
	Message  string
	Err      error
}

// NewModalityInputError wraps err as a ModalityInputError for the given modality.
func NewModalityInputError(modality, message string, err error) *ModalityInputError {
	return &ModalityInputError{Modality: modality, Message: message, Err: err}
}

func (e *ModalityInputError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s input: %s: %v", e.Modality, e.Message, e.Err)
	}
	return fmt.Sprintf("%s input: %s", e.Modality, e.Message)
}

func (e *ModalityInputError) Unwrap() error {
	return e.Err
}

// StoreUnavailableError reports that the vector store could not be reached
// or failed an operation. It maps to a server-fault response; retry policy
// belongs to the infrastructure around the service, not to the core.
type StoreUnavailableError struct {
	Op  string
	Err error
}

// NewStoreUnavailableError wraps err as a StoreUnavailableError for the given operation.
func NewStoreUnavailableError(op string, err error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Err: err}
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}
