package models

import (
	"errors"
	"fmt"
)

var (
	// Expression building
	ErrUnsupportedOperator      = errors.New("unsupported operator")
	ErrUnsupportedAttributeType = errors.New("unsupported attribute type")
	ErrInvalidValue             = errors.New("invalid condition value")

	// Query parameter validation
	ErrMissingKeyCondition = errors.New("query requires a key condition")
	ErrInvalidScanState    = errors.New("scan must not carry a key condition")
	ErrUnknownIndex        = errors.New("unknown index")

	// Remote calls
	ErrRemoteCallFailed = errors.New("remote call failed")
	ErrSuperseded       = errors.New("superseded by a newer request")

	// Local store
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrNotFound               = errors.New("record not found")
	ErrMalformedStoredPayload = errors.New("malformed stored payload")
	ErrUnfilteredScan         = errors.New("unfiltered scans are not persisted")
	ErrSessionGroupNotFound   = errors.New("session group not found")
)

// RemoteError is a failed call against the remote table store
type RemoteError struct {
	Operation string
	Code      string
	Err       error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s failed (%s): %v", ErrRemoteCallFailed, e.Operation, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %v", ErrRemoteCallFailed, e.Operation, e.Err)
}

// Is makes errors.Is(err, ErrRemoteCallFailed) hold for every RemoteError
func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteCallFailed
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
