package rules

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDocType  = errors.New("unknown document type")
	ErrUnknownRule     = errors.New("unknown rule")
	ErrSectionNotFound = errors.New("rule section not found")
	ErrCoercion        = errors.New("cannot convert value")
)

// OperationError reports a failed rule operation. Adapters map it to a
// client error, distinct from structural violations.
type OperationError struct {
	Op      string
	DocType DocType
	Key     string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s[%s]: %v", e.Op, e.DocType, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.DocType, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
