package appsync

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorEntry is a single error object from a GraphQL response.
type ErrorEntry struct {
	Message   string `json:"message"`
	ErrorType string `json:"errorType,omitempty"`
	Path      []any  `json:"path,omitempty"`
}

// GraphQLError is returned when the backend answers with an errors array.
// Raw preserves the full response payload for operator debugging.
type GraphQLError struct {
	Errors []ErrorEntry
	Raw    []byte
}

func (e *GraphQLError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, entry := range e.Errors {
		if entry.ErrorType != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s", entry.ErrorType, entry.Message))
			continue
		}
		msgs = append(msgs, entry.Message)
	}
	return fmt.Sprintf("graphql error: %s", strings.Join(msgs, "; "))
}

// TransportError is returned for non-200 HTTP responses.
type TransportError struct {
	StatusCode int
	Body       []byte
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphql transport error: status %d: %s", e.StatusCode, string(e.Body))
}

// IsBackendError reports whether err originated from the data backend itself
// (validation, authorization, or transport) rather than from this process.
func IsBackendError(err error) bool {
	var gqlErr *GraphQLError
	var transportErr *TransportError
	return errors.As(err, &gqlErr) || errors.As(err, &transportErr)
}
