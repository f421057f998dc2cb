package node

import (
	"fmt"
)

var (
	// ErrNodeUnavailable is returned when a node cannot be reached or replies
	// with something that is not a JSON object.
	ErrNodeUnavailable = fmt.Errorf("node unavailable")
	// ErrEndpointNotConfigured is returned when a call targets a node kind
	// that has no host configured.
	ErrEndpointNotConfigured = fmt.Errorf("node endpoint not configured")
	// ErrInvalidNodeKind is returned for an unknown node kind.
	ErrInvalidNodeKind = fmt.Errorf("invalid node kind")
)

// Error kinds for replies that carry no error code of their own.
const (
	KindNodeError   = "node_error"
	KindResultError = "result_error"
)

// Error is the structured error extracted from a node reply.
//
// Message is the human readable part (the last ':'-separated segment of the
// reply's message), RawMessage everything before it. Kind is the reply's
// error code when it has one, otherwise one of the Kind constants.
type Error struct {
	Kind       string `json:"kind"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
	RawMessage string `json:"rawMessage"`
}

func (e *Error) Error() string {
	if e.RawMessage == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.RawMessage, e.Message)
}
