package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind classifies portal request failures so callers can distinguish a
// rejected payload from a dead network or an expired session.
type Kind string

const (
	// KindNetwork is a timeout or connectivity failure; the request may
	// never have reached the portal.
	KindNetwork Kind = "network"
	// KindAuth is a 401-equivalent response; the session gate handles it
	// globally, individual call sites should not surface it.
	KindAuth Kind = "auth"
	// KindNotFound is a missing resource.
	KindNotFound Kind = "not_found"
	// KindValidation is a server-rejected payload carrying structured
	// validation messages.
	KindValidation Kind = "validation"
	// KindServer is any other portal-side failure.
	KindServer Kind = "server"
)

// Error is a typed portal request failure.
type Error struct {
	Kind   Kind
	Status int
	// Messages holds every human-readable message extracted from the
	// response payload, flattened in a stable order for display.
	Messages []string
	cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("portal %s error: %s", e.Kind, strings.Join(e.Messages, "; "))
	}
	if e.cause != nil {
		return fmt.Sprintf("portal %s error: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("portal %s error", e.Kind)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.cause
}

// Message returns the first extracted message, or a fallback when the
// response carried none.
func (e *Error) Message(fallback string) string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return fallback
}

// IsKind reports whether err is a portal error of the given kind.
func IsKind(err error, kind Kind) bool {
	var perr *Error
	if !errors.As(err, &perr) {
		return false
	}
	return perr.Kind == kind
}

// flattenMessages extracts every string leaf from an arbitrarily nested
// error payload into a flat ordered list. Object keys are visited in sorted
// order so repeated flattening of the same payload is stable; array elements
// keep their order.
func flattenMessages(body []byte) []string {
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		text := strings.TrimSpace(string(body))
		if text == "" {
			return nil
		}
		return []string{text}
	}
	return collectMessages(payload)
}

func collectMessages(value any) []string {
	switch v := value.(type) {
	case string:
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	case []any:
		var messages []string
		for _, item := range v {
			messages = append(messages, collectMessages(item)...)
		}
		return messages
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var messages []string
		for _, key := range keys {
			messages = append(messages, collectMessages(v[key])...)
		}
		return messages
	default:
		return nil
	}
}
