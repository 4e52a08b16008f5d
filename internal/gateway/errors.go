package gateway

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind is the provider's error class.
type ErrorKind string

const (
	KindInvalidRequest ErrorKind = "invalid_request_error"
	KindNotFound       ErrorKind = "not_found"
	KindCard           ErrorKind = "card_error"
	KindAuthentication ErrorKind = "authentication_error"
	KindRateLimit      ErrorKind = "rate_limit_error"
	KindAPI            ErrorKind = "api_error"
)

const (
	CodeResourceInUse               = "resource_in_use"
	CodeResourceMissing             = "resource_missing"
	CodeUpstreamOrderCreationFailed = "upstream_order_creation_failed"
)

// Error is a failure reported by a provider. Failures that never reached the
// provider (transport, context cancellation) are not of this type.
type Error struct {
	Kind    ErrorKind
	Code    string
	Param   string
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsError unwraps a provider error from err.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// IsInvalidRequest reports business-rule rejections, including delete conflicts and missing resources.
func IsInvalidRequest(err error) bool {
	gwErr, ok := AsError(err)
	return ok && (gwErr.Kind == KindInvalidRequest || gwErr.Kind == KindNotFound)
}

// IsNotFound reports a reference to a remote object that does not exist.
func IsNotFound(err error) bool {
	gwErr, ok := AsError(err)
	if !ok {
		return false
	}
	return gwErr.Kind == KindNotFound || gwErr.Code == CodeResourceMissing
}

// Rewrite turns provider wording into a user-facing phrase. A rule with a Code
// applies when the provider sent that structured code; otherwise the first
// occurrence of Find in the message text is replaced.
type Rewrite struct {
	Code    string
	Find    string
	Replace string
}

// Humanize returns the user-facing message for err after applying rules in order.
func Humanize(err error, rules ...Rewrite) string {
	gwErr, ok := AsError(err)
	if !ok {
		return err.Error()
	}
	msg := gwErr.Message
	for _, r := range rules {
		if r.Code != "" && gwErr.Code == r.Code {
			if r.Find != "" && strings.Contains(msg, r.Find) {
				msg = strings.Replace(msg, r.Find, r.Replace, 1)
			} else {
				msg = r.Replace + msg
			}
			continue
		}
		if r.Find != "" && strings.Contains(msg, r.Find) {
			msg = strings.Replace(msg, r.Find, r.Replace, 1)
		}
	}
	return msg
}
