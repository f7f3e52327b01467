// Package alert validates operator alerts and routes them to every live
// connection whose user currently sits in the target city.
package alert

import (
	"errors"
	"fmt"
)

// Severity classifies an alert. The set is closed; anything else is rejected
// before dispatch.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// DefaultSeverity is applied when a dispatch request omits the severity.
const DefaultSeverity = SeverityInfo

var (
	ErrInvalidSeverity = errors.New("alert: invalid severity")
	ErrMissingField    = errors.New("alert: missing field")
)

// ParseSeverity validates a raw severity string.
func ParseSeverity(raw string) (Severity, error) {
	switch Severity(raw) {
	case SeverityInfo, SeverityWarning, SeverityDanger:
		return Severity(raw), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, raw)
	}
}

// AllowedSeverities lists the accepted values, for error responses.
func AllowedSeverities() []string {
	return []string{string(SeverityInfo), string(SeverityWarning), string(SeverityDanger)}
}
