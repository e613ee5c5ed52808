package develop

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDecode       = errors.New("decode error")
	ErrExternalTool = errors.New("external tool error")
	ErrIO           = errors.New("io error")
	ErrTimeout      = errors.New("timeout")
)

// Wrap tags an error with one of the sentinel markers above so failures
// can be classified when recorded.
func Wrap(marker error, operation string, err error) error {
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, operation, err)
	}
	return fmt.Errorf("%w: %s", marker, operation)
}

// Reason condenses a processing error into the short string persisted
// with a failed record.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return strings.TrimSpace(msg)
}
