package config

import "fmt"

// Error describes a malformed, invalid, or disallowed configuration
// option. Configuration errors are fatal and reported before any scanning
// begins.
type Error struct {
	File   string
	Option string
	Msg    string
}

func (e *Error) Error() string {
	switch {
	case e.File != "" && e.Option != "":
		return fmt.Sprintf("config %s: option %q: %s", e.File, e.Option, e.Msg)
	case e.File != "":
		return fmt.Sprintf("config %s: %s", e.File, e.Msg)
	case e.Option != "":
		return fmt.Sprintf("config option %q: %s", e.Option, e.Msg)
	default:
		return e.Msg
	}
}
