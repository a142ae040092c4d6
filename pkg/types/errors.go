package types

import "errors"

var (
	// ErrInvalidInput marks malformed targets (bad CIDR/IP/hostname,
	// unreadable file, nothing resolved). Fatal before any probing starts.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOutput marks a failure to persist results. Fatal at the end of the
	// run; it does not invalidate console output that already happened.
	ErrOutput = errors.New("output error")
)
