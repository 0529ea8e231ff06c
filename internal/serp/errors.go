package serp

import "errors"

var (
	ErrNetwork     = errors.New("serp: network error")
	ErrHTTPError   = errors.New("serp: non-2xx at submit")
	ErrPollTimeout = errors.New("serp: poll budget exhausted")
	ErrDecode      = errors.New("serp: failed to decode provider response")
	ErrCancelled   = errors.New("serp: cancelled")
)
