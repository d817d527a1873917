package fetch

import "errors"

var (
	// ErrInvalidProxyAddress is returned when the proxy address is not in
	// "host:port" format.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidRate is returned when the requests-per-second limit is negative.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")
)
