package mqtt

import "errors"

var (
	// ErrNotConnected is returned when publishing without a broker session.
	ErrNotConnected = errors.New("mqtt client not connected")
	// ErrBadPayload is returned for messages that cannot be decoded.
	ErrBadPayload = errors.New("invalid mqtt payload")
)
