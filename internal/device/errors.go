package device

import "errors"

// ErrMalformedPayload marks a device message that could not be decoded.
// Malformed messages are logged and skipped, never fatal.
var ErrMalformedPayload = errors.New("device: malformed payload")
