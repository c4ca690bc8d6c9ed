package live

import "fmt"

// DecodeError is returned for a push message that does not match the
// envelope or its payload shape. The message is dropped; the connection stays up.
type DecodeError struct {
	Type string // envelope type, empty when the envelope itself is malformed
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("decode envelope: %v", e.Err)
	}
	return fmt.Sprintf("decode %s payload: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError is a failure of the websocket itself.
type TransportError struct {
	Op  string // "dial" or "read"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("live %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
