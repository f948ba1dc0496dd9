package bridge

import "errors"

var (
	// ErrPeerUnavailable is returned when calling into a peer that is not
	// connected.
	ErrPeerUnavailable = errors.New("bridge: peer not connected")

	// ErrPeerClosed is returned for calls pending when a peer disconnects.
	ErrPeerClosed = errors.New("bridge: peer closed")

	// ErrCallTimeout is returned when a call gets no response in time.
	ErrCallTimeout = errors.New("bridge: call timed out")

	// ErrRateLimited is reported to peers sending frames too fast.
	ErrRateLimited = errors.New("bridge: rate limit exceeded")

	// ErrBadFrame is reported for frames that cannot be handled.
	ErrBadFrame = errors.New("bridge: malformed frame")
)

// RemoteError is an error reported by the other side of a call.
type RemoteError struct {
	Method  string
	Message string
}

func (e *RemoteError) Error() string {
	return "bridge: " + e.Method + ": " + e.Message
}
