package bus

import "errors"

var (
	// ErrWaitTimeout is returned by WaitFor when no matching event arrives in time.
	ErrWaitTimeout = errors.New("bus: wait timed out")

	// ErrBusClosed is returned when operating on a closed bus.
	ErrBusClosed = errors.New("bus: closed")

	// ErrPublishFailed wraps backend errors during publish.
	ErrPublishFailed = errors.New("bus: publish failed")
)
