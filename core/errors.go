package core

// Error is a string-constant error type, cheap enough for firmware builds
// where allocating error values in interrupt-adjacent paths is off limits.
type Error string

func (e Error) Error() string { return string(e) }

const (
	// ErrBusy is returned when a trigger arrives while another pulse
	// sequence is still in flight. It is immediate and side-effect-free.
	ErrBusy = Error("trigger already in flight")

	// ErrParamRange is returned for a parameter update outside the
	// allowed timing range. The stored values are left untouched.
	ErrParamRange = Error("parameter outside allowed timing range")

	// ErrChannelActive is returned by a transmit driver when a buffer
	// load is attempted on a channel that is mid-transmission.
	ErrChannelActive = Error("channel mid transmission")

	// ErrTxTimeout is returned when a started transmission does not
	// signal completion within its programmed duration plus margin.
	ErrTxTimeout = Error("transmission did not complete in time")
)
