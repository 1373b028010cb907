package state

import "fmt"

// Countdown is the one-shot resend timer on the verification-code button:
// after a successful send the button is disabled and counts down from 60
// in one-second steps, then re-enables with its original label. Ticks are
// injected by the caller (a UI tick command, or a test loop), so there is
// no timer here. There is no retry of the underlying request.
type Countdown struct {
	label     string
	remaining int
}

// DefaultCountdownSeconds matches the resend lockout on the original form.
const DefaultCountdownSeconds = 60

func NewCountdown(label string) *Countdown {
	return &Countdown{label: label}
}

// Start arms the countdown for the given number of seconds.
func (c *Countdown) Start(seconds int) {
	c.remaining = seconds
}

// Tick consumes one second. Returns true while the countdown is still
// running after the tick.
func (c *Countdown) Tick() bool {
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining > 0
}

// Active reports whether the button should be disabled.
func (c *Countdown) Active() bool { return c.remaining > 0 }

// Remaining returns the seconds left.
func (c *Countdown) Remaining() int { return c.remaining }

// Label returns the text the button should show: the seconds left while
// counting, the original label otherwise.
func (c *Countdown) Label() string {
	if c.remaining > 0 {
		return fmt.Sprintf("retry in %ds", c.remaining)
	}
	return c.label
}
