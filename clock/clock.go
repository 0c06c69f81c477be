// Package clock provides the time source for every component that compares
// against "now", so expiry checks stay reproducible in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System reads the operating system clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Default returns the system clock.
func Default() Clock { return System{} }
