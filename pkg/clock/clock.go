// Package clock abstracts time so hold expiry and the sweeper can be
// driven deterministically in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	// NewTicker returns a ticker delivering on C every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker mirrors time.Ticker. C has capacity 1; slow consumers drop ticks.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

func (t *Ticker) Stop() { t.stopFunc() }

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) *Ticker {
	t := time.NewTicker(d)
	return &Ticker{C: t.C, stopFunc: t.Stop}
}
