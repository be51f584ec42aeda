package clock

import (
	"sync"
	"time"
)

// FakeClock only moves when Advance or Set is called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
}

type fakeTicker struct {
	ch       chan time.Time
	interval time.Duration
	next     time.Time
	stopped  bool
}

func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ft := &fakeTicker{
		ch:       make(chan time.Time, 1),
		interval: d,
		next:     c.current.Add(d),
	}
	c.tickers = append(c.tickers, ft)

	return &Ticker{
		C: ft.ch,
		stopFunc: func() {
			c.mu.Lock()
			ft.stopped = true
			c.mu.Unlock()
		},
	}
}

// Advance moves the clock forward and fires every ticker whose deadline
// has passed. A ticker fires at most once per Advance call.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	live := c.tickers[:0]
	for _, ft := range c.tickers {
		if ft.stopped {
			continue
		}
		if !ft.next.After(c.current) {
			select {
			case ft.ch <- c.current:
			default:
			}
			for !ft.next.After(c.current) {
				ft.next = ft.next.Add(ft.interval)
			}
		}
		live = append(live, ft)
	}
	c.tickers = live
}

// Set jumps to t without firing tickers.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Tickers reports how many live tickers are registered.
func (c *FakeClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ft := range c.tickers {
		if !ft.stopped {
			n++
		}
	}
	return n
}
