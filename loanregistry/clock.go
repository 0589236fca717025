package loanregistry

import "sync/atomic"

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() Height

// CurrentHeight calls f.
func (f ClockFunc) CurrentHeight() Height {
	return f()
}

// ManualClock is a Clock whose height is moved by its owner. It is safe for concurrent use.
type ManualClock struct {
	height atomic.Int64
}

// NewManualClock returns a ManualClock at the given height.
func NewManualClock(start Height) *ManualClock {
	c := &ManualClock{}
	c.height.Store(start)

	return c
}

// CurrentHeight returns the current height.
func (c *ManualClock) CurrentHeight() Height {
	return c.height.Load()
}

// Advance moves the clock forward by the given number of blocks and returns the new height.
// Negative values are treated as zero.
func (c *ManualClock) Advance(by Blocks) Height {
	return c.height.Add(max(by, 0))
}

// Set moves the clock to height. Heights never decrease.
func (c *ManualClock) Set(height Height) error {
	for {
		current := c.height.Load()
		if height < current {
			return ErrHeightMustNotDecrease
		}

		if c.height.CompareAndSwap(current, height) {
			return nil
		}
	}
}
