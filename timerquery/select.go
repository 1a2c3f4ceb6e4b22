// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package timerquery

// Select returns the best strategy dev supports: Timestamp when the device
// reports timestamp bits and a clock reference is available, Elapsed when
// it supports elapsed-time counters, and nil otherwise.
func Select(dev Device, now func() float64, ref ClockReference) Support {
	if dev == nil {
		return nil
	}
	caps := dev.Capabilities()
	switch {
	case caps.TimestampBits > 0 && ref != nil:
		return NewTimestamp(dev, ref)
	case caps.ElapsedTime:
		return NewElapsed(dev, now)
	}
	return nil
}
