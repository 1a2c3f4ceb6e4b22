// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package timerquery

import "github.com/gogpu/viewer/stats"

type queryPair struct {
	begin, end Query
	frame      uint64
}

// Timestamp measures GPU draw time with a pair of GPU timestamps per frame.
type Timestamp struct {
	dev  Device
	ref  ClockReference
	bits int

	available []Query
	active    []queryPair
	current   *queryPair

	clamp monotonic
}

var _ Support = (*Timestamp)(nil)

// NewTimestamp creates the timestamp-pair strategy.
func NewTimestamp(dev Device, ref ClockReference) *Timestamp {
	return &Timestamp{
		dev:  dev,
		ref:  ref,
		bits: dev.Capabilities().TimestampBits,
	}
}

func (t *Timestamp) query() Query {
	if n := len(t.available); n > 0 {
		q := t.available[n-1]
		t.available = t.available[:n-1]
		return q
	}
	return t.dev.GenQuery()
}

// CheckQuery drains completed pairs into sink.
func (t *Timestamp) CheckQuery(sink Sink) {
	kept := t.active[:0]
	for _, p := range t.active {
		if !t.dev.ResultAvailable(p.end) || !t.dev.ResultAvailable(p.begin) {
			kept = append(kept, p)
			continue
		}

		gpuTimestamp, gpuTime := t.ref.GPUReference()
		b, e, r := Unwrap(t.dev.Result(p.begin), t.dev.Result(p.end), gpuTimestamp, t.bits)
		if e < b {
			e = b
		}

		begin := gpuTime + signedDelta(b, r)*nanosecond
		end := gpuTime + signedDelta(e, r)*nanosecond
		begin, end = t.clamp.apply(begin, end)

		sink.SetAttribute(p.frame, stats.GPUDrawBeginTime, begin)
		sink.SetAttribute(p.frame, stats.GPUDrawEndTime, end)
		sink.SetAttribute(p.frame, stats.GPUDrawTimeTaken, end-begin)

		t.available = append(t.available, p.begin, p.end)
	}
	t.active = kept
}

// BeginQuery records the begin timestamp for frame.
func (t *Timestamp) BeginQuery(frame uint64) {
	p := &queryPair{begin: t.query(), end: t.query(), frame: frame}
	t.dev.QueryCounter(p.begin)
	t.current = p
}

// EndQuery records the end timestamp of the open pair.
func (t *Timestamp) EndQuery() {
	if t.current == nil {
		return
	}
	t.dev.QueryCounter(t.current.end)
	t.active = append(t.active, *t.current)
	t.current = nil
}

// Pending returns the number of pairs still in flight.
func (t *Timestamp) Pending() int { return len(t.active) }

func signedDelta(v, ref uint64) float64 {
	if v >= ref {
		return float64(v - ref)
	}
	return -float64(ref - v)
}

// Unwrap places a begin/end timestamp pair and a reference timestamp from a
// counter with the given number of valid bits on one timeline.
//
// When the high bits of the three samples agree no wrap can lie between
// them and the values are returned masked but otherwise unchanged. Otherwise
// begin and end are each compared with the reference independently and
// shifted by a full counter period when they are more than half a period
// apart. The returned reference may then exceed the counter range; only
// differences between the results are meaningful.
func Unwrap(begin, end, ref uint64, bits int) (uint64, uint64, uint64) {
	if bits <= 0 || bits >= 64 {
		return begin, end, ref
	}
	wrap := uint64(1) << uint(bits)
	mask := wrap - 1
	begin, end, ref = begin&mask, end&mask, ref&mask

	hiShift := uint(bits - 1)
	switch begin>>hiShift + end>>hiShift + ref>>hiShift {
	case 0, 3:
		return begin, end, ref
	}

	half := uint64(1) << hiShift
	r := ref + wrap
	against := func(v uint64) uint64 {
		d := (v - ref) & mask
		if d >= half {
			return r - (wrap - d)
		}
		return r + d
	}
	return against(begin), against(end), r
}
