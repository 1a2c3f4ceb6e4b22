// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package timerquery

import "github.com/gogpu/viewer/stats"

type frameQuery struct {
	query Query
	frame uint64
}

// Elapsed measures GPU draw time with one elapsed-time counter per frame.
//
// The GPU only reports durations, so begin and end times are estimated: the
// end is placed halfway between the previous CheckQuery and the CheckQuery
// that found the result, and the begin is the end minus the duration.
type Elapsed struct {
	dev Device
	now func() float64

	available []Query
	active    []frameQuery

	previousCheck float64
	clamp         monotonic
}

var _ Support = (*Elapsed)(nil)

// NewElapsed creates the elapsed-counter strategy. now returns CPU time in
// seconds since the frame clock started.
func NewElapsed(dev Device, now func() float64) *Elapsed {
	return &Elapsed{dev: dev, now: now, previousCheck: now()}
}

func (e *Elapsed) query() Query {
	if n := len(e.available); n > 0 {
		q := e.available[n-1]
		e.available = e.available[:n-1]
		return q
	}
	return e.dev.GenQuery()
}

// CheckQuery drains completed counters into sink.
func (e *Elapsed) CheckQuery(sink Sink) {
	kept := e.active[:0]
	for _, fq := range e.active {
		if !e.dev.ResultAvailable(fq.query) {
			kept = append(kept, fq)
			continue
		}
		elapsed := float64(e.dev.Result(fq.query)) * nanosecond
		current := e.now()
		end := (e.previousCheck + current) * 0.5
		begin, end := e.clamp.apply(end-elapsed, end)

		sink.SetAttribute(fq.frame, stats.GPUDrawBeginTime, begin)
		sink.SetAttribute(fq.frame, stats.GPUDrawEndTime, end)
		sink.SetAttribute(fq.frame, stats.GPUDrawTimeTaken, end-begin)

		e.available = append(e.available, fq.query)
	}
	e.active = kept
	e.previousCheck = e.now()
}

// BeginQuery starts the counter for frame.
func (e *Elapsed) BeginQuery(frame uint64) {
	q := e.query()
	e.dev.BeginTimeElapsed(q)
	e.active = append(e.active, frameQuery{query: q, frame: frame})
}

// EndQuery stops the counter.
func (e *Elapsed) EndQuery() {
	e.dev.EndTimeElapsed()
}

// Pending returns the number of queries still in flight.
func (e *Elapsed) Pending() int { return len(e.active) }

// monotonic keeps reported begin/end times from moving backwards.
type monotonic struct {
	last float64
}

func (m *monotonic) apply(begin, end float64) (float64, float64) {
	if begin < m.last {
		begin = m.last
	}
	if end < begin {
		end = begin
	}
	m.last = end
	return begin, end
}
