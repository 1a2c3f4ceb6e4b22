// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package timerquery measures GPU draw time with asynchronous GPU queries.
//
// Two strategies are provided:
//
//   - Elapsed uses a single elapsed-time counter per frame and estimates
//     begin/end times from CPU samples.
//   - Timestamp uses a pair of GPU timestamps per frame and converts them to
//     CPU time through a GPU clock reference, correcting counter wraparound.
//
// Results are never awaited: CheckQuery drains whatever the GPU has finished
// and leaves the rest for a later frame. Query objects are pooled and reused.
//
// Select picks the best strategy a Device supports.
package timerquery

// Query identifies a GPU query object.
type Query uint32

// Capabilities describes the timer queries a device supports.
type Capabilities struct {
	// ElapsedTime reports support for elapsed-time counters.
	ElapsedTime bool

	// TimestampBits is the number of valid bits of GPU timestamps.
	// Zero means timestamps are not supported.
	TimestampBits int
}

// Device issues GPU timer queries. All methods are called from the thread
// that owns the GPU context.
type Device interface {
	Capabilities() Capabilities

	// GenQuery allocates a new query object.
	GenQuery() Query

	// BeginTimeElapsed starts an elapsed-time counter on q.
	BeginTimeElapsed(q Query)

	// EndTimeElapsed stops the active elapsed-time counter.
	EndTimeElapsed()

	// QueryCounter records a GPU timestamp into q once all previously
	// submitted commands complete.
	QueryCounter(q Query)

	// ResultAvailable reports whether q's result can be read without
	// stalling.
	ResultAvailable(q Query) bool

	// Result returns q's value in nanoseconds.
	Result(q Query) uint64

	// Timestamp returns the current GPU timestamp synchronously.
	Timestamp() uint64
}

// Sink receives timing attributes. *stats.Stats implements Sink.
type Sink interface {
	SetAttribute(frame uint64, name string, value float64) bool
}

// Support is a timer-query strategy.
type Support interface {
	// CheckQuery drains completed queries into sink.
	CheckQuery(sink Sink)

	// BeginQuery opens a query for frame.
	BeginQuery(frame uint64)

	// EndQuery closes the query opened by BeginQuery.
	EndQuery()
}

// ClockReference relates the GPU clock to the CPU clock. GPUReference
// returns a GPU timestamp and the CPU time, in seconds since the frame clock
// started, at which it was sampled.
type ClockReference interface {
	GPUReference() (timestamp uint64, cpuTime float64)
}

const nanosecond = 1e-9
