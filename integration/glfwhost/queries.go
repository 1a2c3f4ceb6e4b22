// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package glfwhost

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/viewer/timerquery"
)

// TimerQueries implements timerquery.Device with OpenGL 3.3 timer queries.
// It must be created and used with the OpenGL context current.
type TimerQueries struct {
	caps timerquery.Capabilities
}

// NewTimerQueries probes the timestamp counter width of the current
// context. Timer queries are core in OpenGL 3.3, so elapsed-time counters
// are always available.
func NewTimerQueries() *TimerQueries {
	var bits int32
	gl.GetQueryiv(gl.TIMESTAMP, gl.QUERY_COUNTER_BITS, &bits)
	return &TimerQueries{caps: timerquery.Capabilities{ElapsedTime: true, TimestampBits: int(bits)}}
}

func (*TimerQueries) GenQuery() timerquery.Query {
	var q uint32
	gl.GenQueries(1, &q)
	return timerquery.Query(q)
}

func (*TimerQueries) BeginTimeElapsed(q timerquery.Query) {
	gl.BeginQuery(gl.TIME_ELAPSED, uint32(q))
}

func (*TimerQueries) EndTimeElapsed() { gl.EndQuery(gl.TIME_ELAPSED) }

func (*TimerQueries) QueryCounter(q timerquery.Query) {
	gl.QueryCounter(uint32(q), gl.TIMESTAMP)
}

func (*TimerQueries) ResultAvailable(q timerquery.Query) bool {
	var available int32
	gl.GetQueryObjectiv(uint32(q), gl.QUERY_RESULT_AVAILABLE, &available)
	return available != 0
}

func (*TimerQueries) Result(q timerquery.Query) uint64 {
	var ns uint64
	gl.GetQueryObjectui64v(uint32(q), gl.QUERY_RESULT, &ns)
	return ns
}

func (*TimerQueries) Timestamp() uint64 {
	var ns int64
	gl.GetInteger64v(gl.TIMESTAMP, &ns)
	return uint64(ns)
}

// Capabilities implements timerquery.Device.
func (t *TimerQueries) Capabilities() timerquery.Capabilities { return t.caps }

var _ timerquery.Device = (*TimerQueries)(nil)
