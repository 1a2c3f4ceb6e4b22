package viewer

import (
	"math"
	"time"
)

// UseElapsedTime passed to Window.UpdateSimulationTime sets simulation time
// to the current reference time.
var UseElapsedTime = math.Inf(1)

// FrameStamp carries the frame counter and the times of the current frame.
// It is owned by a Window and shared read-only with its viewports.
type FrameStamp struct {
	frameNumber    uint64
	referenceTime  float64
	simulationTime float64
}

// FrameNumber returns the frame counter.
func (fs *FrameStamp) FrameNumber() uint64 { return fs.frameNumber }

// SetFrameNumber sets the frame counter.
func (fs *FrameStamp) SetFrameNumber(n uint64) { fs.frameNumber = n }

// ReferenceTime returns the frame time in seconds since the clock started.
func (fs *FrameStamp) ReferenceTime() float64 { return fs.referenceTime }

// SetReferenceTime sets the frame time.
func (fs *FrameStamp) SetReferenceTime(t float64) { fs.referenceTime = t }

// SimulationTime returns the simulation time in seconds.
func (fs *FrameStamp) SimulationTime() float64 { return fs.simulationTime }

// SetSimulationTime sets the simulation time.
func (fs *FrameStamp) SetSimulationTime(t float64) { fs.simulationTime = t }

// Clock returns the current time. Tests substitute a manual clock.
type Clock func() time.Time

// frameClock measures seconds elapsed since a start tick.
type frameClock struct {
	now   Clock
	start time.Time
}

func newFrameClock(now Clock) frameClock {
	if now == nil {
		now = time.Now
	}
	return frameClock{now: now, start: now()}
}

// elapsed returns seconds since the start tick.
func (c frameClock) elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}
