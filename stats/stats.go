// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package stats provides a frame-keyed statistics sink.
//
// A Stats value records float64 attributes per frame number over a bounded
// history window. Collection is organised in named categories that callers
// probe before doing any timing work:
//
//	if s.CollectStats(stats.CategoryRendering) {
//	    s.SetAttribute(frame, stats.CullTraversalTimeTaken, dt)
//	}
//
// Attributes recorded for frames older than the history window are dropped.
package stats

import (
	"errors"
	"sort"
	"sync"
)

// ErrNoData is returned by WriteReport when the requested range holds no
// matching attributes.
var ErrNoData = errors.New("stats: no data in range")

// DefaultHistory is the number of frames retained when no WithHistory
// option is given.
const DefaultHistory = 25

// Option configures a Stats during creation.
type Option func(*options)

type options struct {
	history    int
	categories []string
}

// WithHistory sets the number of frames retained. Values below 1 are
// treated as 1.
func WithHistory(frames int) Option {
	return func(o *options) {
		o.history = frames
	}
}

// WithCategories enables collection for the named categories.
func WithCategories(categories ...string) Option {
	return func(o *options) {
		o.categories = append(o.categories, categories...)
	}
}

type attributeMap map[string]float64

// Stats is a thread-safe (frame, attribute) → value store.
type Stats struct {
	name string

	mu            sync.RWMutex
	earliestFrame uint64
	latestFrame   uint64
	frames        []attributeMap

	categories map[string]bool
}

// New creates an empty statistics sink.
func New(name string, opts ...Option) *Stats {
	o := options{history: DefaultHistory}
	for _, opt := range opts {
		opt(&o)
	}
	if o.history < 1 {
		o.history = 1
	}

	s := &Stats{
		name:       name,
		frames:     make([]attributeMap, o.history),
		categories: make(map[string]bool),
	}
	for _, c := range o.categories {
		s.categories[c] = true
	}
	return s
}

// Name returns the sink name.
func (s *Stats) Name() string { return s.name }

// History returns the number of frames retained.
func (s *Stats) History() int { return len(s.frames) }

// EarliestFrameNumber returns the oldest frame still held.
func (s *Stats) EarliestFrameNumber() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.earliestFrame
}

// LatestFrameNumber returns the newest frame an attribute was recorded for.
func (s *Stats) LatestFrameNumber() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latestFrame
}

func (s *Stats) slot(frame uint64) int {
	return int(frame % uint64(len(s.frames)))
}

// SetAttribute records value for (frame, name). It returns false when
// frame has already fallen out of the history window.
func (s *Stats) SetAttribute(frame uint64, name string, value float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame < s.earliestFrame {
		return false
	}

	if frame > s.latestFrame {
		// Clear every slot between the old latest frame and the new one.
		n := uint64(len(s.frames))
		clearFrom := s.latestFrame + 1
		if frame-s.latestFrame > n {
			clearFrom = frame - n + 1
		}
		for f := clearFrom; f <= frame; f++ {
			s.frames[s.slot(f)] = nil
		}
		s.latestFrame = frame
		if frame+1 > n {
			earliest := frame + 1 - n
			if earliest > s.earliestFrame {
				s.earliestFrame = earliest
			}
		}
	}

	m := s.frames[s.slot(frame)]
	if m == nil {
		m = make(attributeMap)
		s.frames[s.slot(frame)] = m
	}
	m[name] = value
	return true
}

// Attribute returns the value recorded for (frame, name).
func (s *Stats) Attribute(frame uint64, name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if frame < s.earliestFrame || frame > s.latestFrame {
		return 0, false
	}
	v, ok := s.frames[s.slot(frame)][name]
	return v, ok
}

// AveragedAttribute averages name over [start, end]. When inverse is true
// the average is taken of 1/value and inverted back. It reports false when
// no frame in the range carries the attribute.
func (s *Stats) AveragedAttribute(start, end uint64, name string, inverse bool) (float64, bool) {
	if end < start {
		start, end = end, start
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if start < s.earliestFrame {
		start = s.earliestFrame
	}
	if end > s.latestFrame {
		end = s.latestFrame
	}

	var total float64
	var n int
	for f := start; f <= end; f++ {
		v, ok := s.frames[s.slot(f)][name]
		if !ok {
			continue
		}
		if inverse {
			if v == 0 {
				continue
			}
			v = 1 / v
		}
		total += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	avg := total / float64(n)
	if inverse {
		if avg == 0 {
			return 0, false
		}
		avg = 1 / avg
	}
	return avg, true
}

// AttributeNames returns the sorted attribute names recorded for frame.
func (s *Stats) AttributeNames(frame uint64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if frame < s.earliestFrame || frame > s.latestFrame {
		return nil
	}
	m := s.frames[s.slot(frame)]
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// SetCollectStats enables or disables a category.
func (s *Stats) SetCollectStats(category string, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories[category] = enabled
}

// CollectStats reports whether category is enabled.
func (s *Stats) CollectStats(category string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories[category]
}

// Categories returns the enabled categories, sorted.
func (s *Stats) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for c, on := range s.categories {
		if on {
			out = append(out, c)
		}
	}
	sort.Strings(out)
	return out
}
