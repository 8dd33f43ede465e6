// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/scheduler.go
// Summary: Single-shot deferred actions serviced by the frame loop.
// Usage: Page transitions schedule their bookkeeping here instead of on real
// timers, so every callback runs on the frame goroutine.

package texel

import (
	"sort"
	"time"
)

// TimerID identifies a scheduled action.
type TimerID uint64

type deferred struct {
	id       TimerID
	name     string
	deadline time.Time
	seq      uint64
	fn       func(now time.Time)
}

// Scheduler holds pending deferred actions. It is not safe for concurrent use;
// only the frame loop touches it.
type Scheduler struct {
	now     time.Time
	nextID  TimerID
	seq     uint64
	pending []*deferred
}

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

// Now returns the time of the most recent frame.
func (s *Scheduler) Now() time.Time { return s.now }

// setNow moves the clock without firing anything.
func (s *Scheduler) setNow(now time.Time) {
	if now.After(s.now) {
		s.now = now
	}
}

// After schedules fn to run once the clock reaches Now()+d.
func (s *Scheduler) After(d time.Duration, name string, fn func(now time.Time)) TimerID {
	s.nextID++
	s.seq++
	s.pending = append(s.pending, &deferred{
		id:       s.nextID,
		name:     name,
		deadline: s.now.Add(d),
		seq:      s.seq,
		fn:       fn,
	})
	return s.nextID
}

// Cancel drops a pending action. It reports whether the action was pending.
func (s *Scheduler) Cancel(id TimerID) bool {
	for i, d := range s.pending {
		if d.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Pending returns the number of actions not yet fired.
func (s *Scheduler) Pending() int { return len(s.pending) }

// Advance moves the clock to now and fires every due action in deadline
// order; equal deadlines fire in scheduling order. Actions scheduled by a
// callback fire in the same call if they are already due.
func (s *Scheduler) Advance(now time.Time) int {
	s.setNow(now)
	fired := 0
	for {
		next := s.popDue()
		if next == nil {
			return fired
		}
		next.fn(s.now)
		fired++
	}
}

func (s *Scheduler) popDue() *deferred {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		a, b := s.pending[i], s.pending[j]
		if !a.deadline.Equal(b.deadline) {
			return a.deadline.Before(b.deadline)
		}
		return a.seq < b.seq
	})
	head := s.pending[0]
	if head.deadline.After(s.now) {
		return nil
	}
	s.pending = s.pending[1:]
	return head
}
