// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/ramp.go
// Summary: Frame-driven opacity ramps with pluggable easing.
// Usage: PageStack ramps page alpha during cross-fades; the frame driver ticks
// the animator once per frame.

package texel

import "time"

// EasingFunc maps progress [0,1] to eased progress [0,1].
type EasingFunc func(t float64) float64

var (
	// EaseLinear keeps a constant speed.
	EaseLinear EasingFunc = func(t float64) float64 { return t }

	// EaseSmoothstep accelerates at the start and decelerates at the end.
	EaseSmoothstep EasingFunc = func(t float64) float64 {
		return t * t * (3.0 - 2.0*t)
	}
)

// EasingByName looks up an easing by its preference name.
func EasingByName(name string) (EasingFunc, bool) {
	switch name {
	case "", "linear":
		return EaseLinear, true
	case "smoothstep":
		return EaseSmoothstep, true
	}
	return nil, false
}

type ramp struct {
	key      interface{}
	set      func(float64)
	from, to float64
	start    time.Time
	duration time.Duration
	easing   EasingFunc
}

func (r *ramp) valueAt(now time.Time) (float64, bool) {
	if r.duration <= 0 {
		return r.to, true
	}
	elapsed := now.Sub(r.start)
	if elapsed <= 0 {
		return r.from, false
	}
	if elapsed >= r.duration {
		return r.to, true
	}
	progress := r.easing(float64(elapsed) / float64(r.duration))
	return r.from + (r.to-r.from)*progress, false
}

// Animator runs value ramps keyed by arbitrary comparable keys. Starting a
// ramp on a key that is already animating replaces it.
type Animator struct {
	ramps  []*ramp
	easing EasingFunc
}

// NewAnimator creates an animator using linear easing.
func NewAnimator() *Animator {
	return &Animator{easing: EaseLinear}
}

// SetEasing changes the easing used by subsequently started ramps.
func (a *Animator) SetEasing(e EasingFunc) {
	if e != nil {
		a.easing = e
	}
}

// Start begins ramping from→to over d, applying the initial value at once.
func (a *Animator) Start(key interface{}, set func(float64), from, to float64, start time.Time, d time.Duration) {
	a.Cancel(key)
	r := &ramp{
		key:      key,
		set:      set,
		from:     from,
		to:       to,
		start:    start,
		duration: d,
		easing:   a.easing,
	}
	a.ramps = append(a.ramps, r)
	set(from)
}

// Cancel stops the ramp for key, leaving the value where it is.
func (a *Animator) Cancel(key interface{}) {
	for i, r := range a.ramps {
		if r.key == key {
			a.ramps = append(a.ramps[:i], a.ramps[i+1:]...)
			return
		}
	}
}

func (a *Animator) animating(key interface{}) bool {
	for _, r := range a.ramps {
		if r.key == key {
			return true
		}
	}
	return false
}

// Tick applies every ramp's value at now and drops finished ramps.
func (a *Animator) Tick(now time.Time) {
	kept := a.ramps[:0]
	for _, r := range a.ramps {
		v, done := r.valueAt(now)
		r.set(v)
		if !done {
			kept = append(kept, r)
		}
	}
	for i := len(kept); i < len(a.ramps); i++ {
		a.ramps[i] = nil
	}
	a.ramps = kept
}
