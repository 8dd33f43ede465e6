// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: texel/hittest.go
// Summary: Polling hover detection over registered scene nodes.
// Usage: Polled once per frame by the frame driver; fires enter/leave
// callbacks on hover state changes only.

package texel

import "go.uber.org/zap"

// Pointer is the pointer position in display space. Present is false until
// the first pointer event arrives.
type Pointer struct {
	Pos     Vec2
	Present bool
}

// HoverFunc receives hover=true on enter and hover=false on leave.
type HoverFunc func(hover bool, payload interface{})

// RegionID identifies a registered hit region.
type RegionID int

// HitRegion tracks one (element, hitbox scale, callback) registration.
type HitRegion struct {
	id       RegionID
	element  *Node
	scale    Vec2
	callback HoverFunc
	payload  interface{}
	hovered  bool
}

func (r *HitRegion) ID() RegionID   { return r.id }
func (r *HitRegion) Hovered() bool  { return r.hovered }
func (r *HitRegion) Element() *Node { return r.element }

// HitTestRegistry observes nodes it does not own. Removed or hidden nodes are
// simply treated as not hovered.
type HitTestRegistry struct {
	log     *zap.Logger
	regions []*HitRegion
	lastID  RegionID
	active  map[RegionID]*HitRegion
}

// NewHitTestRegistry creates an empty registry.
func NewHitTestRegistry(log *zap.Logger) *HitTestRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &HitTestRegistry{
		log:    log,
		active: make(map[RegionID]*HitRegion),
	}
}

// Register appends a region. The same element may be registered any number
// of times.
func (h *HitTestRegistry) Register(element *Node, hitboxScale Vec2, cb HoverFunc, payload interface{}) RegionID {
	h.lastID++
	h.regions = append(h.regions, &HitRegion{
		id:       h.lastID,
		element:  element,
		scale:    hitboxScale,
		callback: cb,
		payload:  payload,
	})
	return h.lastID
}

// Unregister drops a region without firing its callback.
func (h *HitTestRegistry) Unregister(id RegionID) bool {
	for i, r := range h.regions {
		if r.id == id {
			h.regions = append(h.regions[:i], h.regions[i+1:]...)
			delete(h.active, id)
			return true
		}
	}
	return false
}

// Clear drops every region.
func (h *HitTestRegistry) Clear() {
	h.regions = nil
	h.active = make(map[RegionID]*HitRegion)
}

// Len returns the number of registered regions.
func (h *HitTestRegistry) Len() int { return len(h.regions) }

// Hovered reports whether a region is currently hovered.
func (h *HitTestRegistry) Hovered(id RegionID) bool {
	_, ok := h.active[id]
	return ok
}

// HoveredCount returns how many regions are currently hovered.
func (h *HitTestRegistry) HoveredCount() int { return len(h.active) }

// HitBox computes the element's display-space box scaled about its centre.
func HitBox(element *Node, hitboxScale Vec2) Box {
	return element.DisplayBox().ScaleAbout(hitboxScale)
}

func (h *HitTestRegistry) contains(r *HitRegion, p Pointer) bool {
	if !p.Present {
		return false
	}
	if r.element.IsEmpty() || r.element.IsHidden() {
		return false
	}
	return HitBox(r.element, r.scale).Contains(p.Pos)
}

// Poll evaluates every region in registration order against p and fires the
// callback of each region whose hover state changed. Overlapping regions all
// fire; there is no topmost-only resolution.
func (h *HitTestRegistry) Poll(p Pointer) {
	regions := make([]*HitRegion, len(h.regions))
	copy(regions, h.regions)

	for _, r := range regions {
		if !h.registered(r) {
			continue
		}
		inside := h.contains(r, p)
		switch {
		case inside && !r.hovered:
			r.hovered = true
			h.active[r.id] = r
			h.fire(r, true)
		case !inside && r.hovered:
			r.hovered = false
			delete(h.active, r.id)
			h.fire(r, false)
		}
	}
}

func (h *HitTestRegistry) registered(r *HitRegion) bool {
	for _, cur := range h.regions {
		if cur == r {
			return true
		}
	}
	return false
}

func (h *HitTestRegistry) fire(r *HitRegion, hover bool) {
	if r.callback == nil {
		return
	}
	r.callback(hover, r.payload)
}
