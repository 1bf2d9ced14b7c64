package archivum

// AddObserver is invoked once per entity that newly enters an archetype
// containing the subscribed component.
type AddObserver func(id EntityID)

// RemoveObserver is invoked once per entity whose archetype drops the
// subscribed component (including via destroyEntity).
type RemoveObserver func(id EntityID)

// Unsubscribe removes a previously registered observer.
type Unsubscribe func()

type observerList struct {
	add    []AddObserver
	remove []RemoveObserver
}

// hookBus is the spec's HookBus (§4.7): per-component add/remove observer
// lists, ordered pending buffers populated by the Mutator, and a
// removed-row tombstone map that survives until commitRemovals.
type hookBus struct {
	observers map[ComponentID]*observerList
	// subscriptionOrder preserves the order components first received a
	// subscription, so flush() processes pending-adds across components in
	// that order before any pending-removes, per spec.md §4.7.
	subscriptionOrder []ComponentID

	pendingAdd    map[ComponentID][]EntityID
	pendingRemove map[ComponentID][]EntityID

	tombstones map[EntityID]map[ComponentID]map[string]any
}

func newHookBus() *hookBus {
	return &hookBus{
		observers:     make(map[ComponentID]*observerList),
		pendingAdd:    make(map[ComponentID][]EntityID),
		pendingRemove: make(map[ComponentID][]EntityID),
		tombstones:    make(map[EntityID]map[ComponentID]map[string]any),
	}
}

func (h *hookBus) listFor(c ComponentID) *observerList {
	l, ok := h.observers[c]
	if !ok {
		l = &observerList{}
		h.observers[c] = l
		h.subscriptionOrder = append(h.subscriptionOrder, c)
	}
	return l
}

// OnAdd registers cb for add-events on c. Returns an unsubscribe handle
// that removes this exact registration by identity.
func (h *hookBus) OnAdd(c ComponentID, cb AddObserver) Unsubscribe {
	l := h.listFor(c)
	idx := len(l.add)
	l.add = append(l.add, cb)
	return func() {
		if idx < len(l.add) {
			l.add[idx] = nil
		}
	}
}

// OnRemove registers cb for remove-events on c.
func (h *hookBus) OnRemove(c ComponentID, cb RemoveObserver) Unsubscribe {
	l := h.listFor(c)
	idx := len(l.remove)
	l.remove = append(l.remove, cb)
	return func() {
		if idx < len(l.remove) {
			l.remove[idx] = nil
		}
	}
}

func (h *hookBus) hasRemoveObserver(c ComponentID) bool {
	l, ok := h.observers[c]
	if !ok {
		return false
	}
	for _, cb := range l.remove {
		if cb != nil {
			return true
		}
	}
	return false
}

func (h *hookBus) enqueueAdd(c ComponentID, id EntityID) {
	if _, ok := h.observers[c]; !ok {
		return
	}
	h.pendingAdd[c] = append(h.pendingAdd[c], id)
}

func (h *hookBus) enqueueRemove(c ComponentID, id EntityID) {
	if _, ok := h.observers[c]; !ok {
		return
	}
	h.pendingRemove[c] = append(h.pendingRemove[c], id)
}

// recordTombstone captures row data for id/c, ahead of the row's removal,
// so a remove-observer can still read the deceased state until the next
// commitRemovals.
func (h *hookBus) recordTombstone(id EntityID, c ComponentID, data map[string]any) {
	if data == nil {
		return
	}
	row, ok := h.tombstones[id]
	if !ok {
		row = make(map[ComponentID]map[string]any)
		h.tombstones[id] = row
	}
	row[c] = data
}

func (h *hookBus) tombstone(id EntityID, c ComponentID) (map[string]any, bool) {
	row, ok := h.tombstones[id]
	if !ok {
		return nil, false
	}
	data, ok := row[c]
	return data, ok
}

// Flush fires every pending add then every pending remove, in registration
// order of each component's subscription, then clears all buffers. No-op
// (fires nothing) if there is nothing pending, satisfying R2.
func (h *hookBus) Flush() {
	for _, c := range h.subscriptionOrder {
		ids, ok := h.pendingAdd[c]
		if !ok || len(ids) == 0 {
			continue
		}
		l := h.observers[c]
		for _, id := range ids {
			for _, cb := range l.add {
				if cb != nil {
					cb(id)
				}
			}
		}
	}
	for _, c := range h.subscriptionOrder {
		ids, ok := h.pendingRemove[c]
		if !ok || len(ids) == 0 {
			continue
		}
		l := h.observers[c]
		for _, id := range ids {
			for _, cb := range l.remove {
				if cb != nil {
					cb(id)
				}
			}
		}
	}
	for c := range h.pendingAdd {
		delete(h.pendingAdd, c)
	}
	for c := range h.pendingRemove {
		delete(h.pendingRemove, c)
	}
}

// resetState clears pending buffers and tombstones without disturbing
// registered observers, for Deserialize's "clear all prior state" step —
// subscriptions are wiring set up by the host application, not world data.
func (h *hookBus) resetState() {
	for c := range h.pendingAdd {
		delete(h.pendingAdd, c)
	}
	for c := range h.pendingRemove {
		delete(h.pendingRemove, c)
	}
	for id := range h.tombstones {
		delete(h.tombstones, id)
	}
}

// CommitRemovals clears the tombstone map. Idempotent (R3).
func (h *hookBus) CommitRemovals() {
	for id := range h.tombstones {
		delete(h.tombstones, id)
	}
}
