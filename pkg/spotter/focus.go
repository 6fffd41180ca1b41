package spotter

import "sort"

// Focus selection: which vehicle the relative gaps and flag panel follow.
// Cycling walks the field in place order with NoFocus as position zero,
// so repeated "next" presses tour the whole grid and come back to
// spectating nobody.

func (m *Manager) Focus() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focusSlot
}

// SetFocus spectates the given slot, or NoFocus for nobody. The focused
// vehicle's flag timers restart: their stored timestamps belong to the
// previous car and must not leak onto the new one.
func (m *Manager) SetFocus(slotID int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setFocus(slotID)
}

func (m *Manager) FocusNext() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.placeOrder()
	if len(order) == 0 {
		return m.focusSlot
	}
	pos := indexOf(order, m.focusSlot) // -1 for NoFocus
	if pos+1 >= len(order) {
		m.setFocus(NoFocus)
	} else {
		m.setFocus(order[pos+1])
	}
	return m.focusSlot
}

func (m *Manager) FocusPrevious() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	order := m.placeOrder()
	if len(order) == 0 {
		return m.focusSlot
	}
	pos := indexOf(order, m.focusSlot)
	switch {
	case pos == -1:
		m.setFocus(order[len(order)-1])
	case pos == 0:
		m.setFocus(NoFocus)
	default:
		m.setFocus(order[pos-1])
	}
	return m.focusSlot
}

func (m *Manager) setFocus(slotID int) {
	if m.focusSlot == slotID {
		return
	}
	m.focusSlot = slotID
	m.pit.Reset()
	m.blue.Reset()
	m.traffic.Reset()
	m.green.Reset()
}

// placeOrder returns current slot IDs sorted by overall place.
func (m *Manager) placeOrder() []int {
	rows := m.state.Rows
	type entry struct {
		place  int
		slotID int
	}
	entries := make([]entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, entry{place: r.Place, slotID: r.SlotID})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].place < entries[b].place
	})
	order := make([]int, len(entries))
	for i, e := range entries {
		order[i] = e.slotID
	}
	return order
}

func indexOf(order []int, slotID int) int {
	for i, id := range order {
		if id == slotID {
			return i
		}
	}
	return -1
}
