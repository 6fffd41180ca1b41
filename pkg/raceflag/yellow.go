package raceflag

// YellowSticky turns the instantaneous "slow on track" reading into a
// debounced per-vehicle yellow state: once a car drops below the speed
// threshold, the yellow holds for at least stickySeconds after the car
// recovers, so one fast sample cannot flicker the flag off.
//
// Timestamps are keyed by slot ID. Roster index is not a valid key here:
// cars reorder between ticks and an index-keyed map would bleed one
// car's yellow onto another.
type YellowSticky struct {
	timestamps     map[int]float64
	speedThreshold float64
	stickySeconds  float64
}

func NewYellowSticky(speedThreshold, stickySeconds float64) *YellowSticky {
	return &YellowSticky{
		timestamps:     make(map[int]float64),
		speedThreshold: speedThreshold,
		stickySeconds:  stickySeconds,
	}
}

// Update reports whether the vehicle is yellow this tick. now must be a
// monotonic reading (session elapsed time).
func (y *YellowSticky) Update(slotID int, speed float64, inPits bool, now float64) bool {
	if inPits {
		delete(y.timestamps, slotID)
		return false
	}
	if speed < y.speedThreshold {
		y.timestamps[slotID] = now
		return true
	}
	if last, ok := y.timestamps[slotID]; ok && now-last < y.stickySeconds {
		return true
	}
	delete(y.timestamps, slotID)
	return false
}

func (y *YellowSticky) Reset() {
	y.timestamps = make(map[int]float64)
}
