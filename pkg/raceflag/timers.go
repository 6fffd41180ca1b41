package raceflag

// Inactive is the shared "no flag" sentinel returned by the pit, blue and
// traffic timers, large enough that a single `value < Inactive` comparison
// works for every consumer. The green-flag timer is the historical odd one
// out: it signals inactive with -1 instead (see GreenFlagTimer).
const Inactive = 360000.0

// All timers are driven by session elapsed time, not wall clock, and are
// owned by a single tick driver. Reset must be called by the owner on
// session or focus change; the timers do not know why they were reset.

// PitTimer measures elapsed pit time for one vehicle. While the vehicle
// is in the pits it reports positive elapsed seconds. For
// highlightSeconds after leaving it reports the finished pit time
// negated, so consumers can style the "just finished" value differently
// with one sign check. After the highlight window it reports Inactive.
type PitTimer struct {
	timerStart  float64
	lastInPits  bool
	lastPitTime float64
	maxDuration float64
}

func NewPitTimer(highlightSeconds float64) *PitTimer {
	return &PitTimer{maxDuration: highlightSeconds}
}

func (p *PitTimer) Update(inPits bool, elapsed float64) float64 {
	if !p.lastInPits && inPits {
		p.timerStart = elapsed
	}
	p.lastInPits = inPits

	if p.timerStart == 0 {
		return Inactive
	}

	pitTimer := elapsed - p.timerStart
	if inPits {
		p.lastPitTime = pitTimer
	} else if pitTimer-p.lastPitTime <= p.maxDuration {
		pitTimer = -p.lastPitTime // negative marks the just-finished stop
	} else {
		p.timerStart = 0
		pitTimer = Inactive
	}
	return pitTimer
}

func (p *PitTimer) Reset() {
	p.timerStart = 0
	p.lastInPits = false
	p.lastPitTime = 0
}

// BlueFlagTimer reports how long the blue flag has been shown, growing
// monotonically while the signal holds, or Inactive otherwise.
type BlueFlagTimer struct {
	timerStart float64
	raceOnly   bool
}

func NewBlueFlagTimer(raceOnly bool) *BlueFlagTimer {
	return &BlueFlagTimer{raceOnly: raceOnly}
}

func (b *BlueFlagTimer) Update(inRace, blueFlag bool, elapsed float64) float64 {
	if !b.raceOnly || inRace {
		if blueFlag {
			if b.timerStart == 0 {
				b.timerStart = elapsed
			}
			return elapsed - b.timerStart
		}
		b.timerStart = 0
	}
	return Inactive
}

func (b *BlueFlagTimer) Reset() {
	b.timerStart = 0
}

// TrafficTimer reports the time gap to the nearest incoming traffic while
// the vehicle is vulnerable to it: in the pits, slow on track, or within
// the grace window after leaving the pits.
type TrafficTimer struct {
	timerStart        float64
	lastInPits        bool
	maxTimeGap        float64
	pitoutDuration    float64
	lowSpeedThreshold float64
}

func NewTrafficTimer(maxTimeGap, pitoutDuration, lowSpeedThreshold float64) *TrafficTimer {
	return &TrafficTimer{
		maxTimeGap:        maxTimeGap,
		pitoutDuration:    pitoutDuration,
		lowSpeedThreshold: lowSpeedThreshold,
	}
}

func (t *TrafficTimer) Update(inPits bool, speed, nearestTraffic, elapsed float64) float64 {
	if t.lastInPits && !inPits {
		t.timerStart = elapsed // pit exit opens the grace window
	}
	t.lastInPits = inPits

	if t.timerStart != 0 && elapsed-t.timerStart > t.pitoutDuration {
		t.timerStart = 0
	}

	if nearestTraffic < t.maxTimeGap {
		lowSpeed := t.lowSpeedThreshold > 0 && speed < t.lowSpeedThreshold
		if lowSpeed || inPits || t.timerStart != 0 {
			return nearestTraffic
		}
	}
	return Inactive
}

func (t *TrafficTimer) Reset() {
	t.timerStart = 0
	t.lastInPits = false
}

// GreenFlagTimer passes the start-lights countdown through while lights
// are shown, then keeps reporting it for greenFlagSeconds after lights
// out before forcing -1 even if the signal persists. -1 is this timer's
// own inactive value, kept distinct from Inactive for compatibility with
// consumers that treat any non-negative value as "lights visible".
type GreenFlagTimer struct {
	lastLapStartTime float64
	greenFlagSeconds float64
}

func NewGreenFlagTimer(greenFlagSeconds float64) *GreenFlagTimer {
	return &GreenFlagTimer{
		lastLapStartTime: -1,
		greenFlagSeconds: greenFlagSeconds,
	}
}

func (g *GreenFlagTimer) Update(startLights int, elapsed float64) int {
	if startLights > 0 {
		g.lastLapStartTime = elapsed
	}

	if g.lastLapStartTime == -1 {
		return -1 // bypass checking after green flag
	}

	if elapsed-g.lastLapStartTime > g.greenFlagSeconds {
		g.lastLapStartTime = -1
		return -1
	}
	return startLights
}

func (g *GreenFlagTimer) Reset() {
	g.lastLapStartTime = -1
}
