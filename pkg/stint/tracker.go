package stint

import (
	"math"

	"github.com/estianp/TinyPedalBroadcast/pkg/queues"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

// fastest-lap placeholder, larger than any real lap time
const noFastest = 360000.0

// Record holds one stint's accumulated totals. The tracker mutates its
// current record in place every tick; on stint close a copy is pushed
// onto the bounded history.
type Record struct {
	Laps        int     `json:"laps"`
	Time        float64 `json:"time"`
	Fuel        float64 `json:"fuel"`
	Energy      float64 `json:"energy"`
	Compound    string  `json:"compound"`
	Wear        float64 `json:"wear"`
	Delta       float64 `json:"delta"`       // average-minus-fastest of countable laps
	Consistency float64 `json:"consistency"` // percent, 100 = zero variance
}

// LapRecord is one completed lap's consumption entry, newest first in the
// lap history.
type LapRecord struct {
	LapNumber  int     `json:"lapNumber"`
	LapTime    float64 `json:"lapTime"`
	Valid      bool    `json:"valid"` // counted toward consistency
	FuelUsed   float64 `json:"fuelUsed"`
	EnergyUsed float64 `json:"energyUsed"`
	WearAvg    float64 `json:"wearAvg"`
}

// Sample is the per-tick input for one vehicle. The caller pre-validates
// all readings; the tracker clamps logically impossible results (negative
// lap counts and the like) instead of erroring, since they are telemetry
// noise rather than bugs.
type Sample struct {
	LapStartTime   float64
	LapNumber      int
	ElapsedTime    float64
	InPits         bool
	InGarage       bool
	PreRace        bool
	SpeedMS        float64
	WearAvg        float64 // worn percentage averaged over four wheels
	FuelCurrent    float64
	EnergyCurrent  float64
	MaxCarcassTemp float64
	CompoundLabel  string // captured once per stint, at stint start
}

// Tracker infers stint boundaries from a continuous stream of samples:
// stint start, pit-stop end of stint, session pause abort. It needs no
// manual reset between sessions; garage returns, pre-race phases and
// elapsed-time jumps all re-arm it on their own.
//
// Each field below was a mutable local of the original accumulation loop;
// Tick advances the whole machine by one step and reports whether a stint
// record was just closed.
type Tracker struct {
	cfg settings.Thresholds

	resetStint   bool
	stintRunning bool

	startLaps   int
	startTime   float64
	startFuel   float64
	startEnergy float64
	startWear   float64

	lastTime       float64
	lastWearAvg    float64
	lastFuelCurr   float64
	lastEnergyCurr float64
	lastTimeStop   float64

	// consistency sub-machine
	pitting      bool
	lastLapStart float64
	stintLaps    int
	stintTime    float64
	stintFastest float64
	consistency  float64
	delta        float64

	// per-lap consumption baselines
	lapStartFuel   float64
	lapStartEnergy float64
	lapStartWear   float64

	current     Record
	history     *queues.Ring[Record]
	laps        *queues.Ring[LapRecord]
	lapsVersion int
}

func NewTracker(cfg settings.Thresholds) *Tracker {
	return &Tracker{
		cfg:          cfg,
		resetStint:   true,
		lastLapStart: math.Inf(1),
		stintFastest: noFastest,
		consistency:  1.0,
		history:      queues.NewRing[Record](cfg.StintHistorySize),
		laps:         queues.NewRing[LapRecord](cfg.LapHistorySize),
	}
}

// Tick feeds one sample through the state machine and returns true when a
// stint record was just pushed onto the history.
func (t *Tracker) Tick(s Sample) bool {
	closed := false

	if s.InGarage || s.PreRace || math.Abs(t.lastTime-s.ElapsedTime) > t.cfg.PauseGapSeconds {
		// garage return, pre-race phase or game pause aborts the stint
		t.resetStint = true
		if t.stintRunning && t.current.Time >= t.cfg.MinStintSeconds {
			t.history.PushFront(t.current)
			closed = true
		}
	} else if !s.InPits {
		t.lastFuelCurr = s.FuelCurrent
		t.lastEnergyCurr = s.EnergyCurrent
		t.lastWearAvg = s.WearAvg
		t.stintRunning = true
	} else if t.stintRunning {
		if s.SpeedMS > 1 {
			t.lastTimeStop = s.ElapsedTime
		}
		// wear improved, fuel or energy rose, or the car sat still long
		// enough: a genuine pit stop, not a drive-through
		if t.lastWearAvg > s.WearAvg ||
			t.lastFuelCurr < s.FuelCurrent ||
			t.lastEnergyCurr < s.EnergyCurrent ||
			s.ElapsedTime-t.lastTimeStop > t.cfg.MinPitstopSeconds {
			t.resetStint = true
			t.history.PushFront(t.current)
			closed = true
		}
	}

	t.lastTime = s.ElapsedTime

	if t.resetStint {
		t.resetStint = false
		t.stintRunning = false
		t.startLaps = s.LapNumber
		t.startTime = s.ElapsedTime
		t.startFuel = s.FuelCurrent
		t.startEnergy = s.EnergyCurrent
		t.startWear = s.WearAvg
		t.pitting = true
		t.lastLapStart = math.Inf(1)
		t.stintLaps = 0
		t.stintTime = 0
		t.stintFastest = noFastest
		t.consistency = 1.0
		t.delta = 0
		t.lapStartFuel = s.FuelCurrent
		t.lapStartEnergy = s.EnergyCurrent
		t.lapStartWear = s.WearAvg
		t.current.Compound = s.CompoundLabel
	}

	// raise baselines through refuels so "used" stays monotonic
	if t.startFuel < s.FuelCurrent {
		t.startFuel = s.FuelCurrent
	}
	if t.startEnergy < s.EnergyCurrent {
		t.startEnergy = s.EnergyCurrent
	}

	t.pitting = t.pitting || s.InPits

	if t.lastLapStart != s.LapStartTime {
		lastLapTime := s.LapStartTime - t.lastLapStart
		countable := !t.pitting && lastLapTime > 0 && s.MaxCarcassTemp > t.cfg.MinTyreTempC
		if countable {
			t.stintLaps++
			t.stintTime += lastLapTime
			if t.stintFastest > lastLapTime {
				t.stintFastest = lastLapTime
			}
			if t.stintLaps > 1 {
				average := (t.stintTime - t.stintFastest) / float64(t.stintLaps-1)
				if average > 0 {
					t.consistency = t.stintFastest / average
					t.delta = average - t.stintFastest
				}
			}
		}
		if !math.IsInf(t.lastLapStart, 1) && lastLapTime > 0 {
			t.laps.PushFront(LapRecord{
				LapNumber:  s.LapNumber,
				LapTime:    lastLapTime,
				Valid:      countable,
				FuelUsed:   math.Max(t.lapStartFuel-s.FuelCurrent, 0),
				EnergyUsed: math.Max(t.lapStartEnergy-s.EnergyCurrent, 0),
				WearAvg:    math.Max(s.WearAvg-t.lapStartWear, 0),
			})
			t.lapsVersion++
		}
		t.pitting = lastLapTime <= 0
		t.lastLapStart = s.LapStartTime
		t.lapStartFuel = s.FuelCurrent
		t.lapStartEnergy = s.EnergyCurrent
		t.lapStartWear = s.WearAvg
	}

	t.current.Laps = maxInt(s.LapNumber-t.startLaps, 0)
	t.current.Time = math.Max(s.ElapsedTime-t.startTime, 0)
	t.current.Fuel = math.Max(t.startFuel-s.FuelCurrent, 0)
	t.current.Energy = math.Max(t.startEnergy-s.EnergyCurrent, 0)
	t.current.Wear = math.Max(s.WearAvg-t.startWear, 0)
	t.current.Delta = t.delta
	t.current.Consistency = t.consistency * 100

	return closed
}

// Current returns the live stint record, mutated tick by tick.
func (t *Tracker) Current() Record {
	return t.current
}

// History returns closed stint records, newest first.
func (t *Tracker) History() []Record {
	return t.history.Items()
}

// Laps returns completed lap consumption records, newest first.
func (t *Tracker) Laps() []LapRecord {
	return t.laps.Items()
}

// LapsVersion increments whenever Laps gains an entry, so consumers can
// cheaply skip unchanged histories.
func (t *Tracker) LapsVersion() int {
	return t.lapsVersion
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
