package proximity

import (
	"sort"

	"github.com/estianp/TinyPedalBroadcast/pkg/laptime"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

// Result is the derived proximity state for one tick's roster. Gaps and
// ClassPositions are aligned with the input roster by index; the three
// sets are keyed by slot ID so they stay meaningful if consumers hold
// them past a roster reorder.
type Result struct {
	Gaps           []float64
	ClassPositions []int
	Battle         map[int]bool
	Close          map[int]bool
	Lapping        map[int]bool
}

// Classifier computes relative gaps, in-class positions and the
// battle/close/lapping sets for a full roster. It holds no per-tick
// state: classifying the same roster twice yields the same result.
type Classifier struct {
	battleSeconds  float64
	closeSeconds   float64
	lappingSeconds float64
}

func NewClassifier(cfg settings.Thresholds) *Classifier {
	return &Classifier{
		battleSeconds:  cfg.BattleSeconds,
		closeSeconds:   cfg.CloseSeconds,
		lappingSeconds: cfg.LappingSeconds,
	}
}

// Classify derives proximity state for one tick. refIndex is the roster
// index of the spectated vehicle, or -1 for none. With lapTime <= 0 the
// lap-ring math is disabled: all gaps are zero and all sets empty.
func (c *Classifier) Classify(roster []model.VehicleSample, refIndex int, lapTime float64) Result {
	r := Result{
		Gaps:           make([]float64, len(roster)),
		ClassPositions: make([]int, len(roster)),
		Battle:         make(map[int]bool),
		Close:          make(map[int]bool),
		Lapping:        make(map[int]bool),
	}

	refValid := refIndex >= 0 && refIndex < len(roster) && lapTime > 0
	var refTime float64
	if refValid {
		refTime = roster[refIndex].TimeIntoLap
	}
	for i := range roster {
		if refValid && i != refIndex {
			r.Gaps[i] = laptime.WrapDelta(roster[i].TimeIntoLap, refTime, lapTime)
		}
	}

	c.classPositions(roster, r.ClassPositions)
	if lapTime > 0 {
		c.findBattles(roster, lapTime, r.Battle, r.Close)
		c.findLapping(roster, lapTime, r.Lapping)
	}
	return r
}

// classPositions assigns 1..N within each class by overall place.
// Place ties keep roster order; valid telemetry should not produce them
// but they must not break the ranking.
func (c *Classifier) classPositions(roster []model.VehicleSample, out []int) {
	classes := make(map[string][]int)
	for i, v := range roster {
		classes[v.ClassName] = append(classes[v.ClassName], i)
	}
	for _, indices := range classes {
		sort.SliceStable(indices, func(a, b int) bool {
			return roster[indices[a]].Place < roster[indices[b]].Place
		})
		for pos, idx := range indices {
			out[idx] = pos + 1
		}
	}
}

// findBattles fills the battle and close sets. Cars in pits or garage,
// yellow-stickied or blue-flagged are not racing anyone and are skipped.
// O(n²) per class; field sizes make that cheap and an early exit would
// miss pairs that straddle the start line.
func (c *Classifier) findBattles(roster []model.VehicleSample, lapTime float64, battle, close map[int]bool) {
	classes := make(map[string][]int)
	for i, v := range roster {
		if v.InPits || v.InGarage || v.IsYellow || v.IsBlue {
			continue
		}
		classes[v.ClassName] = append(classes[v.ClassName], i)
	}

	for _, indices := range classes {
		if len(indices) < 2 {
			continue
		}
		for i := 0; i < len(indices); i++ {
			for j := i + 1; j < len(indices); j++ {
				vi, vj := roster[indices[i]], roster[indices[j]]
				gap := laptime.WrapDelta(vj.TimeIntoLap, vi.TimeIntoLap, lapTime)
				if gap < 0 {
					gap = -gap
				}
				if gap <= c.battleSeconds {
					battle[vi.SlotID] = true
					battle[vj.SlotID] = true
				} else if gap <= c.closeSeconds {
					close[vi.SlotID] = true
					close[vj.SlotID] = true
				}
			}
		}
	}

	// battle takes priority over close
	for slotID := range battle {
		delete(close, slotID)
	}
}

// findLapping marks non-blue cars running near a blue-flagged car, so
// consumers can suppress battle coloring while traffic is being lapped.
// The blue car itself is not marked.
func (c *Classifier) findLapping(roster []model.VehicleSample, lapTime float64, lapping map[int]bool) {
	var blue, rest []int
	for i, v := range roster {
		if v.InPits || v.InGarage {
			continue
		}
		if v.IsBlue {
			blue = append(blue, i)
		} else {
			rest = append(rest, i)
		}
	}
	for _, b := range blue {
		for _, o := range rest {
			gap := laptime.WrapDelta(roster[o].TimeIntoLap, roster[b].TimeIntoLap, lapTime)
			if gap < 0 {
				gap = -gap
			}
			if gap <= c.lappingSeconds {
				lapping[roster[o].SlotID] = true
			}
		}
	}
}
