package stint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

func testConfig() settings.Thresholds {
	cfg := settings.DefaultThresholds()
	cfg.MinStintSeconds = 300
	cfg.MinPitstopSeconds = 10
	cfg.MinTyreTempC = 60
	// tests tick sparsely; pause detection gets its own test
	cfg.PauseGapSeconds = 1e9
	return cfg
}

// onTrack builds a running-lap sample: lap lapNumber in progress, current
// lap started at lapStart, hot tyres, full speed.
func onTrack(lapNumber int, lapStart, elapsed, fuel float64) Sample {
	return Sample{
		LapStartTime:   lapStart,
		LapNumber:      lapNumber,
		ElapsedTime:    elapsed,
		SpeedMS:        50,
		WearAvg:        float64(lapNumber), // 1% wear per lap
		FuelCurrent:    fuel,
		MaxCarcassTemp: 85,
		CompoundLabel:  "SSSS",
	}
}

// runLaps drives the tracker through n laps of the given lap time,
// ticking once per lap boundary plus a mid-lap tick.
func runLaps(t *Tracker, n int, lapSeconds float64) {
	fuel := 100.0
	for lap := 0; lap <= n; lap++ {
		start := float64(lap) * lapSeconds
		t.Tick(onTrack(lap, start, start, fuel))
		if lap < n {
			t.Tick(onTrack(lap, start, start+lapSeconds/2, fuel-1.5))
		}
		fuel -= 3.0
	}
}

func TestTrackerClosesOnGarageReturn(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	runLaps(tr, 10, 90)
	require.Equal(t, 10, tr.Current().Laps)
	require.Empty(t, tr.History(), "no record before the stint ends")

	garage := onTrack(10, 900, 900, 70)
	garage.InGarage = true
	garage.InPits = true
	closed := tr.Tick(garage)

	require.True(t, closed)
	records := tr.History()
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].Laps)
	assert.InDelta(t, 900.0, records[0].Time, 1e-9)
	assert.Equal(t, "SSSS", records[0].Compound)

	t.Run("second garage tick does not close again", func(t *testing.T) {
		garage.ElapsedTime = 901
		assert.False(t, tr.Tick(garage))
		assert.Len(t, tr.History(), 1)
	})
}

func TestTrackerShortStintNeverReachesHistory(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.MinStintSeconds = 1000
	tr := NewTracker(cfg)

	runLaps(tr, 10, 90) // 900s < minimum
	garage := onTrack(10, 900, 900, 70)
	garage.InGarage = true
	assert.False(t, tr.Tick(garage))
	assert.Empty(t, tr.History())
}

func TestTrackerClosesOnPitStop(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	runLaps(tr, 5, 90)
	require.Equal(t, 5, tr.Current().Laps)

	// enter pits, roll down the lane, then refuel
	inPits := onTrack(5, 450, 452, 85)
	inPits.InPits = true
	require.False(t, tr.Tick(inPits))

	refueled := onTrack(5, 450, 460, 95) // fuel went up: pit service
	refueled.InPits = true
	refueled.SpeedMS = 0
	closed := tr.Tick(refueled)

	require.True(t, closed)
	require.Len(t, tr.History(), 1)
	assert.Equal(t, 5, tr.History()[0].Laps)

	t.Run("accumulators restart after the stop", func(t *testing.T) {
		assert.Equal(t, 0, tr.Current().Laps)
		assert.InDelta(t, 100.0, tr.Current().Consistency, 1e-9)
	})
}

func TestTrackerClosesOnLongStationaryStop(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	runLaps(tr, 5, 90)

	// roll down the pit lane, then sit stationary with no service
	entry := onTrack(5, 450, 451, 85)
	entry.InPits = true
	entry.SpeedMS = 20
	require.False(t, tr.Tick(entry))

	stop := onTrack(5, 450, 455, 85)
	stop.InPits = true
	stop.SpeedMS = 0
	require.False(t, tr.Tick(stop), "still under the stationary threshold")

	stop.ElapsedTime = 463 // > MinPitstopSeconds past last movement
	assert.True(t, tr.Tick(stop))
	assert.Len(t, tr.History(), 1)
}

func TestTrackerPauseAbortsWithoutRecord(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.PauseGapSeconds = 4
	tr := NewTracker(cfg)

	// short stint, then elapsed time jumps by more than the pause gap
	tr.Tick(onTrack(0, 0, 0, 100))
	tr.Tick(onTrack(0, 0, 2, 100))
	tr.Tick(onTrack(0, 0, 4, 100))
	assert.False(t, tr.Tick(onTrack(0, 0, 300, 100)), "short stint is discarded, not recorded")
	assert.Empty(t, tr.History())
	assert.Equal(t, 0, tr.Current().Laps)
	assert.InDelta(t, 0.0, tr.Current().Time, 1e-9)
}

func TestTrackerConsistency(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	tick := func(lap int, lapStart float64) {
		tr.Tick(onTrack(lap, lapStart, lapStart, 100))
	}

	// out-lap never counts (pitting latched at stint start)
	tick(0, 0)
	tick(1, 92)
	assert.InDelta(t, 100.0, tr.Current().Consistency, 1e-9)

	// one countable lap: still neutral
	tick(2, 182) // 90s lap
	assert.InDelta(t, 100.0, tr.Current().Consistency, 1e-9)
	assert.InDelta(t, 0.0, tr.Current().Delta, 1e-9)

	// second countable lap of 91s: fastest 90, average-excluding-fastest 91
	tick(3, 273)
	assert.InDelta(t, 100.0*90.0/91.0, tr.Current().Consistency, 1e-9)
	assert.InDelta(t, 1.0, tr.Current().Delta, 1e-9)

	t.Run("metrics persist between laps", func(t *testing.T) {
		tr.Tick(onTrack(3, 273, 300, 100))
		assert.InDelta(t, 100.0*90.0/91.0, tr.Current().Consistency, 1e-9)
	})

	t.Run("cold tyres do not count", func(t *testing.T) {
		cold := onTrack(4, 365, 365, 100) // 92s lap
		cold.MaxCarcassTemp = 40
		tr.Tick(cold)
		assert.InDelta(t, 100.0*90.0/91.0, tr.Current().Consistency, 1e-9)
	})

	t.Run("lap with pit visit does not count", func(t *testing.T) {
		mid := onTrack(4, 365, 400, 100)
		mid.InPits = true
		mid.SpeedMS = 20 // drive-through, stays under stop threshold
		tr.Tick(mid)
		tr.Tick(onTrack(4, 365, 420, 100))
		tr.Tick(onTrack(5, 458, 458, 100)) // 93s lap, tainted by the drive-through
		assert.InDelta(t, 100.0*90.0/91.0, tr.Current().Consistency, 1e-9)
	})
}

func TestTrackerFuelMonotonicThroughRefuelGlitch(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	tr.Tick(onTrack(0, 0, 0, 50))
	tr.Tick(onTrack(0, 0, 2, 49))
	assert.InDelta(t, 1.0, tr.Current().Fuel, 1e-9)

	// telemetry glitch reports more fuel mid-stint: baseline rises,
	// used fuel clamps at zero instead of going negative
	tr.Tick(onTrack(0, 0, 4, 55))
	assert.InDelta(t, 0.0, tr.Current().Fuel, 1e-9)
	tr.Tick(onTrack(0, 0, 6, 54))
	assert.InDelta(t, 1.0, tr.Current().Fuel, 1e-9)
}

func TestTrackerLapHistory(t *testing.T) {
	t.Parallel()
	tr := NewTracker(testConfig())

	runLaps(tr, 3, 90)
	laps := tr.Laps()
	require.Len(t, laps, 3)
	assert.Equal(t, 3, laps[0].LapNumber, "newest first")
	assert.InDelta(t, 90.0, laps[0].LapTime, 1e-9)
	assert.False(t, laps[2].Valid, "out-lap is not countable")
	assert.True(t, laps[0].Valid)
	assert.Equal(t, 3, tr.LapsVersion())
}

func TestTrackerHistoryBounded(t *testing.T) {
	t.Parallel()
	cfg := testConfig()
	cfg.StintHistorySize = 2
	cfg.MinStintSeconds = 0
	tr := NewTracker(cfg)

	elapsed := 0.0
	for stint := 0; stint < 4; stint++ {
		for i := 0; i < 3; i++ {
			tr.Tick(onTrack(stint, 0, elapsed, 100))
			elapsed += 2
		}
		garage := onTrack(stint, 0, elapsed, 100)
		garage.InGarage = true
		tr.Tick(garage)
		elapsed += 2
	}
	assert.Len(t, tr.History(), 2)
}
