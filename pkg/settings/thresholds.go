package settings

// Thresholds is the immutable snapshot of every tunable the spotter engine
// uses. Components receive it at construction; nothing reads settings
// ambiently at tick time.
type Thresholds struct {
	// Proximity classification
	BattleSeconds  float64 // same-class pair gap for a battle
	CloseSeconds   float64 // same-class pair gap for close racing
	LappingSeconds float64 // blue-flag pair gap for lapping traffic

	// Flag timers
	YellowSpeedMS        float64 // below this a car is considered slow on track
	YellowStickySeconds  float64 // hold yellow after the car recovers
	PitHighlightSeconds  float64 // keep reporting the finished pit time (negated)
	GreenFlagSeconds     float64 // cap on start-lights display after lights out
	BlueFlagRaceOnly     bool
	TrafficMaxGapSeconds float64
	TrafficPitoutSeconds float64
	TrafficLowSpeedMS    float64

	// Stint tracking
	MinStintSeconds    float64 // shorter stints never reach history
	MinPitstopSeconds  float64 // stationary time that counts as a pit stop
	MinTyreTempC       float64 // carcass temp gate for countable laps
	StintHistorySize   int
	LapHistorySize     int
	PauseGapSeconds    float64 // elapsed-time jump treated as a game pause
}

// DefaultThresholds returns the stock tuning. Values stored in the
// settings database override these at startup.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BattleSeconds:        1.0,
		CloseSeconds:         2.0,
		LappingSeconds:       3.0,
		YellowSpeedMS:        8.0,
		YellowStickySeconds:  5.0,
		PitHighlightSeconds:  10.0,
		GreenFlagSeconds:     3.0,
		BlueFlagRaceOnly:     true,
		TrafficMaxGapSeconds: 5.0,
		TrafficPitoutSeconds: 8.0,
		TrafficLowSpeedMS:    8.0,
		MinStintSeconds:      300.0,
		MinPitstopSeconds:    10.0,
		MinTyreTempC:         60.0,
		StintHistorySize:     4,
		LapHistorySize:       10,
		PauseGapSeconds:      4.0,
	}
}

// threshold rows are stored by name; unknown names in the table are
// ignored so old databases keep working after a rename.
func (t *Thresholds) apply(name string, value float64) {
	switch name {
	case "battle_seconds":
		t.BattleSeconds = value
	case "close_seconds":
		t.CloseSeconds = value
	case "lapping_seconds":
		t.LappingSeconds = value
	case "yellow_speed_ms":
		t.YellowSpeedMS = value
	case "yellow_sticky_seconds":
		t.YellowStickySeconds = value
	case "pit_highlight_seconds":
		t.PitHighlightSeconds = value
	case "green_flag_seconds":
		t.GreenFlagSeconds = value
	case "blue_flag_race_only":
		t.BlueFlagRaceOnly = value != 0
	case "traffic_max_gap_seconds":
		t.TrafficMaxGapSeconds = value
	case "traffic_pitout_seconds":
		t.TrafficPitoutSeconds = value
	case "traffic_low_speed_ms":
		t.TrafficLowSpeedMS = value
	case "min_stint_seconds":
		t.MinStintSeconds = value
	case "min_pitstop_seconds":
		t.MinPitstopSeconds = value
	case "min_tyre_temp_c":
		t.MinTyreTempC = value
	case "stint_history_size":
		t.StintHistorySize = int(value)
	case "lap_history_size":
		t.LapHistorySize = int(value)
	case "pause_gap_seconds":
		t.PauseGapSeconds = value
	}
}
