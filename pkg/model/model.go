package model

import "fmt"

// VehicleSample is one vehicle's telemetry reading for the current tick.
// Samples are rebuilt from the feed every tick and never persisted.
//
// SlotID is stable for the whole session. The index of a sample inside
// Frame.Vehicles is NOT: cars reorder between ticks, so anything kept
// across ticks must be keyed by SlotID, never by roster index.
type VehicleSample struct {
	SlotID          int        `json:"slotID"`
	DriverName      string     `json:"driverName"`
	VehicleName     string     `json:"vehicleName"`
	ClassName       string     `json:"carClass"`
	Place           int        `json:"position"`
	InPits          bool       `json:"inPits"`
	InGarage        bool       `json:"inGarage"`
	SpeedMS         float64    `json:"speed"`
	IsBlue          bool       `json:"blueFlag"`
	IsYellow        bool       `json:"-"` // filled in by the spotter from the sticky timer, not by the feed
	TimeIntoLap     float64    `json:"timeIntoLap"`
	LapNumber       int        `json:"lapNumber"`
	LapStartET      float64    `json:"lapStartET"`
	BestLapTime     float64    `json:"bestLapTime"`
	LastLapTime     float64    `json:"lastLapTime"`
	FuelRemaining   float64    `json:"fuelRemaining"`
	EnergyRemaining float64    `json:"energyRemaining"`
	MaxEnergy       float64    `json:"maxEnergy"`
	TyreWear        [4]float64 `json:"tyreWear"`        // remaining tread fraction 0..1 per wheel
	TyreCarcassTemp [4]float64 `json:"tyreCarcassTemp"` // celsius per wheel
	TyreCompound    [4]string  `json:"tyreCompound"`
	FinishStatus    string     `json:"finishStatus"`
}

// WearAvg returns the averaged worn percentage across all four wheels.
func (v VehicleSample) WearAvg() float64 {
	sum := 0.0
	for _, w := range v.TyreWear {
		sum += w
	}
	return 100.0 - sum*25.0
}

// MaxCarcassTemp returns the hottest carcass temperature of the four wheels.
func (v VehicleSample) MaxCarcassTemp() float64 {
	max := v.TyreCarcassTemp[0]
	for _, t := range v.TyreCarcassTemp[1:] {
		if t > max {
			max = t
		}
	}
	return max
}

// SessionSample is the session-level telemetry reading for the current tick.
type SessionSample struct {
	ServerName      string  `json:"serverName"`
	ServerID        string  `json:"serverId"`
	SessionType     string  `json:"sessionType"`
	ElapsedTime     float64 `json:"elapsedTime"`
	LapTimeEstimate float64 `json:"lapTimeEstimate"` // <= 0 means unknown, disables lap-ring math
	InRace          bool    `json:"inRace"`
	PreRace         bool    `json:"preRace"`
	PitOpen         bool    `json:"pitOpen"`
	YellowFlag      bool    `json:"yellowFlag"`
	BlueFlag        bool    `json:"blueFlag"`
	StartLights     int     `json:"startLights"`
}

// Frame is a full per-tick snapshot of the feed: one session sample plus
// one vehicle sample per car currently in the session.
type Frame struct {
	Session  SessionSample   `json:"session"`
	Vehicles []VehicleSample `json:"vehicles"`
}

// SessionStarted is published when the feed reports a new session.
type SessionStarted struct {
	ServerName  string `json:"serverName"`
	ServerID    string `json:"serverId"`
	SessionType string `json:"sessionType"`
}

func (s SessionStarted) String() string {
	return fmt.Sprintf("%s (%s)", s.ServerName, s.SessionType)
}

// SpotterRow is one vehicle's derived situational state for consumers.
type SpotterRow struct {
	SlotID        int     `json:"slotID"`
	DriverName    string  `json:"driverName"`
	ClassName     string  `json:"carClass"`
	Place         int     `json:"position"`
	ClassPosition int     `json:"classPosition"`
	RelativeGap   float64 `json:"relativeGap"`
	InPits        bool    `json:"inPits"`
	IsYellow      bool    `json:"yellow"`
	IsBlue        bool    `json:"blue"`
	InBattle      bool    `json:"battle"`
	IsClose       bool    `json:"close"`
	IsLapping     bool    `json:"lapping"`
}

// FlagPanel carries the focused vehicle's debounced flag timer values.
// Pit, Blue and Traffic use the raceflag.Inactive sentinel when off;
// Green uses -1 (the start-lights timer keeps its own bypass value).
type FlagPanel struct {
	Pit       float64 `json:"pit"`
	PitClosed bool    `json:"pitClosed"`
	Blue      float64 `json:"blue"`
	Traffic   float64 `json:"traffic"`
	Green     int     `json:"green"`
}

// SpotterState is the full derived output of one spotter tick.
type SpotterState struct {
	ServerName string       `json:"serverName"`
	ServerID   string       `json:"serverId"`
	FocusSlot  int          `json:"focusSlot"` // -1 when spectating nobody
	Rows       []SpotterRow `json:"rows"`
	Flags      FlagPanel    `json:"flags"`
}

// StintClosed is published when a vehicle's stint tracker closes a record.
type StintClosed struct {
	ServerName string  `json:"serverName"`
	ServerID   string  `json:"serverId"`
	SlotID     int     `json:"slotID"`
	DriverName string  `json:"driverName"`
	Laps       int     `json:"laps"`
	Time       float64 `json:"time"`
	Fuel       float64 `json:"fuel"`
	Compound   string  `json:"compound"`
}
