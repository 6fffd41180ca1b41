package spotter

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/estianp/TinyPedalBroadcast/pkg/compound"
	"github.com/estianp/TinyPedalBroadcast/pkg/laptime"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/proximity"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/raceflag"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
	"github.com/estianp/TinyPedalBroadcast/pkg/stint"
	"github.com/estianp/TinyPedalBroadcast/pkg/telemetry"
)

// NoFocus means no vehicle is spectated: gaps are zero and the flag
// panel stays inactive.
const NoFocus = -1

// Manager drives the whole derivation engine: once per tick it pulls a
// frame from the reader, runs the yellow-sticky pass, the proximity
// classifier, the focused vehicle's flag timers and every vehicle's
// stint tracker, then publishes the derived state. All engine state is
// owned here and touched only under mu; the tick work itself does no
// I/O.
type Manager struct {
	ctx        context.Context
	mu         sync.Mutex
	cfg        settings.Thresholds
	reader     telemetry.Reader
	compounds  *compound.Lookup
	serverName string
	serverID   string

	classifier *proximity.Classifier
	yellow     *raceflag.YellowSticky
	pit        *raceflag.PitTimer
	blue       *raceflag.BlueFlagTimer
	traffic    *raceflag.TrafficTimer
	green      *raceflag.GreenFlagTimer

	// keyed by slot ID; roster indices are not stable across ticks
	trackers map[int]*stint.Tracker

	focusSlot       int
	lastSessionType string
	hadData         bool
	state           model.SpotterState
}

func NewManager(ctx context.Context, reader telemetry.Reader, cfg settings.Thresholds, compounds *compound.Lookup, serverName, serverID string) *Manager {
	return &Manager{
		ctx:        ctx,
		cfg:        cfg,
		reader:     reader,
		compounds:  compounds,
		serverName: serverName,
		serverID:   serverID,
		classifier: proximity.NewClassifier(cfg),
		yellow:     raceflag.NewYellowSticky(cfg.YellowSpeedMS, cfg.YellowStickySeconds),
		pit:        raceflag.NewPitTimer(cfg.PitHighlightSeconds),
		blue:       raceflag.NewBlueFlagTimer(cfg.BlueFlagRaceOnly),
		traffic:    raceflag.NewTrafficTimer(cfg.TrafficMaxGapSeconds, cfg.TrafficPitoutSeconds, cfg.TrafficLowSpeedMS),
		green:      raceflag.NewGreenFlagTimer(cfg.GreenFlagSeconds),
		trackers:   make(map[int]*stint.Tracker),
		focusSlot:  NoFocus,
		state:      model.SpotterState{ServerName: serverName, ServerID: serverID, FocusSlot: NoFocus},
	}
}

// Sync runs the tick loop until exitChan closes.
func (m *Manager) Sync(ticker *time.Ticker, exitChan chan bool) {
	m.doTick()
	go func() {
		for {
			select {
			case <-exitChan:
				return
			case <-m.ctx.Done():
				return
			case <-ticker.C:
				m.doTick()
			}
		}
	}()
}

func (m *Manager) doTick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	frame, ok := m.reader.Frame()
	if !ok {
		if m.hadData {
			log.Printf("Feed lost for %s, resetting timers", m.serverName)
			m.resetTimers()
			m.hadData = false
			m.state.Rows = nil
			m.state.Flags = inactivePanel()
		}
		return
	}
	m.hadData = true

	if frame.Session.SessionType != m.lastSessionType {
		if m.lastSessionType != "" {
			log.Printf("New session on %s: %s", m.serverName, frame.Session.SessionType)
		}
		m.lastSessionType = frame.Session.SessionType
		m.resetTimers()
		m.trackers = make(map[int]*stint.Tracker)
		pubsub.SessionStartedPubSub.Publish(pubsub.PubSubSessionStartedPreffix+m.serverID, model.SessionStarted{
			ServerName:  m.serverName,
			ServerID:    m.serverID,
			SessionType: frame.Session.SessionType,
		})
	}

	session := frame.Session
	roster := frame.Vehicles

	// sticky yellow pass, before classification
	for i := range roster {
		v := &roster[i]
		v.IsYellow = m.yellow.Update(v.SlotID, v.SpeedMS, v.InPits || v.InGarage, session.ElapsedTime)
	}

	refIndex := m.rosterIndexOf(roster, m.focusSlot)
	result := m.classifier.Classify(roster, refIndex, session.LapTimeEstimate)

	rows := make([]model.SpotterRow, len(roster))
	for i, v := range roster {
		rows[i] = model.SpotterRow{
			SlotID:        v.SlotID,
			DriverName:    v.DriverName,
			ClassName:     v.ClassName,
			Place:         v.Place,
			ClassPosition: result.ClassPositions[i],
			RelativeGap:   result.Gaps[i],
			InPits:        v.InPits || v.InGarage,
			IsYellow:      v.IsYellow,
			IsBlue:        v.IsBlue,
			InBattle:      result.Battle[v.SlotID],
			IsClose:       result.Close[v.SlotID],
			IsLapping:     result.Lapping[v.SlotID],
		}
	}

	m.state = model.SpotterState{
		ServerName: m.serverName,
		ServerID:   m.serverID,
		FocusSlot:  m.focusSlot,
		Rows:       rows,
		Flags:      m.updateFlags(session, roster, refIndex),
	}

	m.tickTrackers(session, roster)

	pubsub.SpotterStatePubSub.Publish(pubsub.PubSubSpotterStatePreffix+m.serverID, m.state)
}

func (m *Manager) updateFlags(session model.SessionSample, roster []model.VehicleSample, refIndex int) model.FlagPanel {
	panel := inactivePanel()
	panel.Green = m.green.Update(session.StartLights, session.ElapsedTime)
	if refIndex < 0 || refIndex >= len(roster) {
		return panel
	}
	focus := roster[refIndex]

	// a car in pits and garage at once sees a closed pit box; the timer
	// is bypassed, not updated
	if focus.InPits && focus.InGarage {
		panel.PitClosed = true
	} else {
		panel.Pit = m.pit.Update(focus.InPits, session.ElapsedTime)
	}
	panel.Blue = m.blue.Update(session.InRace, session.BlueFlag, session.ElapsedTime)
	nearest := nearestTraffic(roster, refIndex, session.LapTimeEstimate)
	panel.Traffic = m.traffic.Update(focus.InPits, focus.SpeedMS, nearest, session.ElapsedTime)
	return panel
}

// nearestTraffic returns the smallest time gap to an on-track car
// approaching from behind the focused vehicle, or the Inactive sentinel.
func nearestTraffic(roster []model.VehicleSample, refIndex int, lapTime float64) float64 {
	if lapTime <= 0 {
		return raceflag.Inactive
	}
	nearest := raceflag.Inactive
	refTime := roster[refIndex].TimeIntoLap
	for i, v := range roster {
		if i == refIndex || v.InPits || v.InGarage {
			continue
		}
		gap := laptime.WrapDelta(v.TimeIntoLap, refTime, lapTime)
		if gap < 0 && -gap < nearest {
			nearest = -gap
		}
	}
	return nearest
}

func (m *Manager) tickTrackers(session model.SessionSample, roster []model.VehicleSample) {
	seen := make(map[int]bool, len(roster))
	for _, v := range roster {
		seen[v.SlotID] = true
		tracker, ok := m.trackers[v.SlotID]
		if !ok {
			tracker = stint.NewTracker(m.cfg)
			m.trackers[v.SlotID] = tracker
		}
		closed := tracker.Tick(stint.Sample{
			LapStartTime:   v.LapStartET,
			LapNumber:      v.LapNumber,
			ElapsedTime:    session.ElapsedTime,
			InPits:         v.InPits,
			InGarage:       v.InGarage,
			PreRace:        session.PreRace,
			SpeedMS:        v.SpeedMS,
			WearAvg:        v.WearAvg(),
			FuelCurrent:    v.FuelRemaining,
			EnergyCurrent:  v.EnergyRemaining,
			MaxCarcassTemp: v.MaxCarcassTemp(),
			CompoundLabel:  m.compounds.Label(v.ClassName, v.TyreCompound),
		})
		if closed {
			record := tracker.History()[0]
			pubsub.StintClosedPubSub.Publish(pubsub.PubSubStintClosedPreffix+m.serverID, model.StintClosed{
				ServerName: m.serverName,
				ServerID:   m.serverID,
				SlotID:     v.SlotID,
				DriverName: v.DriverName,
				Laps:       record.Laps,
				Time:       record.Time,
				Fuel:       record.Fuel,
				Compound:   record.Compound,
			})
		}
	}
	// cars that left the session take their trackers with them
	for slotID := range m.trackers {
		if !seen[slotID] {
			delete(m.trackers, slotID)
		}
	}
}

// State returns the latest published derived state.
func (m *Manager) State() model.SpotterState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StintFor returns the live stint record plus closed history for one
// vehicle, newest first.
func (m *Manager) StintFor(slotID int) (stint.Record, []stint.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tracker, ok := m.trackers[slotID]
	if !ok {
		return stint.Record{}, nil, false
	}
	return tracker.Current(), tracker.History(), true
}

// LapsFor returns one vehicle's completed lap records, newest first.
func (m *Manager) LapsFor(slotID int) ([]stint.LapRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tracker, ok := m.trackers[slotID]
	if !ok {
		return nil, false
	}
	return tracker.Laps(), true
}

func (m *Manager) rosterIndexOf(roster []model.VehicleSample, slotID int) int {
	if slotID == NoFocus {
		return -1
	}
	for i, v := range roster {
		if v.SlotID == slotID {
			return i
		}
	}
	return -1
}

func (m *Manager) resetTimers() {
	m.yellow.Reset()
	m.pit.Reset()
	m.blue.Reset()
	m.traffic.Reset()
	m.green.Reset()
}

func inactivePanel() model.FlagPanel {
	return model.FlagPanel{
		Pit:     raceflag.Inactive,
		Blue:    raceflag.Inactive,
		Traffic: raceflag.Inactive,
		Green:   -1,
	}
}
