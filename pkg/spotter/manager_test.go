package spotter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estianp/TinyPedalBroadcast/pkg/compound"
	"github.com/estianp/TinyPedalBroadcast/pkg/model"
	"github.com/estianp/TinyPedalBroadcast/pkg/pubsub"
	"github.com/estianp/TinyPedalBroadcast/pkg/raceflag"
	"github.com/estianp/TinyPedalBroadcast/pkg/settings"
)

type fakeReader struct {
	frame model.Frame
	ok    bool
}

func (f *fakeReader) Frame() (model.Frame, bool) {
	return f.frame, f.ok
}

func testFrame(elapsed float64) model.Frame {
	return model.Frame{
		Session: model.SessionSample{
			SessionType:     "race1",
			ElapsedTime:     elapsed,
			LapTimeEstimate: 90,
			InRace:          true,
		},
		Vehicles: []model.VehicleSample{
			{SlotID: 1, DriverName: "Alpha", ClassName: "GT3", Place: 1, SpeedMS: 60, TimeIntoLap: 30.0, FuelRemaining: 50, TyreCarcassTemp: [4]float64{80, 80, 80, 80}},
			{SlotID: 2, DriverName: "Beta", ClassName: "GT3", Place: 2, SpeedMS: 60, TimeIntoLap: 30.6, FuelRemaining: 50, TyreCarcassTemp: [4]float64{80, 80, 80, 80}},
			{SlotID: 3, DriverName: "Gamma", ClassName: "LMP2", Place: 3, SpeedMS: 60, TimeIntoLap: 60.0, FuelRemaining: 50, TyreCarcassTemp: [4]float64{80, 80, 80, 80}},
		},
	}
}

func newTestManager(reader *fakeReader, serverID string) *Manager {
	return NewManager(context.Background(), reader, settings.DefaultThresholds(),
		compound.NewLookup(nil), "Test Server", serverID)
}

func TestManagerDerivesState(t *testing.T) {
	reader := &fakeReader{frame: testFrame(100), ok: true}
	m := newTestManager(reader, "srv-derive")

	m.doTick()
	state := m.State()

	require.Len(t, state.Rows, 3)
	assert.Equal(t, NoFocus, state.FocusSlot)

	t.Run("same class pair battles", func(t *testing.T) {
		assert.True(t, state.Rows[0].InBattle)
		assert.True(t, state.Rows[1].InBattle)
		assert.False(t, state.Rows[2].InBattle)
	})

	t.Run("class positions per class", func(t *testing.T) {
		assert.Equal(t, 1, state.Rows[0].ClassPosition)
		assert.Equal(t, 2, state.Rows[1].ClassPosition)
		assert.Equal(t, 1, state.Rows[2].ClassPosition)
	})

	t.Run("flag panel inactive without focus", func(t *testing.T) {
		assert.Equal(t, raceflag.Inactive, state.Flags.Pit)
		assert.Equal(t, raceflag.Inactive, state.Flags.Blue)
		assert.Equal(t, -1, state.Flags.Green)
	})

	t.Run("gaps follow the focused vehicle", func(t *testing.T) {
		m.SetFocus(1)
		m.doTick()
		rows := m.State().Rows
		assert.Zero(t, rows[0].RelativeGap)
		assert.InDelta(t, 0.6, rows[1].RelativeGap, 1e-9)
		assert.InDelta(t, 30.0, rows[2].RelativeGap, 1e-9)
	})
}

func TestManagerFocusCycling(t *testing.T) {
	reader := &fakeReader{frame: testFrame(100), ok: true}
	m := newTestManager(reader, "srv-focus")
	m.doTick()

	assert.Equal(t, 1, m.FocusNext(), "first next picks the leader")
	assert.Equal(t, 2, m.FocusNext())
	assert.Equal(t, 3, m.FocusNext())
	assert.Equal(t, NoFocus, m.FocusNext(), "past last wraps to nobody")
	assert.Equal(t, 3, m.FocusPrevious(), "previous from nobody picks the tail")
	assert.Equal(t, 2, m.FocusPrevious())
	assert.Equal(t, 1, m.FocusPrevious())
	assert.Equal(t, NoFocus, m.FocusPrevious())
}

func TestManagerPublishesStintClose(t *testing.T) {
	reader := &fakeReader{frame: testFrame(0), ok: true}
	m := newTestManager(reader, "srv-close")
	closedChan := pubsub.StintClosedPubSub.Subscribe(pubsub.PubSubStintClosedPreffix + "srv-close")

	// run a long stint in small elapsed steps, then send car 1 to the garage
	for e := 0.0; e <= 400; e += 2 {
		frame := testFrame(e)
		frame.Vehicles[0].LapNumber = int(e / 90)
		frame.Vehicles[0].LapStartET = float64(int(e/90)) * 90
		reader.frame = frame
		m.doTick()
	}
	frame := testFrame(402)
	frame.Vehicles[0].LapNumber = 4
	frame.Vehicles[0].LapStartET = 360
	frame.Vehicles[0].InPits = true
	frame.Vehicles[0].InGarage = true
	reader.frame = frame
	m.doTick()

	select {
	case event := <-closedChan:
		assert.Equal(t, 1, event.SlotID)
		assert.Equal(t, "Alpha", event.DriverName)
		assert.Equal(t, 4, event.Laps)
	default:
		t.Fatal("expected a stint close event")
	}
}

func TestManagerFeedLossClearsState(t *testing.T) {
	reader := &fakeReader{frame: testFrame(100), ok: true}
	m := newTestManager(reader, "srv-loss")
	m.doTick()
	require.NotEmpty(t, m.State().Rows)

	reader.ok = false
	m.doTick()
	assert.Empty(t, m.State().Rows)
	assert.Equal(t, raceflag.Inactive, m.State().Flags.Pit)
}
