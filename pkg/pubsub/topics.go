package pubsub

import "github.com/estianp/TinyPedalBroadcast/pkg/model"

const (
	PubSubSpotterStatePreffix   = "spotterState-"
	PubSubStintClosedPreffix    = "stintClosed-"
	PubSubSessionStartedPreffix = "sessionStarted-"
)

var (
	SpotterStatePubSub   = NewPubSub[model.SpotterState]()
	StintClosedPubSub    = NewPubSub[model.StintClosed]()
	SessionStartedPubSub = NewPubSub[model.SessionStarted]()
)
