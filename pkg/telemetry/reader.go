package telemetry

import "github.com/estianp/TinyPedalBroadcast/pkg/model"

// Reader is the narrow query interface the spotter engine consumes: the
// freshest full snapshot of the feed, or ok=false when no live data is
// available this tick. Implementations own all blocking I/O; Frame must
// never block.
type Reader interface {
	Frame() (model.Frame, bool)
}
