// Package tracker recomputes the footprint whenever telemetry changes and
// publishes the result to live clients and the status lamps.
package tracker

import (
	"context"

	"github.com/cjeanneret/FootprintGo/internal/debug"
	"github.com/cjeanneret/FootprintGo/internal/logic/projection"
	"github.com/cjeanneret/FootprintGo/internal/telemetry"
)

// Computer computes one footprint.
type Computer interface {
	Compute(projection.Input) (projection.Result, error)
}

// Publisher delivers a message to live clients.
type Publisher interface {
	BroadcastJSON(v interface{}) error
}

// Indicator shows whether a footprint is available.
type Indicator interface {
	Show(hasProjection bool) error
}

// Tracker couples telemetry, engine and outputs.
type Tracker struct {
	engine Computer
	state  *telemetry.State
	out    Publisher
	lamp   Indicator
	notify chan struct{}
}

// New creates a tracker. lamp may be nil.
func New(engine Computer, state *telemetry.State, out Publisher, lamp Indicator) *Tracker {
	return &Tracker{
		engine: engine,
		state:  state,
		out:    out,
		lamp:   lamp,
		notify: make(chan struct{}, 1),
	}
}

// Notify schedules a recomputation. Notifications arriving while one is
// pending are merged, so a burst of telemetry costs one computation.
// It matches telemetry.Handler.
func (t *Tracker) Notify(telemetry.Kind) {
	select {
	case t.notify <- struct{}{}:
	default:
	}
}

// Run recomputes after every notification until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.notify:
			_, _ = t.Step()
		}
	}
}

// Step computes the footprint for the current telemetry snapshot and
// publishes it. A computation error is published as a message without
// projection and returned.
func (t *Tracker) Step() (projection.Message, error) {
	in := t.state.Snapshot().Input()

	var msg projection.Message
	res, err := t.engine.Compute(in)
	if err != nil {
		debug.Error(err)
		msg = projection.FaultMessage(in, err)
	} else {
		msg = projection.NewMessage(in, res)
	}
	debug.Footprint(msg.HasProjection, msg.Reason)

	if perr := t.out.BroadcastJSON(msg); perr != nil {
		debug.Error(perr)
	}
	if t.lamp != nil {
		if lerr := t.lamp.Show(msg.HasProjection); lerr != nil {
			debug.Error(lerr)
		}
	}
	return msg, err
}
