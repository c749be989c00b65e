package payment

import (
	"context"
	"errors"
	"sync"
)

// ScriptedGateway resolves each Collect call from a queue of prepared
// outcomes. It backs tests and dry runs where no real gateway is wanted.
type ScriptedGateway struct {
	mu       sync.Mutex
	queue    []resolution
	Sessions []Session
}

func (g *ScriptedGateway) EnqueuePaid(c Confirmation) {
	g.enqueue(resolution{result: Result{Outcome: OutcomePaid, Confirmation: c}})
}

func (g *ScriptedGateway) EnqueueDismissed() {
	g.enqueue(resolution{result: Result{Outcome: OutcomeDismissed}})
}

func (g *ScriptedGateway) EnqueueError(err error) {
	g.enqueue(resolution{err: err})
}

func (g *ScriptedGateway) enqueue(r resolution) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queue = append(g.queue, r)
}

func (g *ScriptedGateway) Collect(_ context.Context, session Session, _ Prefill) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Sessions = append(g.Sessions, session)
	if len(g.queue) == 0 {
		return Result{}, errors.New("scripted gateway: no outcome queued")
	}
	next := g.queue[0]
	g.queue = g.queue[1:]
	return next.result, next.err
}
