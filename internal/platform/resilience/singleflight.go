package resilience

import "sync"

// SingleFlight collapses concurrent calls that share a key into one
// execution. The orchestrator keys flights by logical match so a details view
// reopened mid-fetch awaits the in-progress aggregation instead of issuing a
// second set of provider calls.
type SingleFlight struct {
	mu     sync.Mutex
	active map[string]*flight
}

type flight struct {
	done  chan struct{}
	value any
	err   error
}

// Do runs fn once per key among concurrent callers. The boolean reports
// whether the result was shared from another caller's execution.
func (g *SingleFlight) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.active == nil {
		g.active = make(map[string]*flight)
	}

	if f, ok := g.active[key]; ok {
		g.mu.Unlock()
		<-f.done
		return f.value, f.err, true
	}

	f := &flight{done: make(chan struct{})}
	g.active[key] = f
	g.mu.Unlock()

	f.value, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.active, key)
	g.mu.Unlock()

	return f.value, f.err, false
}
