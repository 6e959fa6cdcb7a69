package notify

import "sync"

// Collector is a Dispatcher that records intents synchronously. Tests use
// it to assert on workflow fan-out without a running queue.
type Collector struct {
	mu      sync.Mutex
	intents []Intent
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Dispatch(intents ...Intent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents = append(c.intents, intents...)
}

// Intents returns a copy of everything dispatched so far
func (c *Collector) Intents() []Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Intent, len(c.intents))
	copy(out, c.intents)
	return out
}

// ByType returns dispatched intents matching the given type
func (c *Collector) ByType(t string) []Intent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Intent
	for _, intent := range c.intents {
		if string(intent.Type) == t {
			out = append(out, intent)
		}
	}
	return out
}

// Reset clears recorded intents
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.intents = nil
}
