package scan

import "sync"

// Cell is a notify-on-change container for the scan state. The machine is
// the only writer; any number of readers may take a snapshot at any time,
// and subscribers observe every write. The last write is always the
// visible value.
type Cell struct {
	mu     sync.RWMutex
	value  State
	subs   map[int]func(State)
	nextID int
}

// NewCell creates a cell holding Idle.
func NewCell() *Cell {
	return &Cell{
		value: Idle{},
		subs:  make(map[int]func(State)),
	}
}

// Get returns a snapshot of the current state.
func (c *Cell) Get() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores a new state and notifies every subscriber with it.
func (c *Cell) Set(s State) {
	c.mu.Lock()
	c.value = s
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	// Notify outside the lock so a subscriber may read the cell.
	for _, fn := range subs {
		fn(s)
	}
}

// Subscribe registers fn to be called after every write. The returned
// function cancels the subscription.
func (c *Cell) Subscribe(fn func(State)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}
