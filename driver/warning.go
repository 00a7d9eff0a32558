package driver

import "sync"

// SQLStateWarning is the SQLSTATE of advisory warnings.
const SQLStateWarning = "01000"

// Warning is an advisory condition. Next links to the previous (older)
// warning.
type Warning struct {
	Message  string
	SQLState string
	Next     *Warning
}

func (w *Warning) String() string {
	return w.SQLState + ": " + w.Message
}

// warningChain is a newest-first list of warnings.
type warningChain struct {
	mu   sync.Mutex
	head *Warning
}

func (c *warningChain) add(msg, state string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = &Warning{Message: msg, SQLState: state, Next: c.head}
}

func (c *warningChain) get() *Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.head
}

func (c *warningChain) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.head = nil
}
