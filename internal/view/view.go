// Package view holds presentation state that outlives a single render.
package view

import "sync"

// Trigger values that flip the stats overlay.
const (
	ToggleKeyLower = "s"
	ToggleKeyUpper = "S"
	ToggleMessage  = "toggle-stats"
)

// Controller owns the stats visibility flag. Two independent channels, a key
// press and a cross-window message, both flip the same flag; neither carries
// parameters and they need no ordering between them.
type Controller struct {
	mu        sync.Mutex
	showStats bool
}

// Toggle flips the flag and returns the new state.
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showStats = !c.showStats
	return c.showStats
}

// ShowStats reports the current state.
func (c *Controller) ShowStats() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showStats
}

// HandleKey toggles on "s" or "S" and reports whether the key was consumed.
func (c *Controller) HandleKey(key string) bool {
	if key != ToggleKeyLower && key != ToggleKeyUpper {
		return false
	}
	c.Toggle()
	return true
}

// HandleMessage toggles on the "toggle-stats" sentinel.
func (c *Controller) HandleMessage(msg string) bool {
	if msg != ToggleMessage {
		return false
	}
	c.Toggle()
	return true
}

// BodyClass is the class attribute for the page body.
func (c *Controller) BodyClass() string {
	if c.ShowStats() {
		return "show-stats"
	}
	return ""
}
