package view

import (
	"sync"
	"testing"
)

func TestTriggers(t *testing.T) {
	tests := []struct {
		name     string
		fire     func(*Controller) bool
		consumed bool
	}{
		{"lower key", func(c *Controller) bool { return c.HandleKey("s") }, true},
		{"upper key", func(c *Controller) bool { return c.HandleKey("S") }, true},
		{"other key", func(c *Controller) bool { return c.HandleKey("x") }, false},
		{"message", func(c *Controller) bool { return c.HandleMessage("toggle-stats") }, true},
		{"other message", func(c *Controller) bool { return c.HandleMessage("toggle") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Controller
			if got := tt.fire(&c); got != tt.consumed {
				t.Fatalf("consumed = %v, want %v", got, tt.consumed)
			}
			if c.ShowStats() != tt.consumed {
				t.Errorf("ShowStats = %v after trigger", c.ShowStats())
			}
		})
	}
}

func TestChannelsShareState(t *testing.T) {
	var c Controller
	c.HandleKey("s")
	c.HandleMessage("toggle-stats")
	if c.ShowStats() {
		t.Error("key then message should cancel out")
	}
	if c.BodyClass() != "" {
		t.Errorf("body class = %q", c.BodyClass())
	}
	c.Toggle()
	if c.BodyClass() != "show-stats" {
		t.Errorf("body class = %q", c.BodyClass())
	}
}

func TestConcurrentToggles(t *testing.T) {
	var c Controller
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				c.HandleKey("s")
			} else {
				c.HandleMessage("toggle-stats")
			}
		}(i)
	}
	wg.Wait()
	if c.ShowStats() {
		t.Error("an even number of toggles should leave stats hidden")
	}
}
