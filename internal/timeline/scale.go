package timeline

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Window is the fixed [Min, Max) range every position is projected onto.
// It is the same for every section of a layout.
type Window struct {
	Min time.Time
	Max time.Time
}

// DefaultWindow spans 2014-01-01 to 2026-01-01.
func DefaultWindow(loc *time.Location) Window {
	return YearWindow(2014, 2026, loc)
}

// YearWindow spans Jan 1 of startYear to Jan 1 of endYear.
func YearWindow(startYear, endYear int, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	return Window{
		Min: time.Date(startYear, time.January, 1, 0, 0, 0, 0, loc),
		Max: time.Date(endYear, time.January, 1, 0, 0, 0, 0, loc),
	}
}

func (w Window) Validate() error {
	if !w.Max.After(w.Min) {
		return fmt.Errorf("timeline: window end %s is not after start %s", w.Max.Format("2006-01-02"), w.Min.Format("2006-01-02"))
	}
	return nil
}

// Project maps t affinely so that Min -> 0 and Max -> 1. Times outside the
// window land outside [0, 1]; nothing is clamped.
func (w Window) Project(t time.Time) float64 {
	total := w.Max.Sub(w.Min)
	return float64(t.Sub(w.Min)) / float64(total)
}

// Percent is Project scaled to 0..100.
func (w Window) Percent(t time.Time) float64 {
	return w.Project(t) * 100
}

// Tick is a year boundary on the axis.
type Tick struct {
	Year     int     `json:"year"`
	Position float64 `json:"position"` // percent
}

// Ticks returns one tick per January 1st inside [Min, Max].
func (w Window) Ticks() ([]Tick, error) {
	first := time.Date(w.Min.Year(), time.January, 1, 0, 0, 0, 0, w.Min.Location())
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.YEARLY,
		Dtstart: first,
		Until:   w.Max,
	})
	if err != nil {
		return nil, fmt.Errorf("timeline: axis rule: %w", err)
	}

	var ticks []Tick
	for _, t := range r.All() {
		pos := w.Percent(t)
		if pos < 0 || pos > 100 {
			continue
		}
		ticks = append(ticks, Tick{Year: t.Year(), Position: pos})
	}
	return ticks, nil
}
