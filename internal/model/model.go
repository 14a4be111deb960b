package model

import "time"

// Section is one "## Title" block of the timeline source, in source order.
type Section struct {
	Title string
	Items []Event
}

// Event is a single item line of a section.
//
// Start and End are month-precision points; an open-ended ("Present") end is
// resolved to the parse-time clock. Parsing guarantees !End.Before(Start).
type Event struct {
	Label string
	// Title is the optional sub-title of the extended item form; empty means none.
	Title string

	Start time.Time
	End   time.Time

	// Icon is an optional icon reference (glyph name or image path); empty means none.
	Icon string
}

// Duration returns End - Start.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// MergedEvent is a run of same-label events drawn as one continuous band.
// Sections that do not merge wrap each event in a MergedEvent with a single
// sub-item.
type MergedEvent struct {
	Label string
	Start time.Time
	End   time.Time

	// SubItems are sorted by Start and share Label. Always at least one.
	SubItems []Event
}

// Single wraps one event as an unmerged band.
func Single(e Event) MergedEvent {
	return MergedEvent{
		Label:    e.Label,
		Start:    e.Start,
		End:      e.End,
		SubItems: []Event{e},
	}
}

// IsMerged reports whether the band has segment seams to draw.
func (m MergedEvent) IsMerged() bool {
	return len(m.SubItems) > 1
}

// First returns the earliest sub-item.
func (m MergedEvent) First() Event {
	return m.SubItems[0]
}

func (e Event) Interval() (time.Time, time.Time) {
	return e.Start, e.End
}

func (m MergedEvent) Interval() (time.Time, time.Time) {
	return m.Start, m.End
}
