package timeline

import (
	"sort"
	"time"

	appLog "careerline/internal/log"
	"careerline/internal/model"
)

// ContiguityThreshold is the largest gap between two same-label events that
// still merges them into one band.
const ContiguityThreshold = 30 * 24 * time.Hour

// Merge sorts events by start (stable) and folds each run of same-label
// events whose gap to the run so far is at most threshold into one
// MergedEvent. A non-positive threshold means ContiguityThreshold.
// Whole days of threshold are counted on the calendar, so a DST change
// inside the gap does not push an exact 30-day gap over the limit.
//
// The input slice is not modified.
func Merge(events []model.Event, threshold time.Duration) []model.MergedEvent {
	if threshold <= 0 {
		threshold = ContiguityThreshold
	}

	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	out := make([]model.MergedEvent, 0, len(sorted))
	var cur *model.MergedEvent

	for _, ev := range sorted {
		if cur != nil && cur.Label == ev.Label && !ev.Start.After(gapLimit(cur.End, threshold)) {
			if ev.End.After(cur.End) {
				cur.End = ev.End
			}
			cur.SubItems = append(cur.SubItems, ev)
			appLog.Debug("timeline: merged event", "label", ev.Label, "segments", len(cur.SubItems))
			continue
		}
		if cur != nil {
			out = append(out, *cur)
		}
		m := model.Single(ev)
		cur = &m
	}
	if cur != nil {
		out = append(out, *cur)
	}

	return out
}

// Wrap turns each event into an unmerged band, keeping source order.
func Wrap(events []model.Event) []model.MergedEvent {
	out := make([]model.MergedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, model.Single(ev))
	}
	return out
}

// gapLimit is the latest start that still continues a run ending at end.
func gapLimit(end time.Time, threshold time.Duration) time.Time {
	days := int(threshold / (24 * time.Hour))
	return end.AddDate(0, 0, days).Add(threshold % (24 * time.Hour))
}
