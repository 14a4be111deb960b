package ics

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "careerline/internal/log"
	"careerline/internal/model"
)

const productID = "-//careerline//timeline//EN"

// ExportOptions controls Export.
type ExportOptions struct {
	// Skip lists section titles (case-insensitive) left out of the feed,
	// typically the overlay section whose items are ongoing channels
	// rather than tenures.
	Skip []string
	// Stamp is DTSTAMP for every event. Defaults to time.Now().
	Stamp time.Time
}

// Export writes every event of every section as an all-day VEVENT.
// DTEND is exclusive, as iCalendar requires for VALUE=DATE.
func Export(sections []model.Section, opts ExportOptions) string {
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	count := 0
	for _, sec := range sections {
		if skipped(sec.Title, opts.Skip) {
			continue
		}
		for _, ev := range sec.Items {
			vev := cal.AddEvent(eventUID(sec.Title, ev))
			vev.SetDtStampTime(opts.Stamp)
			vev.SetSummary(summary(ev))
			vev.SetAllDayStartAt(ev.Start)
			vev.SetAllDayEndAt(ev.End.AddDate(0, 0, 1))
			vev.SetProperty(ical.ComponentPropertyCategories, sec.Title)
			if ev.Icon != "" {
				vev.SetDescription("icon: " + ev.Icon)
			}
			count++
		}
	}

	appLog.Debug("ics: export built", "events", count)
	return cal.Serialize()
}

func skipped(title string, skip []string) bool {
	for _, s := range skip {
		if strings.EqualFold(title, s) {
			return true
		}
	}
	return false
}

func summary(ev model.Event) string {
	if ev.Title == "" {
		return ev.Label
	}
	return ev.Label + " - " + ev.Title
}

// eventUID is stable across refreshes as long as the line's section, label,
// title and start do not change.
func eventUID(section string, ev model.Event) string {
	h := sha256.New()
	for _, part := range []string{section, ev.Label, ev.Title, ev.Start.Format("2006-01")} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:12]) + "@careerline"
}
