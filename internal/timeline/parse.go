package timeline

import (
	"strconv"
	"strings"
	"time"

	appLog "careerline/internal/log"
	"careerline/internal/model"
)

const (
	sectionMarker  = "## "
	itemMarker     = "- "
	fieldDelimiter = "|"
	presentKeyword = "present"
)

// Parser turns timeline source text into sections.
type Parser struct {
	// Now resolves "Present" end dates. Defaults to time.Now.
	Now func() time.Time
	// Location is used for "YEAR-MONTH" dates. Defaults to time.Local.
	Location *time.Location
}

// Parse is shorthand for a zero-value Parser.
func Parse(text string) []model.Section {
	return Parser{}.Parse(text)
}

// Parse reads text line by line:
//
//   - "## Title" opens a new section.
//   - "- a | b | c | d[ | e ...]" adds an event to the open section.
//
// Everything else, item lines before the first section and item lines with
// fewer than four fields or unreadable dates included, is ignored.
func (p Parser) Parse(text string) []model.Section {
	text = strings.TrimPrefix(text, byteOrderMark)
	if text == "" {
		return nil
	}
	now := p.now()

	var sections []model.Section
	dropped := 0
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, sectionMarker):
			sections = append(sections, model.Section{
				Title: strings.TrimSpace(strings.TrimPrefix(line, sectionMarker)),
			})

		case strings.HasPrefix(line, itemMarker) && len(sections) > 0:
			rec, ok := decodeRecord(splitFields(strings.TrimPrefix(line, itemMarker)))
			if !ok {
				dropped++
				appLog.Debug("timeline: dropped item line", "line", line, "reason", "field count")
				continue
			}
			ev, err := rec.event(now, p.location())
			if err != nil {
				dropped++
				appLog.Debug("timeline: dropped item line", "line", line, "reason", err)
				continue
			}
			cur := &sections[len(sections)-1]
			cur.Items = append(cur.Items, ev)
		}
	}

	appLog.Debug("timeline: parse completed", "sections", len(sections), "dropped", dropped)
	return sections
}

// byteOrderMark is left at the start of text by some editors and servers.
const byteOrderMark = "\ufeff"

func (p Parser) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Parser) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func splitFields(body string) []string {
	parts := strings.Split(body, fieldDelimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// record is one decoded item line. Legacy lines have no title column.
type record interface {
	event(now time.Time, loc *time.Location) (model.Event, error)
}

// legacyRecord: label | start | end | icon
type legacyRecord struct {
	label, start, end, icon string
}

func (r legacyRecord) event(now time.Time, loc *time.Location) (model.Event, error) {
	return buildEvent(r.label, "", r.start, r.end, r.icon, now, loc)
}

// extendedRecord: label | title | start | end | icon [| ignored ...]
type extendedRecord struct {
	label, title, start, end, icon string
}

func (r extendedRecord) event(now time.Time, loc *time.Location) (model.Event, error) {
	return buildEvent(r.label, r.title, r.start, r.end, r.icon, now, loc)
}

func decodeRecord(parts []string) (record, bool) {
	switch {
	case len(parts) == 4:
		return legacyRecord{label: parts[0], start: parts[1], end: parts[2], icon: parts[3]}, true
	case len(parts) >= 5:
		return extendedRecord{label: parts[0], title: parts[1], start: parts[2], end: parts[3], icon: parts[4]}, true
	default:
		return nil, false
	}
}

func buildEvent(label, title, startText, endText, icon string, now time.Time, loc *time.Location) (model.Event, error) {
	start, err := ParseDate(startText, now, loc)
	if err != nil {
		return model.Event{}, err
	}
	end, err := ParseDate(endText, now, loc)
	if err != nil {
		return model.Event{}, err
	}
	if end.Before(start) {
		appLog.Debug("timeline: end before start, clamping to zero length", "label", label, "start", startText, "end", endText)
		end = start
	}

	return model.Event{
		Label: label,
		Title: title,
		Start: start,
		End:   end,
		Icon:  icon,
	}, nil
}

// ParseDate reads "YYYY-MM", "YYYY", "Present" or "" (the latter two mean now).
// The result is the first instant of that month in loc.
func ParseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, presentKeyword) {
		return now, nil
	}

	yearText, rest, _ := strings.Cut(s, "-")
	// Day precision is not kept: "2019-10-15" reads as 2019-10.
	monthText, _, _ := strings.Cut(rest, "-")
	year, err := strconv.Atoi(yearText)
	if err != nil {
		return time.Time{}, &DateError{Text: s}
	}
	month := 1
	if monthText != "" {
		m, err := strconv.Atoi(monthText)
		if err != nil {
			return time.Time{}, &DateError{Text: s}
		}
		if m != 0 {
			month = m
		}
	}

	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc), nil
}

// DateError reports a date field that is neither "YYYY[-MM]" nor "Present".
type DateError struct {
	Text string
}

func (e *DateError) Error() string {
	return "unreadable date " + strconv.Quote(e.Text)
}
