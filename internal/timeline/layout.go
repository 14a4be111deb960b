package timeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"careerline/internal/icon"
	appLog "careerline/internal/log"
	"careerline/internal/model"
)

const (
	avgMonth = time.Duration(30.44 * 24 * float64(time.Hour))

	// trackPadding is added below the last row of every track.
	trackPadding = 20

	socialBottom = 35
	mediaBottom  = 25
)

// Options controls how sections become a Layout.
type Options struct {
	Window Window

	// OverlaySection is the section title (case-insensitive) drawn as point
	// icons above the axis instead of as bands.
	OverlaySection string
	// MergeSections lists section slugs whose same-label runs are merged.
	MergeSections []string
	// MergeGap overrides ContiguityThreshold when positive.
	MergeGap time.Duration

	// ShortItem marks bars shorter than this with ClassShort.
	ShortItem time.Duration
	// MinWidth is the smallest bar width, in percent of the window.
	MinWidth float64

	RowHeight        int
	ItemHeight       int
	MergedRowHeight  int
	MergedItemHeight int

	// Now decides which end dates read as "Present". Defaults to time.Now().
	Now time.Time
}

// DefaultOptions returns the stock career timeline settings.
func DefaultOptions(loc *time.Location) Options {
	return Options{
		Window:           DefaultWindow(loc),
		OverlaySection:   "content",
		MergeSections:    []string{"career"},
		MergeGap:         ContiguityThreshold,
		ShortItem:        18 * avgMonth,
		MinWidth:         0.5,
		RowHeight:        50,
		ItemHeight:       40,
		MergedRowHeight:  100,
		MergedItemHeight: 80,
	}
}

// Bar classes consumed by the view layer.
const (
	ClassItem        = "timeline-item"
	ClassShort       = "short-item"
	ClassMerged      = "merged-item"
	ClassMergeStart  = "merge-start"
	ClassMergeMiddle = "merge-middle"
	ClassMergeEnd    = "merge-end"
	ClassSocial      = "type-social"
	ClassMedia       = "type-media"
)

// Layout is the drawable tree for one render pass.
type Layout struct {
	Window  Window   `json:"-"`
	Ticks   []Tick   `json:"ticks"`
	Overlay *Overlay `json:"overlay,omitempty"`
	Tracks  []Track  `json:"tracks"`
}

// Empty reports whether there is nothing to draw.
func (l Layout) Empty() bool {
	return l.Overlay == nil && len(l.Tracks) == 0 && len(l.Ticks) == 0
}

// Icon is a resolved icon reference.
type Icon struct {
	Ref  string    `json:"ref"`
	Kind icon.Kind `json:"kind"`
	// Class is the glyph class attribute; empty for images.
	Class string `json:"class,omitempty"`
	Alt   string `json:"alt"`
}

// Overlay holds the point markers drawn on top of the axis.
type Overlay struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Point is a start-only marker; it has a position but no width.
type Point struct {
	Label    string    `json:"label"`
	Start    time.Time `json:"start"`
	Position float64   `json:"position"` // percent
	Bottom   int       `json:"bottom"`   // px
	Class    string    `json:"class"`
	Icon     *Icon     `json:"icon,omitempty"`
	Tooltip  string    `json:"tooltip"`
}

// Track is one band section.
type Track struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Merged     bool   `json:"merged"`
	Rows       int    `json:"rows"`
	RowHeight  int    `json:"row_height"`
	ItemHeight int    `json:"item_height"`
	Height     int    `json:"height"` // px
	Bars       []Bar  `json:"bars"`
}

// Bar is one drawn rectangle. A merged band yields one Bar per segment.
type Bar struct {
	Label     string    `json:"label"`
	Title     string    `json:"title,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Row       int       `json:"row"`
	Left      float64   `json:"left"`  // percent
	Width     float64   `json:"width"` // percent
	Top       int       `json:"top"`   // px
	Height    int       `json:"height"`
	Classes   []string  `json:"classes"`
	Icon      *Icon     `json:"icon,omitempty"`
	ShowLabel bool      `json:"show_label"`
	Tooltip   string    `json:"tooltip"`
}

// Class joins Classes for an HTML class attribute.
func (b Bar) Class() string {
	return strings.Join(b.Classes, " ")
}

// Slug lowercases title and replaces whitespace runs with "-".
func Slug(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "-")
}

// Build lays out sections. Empty input gives an empty Layout (no axis).
// The only error is an unusable Window.
func Build(sections []model.Section, opts Options) (Layout, error) {
	if err := opts.Window.Validate(); err != nil {
		return Layout{}, err
	}
	if len(sections) == 0 {
		return Layout{}, nil
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	out := Layout{Window: opts.Window}

	overlay, bands := partition(sections, opts.OverlaySection)
	if overlay != nil {
		out.Overlay = buildOverlay(*overlay, opts)
	}

	ticks, err := opts.Window.Ticks()
	if err != nil {
		return Layout{}, err
	}
	out.Ticks = ticks

	mergeable := make(map[string]bool, len(opts.MergeSections))
	for _, s := range opts.MergeSections {
		mergeable[Slug(s)] = true
	}

	for _, sec := range bands {
		out.Tracks = append(out.Tracks, buildTrack(sec, mergeable[Slug(sec.Title)], opts))
	}

	appLog.Debug("timeline: layout built", "tracks", len(out.Tracks), "ticks", len(out.Ticks), "overlay", out.Overlay != nil)
	return out, nil
}

// partition splits off the first overlay section. Further sections with the
// overlay title are not drawn at all.
func partition(sections []model.Section, overlayTitle string) (*model.Section, []model.Section) {
	var overlay *model.Section
	bands := make([]model.Section, 0, len(sections))
	for i := range sections {
		if overlayTitle != "" && strings.EqualFold(sections[i].Title, overlayTitle) {
			if overlay == nil {
				overlay = &sections[i]
			}
			continue
		}
		bands = append(bands, sections[i])
	}
	return overlay, bands
}

func buildOverlay(sec model.Section, opts Options) *Overlay {
	ov := &Overlay{Title: sec.Title, Points: make([]Point, 0, len(sec.Items))}
	for _, ev := range sec.Items {
		p := Point{
			Label:    ev.Label,
			Start:    ev.Start,
			Position: opts.Window.Percent(ev.Start),
			Class:    ClassMedia,
			Bottom:   mediaBottom,
			Icon:     resolveIcon(ev),
			Tooltip:  fmt.Sprintf("%s (%d)", ev.Label, ev.Start.Year()),
		}
		if icon.Classify(ev.Icon) == icon.SocialGlyph {
			p.Class = ClassSocial
			p.Bottom = socialBottom
		}
		ov.Points = append(ov.Points, p)
	}
	return ov
}

func buildTrack(sec model.Section, merge bool, opts Options) Track {
	tr := Track{
		Title:      sec.Title,
		Slug:       Slug(sec.Title),
		Merged:     merge,
		RowHeight:  opts.RowHeight,
		ItemHeight: opts.ItemHeight,
	}

	var bands []model.MergedEvent
	if merge {
		tr.RowHeight = opts.MergedRowHeight
		tr.ItemHeight = opts.MergedItemHeight
		bands = Merge(sec.Items, opts.MergeGap)
	} else {
		bands = Wrap(sec.Items)
	}

	packing := Pack(bands)
	tr.Rows = packing.Count
	tr.Height = packing.Count*tr.RowHeight + trackPadding

	for i, band := range bands {
		row := packing.Rows[i]
		if band.IsMerged() {
			tr.Bars = append(tr.Bars, segmentBars(band, row, tr, opts)...)
			continue
		}
		tr.Bars = append(tr.Bars, plainBar(band.First(), row, tr, opts))
	}
	return tr
}

func plainBar(ev model.Event, row int, tr Track, opts Options) Bar {
	b := newBar(ev, row, tr, opts)
	b.Classes = []string{ClassItem}
	if ev.Duration() < opts.ShortItem {
		b.Classes = append(b.Classes, ClassShort)
	}
	b.Icon = resolveIcon(ev)
	b.ShowLabel = true
	return b
}

func segmentBars(band model.MergedEvent, row int, tr Track, opts Options) []Bar {
	last := len(band.SubItems) - 1
	bars := make([]Bar, 0, len(band.SubItems))
	for i, ev := range band.SubItems {
		b := newBar(ev, row, tr, opts)
		b.Classes = []string{ClassItem, ClassMerged}
		switch i {
		case 0:
			b.Classes = append(b.Classes, ClassMergeStart)
			b.Icon = resolveIcon(ev)
			b.ShowLabel = true
		case last:
			b.Classes = append(b.Classes, ClassMergeEnd)
		default:
			b.Classes = append(b.Classes, ClassMergeMiddle)
		}
		bars = append(bars, b)
	}
	return bars
}

func newBar(ev model.Event, row int, tr Track, opts Options) Bar {
	left := opts.Window.Percent(ev.Start)
	right := opts.Window.Percent(ev.End)
	return Bar{
		Label:   ev.Label,
		Title:   ev.Title,
		Start:   ev.Start,
		End:     ev.End,
		Row:     row,
		Left:    left,
		Width:   math.Max(right-left, opts.MinWidth),
		Top:     row * tr.RowHeight,
		Height:  tr.ItemHeight,
		Tooltip: tooltip(ev, opts.Now),
	}
}

func resolveIcon(ev model.Event) *Icon {
	kind := icon.Classify(ev.Icon)
	if kind == icon.None {
		return nil
	}
	ic := &Icon{Ref: ev.Icon, Kind: kind, Alt: ev.Label}
	if kind == icon.SocialGlyph {
		ic.Class = icon.GlyphClass(ev.Icon)
	}
	return ic
}

// tooltip renders "Label[ - Title] (2019 - 2022)", with "Present" for an
// end in the current month.
func tooltip(ev model.Event, now time.Time) string {
	var b strings.Builder
	b.WriteString(ev.Label)
	if ev.Title != "" {
		b.WriteString(" - ")
		b.WriteString(ev.Title)
	}
	end := fmt.Sprint(ev.End.Year())
	if ev.End.Year() == now.Year() && ev.End.Month() == now.Month() {
		end = "Present"
	}
	fmt.Fprintf(&b, " (%d - %s)", ev.Start.Year(), end)
	return b.String()
}
