// Package render turns a timeline.Layout into an HTML document.
//
// All geometry comes from the layout; this package only maps it onto
// elements, classes and inline positions.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"

	"careerline/internal/icon"
	"careerline/internal/timeline"
)

//go:embed templates/page.html.tmpl templates/timeline.css
var files embed.FS

// Stylesheet is served alongside the page and inlined for standalone output.
func Stylesheet() []byte {
	b, _ := files.ReadFile("templates/timeline.css")
	return b
}

// Page is everything the template needs.
type Page struct {
	Title     string
	Layout    timeline.Layout
	BodyClass string
	// Origin is where the source text came from (remote, cache, file, embedded).
	Origin    string
	Generated time.Time
	// Standalone inlines the stylesheet instead of linking /static/timeline.css.
	Standalone bool
}

// Stats summarises the layout for the stats panel.
type Stats struct {
	Tracks   int
	Bars     int
	Merged   int
	Points   int
	MaxRows  int
	Sections int
}

func (p Page) Stats() Stats {
	var s Stats
	s.Tracks = len(p.Layout.Tracks)
	s.Sections = s.Tracks
	if p.Layout.Overlay != nil {
		s.Points = len(p.Layout.Overlay.Points)
		s.Sections++
	}
	for _, tr := range p.Layout.Tracks {
		s.Bars += len(tr.Bars)
		if tr.Rows > s.MaxRows {
			s.MaxRows = tr.Rows
		}
		for _, b := range tr.Bars {
			if hasClass(b.Classes, timeline.ClassMergeStart) {
				s.Merged++
			}
		}
	}
	return s
}

func hasClass(classes []string, c string) bool {
	for _, x := range classes {
		if x == c {
			return true
		}
	}
	return false
}

var pageTmpl = template.Must(template.New("page.html.tmpl").Funcs(template.FuncMap{
	"pct": func(f float64) string { return strconv.FormatFloat(f, 'f', 4, 64) },
	"isGlyph": func(ic *timeline.Icon) bool {
		return ic != nil && ic.Kind == icon.SocialGlyph
	},
	"placeholder": func() string { return icon.Placeholder },
	"css":         func() template.CSS { return template.CSS(Stylesheet()) },
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	},
}).ParseFS(files, "templates/page.html.tmpl"))

// Write renders p to w.
func Write(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Timeline"
	}
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

// HTML renders p into memory.
func HTML(p Page) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
