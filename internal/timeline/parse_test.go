package timeline

import (
	"testing"
	"time"
)

var testNow = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

func testParser() Parser {
	return Parser{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
	}
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func TestParseEmpty(t *testing.T) {
	if got := testParser().Parse(""); len(got) != 0 {
		t.Fatalf("expected no sections, got %d", len(got))
	}
	if got := testParser().Parse("  \n\n  "); len(got) != 0 {
		t.Fatalf("expected no sections for blank text, got %d", len(got))
	}
}

func TestParseSectionsAndForms(t *testing.T) {
	src := `
# Timeline
- Orphan | 2010-01 | 2011-01 | fa-ghost

## Career
- NVIDIA | Research Scientist | 2022-07 | Present | assets/nvidia.png | trailing | junk
-   Amazon   |  2018-08 | 2019-09 |   

## Content
- YouTube | 2017-07 | PRESENT | fa-youtube
- Broken | 2017-07
`
	sections := testParser().Parse(src)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[0].Title != "Career" || sections[1].Title != "Content" {
		t.Fatalf("unexpected titles: %q, %q", sections[0].Title, sections[1].Title)
	}

	career := sections[0].Items
	if len(career) != 2 {
		t.Fatalf("expected 2 career items, got %d", len(career))
	}

	nv := career[0]
	if nv.Label != "NVIDIA" || nv.Title != "Research Scientist" {
		t.Errorf("extended form: got label %q title %q", nv.Label, nv.Title)
	}
	if !nv.Start.Equal(month(2022, time.July)) {
		t.Errorf("start = %v, want 2022-07-01", nv.Start)
	}
	if !nv.End.Equal(testNow) {
		t.Errorf("Present end = %v, want %v", nv.End, testNow)
	}
	if nv.Icon != "assets/nvidia.png" {
		t.Errorf("icon = %q", nv.Icon)
	}

	amzn := career[1]
	if amzn.Label != "Amazon" || amzn.Title != "" {
		t.Errorf("legacy form: got label %q title %q", amzn.Label, amzn.Title)
	}
	if amzn.Icon != "" {
		t.Errorf("empty icon field should mean no icon, got %q", amzn.Icon)
	}
	if !amzn.End.Equal(month(2019, time.September)) {
		t.Errorf("end = %v, want 2019-09-01", amzn.End)
	}

	content := sections[1].Items
	if len(content) != 1 {
		t.Fatalf("expected short line to be dropped, got %d items", len(content))
	}
	if !content[0].End.Equal(testNow) {
		t.Errorf("PRESENT should be case-insensitive, got %v", content[0].End)
	}
}

func TestParseLegacyHasNoTitle(t *testing.T) {
	lines := []string{
		"- A | 2014-01 | 2015-01 | x.png",
		"- B|2014-01|2015-01|",
		"- C | 2014 | Present | fa-code",
	}
	for _, l := range lines {
		secs := testParser().Parse("## S\n" + l)
		if len(secs[0].Items) != 1 {
			t.Fatalf("%q: expected one item", l)
		}
		if secs[0].Items[0].Title != "" {
			t.Errorf("%q: legacy line produced title %q", l, secs[0].Items[0].Title)
		}
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"2019-10", month(2019, time.October), false},
		{"2019", month(2019, time.January), false},
		{"2019-", month(2019, time.January), false},
		{"2019-10-15", month(2019, time.October), false},
		{" 2019-03 ", month(2019, time.March), false},
		{"present", testNow, false},
		{"Present", testNow, false},
		{"", testNow, false},
		{"soon", time.Time{}, true},
		{"2019-oct", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in, testNow, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDropsUnreadableDates(t *testing.T) {
	secs := testParser().Parse("## S\n- Bad | someday | 2020-01 | x.png\n- Good | 2019-01 | 2020-01 | x.png")
	if len(secs[0].Items) != 1 || secs[0].Items[0].Label != "Good" {
		t.Fatalf("expected only the readable line, got %+v", secs[0].Items)
	}
}

func TestParseLeadingByteOrderMark(t *testing.T) {
	src := "\ufeff## Career\n- NVIDIA | 2019-10 | 2022-06 | x.png\n## Languages\n- Go | 2015-01 | Present | fa-golang\n"
	secs := testParser().Parse(src)
	if len(secs) != 2 {
		t.Fatalf("got %d sections, want 2", len(secs))
	}
	if secs[0].Title != "Career" || len(secs[0].Items) != 1 {
		t.Errorf("first section = %q with %d items", secs[0].Title, len(secs[0].Items))
	}
	if got := testParser().Parse("\ufeff"); len(got) != 0 {
		t.Errorf("bare mark should parse to nothing, got %d sections", len(got))
	}
}

func TestParseEndBeforeStartIsClamped(t *testing.T) {
	secs := testParser().Parse("## S\n- Oops | 2020-06 | 2019-01 | x.png")
	ev := secs[0].Items[0]
	if !ev.Start.Equal(month(2020, time.June)) {
		t.Fatalf("start = %v", ev.Start)
	}
	if !ev.End.Equal(ev.Start) {
		t.Errorf("end before start should clamp to start, got end %v", ev.End)
	}
	for _, s := range testParser().Parse(sampleSource) {
		for _, ev := range s.Items {
			if ev.End.Before(ev.Start) {
				t.Errorf("%s: end %v before start %v", ev.Label, ev.End, ev.Start)
			}
		}
	}
}

const sampleSource = `
# Timeline

## Career
- Moody's Analytics | Actuarial Programmer | 2014-05 | 2018-07| assets/moodys.png
- Amazon | Software Development Engineer | 2018-08 | 2019-09 | assets/amazon.png
- NVIDIA | Senior Software Engineer | 2019-10 | 2022-06 | assets/nvidia.png
- NVIDIA | Research Scientist | 2022-07 | Present | assets/nvidia.png

## Content
- YouTube | 2017-07 | Present | fa-youtube
- Twitter | 2018-01 | Present | fa-x-twitter
- ADSP Podcast | 2021-01 | Present | assets/adsp_logo.png

## Languages
- C++ | 2014-05 | Present | assets/cpp.png
- Python | 2020-07 | Present | fa-python
- APL | 2019-11 | Present | assets/apl.png
- BQN | 2020-06 | Present | assets/bqn.png
`
