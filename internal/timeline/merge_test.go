package timeline

import (
	"testing"
	"time"

	"careerline/internal/model"
)

func ev(label string, start, end time.Time) model.Event {
	return model.Event{Label: label, Start: start, End: end}
}

func TestMergeGapThreshold(t *testing.T) {
	first := ev("Acme", month(2019, time.January), month(2020, time.January))
	day := 24 * time.Hour

	tests := []struct {
		name     string
		gap      time.Duration
		label    string
		wantRuns int
	}{
		{"touching", 0, "Acme", 1},
		{"overlapping", -10 * day, "Acme", 1},
		{"exactly 30 days", 30 * day, "Acme", 1},
		{"31 days", 31 * day, "Acme", 2},
		{"different label touching", 0, "Globex", 2},
		{"different label overlapping", -100 * day, "Globex", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := first.End.Add(tt.gap)
			second := ev(tt.label, start, start.AddDate(1, 0, 0))
			got := Merge([]model.Event{first, second}, 0)
			if len(got) != tt.wantRuns {
				t.Fatalf("got %d runs, want %d", len(got), tt.wantRuns)
			}
		})
	}
}

func TestMergeSortsAndKeepsSubItems(t *testing.T) {
	later := ev("NVIDIA", month(2022, time.July), month(2024, time.January))
	earlier := ev("NVIDIA", month(2019, time.October), month(2022, time.June))
	other := ev("Amazon", month(2018, time.August), month(2019, time.September))

	got := Merge([]model.Event{later, other, earlier}, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(got))
	}
	if got[0].Label != "Amazon" || got[0].IsMerged() {
		t.Errorf("first run should be unmerged Amazon, got %+v", got[0])
	}

	nv := got[1]
	if !nv.IsMerged() || len(nv.SubItems) != 2 {
		t.Fatalf("expected NVIDIA with 2 segments, got %+v", nv)
	}
	if !nv.SubItems[0].Start.Equal(earlier.Start) {
		t.Errorf("sub-items not sorted by start")
	}
	if !nv.Start.Equal(earlier.Start) || !nv.End.Equal(later.End) {
		t.Errorf("merged span = [%v, %v)", nv.Start, nv.End)
	}
}

func TestMergeEndIsMaxOfMembers(t *testing.T) {
	long := ev("Acme", month(2015, time.January), month(2020, time.January))
	nested := ev("Acme", month(2016, time.January), month(2017, time.January))

	got := Merge([]model.Event{long, nested}, 0)
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got))
	}
	if !got[0].End.Equal(long.End) {
		t.Errorf("end shrank to %v", got[0].End)
	}
}

func TestMergeStableForTies(t *testing.T) {
	a := model.Event{Label: "A", Title: "first", Start: month(2020, time.January), End: month(2020, time.June)}
	b := model.Event{Label: "B", Title: "second", Start: month(2020, time.January), End: month(2020, time.June)}

	got := Merge([]model.Event{a, b}, 0)
	if got[0].First().Title != "first" || got[1].First().Title != "second" {
		t.Errorf("ties should keep source order, got %q then %q", got[0].First().Title, got[1].First().Title)
	}
}

func TestMergeDoesNotMutateInput(t *testing.T) {
	in := []model.Event{
		ev("B", month(2021, time.January), month(2022, time.January)),
		ev("A", month(2019, time.January), month(2020, time.January)),
	}
	Merge(in, 0)
	if in[0].Label != "B" {
		t.Errorf("input was reordered")
	}
}

func TestWrapKeepsOrder(t *testing.T) {
	in := []model.Event{
		ev("B", month(2021, time.January), month(2022, time.January)),
		ev("A", month(2019, time.January), month(2020, time.January)),
	}
	got := Wrap(in)
	if len(got) != 2 || got[0].Label != "B" || got[0].IsMerged() {
		t.Errorf("unexpected wrap result %+v", got)
	}
}

func TestMergeGapCountsCalendarDays(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	// DST ends on 2022-11-06, so 30 calendar days here are 721 hours.
	first := ev("Acme", time.Date(2022, time.January, 1, 0, 0, 0, 0, ny), time.Date(2022, time.November, 1, 0, 0, 0, 0, ny))

	tests := []struct {
		name     string
		start    time.Time
		wantRuns int
	}{
		{"exactly 30 days across DST", time.Date(2022, time.December, 1, 0, 0, 0, 0, ny), 1},
		{"31 days across DST", time.Date(2022, time.December, 2, 0, 0, 0, 0, ny), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			second := ev("Acme", tt.start, tt.start.AddDate(1, 0, 0))
			if got := Merge([]model.Event{first, second}, 0); len(got) != tt.wantRuns {
				t.Fatalf("got %d runs, want %d", len(got), tt.wantRuns)
			}
		})
	}
}
