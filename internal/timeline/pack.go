package timeline

import "time"

// Span is anything occupying [Start, End) on the time axis.
type Span interface {
	Interval() (start, end time.Time)
}

// Packing is the result of Pack.
type Packing struct {
	// Rows[i] is the row of the i-th input span.
	Rows []int
	// Count is the number of rows opened.
	Count int
}

// Pack assigns each span, in input order, the lowest row holding nothing
// that overlaps it. Spans overlap when a.start < b.end && a.end > b.start, so
// spans that only touch share a row.
//
// This is greedy colouring in arrival order: deterministic for a fixed input
// order but not guaranteed to use the fewest rows.
func Pack[S Span](spans []S) Packing {
	p := Packing{Rows: make([]int, len(spans))}
	var rows [][]int // indices into spans, per row

	for i, s := range spans {
		start, end := s.Interval()
		row := 0
		for ; row < len(rows); row++ {
			if !collides(spans, rows[row], start, end) {
				break
			}
		}
		if row == len(rows) {
			rows = append(rows, nil)
		}
		rows[row] = append(rows[row], i)
		p.Rows[i] = row
	}

	p.Count = len(rows)
	return p
}

func collides[S Span](spans []S, members []int, start, end time.Time) bool {
	for _, j := range members {
		os, oe := spans[j].Interval()
		if Overlaps(start, end, os, oe) {
			return true
		}
	}
	return false
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) collide under
// the same rule Pack uses.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}
