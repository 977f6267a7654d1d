package domain

import (
	"fmt"
	"sort"
	"time"
)

// DiurnalMatch is the diurnal correction of one station reading.
type DiurnalMatch struct {
	Station          StationRecord
	Base             BaseStationRecord
	BaseIndex        int           // Index of the matched reading in the base series.
	TimeDiff         time.Duration // Absolute station/base time difference.
	DailyMean        float64       // Mean base reading of the matched base date.
	DiurnalVar       float64       // Base - DailyMean.
	DiurnalCorrected float64       // Station - DiurnalVar.
}

// DiurnalCorrector matches station readings to the nearest base-station reading in time.
// It is built once per base series and is read-only afterwards.
type DiurnalCorrector struct {
	base       []BaseStationRecord
	dailyMeans map[string]float64

	// Distinct base timestamps in ascending order, each mapped to the first reading with
	// that timestamp in the original series.
	times []time.Time
	first []int
}

// NewDiurnalCorrector indexes a base-station series. An empty series fails with ErrMatch.
func NewDiurnalCorrector(base []BaseStationRecord) (*DiurnalCorrector, error) {
	if len(base) == 0 {
		return nil, fmt.Errorf("%w: base-station series is empty", ErrMatch)
	}

	order := make([]int, len(base))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return base[order[a]].Timestamp.Before(base[order[b]].Timestamp)
	})

	times := make([]time.Time, 0, len(base))
	first := make([]int, 0, len(base))
	for _, idx := range order {
		ts := base[idx].Timestamp
		if n := len(times); n > 0 && times[n-1].Equal(ts) {
			continue
		}
		times = append(times, ts)
		first = append(first, idx)
	}

	return &DiurnalCorrector{
		base:       base,
		dailyMeans: DailyMeans(base),
		times:      times,
		first:      first,
	}, nil
}

// DailyMeans returns the mean base reading per canonical calendar date.
func DailyMeans(base []BaseStationRecord) map[string]float64 {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, b := range base {
		d := b.Date()
		sums[d] += b.Field
		counts[d]++
	}
	means := make(map[string]float64, len(sums))
	for d, s := range sums {
		means[d] = s / float64(counts[d])
	}
	return means
}

// Nearest returns the index of the base reading closest in time to ts, over the whole
// series regardless of calendar date. Equal distances resolve to the reading that comes
// first in the original series.
func (c *DiurnalCorrector) Nearest(ts time.Time) int {
	i := sort.Search(len(c.times), func(k int) bool { return !c.times[k].Before(ts) })

	switch {
	case i == 0:
		return c.first[0]
	case i == len(c.times):
		return c.first[i-1]
	}

	before := ts.Sub(c.times[i-1])
	after := c.times[i].Sub(ts)
	switch {
	case before < after:
		return c.first[i-1]
	case after < before:
		return c.first[i]
	}
	if c.first[i-1] < c.first[i] {
		return c.first[i-1]
	}
	return c.first[i]
}

// Correct matches one station reading and computes its diurnal correction.
func (c *DiurnalCorrector) Correct(s StationRecord) DiurnalMatch {
	idx := c.Nearest(s.Timestamp)
	b := c.base[idx]

	diff := s.Timestamp.Sub(b.Timestamp)
	if diff < 0 {
		diff = -diff
	}
	mean := c.dailyMeans[b.Date()]
	dv := b.Field - mean

	return DiurnalMatch{
		Station:          s,
		Base:             b,
		BaseIndex:        idx,
		TimeDiff:         diff,
		DailyMean:        mean,
		DiurnalVar:       dv,
		DiurnalCorrected: s.Field - dv,
	}
}

// CorrectAll corrects every station reading in order.
func (c *DiurnalCorrector) CorrectAll(stations []StationRecord) []DiurnalMatch {
	out := make([]DiurnalMatch, len(stations))
	for i, s := range stations {
		out[i] = c.Correct(s)
	}
	return out
}
