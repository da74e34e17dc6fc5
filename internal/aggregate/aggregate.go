// Package aggregate groups time-stamped records into calendar-day buckets
// within a rolling window ending today. Days without records are omitted
// from the output (sparse series), callers that chart the result fill gaps.
package aggregate

import (
	"sort"
	"time"

	"github.com/2beens/fitassist/internal/apperr"
)

type Bucket struct {
	Date time.Time          `json:"date"`
	Sums map[string]float64 `json:"sums"`
}

type Count struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// Range is an inclusive span of calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

func (r Range) Contains(day time.Time) bool {
	return !day.Before(r.From) && !day.After(r.To)
}

// Window returns the day range [today - windowDays, today] in now's location.
func Window(windowDays int, now time.Time) (Range, error) {
	if windowDays < 0 {
		return Range{}, apperr.InvalidInput("window days must not be negative, got %d", windowDays)
	}
	today := Day(now, now.Location())
	return Range{
		From: today.AddDate(0, 0, -windowDays),
		To:   today,
	}, nil
}

// Day truncates t to midnight of its calendar date in loc.
func Day(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// CalendarDate places the date t carries, read in t's own location, at
// midnight in loc. Use it for date-only values (postgres DATE scans as UTC
// midnight), which must not shift a day when converted to loc.
func CalendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// BucketByDay sums the given fields of records per calendar day, ascending by date.
// A negative windowDays is an InvalidInput error.
func BucketByDay[T any](
	records []T,
	dateOf func(T) time.Time,
	fields map[string]func(T) float64,
	windowDays int,
	now time.Time,
) ([]Bucket, error) {
	window, err := Window(windowDays, now)
	if err != nil {
		return nil, err
	}
	buckets := []Bucket{}

	day2sums := make(map[time.Time]map[string]float64)
	for _, rec := range records {
		day := Day(dateOf(rec), now.Location())
		if !window.Contains(day) {
			continue
		}
		sums, ok := day2sums[day]
		if !ok {
			sums = make(map[string]float64, len(fields))
			for name := range fields {
				sums[name] = 0
			}
			day2sums[day] = sums
		}
		for name, valueOf := range fields {
			sums[name] += valueOf(rec)
		}
	}

	for day, sums := range day2sums {
		buckets = append(buckets, Bucket{Date: day, Sums: sums})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date.Before(buckets[j].Date)
	})

	return buckets, nil
}

// CountByDay counts records per calendar day, ascending by date.
// A negative windowDays is an InvalidInput error.
func CountByDay[T any](
	records []T,
	timestampOf func(T) time.Time,
	windowDays int,
	now time.Time,
) ([]Count, error) {
	window, err := Window(windowDays, now)
	if err != nil {
		return nil, err
	}
	counts := []Count{}

	day2count := make(map[time.Time]int)
	for _, rec := range records {
		day := Day(timestampOf(rec), now.Location())
		if window.Contains(day) {
			day2count[day]++
		}
	}

	for day, c := range day2count {
		counts = append(counts, Count{Date: day, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Date.Before(counts[j].Date)
	})

	return counts, nil
}
