package priceseries

import "time"

const (
	// monthKeyFormat is the canonical bucket key layout.
	monthKeyFormat = "2006-01"

	// SummaryMonths is the window length of the comparison summary.
	SummaryMonths = 6

	// SeriesMonths is the window length of the trend series.
	SeriesMonths = 24
)

// MonthKey returns the YYYY-MM bucket key for a date.
func MonthKey(t time.Time) string {
	return t.Format(monthKeyFormat)
}

// MonthWindow returns count contiguous calendar months ending at the month
// containing ref, oldest first. Buckets are strictly increasing with no
// gaps regardless of month length or year boundaries; the last bucket is
// flagged as current.
func MonthWindow(ref time.Time, count int, label LabelFunc) []MonthBucket {
	if count <= 0 {
		return []MonthBucket{}
	}
	if label == nil {
		label = DefaultLabel
	}

	// Normalize to the first day so AddDate arithmetic can never skip a
	// month (e.g. Jan 31 - 1 month would land in March via Feb 31).
	first := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())

	window := make([]MonthBucket, 0, count)
	for i := count - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		window = append(window, MonthBucket{
			Key:     m.Format(monthKeyFormat),
			Label:   label(m),
			Current: i == 0,
		})
	}
	return window
}
