package ratingclient

import "strconv"

// FormatAverage renders an average with exactly two decimal places.
func FormatAverage(avg float64) string {
	return strconv.FormatFloat(avg, 'f', 2, 64)
}

// FormatCount renders a rating count as a decimal integer.
func FormatCount(count int64) string {
	return strconv.FormatInt(count, 10)
}
