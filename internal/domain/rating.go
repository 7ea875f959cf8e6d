package domain

import "time"

// Rating represents a single rater's rating for a photo.
type Rating struct {
	PhotoID   string
	RaterID   string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingSummary provides average and count for a photo's ratings.
type RatingSummary struct {
	Average float64
	Count   int64
}
