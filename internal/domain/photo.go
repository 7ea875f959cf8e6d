package domain

import "time"

// Photo is the rated resource. Only what the ratings API needs is kept here.
// OwnerID is empty for photos uploaded without a rater identity.
type Photo struct {
	ID        string
	Title     string
	OwnerID   string
	CreatedAt time.Time
}
