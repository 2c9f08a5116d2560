package domain

import (
	"context"
	"time"
)

// Photo describes a decoded upload. Data holds the bytes that are embedded in
// the page, which may be a downscaled copy of the original.
type Photo struct {
	MIMEType string    `json:"mime_type"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Digest   string    `json:"digest"` // hex SHA-256 of the original upload
	TakenAt  time.Time `json:"taken_at,omitzero"`
	Data     []byte    `json:"-"`
}

// Sighting is a single user-submitted bug report.
type Sighting struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	ImageSource string    `json:"image_source"`
	CreatedAt   time.Time `json:"created_at"`

	Photo *Photo `json:"photo,omitempty"`
}

// LocationTally is the number of sightings recorded at one location.
type LocationTally struct {
	Location string `json:"location"`
	Count    int    `json:"count"`
}

// Distribution is a ranked tally together with the values needed to draw it.
type Distribution struct {
	Total    int             `json:"total"`
	TopCount int             `json:"top_count"`
	Entries  []LocationTally `json:"entries"`
}

// Verifier decides whether an uploaded photo is a plausible bug sighting.
type Verifier interface {
	Verify(ctx context.Context, photo Photo) (bool, error)
}
