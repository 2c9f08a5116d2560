package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventTypeSubmitted is the event_type header of accepted sightings.
const EventTypeSubmitted = "sighting.submitted"

// SightingEvent is the feed representation of an accepted sighting. Image
// bytes are never published; only the digest and dimensions.
type SightingEvent struct {
	ID           string    `json:"id"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	LocationName string    `json:"location_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	PhotoDigest  string    `json:"photo_digest,omitempty"`
	PhotoWidth   int       `json:"photo_width,omitempty"`
	PhotoHeight  int       `json:"photo_height,omitempty"`
	PhotoTakenAt time.Time `json:"photo_taken_at,omitzero"`
}

// OutputEvent is the serialized form destined for the feed topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// NewSightingEvent builds the feed event for an accepted sighting.
func NewSightingEvent(s Sighting, locationName string) SightingEvent {
	ev := SightingEvent{
		ID:           s.ID,
		Description:  s.Description,
		Location:     s.Location,
		LocationName: locationName,
		CreatedAt:    s.CreatedAt,
	}
	if s.Photo != nil {
		ev.PhotoDigest = s.Photo.Digest
		ev.PhotoWidth = s.Photo.Width
		ev.PhotoHeight = s.Photo.Height
		ev.PhotoTakenAt = s.Photo.TakenAt
	}
	return ev
}

// SerializeSighting marshals a feed event keyed by sighting ID.
func SerializeSighting(ev SightingEvent) (OutputEvent, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize sighting event: %w", err)
	}
	return OutputEvent{
		Key:   []byte(ev.ID),
		Value: data,
		Headers: map[string]string{
			"event_type": EventTypeSubmitted,
			"location":   ev.Location,
			"created_at": ev.CreatedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
