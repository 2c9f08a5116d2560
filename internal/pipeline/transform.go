package pipeline

import (
	"context"

	"github.com/couchcryptid/bugwatch/internal/domain"
)

// SightingTransformer implements Transformer using the domain serializer.
type SightingTransformer struct{}

// NewTransformer creates a SightingTransformer.
func NewTransformer() *SightingTransformer {
	return &SightingTransformer{}
}

func (t *SightingTransformer) Transform(_ context.Context, ev domain.SightingEvent) (domain.OutputEvent, error) {
	return domain.SerializeSighting(ev)
}
