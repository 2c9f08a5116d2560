// Package submission accepts new sightings into a visitor session.
package submission

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/observability"
	"github.com/couchcryptid/bugwatch/internal/photo"
	"github.com/couchcryptid/bugwatch/internal/session"
	"github.com/google/uuid"
)

// Publisher receives accepted sightings for the outbound feed. Publish must
// not block.
type Publisher interface {
	Publish(ev domain.SightingEvent) bool
}

// Request is one submission attempt. Photo is nil when no file was attached.
type Request struct {
	Description string
	Location    string
	Photo       io.Reader
}

// Service validates, verifies and records sightings.
type Service struct {
	catalog   *domain.Catalog
	decoder   *photo.Decoder
	verifier  domain.Verifier
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewService wires a submission service. Pass a nil publisher to disable the
// event feed.
func NewService(catalog *domain.Catalog, decoder *photo.Decoder, verifier domain.Verifier, publisher Publisher,
	logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		catalog:   catalog,
		decoder:   decoder,
		verifier:  verifier,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Catalog returns the building catalog submissions are checked against.
func (s *Service) Catalog() *domain.Catalog { return s.catalog }

// MaxUploadBytes is the largest accepted photo.
func (s *Service) MaxUploadBytes() int64 { return s.decoder.MaxBytes() }

// CheckReadiness reports whether submissions can be accepted.
func (s *Service) CheckReadiness(_ context.Context) error {
	if s.catalog == nil || s.catalog.Len() == 0 {
		return errors.New("building catalog is empty")
	}
	return nil
}

// Submit records a new sighting at the front of sess. On error the session
// is left unchanged and the error is a *domain.SubmissionError.
func (s *Service) Submit(ctx context.Context, sess *session.Session, req Request) (domain.Sighting, error) {
	sighting, err := s.prepare(ctx, req)
	if err != nil {
		kind := domain.KindName(err)
		s.metrics.SubmissionsRejected.WithLabelValues(kind).Inc()
		s.logger.Warn("submission rejected",
			"session", sess.ID(),
			"kind", kind,
			"location", req.Location,
			"error", err,
		)
		return domain.Sighting{}, err
	}

	sess.Add(sighting)
	s.metrics.SightingsSubmitted.Inc()
	s.logger.Info("sighting accepted",
		"session", sess.ID(),
		"sighting_id", sighting.ID,
		"location", sighting.Location,
	)

	if s.publisher != nil {
		ev := domain.NewSightingEvent(sighting, s.catalog.Name(sighting.Location))
		if !s.publisher.Publish(ev) {
			s.logger.Warn("feed queue full, event dropped", "sighting_id", sighting.ID)
		}
	}
	return sighting, nil
}

func (s *Service) prepare(ctx context.Context, req Request) (domain.Sighting, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return domain.Sighting{}, domain.NewValidationError("description", "Tell us what you saw.")
	}

	if strings.TrimSpace(req.Location) == "" {
		return domain.Sighting{}, domain.NewValidationError("location", "Pick the building where you saw it.")
	}
	building, ok := s.catalog.Lookup(req.Location)
	if !ok {
		return domain.Sighting{}, domain.NewValidationError("location",
			"Unknown building code "+strings.ToUpper(strings.TrimSpace(req.Location))+".")
	}

	if req.Photo == nil {
		return domain.Sighting{}, domain.NewValidationError("photo", "Please attach a photo of the bug so others can verify the sighting.")
	}
	p, err := s.decoder.Decode(req.Photo)
	if err != nil {
		return domain.Sighting{}, err
	}

	if err := s.verify(ctx, p); err != nil {
		return domain.Sighting{}, err
	}

	return domain.Sighting{
		ID:          uuid.NewString(),
		Description: description,
		Location:    building.Code,
		ImageSource: photo.DataURL(p),
		CreatedAt:   domain.Now(),
		Photo:       &p,
	}, nil
}

func (s *Service) verify(ctx context.Context, p domain.Photo) error {
	start := time.Now()
	ok, err := s.verifier.Verify(ctx, p)
	s.metrics.VerificationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		return domain.NewVerificationError("We could not verify this photo. Please try again.", err)
	}
	if !ok {
		return domain.NewVerificationError("This photo did not pass verification.", nil)
	}
	return nil
}
