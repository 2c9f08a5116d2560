package httpadapter

import (
	"net/http"

	"github.com/couchcryptid/bugwatch/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

type errorResponse struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type sightingsResponse struct {
	Sightings []domain.Sighting `json:"sightings"`
	Total     int               `json:"total"`
}

type locationsResponse struct {
	Locations []domain.Building `json:"locations"`
}

func (s *Server) handleListSightings(w http.ResponseWriter, r *http.Request) {
	sightings := s.session(w, r).Sightings()
	sharedobs.WriteJSON(w, http.StatusOK, sightingsResponse{Sightings: sightings, Total: len(sightings)})
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, s.session(w, r).Distribution())
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	sharedobs.WriteJSON(w, http.StatusOK, locationsResponse{Locations: s.deps.Submissions.Catalog().Buildings()})
}

func (s *Server) handleAPISubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	req, err := s.parseSubmission(w, r)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}

	sighting, err := s.deps.Submissions.Submit(r.Context(), sess, req)
	if err != nil {
		writeSubmissionError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusCreated, sighting)
}

func writeSubmissionError(w http.ResponseWriter, err error) {
	se := asSubmissionError(err)
	sharedobs.WriteJSON(w, statusFor(err), errorResponse{
		Error:   se.KindName(),
		Field:   se.Field,
		Message: se.Message,
	})
}
