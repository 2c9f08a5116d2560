package httpadapter

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/session"
	"github.com/dustin/go-humanize"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageView struct {
	FormURL   string
	MaxUpload string
	Buildings []domain.Building
	Error     *domain.SubmissionError
	Form      formValues

	Sightings []sightingView
	Hotspots  []hotspotView
	Total     int
}

type formValues struct {
	Description string
	Location    string
}

type sightingView struct {
	ID           string
	Description  string
	Location     string
	LocationName string
	Image        template.URL
	Timestamp    string
	Ago          string
}

type hotspotView struct {
	Location string
	Name     string
	Count    int
	Width    int
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	s.renderPage(w, sess, http.StatusOK, nil, formValues{})
}

func (s *Server) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	req, err := s.parseSubmission(w, r)
	if err == nil {
		_, err = s.deps.Submissions.Submit(r.Context(), sess, req)
	}
	if err != nil {
		s.renderPage(w, sess, statusFor(err), asSubmissionError(err), formValues{
			Description: req.Description,
			Location:    strings.ToUpper(strings.TrimSpace(req.Location)),
		})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderPage(w http.ResponseWriter, sess *session.Session, status int, subErr *domain.SubmissionError, form formValues) {
	catalog := s.deps.Submissions.Catalog()
	now := domain.Now()

	view := pageView{
		FormURL:   s.deps.FormURL,
		MaxUpload: humanize.IBytes(uint64(s.deps.Submissions.MaxUploadBytes())),
		Buildings: catalog.Buildings(),
		Error:     subErr,
		Form:      form,
	}

	sightings := sess.Sightings()
	view.Sightings = make([]sightingView, 0, len(sightings))
	for _, sg := range sightings {
		view.Sightings = append(view.Sightings, sightingView{
			ID:           sg.ID,
			Description:  sg.Description,
			Location:     sg.Location,
			LocationName: catalog.Name(sg.Location),
			Image:        imageURL(sg.ImageSource),
			Timestamp:    sg.CreatedAt.UTC().Format(time.RFC3339),
			Ago:          relativeTime(now, sg.CreatedAt),
		})
	}

	dist := domain.Summarize(sightings)
	view.Total = dist.Total
	for _, e := range dist.Entries {
		view.Hotspots = append(view.Hotspots, hotspotView{
			Location: e.Location,
			Name:     catalog.Name(e.Location),
			Count:    e.Count,
			Width:    domain.BarWidth(e.Count, dist.TopCount),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		s.logger.Error("render page", "session", sess.ID(), "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes()) //nolint:errcheck // client went away
}

// seedImageHosts are the only remote hosts an image may load from.
var seedImageHosts = map[string]bool{
	"images.unsplash.com": true,
}

// imageURL marks image sources as safe for src attributes: data URLs
// produced by the photo decoder and https links to the demo seed's host.
// Anything else is dropped.
func imageURL(src string) template.URL {
	if strings.HasPrefix(src, "data:image/") {
		return template.URL(src) //nolint:gosec // produced by the photo decoder
	}
	u, err := url.Parse(src)
	if err != nil || u.Scheme != "https" || u.User != nil || !seedImageHosts[u.Hostname()] {
		return ""
	}
	return template.URL(src) //nolint:gosec // allowlisted host
}

// relativeTime renders the age of t as "5m ago", "3h ago" or "2d ago",
// rounding to the nearest unit at each step. Ages below a minute show as 1m.
func relativeTime(now, t time.Time) string {
	minutes := max(1, int(math.Round(now.Sub(t).Minutes())))
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}
	hours := int(math.Round(float64(minutes) / 60))
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}
	return fmt.Sprintf("%dd ago", int(math.Round(float64(hours)/24)))
}

func asSubmissionError(err error) *domain.SubmissionError {
	var se *domain.SubmissionError
	if errors.As(err, &se) {
		return se
	}
	return &domain.SubmissionError{Kind: err, Message: "Something went wrong. Please try again."}
}
