package httpadapter

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/couchcryptid/bugwatch/internal/domain"
	"github.com/couchcryptid/bugwatch/internal/submission"
	"github.com/dustin/go-humanize"
)

// maxFieldBytes bounds a single text field.
const maxFieldBytes = 64 << 10

// parseSubmission streams the multipart body into a submission request.
// Text fields read before a failure are kept in the returned request so the
// form can be shown again with them. Errors are *domain.SubmissionError values.
func (s *Server) parseSubmission(w http.ResponseWriter, r *http.Request) (submission.Request, error) {
	limit := s.deps.Submissions.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+formOverhead)

	var req submission.Request
	mr, err := r.MultipartReader()
	if err != nil {
		return req, domain.NewIOError("photo", "Could not read the submitted form", err)
	}

	seen := make(map[string]bool, 3)
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		if err != nil {
			return req, formError(err, limit)
		}

		name := part.FormName()
		if seen[name] {
			continue
		}
		switch name {
		case "description", "location":
			b, err := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			if err != nil {
				return req, formError(err, limit)
			}
			if name == "description" {
				req.Description = string(b)
			} else {
				req.Location = string(b)
			}
		case "photo":
			// One byte past the limit lets the decoder report the overflow.
			data, err := io.ReadAll(io.LimitReader(part, limit+1))
			if err != nil {
				return req, formError(err, limit)
			}
			// Browsers send an empty part when no file was chosen.
			if len(data) > 0 {
				req.Photo = bytes.NewReader(data)
			}
		default:
			continue
		}
		seen[name] = true
	}
}

func formError(err error, limit int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.NewValidationError("photo",
			fmt.Sprintf("Photo is larger than the %s limit.", humanize.IBytes(uint64(limit))))
	}
	return domain.NewIOError("photo", "Could not read the submitted form", err)
}

// statusFor maps a submission error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIO):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrVerification):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
