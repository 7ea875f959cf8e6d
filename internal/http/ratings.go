package httpserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/photo-ratings/internal/domain"
	"github.com/Clark-Hu/photo-ratings/internal/metrics"
	"github.com/Clark-Hu/photo-ratings/internal/repository"
)

const raterHeader = "X-Rater-Id"

type ratingRequest struct {
	Value *int `json:"value" validate:"required"`
}

type ratingSummaryResponse struct {
	PhotoID  string  `json:"photoId"`
	Average  float64 `json:"avg"`
	Count    int64   `json:"count"`
	MyRating *int    `json:"myRating,omitempty"`
}

func (s *Server) handleSetRating(w http.ResponseWriter, r *http.Request) {
	photo, status, message := s.findPhoto(r)
	if status != 0 {
		s.rejectRating(w, status, message)
		return
	}

	raterID := raterFrom(r)
	if raterID == "" {
		s.rejectRating(w, http.StatusUnauthorized, "Missing rater identity")
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		status, message := decodeErrorText(err)
		s.rejectRating(w, status, message)
		return
	}
	if msg := s.ratingViolation(req); msg != "" {
		s.rejectRating(w, http.StatusUnprocessableEntity, msg)
		return
	}
	if photo.OwnerID != "" && photo.OwnerID == raterID {
		s.rejectRating(w, http.StatusForbidden, "You cannot rate your own photo")
		return
	}

	rating, inserted, err := s.repo.Ratings.Upsert(r.Context(), repository.RatingUpsertParams{
		PhotoID: photo.ID,
		RaterID: raterID,
		Value:   *req.Value,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondText(w, http.StatusNotFound, "Photo not found")
			return
		}
		s.logger.Error("upsert rating", zap.String("photo_id", photo.ID), zap.Error(err))
		respondText(w, http.StatusInternalServerError, "Failed to save rating")
		return
	}

	result := metrics.ResultUpdated
	if inserted {
		result = metrics.ResultCreated
	}
	s.metrics.RatingsSubmitted.WithLabelValues(result).Inc()

	summary, err := s.repo.Ratings.Summary(r.Context(), photo.ID)
	if err != nil {
		s.logger.Error("summarize ratings", zap.String("photo_id", photo.ID), zap.Error(err))
		respondText(w, http.StatusInternalServerError, "Failed to save rating")
		return
	}

	s.logger.Debug("rating saved",
		zap.String("photo_id", photo.ID),
		zap.String("rater_id", raterID),
		zap.Int("value", rating.Value),
		zap.Bool("inserted", inserted),
	)
	s.respondJSON(w, http.StatusOK, toSummaryResponse(photo.ID, summary, &rating.Value))
}

func (s *Server) handleGetRating(w http.ResponseWriter, r *http.Request) {
	photo, ok := s.lookupPhoto(w, r)
	if !ok {
		return
	}

	summary, err := s.repo.Ratings.Summary(r.Context(), photo.ID)
	if err != nil {
		s.logger.Error("summarize ratings", zap.String("photo_id", photo.ID), zap.Error(err))
		respondText(w, http.StatusInternalServerError, "Failed to fetch rating")
		return
	}

	mine, err := s.raterValue(r.Context(), photo.ID, raterFrom(r))
	if err != nil {
		s.logger.Error("get rater rating", zap.String("photo_id", photo.ID), zap.Error(err))
		respondText(w, http.StatusInternalServerError, "Failed to fetch rating")
		return
	}
	s.respondJSON(w, http.StatusOK, toSummaryResponse(photo.ID, summary, mine))
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	photo, ok := s.lookupPhoto(w, r)
	if !ok {
		return
	}

	raterID := raterFrom(r)
	if raterID == "" {
		respondText(w, http.StatusUnauthorized, "Missing rater identity")
		return
	}

	deleted, err := s.repo.Ratings.Delete(r.Context(), photo.ID, raterID)
	if err != nil {
		s.logger.Error("delete rating", zap.String("photo_id", photo.ID), zap.Error(err))
		respondText(w, http.StatusInternalServerError, "Failed to delete rating")
		return
	}
	if !deleted {
		respondText(w, http.StatusNotFound, "Rating not found")
		return
	}
	s.metrics.RatingsDeleted.Inc()
	w.WriteHeader(http.StatusNoContent)
}

// lookupPhoto resolves the {photoId} parameter, answering 404 itself when
// the photo does not exist.
func (s *Server) lookupPhoto(w http.ResponseWriter, r *http.Request) (domain.Photo, bool) {
	photo, status, message := s.findPhoto(r)
	if status != 0 {
		respondText(w, status, message)
		return domain.Photo{}, false
	}
	return photo, true
}

// findPhoto returns the photo named by {photoId}, or a non-zero status and
// message describing why it cannot be used.
func (s *Server) findPhoto(r *http.Request) (domain.Photo, int, string) {
	photoID := chi.URLParam(r, "photoId")
	if photoID == "" {
		return domain.Photo{}, http.StatusBadRequest, "Missing photo id"
	}

	photo, err := s.repo.Photos.Get(r.Context(), photoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Photo{}, http.StatusNotFound, "Photo not found"
		}
		s.logger.Error("fetch photo for rating", zap.String("photo_id", photoID), zap.Error(err))
		return domain.Photo{}, http.StatusInternalServerError, "Failed to process rating"
	}
	return photo, 0, ""
}

// rejectRating answers a rating write with a plain-text error. Client errors
// count as rejected submissions.
func (s *Server) rejectRating(w http.ResponseWriter, status int, message string) {
	if status < http.StatusInternalServerError {
		s.metrics.RatingsSubmitted.WithLabelValues(metrics.ResultRejected).Inc()
	}
	respondText(w, status, message)
}

// ratingViolation returns the user-facing reason a rating is rejected, or ""
// when it is acceptable.
func (s *Server) ratingViolation(req ratingRequest) string {
	if err := s.validate.Struct(req); err != nil {
		return "Rating value is required"
	}
	rule := fmt.Sprintf("min=%d,max=%d", s.cfg.RatingMin, s.cfg.RatingMax)
	if err := s.validate.Var(*req.Value, rule); err != nil {
		return fmt.Sprintf("Rating must be between %d and %d", s.cfg.RatingMin, s.cfg.RatingMax)
	}
	return ""
}

func (s *Server) raterValue(ctx context.Context, photoID, raterID string) (*int, error) {
	if raterID == "" {
		return nil, nil
	}
	rating, err := s.repo.Ratings.Get(ctx, photoID, raterID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rating.Value, nil
}

func raterFrom(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(raterHeader))
}

func toSummaryResponse(photoID string, summary domain.RatingSummary, mine *int) ratingSummaryResponse {
	return ratingSummaryResponse{
		PhotoID:  photoID,
		Average:  roundToTwoDecimals(summary.Average),
		Count:    summary.Count,
		MyRating: mine,
	}
}

func roundToTwoDecimals(value float64) float64 {
	return math.Round(value*100) / 100
}
