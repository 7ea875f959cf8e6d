package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/photo-ratings/internal/domain"
	"github.com/Clark-Hu/photo-ratings/internal/repository"
)

type photoCreateRequest struct {
	Title string `json:"title" validate:"required,max=200"`
}

type photoResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerID   string    `json:"ownerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleCreatePhoto(w http.ResponseWriter, r *http.Request) {
	if !s.verifyBearer(r.Header.Get("Authorization")) {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return
	}

	var req photoCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validate.Struct(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required and at most 200 characters")
		return
	}

	photo, err := s.repo.Photos.Create(r.Context(), req.Title, raterFrom(r))
	if err != nil {
		s.logger.Error("create photo", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create photo")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/photos/%s", url.PathEscape(photo.ID)))
	s.respondJSON(w, http.StatusCreated, toPhotoResponse(photo))
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	photo, err := s.repo.Photos.Get(r.Context(), chi.URLParam(r, "photoId"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		s.logger.Error("get photo", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch photo")
		return
	}
	s.respondJSON(w, http.StatusOK, toPhotoResponse(photo))
}

func toPhotoResponse(photo domain.Photo) photoResponse {
	return photoResponse{
		ID:        photo.ID,
		Title:     photo.Title,
		OwnerID:   photo.OwnerID,
		CreatedAt: photo.CreatedAt,
	}
}
