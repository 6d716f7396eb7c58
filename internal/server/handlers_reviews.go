package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rubiojr/fuelfinder/pkg/api"
)

func (s *Server) handleReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if _, err := s.Store.Station(ctx, id); err != nil {
		s.writeError(w, r, err)
		return
	}

	reviews, err := s.Store.ListReviews(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	summary, err := s.Store.ReviewSummary(ctx, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, api.ReviewList{Reviews: reviews, Summary: *summary})
}

// handleAddReview stores a review. The reviewer defaults to the name of
// the logged in user.
func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var review api.NewReview
	if err := decodeJSON(r, &review); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(review.UserName) == "" {
		review.UserName = sessionFromContext(ctx).UserName
	}

	created, err := s.Store.AddReview(ctx, chi.URLParam(r, "id"), review)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, created)
}
