package handlers

import (
	"net/http"

	"bux-api/internal/pkg/errors"
	"bux-api/internal/services"

	"github.com/google/uuid"
)

type ReadingHandler struct {
	readingService services.ReadingService
}

func NewReadingHandler(readingService services.ReadingService) *ReadingHandler {
	return &ReadingHandler{readingService: readingService}
}

type readingRequest struct {
	UserID      string `json:"users_id" validate:"required,uuid"`
	BookID      string `json:"books_id" validate:"required,uuid"`
	CurrentPage int    `json:"current_page" validate:"min=0"`
	TimeSpent   int    `json:"time_spent" validate:"min=0"`
	Rating      int    `json:"rating" validate:"min=0"`
	Comments    string `json:"comments"`
}

// input assumes the ids already passed validation.
func (req readingRequest) input() services.ReadingInput {
	return services.ReadingInput{
		UserID:      uuid.MustParse(req.UserID),
		BookID:      uuid.MustParse(req.BookID),
		CurrentPage: req.CurrentPage,
		TimeSpent:   req.TimeSpent,
		Rating:      req.Rating,
		Comments:    req.Comments,
	}
}

var errReadingNotFound = errors.New(errors.ErrNotFound, "The reading with the given ID was not found.")

// List returns readings, most recently updated first. $expand=* embeds book and user.
func (h *ReadingHandler) List(w http.ResponseWriter, r *http.Request) {
	expand, err := parseExpand(r, false)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	readings, err := h.readingService.List(r.Context(), expand)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, readings)
}

func (h *ReadingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req readingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	reading, err := h.readingService.Create(r.Context(), req.input())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}

func (h *ReadingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	reading, err := h.readingService.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errReadingNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}

func (h *ReadingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req readingRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	reading, err := h.readingService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errReadingNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}

func (h *ReadingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	reading, err := h.readingService.Delete(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errReadingNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, reading)
}
