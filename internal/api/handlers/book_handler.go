package handlers

import (
	"fmt"
	"net/http"

	"bux-api/internal/pkg/errors"
	"bux-api/internal/services"
)

type BookHandler struct {
	bookService    services.BookService
	imageService   services.ImageService
	maxUploadBytes int64
}

func NewBookHandler(bookService services.BookService, imageService services.ImageService, maxUploadBytes int64) *BookHandler {
	return &BookHandler{
		bookService:    bookService,
		imageService:   imageService,
		maxUploadBytes: maxUploadBytes,
	}
}

type bookRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Author      string `json:"author" validate:"required,max=255"`
	ISBN        string `json:"ISBN" validate:"required,min=10,max=20"`
	Description string `json:"description"`
	Pages       int    `json:"pages" validate:"min=0"`
	ImageURL    string `json:"imageURL" validate:"max=1024"`
}

func (req bookRequest) input() services.BookInput {
	return services.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		Description: req.Description,
		Pages:       req.Pages,
		ImageURL:    req.ImageURL,
	}
}

// uploadResponse represents the structure of the upload response
type uploadResponse struct {
	URL string `json:"url"`
}

var errBookNotFound = errors.New(errors.ErrNotFound, "The book with the given ID was not found.")

// List godoc
// @Summary List books
// @Description Lists books by title. $expand=readings embeds readings sorted by pages;
// @Description $expand=* or $expand=readings,users also embeds each reader.
// @Tags books
// @Produce json
// @Param $expand query string false "readings | readings,users | *"
// @Success 200 {array} models.Book
// @Failure 400 {object} messageResponse "Bad Request"
// @Router /books [get]
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	expand, err := parseExpand(r, true)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	books, err := h.bookService.List(r.Context(), expand)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	book, err := h.bookService.Create(r.Context(), req.input())
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	book, err := h.bookService.Get(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errBookNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req bookRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	book, err := h.bookService.Update(r.Context(), id, req.input())
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errBookNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}

// Upload godoc
// @Summary Upload a book cover
// @Description Stores the multipart "file" as-is and points the book's imageURL at it
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Book ID"
// @Param file formData file true "Image to upload"
// @Success 200 {object} uploadResponse
// @Failure 400 {object} messageResponse
// @Failure 404 {object} messageResponse
// @Router /books/upload/{id} [post]
func (h *BookHandler) Upload(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	if _, err := h.bookService.Get(r.Context(), id); err != nil {
		respondWithError(w, r, notFoundAs(err, errBookNotFound))
		return
	}

	// Leave room for the multipart envelope around the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, r, errors.New(errors.ErrBadRequest, fmt.Sprintf("Image file size exceeds the limit of %d bytes.", h.maxUploadBytes)))
			return
		}
		respondWithError(w, r, errors.New(errors.ErrBadRequest, "No files were uploaded."))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, r, errors.New(errors.ErrBadRequest, "No files were uploaded."))
		return
	}
	defer file.Close()

	name, err := h.imageService.Save(r.Context(), header.Filename, file)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	url := h.imageService.URL(name)
	if url == "" {
		url = requestBaseURL(r) + "/images/" + name
	}

	if err := h.bookService.SetImageURL(r.Context(), id, url); err != nil {
		respondWithError(w, r, notFoundAs(err, errBookNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, uploadResponse{URL: url})
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	book, err := h.bookService.Delete(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errBookNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, book)
}
