package handlers

import (
	"fmt"
	"net/http"
	"time"

	"bux-api/internal/services"

	"github.com/gorilla/mux"
)

type GalleryHandler struct {
	imageService services.ImageService
}

func NewGalleryHandler(imageService services.ImageService) *GalleryHandler {
	return &GalleryHandler{imageService: imageService}
}

type imageResponse struct {
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func (h *GalleryHandler) toResponse(r *http.Request, info services.ImageInfo) imageResponse {
	url := h.imageService.URL(info.Name)
	if url == "" {
		url = requestBaseURL(r) + "/images/" + info.Name
	}
	return imageResponse{Name: info.Name, URL: url, Size: info.Size, ModifiedAt: info.ModifiedAt}
}

// List returns every stored image with its public URL.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.imageService.List(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	resp := make([]imageResponse, 0, len(images))
	for _, info := range images {
		resp = append(resp, h.toResponse(r, info))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *GalleryHandler) Get(w http.ResponseWriter, r *http.Request) {
	info, err := h.imageService.Stat(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h.toResponse(r, *info))
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if err := h.imageService.Delete(r.Context(), name); err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Msg:     fmt.Sprintf("Image %s deleted successfully.", name),
	})
}
