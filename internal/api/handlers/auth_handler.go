package handlers

import (
	"net/http"
	"time"

	"bux-api/internal/services"
)

// AuthHandler handles login requests
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// loginRequest represents the structure of a login request
type loginRequest struct {
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=5,max=255"`
}

// loginResponse represents the structure of a successful login
type loginResponse struct {
	Success       bool       `json:"success"`
	Token         string     `json:"token"`
	ExpiresIn     *time.Time `json:"expiresIn"`
	Name          string     `json:"name"`
	PrevLogonTime *time.Time `json:"prevLogonTime"`
	IsAdmin       bool       `json:"isAdmin"`
}

// Login godoc
// @Summary Authenticate a user
// @Description Authenticate a user with the provided email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param login body loginRequest true "Login details"
// @Success 200 {object} loginResponse
// @Failure 400 {object} messageResponse "Invalid request body"
// @Failure 401 {object} messageResponse "Invalid email or password."
// @Failure 403 {object} messageResponse "Too many invalid authentication attempts."
// @Router /auth [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, loginResponse{
		Success:       true,
		Token:         result.Token,
		ExpiresIn:     result.ExpiresAt,
		Name:          result.User.Name,
		PrevLogonTime: result.PrevLogonTime,
		IsAdmin:       result.User.IsAdmin,
	})
}
