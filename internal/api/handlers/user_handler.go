package handlers

import (
	"net/http"
	"time"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/services"

	"github.com/google/uuid"
)

type UserHandler struct {
	userService  services.UserService
	quotaService services.QuotaService
}

func NewUserHandler(userService services.UserService, quotaService services.QuotaService) *UserHandler {
	return &UserHandler{userService: userService, quotaService: quotaService}
}

type createUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"required,min=8,max=26,complexity"`
	IsAdmin  bool   `json:"isAdmin"`
}

// updateUserRequest leaves the password unchanged when it is empty.
type updateUserRequest struct {
	Name     string `json:"name" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,min=5,max=255,email"`
	Password string `json:"password" validate:"omitempty,min=8,max=26,complexity"`
}

type createUserResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// userResponse never carries the credential or the API key.
type userResponse struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	IsAdmin       bool       `json:"isAdmin"`
	Host          string     `json:"host"`
	LastLogonTime *time.Time `json:"lastLogonTime,omitempty"`
	PrevLogonTime *time.Time `json:"prevLogonTime,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		IsAdmin:       u.IsAdmin,
		Host:          u.Host,
		LastLogonTime: u.LastLogonTime,
		PrevLogonTime: u.PrevLogonTime,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

var errUserNotFound = errors.New(errors.ErrNotFound, "The user with the given ID was not found.")

func notFoundAs(err, replacement error) error {
	if errors.Is(err, errors.ErrNotFound) {
		return replacement
	}
	return err
}

// List returns every user sorted by name.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// Create registers a user and binds a new API key to the request Origin.
// The token and key are returned in headers.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	user, issued, err := h.userService.Create(r.Context(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		IsAdmin:  req.IsAdmin,
	}, r.Header.Get("Origin"))
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	w.Header().Set("X-Auth-Token", issued.Token)
	w.Header().Set("X-Api-Key", user.APIKey)
	respondWithJSON(w, http.StatusCreated, createUserResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

// Me returns the user behind the bearer token.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	current, ok := services.UserFromContext(r.Context())
	if !ok {
		respondWithError(w, r, errors.New(errors.ErrUnauthorized, "You are not authorized"))
		return
	}

	user, err := h.userService.GetByID(r.Context(), current.ID)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errUserNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// Usage reports today's quota consumption for the key used on this request.
func (h *UserHandler) Usage(w http.ResponseWriter, r *http.Request) {
	client, ok := services.APIClientFromContext(r.Context())
	if !ok {
		respondWithError(w, r, errors.New(errors.ErrForbidden, "Not authorized."))
		return
	}

	stats, err := h.quotaService.Usage(r.Context(), client)
	if err != nil {
		respondWithError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errUserNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

// Update is allowed for the account owner and for admins.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondWithError(w, r, err)
		return
	}

	actor, _ := services.UserFromContext(r.Context())
	user, err := h.userService.Update(r.Context(), actor, id, services.UpdateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errUserNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondWithError(w, r, err)
		return
	}

	user, err := h.userService.Delete(r.Context(), id)
	if err != nil {
		respondWithError(w, r, notFoundAs(err, errUserNotFound))
		return
	}
	respondWithJSON(w, http.StatusOK, toUserResponse(user))
}
