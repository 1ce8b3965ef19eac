package services

import (
	"context"

	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/pkg/password"
	"bux-api/internal/pkg/token"
	"bux-api/internal/repository"

	"github.com/google/uuid"
)

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

type UpdateUserInput struct {
	Name     string
	Email    string
	Password string
}

type UserService interface {
	// Create stores a new account with its credential and an API key bound to origin.
	Create(ctx context.Context, input CreateUserInput, origin string) (*models.User, *token.Issued, error)
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Update changes profile fields. Only the account owner or an admin may do it.
	Update(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateUserInput) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userService struct {
	userRepo      repository.UserRepository
	apiKeyService APIKeyService
	authService   AuthService
	cache         CacheService
}

// NewUserService takes the book cache because cached book listings embed
// reader records.
func NewUserService(userRepo repository.UserRepository, apiKeyService APIKeyService, authService AuthService, cache CacheService) UserService {
	return &userService{
		userRepo:      userRepo,
		apiKeyService: apiKeyService,
		authService:   authService,
		cache:         cache,
	}
}

func (s *userService) Create(ctx context.Context, input CreateUserInput, origin string) (*models.User, *token.Issued, error) {
	if _, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, nil, errors.New(errors.ErrAlreadyExists, "User already registered.")
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, nil, err
	}

	salt, hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to hash password")
	}

	user := &models.User{
		Name:    input.Name,
		Email:   input.Email,
		Salt:    salt,
		Hash:    hash,
		IsAdmin: input.IsAdmin,
	}
	if _, err := s.apiKeyService.IssueBinding(user, origin); err != nil {
		return nil, nil, errors.Wrap(err, "failed to issue API key")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	issued, err := s.authService.IssueToken(user)
	if err != nil {
		return user, nil, err
	}
	return user, issued, nil
}

func (s *userService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) Update(ctx context.Context, actor *models.User, id uuid.UUID, input UpdateUserInput) (*models.User, error) {
	if actor == nil || (actor.ID != id && !actor.IsAdmin) {
		return nil, errors.New(errors.ErrForbidden, "Access denied.")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != user.Email {
		if other, err := s.userRepo.GetByEmail(ctx, input.Email); err == nil && other.ID != user.ID {
			return nil, errors.New(errors.ErrAlreadyExists, "Email already in use.")
		} else if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	user.Name = input.Name
	user.Email = input.Email
	if input.Password != "" && !password.Verify(input.Password, user.Hash, user.Salt) {
		salt, hash, err := password.Hash(input.Password)
		if err != nil {
			return nil, errors.Wrap(err, "failed to hash password")
		}
		user.Salt = salt
		user.Hash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	invalidateBooks(ctx, s.cache)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Deleting a user removes their readings as well.
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return nil, err
	}
	invalidateBooks(ctx, s.cache)
	return user, nil
}
