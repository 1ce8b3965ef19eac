package services

import (
	"context"
	"time"

	"bux-api/internal/logger"
	"bux-api/internal/models"
	"bux-api/internal/pkg/errors"
	"bux-api/internal/pkg/password"
	"bux-api/internal/pkg/token"
	"bux-api/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	IssueToken(user *models.User) (*token.Issued, error)
	VerifyToken(ctx context.Context, tokenString string) (*models.User, error)
}

// LoginResult is returned on a successful login. Token carries the "Bearer " prefix.
type LoginResult struct {
	User          *models.User
	Token         string
	ExpiresAt     *time.Time
	PrevLogonTime *time.Time
}

type authService struct {
	userRepo         repository.UserRepository
	tokens           *token.Manager
	maxInvalidLogons int
	now              func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, maxInvalidLogons int) AuthService {
	return &authService{
		userRepo:         userRepo,
		tokens:           tokens,
		maxInvalidLogons: maxInvalidLogons,
		now:              time.Now,
	}
}

var errBadLogin = errors.New(errors.ErrInvalidCredentials, "Invalid email or password.")

func (s *authService) Login(ctx context.Context, email, plaintext string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errBadLogin
		}
		return nil, err
	}

	if s.maxInvalidLogons > 0 && user.InvalidLogons >= s.maxInvalidLogons {
		return nil, errors.New(errors.ErrTooManyAttempts, "Too many invalid authentication attempts.")
	}

	if !password.Verify(plaintext, user.Hash, user.Salt) {
		user.InvalidLogons++
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
		logger.Logger.WithFields(logrus.Fields{
			"user":           user.ID,
			"invalid_logons": user.InvalidLogons,
		}).Warn("Invalid login attempt")
		return nil, errBadLogin
	}

	now := s.now().UTC()
	user.PrevLogonTime = user.LastLogonTime
	user.LastLogonTime = &now
	user.InvalidLogons = 0
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	issued, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		User:          user,
		Token:         "Bearer " + issued.Token,
		ExpiresAt:     issued.ExpiresAt,
		PrevLogonTime: user.PrevLogonTime,
	}, nil
}

func (s *authService) IssueToken(user *models.User) (*token.Issued, error) {
	issued, err := s.tokens.Issue(token.Identity{
		Subject: user.ID.String(),
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token")
	}
	return issued, nil
}

// VerifyToken checks the signature and resolves the subject to a stored user.
// Every failure is reported as ErrUnauthorized.
func (s *authService) VerifyToken(ctx context.Context, tokenString string) (*models.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, errors.New(errors.ErrUnauthorized, "You are not authorized")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, errors.New(errors.ErrUnauthorized, "You are not authorized")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, errors.ErrNotFound) {
			logger.Logger.WithFields(logrus.Fields{
				"error": err,
				"user":  userID,
			}).Error("Token subject lookup failed")
		}
		return nil, errors.New(errors.ErrUnauthorized, "You are not authorized")
	}

	return user, nil
}
