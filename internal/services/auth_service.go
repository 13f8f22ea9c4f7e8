// Package services implements the business logic between HTTP handlers and
// repositories: credential verification, registration rules and password
// hashing.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jleboube/12U-form/internal/models"
	"github.com/jleboube/12U-form/internal/repository"
	"github.com/jleboube/12U-form/internal/security"
)

// ErrInvalidCredentials is returned for both unknown emails and wrong
// passwords, so a caller cannot tell which accounts exist.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrPendingApproval means the credentials were correct but the account has
// not been approved by an admin yet.
var ErrPendingApproval = errors.New("account pending approval")

// ErrRegistrationCode means the supplied registration code does not match the
// selected team's code.
var ErrRegistrationCode = errors.New("invalid registration code for this team")

// ValidationError carries a client-safe message for a rejected input field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AuthService handles login, registration and password hashing.
type AuthService struct {
	userRepo   *repository.UserRepository
	groupRepo  *repository.GroupRepository
	validator  *security.ValidationService
	bcryptCost int
}

// NewAuthService creates an AuthService using the given security settings.
func NewAuthService(config *security.SecurityConfig) *AuthService {
	return &AuthService{
		userRepo:   repository.NewUserRepository(),
		groupRepo:  repository.NewGroupRepository(),
		validator:  security.NewValidationService(config),
		bcryptCost: config.BcryptCost,
	}
}

// Authenticate verifies email and password against the active user record.
//
// It returns ErrInvalidCredentials for both an unknown email and a wrong
// password. When the password matches but the account is still awaiting
// admin approval, it returns the user together with ErrPendingApproval so
// the handler can respond with the pending status.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.FindActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// Constant-time comparison via bcrypt.
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsApproved {
		return user, ErrPendingApproval
	}

	return user, nil
}

// Register validates a registration request, enforces the team's
// registration-code policy and creates the user. New users in a code-gated
// or non-public team start unapproved; teams open to public registration
// approve immediately.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := s.validator.ValidateEmail(req.Email); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := s.validator.ValidatePassword(req.Password); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := s.validator.ValidatePersonName("first name", req.FirstName); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if err := s.validator.ValidatePersonName("last name", req.LastName); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	exists, err := s.userRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, repository.ErrEmailExists
	}

	group, err := s.groupRepo.FindByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	if group.RequiresCode() {
		supplied := strings.TrimSpace(req.RegistrationCode)
		if supplied == "" || supplied != *group.RegistrationCode {
			return nil, ErrRegistrationCode
		}
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		GroupID:      group.ID,
		GroupName:    group.Name,
		IsApproved:   group.AllowPublicRegistration,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// HashPassword hashes a plaintext password with bcrypt at the configured
// cost. The returned string embeds salt and cost and is safe to store.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	return string(hash), err
}
