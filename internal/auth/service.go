package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillfeed/quillfeed/internal/shared"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Service wraps registration and authentication business rules.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Username        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=8"`
	PasswordConfirm string `validate:"required,eqfield=Password"`
}

// Register validates the input, hashes the password and persists the user.
// Duplicate username or email surfaces as ErrUsernameTaken or ErrEmailTaken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if errs := s.validateRegister(in); len(errs) > 0 {
		return 0, errs
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.repo.CreateUser(ctx, NewUser{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: string(hash),
	})
}

// Authenticate validates username/password credentials. It returns
// shared.ErrInvalidCredentials for every failure mode so callers cannot
// tell an unknown username from a wrong password.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// RegisterSession persists the session metadata for auditing.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

// validateRegister maps validator tags to user-visible field messages.
func (s *Service) validateRegister(in RegisterInput) shared.FieldErrors {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	errs := shared.FieldErrors{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs["general"] = "Invalid form submission"
		return errs
	}
	for _, fieldErr := range fieldErrs {
		switch fieldErr.StructField() {
		case "FirstName":
			errs["first_name"] = "First name is required"
		case "LastName":
			errs["last_name"] = "Last name is required"
		case "Username":
			errs["username"] = "Username is required"
		case "Email":
			if fieldErr.Tag() == "email" {
				errs["email"] = "Enter a valid email address"
			} else {
				errs["email"] = "Email is required"
			}
		case "Password":
			if fieldErr.Tag() == "min" {
				errs["password"] = fmt.Sprintf("Password must be at least %d characters", MinPasswordLength)
			} else {
				errs["password"] = "Password is required"
			}
		case "PasswordConfirm":
			if fieldErr.Tag() == "eqfield" {
				errs["password2"] = "Passwords must match"
			} else {
				errs["password2"] = "Confirm your password"
			}
		}
	}
	return errs
}
