package session

import (
	"context"
	"net/mail"
	"strings"

	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/credstore"
	"github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

// accountExistsMessage is the conflict message the backend returns verbatim.
const accountExistsMessage = "Account already exists"

type RegisterInput struct {
	Email    string
	Age      int
	Gender   string
	Password string
}

// Service handles account registration, login, and logout. The stored credential
// is written only here; trip cancellation never touches it.
type Service struct {
	gw    gateway.Client
	creds credstore.Store
	log   logger.Logger

	// MinPasswordLen bounds client-side password validation.
	MinPasswordLen int
}

func NewService(gw gateway.Client, creds credstore.Store, log logger.Logger) *Service {
	return &Service{
		gw:             gw,
		creds:          creds,
		log:            log,
		MinPasswordLen: 8,
	}
}

// Register creates an account and, on success, logs the user in so the session
// is usable immediately.
func (s *Service) Register(ctx context.Context, in RegisterInput) error {
	if err := s.validate(in); err != nil {
		return err
	}

	msg, err := s.gw.RegisterAccount(ctx, gateway.RegisterAccountInput{
		Email:    strings.TrimSpace(in.Email),
		Age:      in.Age,
		Gender:   in.Gender,
		Password: in.Password,
	})
	if err != nil {
		return err
	}
	if msg == accountExistsMessage {
		return &Error{Status: 409, Code: "ACCOUNT_EXISTS", Message: accountExistsMessage}
	}

	return s.Login(ctx, in.Email, in.Password)
}

// Login exchanges credentials for a bearer token and persists it.
func (s *Service) Login(ctx context.Context, email, password string) error {
	creds, err := s.gw.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		s.log.Warn("login failed", logger.Error(err))
		return err
	}
	if err := s.creds.Set(ctx, creds.AccessToken); err != nil {
		return err
	}
	s.log.Info("login successful")
	return nil
}

// Logout clears the persisted credential. This is the only path that clears it.
func (s *Service) Logout(ctx context.Context) error {
	return s.creds.Clear(ctx)
}

func (s *Service) validate(in RegisterInput) error {
	details := map[string]any{}

	if _, err := mail.ParseAddress(strings.TrimSpace(in.Email)); err != nil {
		details["email"] = "must be a valid email address"
	}
	if in.Age <= 0 || in.Age > 99 {
		details["age"] = "must be between 1 and 99"
	}
	if in.Gender != "Male" && in.Gender != "Female" {
		details["gender"] = "must be Male or Female"
	}
	if len(in.Password) < s.MinPasswordLen {
		details["password"] = "must be at least 8 characters"
	}

	if len(details) > 0 {
		return &Error{
			Status:  422,
			Code:    "VALIDATION_ERROR",
			Message: "complete all fields; password must be at least 8 characters",
			Details: details,
		}
	}
	return nil
}
