package session_test

import (
	"context"
	"errors"
	"testing"

	memcredstore "github.com/rideshare-app/rideshare-client/internal/adapters/memory/credstore"
	memgateway "github.com/rideshare-app/rideshare-client/internal/adapters/memory/gateway"
	"github.com/rideshare-app/rideshare-client/internal/app/session"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	gatewayport "github.com/rideshare-app/rideshare-client/internal/ports/out/gateway"
)

func newService() (*session.Service, *memgateway.Client, *memcredstore.Store) {
	gw := memgateway.NewClient()
	creds := memcredstore.NewStore()
	return session.NewService(gw, creds, logger.NewNop()), gw, creds
}

func validInput() session.RegisterInput {
	return session.RegisterInput{
		Email:    "rider@example.com",
		Age:      28,
		Gender:   "Female",
		Password: "longenough",
	}
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()
	svc, gw, _ := newService()

	err := svc.Register(context.Background(), session.RegisterInput{
		Email:    "not-an-email",
		Age:      0,
		Gender:   "other",
		Password: "short",
	})

	var se *session.Error
	if !errors.As(err, &se) {
		t.Fatalf("Register = %v, want *session.Error", err)
	}
	if se.Status != 422 || se.Code != "VALIDATION_ERROR" {
		t.Fatalf("got status=%d code=%q, want 422 VALIDATION_ERROR", se.Status, se.Code)
	}
	for _, field := range []string{"email", "age", "gender", "password"} {
		if _, ok := se.Details[field]; !ok {
			t.Errorf("missing validation detail for %q", field)
		}
	}
	if gw.TotalCalls() != 0 {
		t.Fatalf("validation failure must not reach the gateway, saw %d calls", gw.TotalCalls())
	}
}

func TestRegisterConflict(t *testing.T) {
	t.Parallel()
	svc, gw, _ := newService()
	gw.RegisterAccountFn = func(context.Context, gatewayport.RegisterAccountInput) (string, error) {
		return "Account already exists", nil
	}

	err := svc.Register(context.Background(), validInput())

	var se *session.Error
	if !errors.As(err, &se) {
		t.Fatalf("Register = %v, want *session.Error", err)
	}
	if se.Status != 409 || se.Code != "ACCOUNT_EXISTS" {
		t.Fatalf("got status=%d code=%q, want 409 ACCOUNT_EXISTS", se.Status, se.Code)
	}
	if gw.Calls("Login") != 0 {
		t.Fatal("conflicting registration must not attempt a login")
	}
}

func TestRegisterChainsLogin(t *testing.T) {
	t.Parallel()
	svc, gw, creds := newService()

	if err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if gw.Calls("RegisterAccount") != 1 || gw.Calls("Login") != 1 {
		t.Fatalf("calls = register:%d login:%d, want 1 and 1",
			gw.Calls("RegisterAccount"), gw.Calls("Login"))
	}
	if tok, _ := creds.Get(context.Background()); tok != "test-token" {
		t.Fatalf("stored token = %q, want the login result", tok)
	}
}

func TestLoginStoresToken(t *testing.T) {
	t.Parallel()
	svc, gw, creds := newService()
	gw.LoginFn = func(_ context.Context, username, password string) (gatewayport.Credentials, error) {
		if username != "rider@example.com" || password != "pw-123456" {
			t.Errorf("login forwarded (%q, %q)", username, password)
		}
		return gatewayport.Credentials{AccessToken: "abc", TokenType: "bearer"}, nil
	}

	if err := svc.Login(context.Background(), " rider@example.com ", "pw-123456"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if tok, _ := creds.Get(context.Background()); tok != "abc" {
		t.Fatalf("stored token = %q, want %q", tok, "abc")
	}
}

func TestLoginFailureLeavesStoreEmpty(t *testing.T) {
	t.Parallel()
	svc, gw, creds := newService()
	wantErr := &gatewayport.Error{Kind: gatewayport.KindUnauthorized, Status: 401, Message: "bad credentials"}
	gw.LoginFn = func(context.Context, string, string) (gatewayport.Credentials, error) {
		return gatewayport.Credentials{}, wantErr
	}

	err := svc.Login(context.Background(), "rider@example.com", "wrong-password")
	if !gatewayport.IsUnauthorized(err) {
		t.Fatalf("Login = %v, want unauthorized", err)
	}
	if tok, _ := creds.Get(context.Background()); tok != "" {
		t.Fatalf("stored token = %q, want empty after failed login", tok)
	}
}

func TestLogoutClearsCredential(t *testing.T) {
	t.Parallel()
	svc, _, creds := newService()
	ctx := context.Background()
	_ = creds.Set(ctx, "tok")

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if tok, _ := creds.Get(ctx); tok != "" {
		t.Fatalf("stored token = %q, want empty after logout", tok)
	}
}
