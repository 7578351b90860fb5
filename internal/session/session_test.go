package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nhle/taskclient/internal/api"
	"github.com/nhle/taskclient/internal/credential"
	"github.com/nhle/taskclient/internal/testserver"
	"github.com/nhle/taskclient/tests/testutil"
)

func newSession(t *testing.T) (*Session, *credential.Store, *testserver.Server) {
	t.Helper()

	srv, url := testutil.NewTestServer(t)
	testutil.SeedUser(t, srv, "Ada Lovelace", "ada@example.com", "s3cret")

	store := credential.NewStore(testutil.NewTestKeyring())
	return New(store, url, 5*time.Second), store, srv
}

func TestLoginStoresTokenAndIdentity(t *testing.T) {
	s, store, _ := newSession(t)

	user, err := s.Login(context.Background(), "ada@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Name != "Ada Lovelace" {
		t.Errorf("user name = %q", user.Name)
	}
	if !s.Authenticated() {
		t.Error("session should be authenticated")
	}

	stored, _ := store.Get(credential.TokenKey)
	if stored == "" {
		t.Fatal("token was not persisted")
	}

	claims := s.Claims()
	if claims == nil || claims.Subject != "ada@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if time.Until(claims.ExpiresAt) <= 0 {
		t.Errorf("token already expired at %v", claims.ExpiresAt)
	}
}

func TestLoginInvalidCredentialsStaysLoggedOut(t *testing.T) {
	s, store, _ := newSession(t)

	_, err := s.Login(context.Background(), "ada@example.com", "nope")
	if !api.IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if got := api.Message(err, "Login failed"); got != "Incorrect email or password" {
		t.Errorf("Message = %q", got)
	}
	if s.Authenticated() {
		t.Error("session should stay logged out")
	}
	if stored, _ := store.Get(credential.TokenKey); stored != "" {
		t.Errorf("token stored after failed login: %q", stored)
	}
	if _, err := s.Token(); !errors.Is(err, api.ErrUnauthorized) {
		t.Errorf("Token() err = %v", err)
	}
}

func TestRegisterDoesNotAuthenticate(t *testing.T) {
	s, _, _ := newSession(t)

	if err := s.Register(context.Background(), "Bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if s.Authenticated() {
		t.Error("registration must not log in")
	}
	if _, err := s.Login(context.Background(), "bob@example.com", "pw"); err != nil {
		t.Fatalf("Login after register: %v", err)
	}
}

func TestRestoreWithValidToken(t *testing.T) {
	s, store, srv := newSession(t)

	tok, err := srv.IssueToken("ada@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if err := store.Set(credential.TokenKey, tok); err != nil {
		t.Fatalf("Set: %v", err)
	}

	user, err := s.Restore(context.Background())
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if user == nil || user.Email != "ada@example.com" {
		t.Fatalf("restored user = %+v", user)
	}
}

func TestRestoreWithExpiredTokenLogsOut(t *testing.T) {
	s, store, srv := newSession(t)

	tok, err := srv.IssueToken("ada@example.com", -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	_ = store.Set(credential.TokenKey, tok)

	user, err := s.Restore(context.Background())
	if err == nil || user != nil {
		t.Fatalf("Restore = %+v, %v; want failure", user, err)
	}
	if !errors.Is(err, ErrIdentity) || !api.IsAuthError(err) {
		t.Errorf("err = %v; want identity failure wrapping an auth error", err)
	}
	if s.Authenticated() {
		t.Error("session should be logged out")
	}
	if stored, _ := store.Get(credential.TokenKey); stored != "" {
		t.Error("rejected token should be removed from storage")
	}
}

func TestRestoreWithoutToken(t *testing.T) {
	s, _, srv := newSession(t)

	user, err := s.Restore(context.Background())
	if user != nil || err != nil {
		t.Fatalf("Restore = %+v, %v; want nil, nil", user, err)
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("expected no network calls, got %d", n)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	s, store, srv := newSession(t)

	if _, err := s.Login(context.Background(), "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	srv.ResetRequests()

	s.Logout()

	if s.Authenticated() || s.User() != nil || s.Claims() != nil {
		t.Error("session state survived logout")
	}
	if stored, _ := store.Get(credential.TokenKey); stored != "" {
		t.Error("stored token survived logout")
	}
	if n := len(srv.Requests()); n != 0 {
		t.Errorf("logout made %d network calls", n)
	}
}

func TestDecodeClaimsOpaqueToken(t *testing.T) {
	if c := decodeClaims("not-a-jwt"); c != nil {
		t.Errorf("decodeClaims = %+v, want nil", c)
	}
}
