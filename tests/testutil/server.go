package testutil

import (
	"net/http/httptest"
	"testing"

	"github.com/99designs/keyring"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/testserver"
)

// NewTestServer starts the in-memory task API and returns it with its base
// URL. The HTTP server is shut down when the test completes.
func NewTestServer(t *testing.T) (*testserver.Server, string) {
	t.Helper()

	srv := testserver.New(nil)
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	return srv, hs.URL
}

// SeedUser creates an account on srv or fails the test.
func SeedUser(t *testing.T, srv *testserver.Server, name, email, password string) model.User {
	t.Helper()

	u, err := srv.CreateUser(name, email, password)
	if err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return u
}

// NewTestKeyring returns an in-memory keyring.
func NewTestKeyring() keyring.Keyring {
	return keyring.NewArrayKeyring(nil)
}
