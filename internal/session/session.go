// Package session owns the authenticated state of the client: the bearer
// token, its durable copy in the keyring, and the identity it resolves to.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/nhle/taskclient/internal/api"
	"github.com/nhle/taskclient/internal/credential"
	"github.com/nhle/taskclient/internal/model"
)

// ErrIdentity marks a failed identity fetch. The underlying API error is
// wrapped alongside it.
var ErrIdentity = errors.New("fetching identity")

// TokenStore is the durable key-value storage for the bearer token.
type TokenStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Claims are the unverified fields read from a JWT bearer token. They are
// only used for display; the identity fetch stays authoritative.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Session holds the current token and user. The user is set only after a
// successful identity fetch with the current token.
//
// Mutating methods are called from the UI goroutine; Token is also read by
// HTTP transports running in command goroutines, hence the lock.
type Session struct {
	mu     sync.RWMutex
	token  string
	user   *model.User
	claims *Claims

	store  TokenStore
	client *api.Client
}

// New creates a logged-out session and the API client that authenticates
// with it.
func New(store TokenStore, baseURL string, timeout time.Duration) *Session {
	s := &Session{store: store}
	s.client = api.NewClient(baseURL, s, timeout)
	return s
}

// Client returns the API client bound to this session's token.
func (s *Session) Client() *api.Client {
	return s.client
}

// Token implements oauth2.TokenSource. It fails with api.ErrUnauthorized
// while logged out.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return nil, api.ErrUnauthorized
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

// User returns a copy of the authenticated user, or nil.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Authenticated reports whether a validated user is present.
func (s *Session) Authenticated() bool {
	return s.User() != nil
}

// Claims returns the decoded token claims, or nil for opaque tokens.
func (s *Session) Claims() *Claims {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.claims == nil {
		return nil
	}
	c := *s.claims
	return &c
}

// Login exchanges credentials for a token, stores it durably and then
// resolves the identity.
func (s *Session) Login(ctx context.Context, email, password string) (*model.User, error) {
	tok, err := s.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(credential.TokenKey, tok.AccessToken); err != nil {
		log.Printf("session: persisting token: %v", err)
	}
	s.setToken(tok.AccessToken)

	return s.FetchIdentity(ctx)
}

// Register creates an account. The caller logs in afterwards.
func (s *Session) Register(ctx context.Context, name, email, password string) error {
	_, err := s.client.Register(ctx, model.Registration{
		Name:     name,
		Email:    email,
		Password: password,
	})
	return err
}

// FetchIdentity resolves the current token to a user. Any failure
// invalidates the whole session.
func (s *Session) FetchIdentity(ctx context.Context) (*model.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		s.Logout()
		return nil, fmt.Errorf("%w: %w", ErrIdentity, err)
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()

	u := *user
	return &u, nil
}

// Restore revalidates a token persisted by an earlier run. It returns
// (nil, nil) when no token is stored.
func (s *Session) Restore(ctx context.Context) (*model.User, error) {
	tok, err := s.store.Get(credential.TokenKey)
	if err != nil {
		log.Printf("session: reading stored token: %v", err)
		return nil, nil
	}
	if tok == "" {
		return nil, nil
	}

	s.setToken(tok)
	return s.FetchIdentity(ctx)
}

// Logout forgets the token locally. There is no server-side revocation.
func (s *Session) Logout() {
	if err := s.store.Delete(credential.TokenKey); err != nil {
		log.Printf("session: deleting stored token: %v", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.claims = nil
	s.mu.Unlock()
}

func (s *Session) setToken(tok string) {
	claims := decodeClaims(tok)

	s.mu.Lock()
	s.token = tok
	s.user = nil
	s.claims = claims
	s.mu.Unlock()
}

// decodeClaims reads sub/exp without verifying the signature.
func decodeClaims(tok string) *Claims {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &rc); err != nil {
		return nil
	}

	c := &Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c
}
