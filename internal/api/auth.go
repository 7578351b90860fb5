package api

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/nhle/taskclient/internal/model"
)

// Login exchanges credentials for a bearer token using the password grant
// (POST /token, form-encoded username and password).
func (c *Client) Login(ctx context.Context, email, password string) (*oauth2.Token, error) {
	conf := oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.plain)
	tok, err := conf.PasswordCredentialsToken(ctx, email, password)
	if err == nil {
		return tok, nil
	}

	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return nil, &NetworkError{Op: "POST /token", Err: err}
	}

	status := 0
	if re.Response != nil {
		status = re.Response.StatusCode
	}
	detail := parseDetail(re.Body)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, &AuthError{StatusCode: status, Message: detail}
	}
	return nil, &ValidationError{StatusCode: status, Detail: detail}
}

// Register creates an account. It does not authenticate.
func (c *Client) Register(ctx context.Context, reg model.Registration) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, c.plain, http.MethodPost, "/users/", reg, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me returns the profile of the bearer token's owner.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/users/me/", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
