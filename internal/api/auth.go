package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/visadesk/internal/model"
)

// loginResponse is returned by a successful sign-in.
type loginResponse struct {
	Access  string     `json:"access"`
	Refresh string     `json:"refresh"`
	User    model.User `json:"user"`
}

// Login exchanges credentials for a token pair and the current user.
// Wrong credentials surface as an AuthError carrying the server message.
func (c *Client) Login(ctx context.Context, email, password string) (model.Tokens, *model.User, error) {
	body := map[string]string{
		"email":    email,
		"password": password,
	}

	var result loginResponse
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/login/",
		body:      body,
		result:    &result,
		anonymous: true,
	})
	if err != nil {
		return model.Tokens{}, nil, err
	}
	if result.Access == "" || result.Refresh == "" {
		return model.Tokens{}, nil, fmt.Errorf("login response is missing tokens")
	}
	return model.Tokens{Access: result.Access, Refresh: result.Refresh}, &result.User, nil
}

// RefreshAccessToken exchanges a refresh token for a new token pair. The
// API may rotate the refresh token; when it does not, the returned pair
// keeps the one passed in.
func (c *Client) RefreshAccessToken(ctx context.Context, refresh string) (model.Tokens, error) {
	var result struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/token/refresh/",
		body:      map[string]string{"refresh": refresh},
		result:    &result,
		anonymous: true,
	})
	if err != nil {
		return model.Tokens{}, err
	}
	if result.Access == "" {
		return model.Tokens{}, fmt.Errorf("refresh response is missing the access token")
	}

	tokens := model.Tokens{Access: result.Access, Refresh: result.Refresh}
	if tokens.Refresh == "" {
		tokens.Refresh = refresh
	}
	return tokens, nil
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.Get(ctx, "/auth/me/", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
