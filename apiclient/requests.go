package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-internship-session/credentials"
	"github.com/jrsteele09/go-internship-session/users"
)

// envelope is the {"result": ...} wrapper the backend puts around payloads.
type envelope[T any] struct {
	Result T `json:"result"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	APIToken     string `json:"apiToken"`
}

// Registration is the payload of a new account request. The backend mails
// the initial password.
type Registration struct {
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Surname      string  `json:"surname"`
	DepartmentID *string `json:"departmentId,omitempty"`
}

// PasswordReset completes a forgot-password flow.
type PasswordReset struct {
	Email           string `json:"email"`
	Token           string `json:"token"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

// ErrNoToken is returned when a login succeeds without handing out a token.
var ErrNoToken = errors.New("login response carried no access token")

// Login exchanges an identifier and secret for a credential. It does not
// store the credential.
func (c *Client) Login(ctx context.Context, identifier, secret string) (credentials.Credential, error) {
	var resp envelope[loginResult]
	err := c.Do(ctx, http.MethodPost, c.endpoints.Login, loginRequest{Email: identifier, Password: secret}, &resp)
	if err != nil {
		return credentials.Credential{}, err
	}

	accessToken := resp.Result.AccessToken
	if accessToken == "" {
		accessToken = resp.Result.Token
	}
	if accessToken == "" {
		return credentials.Credential{}, ErrNoToken
	}

	return credentials.Credential{
		AccessToken:  accessToken,
		RefreshToken: resp.Result.RefreshToken,
		APIToken:     resp.Result.APIToken,
	}, nil
}

func (c *Client) Register(ctx context.Context, registration Registration) error {
	return c.Do(ctx, http.MethodPost, c.endpoints.Register, registration, nil)
}

// UserInfo fetches the profile of the authenticated user.
func (c *Client) UserInfo(ctx context.Context) (*users.User, error) {
	var resp envelope[*users.User]
	if err := c.Do(ctx, http.MethodGet, c.endpoints.UserInfo, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, errors.New("user info response carried no profile")
	}
	return resp.Result, nil
}

// UpdateUser submits a partial profile update for the user with id.
func (c *Client) UpdateUser(ctx context.Context, id string, update users.ProfileUpdate) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("[Client.UpdateUser] user id is required")
	}
	path := strings.ReplaceAll(c.endpoints.UserUpdate, userIDPlaceholder, url.PathEscape(id))
	return c.Do(ctx, http.MethodPut, path, update, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Do(ctx, http.MethodPost, c.endpoints.ForgotPassword, forgotPasswordRequest{Email: email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, reset PasswordReset) error {
	return c.Do(ctx, http.MethodPost, c.endpoints.ResetPassword, reset, nil)
}
