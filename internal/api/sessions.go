package api

import (
	"context"
	"net/http"
	"net/url"

	perrors "github.com/worksdev/portal/internal/errors"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login starts a session and returns the id of the verification code
// emailed to the user.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	codeID, err := c.doText(ctx, http.MethodPost, "/sessions", credentials{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	if codeID == "" {
		return "", perrors.ErrUnexpectedResponse
	}
	return codeID, nil
}

type verification struct {
	Code string `json:"code"`
}

type verified struct {
	User User `json:"user"`
}

// Verify completes a login with the emailed code. The session cookies in
// the answer are stored in the device store.
func (c *Client) Verify(ctx context.Context, codeID, code string) (*User, error) {
	if codeID == "" {
		return nil, perrors.ErrMissingCodeID
	}

	var out verified
	query := url.Values{"code_id": []string{codeID}}
	if err := c.doJSON(ctx, http.MethodPatch, "/sessions", query, verification{Code: code}, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

type codeRequest struct {
	ID string `json:"id"`
}

// ResendCode asks for a new verification code and returns its id.
func (c *Client) ResendCode(ctx context.Context, codeID string) (string, error) {
	if codeID == "" {
		return "", perrors.ErrMissingCodeID
	}
	return c.doText(ctx, http.MethodPost, "/sessions/verification-code", codeRequest{ID: codeID})
}

// Logout ends the session on the API side.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/sessions", nil, nil, nil)
}
