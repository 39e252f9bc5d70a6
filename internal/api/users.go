package api

import (
	"context"
	"fmt"
	"net/http"

	perrors "github.com/worksdev/portal/internal/errors"
)

type keyBody struct {
	Key string `json:"key"`
}

// AdminKey returns the admin's public key (base64 SPKI).
func (c *Client) AdminKey(ctx context.Context) (string, error) {
	var out keyBody
	if err := c.doJSON(ctx, http.MethodGet, "/users/admin-key", nil, nil, &out); err != nil {
		return "", err
	}
	if out.Key == "" {
		return "", perrors.ErrKeyNotFound
	}
	return out.Key, nil
}

// RegisterKey uploads this device's public key (base64 SPKI).
func (c *Client) RegisterKey(ctx context.Context, publicKey string) error {
	return c.doJSON(ctx, http.MethodPost, "/users/key", nil, keyBody{Key: publicKey}, nil)
}

// DeleteKey removes the caller's public key from the API.
func (c *Client) DeleteKey(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/me/key", nil, nil, nil)
}

// Secrets lists the secrets addressed to the caller.
func (c *Client) Secrets(ctx context.Context) ([]Secret, error) {
	var out []Secret
	if err := c.doJSON(ctx, http.MethodGet, "/users/secrets", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateSecret stores an encrypted secret.
func (c *Client) CreateSecret(ctx context.Context, secret NewSecret) (*SecretCreated, error) {
	var out SecretCreated
	if err := c.doJSON(ctx, http.MethodPost, "/users/secrets", nil, secret, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSecret removes a secret by id.
func (c *Client) DeleteSecret(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/secrets/%d", id), nil, nil, nil)
}

// SaveComplement stores the encrypted contract complement.
func (c *Client) SaveComplement(ctx context.Context, complement Complement) error {
	return c.doJSON(ctx, http.MethodPost, "/users/contract-complement", nil, complement, nil)
}

// DeleteComplement removes the contract complement.
func (c *Client) DeleteComplement(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "/users/contract-complement", nil, nil, nil)
}
