// Package app wires the configuration, device store, session and API
// client into the context object passed to every workflow.
package app

import (
	"errors"
	"fmt"

	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/configs"
	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/events"
	logger "github.com/worksdev/portal/internal/logging"
	"github.com/worksdev/portal/internal/secrets"
	"github.com/worksdev/portal/internal/session"
)

// App is the application context.
type App struct {
	Config  *configs.Config
	Device  devicestore.Store
	Keyring *secrets.Keyring
	Session *session.Store
	API     *api.Client
	Events  *events.Hub
	Logger  *logger.Logger
}

// New loads the configuration from disk, assigning a device identity on
// first use, and opens the device store.
func New(log *logger.Logger) (*App, error) {
	config, err := configs.EnsureConfig()
	if err != nil {
		return nil, err
	}
	device := devicestore.NewFileStore(configs.DeviceStorePath())
	return Assemble(config, device, log)
}

// Assemble builds an App from already loaded parts. The session is loaded
// from the device store; an incomplete stored profile is not an error.
func Assemble(config *configs.Config, device devicestore.Store, log *logger.Logger) (*App, error) {
	if log == nil {
		log = &logger.Logger{}
	}

	client, err := api.New(api.Options{
		BaseURL:    config.API.URL,
		Timeout:    config.API.Timeout(),
		MaxRetries: config.API.MaxRetries,
		Device:     device,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(device)
	if _, err := sess.Load(); err != nil && !errors.Is(err, perrors.ErrSessionIncomplete) {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return &App{
		Config:  config,
		Device:  device,
		Keyring: secrets.NewKeyring(device),
		Session: sess,
		API:     client,
		Events:  events.NewHub(),
		Logger:  log,
	}, nil
}

// RequireLogin returns ErrNotLoggedIn when no session token is stored.
func (a *App) RequireLogin() error {
	ok, err := a.Session.LoggedIn()
	if err != nil {
		return err
	}
	if !ok {
		return perrors.ErrNotLoggedIn
	}
	return nil
}
