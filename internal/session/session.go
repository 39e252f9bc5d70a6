// Package session caches the logged-in user on this device.
//
// The user profile lives in the device store next to the session tokens.
// A Store starts with DefaultUser and only reflects the stored profile
// after Load; there is no implicit hydration.
package session

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/events"
)

// Role is the user's portal role as issued by the API.
type Role int

const (
	RoleUnknown Role = -1
	RoleAdmin   Role = 1
	RoleDev     Role = 2
	RoleClient  Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDev:
		return "dev"
	case RoleClient:
		return "client"
	default:
		return "unknown"
	}
}

// Valid reports whether r is a role the API issues.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleDev || r == RoleClient
}

// User is the cached profile of the logged-in user.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

var (
	// DefaultUser is shown until Load has run.
	DefaultUser = User{Name: "Cargando...", Email: "...", Role: RoleUnknown}

	// UnknownUser replaces a missing or damaged stored profile.
	UnknownUser = User{Name: "unknown", Email: "unknown@example.com", Role: RoleUnknown}
)

// Store holds the current user and persists it to the device store.
type Store struct {
	device  devicestore.Store
	mu      sync.RWMutex
	current User
	changes events.Bus[User]
}

// NewStore returns a Store whose current user is DefaultUser.
func NewStore(device devicestore.Store) *Store {
	return &Store{device: device, current: DefaultUser}
}

// Load reads the stored profile. If any field is missing or the role is not
// a known role, the current user becomes UnknownUser and
// ErrSessionIncomplete is returned.
func (s *Store) Load() (User, error) {
	user, err := s.read()
	if err != nil {
		s.update(UnknownUser)
		return UnknownUser, err
	}
	s.update(user)
	return user, nil
}

func (s *Store) read() (User, error) {
	name, okName, err := s.device.Get(devicestore.KeyUserName)
	if err != nil {
		return User{}, fmt.Errorf("failed to read session: %w", err)
	}
	email, okEmail, err := s.device.Get(devicestore.KeyUserEmail)
	if err != nil {
		return User{}, fmt.Errorf("failed to read session: %w", err)
	}
	rawRole, okRole, err := s.device.Get(devicestore.KeyUserRole)
	if err != nil {
		return User{}, fmt.Errorf("failed to read session: %w", err)
	}

	if !okName || !okEmail || !okRole || name == "" || email == "" {
		return User{}, perrors.ErrSessionIncomplete
	}

	n, err := strconv.Atoi(rawRole)
	if err != nil || !Role(n).Valid() {
		return User{}, fmt.Errorf("%w: invalid role %q", perrors.ErrSessionIncomplete, rawRole)
	}

	return User{Name: name, Email: email, Role: Role(n)}, nil
}

// Set persists user and makes it current.
func (s *Store) Set(user User) error {
	fields := map[string]string{
		devicestore.KeyUserName:  user.Name,
		devicestore.KeyUserEmail: user.Email,
		devicestore.KeyUserRole:  strconv.Itoa(int(user.Role)),
	}
	for key, value := range fields {
		if err := s.device.Set(key, value); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	s.update(user)
	return nil
}

// Clear removes the stored profile, the session tokens and any pending
// verification code. The current user becomes UnknownUser. The device's
// private key is left in place.
func (s *Store) Clear() error {
	keys := []string{
		devicestore.KeyUserName,
		devicestore.KeyUserEmail,
		devicestore.KeyUserRole,
		devicestore.KeyAccessToken,
		devicestore.KeyRefreshToken,
		devicestore.KeyAuthCodeID,
	}
	for _, key := range keys {
		if err := s.device.Remove(key); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
	}
	s.update(UnknownUser)
	return nil
}

// Current returns a copy of the current user.
func (s *Store) Current() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Changes is notified with the new user after every Load, Set and Clear.
func (s *Store) Changes() *events.Bus[User] {
	return &s.changes
}

// LoggedIn reports whether an access token is stored.
func (s *Store) LoggedIn() (bool, error) {
	token, ok, err := s.device.Get(devicestore.KeyAccessToken)
	if err != nil {
		return false, fmt.Errorf("failed to read session: %w", err)
	}
	return ok && token != "", nil
}

func (s *Store) update(user User) {
	s.mu.Lock()
	s.current = user
	s.mu.Unlock()
	s.changes.Publish(user)
}
