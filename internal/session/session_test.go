package session

import (
	"errors"
	"testing"

	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
)

func TestStoreStartsWithDefaultUser(t *testing.T) {
	s := NewStore(devicestore.NewMemoryStore())
	if s.Current() != DefaultUser {
		t.Errorf("Current() = %+v, want DefaultUser", s.Current())
	}
}

func TestStoreSetAndLoad(t *testing.T) {
	device := devicestore.NewMemoryStore()
	s := NewStore(device)

	user := User{Name: "Ana López", Email: "ana@example.com", Role: RoleClient}
	if err := s.Set(user); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// A fresh store over the same device sees the persisted profile.
	fresh := NewStore(device)
	got, err := fresh.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got != user || fresh.Current() != user {
		t.Errorf("Load() = %+v, want %+v", got, user)
	}
}

func TestStoreLoadIncomplete(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
	}{
		{"empty", map[string]string{}},
		{"missing email", map[string]string{
			devicestore.KeyUserName: "Ana",
			devicestore.KeyUserRole: "3",
		}},
		{"role not a number", map[string]string{
			devicestore.KeyUserName:  "Ana",
			devicestore.KeyUserEmail: "ana@example.com",
			devicestore.KeyUserRole:  "client",
		}},
		{"role out of range", map[string]string{
			devicestore.KeyUserName:  "Ana",
			devicestore.KeyUserEmail: "ana@example.com",
			devicestore.KeyUserRole:  "9",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := devicestore.NewMemoryStore()
			for k, v := range tt.values {
				if err := device.Set(k, v); err != nil {
					t.Fatalf("Set() failed: %v", err)
				}
			}

			s := NewStore(device)
			got, err := s.Load()
			if !errors.Is(err, perrors.ErrSessionIncomplete) {
				t.Errorf("Load() error = %v, want ErrSessionIncomplete", err)
			}
			if got != UnknownUser || s.Current() != UnknownUser {
				t.Errorf("Load() = %+v, want UnknownUser", got)
			}
		})
	}
}

func TestStoreClear(t *testing.T) {
	device := devicestore.NewMemoryStore()
	s := NewStore(device)

	_ = device.Set(devicestore.KeyAccessToken, "tok")
	_ = device.Set(devicestore.KeyRefreshToken, "ref")
	_ = device.Set(devicestore.KeyPrivateKey, "keep-me")
	if err := s.Set(User{Name: "Ana", Email: "ana@example.com", Role: RoleAdmin}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	loggedIn, err := s.LoggedIn()
	if err != nil || !loggedIn {
		t.Fatalf("LoggedIn() = %v, %v, want true", loggedIn, err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}

	if s.Current() != UnknownUser {
		t.Errorf("Current() = %+v, want UnknownUser", s.Current())
	}
	if loggedIn, _ := s.LoggedIn(); loggedIn {
		t.Error("LoggedIn() should be false after Clear()")
	}
	if _, ok, _ := device.Get(devicestore.KeyUserEmail); ok {
		t.Error("user email should be removed")
	}
	if v, ok, _ := device.Get(devicestore.KeyPrivateKey); !ok || v != "keep-me" {
		t.Error("private key should survive Clear()")
	}
}

func TestStoreChanges(t *testing.T) {
	s := NewStore(devicestore.NewMemoryStore())
	var seen []User

	unsubscribe := s.Changes().Subscribe(func(u User) { seen = append(seen, u) })
	defer unsubscribe()

	admin := User{Name: "Root", Email: "root@example.com", Role: RoleAdmin}
	_ = s.Set(admin)
	_ = s.Clear()

	if len(seen) != 2 || seen[0] != admin || seen[1] != UnknownUser {
		t.Errorf("notifications = %+v", seen)
	}
}

func TestRoleString(t *testing.T) {
	tests := map[Role]string{
		RoleAdmin:   "admin",
		RoleDev:     "dev",
		RoleClient:  "client",
		RoleUnknown: "unknown",
		Role(7):     "unknown",
	}
	for role, want := range tests {
		if got := role.String(); got != want {
			t.Errorf("Role(%d).String() = %q, want %q", int(role), got, want)
		}
	}
}
