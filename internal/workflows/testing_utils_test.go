package workflows

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/app"
	"github.com/worksdev/portal/internal/configs"
	"github.com/worksdev/portal/internal/devicestore"
	"github.com/worksdev/portal/internal/secrets"
)

var (
	adminOnce sync.Once
	adminPair *secrets.KeyPair
	adminPub  string
	adminErr  error
)

// adminKeys returns a key pair shared by every test in the package.
func adminKeys(t *testing.T) (*secrets.KeyPair, string) {
	t.Helper()
	adminOnce.Do(func() {
		adminPair, adminErr = secrets.GenerateKeyPair()
		if adminErr == nil {
			adminPub, _, adminErr = adminPair.Export()
		}
	})
	if adminErr != nil {
		t.Fatalf("failed to generate admin keys: %v", adminErr)
	}
	return adminPair, adminPub
}

// fakeAPI is an in-memory stand-in for the portal API.
type fakeAPI struct {
	t *testing.T

	mu         sync.Mutex
	adminKey   string
	userKey    string
	keyStatus  int
	secrets    []api.Secret
	nextID     int64
	complement *api.Complement
	orders     map[int64]api.Order
	discounts  map[int64]api.DiscountRequest
	statuses   map[int64]int
	threads    map[int64]api.Thread
	loggedOut  bool
	calls      int
}

func newFakeAPI(t *testing.T) *fakeAPI {
	_, pub := adminKeys(t)
	return &fakeAPI{
		t:         t,
		adminKey:  pub,
		nextID:    1,
		orders:    map[int64]api.Order{},
		discounts: map[int64]api.DiscountRequest{},
		statuses:  map[int64]int{},
		threads:   map[int64]api.Thread{},
	}
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "code-1")
	})
	mux.HandleFunc("PATCH /sessions", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Code string `json:"code"`
		}
		f.decode(r, &body)
		if r.URL.Query().Get("code_id") == "" || body.Code != "123456" {
			w.Header().Set(api.HeaderErrorMessage, "Código inválido")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "access", Value: "acc-1"})
		http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "ref-1"})
		f.json(w, map[string]api.User{"user": {Name: "Ana", Email: "ana@example.com", Role: 3, Verified: true, Active: true}})
	})
	mux.HandleFunc("POST /sessions/verification-code", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "code-2")
	})
	mux.HandleFunc("DELETE /sessions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.loggedOut = true
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "access", MaxAge: -1})
		http.SetCookie(w, &http.Cookie{Name: "refresh", MaxAge: -1})
	})

	mux.HandleFunc("GET /users/admin-key", func(w http.ResponseWriter, r *http.Request) {
		f.json(w, map[string]string{"key": f.adminKey})
	})
	mux.HandleFunc("POST /users/key", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.keyStatus != 0 {
			w.WriteHeader(f.keyStatus)
			return
		}
		var body struct {
			Key string `json:"key"`
		}
		f.decode(r, &body)
		f.userKey = body.Key
	})
	mux.HandleFunc("DELETE /users/me/key", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.userKey = ""
		f.mu.Unlock()
	})

	mux.HandleFunc("GET /users/secrets", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.json(w, f.secrets)
	})
	mux.HandleFunc("POST /users/secrets", func(w http.ResponseWriter, r *http.Request) {
		var body api.NewSecret
		f.decode(r, &body)
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls++
		secret := api.Secret{
			ID:        f.nextID,
			Label:     body.Label,
			Key:       body.Key,
			Content:   body.Content,
			IV:        body.IV,
			UpdatedAt: "2026-10-18T10:00:00Z",
		}
		f.nextID++
		f.secrets = append(f.secrets, secret)
		f.json(w, api.SecretCreated{ID: secret.ID, UpdatedAt: secret.UpdatedAt})
	})
	mux.HandleFunc("DELETE /users/secrets/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, s := range f.secrets {
			if s.ID == id {
				f.secrets = append(f.secrets[:i], f.secrets[i+1:]...)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	mux.HandleFunc("POST /users/contract-complement", func(w http.ResponseWriter, r *http.Request) {
		var body api.Complement
		f.decode(r, &body)
		f.mu.Lock()
		f.complement = &body
		f.mu.Unlock()
	})
	mux.HandleFunc("DELETE /users/contract-complement", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.complement = nil
		f.mu.Unlock()
	})

	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		order, ok := f.orders[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.json(w, order)
	})
	mux.HandleFunc("PUT /orders/{id}/discount", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var body api.DiscountRequest
		f.decode(r, &body)
		f.mu.Lock()
		f.discounts[id] = body
		f.mu.Unlock()
	})
	mux.HandleFunc("PATCH /orders/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		var body api.StatusRequest
		f.decode(r, &body)
		f.mu.Lock()
		f.statuses[id] = body.Status
		f.mu.Unlock()
	})

	mux.HandleFunc("GET /threads/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
		f.mu.Lock()
		thread, ok := f.threads[id]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.json(w, thread)
	})

	return mux
}

func (f *fakeAPI) decode(r *http.Request, out any) {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		f.t.Errorf("decode %s %s: %v", r.Method, r.URL.Path, err)
	}
}

func (f *fakeAPI) json(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encode: %v", err)
	}
}

// newTestApp returns an App talking to fake, with an in-memory device store
// and the data directory in a temp dir.
func newTestApp(t *testing.T, fake *fakeAPI) *app.App {
	t.Helper()

	original := configs.PortalSettings
	configs.PortalSettings = &configs.Settings{
		ConfigPath: t.TempDir(),
		DataPath:   filepath.Join(t.TempDir(), "portal"),
	}
	t.Cleanup(func() {
		configs.PortalSettings = original
	})

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	config := configs.DefaultConfig()
	config.API.URL = server.URL
	config.API.MaxRetries = 0
	config.Device.UUID = "3f1c7a52-5d0e-4f8e-9d39-2b8c4f0e9a11"
	config.Device.Name = "test-laptop"

	a, err := app.Assemble(config, devicestore.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("Assemble() failed: %v", err)
	}
	return a
}

// loggedIn stores a session token as if Verify had succeeded.
func loggedIn(t *testing.T, a *app.App) {
	t.Helper()
	if err := a.Device.Set(devicestore.KeyAccessToken, "acc-1"); err != nil {
		t.Fatalf("failed to store token: %v", err)
	}
}
