package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/devicestore"
	perrors "github.com/worksdev/portal/internal/errors"
	"github.com/worksdev/portal/internal/secrets"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *devicestore.MemoryStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	device := devicestore.NewMemoryStore()
	client, err := New(Options{
		BaseURL:      server.URL,
		Timeout:      5 * time.Second,
		MaxRetries:   2,
		Device:       device,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return client, device
}

func TestNewRejectsInvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "://missing-scheme"} {
		if _, err := New(Options{BaseURL: raw}); !errors.Is(err, perrors.ErrInvalidConfig) {
			t.Errorf("New(%q) error = %v, want ErrInvalidConfig", raw, err)
		}
	}
}

func TestLoginAndVerify(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			if body["email"] != "ana@example.com" || body["password"] != "Sup3rSecreta!" {
				t.Errorf("unexpected credentials: %v", body)
			}
			io.WriteString(w, "code-123\n")
		case http.MethodPatch:
			if got := r.URL.Query().Get("code_id"); got != "code-123" {
				t.Errorf("code_id = %q", got)
			}
			http.SetCookie(w, &http.Cookie{Name: "access", Value: "acc-1"})
			http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "ref-1"})
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{"user":{"name":"Ana","email":"ana@example.com","verified":true,"role":3,"active":true}}`)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	client, device := newTestClient(t, mux)
	ctx := context.Background()

	codeID, err := client.Login(ctx, "ana@example.com", "Sup3rSecreta!")
	if err != nil {
		t.Fatalf("Login() failed: %v", err)
	}
	if codeID != "code-123" {
		t.Errorf("Login() = %q, want code-123", codeID)
	}

	user, err := client.Verify(ctx, codeID, "654321")
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if user.Name != "Ana" || user.Role != 3 {
		t.Errorf("Verify() user = %+v", user)
	}

	if v, _, _ := device.Get(devicestore.KeyAccessToken); v != "acc-1" {
		t.Errorf("access token = %q, want acc-1", v)
	}
	if v, _, _ := device.Get(devicestore.KeyRefreshToken); v != "ref-1" {
		t.Errorf("refresh token = %q, want ref-1", v)
	}

	if _, err := client.Verify(ctx, "", "1"); !errors.Is(err, perrors.ErrMissingCodeID) {
		t.Errorf("Verify() without code id error = %v", err)
	}
}

func TestCookiesSentAndCleared(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sessions", func(w http.ResponseWriter, r *http.Request) {
		access, err := r.Cookie("access")
		if err != nil || access.Value != "acc-9" {
			t.Errorf("access cookie = %v, %v", access, err)
		}
		http.SetCookie(w, &http.Cookie{Name: "access", Value: "", MaxAge: -1})
		http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "", MaxAge: -1})
		w.WriteHeader(http.StatusNoContent)
	})

	client, device := newTestClient(t, mux)
	_ = device.Set(devicestore.KeyAccessToken, "acc-9")
	_ = device.Set(devicestore.KeyRefreshToken, "ref-9")

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("Logout() failed: %v", err)
	}
	if _, ok, _ := device.Get(devicestore.KeyAccessToken); ok {
		t.Error("access token should be removed by an expired cookie")
	}
	if _, err := client.AccessToken(); !errors.Is(err, perrors.ErrNotLoggedIn) {
		t.Errorf("AccessToken() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestBadResponseError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		headers       map[string]string
		wantMessage   string
		wantEmailSent bool
		wantExpired   bool
	}{
		{
			name:        "header message",
			status:      http.StatusConflict,
			headers:     map[string]string{HeaderErrorMessage: "La clave ya existe"},
			wantMessage: "La clave ya existe",
		},
		{
			name:        "fallback message",
			status:      http.StatusBadRequest,
			wantMessage: DefaultErrorMessage,
		},
		{
			name:          "email sent",
			status:        http.StatusForbidden,
			headers:       map[string]string{HeaderErrorMessage: "Verifica tu correo", HeaderEmailSent: "1"},
			wantMessage:   "Verifica tu correo",
			wantEmailSent: true,
		},
		{
			name:        "unauthorized",
			status:      http.StatusUnauthorized,
			wantMessage: DefaultErrorMessage,
			wantExpired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			}))

			err := client.RegisterKey(context.Background(), "AAAA")

			var bad *BadResponseError
			if !errors.As(err, &bad) {
				t.Fatalf("error %v is not *BadResponseError", err)
			}
			if bad.Status != tt.status || bad.Message != tt.wantMessage || bad.EmailSent != tt.wantEmailSent {
				t.Errorf("got %+v", bad)
			}
			if !errors.Is(err, perrors.ErrRemoteRejected) {
				t.Error("should match ErrRemoteRejected")
			}
			if errors.Is(err, perrors.ErrSessionExpired) != tt.wantExpired {
				t.Errorf("ErrSessionExpired match = %v, want %v", !tt.wantExpired, tt.wantExpired)
			}
		})
	}
}

func TestRetryOnlyIdempotent(t *testing.T) {
	var gets, posts atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/users/admin-key", func(w http.ResponseWriter, r *http.Request) {
		if gets.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, `{"key":"QUJD"}`)
	})
	mux.HandleFunc("/users/secrets", func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	key, err := client.AdminKey(ctx)
	if err != nil {
		t.Fatalf("AdminKey() failed: %v", err)
	}
	if key != "QUJD" || gets.Load() != 2 {
		t.Errorf("AdminKey() = %q after %d requests, want QUJD after 2", key, gets.Load())
	}

	_, err = client.CreateSecret(ctx, NewSecret{Label: "db"})
	var bad *BadResponseError
	if !errors.As(err, &bad) || bad.Status != http.StatusServiceUnavailable {
		t.Errorf("CreateSecret() error = %v", err)
	}
	if posts.Load() != 1 {
		t.Errorf("POST sent %d times, want 1", posts.Load())
	}
}

func TestRetriesExhaustedKeepsAnswer(t *testing.T) {
	var hits atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set(HeaderErrorMessage, "Mantenimiento")
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.Order(context.Background(), 1)
	var bad *BadResponseError
	if !errors.As(err, &bad) || bad.Message != "Mantenimiento" {
		t.Fatalf("Order() error = %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("hits = %d, want 3 (1 + 2 retries)", hits.Load())
	}
}

func TestSecretsEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/secrets", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			io.WriteString(w, `[{"id":4,"label":"AWS","key":"a2V5","content":"Y29udGVudA==","iv":"aXY=","updated_at":"2025-01-02T03:04:05Z"}]`)
		case http.MethodPost:
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			for _, field := range []string{"label", "key", "content", "iv", "receiver_id"} {
				if _, ok := body[field].(string); !ok {
					t.Errorf("body field %s missing: %v", field, body)
				}
			}
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id":5,"updated_at":"2025-01-02T03:04:05Z"}`)
		}
	})
	mux.HandleFunc("/users/secrets/4", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	list, err := client.Secrets(ctx)
	if err != nil {
		t.Fatalf("Secrets() failed: %v", err)
	}
	if len(list) != 1 || list[0].Label != "AWS" || list[0].Payload().Content != "Y29udGVudA==" {
		t.Errorf("Secrets() = %+v", list)
	}

	created, err := client.CreateSecret(ctx, NewSecret{
		Label:            "DB",
		EncryptedPayload: secrets.EncryptedPayload{Key: "k", Content: "c", IV: "i"},
		ReceiverID:       "user-7",
	})
	if err != nil {
		t.Fatalf("CreateSecret() failed: %v", err)
	}
	if created.ID != 5 {
		t.Errorf("CreateSecret() = %+v", created)
	}

	if err := client.DeleteSecret(ctx, 4); err != nil {
		t.Errorf("DeleteSecret() failed: %v", err)
	}
}

func TestOrderAndDiscount(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/orders/9", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"id":9,"name":"Sitio web","status":3,"items":[{"id":1,"cost":800},{"id":2,"cost":360.5}],"discount":{"description":"Cliente frecuente","percentage":10}}`)
	})
	mux.HandleFunc("/orders/9/discount", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s", r.Method)
		}
		data, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(data), `"percentage":12.5`) {
			t.Errorf("percentage should be a JSON number: %s", data)
		}
		w.WriteHeader(http.StatusNoContent)
	})

	client, _ := newTestClient(t, mux)
	ctx := context.Background()

	order, err := client.Order(ctx, 9)
	if err != nil {
		t.Fatalf("Order() failed: %v", err)
	}
	total := decimal.Sum(decimal.Zero, order.ItemCosts()...)
	if !total.Equal(decimal.RequireFromString("1160.5")) {
		t.Errorf("item total = %s", total)
	}
	if !order.DiscountPercentage().Equal(decimal.NewFromInt(10)) {
		t.Errorf("discount = %s", order.DiscountPercentage())
	}
	if OrderStatusName(order.Status) != "En desarrollo" {
		t.Errorf("status name = %s", OrderStatusName(order.Status))
	}

	if err := client.SetDiscount(ctx, 9, "Descuento por volumen", decimal.RequireFromString("12.5"), true); err != nil {
		t.Errorf("SetDiscount() failed: %v", err)
	}
}

func TestUnexpectedBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>")
	}))

	if _, err := client.Thread(context.Background(), 1); !errors.Is(err, perrors.ErrUnexpectedResponse) {
		t.Errorf("Thread() error = %v, want ErrUnexpectedResponse", err)
	}
}

func TestStatusNames(t *testing.T) {
	if OrderStatusName(0) != "Desconocido" || OrderStatusName(99) != "Desconocido" {
		t.Error("out-of-range order statuses should be Desconocido")
	}
	if OrderStatusName(10) != "Completado" {
		t.Errorf("OrderStatusName(10) = %s", OrderStatusName(10))
	}
	if ThreadStatusName(1) != "Abierto" {
		t.Errorf("ThreadStatusName(1) = %s", ThreadStatusName(1))
	}
}
