package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/worksdev/portal/internal/api"
	"github.com/worksdev/portal/internal/devicestore"
)

// serveAPI points the commands at a test server and stores an access
// token so they run logged in.
func serveAPI(t *testing.T, device *devicestore.MemoryStore, mux *http.ServeMux) {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("PORTAL_API_URL", server.URL)

	if err := device.Set(devicestore.KeyAccessToken, "acc-1"); err != nil {
		t.Fatalf("failed to store token: %v", err)
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestOrdersDiscountPrintsRefreshedBreakdown(t *testing.T) {
	device := setupTestEnvironment(t)

	var mu sync.Mutex
	var sent api.DiscountRequest
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /orders/42/discount", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Errorf("bad discount body: %v", err)
		}
	})
	mux.HandleFunc("GET /orders/42", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, api.Order{
			ID:     42,
			Name:   "Tienda en línea",
			Status: 3,
			Items: []api.Item{
				{ID: 1, Name: "Diseño", Cost: decimal.NewFromInt(580)},
				{ID: 2, Name: "Desarrollo", Cost: decimal.NewFromInt(580)},
			},
		})
	})
	serveAPI(t, device, mux)

	stdout, _, err := runCommand(t, "orders", "discount", "42", "10", "--description", "Descuento por pronto pago")
	if err != nil {
		t.Fatalf("orders discount failed: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if sent.Percentage.String() != "10" {
		t.Errorf("sent percentage = %s, want 10", sent.Percentage)
	}

	for _, want := range []string{"Discount of '10%' applied to order '42'", "Tienda en línea", "Discount 10%", "$900.00", "$1,044.00"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Index(stdout, "applied to order") > strings.Index(stdout, "Tienda en línea") {
		t.Errorf("breakdown printed before the confirmation:\n%s", stdout)
	}
}

func TestOrdersDiscountRejectedPrintsNoBreakdown(t *testing.T) {
	device := setupTestEnvironment(t)

	mux := http.NewServeMux()
	mux.HandleFunc("PUT /orders/42/discount", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(api.HeaderErrorMessage, "Orden no encontrada")
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("GET /orders/42", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("order fetched after a rejected discount")
	})
	serveAPI(t, device, mux)

	stdout, _, err := runCommand(t, "orders", "discount", "42", "10", "--description", "Descuento por pronto pago")
	if err != nil {
		t.Fatalf("orders discount failed: %v", err)
	}
	if strings.Contains(stdout, "Final") {
		t.Errorf("breakdown printed for a rejected discount:\n%s", stdout)
	}
}

func TestOrdersStatusAnnouncesChange(t *testing.T) {
	device := setupTestEnvironment(t)

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /orders/7/status", func(w http.ResponseWriter, r *http.Request) {
		var body api.StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status != 10 {
			t.Errorf("status body = %+v, %v", body, err)
		}
	})
	serveAPI(t, device, mux)

	stdout, _, err := runCommand(t, "orders", "status", "7", "10")
	if err != nil {
		t.Fatalf("orders status failed: %v", err)
	}
	if !strings.Contains(stdout, "Order '7' is now 'Completado'") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestSessionVerifyAndLogoutAnnounceUser(t *testing.T) {
	device := setupTestEnvironment(t)

	mux := http.NewServeMux()
	mux.HandleFunc("PATCH /sessions", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("code_id") != "code-1" {
			t.Errorf("code_id = %q", r.URL.Query().Get("code_id"))
		}
		http.SetCookie(w, &http.Cookie{Name: "access", Value: "acc-2"})
		http.SetCookie(w, &http.Cookie{Name: "refresh", Value: "ref-2"})
		writeJSON(t, w, map[string]api.User{"user": {Name: "Ana", Email: "ana@example.com", Role: 3}})
	})
	mux.HandleFunc("DELETE /sessions", func(w http.ResponseWriter, r *http.Request) {})
	serveAPI(t, device, mux)

	if err := device.Set(devicestore.KeyAuthCodeID, "code-1"); err != nil {
		t.Fatalf("failed to store code id: %v", err)
	}

	stdout, _, err := runCommand(t, "session", "verify", "123456")
	if err != nil {
		t.Fatalf("session verify failed: %v", err)
	}
	if strings.Count(stdout, "Logged in as 'Ana' (client)") != 1 {
		t.Errorf("verify output = %q", stdout)
	}

	stdout, _, err = runCommand(t, "session", "logout")
	if err != nil {
		t.Fatalf("session logout failed: %v", err)
	}
	if strings.TrimSpace(stdout) != "✓ Logged out" {
		t.Errorf("logout output = %q", stdout)
	}
}

func TestThreadsChatStopsWhenClosed(t *testing.T) {
	device := setupTestEnvironment(t)

	upgrader := websocket.Upgrader{
		Subprotocols: []string{"token-acc-1"},
		CheckOrigin:  func(r *http.Request) bool { return true },
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/threads/o/chat", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	serveAPI(t, device, mux)

	RootCmd.SetIn(strings.NewReader("/quit\n"))
	t.Cleanup(func() { RootCmd.SetIn(nil) })

	stdout, _, err := runCommand(t, "threads", "chat")
	if err != nil {
		t.Fatalf("threads chat failed: %v", err)
	}
	if strings.Count(stdout, "Chat closed") != 1 {
		t.Errorf("stdout = %q, want one close notice", stdout)
	}
}
