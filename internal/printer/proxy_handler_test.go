package printer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"connect":true}`))
	})
	mux.HandleFunc("/printer/invoice", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var doc model.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc.CustomerVAT == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(model.Success("Invoice closed successfully", map[string]interface{}{
			"document_number": doc.DocumentNumber,
		}))
	})
	mux.HandleFunc("/printer/report/x", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("X done\n"))
	})
	mux.HandleFunc("/printer/report/z", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestProxyHandler_Forwarding(t *testing.T) {
	remote := newRemote(t)
	ctx := context.Background()

	h := NewProxyHandler(zap.NewNop())
	settings := Settings{"target_url": remote.URL + "/", "auth_token": "secret", "timeout": "2000", "rate_limit": 100}
	if !h.Initialize(ctx, settings) {
		t.Fatalf("expected initialization to succeed")
	}

	resp := h.ProcessDocument(ctx, sampleDocument())
	if !resp.Success || resp.Message != "Invoice closed successfully" {
		t.Fatalf("expected the remote envelope, got %+v", resp)
	}
	if resp.Data["document_number"] != "F-0001" {
		t.Fatalf("unexpected data %v", resp.Data)
	}

	if resp := h.PrintReportX(ctx); !resp.Success || resp.Message != "X done" {
		t.Fatalf("expected plain text reply as message, got %+v", resp)
	}
	if resp := h.PrintReportZ(ctx); resp.Success || resp.Message != "Proxy request failed: 500" {
		t.Fatalf("unexpected Z response %+v", resp)
	}
	if resp := h.CheckStatus(ctx); !resp.Success {
		t.Fatalf("unexpected status %+v", resp)
	}
}

func TestProxyHandler_Unauthorized(t *testing.T) {
	remote := newRemote(t)

	h := NewProxyHandler(zap.NewNop())
	if !h.Initialize(context.Background(), Settings{"target_url": remote.URL}) {
		t.Fatalf("expected initialization to succeed")
	}

	resp := h.ProcessDocument(context.Background(), sampleDocument())
	if resp.Success || resp.Message != "Proxy request failed: 401" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestProxyHandler_InitializeFailures(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	tests := []struct {
		name     string
		settings Settings
	}{
		{"missing target", Settings{}},
		{"ping rejected", Settings{"target_url": down.URL}},
		{"bad timeout", Settings{"target_url": down.URL, "timeout": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProxyHandler(zap.NewNop())
			if h.Initialize(context.Background(), tt.settings) {
				t.Fatalf("expected initialization to fail")
			}
			if resp := h.PrintReportX(context.Background()); resp.Message != "Handler not initialized" {
				t.Fatalf("unexpected message %q", resp.Message)
			}
		})
	}
}

func TestProxyHandler_RemoteFailureReply(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		success bool
		message string
		data    map[string]interface{}
	}{
		{
			name:    "failure without message",
			reply:   `{"success":false,"error":"Paper out"}`,
			message: "Paper out",
		},
		{
			name:  "object without success",
			reply: `{"printed":3}`,
			data:  map[string]interface{}{"printed": float64(3)},
		},
		{
			name:    "envelope with data",
			reply:   `{"success":true,"message":"ok","timestamp":"2024-01-02 03:04:05","data":{"n":1}}`,
			success: true,
			message: "ok",
			data:    map[string]interface{}{"n": float64(1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/api/ping" {
					w.Write([]byte(`{"connect":true}`))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.reply))
			}))
			defer remote.Close()

			h := NewProxyHandler(zap.NewNop())
			if !h.Initialize(context.Background(), Settings{"target_url": remote.URL}) {
				t.Fatalf("expected initialization to succeed")
			}

			resp := h.ProcessDocument(context.Background(), sampleDocument())
			if resp.Success != tt.success || resp.Message != tt.message {
				t.Fatalf("expected success=%v message=%q, got %+v", tt.success, tt.message, resp)
			}
			for key, want := range tt.data {
				if resp.Data[key] != want {
					t.Fatalf("expected data[%s]=%v, got %v", key, want, resp.Data)
				}
			}
			if resp.Timestamp == "" {
				t.Fatalf("expected a timestamp")
			}
		})
	}
}

func TestProxyHandler_ForwardsDocumentUnchanged(t *testing.T) {
	received := make(chan []byte, 1)
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/printer/invoice" {
			body, _ := io.ReadAll(r.Body)
			received <- body
		}
		w.Write([]byte(`{"success":true,"message":"done"}`))
	}))
	defer remote.Close()

	h := NewProxyHandler(zap.NewNop())
	if !h.Initialize(context.Background(), Settings{"target_url": remote.URL}) {
		t.Fatalf("expected initialization to succeed")
	}

	body := `{"odoo_id":7,"customer_vat":"V-1","customer_name":"Ana","items":[{"item_name":"Pen","item_quantity":2,"item_price":10.50}]}`
	var doc model.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if resp := h.ProcessDocument(context.Background(), &doc); !resp.Success {
		t.Fatalf("unexpected response %+v", resp)
	}
	if got := string(<-received); got != body {
		t.Fatalf("expected the body to be forwarded as received\nwant %s\ngot  %s", body, got)
	}
}
