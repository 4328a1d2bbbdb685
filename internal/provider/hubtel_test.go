package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/storesense/notify-core/internal/domain"
)

func hubtelCreds() domain.Credentials {
	return domain.Credentials{
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		SenderID:     "MyStore",
	}
}

func TestHubtelAdapterSendSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/v1/messages/send" {
			t.Errorf("path = %s, want /v1/messages/send", r.URL.Path)
		}

		query := r.URL.Query()
		gotQuery = map[string]string{
			"clientid":     query.Get("clientid"),
			"clientsecret": query.Get("clientsecret"),
			"from":         query.Get("from"),
			"to":           query.Get("to"),
			"content":      query.Get("content"),
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":0,"message":"success(0000)"}`))
	}))
	defer server.Close()

	adapter := NewHubtelAdapter(server.URL, nil, nil)

	err := adapter.Send(context.Background(), hubtelCreds(), "233244000000", "hello")
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if gotQuery["clientid"] != "client-1" || gotQuery["clientsecret"] != "secret-1" {
		t.Fatalf("credentials not passed in query: %v", gotQuery)
	}
	if gotQuery["from"] != "MyStore" {
		t.Fatalf("from = %q, want MyStore", gotQuery["from"])
	}
	if gotQuery["to"] != "233244000000" {
		t.Fatalf("to = %q, want 233244000000", gotQuery["to"])
	}
	if gotQuery["content"] != "hello" {
		t.Fatalf("content = %q, want hello", gotQuery["content"])
	}
}

func TestHubtelAdapterSendClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		httpStatus int
		body       string
		wantSent   bool
	}{
		{
			name:       "zero status with success marker",
			httpStatus: http.StatusOK,
			body:       `{"status":0,"message":"success(0000)"}`,
			wantSent:   true,
		},
		{
			name:       "success body but http failure",
			httpStatus: http.StatusInternalServerError,
			body:       `{"status":0,"message":"success(0000)"}`,
			wantSent:   false,
		},
		{
			name:       "nonzero status with http success",
			httpStatus: http.StatusOK,
			body:       `{"status":1,"message":"failed"}`,
			wantSent:   false,
		},
		{
			name:       "zero status without success marker",
			httpStatus: http.StatusOK,
			body:       `{"status":0,"message":"queued"}`,
			wantSent:   false,
		},
		{
			name:       "status field absent",
			httpStatus: http.StatusOK,
			body:       `{"message":"success"}`,
			wantSent:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.httpStatus)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			adapter := NewHubtelAdapter(server.URL, nil, nil)
			err := adapter.Send(context.Background(), hubtelCreds(), "233244000000", "hi")

			if tc.wantSent && err != nil {
				t.Fatalf("Send() unexpected error: %v", err)
			}
			if !tc.wantSent {
				var sendErr *SendError
				if !errors.As(err, &sendErr) {
					t.Fatalf("error = %v, want *SendError", err)
				}
				if sendErr.Kind != KindRejected {
					t.Fatalf("kind = %s, want rejected", sendErr.Kind)
				}
			}
		})
	}
}

func TestHubtelAdapterSendMissingCredentials(t *testing.T) {
	t.Parallel()

	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	adapter := NewHubtelAdapter(server.URL, nil, nil)
	err := adapter.Send(context.Background(), domain.Credentials{ClientID: "only-id"}, "233244000000", "hi")

	if !IsMissingCredentials(err) {
		t.Fatalf("error = %v, want missing credentials", err)
	}
	if called {
		t.Fatal("no network call should be made when credentials are incomplete")
	}
	if !strings.Contains(err.Error(), "clientSecret") || !strings.Contains(err.Error(), "senderId") {
		t.Fatalf("error should name missing fields, got %q", err.Error())
	}
}

func TestHubtelAdapterSendTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	adapter := NewHubtelAdapter(server.URL, nil, nil)
	err := adapter.Send(context.Background(), hubtelCreds(), "233244000000", "hi")

	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("error = %v, want *SendError", err)
	}
	if sendErr.Kind != KindTransport {
		t.Fatalf("kind = %s, want transport", sendErr.Kind)
	}
}

func TestHubtelAdapterBalance(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/account/balance" {
			t.Errorf("path = %s, want /v1/account/balance", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"balance":45.75}`))
	}))
	defer server.Close()

	adapter := NewHubtelAdapter(server.URL, nil, nil)
	balance, err := adapter.Balance(context.Background(), hubtelCreds())
	if err != nil {
		t.Fatalf("Balance() unexpected error: %v", err)
	}
	if balance != 45.75 {
		t.Fatalf("balance = %v, want 45.75", balance)
	}
}

func TestRedactedURL(t *testing.T) {
	t.Parallel()

	raw := "https://smsc.example.com/v1/messages/send?clientid=abc&clientsecret=topsecret&to=233244000000"
	redacted := redactedURL(raw)

	if strings.Contains(redacted, "topsecret") {
		t.Fatalf("secret leaked: %s", redacted)
	}
	if !strings.Contains(redacted, "to=233244000000") {
		t.Fatalf("non-secret params should survive: %s", redacted)
	}
}
