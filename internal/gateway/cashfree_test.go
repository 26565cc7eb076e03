package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ayushkumar678u-oss/coaching-app/internal/models"
)

func TestCreateOrder(t *testing.T) {
	var gotPath, gotVersion, gotClientID string
	var gotBody cashfreeCreateOrder

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.Header.Get("x-api-version")
		gotClientID = r.Header.Get("x-client-id")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"order_id":           gotBody.OrderID,
			"order_status":       "ACTIVE",
			"payment_session_id": "session_abc123",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{
		AppID:       "app-id",
		SecretKey:   "secret",
		APIURL:      srv.URL,
		FrontendURL: "https://app.example.com",
		BackendURL:  "https://api.example.com",
	})

	sessionID, err := client.CreateOrder(context.Background(), CreateOrderRequest{
		OrderID:       "ORD_test_1",
		Amount:        decimal.NewFromFloat(499.00),
		Currency:      "INR",
		CustomerID:    "user-1",
		CustomerEmail: "student@example.com",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if sessionID != "session_abc123" {
		t.Errorf("sessionID = %q, want session_abc123", sessionID)
	}
	if gotPath != "/orders" {
		t.Errorf("path = %q, want /orders", gotPath)
	}
	if gotVersion != apiVersion {
		t.Errorf("x-api-version = %q, want %q", gotVersion, apiVersion)
	}
	if gotClientID != "app-id" {
		t.Errorf("x-client-id = %q, want app-id", gotClientID)
	}
	if gotBody.CustomerDetails.CustomerPhone == "" {
		t.Error("expected a default customer phone when none is supplied")
	}
	if gotBody.OrderMeta.NotifyURL != "https://api.example.com/api/payments/cashfree/webhook" {
		t.Errorf("notify_url = %q", gotBody.OrderMeta.NotifyURL)
	}
}

func TestCreateOrderMissingSessionID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"order_id": "ORD_x"})
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL})
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{OrderID: "ORD_x", Amount: decimal.NewFromInt(1), Currency: "INR"})
	if err == nil {
		t.Fatal("expected error for missing payment_session_id")
	}
}

func TestCreateOrderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL})
	_, err := client.CreateOrder(context.Background(), CreateOrderRequest{OrderID: "ORD_x", Amount: decimal.NewFromInt(1), Currency: "INR"})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestGetOrderStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/orders/ORD_test_2" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"order_id":       "ORD_test_2",
			"order_status":   "PAID",
			"order_amount":   999.00,
			"order_currency": "INR",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL})
	status, err := client.GetOrderStatus(context.Background(), "ORD_test_2")
	if err != nil {
		t.Fatalf("GetOrderStatus: %v", err)
	}
	if status.Status != models.OrderStatusPaid {
		t.Errorf("status = %q, want %q", status.Status, models.OrderStatusPaid)
	}
	if !status.Amount.Equal(decimal.NewFromFloat(999.00)) {
		t.Errorf("amount = %s, want 999", status.Amount)
	}
	if status.Currency != "INR" {
		t.Errorf("currency = %q, want INR", status.Currency)
	}
}

func TestMapOrderStatus(t *testing.T) {
	tests := []struct {
		gateway string
		want    string
	}{
		{"PAID", models.OrderStatusPaid},
		{"paid", models.OrderStatusPaid},
		{"EXPIRED", models.OrderStatusExpired},
		{"TERMINATED", models.OrderStatusFailed},
		{"CANCELLED", models.OrderStatusFailed},
		{"FAILED", models.OrderStatusFailed},
		{"ACTIVE", models.OrderStatusPending},
		{"", models.OrderStatusPending},
		{"SOMETHING_NEW", models.OrderStatusPending},
	}

	for _, tt := range tests {
		if got := MapOrderStatus(tt.gateway); got != tt.want {
			t.Errorf("MapOrderStatus(%q) = %q, want %q", tt.gateway, got, tt.want)
		}
	}
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec_test"
	client := NewClient(Config{WebhookSecret: secret})

	body := []byte(`{"event":"PAYMENT_SUCCESS_WEBHOOK"}`)
	timestamp := "1693526400"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !client.VerifyWebhookSignature(timestamp, body, signature) {
		t.Error("valid signature rejected")
	}
	if client.VerifyWebhookSignature(timestamp, body, "tampered") {
		t.Error("tampered signature accepted")
	}
	if client.VerifyWebhookSignature("1693526401", body, signature) {
		t.Error("signature accepted for a different timestamp")
	}
	if client.VerifyWebhookSignature(timestamp, []byte(`{"event":"OTHER"}`), signature) {
		t.Error("signature accepted for a different body")
	}
	if client.VerifyWebhookSignature(timestamp, body, "") {
		t.Error("empty signature accepted")
	}

	noSecret := NewClient(Config{})
	if noSecret.VerifyWebhookSignature(timestamp, body, signature) {
		t.Error("signature accepted with no configured secret")
	}
}
