package httpserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront-backend/internal/domain"
)

func stripeEvent(eventType, intentID, orderID string) string {
	return fmt.Sprintf(`{
		"type": %q,
		"created": 1767225600,
		"data": {
			"object": {
				"id": %q,
				"object": "payment_intent",
				"receipt_email": "buyer@example.com",
				"metadata": {"order_id": %q}
			}
		}
	}`, eventType, intentID, orderID)
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	svc := &stubReconcile{order: &domain.Order{ID: "o1", IsPaid: true}}
	router := testRouter(Deps{Reconcile: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
		strings.NewReader(stripeEvent("payment_intent.succeeded", "pi_123", "o1")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastResult.TransactionID != "pi_123" {
		t.Fatalf("expected transaction pi_123, got %q", svc.lastResult.TransactionID)
	}
	if svc.lastResult.PayerEmail != "buyer@example.com" {
		t.Fatalf("expected payer email captured, got %q", svc.lastResult.PayerEmail)
	}
	if svc.lastResult.SettledAt == nil || svc.lastResult.SettledAt.Unix() != 1767225600 {
		t.Fatalf("expected settledAt from event.created, got %v", svc.lastResult.SettledAt)
	}
}

func TestWebhookDuplicateIsAcknowledged(t *testing.T) {
	svc := &stubReconcile{payErr: domain.ErrAlreadyPaid}
	router := testRouter(Deps{Reconcile: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
		strings.NewReader(stripeEvent("payment_intent.succeeded", "pi_123", "o1")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate must return 200 so the gateway stops retrying, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "duplicate") {
		t.Fatalf("expected duplicate status in body, got %s", rec.Body.String())
	}
}

func TestWebhookUnknownOrderIsNotFound(t *testing.T) {
	svc := &stubReconcile{payErr: domain.ErrNotFound}
	router := testRouter(Deps{Reconcile: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
		strings.NewReader(stripeEvent("payment_intent.succeeded", "pi_123", "missing")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWebhookMissingOrderMetadata(t *testing.T) {
	svc := &stubReconcile{}
	router := testRouter(Deps{Reconcile: svc})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
		strings.NewReader(stripeEvent("payment_intent.succeeded", "pi_123", "")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	router := testRouter(Deps{Reconcile: &stubReconcile{}})

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
		strings.NewReader(stripeEvent("payment_intent.created", "pi_123", "o1")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ignored") {
		t.Fatalf("expected ignored status, got %s", rec.Body.String())
	}
}
