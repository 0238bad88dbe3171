package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"carhire-backend/internal/logger"
)

type paymentGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewPaymentGateway returns a read-only client for the external payment
// provider's intent-status endpoint.
func NewPaymentGateway(baseURL, apiKey string) PaymentGateway {
	return &paymentGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *paymentGateway) GetPaymentStatus(ctx context.Context, paymentIntentID string) (PaymentStatus, error) {
	url := fmt.Sprintf("%s/v1/payment_intents/%s", g.baseURL, paymentIntentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	logger.ExternalServiceCall("payment-gateway", "GetPaymentStatus", "payment_intent_id", paymentIntentID)
	resp, err := g.client.Do(req)
	logger.ExternalServiceResult("payment-gateway", "GetPaymentStatus", err, "payment_intent_id", paymentIntentID)
	if err != nil {
		return "", fmt.Errorf("payment gateway lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode payment status: %w", err)
	}

	switch payload.Status {
	case "succeeded":
		return PaymentStatusSucceeded, nil
	case "failed", "canceled":
		return PaymentStatusFailed, nil
	default:
		return PaymentStatusPending, nil
	}
}
