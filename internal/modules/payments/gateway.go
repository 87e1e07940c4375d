package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"home-kitchen-market/internal/models"
)

// GatewayIntent is the provider's view of a created intent.
type GatewayIntent struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// GatewayInterface is the outbound contract with the payment provider.
type GatewayInterface interface {
	// CreateIntent opens a provider-side intent for the given amount in
	// minor currency units. The call is time-bounded and never retried
	// here; on any failure it returns models.ErrGatewayUnavailable.
	CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayIntent, error)
}

// HTTPGateway talks to the provider's REST API with basic-auth API keys.
type HTTPGateway struct {
	baseURL string
	keyID   string
	secret  string
	client  *http.Client
}

// NewHTTPGateway creates a gateway client with a bounded request timeout.
func NewHTTPGateway(baseURL, keyID, secret string, timeout time.Duration) *HTTPGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL: baseURL,
		keyID:   keyID,
		secret:  secret,
		client:  &http.Client{Timeout: timeout},
	}
}

type createIntentPayload struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CreateIntent requests a provider-side intent.
func (g *HTTPGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayIntent, error) {
	body, err := json.Marshal(createIntentPayload{Amount: amountMinor, Currency: currency, Receipt: receipt})
	if err != nil {
		return nil, fmt.Errorf("gateway.CreateIntent: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway.CreateIntent: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.keyID, g.secret)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: provider returned status %d", models.ErrGatewayUnavailable, resp.StatusCode)
	}

	intent := &GatewayIntent{}
	if err := json.NewDecoder(resp.Body).Decode(intent); err != nil {
		return nil, fmt.Errorf("%w: decoding provider response: %v", models.ErrGatewayUnavailable, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: provider response missing intent id", models.ErrGatewayUnavailable)
	}
	return intent, nil
}
