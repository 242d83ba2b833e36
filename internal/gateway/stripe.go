package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Gateway errors
var (
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrMalformedPayload = errors.New("malformed webhook payload")
	ErrSessionFailed    = errors.New("checkout session creation failed")
)

// EventCheckoutCompleted the webhook event type that confirms payment
const EventCheckoutCompleted = "checkout.session.completed"

// CheckoutRequest checkout session creation request
type CheckoutRequest struct {
	Amount             int64 // minor units
	Currency           string
	ProductName        string
	ProductDescription string
	SuccessURL         string
	CancelURL          string
	Metadata           map[string]string
}

// CheckoutSession an opened checkout session
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookEvent a verified webhook event
type WebhookEvent struct {
	ID        string
	Type      string
	SessionID string
	Metadata  map[string]string
}

// CheckoutGateway payment gateway interface
type CheckoutGateway interface {
	// CreateCheckoutSession opens a hosted checkout session
	CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error)

	// ParseWebhook verifies the event signature and decodes the event
	ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

const (
	defaultBaseURL     = "https://api.stripe.com"
	signatureTolerance = 5 * time.Minute
)

// StripeConfig Stripe gateway settings
type StripeConfig struct {
	SecretKey     string // server-side API key
	WebhookSecret string // shared secret for webhook signatures
	BaseURL       string // overridable for tests
}

// StripeGateway Stripe gateway implementation
type StripeGateway struct {
	config     *StripeConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewStripeGateway creates a Stripe gateway
func NewStripeGateway(config *StripeConfig) *StripeGateway {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	return &StripeGateway{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now: time.Now,
	}
}

// CreateCheckoutSession opens a hosted checkout session
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("line_items[0][quantity]", "1")
	form.Set("line_items[0][price_data][currency]", req.Currency)
	form.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(req.Amount, 10))
	form.Set("line_items[0][price_data][product_data][name]", req.ProductName)
	if req.ProductDescription != "" {
		form.Set("line_items[0][price_data][product_data][description]", req.ProductDescription)
	}
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.config.BaseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.config.SecretKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var errResp stripeErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%w: %s", ErrSessionFailed, errResp.Error.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrSessionFailed, resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the
// event. The header carries a unix timestamp and one or more HMAC-SHA256
// signatures over "<timestamp>.<payload>"; events outside the tolerance
// window are rejected to block replay.
func (g *StripeGateway) ParseWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	ts, signatures, err := parseSignatureHeader(signatureHeader)
	if err != nil {
		return nil, err
	}

	if g.now().Sub(time.Unix(ts, 0)) > signatureTolerance {
		return nil, ErrInvalidSignature
	}

	expected := computeSignature(g.config.WebhookSecret, ts, payload)
	valid := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidSignature
	}

	var event stripeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ErrMalformedPayload
	}
	if event.Type == "" {
		return nil, ErrMalformedPayload
	}

	return &WebhookEvent{
		ID:        event.ID,
		Type:      event.Type,
		SessionID: event.Data.Object.ID,
		Metadata:  event.Data.Object.Metadata,
	}, nil
}

// SignPayload produces a valid signature header for the payload.
// Used by tests to forge authentic deliveries.
func SignPayload(secret string, ts time.Time, payload []byte) string {
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), computeSignature(secret, ts.Unix(), payload))
}

func parseSignatureHeader(header string) (int64, []string, error) {
	if header == "" {
		return 0, nil, ErrInvalidSignature
	}

	var ts int64 = -1
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.TrimSpace(kv[0]) {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, nil, ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if ts < 0 || len(signatures) == 0 {
		return 0, nil, ErrInvalidSignature
	}
	return ts, signatures, nil
}

func computeSignature(secret string, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

type stripeEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}
