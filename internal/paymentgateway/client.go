package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hopebridge/donation-management/internal"
	"github.com/hopebridge/donation-management/internal/core/common/validation"
)

// CheckoutRequest asks the gateway for a hosted checkout session. The
// payment reference is minted by the caller and persisted on the
// pending donation before the browser is redirected, so the webhook can
// correlate the outcome without guessing.
type CheckoutRequest struct {
	Amount             decimal.Decimal `json:"amount"`
	CustomerName       string          `json:"customerName"`
	CustomerEmail      string          `json:"customerEmail"`
	PaymentReference   string          `json:"paymentReference"`
	PaymentDescription string          `json:"paymentDescription"`
}

func (r *CheckoutRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("amount", r.Amount).Required().Positive(internal.ErrCodeInvalidAmount)
	validator.Field("customerEmail", r.CustomerEmail).Required().Email()
	validator.Field("paymentReference", r.PaymentReference).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// CheckoutSession is the gateway's answer: where to send the browser.
type CheckoutSession struct {
	CheckoutURL string `json:"checkoutUrl"`
	Reference   string `json:"reference"`
}

type Client struct {
	client      *http.Client
	baseURL     string
	secretKey   string
	callbackURL string
	logger      *slog.Logger
}

type Config struct {
	BaseURL        string
	SecretKey      string
	CallbackURL    string
	RequestTimeout time.Duration
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:      &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		secretKey:   cfg.SecretKey,
		callbackURL: cfg.CallbackURL,
		logger:      logger,
	}
}

// InitiateCheckout builds a checkout request and returns the hosted
// checkout URL. This is the shape the donation service depends on.
func (c *Client) InitiateCheckout(ctx context.Context, amount decimal.Decimal, customerName, customerEmail, reference, description string) (string, error) {
	session, err := c.CreateSession(ctx, &CheckoutRequest{
		Amount:             amount,
		CustomerName:       customerName,
		CustomerEmail:      customerEmail,
		PaymentReference:   reference,
		PaymentDescription: description,
	})
	if err != nil {
		return "", err
	}
	return session.CheckoutURL, nil
}

// CreateSession requests a hosted checkout session. It does not touch
// the donation store; the caller creates the pending record first and
// redirects the donor on success. Any failure is surfaced so the caller
// can show a "try again" response instead of silently dropping the
// donation attempt.
func (c *Client) CreateSession(ctx context.Context, req *CheckoutRequest) (*CheckoutSession, error) {
	if err := req.Validate(); err != nil {
		c.logger.Error("checkout request validation failed", "error", err)
		return nil, fmt.Errorf("validation error: %w", err)
	}

	payload := map[string]interface{}{
		"amount":       req.Amount,
		"currency":     "USD",
		"reference":    req.PaymentReference,
		"description":  req.PaymentDescription,
		"callback_url": c.callbackURL,
		"customer": map[string]string{
			"name":  req.CustomerName,
			"email": req.CustomerEmail,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	url := fmt.Sprintf("%s/checkout/sessions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	c.logger.Info("initiating checkout session",
		"reference", req.PaymentReference,
		"amount", req.Amount,
		"customer_email", req.CustomerEmail)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		c.logger.Error("checkout request failed", "error", err, "reference", req.PaymentReference)
		return nil, internal.NewExternalError("payment gateway unreachable", internal.ErrCodeGatewayError, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("gateway returned error",
			"status", resp.StatusCode,
			"response", string(respBody),
			"reference", req.PaymentReference)
		return nil, internal.NewExternalError(
			fmt.Sprintf("gateway error: status %d", resp.StatusCode),
			internal.ErrCodeCheckoutFailed, nil)
	}

	var apiResponse struct {
		Status bool `json:"status"`
		Data   struct {
			CheckoutURL string `json:"checkout_url"`
			Reference   string `json:"reference"`
		} `json:"data"`
	}

	if err := json.Unmarshal(respBody, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	if apiResponse.Data.CheckoutURL == "" {
		return nil, internal.NewExternalError("gateway returned no checkout URL", internal.ErrCodeCheckoutFailed, nil)
	}

	c.logger.Info("checkout session created",
		"reference", req.PaymentReference,
		"checkout_url", apiResponse.Data.CheckoutURL)

	return &CheckoutSession{
		CheckoutURL: apiResponse.Data.CheckoutURL,
		Reference:   req.PaymentReference,
	}, nil
}
