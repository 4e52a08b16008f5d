// Package taxapi is a JSON client for the sales tax provider.
package taxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"commerce-sync/internal/gateway"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.taxjar.com"

type Config struct {
	BaseURL string
	APIKey  string
	// RPS caps outgoing requests per second; zero disables the limiter.
	RPS     float64
	Timeout time.Duration
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

var _ gateway.TaxGateway = (*Client)(nil)

// New builds a client. The API key is captured once here.
func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: gateway.NewLimiter(cfg.RPS),
		logger:  logger,
	}
}

type taxRequest struct {
	FromCountry string      `json:"from_country,omitempty"`
	FromZip     string      `json:"from_zip,omitempty"`
	FromState   string      `json:"from_state,omitempty"`
	FromCity    string      `json:"from_city,omitempty"`
	FromStreet  string      `json:"from_street,omitempty"`
	ToCountry   string      `json:"to_country,omitempty"`
	ToZip       string      `json:"to_zip,omitempty"`
	ToState     string      `json:"to_state,omitempty"`
	ToCity      string      `json:"to_city,omitempty"`
	ToStreet    string      `json:"to_street,omitempty"`
	Amount      json.Number `json:"amount"`
	Shipping    json.Number `json:"shipping"`
}

type taxResponse struct {
	Tax struct {
		AmountToCollect decimal.Decimal `json:"amount_to_collect"`
	} `json:"tax"`
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

func (c *Client) TaxForOrder(ctx context.Context, req gateway.TaxQuoteRequest) (*gateway.TaxQuote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(taxRequest{
		FromCountry: req.From.Country,
		FromZip:     req.From.Zip,
		FromState:   req.From.State,
		FromCity:    req.From.City,
		FromStreet:  req.From.Street,
		ToCountry:   req.To.Country,
		ToZip:       req.To.Zip,
		ToState:     req.To.State,
		ToCity:      req.To.City,
		ToStreet:    req.To.Street,
		Amount:      json.Number(req.Amount.String()),
		Shipping:    json.Number(req.Shipping.String()),
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/taxes", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Printf("tax api: quote error=%v", err)
		return nil, fmt.Errorf("tax api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tax api: read response: %w", err)
	}
	c.logger.Printf("tax api: quote status=%d", resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, decodeError(resp.StatusCode, raw)
	}

	var out taxResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("tax api: decode quote: %w", err)
	}
	return &gateway.TaxQuote{AmountToCollect: out.Tax.AmountToCollect}, nil
}

func decodeError(status int, raw []byte) error {
	kind := gateway.KindInvalidRequest
	switch {
	case status == http.StatusUnauthorized:
		kind = gateway.KindAuthentication
	case status == http.StatusNotFound:
		kind = gateway.KindNotFound
	case status == http.StatusTooManyRequests:
		kind = gateway.KindRateLimit
	case status >= http.StatusInternalServerError:
		kind = gateway.KindAPI
	}

	var body errorResponse
	msg := http.StatusText(status)
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Detail != "":
			msg = body.Detail
		case body.Error != "":
			msg = body.Error
		}
	}
	return &gateway.Error{Kind: kind, Message: msg, Status: status}
}
