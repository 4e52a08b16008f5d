// Package rest talks to the hosted commerce provider over its form-encoded
// HTTP API.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"commerce-sync/internal/gateway"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.stripe.com"
	accountHeader  = "Stripe-Account"
)

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

var _ gateway.Commerce = (*Client)(nil)

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

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Param   string `json:"param"`
		Message string `json:"message"`
	} `json:"error"`
}

type listEnvelope[T any] struct {
	Data []T `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, form url.Values, scope gateway.Scope, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	target := c.baseURL + path
	var body io.Reader
	if form != nil {
		if method == http.MethodGet {
			target += "?" + form.Encode()
		} else {
			body = strings.NewReader(form.Encode())
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.apiKey, "")
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if !scope.Platform() {
		req.Header.Set(accountHeader, scope.SubAccount)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("commerce api: %s %s error=%v", method, path, err)
		return fmt.Errorf("commerce api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("commerce api: read response: %w", err)
	}
	c.logger.Printf("commerce api: %s %s status=%d", method, path, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("commerce api: decode %s: %w", path, err)
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Error.Message == "" {
		return &gateway.Error{Kind: kindForStatus(status), Message: http.StatusText(status), Status: status}
	}
	kind := gateway.ErrorKind(env.Error.Type)
	if kind == "" {
		kind = kindForStatus(status)
	}
	return &gateway.Error{
		Kind:    kind,
		Code:    env.Error.Code,
		Param:   env.Error.Param,
		Message: env.Error.Message,
		Status:  status,
	}
}

func kindForStatus(status int) gateway.ErrorKind {
	switch {
	case status == http.StatusNotFound:
		return gateway.KindNotFound
	case status == http.StatusUnauthorized:
		return gateway.KindAuthentication
	case status == http.StatusTooManyRequests:
		return gateway.KindRateLimit
	case status == http.StatusPaymentRequired:
		return gateway.KindCard
	case status < http.StatusInternalServerError:
		return gateway.KindInvalidRequest
	default:
		return gateway.KindAPI
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

func setMap(form url.Values, key string, m map[string]string) {
	for k, v := range m {
		form.Set(key+"["+k+"]", v)
	}
}

func setList(form url.Values, key string, values []string) {
	for _, v := range values {
		form.Add(key+"[]", v)
	}
}

func setAddress(form url.Values, key string, a gateway.Address) {
	form.Set(key+"[line1]", a.Line1)
	if a.Line2 != "" {
		form.Set(key+"[line2]", a.Line2)
	}
	form.Set(key+"[city]", a.City)
	form.Set(key+"[state]", a.State)
	form.Set(key+"[postal_code]", a.PostalCode)
	form.Set(key+"[country]", a.Country)
}
