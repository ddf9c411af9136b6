package avail

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/iiroan/formwatch/internal/validate"
)

// Verdict is the wire form of an availability answer.
type Verdict struct {
	Field     string `json:"field"`
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// VerdictFrom converts a result to its wire form.
func VerdictFrom(kind validate.Kind, res validate.Result[string]) Verdict {
	return Verdict{
		Field:     kind.String(),
		Value:     res.Data,
		Available: res.Valid,
		Reason:    res.Reason,
	}
}

// HTTPChecker asks a formwatch service for availability.
type HTTPChecker struct {
	baseURL string
	client  *http.Client
	logger  *log.Logger
}

// NewHTTPChecker targets the service at baseURL.
func NewHTTPChecker(baseURL string, timeout time.Duration, logger *log.Logger) *HTTPChecker {
	if logger == nil {
		logger = discardLogger()
	}
	return &HTTPChecker{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// CheckSync performs GET /v1/availability/{kind}?value=.
func (c *HTTPChecker) CheckSync(ctx context.Context, kind validate.Kind, value string) validate.Result[string] {
	if !kind.Remote() {
		return unsupported(kind, value)
	}

	v, err := c.fetch(ctx, kind, value)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Warn("availability request failed", "field", kind, "error", err)
		}
		return validate.Failure(UnverifiedReason(kind), value)
	}
	if v.Available {
		return validate.Success(value)
	}
	reason := v.Reason
	if reason == "" {
		reason = TakenReason(kind)
	}
	return validate.Failure(reason, value)
}

// CheckAsync runs CheckSync in the background; canceling aborts the request.
func (c *HTTPChecker) CheckAsync(kind validate.Kind, value string) *Call {
	return Go(func(ctx context.Context) validate.Result[string] {
		return c.CheckSync(ctx, kind, value)
	})
}

func (c *HTTPChecker) fetch(ctx context.Context, kind validate.Kind, value string) (Verdict, error) {
	endpoint := fmt.Sprintf("%s/v1/availability/%s?value=%s", c.baseURL, kind, url.QueryEscape(value))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Verdict{}, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Verdict{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var v Verdict
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Verdict{}, fmt.Errorf("decoding verdict: %w", err)
	}
	return v, nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
