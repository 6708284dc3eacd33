package mailer

// Package mailer delivers newsletter confirmation requests to the external
// mail dispatch endpoint. The endpoint owns template rendering and delivery;
// this adapter only hands the signup off.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Config captures the dispatch endpoint behaviour we need.
type Config struct {
	EndpointURL string
	AuthToken   string
	Timeout     time.Duration
	RetryLimit  int
	Client      *http.Client
}

// Client posts confirmation requests to the dispatch endpoint.
type Client struct {
	endpointURL string
	authToken   string
	retryLimit  int
	client      *http.Client
}

// NewClient builds a dispatch client. Callers should pass a validated config.
func NewClient(cfg Config) (*Client, error) {
	endpointURL := strings.TrimSpace(cfg.EndpointURL)
	if endpointURL == "" {
		return nil, errors.New("mailer endpoint url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	retries := cfg.RetryLimit
	if retries < 0 {
		retries = 0
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		endpointURL: endpointURL,
		authToken:   strings.TrimSpace(cfg.AuthToken),
		retryLimit:  retries,
		client:      hc,
	}, nil
}

type confirmationPayload struct {
	Email    string `json:"email"`
	Template string `json:"template"`
}

// SendConfirmation posts a confirmation request for the given email.
func (c *Client) SendConfirmation(ctx context.Context, email string) error {
	body, err := json.Marshal(confirmationPayload{
		Email:    email,
		Template: "newsletter_confirmation",
	})
	if err != nil {
		return fmt.Errorf("encode confirmation payload: %w", err)
	}

	attempts := c.retryLimit + 1
	var lastErr error
	for attempt := range attempts {
		err = c.post(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < attempts-1 {
			// Simple linear backoff to avoid thundering retries.
			delay := time.Duration(attempt+1) * 200 * time.Millisecond
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				if !timer.Stop() {
					<-timer.C
				}
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return lastErr
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create dispatch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dispatch endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
