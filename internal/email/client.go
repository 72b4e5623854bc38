// Package email sends transactional mail through an external HTTP provider.
//
// The client performs a single synchronous round-trip per send. There is no
// retry loop here: the subscription workflow calls Send while holding a
// database transaction, so the client-wide timeout is the only thing bounding
// how long that transaction stays open. Keep it tight.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ignite/newsletter/internal/config"
	"github.com/ignite/newsletter/internal/domain"
)

// HTTPDoer is the interface for executing HTTP requests. Both *http.Client
// and test doubles satisfy it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a transactional email API client.
type Client struct {
	baseURL    string
	serverTok  string
	sender     domain.SubscriberEmail
	httpClient HTTPDoer
}

// NewClient creates a new email client from configuration. The sender address
// must already have passed value-object validation.
func NewClient(cfg config.EmailConfig, sender domain.SubscriberEmail) *Client {
	return &Client{
		baseURL:   cfg.BaseURL,
		serverTok: cfg.ServerToken,
		sender:    sender,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// SetHTTPClient replaces the underlying HTTP client. Tests use this to
// inject failures without a network.
func (c *Client) SetHTTPClient(doer HTTPDoer) { c.httpClient = doer }

// Sender returns the configured sender address.
func (c *Client) Sender() domain.SubscriberEmail { return c.sender }

// DeliveryError reports a failed send. StatusCode is zero when the request
// never produced a response (transport error, timeout).
type DeliveryError struct {
	StatusCode int
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("email delivery failed: provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("email delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// sendEmailRequest is the provider wire format. Field names are PascalCase
// per the provider's API contract.
type sendEmailRequest struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HTMLBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// Send posts one email to the provider and reports the outcome. Any transport
// failure or non-2xx status yields a *DeliveryError.
func (c *Client) Send(ctx context.Context, to domain.SubscriberEmail, subject, htmlBody, textBody string) error {
	payload := sendEmailRequest{
		From:     c.sender.String(),
		To:       to.String(),
		Subject:  subject,
		HTMLBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("encoding request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverTok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("executing request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain for connection reuse; the body is not part of the contract.
		io.Copy(io.Discard, resp.Body)
		return &DeliveryError{StatusCode: resp.StatusCode}
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}
