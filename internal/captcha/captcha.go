package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Client verifies CAPTCHA challenge responses against the external
// verification endpoint.
type Client struct {
	httpClient *http.Client
	verifyURL  string
	secret     string
}

// NewClient creates a verifier for the given endpoint and site secret.
func NewClient(verifyURL, secret string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		verifyURL: verifyURL,
		secret:    secret,
	}
}

// verifyReply is the service's JSON response. Only success matters; the
// error codes are logged upstream when verification is refused.
type verifyReply struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Verify posts the challenge response to the verification endpoint and
// returns the service's verdict. Transport and decode failures return an
// error; the caller must treat anything but (true, nil) as a refusal.
func (c *Client) Verify(ctx context.Context, response string) (bool, error) {
	form := url.Values{}
	form.Set("secret", c.secret)
	form.Set("response", response)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("captcha: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha: verification request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("captcha: verification endpoint returned %d", resp.StatusCode)
	}

	var reply verifyReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return false, fmt.Errorf("captcha: decoding reply: %w", err)
	}

	return reply.Success, nil
}
