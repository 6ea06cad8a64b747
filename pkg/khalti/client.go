// Package khalti wraps the Khalti payment verification endpoint. Khalti has
// no Go SDK; the gateway exposes a single verify call that takes the widget
// token and the amount in paisa.
package khalti

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const verifyPath = "/api/v2/payment/verify/"

type Client interface {
	Verify(ctx context.Context, token string, amountPaisa int64) error
}

type khaltiClient struct {
	httpClient *http.Client
	secretKey  string
	baseURL    string
}

func NewClient(secretKey, baseURL string) Client {
	return &khaltiClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		secretKey:  secretKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
	}
}

func (c *khaltiClient) Verify(ctx context.Context, token string, amountPaisa int64) error {

	form := url.Values{}
	form.Set("token", token)
	form.Set("amount", strconv.FormatInt(amountPaisa, 10))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+verifyPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build khalti request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Key "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("khalti verify request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("khalti verification rejected, status code: %d", resp.StatusCode)
	}

	return nil
}
