// Package apiclient talks to the remote Kaleido ledger service.
//
// The service exposes two calls: a registration check and a balance
// push. Both are independently retried under the client's RetryPolicy;
// transient network failures back off exponentially, explicit
// rejections abort immediately.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/anggasec28/kaleido/internal/log"
)

const userAgent = "kaleidod/0.1"

// Registration is the service's answer to a registration check.
type Registration struct {
	IsRegistered  bool
	ReferralBonus float64
}

// Balance is one earnings snapshot pushed to the service.
type Balance struct {
	Total   float64 `json:"total"`
	Pending float64 `json:"pending"`
	Paid    float64 `json:"paid"`
}

// Client is an HTTP client for the ledger service.
type Client struct {
	base  string
	http  *http.Client
	retry RetryPolicy
}

// New creates a client targeting the given base URL.
func New(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		base:  base,
		http:  &http.Client{Timeout: timeout},
		retry: DefaultRetryPolicy(),
	}
}

// WithRetryPolicy overrides the default retry policy. Mainly for tests,
// which cannot afford real exponential backoff.
func (c *Client) WithRetryPolicy(p RetryPolicy) *Client {
	c.retry = p
	return c
}

// registrationResponse is the check-registration wire format.
type registrationResponse struct {
	IsRegistered bool `json:"isRegistered"`
	UserData     struct {
		ReferralBonus float64 `json:"referralBonus"`
	} `json:"userData"`
}

// updateRequest is the update-balance wire format.
type updateRequest struct {
	Wallet   string  `json:"wallet"`
	Earnings Balance `json:"earnings"`
}

// CheckRegistration asks the service whether the wallet is registered.
// An explicit isRegistered:false is a value, not an error; only
// transport and rejection failures surface as errors.
func (c *Client) CheckRegistration(ctx context.Context, wallet string) (*Registration, error) {
	endpoint := fmt.Sprintf("%s/check-registration?wallet=%s", c.base, url.QueryEscape(wallet))

	var reg *Registration
	err := c.retry.Do(ctx, "check registration", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return &RequestError{Body: err.Error()}
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.http.Do(req)
		if err != nil {
			log.API.Debug().Err(err).Str("wallet", wallet).Msg("Registration check failed")
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return classifyStatus(resp, string(body))
		}

		var rr registrationResponse
		if err := json.Unmarshal(body, &rr); err != nil {
			return &RequestError{Status: resp.StatusCode, Body: "unparseable response"}
		}
		reg = &Registration{
			IsRegistered:  rr.IsRegistered,
			ReferralBonus: rr.UserData.ReferralBonus,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reg, nil
}

// PushBalance reports an earnings snapshot for the wallet.
// The response body is discarded; only success or failure matters.
func (c *Client) PushBalance(ctx context.Context, wallet string, bal Balance) error {
	endpoint := c.base + "/update-balance"

	payload, err := json.Marshal(updateRequest{Wallet: wallet, Earnings: bal})
	if err != nil {
		return fmt.Errorf("marshal balance: %w", err)
	}

	return c.retry.Do(ctx, "push balance", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return &RequestError{Body: err.Error()}
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			log.API.Debug().Err(err).Str("wallet", wallet).Msg("Balance push failed")
			return err
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode != http.StatusOK {
			return classifyStatus(resp, "")
		}
		return nil
	})
}
