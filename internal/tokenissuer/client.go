package tokenissuer

import (
	"accmanager-api/pkg/config"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// TokenPair is the opaque pair minted by the issuer
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Issuer mints a token pair for an authenticated subject
type Issuer interface {
	IssueTokens(ctx context.Context, email string) (TokenPair, error)
}

type setTokenRequest struct {
	Email string `json:"email"`
}

type setTokenResponse struct {
	AccToken string `json:"accToken"`
	RefToken string `json:"refToken"`
}

// maxResponseBytes bounds how much of the issuer response is read
const maxResponseBytes = 1 << 20

// Client calls the token issuer over HTTP. Each call is a single attempt
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient builds a client for cfg. The configured timeout bounds every call
func NewClient(cfg *config.TokenIssuerConfig) (*Client, error) {
	if cfg == nil {
		return nil, ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
	}

	return &Client{
		url:        cfg.SetTokenURL(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// URL returns the endpoint the client posts to
func (c *Client) URL() string {
	return c.url
}

// IssueTokens posts {email} to the issuer and returns the minted pair
func (c *Client) IssueTokens(ctx context.Context, email string) (TokenPair, error) {
	body, err := json.Marshal(setTokenRequest{Email: email})
	if err != nil {
		return TokenPair{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return TokenPair{}, &Error{Code: CodeBadRequest, Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return TokenPair{}, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return TokenPair{}, statusError(resp.StatusCode)
	}

	var out setTokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return TokenPair{}, &Error{
			Code:       CodeBadResponse,
			StatusCode: resp.StatusCode,
			Message:    "invalid token issuer response: " + err.Error(),
			Err:        err,
		}
	}

	return TokenPair{AccessToken: out.AccToken, RefreshToken: out.RefToken}, nil
}

// transportError classifies errors returned by http.Client.Do
func transportError(err error) *Error {
	code := CodeNetwork
	var netErr interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		code = CodeTimeout
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}
