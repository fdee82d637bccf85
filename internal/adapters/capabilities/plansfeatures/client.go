package plansfeatures

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"med-scheduler/internal/platform/httpclient"
)

var (
	ErrPlansNotConfigured = errors.New("plans-features client not configured")
	ErrPlansUnauthorized  = errors.New("plans-features unauthorized")
	ErrPlansUpstream      = errors.New("plans-features upstream error")
)

type Config struct {
	BaseURL string
	APIKey  string

	APIKeyHeader string
	Timeout      time.Duration
}

type Client struct {
	http         *httpclient.Client
	apiKey       string
	apiKeyHeader string
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		http:         hc,
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != "" && c.apiKey != ""
}

type capabilitiesResponse struct {
	Capabilities map[string]bool `json:"capabilities"`
}

// GetCapabilities trae el mapa de capabilities del plan de un usuario.
func (c *Client) GetCapabilities(ctx context.Context, userID string) (capabilitiesResponse, error) {
	if !c.IsConfigured() {
		return capabilitiesResponse{}, ErrPlansNotConfigured
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return capabilitiesResponse{}, errors.New("user id required")
	}

	headers := map[string]string{c.apiKeyHeader: c.apiKey}

	var resp capabilitiesResponse
	err := c.http.DoJSON(ctx, http.MethodGet, "/v1/users/"+userID+"/capabilities", headers, nil, &resp)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
				return capabilitiesResponse{}, ErrPlansUnauthorized
			}
			return capabilitiesResponse{}, fmt.Errorf("%w: %v", ErrPlansUpstream, httpErr)
		}
		return capabilitiesResponse{}, err
	}

	if resp.Capabilities == nil {
		resp.Capabilities = map[string]bool{}
	}
	return resp, nil
}
