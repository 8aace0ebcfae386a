// Package agent is the HTTP client for the external order and onboarding
// service. The gateway only reads orders and submits claims against them;
// settlement and status transitions happen on the agent side.
package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tandalabs/tanda-gateway/core"
)

type Config struct {
	BaseURL string
}

// New builds the agent client. An unset base URL is fatal for every flow
// that needs the agent, so it fails construction rather than first use.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, fmt.Errorf("%w: agent base url", core.ErrConfigMissing)
	}

	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: agent base url: %v", core.ErrConfigMissing, err)
	}

	return &Client{client: resty.New().SetBaseURL(base)}, nil
}

type Client struct {
	client *resty.Client
}

var (
	_ core.OrderService = (*Client)(nil)
	_ core.GroupService = (*Client)(nil)
)

// serverMessage is the agent's error envelope.
type serverMessage struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

func (m serverMessage) text(fallback string) string {
	if m.Message != "" {
		return m.Message
	}
	return fallback
}

func (c *Client) Order(ctx context.Context, id string) (*core.Order, error) {
	var (
		order   core.Order
		failure serverMessage
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&order).
		SetError(&failure).
		Get("/api/orders/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrOrderFetch, err)
	}

	switch {
	case resp.StatusCode() == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", core.ErrOrderNotFound, id)
	case resp.IsError():
		return nil, fmt.Errorf("%w: %s", core.ErrOrderFetch, failure.text(resp.Status()))
	}

	return &order, nil
}

func (c *Client) Claim(ctx context.Context, id string, req *core.ClaimRequest) (*core.ClaimReceipt, error) {
	var (
		receipt core.ClaimReceipt
		failure serverMessage
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetBody(req).
		SetResult(&receipt).
		SetError(&failure).
		Post("/api/orders/" + url.PathEscape(id) + "/claim")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClaimRejected, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s", core.ErrClaimRejected, failure.text(resp.Status()))
	}

	return &receipt, nil
}

func (c *Client) RequestCode(ctx context.Context, phone string) (string, error) {
	var (
		out struct {
			Code string `json:"code"`
		}
		failure serverMessage
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("phone", phone).
		SetResult(&out).
		SetError(&failure).
		Post("/api/onboarding/verify")
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrCodeRequest, err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("%w: %s", core.ErrCodeRequest, failure.text(resp.Status()))
	}

	return out.Code, nil
}

func (c *Client) CreateGroup(ctx context.Context, req *core.GroupRequest) (*core.GroupReceipt, error) {
	var (
		receipt core.GroupReceipt
		failure serverMessage
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&receipt).
		SetError(&failure).
		Post("/api/onboarding")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("create group: %s", failure.text(resp.Status()))
	}

	return &receipt, nil
}
