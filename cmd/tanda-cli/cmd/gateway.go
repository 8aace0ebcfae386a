package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/spf13/viper"
	"github.com/tandalabs/tanda-gateway/core"
)

func getGatewayClient() *gatewayClient {
	base := strings.TrimRight(viper.GetString("endpoint"), "/")
	return &gatewayClient{
		http: resty.New().SetBaseURL(base).SetHeader("Accept", "application/json"),
	}
}

// gatewayClient speaks the gateway's REST surface. It satisfies
// core.GroupService and core.VerificationStore (read side only) so the
// onboarding wizard can run against a remote gateway.
type gatewayClient struct {
	http *resty.Client
}

type gatewayMessage struct {
	Message string `json:"message"`
}

func (c *gatewayClient) Order(ctx context.Context, id string) (*core.Order, error) {
	var (
		order  core.Order
		failed gatewayMessage
	)

	r, err := c.http.R().
		SetContext(ctx).
		SetResult(&order).
		SetError(&failed).
		Get("/api/orders/" + id)
	if err != nil {
		return nil, err
	}

	if r.IsError() {
		return nil, fmt.Errorf("gateway: %s (%s)", failed.Message, r.Status())
	}

	return &order, nil
}

func (c *gatewayClient) Claim(ctx context.Context, id string, req *core.ClaimRequest) (*core.ClaimReceipt, error) {
	var (
		receipt core.ClaimReceipt
		failed  gatewayMessage
	)

	r, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&receipt).
		SetError(&failed).
		Post("/api/orders/" + id + "/claim")
	if err != nil {
		return nil, err
	}

	if r.IsError() {
		return nil, fmt.Errorf("gateway: %s (%s)", failed.Message, r.Status())
	}

	return &receipt, nil
}

func (c *gatewayClient) RequestCode(ctx context.Context, phone string) (string, error) {
	var (
		body   struct{ Code string `json:"code"` }
		failed gatewayMessage
	)

	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("phone", phone).
		SetResult(&body).
		SetError(&failed).
		Post("/api/onboarding/verify")
	if err != nil {
		return "", err
	}

	if r.IsError() {
		return "", fmt.Errorf("gateway: %s (%s)", failed.Message, r.Status())
	}

	return body.Code, nil
}

func (c *gatewayClient) CreateGroup(ctx context.Context, req *core.GroupRequest) (*core.GroupReceipt, error) {
	var (
		receipt core.GroupReceipt
		failed  gatewayMessage
	)

	r, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&receipt).
		SetError(&failed).
		Post("/api/onboarding")
	if err != nil {
		return nil, err
	}

	if r.IsError() {
		return nil, fmt.Errorf("gateway: %s (%s)", failed.Message, r.Status())
	}

	return &receipt, nil
}

// Lookup reads verification state through the webhook polling endpoint. The
// wire format collapses "absent" and "unverified", both come back as a not
// found error here and the wizard keeps polling either way.
func (c *gatewayClient) Lookup(ctx context.Context, phone string) (*core.VerificationRecord, error) {
	var body struct {
		Verified         bool   `json:"verified"`
		Timestamp        *int64 `json:"timestamp"`
		WhatsappUsername string `json:"whatsappUsername"`
		WhatsappNumber   string `json:"whatsappNumber"`
	}

	r, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("phone", phone).
		SetResult(&body).
		Get("/webhook/check_verification")
	if err != nil {
		return nil, err
	}

	if r.StatusCode() != http.StatusOK || body.Timestamp == nil {
		return nil, fmt.Errorf("verification for %s: %w", phone, sql.ErrNoRows)
	}

	return &core.VerificationRecord{
		Phone:            core.NormalizePhone(phone),
		Verified:         body.Verified,
		Timestamp:        time.UnixMilli(*body.Timestamp),
		WhatsappUsername: body.WhatsappUsername,
		WhatsappNumber:   body.WhatsappNumber,
	}, nil
}

func (c *gatewayClient) Record(ctx context.Context, record *core.VerificationRecord) error {
	return fmt.Errorf("verification records are written by the agent webhook, not the cli")
}

func (c *gatewayClient) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, fmt.Errorf("verification sweeping runs in the gateway worker, not the cli")
}
