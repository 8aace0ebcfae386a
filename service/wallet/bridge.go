package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/asaskevich/govalidator"
	"github.com/go-resty/resty/v2"
	"github.com/tandalabs/tanda-gateway/core"
)

type BridgeConfig struct {
	BaseURL string `valid:"url,required"`
}

// NewBridge returns a WalletDriver backed by a local signer bridge speaking
// JSON over HTTP. Any bridge exposing the four capability endpoints is
// interchangeable.
func NewBridge(cfg BridgeConfig) core.WalletDriver {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &bridge{
		client: resty.New().SetBaseURL(cfg.BaseURL),
	}
}

type bridge struct {
	client *resty.Client
}

func (b *bridge) OpenSelector(ctx context.Context) error {
	resp, err := b.client.R().SetContext(ctx).Post("/selector/open")
	if err != nil {
		return err
	}

	if resp.IsError() {
		return fmt.Errorf("wallet bridge: %s", resp.Status())
	}

	return nil
}

func (b *bridge) Address(ctx context.Context) (string, error) {
	var out struct {
		Address string `json:"address"`
	}

	resp, err := b.client.R().SetContext(ctx).SetResult(&out).Get("/address")
	if err != nil {
		return "", err
	}

	if resp.IsError() {
		return "", fmt.Errorf("wallet bridge: %s", resp.Status())
	}

	return out.Address, nil
}

func (b *bridge) SignTransaction(ctx context.Context, xdr string, opts core.SignOptions) (string, error) {
	var out struct {
		SignedXDR string `json:"signedXdr"`
	}

	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"xdr":               xdr,
			"networkPassphrase": opts.NetworkPassphrase,
			"address":           opts.Address,
		}).
		SetResult(&out).
		Post("/sign")
	if err != nil {
		return "", err
	}

	if resp.IsError() {
		return "", fmt.Errorf("wallet bridge: %s", resp.Status())
	}

	return out.SignedXDR, nil
}

// Network returns the raw reply on purpose: bridges answer with either a
// bare string or an object, and the session manager normalizes the shape.
func (b *bridge) Network(ctx context.Context) (json.RawMessage, error) {
	resp, err := b.client.R().SetContext(ctx).Get("/network")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("wallet bridge: %s", resp.Status())
	}

	return json.RawMessage(resp.Body()), nil
}
