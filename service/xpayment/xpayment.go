package xpayment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/pandodao/generic"
	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
	"github.com/tandalabs/tanda-gateway/core"
)

// Ledger loads the payer account when a payment envelope has to be built
// locally. *horizonclient.Client satisfies it.
type Ledger interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
}

func New(wallets core.WalletService, ledger Ledger) core.ChallengeCodec {
	return &codec{wallets: wallets, ledger: ledger}
}

type codec struct {
	wallets core.WalletService
	ledger  Ledger
}

// Encode produces the canonical header: fixed-order JSON, base64-encoded.
// Deterministic for a given (signedXDR, networkPassphrase) pair.
func (c *codec) Encode(signedXDR, networkPassphrase string) string {
	header := core.XPaymentHeader{
		Version: core.XPaymentVersion,
		Scheme:  core.XPaymentScheme,
		Network: networkPassphrase,
		Payload: core.XPaymentPayload{SignedXDR: signedXDR},
	}

	return base64.StdEncoding.EncodeToString(generic.Must(json.Marshal(header)))
}

func (c *codec) Decode(header string) (*core.XPaymentHeader, error) {
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", core.ErrMalformedHeader, err)
	}

	var decoded core.XPaymentHeader
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: json: %v", core.ErrMalformedHeader, err)
	}

	if decoded.Version != core.XPaymentVersion {
		return nil, fmt.Errorf("%w: unknown version %q", core.ErrMalformedHeader, decoded.Version)
	}

	if decoded.Scheme != core.XPaymentScheme {
		return nil, fmt.Errorf("%w: unknown scheme %q", core.ErrMalformedHeader, decoded.Scheme)
	}

	return &decoded, nil
}

// FromRequirements satisfies the richer paymentRequirements protocol. When
// the requirements carry their own unsigned envelope it is signed as-is;
// otherwise a payment transaction is built locally from the requirement
// fields. Either way the result is enveloped with the requirement's network
// rather than the session's.
func (c *codec) FromRequirements(ctx context.Context, req *core.PaymentRequirements) (string, error) {
	network := req.Network
	if network == "" {
		_, network = c.wallets.Network(ctx)
	}

	xdr := req.UnsignedXDR
	if xdr == "" {
		built, err := c.buildPayment(ctx, req)
		if err != nil {
			return "", err
		}
		xdr = built
	}

	signed, err := c.wallets.Sign(ctx, xdr, core.SignOptions{
		NetworkPassphrase: network,
		Address:           c.wallets.CurrentAddress(ctx),
	})
	if err != nil {
		return "", err
	}

	return c.Encode(signed, network), nil
}

func (c *codec) buildPayment(ctx context.Context, req *core.PaymentRequirements) (string, error) {
	address := c.wallets.CurrentAddress(ctx)
	if address == "" {
		return "", core.ErrWalletUnavailable
	}

	account, err := c.ledger.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return "", fmt.Errorf("load payer account: %w", err)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(180)},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: req.PayTo,
				Amount:      req.Amount,
				Asset:       txnbuild.CreditAsset{Code: req.Asset.Code, Issuer: req.Asset.Issuer},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("build payment: %w", err)
	}

	return tx.Base64()
}
