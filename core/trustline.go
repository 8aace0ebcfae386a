package core

import "context"

type Asset struct {
	Code   string `json:"code"`
	Issuer string `json:"issuer"`
}

// TrustlineStatus is derived on demand from the ledger and never cached
// beyond the current interaction.
type TrustlineStatus struct {
	Exists      bool   `json:"exists"`
	Balance     string `json:"balance,omitempty"`
	Limit       string `json:"limit,omitempty"`
	AssetCode   string `json:"asset_code"`
	AssetIssuer string `json:"asset_issuer"`
}

type TrustlineReceipt struct {
	TxHash string `json:"tx_hash"`
}

type TrustlineService interface {
	// Check reports whether the account already trusts the asset. Ledger
	// read failures degrade to Exists=false, never to an error; the caller
	// will then offer to establish one.
	Check(ctx context.Context, address string, asset Asset) *TrustlineStatus
	// Establish builds, signs and submits a change-trust transaction with
	// a maximal limit. Caller must hold a connected wallet session.
	Establish(ctx context.Context, address string, asset Asset) (*TrustlineReceipt, error)
}
