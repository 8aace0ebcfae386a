package core

import (
	"context"
	"encoding/json"

	"github.com/stellar/go/network"
)

type Network string

const (
	NetworkPublic     Network = "PUBLIC"
	NetworkTestnet    Network = "TESTNET"
	NetworkFuturenet  Network = "FUTURENET"
	NetworkStandalone Network = "STANDALONE"
)

// Passphrase maps a network to its canonical passphrase.
func (n Network) Passphrase() string {
	switch n {
	case NetworkPublic:
		return network.PublicNetworkPassphrase
	case NetworkFuturenet:
		return network.FutureNetworkPassphrase
	case NetworkStandalone:
		return "Standalone Network ; February 2017"
	default:
		return network.TestNetworkPassphrase
	}
}

type WalletSession struct {
	Address           string  `json:"address"`
	Network           Network `json:"network"`
	NetworkPassphrase string  `json:"network_passphrase"`
	Connected         bool    `json:"connected"`
}

type SignOptions struct {
	NetworkPassphrase string `json:"network_passphrase"`
	Address           string `json:"address,omitempty"`
}

// WalletDriver is the external wallet capability surface. Any wallet bridge
// implementing these four operations is interchangeable. Network returns the
// raw reply because bridges disagree on its shape (bare string vs object);
// WalletService normalizes it once at the boundary.
type WalletDriver interface {
	OpenSelector(ctx context.Context) error
	Address(ctx context.Context) (string, error)
	SignTransaction(ctx context.Context, xdr string, opts SignOptions) (string, error)
	Network(ctx context.Context) (json.RawMessage, error)
}

// WalletService owns the single live wallet session per process.
type WalletService interface {
	// Connect returns the existing session without reopening the selection
	// prompt. Fails with ErrWalletUnavailable after a bounded wait.
	Connect(ctx context.Context) (*WalletSession, error)
	// CurrentAddress never fails; driver errors read as absent.
	CurrentAddress(ctx context.Context) string
	// Sign does not pre-validate that the passphrase matches the wallet's
	// active network; the wallet itself rejects a mismatch.
	Sign(ctx context.Context, xdr string, opts SignOptions) (string, error)
	Disconnect()
	Network(ctx context.Context) (Network, string)
}
