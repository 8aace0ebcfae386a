package xpayment

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/network"
	"github.com/tandalabs/tanda-gateway/core"
)

type stubWallet struct {
	address string
	signErr error
}

func (w *stubWallet) Connect(ctx context.Context) (*core.WalletSession, error) { return nil, nil }
func (w *stubWallet) CurrentAddress(ctx context.Context) string                { return w.address }
func (w *stubWallet) Disconnect()                                              {}
func (w *stubWallet) Network(ctx context.Context) (core.Network, string) {
	return core.NetworkTestnet, network.TestNetworkPassphrase
}
func (w *stubWallet) Sign(ctx context.Context, xdr string, opts core.SignOptions) (string, error) {
	if w.signErr != nil {
		return "", w.signErr
	}
	return "signed:" + xdr, nil
}

type stubLedger struct{}

func (stubLedger) AccountDetail(req horizonclient.AccountRequest) (hProtocol.Account, error) {
	return hProtocol.Account{AccountID: req.AccountID, Sequence: 7}, nil
}

func TestRoundTrip(t *testing.T) {
	codec := New(&stubWallet{}, stubLedger{})

	tests := []struct {
		name    string
		xdr     string
		network string
	}{
		{"testnet", "AAAAAgAAAAB=", network.TestNetworkPassphrase},
		{"public", "AAAAAgAAAAC=", network.PublicNetworkPassphrase},
		{"empty xdr", "", network.TestNetworkPassphrase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := codec.Encode(tt.xdr, tt.network)

			if again := codec.Encode(tt.xdr, tt.network); again != header {
				t.Error("Encode is not deterministic")
			}

			decoded, err := codec.Decode(header)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}

			if decoded.Version != core.XPaymentVersion {
				t.Errorf("Version = %q", decoded.Version)
			}

			if decoded.Scheme != core.XPaymentScheme {
				t.Errorf("Scheme = %q", decoded.Scheme)
			}

			if decoded.Network != tt.network {
				t.Errorf("Network = %q, want %q", decoded.Network, tt.network)
			}

			if decoded.Payload.SignedXDR != tt.xdr {
				t.Errorf("SignedXDR = %q, want %q", decoded.Payload.SignedXDR, tt.xdr)
			}
		})
	}
}

func TestEncodeFieldOrder(t *testing.T) {
	codec := New(&stubWallet{}, stubLedger{})

	header := codec.Encode("XDR", "net")
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		t.Fatalf("header is not base64: %v", err)
	}

	want := `{"version":"x402-stellar-v1","scheme":"exact","network":"net","payload":{"signedXdr":"XDR"}}`
	if string(raw) != want {
		t.Errorf("canonical form = %s, want %s", raw, want)
	}
}

func TestDecodeMalformed(t *testing.T) {
	codec := New(&stubWallet{}, stubLedger{})

	tests := []struct {
		name   string
		header string
	}{
		{"invalid base64", "*** not base64 ***"},
		{"base64 of non-json", base64.StdEncoding.EncodeToString([]byte("hola"))},
		{"wrong version", base64.StdEncoding.EncodeToString([]byte(`{"version":"x402-v2","scheme":"exact","network":"n","payload":{"signedXdr":"x"}}`))},
		{"wrong scheme", base64.StdEncoding.EncodeToString([]byte(`{"version":"x402-stellar-v1","scheme":"upto","network":"n","payload":{"signedXdr":"x"}}`))},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.header)
			if !errors.Is(err, core.ErrMalformedHeader) {
				t.Errorf("err = %v, want ErrMalformedHeader", err)
			}
		})
	}
}

func TestFromRequirementsSignsEnvelope(t *testing.T) {
	codec := New(&stubWallet{address: "GABC"}, stubLedger{})

	req := &core.PaymentRequirements{
		Scheme:      core.XPaymentScheme,
		Network:     network.TestNetworkPassphrase,
		UnsignedXDR: "CHALLENGE",
	}

	header, err := codec.FromRequirements(context.Background(), req)
	if err != nil {
		t.Fatalf("FromRequirements: %v", err)
	}

	decoded, err := codec.Decode(header)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if decoded.Payload.SignedXDR != "signed:CHALLENGE" {
		t.Errorf("SignedXDR = %q", decoded.Payload.SignedXDR)
	}

	if decoded.Network != network.TestNetworkPassphrase {
		t.Errorf("Network = %q", decoded.Network)
	}
}

func TestFromRequirementsSignRejected(t *testing.T) {
	codec := New(&stubWallet{address: "GABC", signErr: core.ErrSignatureRejected}, stubLedger{})

	req := &core.PaymentRequirements{UnsignedXDR: "CHALLENGE"}
	if _, err := codec.FromRequirements(context.Background(), req); !errors.Is(err, core.ErrSignatureRejected) {
		t.Fatalf("err = %v, want ErrSignatureRejected", err)
	}
}

func TestDecodeEmptyIsMalformed(t *testing.T) {
	codec := New(&stubWallet{}, stubLedger{})

	// valid base64 of valid JSON but missing literals
	header := base64.StdEncoding.EncodeToString([]byte(`{}`))
	if _, err := codec.Decode(header); !errors.Is(err, core.ErrMalformedHeader) {
		t.Fatalf("err = %v, want ErrMalformedHeader", err)
	}
}
