package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tandalabs/tanda-gateway/core"
)

type stubDriver struct {
	address    string
	addressErr error
	network    string
	networkErr error
	signed     string
	signErr    error

	selectorOpened int
	// address to report once the selector has been opened
	addressAfterSelect string
}

func (d *stubDriver) OpenSelector(ctx context.Context) error {
	d.selectorOpened++
	if d.addressAfterSelect != "" {
		d.address = d.addressAfterSelect
		d.addressErr = nil
	}
	return nil
}

func (d *stubDriver) Address(ctx context.Context) (string, error) {
	return d.address, d.addressErr
}

func (d *stubDriver) SignTransaction(ctx context.Context, xdr string, opts core.SignOptions) (string, error) {
	return d.signed, d.signErr
}

func (d *stubDriver) Network(ctx context.Context) (json.RawMessage, error) {
	if d.networkErr != nil {
		return nil, d.networkErr
	}
	return json.RawMessage(d.network), nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestConnectIdempotent(t *testing.T) {
	driver := &stubDriver{address: "GABC", network: `"TESTNET"`}
	svc := New(driver, discard())

	first, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	second, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect again: %v", err)
	}

	if first.Address != second.Address {
		t.Errorf("sessions differ: %q vs %q", first.Address, second.Address)
	}

	if driver.selectorOpened != 0 {
		t.Errorf("selector opened %d times, want 0", driver.selectorOpened)
	}
}

func TestConnectOpensSelectorOnce(t *testing.T) {
	driver := &stubDriver{addressErr: errors.New("locked"), addressAfterSelect: "GDEF", network: `"TESTNET"`}
	svc := New(driver, discard())

	session, err := svc.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}

	if session.Address != "GDEF" {
		t.Errorf("address = %q, want GDEF", session.Address)
	}

	if driver.selectorOpened != 1 {
		t.Errorf("selector opened %d times, want 1", driver.selectorOpened)
	}
}

func TestConnectUnavailable(t *testing.T) {
	driver := &stubDriver{addressErr: errors.New("no wallet")}
	svc := New(driver, discard())

	_, err := svc.Connect(context.Background())
	if !errors.Is(err, core.ErrWalletUnavailable) {
		t.Fatalf("err = %v, want ErrWalletUnavailable", err)
	}
}

func TestCurrentAddressSwallowsErrors(t *testing.T) {
	driver := &stubDriver{addressErr: errors.New("extension gone")}
	svc := New(driver, discard())

	if got := svc.CurrentAddress(context.Background()); got != "" {
		t.Errorf("CurrentAddress = %q, want absent", got)
	}
}

func TestSignRejected(t *testing.T) {
	driver := &stubDriver{signErr: errors.New("user declined")}
	svc := New(driver, discard())

	_, err := svc.Sign(context.Background(), "AAAA", core.SignOptions{})
	if !errors.Is(err, core.ErrSignatureRejected) {
		t.Fatalf("err = %v, want ErrSignatureRejected", err)
	}
}

func TestDisconnectClearsSession(t *testing.T) {
	driver := &stubDriver{network: `"TESTNET"`}
	svc := New(driver, discard())

	driver.address = "GXYZ"
	if _, err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	svc.Disconnect()
	svc.Disconnect() // idempotent

	driver.address = ""
	driver.addressErr = errors.New("gone")
	if _, err := svc.Connect(context.Background()); !errors.Is(err, core.ErrWalletUnavailable) {
		t.Fatalf("Connect after disconnect: err = %v, want ErrWalletUnavailable", err)
	}
}

func TestNetworkNormalization(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		rawErr  error
		want    core.Network
	}{
		{"bare string", `"PUBLIC"`, nil, core.NetworkPublic},
		{"object shape", `{"network":"FUTURENET","networkPassphrase":"x"}`, nil, core.NetworkFuturenet},
		{"lowercase", `"testnet"`, nil, core.NetworkTestnet},
		{"garbage", `12345`, nil, core.NetworkTestnet},
		{"driver error", ``, errors.New("boom"), core.NetworkTestnet},
		{"unknown name", `"MAINNET"`, nil, core.NetworkTestnet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := &stubDriver{network: tt.raw, networkErr: tt.rawErr}
			svc := New(driver, discard())

			network, passphrase := svc.Network(context.Background())
			if network != tt.want {
				t.Errorf("network = %v, want %v", network, tt.want)
			}

			if passphrase != tt.want.Passphrase() {
				t.Errorf("passphrase = %q, want %q", passphrase, tt.want.Passphrase())
			}
		})
	}
}
