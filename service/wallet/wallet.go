package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tandalabs/tanda-gateway/core"
)

// selectWait bounds how long we wait for the user to pick a wallet after
// opening the selection prompt.
const selectWait = 500 * time.Millisecond

func New(driver core.WalletDriver, logger *slog.Logger) core.WalletService {
	return &service{
		driver: driver,
		logger: logger.With("service", "wallet"),
	}
}

type service struct {
	driver core.WalletDriver
	logger *slog.Logger

	mux     sync.Mutex
	session *core.WalletSession
}

func (s *service) Connect(ctx context.Context) (*core.WalletSession, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	// an existing session is returned without reopening the prompt
	if s.session != nil && s.session.Connected {
		return s.session, nil
	}

	address, err := s.driver.Address(ctx)
	if err != nil || address == "" {
		if err := s.driver.OpenSelector(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", core.ErrWalletUnavailable, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(selectWait):
		}

		address, err = s.driver.Address(ctx)
		if err != nil || address == "" {
			return nil, core.ErrWalletUnavailable
		}
	}

	network, passphrase := s.networkLocked(ctx)
	s.session = &core.WalletSession{
		Address:           address,
		Network:           network,
		NetworkPassphrase: passphrase,
		Connected:         true,
	}

	s.logger.Info("wallet connected", "address", address, "network", network)
	return s.session, nil
}

func (s *service) CurrentAddress(ctx context.Context) string {
	address, err := s.driver.Address(ctx)
	if err != nil {
		return ""
	}

	return address
}

func (s *service) Sign(ctx context.Context, xdr string, opts core.SignOptions) (string, error) {
	signed, err := s.driver.SignTransaction(ctx, xdr, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrSignatureRejected, err)
	}

	return signed, nil
}

func (s *service) Disconnect() {
	s.mux.Lock()
	s.session = nil
	s.mux.Unlock()
}

func (s *service) Network(ctx context.Context) (core.Network, string) {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.networkLocked(ctx)
}

// networkLocked is the single adapter normalizing the driver's polymorphic
// network reply (bare string vs object) into the canonical pair.
func (s *service) networkLocked(ctx context.Context) (core.Network, string) {
	raw, err := s.driver.Network(ctx)
	if err != nil {
		return core.NetworkTestnet, core.NetworkTestnet.Passphrase()
	}

	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		var obj struct {
			Network string `json:"network"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return core.NetworkTestnet, core.NetworkTestnet.Passphrase()
		}
		name = obj.Network
	}

	network := parseNetwork(name)
	return network, network.Passphrase()
}

func parseNetwork(name string) core.Network {
	switch core.Network(strings.ToUpper(strings.TrimSpace(name))) {
	case core.NetworkPublic:
		return core.NetworkPublic
	case core.NetworkFuturenet:
		return core.NetworkFuturenet
	case core.NetworkStandalone:
		return core.NetworkStandalone
	default:
		return core.NetworkTestnet
	}
}
