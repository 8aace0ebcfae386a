package trustline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stellar/go/clients/horizonclient"
	hProtocol "github.com/stellar/go/protocols/horizon"
	"github.com/stellar/go/txnbuild"
	"github.com/tandalabs/tanda-gateway/core"
)

// Ledger is the narrow slice of the horizon client this service needs.
// *horizonclient.Client satisfies it.
type Ledger interface {
	AccountDetail(request horizonclient.AccountRequest) (hProtocol.Account, error)
	SubmitTransactionXDR(transactionXdr string) (hProtocol.Transaction, error)
}

func New(ledger Ledger, wallets core.WalletService, logger *slog.Logger) core.TrustlineService {
	return &service{
		ledger:  ledger,
		wallets: wallets,
		logger:  logger.With("service", "trustline"),
	}
}

type service struct {
	ledger  Ledger
	wallets core.WalletService
	logger  *slog.Logger
}

func (s *service) Check(ctx context.Context, address string, asset core.Asset) *core.TrustlineStatus {
	status := &core.TrustlineStatus{
		AssetCode:   asset.Code,
		AssetIssuer: asset.Issuer,
	}

	account, err := s.ledger.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		// a failed ledger read reads as "not yet trusted"; the caller
		// will offer to establish one
		s.logger.Warn("account load failed", "address", address, "err", err)
		return status
	}

	for _, balance := range account.Balances {
		if balance.Type == "native" {
			continue
		}

		if balance.Code == asset.Code && balance.Issuer == asset.Issuer {
			status.Exists = true
			status.Balance = balance.Balance
			status.Limit = balance.Limit
			break
		}
	}

	return status
}

func (s *service) Establish(ctx context.Context, address string, asset core.Asset) (*core.TrustlineReceipt, error) {
	account, err := s.ledger.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return nil, fmt.Errorf("%w: load account: %v", core.ErrTrustlineSubmission, err)
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &account,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(30)},
		Operations: []txnbuild.Operation{
			&txnbuild.ChangeTrust{
				Line: txnbuild.ChangeTrustAssetWrapper{
					Asset: txnbuild.CreditAsset{Code: asset.Code, Issuer: asset.Issuer},
				},
				Limit: txnbuild.MaxTrustlineLimit,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: build: %v", core.ErrTrustlineSubmission, err)
	}

	xdr, err := tx.Base64()
	if err != nil {
		return nil, fmt.Errorf("%w: encode: %v", core.ErrTrustlineSubmission, err)
	}

	_, passphrase := s.wallets.Network(ctx)
	signed, err := s.wallets.Sign(ctx, xdr, core.SignOptions{
		NetworkPassphrase: passphrase,
		Address:           address,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrTrustlineSubmission, err)
	}

	resp, err := s.ledger.SubmitTransactionXDR(signed)
	if err != nil {
		return nil, fmt.Errorf("%w: submit: %v", core.ErrTrustlineSubmission, err)
	}

	s.logger.Info("trustline established", "address", address, "asset", asset.Code, "tx", resp.Hash)
	return &core.TrustlineReceipt{TxHash: resp.Hash}, nil
}
