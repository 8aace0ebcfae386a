package claim

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/zyedidia/generic/cache"
	"github.com/zyedidia/generic/mapset"
	"golang.org/x/sync/singleflight"
)

type State uint8

const (
	StateLoading State = iota
	StateReady
	StateFiatPending
	StateCryptoPending
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateFiatPending:
		return "FiatPending"
	case StateCryptoPending:
		return "CryptoPending"
	case StateSubmitted:
		return "Submitted"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

type Config struct {
	AssetCode   string `valid:"required"`
	AssetIssuer string `valid:"required"`
}

func New(
	orders core.OrderService,
	wallets core.WalletService,
	trustlines core.TrustlineService,
	codec core.ChallengeCodec,
	logger *slog.Logger,
	cfg Config,
) *Orchestrator {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Orchestrator{
		orders:     orders,
		wallets:    wallets,
		trustlines: trustlines,
		codec:      codec,
		logger:     logger.With("service", "claim"),
		asset:      core.Asset{Code: cfg.AssetCode, Issuer: cfg.AssetIssuer},
		memo:       cache.New[string, *entry](256),
		inflight:   mapset.New[string](),
		sf:         &singleflight.Group{},
	}
}

// Orchestrator drives an order claim through
// Loading -> Ready -> {FiatPending, CryptoPending} -> {Submitted, Failed}.
// A failed attempt is not retried automatically; a fresh call re-enters
// from Ready.
type Orchestrator struct {
	orders     core.OrderService
	wallets    core.WalletService
	trustlines core.TrustlineService
	codec      core.ChallengeCodec
	logger     *slog.Logger
	asset      core.Asset

	sf *singleflight.Group

	mux      sync.Mutex
	memo     *cache.Cache[string, *entry]
	inflight mapset.Set[string]
}

type entry struct {
	order *core.Order
	state State
}

// Load fetches the order and moves it to Ready. Fetch and not-found errors
// surface verbatim; retrying is caller policy.
func (o *Orchestrator) Load(ctx context.Context, id string) (*core.Order, error) {
	v, err, _ := o.sf.Do(id, func() (any, error) {
		return o.orders.Order(ctx, id)
	})
	if err != nil {
		o.setState(id, nil, StateFailed)
		return nil, err
	}

	order := v.(*core.Order)
	o.setState(id, order, StateReady)
	return order, nil
}

// SubmitFiat posts the bank-transfer proof. Settlement happens server-side;
// success only means the claim is pending verification.
func (o *Orchestrator) SubmitFiat(ctx context.Context, id string, proof *core.PaymentProofFiat) (*core.ClaimReceipt, error) {
	release, err := o.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	o.transition(id, StateFiatPending)

	receipt, err := o.orders.Claim(ctx, id, &core.ClaimRequest{
		PaymentType:   "fiat",
		ProofMetadata: proof,
	})
	if err != nil {
		o.transition(id, StateFailed)
		return nil, err
	}

	o.transition(id, StateSubmitted)
	o.logger.Info("fiat claim submitted", "order", id, "bank", proof.Bank, "reference", proof.Reference)

	if receipt.Message == "" {
		receipt.Message = "claim sent, pending verification"
	}

	return receipt, nil
}

// SubmitCrypto walks the crypto rail in order: wallet session, trustline,
// challenge resolution, sign, encode, post. The first failing step decides
// the error kind; nothing is posted before the header is ready. Retrying
// with the same signed header is safe: the server deduplicates by order id
// plus header, not this side.
func (o *Orchestrator) SubmitCrypto(ctx context.Context, id string) (*core.ClaimReceipt, error) {
	release, err := o.acquire(id)
	if err != nil {
		return nil, err
	}
	defer release()

	o.transition(id, StateCryptoPending)

	receipt, err := o.submitCrypto(ctx, id)
	if err != nil {
		o.transition(id, StateFailed)
		return nil, err
	}

	o.transition(id, StateSubmitted)
	return receipt, nil
}

func (o *Orchestrator) submitCrypto(ctx context.Context, id string) (*core.ClaimReceipt, error) {
	session, err := o.wallets.Connect(ctx)
	if err != nil {
		return nil, err
	}

	status := o.trustlines.Check(ctx, session.Address, o.asset)
	if !status.Exists {
		// blocks further progress until the trustline lands
		receipt, err := o.trustlines.Establish(ctx, session.Address, o.asset)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrTrustlineMissing, err)
		}
		o.logger.Info("trustline established for claim", "order", id, "tx", receipt.TxHash)
	}

	order, err := o.cachedOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	source, err := core.ResolveChallenge(order)
	if err != nil {
		return nil, err
	}

	var header string
	if source.Requirements != nil {
		header, err = o.codec.FromRequirements(ctx, source.Requirements)
	} else {
		var signed string
		signed, err = o.wallets.Sign(ctx, source.RawXDR, core.SignOptions{
			NetworkPassphrase: session.NetworkPassphrase,
			Address:           session.Address,
		})
		if err == nil {
			header = o.codec.Encode(signed, session.NetworkPassphrase)
		}
	}
	if err != nil {
		return nil, err
	}

	receipt, err := o.orders.Claim(ctx, id, &core.ClaimRequest{
		PaymentType: "crypto",
		XPayment:    header,
	})
	if err != nil {
		return nil, err
	}

	o.logger.Info("crypto claim submitted", "order", id)
	return receipt, nil
}

// State reports the last observed state for an order, Loading when unseen.
func (o *Orchestrator) State(id string) State {
	o.mux.Lock()
	defer o.mux.Unlock()

	if e, ok := o.memo.Get(id); ok {
		return e.state
	}

	return StateLoading
}

// cachedOrder reuses the order snapshot from Load within the same claim
// interaction, refetching only if it was never loaded or already evicted.
func (o *Orchestrator) cachedOrder(ctx context.Context, id string) (*core.Order, error) {
	o.mux.Lock()
	e, ok := o.memo.Get(id)
	o.mux.Unlock()

	if ok && e.order != nil {
		return e.order, nil
	}

	return o.Load(ctx, id)
}

// acquire marks the order as having a claim in flight. This busy flag is the
// only mutual-exclusion mechanism: a second submission for the same order is
// refused before any network call.
func (o *Orchestrator) acquire(id string) (func(), error) {
	o.mux.Lock()
	defer o.mux.Unlock()

	if o.inflight.Has(id) {
		return nil, core.ErrClaimInFlight
	}

	o.inflight.Put(id)
	return func() {
		o.mux.Lock()
		o.inflight.Remove(id)
		o.mux.Unlock()
	}, nil
}

func (o *Orchestrator) setState(id string, order *core.Order, state State) {
	o.mux.Lock()
	defer o.mux.Unlock()

	if e, ok := o.memo.Get(id); ok {
		if order != nil {
			e.order = order
		}
		e.state = state
		return
	}

	o.memo.Put(id, &entry{order: order, state: state})
}

func (o *Orchestrator) transition(id string, state State) {
	o.setState(id, nil, state)
	o.logger.Debug("claim state", "order", id, "state", state)
}
