package onboarding

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/shopspring/decimal"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tandalabs/tanda-gateway/store"
)

type Config struct {
	// PollInterval paces the stage-4 verification poll.
	PollInterval time.Duration `valid:"required"`
	// MaxWait bounds the stage-4 poll. The original flow waited forever;
	// here verification fails after this window and the user restarts
	// from stage 3.
	MaxWait time.Duration `valid:"required"`
	// RedirectDelay is how long the terminal stage holds before the
	// caller redirects and the state is discarded.
	RedirectDelay time.Duration
}

// NewWizard builds the five-stage group creation flow. Forward transitions
// are guarded per stage; backward navigation is free except from stage 5.
func NewWizard(groups core.GroupService, verifications core.VerificationStore, logger *slog.Logger, cfg Config) *Wizard {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	return &Wizard{
		groups:        groups,
		verifications: verifications,
		logger:        logger.With("service", "onboarding"),
		cfg:           cfg,
		state:         core.OnboardingState{Stage: 1, Currency: core.CurrencyLocal},
	}
}

type Wizard struct {
	groups        core.GroupService
	verifications core.VerificationStore
	logger        *slog.Logger
	cfg           Config

	mux   sync.Mutex
	state core.OnboardingState
}

// State returns a snapshot of the wizard state.
func (w *Wizard) State() core.OnboardingState {
	w.mux.Lock()
	defer w.mux.Unlock()
	return w.state
}

func (w *Wizard) SetBasics(groupName string, currency core.Currency, totalAmount decimal.Decimal) {
	w.mux.Lock()
	defer w.mux.Unlock()

	w.state.GroupName = groupName
	w.state.Currency = currency
	w.state.TotalAmount = totalAmount
}

func (w *Wizard) SetSchedule(frequencyDays int, yieldEnabled bool) {
	w.mux.Lock()
	defer w.mux.Unlock()

	w.state.FrequencyDays = frequencyDays
	w.state.YieldEnabled = yieldEnabled
}

func (w *Wizard) SetPhone(phone string) {
	w.mux.Lock()
	defer w.mux.Unlock()

	w.state.Phone = core.NormalizePhone(phone)
}

// Next advances one stage if the current stage's guard is satisfied.
func (w *Wizard) Next() error {
	w.mux.Lock()
	defer w.mux.Unlock()

	if err := w.guardLocked(); err != nil {
		return err
	}

	if w.state.Stage < 5 {
		w.state.Stage++
	}

	return nil
}

// Back navigates backward. Stage 5 is terminal: the group already exists.
func (w *Wizard) Back() error {
	w.mux.Lock()
	defer w.mux.Unlock()

	if w.state.Stage == 5 {
		return fmt.Errorf("group already created")
	}

	if w.state.Stage > 1 {
		w.state.Stage--
	}

	return nil
}

func (w *Wizard) guardLocked() error {
	switch w.state.Stage {
	case 1:
		if w.state.GroupName == "" {
			return fmt.Errorf("group name is required")
		}
		if !w.state.TotalAmount.IsPositive() {
			return fmt.Errorf("amount must be positive")
		}
	case 2:
		if w.state.FrequencyDays <= 0 {
			return fmt.Errorf("frequency must be a positive number of days")
		}
	case 3:
		if w.state.VerificationCode == "" {
			return fmt.Errorf("verification code not generated yet")
		}
	case 4:
		if !w.state.PhoneVerified {
			return fmt.Errorf("phone not verified yet")
		}
	}

	return nil
}

// RequestCode asks the onboarding service for a verification code the user
// forwards to the WhatsApp agent.
func (w *Wizard) RequestCode(ctx context.Context) error {
	w.mux.Lock()
	phone := w.state.Phone
	w.mux.Unlock()

	code, err := w.groups.RequestCode(ctx, phone)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrCodeRequest, err)
	}

	w.mux.Lock()
	w.state.VerificationCode = code
	w.mux.Unlock()

	w.logger.Info("verification code generated", "phone", phone)
	return nil
}

// AwaitVerification polls the verification store until the phone reads
// verified, the window expires, or ctx is cancelled. Absence reads as "not
// yet", not as failure.
func (w *Wizard) AwaitVerification(ctx context.Context) error {
	w.mux.Lock()
	phone := w.state.Phone
	w.mux.Unlock()

	deadline := time.NewTimer(w.cfg.MaxWait)
	defer deadline.Stop()

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return core.ErrVerificationTimeout
		case <-ticker.C:
			record, err := w.verifications.Lookup(ctx, phone)
			if err != nil {
				if !store.IsErrNotFound(err) {
					w.logger.Warn("verification lookup failed", "err", err)
				}
				continue
			}

			if record.Verified {
				w.mux.Lock()
				w.state.PhoneVerified = true
				w.mux.Unlock()

				w.logger.Info("phone verified", "phone", phone, "whatsapp", record.WhatsappUsername)
				return nil
			}
		}
	}
}

// CreateGroup runs the terminal stage. On failure the wizard stays at the
// confirmation stage for a manual retry; on success the state is discarded
// after RedirectDelay.
func (w *Wizard) CreateGroup(ctx context.Context) (*core.GroupReceipt, error) {
	w.mux.Lock()
	state := w.state
	w.mux.Unlock()

	req := &core.GroupRequest{
		PhoneNumber:      state.Phone,
		GroupName:        state.GroupName,
		FrequencyDays:    state.FrequencyDays,
		YieldEnabled:     state.YieldEnabled,
		VerificationCode: state.VerificationCode,
	}

	amount := state.TotalAmount
	if state.Currency == core.CurrencyStablecoin {
		req.AmountUsdc = &amount
	} else {
		req.AmountBs = &amount
	}

	receipt, err := w.groups.CreateGroup(ctx, req)
	if err != nil {
		return nil, err
	}

	w.mux.Lock()
	w.state.Stage = 5
	w.mux.Unlock()

	w.logger.Info("group created", "group", receipt.GroupID, "invite", receipt.InviteLink)

	if w.cfg.RedirectDelay > 0 {
		go func() {
			time.Sleep(w.cfg.RedirectDelay)
			w.Discard()
		}()
	}

	return receipt, nil
}

// Discard resets the wizard to a fresh stage-1 state.
func (w *Wizard) Discard() {
	w.mux.Lock()
	w.state = core.OnboardingState{Stage: 1, Currency: core.CurrencyLocal}
	w.mux.Unlock()
}
