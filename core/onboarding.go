package core

import (
	"context"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyLocal      Currency = "LOCAL"
	CurrencyStablecoin Currency = "STABLECOIN"
)

// OnboardingState holds the five-stage wizard's collected parameters.
// Mutated only by guarded stage transitions; stage 5 is terminal.
type OnboardingState struct {
	Stage            int             `json:"stage"`
	GroupName        string          `json:"group_name"`
	Currency         Currency        `json:"currency"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	FrequencyDays    int             `json:"frequency_days"`
	YieldEnabled     bool            `json:"yield_enabled"`
	Phone            string          `json:"phone"`
	VerificationCode string          `json:"verification_code,omitempty"`
	PhoneVerified    bool            `json:"phone_verified"`
}

type GroupRequest struct {
	PhoneNumber      string           `json:"phoneNumber"`
	GroupName        string           `json:"groupName"`
	AmountBs         *decimal.Decimal `json:"amountBs,omitempty"`
	AmountUsdc       *decimal.Decimal `json:"amountUsdc,omitempty"`
	FrequencyDays    int              `json:"frequencyDays"`
	YieldEnabled     bool             `json:"yieldEnabled"`
	VerificationCode string           `json:"verificationCode"`
}

type GroupReceipt struct {
	GroupID    int64  `json:"groupId"`
	InviteLink string `json:"inviteLink"`
	Status     string `json:"status"`
}

// GroupService is the external onboarding collaborator.
type GroupService interface {
	RequestCode(ctx context.Context, phone string) (string, error)
	CreateGroup(ctx context.Context, req *GroupRequest) (*GroupReceipt, error)
}
