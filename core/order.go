package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "PENDING"
	OrderStatusClaimedByUser OrderStatus = "CLAIMED_BY_USER"
	OrderStatusVerified      OrderStatus = "VERIFIED"
	OrderStatusCompleted     OrderStatus = "COMPLETED"
	OrderStatusFailed        OrderStatus = "FAILED"
	OrderStatusRejected      OrderStatus = "REJECTED"
)

// Order is owned by the external order service. This side only reads it and
// submits claims against it; Status is never mutated locally.
type Order struct {
	ID                  string               `json:"id"`
	Status              OrderStatus          `json:"status"`
	AmountFiat          decimal.Decimal      `json:"amountFiat"`
	AmountUsdc          decimal.Decimal      `json:"amountUsdc,omitempty"`
	QRPayloadURL        string               `json:"qrPayloadUrl,omitempty"`
	XDRChallenge        string               `json:"xdrChallenge,omitempty"`
	PaymentRequirements *PaymentRequirements `json:"paymentRequirements,omitempty"`
	GroupID             int64                `json:"groupId,omitempty"`
	GroupName           string               `json:"groupName,omitempty"`
	RoundNumber         int                  `json:"roundNumber,omitempty"`
	DueDate             *time.Time           `json:"dueDate,omitempty"`
}

type PaymentProofFiat struct {
	Bank          string          `json:"bank"`
	Amount        decimal.Decimal `json:"amount"`
	Reference     string          `json:"reference"`
	ScreenshotURL string          `json:"screenshotUrl,omitempty"`
}

type ClaimRequest struct {
	PaymentType   string            `json:"paymentType"`
	ProofMetadata *PaymentProofFiat `json:"proofMetadata,omitempty"`
	XPayment      string            `json:"xPayment,omitempty"`
}

type ClaimReceipt struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OrderService is the external order/ledger collaborator.
type OrderService interface {
	Order(ctx context.Context, id string) (*Order, error)
	Claim(ctx context.Context, id string, req *ClaimRequest) (*ClaimReceipt, error)
}
