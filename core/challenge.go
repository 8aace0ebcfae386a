package core

import "context"

const (
	XPaymentVersion = "x402-stellar-v1"
	XPaymentScheme  = "exact"
)

// XPaymentHeader is the wire artifact exchanged as proof of payment:
// base64-encoded JSON with a fixed field order.
type XPaymentHeader struct {
	Version string         `json:"version"`
	Scheme  string         `json:"scheme"`
	Network string         `json:"network"`
	Payload XPaymentPayload `json:"payload"`
}

type XPaymentPayload struct {
	SignedXDR string `json:"signedXdr"`
}

// PaymentRequirements is the richer challenge object newer orders expose
// instead of a bare XDR challenge. When UnsignedXDR is absent the payment
// transaction is built locally from the remaining fields.
type PaymentRequirements struct {
	Scheme      string `json:"scheme"`
	Network     string `json:"network"`
	PayTo       string `json:"payTo"`
	Asset       Asset  `json:"asset"`
	Amount      string `json:"maxAmountRequired"`
	UnsignedXDR string `json:"unsignedXdr,omitempty"`
}

// ChallengeSource is the tagged variant of the two coexisting challenge
// protocols, resolved once at claim time. Exactly one branch is set.
type ChallengeSource struct {
	Requirements *PaymentRequirements
	RawXDR       string
}

// ResolveChallenge picks the order's challenge source, preferring the
// requirements protocol over a bare XDR challenge. Absence of both is fatal
// for this order.
func ResolveChallenge(order *Order) (*ChallengeSource, error) {
	switch {
	case order.PaymentRequirements != nil:
		return &ChallengeSource{Requirements: order.PaymentRequirements}, nil
	case order.XDRChallenge != "":
		return &ChallengeSource{RawXDR: order.XDRChallenge}, nil
	default:
		return nil, ErrNoChallenge
	}
}

type ChallengeCodec interface {
	// Encode is deterministic: same inputs yield the same header.
	Encode(signedXDR, networkPassphrase string) string
	Decode(header string) (*XPaymentHeader, error)
	// FromRequirements satisfies the richer protocol, signing through the
	// wallet session and enveloping the result.
	FromRequirements(ctx context.Context, req *PaymentRequirements) (string, error)
}
