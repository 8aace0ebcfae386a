package core

import "errors"

var (
	// ErrConfigMissing means a required endpoint URL is unset. Fatal for
	// the whole flow, not recoverable in process.
	ErrConfigMissing = errors.New("required endpoint not configured")

	ErrWalletUnavailable  = errors.New("no compatible wallet responded")
	ErrSignatureRejected  = errors.New("wallet rejected signature request")
	ErrTrustlineMissing   = errors.New("trustline not established")
	ErrTrustlineSubmission = errors.New("trustline transaction failed")

	// Data-integrity errors from the order service. Not retryable without
	// a new order state.
	ErrNoChallenge     = errors.New("order exposes no payment challenge")
	ErrMalformedHeader = errors.New("malformed x-payment header")

	ErrOrderFetch    = errors.New("order fetch failed")
	ErrOrderNotFound = errors.New("order not found")
	ErrClaimRejected = errors.New("claim rejected by server")
	ErrClaimInFlight = errors.New("claim already in flight for this order")

	ErrCodeRequest         = errors.New("verification code request failed")
	ErrVerificationTimeout = errors.New("phone verification timed out")
)
