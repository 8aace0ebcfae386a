package core

import (
	"context"
	"strings"
	"time"
	"unicode"
)

// VerificationTTL bounds how long a verification outcome stays readable.
const VerificationTTL = 30 * time.Minute

type VerificationRecord struct {
	Phone            string    `json:"phone"`
	Verified         bool      `json:"verified"`
	Timestamp        time.Time `json:"timestamp"`
	WhatsappUsername string    `json:"whatsapp_username,omitempty"`
	WhatsappNumber   string    `json:"whatsapp_number,omitempty"`
}

// VerificationStore recalls recent phone verification events. Keys are
// always the normalized phone; at most one record per phone. Record sweeps
// expired entries, Lookup does not, so a stale record can be observed as
// present until the next write anywhere in the store. This staleness window
// is accepted behavior.
type VerificationStore interface {
	Record(ctx context.Context, record *VerificationRecord) error
	// Lookup returns the stored record or an IsErrNotFound error. Absence
	// is distinct from verified=false.
	Lookup(ctx context.Context, phone string) (*VerificationRecord, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// NormalizePhone strips all whitespace from a phone string. Every store
// key and lookup goes through this.
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, phone)
}
