package verification

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/tandalabs/tanda-gateway/core"
	"github.com/tsenart/nap"
)

// New returns the shared postgres-backed store, keyed by normalized phone.
// Correctness holds across multiple gateway instances, unlike the in-memory
// reference store.
func New(db *nap.DB) core.VerificationStore {
	return &store{db: db}
}

type store struct {
	db *nap.DB
}

func (s *store) Record(ctx context.Context, record *core.VerificationRecord) error {
	phone := core.NormalizePhone(record.Phone)

	b := sq.Insert("verifications").
		Columns("phone", "verified", "timestamp", "whatsapp_username", "whatsapp_number").
		Values(phone, record.Verified, record.Timestamp, record.WhatsappUsername, record.WhatsappNumber).
		Suffix(`ON CONFLICT (phone) DO UPDATE SET
			verified = EXCLUDED.verified,
			timestamp = EXCLUDED.timestamp,
			whatsapp_username = EXCLUDED.whatsapp_username,
			whatsapp_number = EXCLUDED.whatsapp_number`).
		PlaceholderFormat(sq.Dollar)
	stmt, args := b.MustSql()
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return err
	}

	// sweep on write, mirroring the reference store's lazy eviction
	_, err := s.DeleteExpired(ctx, time.Now().Add(-core.VerificationTTL))
	return err
}

func (s *store) Lookup(ctx context.Context, phone string) (*core.VerificationRecord, error) {
	b := sq.Select("phone", "verified", "timestamp", "whatsapp_username", "whatsapp_number").
		From("verifications").
		Where("phone = ?", core.NormalizePhone(phone)).
		PlaceholderFormat(sq.Dollar)
	stmt, args := b.MustSql()
	row := s.db.QueryRowContext(ctx, stmt, args...)

	var record core.VerificationRecord
	if err := row.Scan(
		&record.Phone,
		&record.Verified,
		&record.Timestamp,
		&record.WhatsappUsername,
		&record.WhatsappNumber,
	); err != nil {
		return nil, err
	}

	return &record, nil
}

func (s *store) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	b := sq.Delete("verifications").
		Where("timestamp < ?", before).
		PlaceholderFormat(sq.Dollar)
	stmt, args := b.MustSql()
	r, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, err
	}

	return r.RowsAffected()
}
