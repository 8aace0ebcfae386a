package verification

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/tandalabs/tanda-gateway/core"
)

// NewMemory returns the single-process reference store: one mutable map
// guarded by a mutex. Suitable for a single instance only; a multi-worker
// deployment must use the shared store instead.
func NewMemory() core.VerificationStore {
	return &memory{
		records: make(map[string]*core.VerificationRecord),
		now:     time.Now,
	}
}

type memory struct {
	mux     sync.Mutex
	records map[string]*core.VerificationRecord
	now     func() time.Time
}

func (s *memory) Record(_ context.Context, record *core.VerificationRecord) error {
	phone := core.NormalizePhone(record.Phone)

	s.mux.Lock()
	defer s.mux.Unlock()

	stored := *record
	stored.Phone = phone
	s.records[phone] = &stored

	// full sweep on every write; lookups never evict
	cutoff := s.now().Add(-core.VerificationTTL)
	for key, rec := range s.records {
		if rec.Timestamp.Before(cutoff) {
			delete(s.records, key)
		}
	}

	return nil
}

func (s *memory) Lookup(_ context.Context, phone string) (*core.VerificationRecord, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	rec, ok := s.records[core.NormalizePhone(phone)]
	if !ok {
		return nil, sql.ErrNoRows
	}

	found := *rec
	return &found, nil
}

func (s *memory) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	var n int64
	for key, rec := range s.records {
		if rec.Timestamp.Before(before) {
			delete(s.records, key)
			n++
		}
	}

	return n, nil
}
