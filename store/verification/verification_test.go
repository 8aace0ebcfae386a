package verification

import (
	"context"
	"testing"
	"time"

	"github.com/tandalabs/tanda-gateway/core"
	gwstore "github.com/tandalabs/tanda-gateway/store"
)

func TestMemoryNormalization(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	tests := []struct {
		name   string
		write  string
		lookup string
	}{
		{"identical", "+59177777777", "+59177777777"},
		{"spaces in write", "+591 7777 7777", "+59177777777"},
		{"spaces in lookup", "+59177777777", " +591 77 77 77 77 "},
		{"tabs", "+591\t77777777", "+59177777777"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &core.VerificationRecord{Phone: tt.write, Verified: true, Timestamp: time.Now()}
			if err := s.Record(ctx, rec); err != nil {
				t.Fatalf("Record: %v", err)
			}

			got, err := s.Lookup(ctx, tt.lookup)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.lookup, err)
			}

			if !got.Verified {
				t.Errorf("Lookup(%q).Verified = false, want true", tt.lookup)
			}
		})
	}
}

func TestMemoryAbsentIsNotUnverified(t *testing.T) {
	s := NewMemory()

	_, err := s.Lookup(context.Background(), "+59100000000")
	if !gwstore.IsErrNotFound(err) {
		t.Fatalf("Lookup on empty store: err = %v, want not-found", err)
	}
}

func TestMemoryEvictionOnWrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().(*memory)

	base := time.Now()
	s.now = func() time.Time { return base }

	old := &core.VerificationRecord{Phone: "+59111111111", Verified: true, Timestamp: base}
	if err := s.Record(ctx, old); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// a lookup past the TTL still observes the record: only writes sweep
	s.now = func() time.Time { return base.Add(core.VerificationTTL + time.Minute) }
	if _, err := s.Lookup(ctx, "+59111111111"); err != nil {
		t.Fatalf("Lookup before any write: %v", err)
	}

	// any write to any key sweeps the stale entry
	fresh := &core.VerificationRecord{Phone: "+59122222222", Verified: true, Timestamp: base.Add(core.VerificationTTL + time.Minute)}
	if err := s.Record(ctx, fresh); err != nil {
		t.Fatalf("Record: %v", err)
	}

	if _, err := s.Lookup(ctx, "+59111111111"); !gwstore.IsErrNotFound(err) {
		t.Errorf("stale record after write: err = %v, want not-found", err)
	}

	if _, err := s.Lookup(ctx, "+59122222222"); err != nil {
		t.Errorf("fresh record: %v", err)
	}
}

func TestMemoryOverwrite(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	first := &core.VerificationRecord{Phone: "+59133333333", Verified: false, Timestamp: time.Now()}
	if err := s.Record(ctx, first); err != nil {
		t.Fatalf("Record: %v", err)
	}

	second := &core.VerificationRecord{Phone: "+591 3333 3333", Verified: true, Timestamp: time.Now(), WhatsappUsername: "Maria"}
	if err := s.Record(ctx, second); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := s.Lookup(ctx, "+59133333333")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if !got.Verified || got.WhatsappUsername != "Maria" {
		t.Errorf("got %+v, want overwritten verified record", got)
	}
}

func TestMemoryDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := NewMemory().(*memory)

	// seed directly so Record's own sweep doesn't interfere
	now := time.Now()
	s.records["+1"] = &core.VerificationRecord{Phone: "+1", Verified: true, Timestamp: now.Add(-time.Hour)}
	s.records["+2"] = &core.VerificationRecord{Phone: "+2", Verified: true, Timestamp: now.Add(-45 * time.Minute)}
	s.records["+3"] = &core.VerificationRecord{Phone: "+3", Verified: true, Timestamp: now}

	n, err := s.DeleteExpired(ctx, now.Add(-core.VerificationTTL))
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}

	if n != 2 {
		t.Errorf("DeleteExpired removed %d, want 2", n)
	}

	if _, err := s.Lookup(ctx, "+3"); err != nil {
		t.Errorf("fresh record evicted: %v", err)
	}
}
