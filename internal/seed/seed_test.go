package seed

import (
	"context"
	"errors"
	"testing"

	"commerce-sync/internal/domain"
)

type stubMerchants struct {
	byKey map[string]domain.Merchant
	err   error
}

func (s *stubMerchants) Upsert(_ context.Context, m domain.Merchant) (*domain.Merchant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if existing, ok := s.byKey[m.Key]; ok {
		m.ID = existing.ID
	} else {
		m.ID = "id-" + m.Key
	}
	s.byKey[m.Key] = m
	return &m, nil
}

func TestApplyIsIdempotent(t *testing.T) {
	repo := &stubMerchants{byKey: map[string]domain.Merchant{}}
	first, err := Apply(context.Background(), repo)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	second, err := Apply(context.Background(), repo)
	if err != nil {
		t.Fatalf("apply again: %v", err)
	}
	if len(repo.byKey) != len(DemoMerchants) {
		t.Fatalf("expected %d merchants, got %d", len(DemoMerchants), len(repo.byKey))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("merchant %s changed id: %s != %s", first[i].Key, first[i].ID, second[i].ID)
		}
	}
	if repo.byKey["demo"].SubAccountID == "" || repo.byKey["platform"].SubAccountID != "" {
		t.Fatalf("unexpected sub-accounts: %+v", repo.byKey)
	}
}

func TestApplyError(t *testing.T) {
	_, err := Apply(context.Background(), &stubMerchants{err: errors.New("boom")})
	if err == nil {
		t.Fatalf("expected error")
	}
}
