package store_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"sjsage522/hotdealbot/internal/deal"
	"sjsage522/hotdealbot/services/store"
)

func newTestStore(t *testing.T) *store.BoltStore {
	t.Helper()
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndExists(t *testing.T) {
	s := newTestStore(t)

	exists, err := s.Exists("https://example.com/deal/1")
	assert.NoError(t, err)
	assert.False(t, exists)

	id, inserted, err := s.Insert("https://example.com/deal/1", "테스트 딜 10,000원", 10000, 65.5, deal.StatusNew)
	assert.NoError(t, err)
	assert.True(t, inserted)
	assert.NotZero(t, id)

	exists, err = s.Exists("https://example.com/deal/1")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestInsertDuplicateRejected(t *testing.T) {
	s := newTestStore(t)

	url := "https://example.com/deal/dup"
	firstID, inserted, err := s.Insert(url, "원래 제목", 10000, 70.0, deal.StatusNew)
	assert.NoError(t, err)
	assert.True(t, inserted)

	// A second insert with the same url is a normal negative result and must
	// not overwrite the stored record
	_, inserted, err = s.Insert(url, "다른 제목", 99999, 1.0, deal.StatusDiscarded)
	assert.NoError(t, err)
	assert.False(t, inserted)

	exists, err := s.Exists(url)
	assert.NoError(t, err)
	assert.True(t, exists)

	deals, err := s.ListByStatus(deal.StatusNew)
	assert.NoError(t, err)
	assert.Len(t, deals, 1)
	assert.Equal(t, firstID, deals[0].ID)
	assert.Equal(t, "원래 제목", deals[0].Title)
	assert.Equal(t, 10000, deals[0].FinalPrice)
	assert.Equal(t, 70.0, deals[0].TotalScore)
}

func TestInsertInvalidStatus(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.Insert("https://example.com/deal/x", "제목", 0, 0, deal.Status("BOGUS"))
	assert.ErrorIs(t, err, store.ErrInvalidStatus)

	exists, err := s.Exists("https://example.com/deal/x")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestSetStatus(t *testing.T) {
	s := newTestStore(t)

	id, _, err := s.Insert("https://example.com/deal/2", "딜", 20000, 66.0, deal.StatusNew)
	assert.NoError(t, err)

	ok, err := s.SetStatus(id, deal.StatusUploaded)
	assert.NoError(t, err)
	assert.True(t, ok)

	uploaded, err := s.ListByStatus(deal.StatusUploaded)
	assert.NoError(t, err)
	assert.Len(t, uploaded, 1)
	assert.Equal(t, id, uploaded[0].ID)

	// Any-to-any transitions are allowed, including back to NEW
	ok, err = s.SetStatus(id, deal.StatusNew)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestSetStatusInvalid(t *testing.T) {
	s := newTestStore(t)

	id, _, err := s.Insert("https://example.com/deal/3", "딜", 20000, 66.0, deal.StatusNew)
	assert.NoError(t, err)

	// Unknown status value: rejected, stored state unchanged
	ok, err := s.SetStatus(id, deal.Status("SHIPPED"))
	assert.NoError(t, err)
	assert.False(t, ok)

	fresh, err := s.ListByStatus(deal.StatusNew)
	assert.NoError(t, err)
	assert.Len(t, fresh, 1)

	// Missing id: rejected
	ok, err = s.SetStatus(id+100, deal.StatusUploaded)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestListByStatusOrdering(t *testing.T) {
	s := newTestStore(t)

	first, _, err := s.Insert("https://example.com/deal/a", "첫번째", 1000, 61.0, deal.StatusPending)
	assert.NoError(t, err)
	second, _, err := s.Insert("https://example.com/deal/b", "두번째", 2000, 62.0, deal.StatusPending)
	assert.NoError(t, err)
	_, _, err = s.Insert("https://example.com/deal/c", "제외", 3000, 10.0, deal.StatusDiscarded)
	assert.NoError(t, err)

	pending, err := s.ListByStatus(deal.StatusPending)
	assert.NoError(t, err)
	assert.Len(t, pending, 2)

	// Newest first
	assert.Equal(t, second, pending[0].ID)
	assert.Equal(t, first, pending[1].ID)
}

func TestListByStatusEmpty(t *testing.T) {
	s := newTestStore(t)

	pending, err := s.ListByStatus(deal.StatusPending)
	assert.NoError(t, err)
	assert.Empty(t, pending)
}
