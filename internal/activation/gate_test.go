package activation_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/KiezTask/KT-Backend/internal/activation"
)

// fakeStore is an in-memory activation.Store with an atomic create-if-absent,
// safe for concurrent use.
type fakeStore struct {
	mu         sync.Mutex
	verified   map[string][]string // postal code -> verified user emails
	records    map[string]struct{}
	countErr   error
	createErr  error
	hasErr     error
	recipErr   error
	createCall int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		verified: make(map[string][]string),
		records:  make(map[string]struct{}),
	}
}

func (s *fakeStore) CountVerified(ctx context.Context, plz string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countErr != nil {
		return 0, s.countErr
	}
	return len(s.verified[plz]), nil
}

func (s *fakeStore) HasRecord(ctx context.Context, plz string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasErr != nil {
		return false, s.hasErr
	}
	_, ok := s.records[plz]
	return ok, nil
}

func (s *fakeStore) CreateRecord(ctx context.Context, plz string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createCall++
	if s.createErr != nil {
		return false, s.createErr
	}
	if _, exists := s.records[plz]; exists {
		return false, nil
	}
	s.records[plz] = struct{}{}
	return true, nil
}

func (s *fakeStore) VerifiedRecipients(ctx context.Context, plz string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recipErr != nil {
		return nil, s.recipErr
	}
	return append([]string(nil), s.verified[plz]...), nil
}

// fakeSender counts dispatched batches.
type fakeSender struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (s *fakeSender) SendAreaLive(ctx context.Context, plz string, recipients []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, recipients)
	return s.err
}

func (s *fakeSender) batchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func threshold(n int) func() int {
	return func() int { return n }
}

func seedVerified(s *fakeStore, plz string, n int) {
	for i := 0; i < n; i++ {
		s.verified[plz] = append(s.verified[plz], "user"+string(rune('a'+i))+"@example.com")
	}
}

// TestStatus_BelowThreshold covers the 9-of-10 scenario: status reports how
// many more verified neighbors are needed, with no side effects.
func TestStatus_BelowThreshold(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 9)
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	st := gate.Status(context.Background(), "10115")

	if st.VerifiedCount != 9 || st.Threshold != 10 || st.IsActive || st.Needed != 1 {
		t.Errorf("unexpected status: %+v", st)
	}
	if store.createCall != 0 || sender.batchCount() != 0 {
		t.Error("Status must be side-effect-free")
	}
}

// TestCheckAndActivate_TenthVerification covers the crossing: the record is
// created and all verified users get exactly one announcement batch.
func TestCheckAndActivate_TenthVerification(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 10)
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	st, err := gate.CheckAndActivate(context.Background(), "10115")
	if err != nil {
		t.Fatalf("CheckAndActivate failed: %v", err)
	}
	if !st.IsActive || st.Needed != 0 {
		t.Errorf("expected active area, got %+v", st)
	}
	if sender.batchCount() != 1 {
		t.Fatalf("expected 1 notification batch, got %d", sender.batchCount())
	}
	if len(sender.batches[0]) != 10 {
		t.Errorf("expected all 10 verified users in the batch, got %d", len(sender.batches[0]))
	}

	after := gate.Status(context.Background(), "10115")
	if !after.IsActive || after.Needed != 0 {
		t.Errorf("expected active status after crossing, got %+v", after)
	}
}

func TestCheckAndActivate_BelowThresholdDoesNothing(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 3)
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	st, err := gate.CheckAndActivate(context.Background(), "10115")
	if err != nil {
		t.Fatalf("CheckAndActivate failed: %v", err)
	}
	if st.IsActive || st.Needed != 7 {
		t.Errorf("unexpected status: %+v", st)
	}
	if store.createCall != 0 || sender.batchCount() != 0 {
		t.Error("expected no record attempt or notification below threshold")
	}
}

// TestCheckAndActivate_ExactlyOnce simulates N concurrent calls for an area
// already past threshold: exactly one record and one batch.
func TestCheckAndActivate_ExactlyOnce(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 12)
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = gate.CheckAndActivate(context.Background(), "10115")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d failed: %v", i, err)
		}
	}
	if len(store.records) != 1 {
		t.Errorf("expected exactly one activation record, got %d", len(store.records))
	}
	if sender.batchCount() != 1 {
		t.Errorf("expected exactly one notification batch, got %d", sender.batchCount())
	}
}

// TestCheckAndActivate_Monotonic verifies that activation survives the
// verified count dropping back below threshold.
func TestCheckAndActivate_Monotonic(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 10)
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	if _, err := gate.CheckAndActivate(context.Background(), "10115"); err != nil {
		t.Fatalf("CheckAndActivate failed: %v", err)
	}

	// Users deactivate; count falls to 4.
	store.mu.Lock()
	store.verified["10115"] = store.verified["10115"][:4]
	store.mu.Unlock()

	st := gate.Status(context.Background(), "10115")
	if !st.IsActive {
		t.Error("expected area to remain active after count dropped")
	}
	if st.Needed != 0 {
		t.Errorf("active area must report needed=0, got %d", st.Needed)
	}

	st, err := gate.CheckAndActivate(context.Background(), "10115")
	if err != nil {
		t.Fatalf("CheckAndActivate failed: %v", err)
	}
	if !st.IsActive {
		t.Error("expected re-check to keep the area active")
	}
	if sender.batchCount() != 1 {
		t.Errorf("expected no further notification batches, got %d", sender.batchCount())
	}
}

// TestCheckAndActivate_NotifierFailureKeepsActivation: the area is in fact
// active, so a failed announcement must not surface or roll back.
func TestCheckAndActivate_NotifierFailureKeepsActivation(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 10)
	sender := &fakeSender{err: errors.New("smtp down")}
	gate := activation.NewGate(store, sender, threshold(10))

	st, err := gate.CheckAndActivate(context.Background(), "10115")
	if err != nil {
		t.Fatalf("expected notifier failure to be swallowed, got %v", err)
	}
	if !st.IsActive {
		t.Error("expected area active despite notifier failure")
	}
	if len(store.records) != 1 {
		t.Error("expected activation record to persist despite notifier failure")
	}
}

// TestCheckAndActivate_CreateErrorNotConfirmed: a persistence error on the
// create step reports the activation as not confirmed so the next
// verification event retries.
func TestCheckAndActivate_CreateErrorNotConfirmed(t *testing.T) {
	store := newFakeStore()
	seedVerified(store, "10115", 10)
	store.createErr = errors.New("connection reset")
	sender := &fakeSender{}
	gate := activation.NewGate(store, sender, threshold(10))

	st, err := gate.CheckAndActivate(context.Background(), "10115")
	if err == nil {
		t.Fatal("expected error from failed create")
	}
	if st.IsActive {
		t.Error("activation must not be confirmed on create failure")
	}
	if sender.batchCount() != 0 {
		t.Error("expected no notification on create failure")
	}

	// Store recovers; the next event completes the activation.
	store.createErr = nil
	st, err = gate.CheckAndActivate(context.Background(), "10115")
	if err != nil || !st.IsActive {
		t.Errorf("expected retry to activate, got status=%+v err=%v", st, err)
	}
	if sender.batchCount() != 1 {
		t.Errorf("expected exactly one batch after retry, got %d", sender.batchCount())
	}
}

// TestStatus_ErrorDefaultsInactive: ambiguous reads report the conservative
// "not yet active".
func TestStatus_ErrorDefaultsInactive(t *testing.T) {
	store := newFakeStore()
	store.countErr = errors.New("db unreachable")
	gate := activation.NewGate(store, &fakeSender{}, threshold(10))

	st := gate.Status(context.Background(), "10115")
	if st.IsActive {
		t.Error("expected inactive on read error")
	}
	if st.Needed != 10 {
		t.Errorf("expected conservative needed=threshold, got %d", st.Needed)
	}
}
