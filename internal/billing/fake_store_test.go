package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DrewDeMo/finance/internal/models"
	"github.com/DrewDeMo/finance/internal/notify"
	"github.com/DrewDeMo/finance/internal/storage"
)

// fakeStore is an in-memory storage.Store for engine tests. Individual
// operations can be forced to fail to exercise the error paths.
type fakeStore struct {
	mu    sync.Mutex
	bills map[string]*models.Bill
	seq   int

	failList   error
	failCreate error
	failUpdate error

	createCalls int
	updateCalls int
}

var _ storage.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{bills: make(map[string]*models.Bill)}
}

func (f *fakeStore) CreateBill(_ context.Context, bill *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, b := range f.bills {
		if b.UserID == bill.UserID && b.Name == bill.Name && b.DueDate.Equal(bill.DueDate) {
			return fmt.Errorf("%w: %s", storage.ErrDuplicateBill, bill.Name)
		}
	}
	f.seq++
	bill.ID = fmt.Sprintf("bill-%d", f.seq)
	clone := *bill
	f.bills[bill.ID] = &clone
	return nil
}

func (f *fakeStore) GetBill(_ context.Context, userID, billID string) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[billID]
	if !ok || b.UserID != userID {
		return nil, fmt.Errorf("%w: bill %s", storage.ErrNotFound, billID)
	}
	clone := *b
	return &clone, nil
}

func (f *fakeStore) ListBillsByRange(_ context.Context, userID string, from, to time.Time) ([]*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failList != nil {
		return nil, f.failList
	}
	var out []*models.Bill
	for _, b := range f.bills {
		if b.UserID != userID || b.DueDate.Before(from) || b.DueDate.After(to) {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (f *fakeStore) ListBills(ctx context.Context, userID string) ([]*models.Bill, error) {
	min := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	max := time.Date(2999, 1, 1, 0, 0, 0, 0, time.UTC)
	return f.ListBillsByRange(ctx, userID, min, max)
}

func (f *fakeStore) UpdateBill(_ context.Context, bill *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if _, ok := f.bills[bill.ID]; !ok {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, bill.ID)
	}
	clone := *bill
	f.bills[bill.ID] = &clone
	return nil
}

func (f *fakeStore) DeleteBill(_ context.Context, userID, billID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bills[billID]
	if !ok || b.UserID != userID {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, billID)
	}
	delete(f.bills, billID)
	return nil
}

func (f *fakeStore) ListUserIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]bool)
	var ids []string
	for _, b := range f.bills {
		if !seen[b.UserID] {
			seen[b.UserID] = true
			ids = append(ids, b.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeStore) CreateUser(context.Context, *models.User) error { return errors.New("not implemented") }
func (f *fakeStore) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, nil
}
func (f *fakeStore) GetUserByID(context.Context, string) (*models.User, error) { return nil, nil }
func (f *fakeStore) Close() error                                              { return nil }

// recordingSink captures every notification for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

type sinkEvent struct {
	message  string
	severity notify.Severity
}

func (r *recordingSink) Notify(message string, severity notify.Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sinkEvent{message, severity})
}

func (r *recordingSink) bySeverity(sev notify.Severity) []sinkEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sinkEvent
	for _, ev := range r.events {
		if ev.severity == sev {
			out = append(out, ev)
		}
	}
	return out
}
