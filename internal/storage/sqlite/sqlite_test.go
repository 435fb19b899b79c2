package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrewDeMo/finance/internal/models"
	"github.com/DrewDeMo/finance/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "finance-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testBill(userID, name string, due time.Time) *models.Bill {
	return &models.Bill{
		UserID:    userID,
		Name:      name,
		Amount:    decimal.NewFromFloat(99.95),
		DueDate:   due,
		Frequency: models.FrequencyMonthly,
		Category:  models.CategoryFamily,
		Status:    models.StatusUnpaid,
	}
}

func TestSQLiteStoreBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("drew@example.com", "Drew", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("CreateBill generates ID and timestamps", func(t *testing.T) {
		bill := testBill(user.ID, "Electric", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC))

		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.CreatedAt == 0 || bill.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetBill round-trips all fields", func(t *testing.T) {
		paid := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
		original := &models.Bill{
			UserID:        user.ID,
			Name:          "Internet",
			Amount:        decimal.RequireFromString("79.99"),
			DueDate:       time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			Frequency:     models.FrequencyMonthly,
			Category:      models.CategoryDrew,
			Subcategory:   models.SubcategoryInternet,
			Status:        models.StatusPaid,
			PaidDate:      &paid,
			IsAutomatic:   true,
			PaymentURL:    "https://pay.example.com",
			PaymentMethod: models.PaymentMethodURL,
		}
		if err := store.CreateBill(ctx, original); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, user.ID, original.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Name != original.Name || !got.Amount.Equal(original.Amount) {
			t.Errorf("got %s/%s, want %s/%s", got.Name, got.Amount, original.Name, original.Amount)
		}
		if !got.DueDate.Equal(original.DueDate) {
			t.Errorf("due date = %v, want %v", got.DueDate, original.DueDate)
		}
		if got.PaidDate == nil || !got.PaidDate.Equal(paid) {
			t.Errorf("paid date = %v, want %v", got.PaidDate, paid)
		}
		if !got.IsAutomatic || got.Subcategory != models.SubcategoryInternet ||
			got.PaymentMethod != models.PaymentMethodURL {
			t.Errorf("flags/enums did not round-trip: %+v", got)
		}
	})

	t.Run("GetBill scopes to owner", func(t *testing.T) {
		bill := testBill(user.ID, "Heating", time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		_, err := store.GetBill(ctx, "someone-else", bill.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("cross-user GetBill = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListBillsByRange is inclusive on both bounds", func(t *testing.T) {
		owner := models.NewUser("range@example.com", "Range", "hash")
		if err := store.CreateUser(ctx, owner); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		for _, d := range []int{1, 15, 31} {
			bill := testBill(owner.ID, "Bill day "+models.FormatDay(time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC)),
				time.Date(2024, time.May, d, 0, 0, 0, 0, time.UTC))
			if err := store.CreateBill(ctx, bill); err != nil {
				t.Fatalf("CreateBill failed: %v", err)
			}
		}
		outside := testBill(owner.ID, "June bill", time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
		if err := store.CreateBill(ctx, outside); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		got, err := store.ListBillsByRange(ctx, owner.ID,
			time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("ListBillsByRange failed: %v", err)
		}
		if len(got) != 3 {
			t.Errorf("got %d bills in May window, want 3", len(got))
		}
		for i := 1; i < len(got); i++ {
			if got[i].DueDate.Before(got[i-1].DueDate) {
				t.Error("bills not ordered by due date")
			}
		}
	})

	t.Run("duplicate user name due date rejected", func(t *testing.T) {
		due := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
		first := testBill(user.ID, "Insurance", due)
		if err := store.CreateBill(ctx, first); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		dupe := testBill(user.ID, "Insurance", due)
		err := store.CreateBill(ctx, dupe)
		if !errors.Is(err, storage.ErrDuplicateBill) {
			t.Errorf("duplicate CreateBill = %v, want ErrDuplicateBill", err)
		}

		// Same name on a different day is fine.
		other := testBill(user.ID, "Insurance", due.AddDate(0, 1, 0))
		if err := store.CreateBill(ctx, other); err != nil {
			t.Errorf("CreateBill on different day failed: %v", err)
		}
	})

	t.Run("UpdateBill persists status transition", func(t *testing.T) {
		bill := testBill(user.ID, "Phone", time.Date(2024, time.August, 5, 0, 0, 0, 0, time.UTC))
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bill.MarkPaid(time.Date(2024, time.August, 5, 9, 0, 0, 0, time.UTC))
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, user.ID, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Status != models.StatusPaid || got.PaidDate == nil {
			t.Errorf("status transition not persisted: %+v", got)
		}
	})

	t.Run("UpdateBill on missing bill returns ErrNotFound", func(t *testing.T) {
		ghost := testBill(user.ID, "Ghost", time.Date(2024, time.September, 1, 0, 0, 0, 0, time.UTC))
		ghost.ID = "no-such-id"
		if err := store.UpdateBill(ctx, ghost); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateBill = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteBill removes the row", func(t *testing.T) {
		bill := testBill(user.ID, "Gym", time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC))
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.DeleteBill(ctx, user.ID, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, user.ID, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBill after delete = %v, want ErrNotFound", err)
		}
		if err := store.DeleteBill(ctx, user.ID, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("second DeleteBill = %v, want ErrNotFound", err)
		}
	})

	t.Run("ListUserIDs returns distinct owners", func(t *testing.T) {
		ids, err := store.ListUserIDs(ctx)
		if err != nil {
			t.Fatalf("ListUserIDs failed: %v", err)
		}
		if len(ids) != 2 {
			t.Errorf("got %d user IDs, want 2", len(ids))
		}
	})
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("gina@example.com", "Gina", "bcrypt-hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("GetUserByEmail", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "gina@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil || got.ID != user.ID || got.DisplayName != "Gina" {
			t.Errorf("got %+v, want user %s", got, user.ID)
		}
	})

	t.Run("GetUserByEmail missing returns nil nil", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil || got != nil {
			t.Errorf("got %+v, %v; want nil, nil", got, err)
		}
	})

	t.Run("GetUserByID", func(t *testing.T) {
		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if got == nil || got.Email != user.Email {
			t.Errorf("got %+v, want %s", got, user.Email)
		}
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dupe := models.NewUser("gina@example.com", "Other Gina", "hash")
		if err := store.CreateUser(ctx, dupe); err == nil {
			t.Error("CreateUser accepted duplicate email")
		}
	})
}
