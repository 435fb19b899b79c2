package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/DrewDeMo/finance/internal/models"
	"github.com/DrewDeMo/finance/internal/storage"
)

const billColumns = `id, user_id, name, amount, due_date, frequency, category, subcategory,
	status, paid_date, is_automatic, payment_url, payment_method, created_at, updated_at`

// CreateBill persists a new bill, generating its ID and timestamps.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bills (`+billColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.UserID, bill.Name, bill.Amount.String(),
		models.FormatDay(bill.DueDate), string(bill.Frequency),
		string(bill.Category), string(bill.Subcategory), string(bill.Status),
		nullDay(bill.PaidDate), boolToInt(bill.IsAutomatic),
		bill.PaymentURL, string(bill.PaymentMethod),
		bill.CreatedAt, bill.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s due %s", storage.ErrDuplicateBill,
				bill.Name, models.FormatDay(bill.DueDate))
		}
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	return nil
}

// GetBill retrieves a bill by ID scoped to the owning user.
func (s *SQLiteStore) GetBill(ctx context.Context, userID, billID string) (*models.Bill, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = ? AND user_id = ?`,
		billID, userID,
	)

	bill, err := scanBill(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: bill %s", storage.ErrNotFound, billID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

// ListBillsByRange retrieves the user's bills due within [from, to] inclusive.
func (s *SQLiteStore) ListBillsByRange(ctx context.Context, userID string, from, to time.Time) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills
		 WHERE user_id = ? AND due_date >= ? AND due_date <= ?
		 ORDER BY due_date ASC, name ASC`,
		userID, models.FormatDay(from), models.FormatDay(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills by range: %w", err)
	}
	defer rows.Close()

	return collectBills(rows)
}

// ListBills retrieves every bill for the user.
func (s *SQLiteStore) ListBills(ctx context.Context, userID string) ([]*models.Bill, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE user_id = ? ORDER BY due_date ASC, name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	return collectBills(rows)
}

// UpdateBill updates an existing bill keyed by its ID.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	bill.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE bills SET name = ?, amount = ?, due_date = ?, frequency = ?,
		 category = ?, subcategory = ?, status = ?, paid_date = ?,
		 is_automatic = ?, payment_url = ?, payment_method = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		bill.Name, bill.Amount.String(), models.FormatDay(bill.DueDate),
		string(bill.Frequency), string(bill.Category), string(bill.Subcategory),
		string(bill.Status), nullDay(bill.PaidDate), boolToInt(bill.IsAutomatic),
		bill.PaymentURL, string(bill.PaymentMethod), bill.UpdatedAt,
		bill.ID, bill.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s due %s", storage.ErrDuplicateBill,
				bill.Name, models.FormatDay(bill.DueDate))
		}
		return fmt.Errorf("failed to update bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, bill.ID)
	}
	return nil
}

// DeleteBill removes a bill by ID.
func (s *SQLiteStore) DeleteBill(ctx context.Context, userID, billID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM bills WHERE id = ? AND user_id = ?",
		billID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bill %s", storage.ErrNotFound, billID)
	}
	return nil
}

// ListUserIDs returns the distinct owners of all stored bills.
func (s *SQLiteStore) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT user_id FROM bills ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list user IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user IDs: %w", err)
	}
	return ids, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanBill.
type scanner interface {
	Scan(dest ...any) error
}

func scanBill(row scanner) (*models.Bill, error) {
	var (
		bill      models.Bill
		amount    string
		dueDate   string
		paidDate  sql.NullString
		automatic int
	)

	err := row.Scan(
		&bill.ID, &bill.UserID, &bill.Name, &amount, &dueDate,
		(*string)(&bill.Frequency), (*string)(&bill.Category),
		(*string)(&bill.Subcategory), (*string)(&bill.Status),
		&paidDate, &automatic, &bill.PaymentURL,
		(*string)(&bill.PaymentMethod), &bill.CreatedAt, &bill.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	bill.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("corrupt amount %q for bill %s: %w", amount, bill.ID, err)
	}
	bill.DueDate, err = models.ParseDay(dueDate)
	if err != nil {
		return nil, fmt.Errorf("corrupt due date for bill %s: %w", bill.ID, err)
	}
	if paidDate.Valid {
		day, err := models.ParseDay(paidDate.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt paid date for bill %s: %w", bill.ID, err)
		}
		bill.PaidDate = &day
	}
	bill.IsAutomatic = automatic != 0

	return &bill, nil
}

func collectBills(rows *sql.Rows) ([]*models.Bill, error) {
	var bills []*models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bills: %w", err)
	}
	return bills, nil
}

func nullDay(t *time.Time) any {
	if t == nil {
		return nil
	}
	return models.FormatDay(*t)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
// modernc.org/sqlite does not export a typed error for this, so match the
// message the engine produces.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
