package analysis

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DrewDeMo/finance/internal/models"
)

func bill(name string, amount float64, due time.Time, cat models.Category, sub models.Subcategory) *models.Bill {
	return &models.Bill{
		Name:        name,
		Amount:      decimal.NewFromFloat(amount),
		DueDate:     due,
		Frequency:   models.FrequencyMonthly,
		Category:    cat,
		Subcategory: sub,
		Status:      models.StatusUnpaid,
	}
}

func TestParseTimeFrame(t *testing.T) {
	for _, s := range []string{"", "month", "quarter", "year"} {
		if _, err := ParseTimeFrame(s); err != nil {
			t.Errorf("ParseTimeFrame(%q) = %v", s, err)
		}
	}
	if _, err := ParseTimeFrame("decade"); err == nil {
		t.Error("ParseTimeFrame accepted unknown frame")
	}
}

func TestWindowStart(t *testing.T) {
	now := time.Date(2024, time.March, 20, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		tf   TimeFrame
		want time.Time
	}{
		{TimeFrameMonth, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{TimeFrameQuarter, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)},
		{TimeFrameYear, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(string(tt.tf), func(t *testing.T) {
			if got := WindowStart(tt.tf, now); !got.Equal(tt.want) {
				t.Errorf("WindowStart(%s) = %v, want %v", tt.tf, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	bills := []*models.Bill{
		bill("this month", 10, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC), models.CategoryFamily, ""),
		bill("last month", 10, time.Date(2024, time.February, 5, 0, 0, 0, 0, time.UTC), models.CategoryFamily, ""),
		bill("last year", 10, time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC), models.CategoryFamily, ""),
	}

	if got := Filter(bills, TimeFrameMonth, now); len(got) != 1 {
		t.Errorf("month filter kept %d bills, want 1", len(got))
	}
	if got := Filter(bills, TimeFrameQuarter, now); len(got) != 2 {
		t.Errorf("quarter filter kept %d bills, want 2", len(got))
	}
}

func TestByCategory(t *testing.T) {
	due := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	bills := []*models.Bill{
		bill("Electric", 100.50, due, models.CategoryFamily, models.SubcategoryElectricity),
		bill("Heating", 200.25, due, models.CategoryFamily, models.SubcategoryHeating),
		bill("Phone", 45.00, due, models.CategoryGina, models.SubcategoryPhone),
	}

	totals := ByCategory(bills)
	if len(totals) != 2 {
		t.Fatalf("got %d categories, want 2", len(totals))
	}
	if totals[0].Name != string(models.CategoryFamily) || !totals[0].Amount.Equal(decimal.RequireFromString("300.75")) {
		t.Errorf("top category = %s/%s, want Family/300.75", totals[0].Name, totals[0].Amount)
	}
	if totals[1].Name != string(models.CategoryGina) {
		t.Errorf("second category = %s, want Gina", totals[1].Name)
	}
}

func TestBySubcategoryGroupsEmptyAsOther(t *testing.T) {
	due := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	bills := []*models.Bill{
		bill("Misc one", 10, due, models.CategoryFamily, models.SubcategoryNone),
		bill("Misc two", 15, due, models.CategoryFamily, models.SubcategoryOther),
		bill("Food", 50, due, models.CategoryFamily, models.SubcategoryFood),
	}

	totals := BySubcategory(bills)
	if len(totals) != 2 {
		t.Fatalf("got %d subcategories, want 2 (Food, Other)", len(totals))
	}
	if totals[0].Name != string(models.SubcategoryFood) {
		t.Errorf("top subcategory = %s, want Food", totals[0].Name)
	}
	if totals[1].Name != string(models.SubcategoryOther) || !totals[1].Amount.Equal(decimal.NewFromInt(25)) {
		t.Errorf("merged subcategory = %s/%s, want Other/25", totals[1].Name, totals[1].Amount)
	}
}
