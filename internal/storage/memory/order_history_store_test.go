package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"commerce-whatif-lab/internal/domain"
	"commerce-whatif-lab/internal/storage"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func TestOrderHistoryStore_DailyHistoryWindow(t *testing.T) {
	store := NewOrderHistoryStore()
	store.now = fixedNow
	ctx := context.Background()

	today := fixedNow().Truncate(24 * time.Hour)
	offsets := []int{1, 5, 10, 45, 120}
	for _, d := range offsets {
		m := domain.DailyMetric{
			Date:    today.AddDate(0, 0, -d),
			Orders:  d,
			Revenue: float64(d) * 100,
			AOV:     100,
			COGS:    float64(d) * 40,
		}
		if err := store.InsertDay(ctx, 1, m); err != nil {
			t.Fatalf("InsertDay failed: %v", err)
		}
	}

	got, err := store.DailyHistory(ctx, 1, 30)
	if err != nil {
		t.Fatalf("DailyHistory failed: %v", err)
	}

	// Only days 1, 5, 10 fall inside the 30-day window.
	if len(got) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(got))
	}

	// Ordered by date ASC: oldest first.
	wantOrders := []int{10, 5, 1}
	for i, m := range got {
		if m.Orders != wantOrders[i] {
			t.Errorf("Row %d: got orders %d, want %d", i, m.Orders, wantOrders[i])
		}
	}
}

func TestOrderHistoryStore_DuplicateDay(t *testing.T) {
	store := NewOrderHistoryStore()
	store.now = fixedNow
	ctx := context.Background()

	day := fixedNow().Truncate(24 * time.Hour).AddDate(0, 0, -1)
	if err := store.InsertDay(ctx, 1, domain.DailyMetric{Date: day, Orders: 3}); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	// Same day at a different hour still collides after truncation.
	err := store.InsertDay(ctx, 1, domain.DailyMetric{Date: day.Add(6 * time.Hour), Orders: 5})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Same day for another shop is fine.
	if err := store.InsertDay(ctx, 2, domain.DailyMetric{Date: day, Orders: 5}); err != nil {
		t.Errorf("Insert for other shop failed: %v", err)
	}
}

func TestOrderHistoryStore_EmptyShop(t *testing.T) {
	store := NewOrderHistoryStore()
	ctx := context.Background()

	got, err := store.DailyHistory(ctx, 99, 90)
	if err != nil {
		t.Fatalf("DailyHistory failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty history, got %d rows", len(got))
	}
}

func TestOrderHistoryStore_InvalidDays(t *testing.T) {
	store := NewOrderHistoryStore()
	ctx := context.Background()

	if _, err := store.DailyHistory(ctx, 1, 0); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
