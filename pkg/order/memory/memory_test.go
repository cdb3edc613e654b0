package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"posflow/pkg/order"
)

func sample(customerID string) order.Order {
	return order.Order{
		CustomerID: customerID,
		Date:       time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Lines: []order.Line{
			{ItemID: "P001", Name: "Rice 5kg", UnitPrice: decimal.NewFromInt(1250), Quantity: 2},
		},
		Status: order.StatusCompleted,
		Total:  decimal.NewFromInt(2500),
	}
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	repo := New()

	o1, err := repo.Add(ctx, sample("C001"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if o1.ID != "O001" {
		t.Fatalf("expected O001, got %s", o1.ID)
	}
	o2, _ := repo.Add(ctx, sample("C002"))
	if o2.ID != "O002" {
		t.Fatalf("expected O002, got %s", o2.ID)
	}

	got, err := repo.Get(ctx, "O001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerID != "C001" {
		t.Fatalf("expected C001, got %s", got.CustomerID)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v len=%d", err, len(list))
	}
	if list[0].ID != "O001" || list[1].ID != "O002" {
		t.Fatalf("placement order lost: %s, %s", list[0].ID, list[1].ID)
	}

	if _, err := repo.Get(ctx, "O099"); err != order.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadAll(t *testing.T) {
	ctx := context.Background()
	repo := New()

	restored := []order.Order{sample("C001"), sample("C002")}
	restored[0].ID = "O003"
	restored[1].ID = "O004"
	repo.LoadAll(restored)

	next, err := repo.Add(ctx, sample("C003"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if next.ID != "O005" {
		t.Fatalf("expected O005 after restore, got %s", next.ID)
	}
}
