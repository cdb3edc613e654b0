package pos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"posflow/pkg/customer"
	custmem "posflow/pkg/customer/memory"
	"posflow/pkg/item"
	itemmem "posflow/pkg/item/memory"
	ordermem "posflow/pkg/order/memory"
)

type fixture struct {
	svc       *Service
	customers *custmem.Repository
	items     *itemmem.Repository
	orders    *ordermem.Repository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	customers := custmem.New()
	items := itemmem.New()
	orders := ordermem.New()

	if _, err := customers.Add(ctx, customer.Customer{Name: "Nimal", Mobile: "0771234567", Address: "Colombo"}); err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	seed := []item.Item{
		{Name: "Rice 5kg", Category: "Grocery", Price: decimal.NewFromInt(1250), Quantity: 5},
		{Name: "Sugar 1kg", Category: "Grocery", Price: decimal.RequireFromString("240.50"), Quantity: 20},
	}
	for _, it := range seed {
		if _, err := items.Add(ctx, it); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}
	return fixture{svc: NewService(customers, items, orders), customers: customers, items: items, orders: orders}
}

func (f fixture) stock(t *testing.T, id string) int {
	t.Helper()
	it, err := f.items.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get item %s: %v", id, err)
	}
	return it.Quantity
}

func TestPlaceOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines: []LineRequest{
			{ItemID: "P001", Quantity: 2},
			{ItemID: "P002", Quantity: 3},
		},
		Date:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Notes: "deliver after 5pm",
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if placed.ID != "O001" {
		t.Fatalf("expected O001, got %s", placed.ID)
	}
	if placed.Status != "completed" {
		t.Fatalf("expected completed status, got %s", placed.Status)
	}
	want := decimal.RequireFromString("3221.50") // 2*1250 + 3*240.50
	if !placed.Total.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, placed.Total)
	}
	if f.stock(t, "P001") != 3 || f.stock(t, "P002") != 17 {
		t.Fatalf("stock not decremented: P001=%d P002=%d", f.stock(t, "P001"), f.stock(t, "P002"))
	}
}

func TestPlaceOrderUnknownCustomer(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: "C099",
		Lines:      []LineRequest{{ItemID: "P001", Quantity: 1}},
	})
	if !errors.Is(err, customer.ErrNotFound) {
		t.Fatalf("expected customer.ErrNotFound, got %v", err)
	}
	if f.stock(t, "P001") != 5 {
		t.Fatal("stock mutated on rejected order")
	}
}

func TestPlaceOrderEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{CustomerID: "C001"})
	if !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("expected ErrEmptyOrder, got %v", err)
	}
	orders, _ := f.orders.List(context.Background())
	if len(orders) != 0 {
		t.Fatal("order appended despite empty request")
	}
}

func TestPlaceOrderUnknownItem(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
		CustomerID: "C001",
		Lines: []LineRequest{
			{ItemID: "P001", Quantity: 1},
			{ItemID: "P099", Quantity: 1},
		},
	})
	if !errors.Is(err, item.ErrNotFound) {
		t.Fatalf("expected item.ErrNotFound, got %v", err)
	}
	if f.stock(t, "P001") != 5 {
		t.Fatal("stock mutated on rejected order")
	}
}

func TestPlaceOrderInvalidQuantity(t *testing.T) {
	f := newFixture(t)
	for _, qty := range []int{0, -3} {
		_, err := f.svc.PlaceOrder(context.Background(), PlaceOrderRequest{
			CustomerID: "C001",
			Lines:      []LineRequest{{ItemID: "P001", Quantity: qty}},
		})
		var invErr InvalidQuantityError
		if !errors.As(err, &invErr) {
			t.Fatalf("qty %d: expected InvalidQuantityError, got %v", qty, err)
		}
		if invErr.ItemID != "P001" || invErr.Quantity != qty {
			t.Fatalf("unexpected error detail: %+v", invErr)
		}
	}
}

func TestPlaceOrderStockBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// One more than available fails and reports availability.
	_, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines:      []LineRequest{{ItemID: "P001", Quantity: 6}},
	})
	var stockErr InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Available != 5 || stockErr.Requested != 6 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}
	if f.stock(t, "P001") != 5 {
		t.Fatal("stock mutated on rejected order")
	}

	// Exactly the available quantity succeeds and empties the stock.
	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines:      []LineRequest{{ItemID: "P001", Quantity: 5}},
	})
	if err != nil {
		t.Fatalf("boundary place: %v", err)
	}
	if f.stock(t, "P001") != 0 {
		t.Fatalf("expected stock 0, got %d", f.stock(t, "P001"))
	}
	if placed.ItemCount() != 5 {
		t.Fatalf("expected item count 5, got %d", placed.ItemCount())
	}
}

func TestPlaceOrderMergesDuplicateLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// 3+4 > 5 in stock: merged request must fail with available=5 and no
	// partial decrement.
	_, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines: []LineRequest{
			{ItemID: "P001", Quantity: 3},
			{ItemID: "P001", Quantity: 4},
		},
	})
	var stockErr InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Requested != 7 || stockErr.Available != 5 {
		t.Fatalf("unexpected error detail: %+v", stockErr)
	}
	if f.stock(t, "P001") != 5 {
		t.Fatal("partial decrement on merged failure")
	}

	// 2+3 fits exactly and lands as one merged line.
	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines: []LineRequest{
			{ItemID: "P001", Quantity: 2},
			{ItemID: "P001", Quantity: 3},
		},
	})
	if err != nil {
		t.Fatalf("merged place: %v", err)
	}
	if len(placed.Lines) != 1 || placed.Lines[0].Quantity != 5 {
		t.Fatalf("expected one merged line of 5, got %+v", placed.Lines)
	}
	if f.stock(t, "P001") != 0 {
		t.Fatalf("expected stock 0, got %d", f.stock(t, "P001"))
	}
}

func TestOrderTotalIsPriceSnapshot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines:      []LineRequest{{ItemID: "P001", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	before := placed.Total

	// Raise the live price; the stored order must not move.
	it, _ := f.items.Get(ctx, "P001")
	it.Price = decimal.NewFromInt(9999)
	if err := f.items.Update(ctx, it); err != nil {
		t.Fatalf("update price: %v", err)
	}

	stored, err := f.orders.Get(ctx, placed.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if !stored.Total.Equal(before) {
		t.Fatalf("total drifted after price edit: %s vs %s", stored.Total, before)
	}
	if !stored.Lines[0].UnitPrice.Equal(decimal.NewFromInt(1250)) {
		t.Fatalf("unit price snapshot drifted: %s", stored.Lines[0].UnitPrice)
	}
	if !OrderTotal(stored).Equal(before) {
		t.Fatalf("OrderTotal disagrees with stored total: %s vs %s", OrderTotal(stored), before)
	}
}

func TestDeletingCustomerLeavesOrdersIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
		CustomerID: "C001",
		Lines:      []LineRequest{{ItemID: "P002", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := f.customers.Delete(ctx, "C001"); err != nil {
		t.Fatalf("delete customer: %v", err)
	}

	stored, err := f.orders.Get(ctx, placed.ID)
	if err != nil {
		t.Fatalf("order lost after customer delete: %v", err)
	}
	if stored.CustomerID != "C001" {
		t.Fatalf("customer reference corrupted: %s", stored.CustomerID)
	}
	name, err := f.svc.CustomerDisplayName(ctx, stored)
	if err != nil {
		t.Fatalf("display name: %v", err)
	}
	if name != "C001" {
		t.Fatalf("expected fallback to raw id, got %s", name)
	}
}

func TestOrderIDsStrictlyIncrease(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	prev := ""
	for i := 0; i < 4; i++ {
		o, err := f.svc.PlaceOrder(ctx, PlaceOrderRequest{
			CustomerID: "C001",
			Lines:      []LineRequest{{ItemID: "P002", Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("place %d: %v", i, err)
		}
		if o.ID <= prev {
			t.Fatalf("ids not strictly increasing: %s after %s", o.ID, prev)
		}
		prev = o.ID
	}
}
