package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type fakeStore struct {
	carts map[string]*Cart
}

func newFakeStore() *fakeStore { return &fakeStore{carts: map[string]*Cart{}} }

func (f *fakeStore) FindByUser(_ context.Context, userID string) (*Cart, error) {
	c, ok := f.carts[userID]
	if !ok {
		return nil, fmt.Errorf("cart for user %s: %w", userID, shop.ErrNotFound)
	}
	cp := *c
	cp.Items = append([]Item(nil), c.Items...)
	return &cp, nil
}

func (f *fakeStore) Create(_ context.Context, userID string) (*Cart, error) {
	c := &Cart{ID: "cart-" + userID, UserID: userID}
	f.carts[userID] = c
	return c, nil
}

func (f *fakeStore) Save(_ context.Context, c *Cart) error {
	f.carts[c.UserID] = c
	return nil
}

type fakeProducts struct {
	products map[string]catalog.Product
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (catalog.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, fmt.Errorf("product %s: %w", id, shop.ErrNotFound)
	}
	return p, nil
}

func newService(products ...catalog.Product) (*Service, *fakeStore, *fakeProducts) {
	fp := &fakeProducts{products: map[string]catalog.Product{}}
	for _, p := range products {
		fp.products[p.ID] = p
	}
	fs := newFakeStore()
	return &Service{Store: fs, Products: fp}, fs, fp
}

func TestGetCreatesLazily(t *testing.T) {
	svc, fs, _ := newService()
	c, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(c.Items) != 0 || c.TotalCents != 0 {
		t.Fatalf("expected empty cart, got %+v", c)
	}
	if _, ok := fs.carts["u1"]; !ok {
		t.Fatal("cart was not created")
	}
}

func TestAddItemTotalInvariant(t *testing.T) {
	svc, _, _ := newService(
		catalog.Product{ID: "a", Name: "A", PriceCents: 1000, Stock: 10},
		catalog.Product{ID: "b", Name: "B", PriceCents: 500, Stock: 10},
	)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "a", 2); err != nil {
		t.Fatalf("add a: %v", err)
	}
	c, err := svc.AddItem(ctx, "u1", "b", 3)
	if err != nil {
		t.Fatalf("add b: %v", err)
	}
	if want := int64(2*1000 + 3*500); c.TotalCents != want {
		t.Fatalf("total = %d, want %d", c.TotalCents, want)
	}
}

func TestAddItemMergesLines(t *testing.T) {
	svc, _, _ := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 1000, Stock: 5})
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", "a", 2)
	c, err := svc.AddItem(ctx, "u1", "a", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].Qty != 3 {
		t.Fatalf("expected single merged line qty 3, got %+v", c.Items)
	}
}

func TestAddItemRejectsOverStock(t *testing.T) {
	svc, fs, _ := newService(catalog.Product{ID: "x", Name: "X", PriceCents: 100, Stock: 2})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", "x", 3)
	if !errors.Is(err, shop.ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock", err)
	}
	if c := fs.carts["u1"]; c != nil && len(c.Items) != 0 {
		t.Fatalf("cart should be unchanged, got %+v", c.Items)
	}
}

func TestAddItemMergedQuantityChecksStock(t *testing.T) {
	svc, _, _ := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 3})
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", "a", 2)
	if _, err := svc.AddItem(ctx, "u1", "a", 2); !errors.Is(err, shop.ErrOutOfStock) {
		t.Fatalf("err = %v, want ErrOutOfStock for merged qty 4 > stock 3", err)
	}
}

func TestAddItemRefreshesPriceSnapshot(t *testing.T) {
	svc, _, fp := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 1000, Stock: 10})
	ctx := context.Background()

	_, _ = svc.AddItem(ctx, "u1", "a", 1)
	p := fp.products["a"]
	p.PriceCents = 1200
	fp.products["a"] = p

	c, err := svc.AddItem(ctx, "u1", "a", 1)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if c.Items[0].PriceCents != 1200 {
		t.Fatalf("price snapshot = %d, want 1200", c.Items[0].PriceCents)
	}
	if c.TotalCents != 2400 {
		t.Fatalf("total = %d, want 2400", c.TotalCents)
	}
}

func TestUpdateQuantity(t *testing.T) {
	svc, _, _ := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5})
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 1)

	if _, err := svc.UpdateQuantity(ctx, "u1", "a", 0); !errors.Is(err, shop.ErrInvalidQuantity) {
		t.Fatalf("qty 0: err = %v, want ErrInvalidQuantity", err)
	}
	if _, err := svc.UpdateQuantity(ctx, "u1", "a", 6); !errors.Is(err, shop.ErrOutOfStock) {
		t.Fatalf("qty 6: err = %v, want ErrOutOfStock", err)
	}
	c, err := svc.UpdateQuantity(ctx, "u1", "a", 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Items[0].Qty != 4 || c.TotalCents != 400 {
		t.Fatalf("got qty %d total %d, want 4/400", c.Items[0].Qty, c.TotalCents)
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	svc, _, _ := newService(
		catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5},
		catalog.Product{ID: "b", Name: "B", PriceCents: 100, Stock: 5},
	)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 1)

	if _, err := svc.UpdateQuantity(ctx, "u1", "b", 1); !errors.Is(err, shop.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveItem(t *testing.T) {
	svc, _, _ := newService(
		catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5},
		catalog.Product{ID: "b", Name: "B", PriceCents: 50, Stock: 5},
	)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 2)
	_, _ = svc.AddItem(ctx, "u1", "b", 1)

	c, err := svc.RemoveItem(ctx, "u1", "a")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items) != 1 || c.TotalCents != 50 {
		t.Fatalf("got %d items total %d, want 1/50", len(c.Items), c.TotalCents)
	}

	// removing an absent product is a no-op, not an error
	c, err = svc.RemoveItem(ctx, "u1", "nope")
	if err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	if len(c.Items) != 1 {
		t.Fatalf("cart changed by absent removal: %+v", c.Items)
	}
}

func TestClear(t *testing.T) {
	svc, _, _ := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5})
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 2)

	c, err := svc.Clear(ctx, "u1")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(c.Items) != 0 || c.TotalCents != 0 {
		t.Fatalf("cart not cleared: %+v", c)
	}
}

func TestMerge(t *testing.T) {
	svc, _, _ := newService(
		catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 3},
		catalog.Product{ID: "b", Name: "B", PriceCents: 200, Stock: 1},
	)
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 2)

	c, err := svc.Merge(ctx, "u1", []GuestLine{
		{ProductID: "a", Qty: 5},    // would exceed stock: kept at 2
		{ProductID: "b", Qty: 1},    // fits: inserted
		{ProductID: "gone", Qty: 1}, // deleted product: skipped
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("got %d lines, want 2", len(c.Items))
	}
	if c.Items[0].ProductID != "a" || c.Items[0].Qty != 2 {
		t.Fatalf("line a = %+v, want qty 2 kept", c.Items[0])
	}
	if c.Items[1].ProductID != "b" || c.Items[1].Qty != 1 {
		t.Fatalf("line b = %+v, want qty 1", c.Items[1])
	}
	if want := int64(2*100 + 1*200); c.TotalCents != want {
		t.Fatalf("total = %d, want %d", c.TotalCents, want)
	}
}

func TestMergeFoldsIntoExistingLine(t *testing.T) {
	svc, _, _ := newService(catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5})
	ctx := context.Background()
	_, _ = svc.AddItem(ctx, "u1", "a", 2)

	c, err := svc.Merge(ctx, "u1", []GuestLine{{ProductID: "a", Qty: 2}})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if c.Items[0].Qty != 4 || c.TotalCents != 400 {
		t.Fatalf("got qty %d total %d, want 4/400", c.Items[0].Qty, c.TotalCents)
	}
}

func TestCount(t *testing.T) {
	svc, _, _ := newService(
		catalog.Product{ID: "a", Name: "A", PriceCents: 100, Stock: 5},
		catalog.Product{ID: "b", Name: "B", PriceCents: 100, Stock: 5},
	)
	ctx := context.Background()

	if n, _ := svc.Count(ctx, "nobody"); n != 0 {
		t.Fatalf("count without cart = %d, want 0", n)
	}

	_, _ = svc.AddItem(ctx, "u1", "a", 2)
	_, _ = svc.AddItem(ctx, "u1", "b", 3)
	n, err := svc.Count(ctx, "u1")
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 5 {
		t.Fatalf("count = %d, want 5", n)
	}
}
