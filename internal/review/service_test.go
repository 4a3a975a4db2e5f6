package review

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type fakeStore struct {
	reviews   []Review
	delivered map[string]bool // userID+productID
	refreshed []string
}

func key(userID, productID string) string { return userID + "/" + productID }

func (f *fakeStore) Exists(_ context.Context, userID, productID string) (bool, error) {
	for _, rv := range f.reviews {
		if rv.UserID == userID && rv.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) HasDeliveredOrder(_ context.Context, userID, productID string) (bool, error) {
	return f.delivered[key(userID, productID)], nil
}

func (f *fakeStore) Create(_ context.Context, rv *Review) error {
	f.reviews = append(f.reviews, *rv)
	return nil
}

func (f *fakeStore) ListByProduct(_ context.Context, productID string, _, _ int) ([]Review, int, error) {
	var out []Review
	for _, rv := range f.reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) RefreshRating(_ context.Context, productID string) error {
	f.refreshed = append(f.refreshed, productID)
	return nil
}

type fakeProducts struct{ ids map[string]bool }

func (f *fakeProducts) FindByID(_ context.Context, id string) (catalog.Product, error) {
	if !f.ids[id] {
		return catalog.Product{}, fmt.Errorf("product %s: %w", id, shop.ErrNotFound)
	}
	return catalog.Product{ID: id}, nil
}

func newService() (*Service, *fakeStore) {
	fs := &fakeStore{delivered: map[string]bool{}}
	return &Service{
		Store:    fs,
		Products: &fakeProducts{ids: map[string]bool{"p1": true}},
	}, fs
}

func TestCreateRequiresDeliveredOrder(t *testing.T) {
	svc, _ := newService()

	if _, err := svc.Create(context.Background(), "u1", "p1", 4, "ok", "fine"); !errors.Is(err, shop.ErrNotPurchased) {
		t.Fatalf("err = %v, want ErrNotPurchased", err)
	}
}

func TestCreateOncePerProduct(t *testing.T) {
	svc, fs := newService()
	fs.delivered[key("u1", "p1")] = true

	rv, err := svc.Create(context.Background(), "u1", "p1", 5, "great", "loved it")
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if rv.Rating != 5 || rv.ProductID != "p1" {
		t.Fatalf("review = %+v", rv)
	}
	if len(fs.refreshed) != 1 || fs.refreshed[0] != "p1" {
		t.Fatalf("rating not refreshed: %v", fs.refreshed)
	}

	if _, err := svc.Create(context.Background(), "u1", "p1", 3, "again", ""); !errors.Is(err, shop.ErrAlreadyReviewed) {
		t.Fatalf("err = %v, want ErrAlreadyReviewed", err)
	}
}

func TestCreateRatingRange(t *testing.T) {
	svc, fs := newService()
	fs.delivered[key("u1", "p1")] = true

	for _, rating := range []int{0, -1, 6} {
		if _, err := svc.Create(context.Background(), "u1", "p1", rating, "", ""); !errors.Is(err, shop.ErrInvalidRating) {
			t.Errorf("rating %d: err = %v, want ErrInvalidRating", rating, err)
		}
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	svc, _ := newService()

	if _, err := svc.Create(context.Background(), "u1", "nope", 4, "", ""); !errors.Is(err, shop.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListByProduct(t *testing.T) {
	svc, fs := newService()
	fs.delivered[key("u1", "p1")] = true
	fs.delivered[key("u2", "p1")] = true

	if _, err := svc.Create(context.Background(), "u1", "p1", 5, "a", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Create(context.Background(), "u2", "p1", 3, "b", ""); err != nil {
		t.Fatal(err)
	}

	list, total, err := svc.ListByProduct(context.Background(), "p1", 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("total = %d, len = %d", total, len(list))
	}
}
