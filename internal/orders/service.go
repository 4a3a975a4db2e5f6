package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/adiwirawan/go-shop-backend/internal/catalog"
	kafkax "github.com/adiwirawan/go-shop-backend/internal/kafka"
	"github.com/adiwirawan/go-shop-backend/internal/shop"
)

type Pricing struct {
	TaxRateBps        int64
	FreeShippingCents int64
	ShippingFeeCents  int64
}

// Sinks holds one producer per order topic.
type Sinks struct {
	Created   EventSink
	Paid      EventSink
	Cancelled EventSink
	Status    EventSink
}

// Service coordinates the cart -> inventory -> order transition and the
// order lifecycle afterwards.
type Service struct {
	Carts       CartSource
	Ledger      Ledger
	Store       Store
	Events      Sinks
	Pricing     Pricing
	ServiceName string
	Log         *slog.Logger
}

// PlaceOrder converts the user's cart into a pending order.
//
// Reservation is a single all-or-nothing pass: either every line's
// stock is decremented or none is, so a failing line can never leave
// partial reservations behind.
func (s *Service) PlaceOrder(ctx context.Context, userID string, addr Address, paymentMethod string) (*Order, error) {
	c, err := s.Carts.FindByUser(ctx, userID)
	if errors.Is(err, shop.ErrNotFound) {
		return nil, shop.ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, shop.ErrEmptyCart
	}

	wanted := make([]catalog.ItemQty, 0, len(c.Items))
	for _, it := range c.Items {
		wanted = append(wanted, catalog.ItemQty{ProductID: it.ProductID, Qty: it.Qty})
	}
	reserved, err := s.Ledger.ReserveAll(ctx, wanted)
	if err != nil {
		return nil, err
	}

	// Snapshot items from the populated cart lines, priced at the
	// reservation instant.
	priceByID := make(map[string]int64, len(reserved))
	for _, l := range reserved {
		priceByID[l.ProductID] = l.PriceCents
	}
	items := make([]OrderItem, 0, len(c.Items))
	var itemsCents int64
	for _, it := range c.Items {
		price := priceByID[it.ProductID]
		items = append(items, OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Qty:        it.Qty,
			PriceCents: price,
			Image:      it.Image,
		})
		itemsCents += int64(it.Qty) * price
	}

	taxCents := itemsCents * s.Pricing.TaxRateBps / 10000
	var shippingCents int64
	if itemsCents <= s.Pricing.FreeShippingCents {
		shippingCents = s.Pricing.ShippingFeeCents
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   paymentMethod,
		ItemsCents:      itemsCents,
		TaxCents:        taxCents,
		ShippingCents:   shippingCents,
		TotalCents:      itemsCents + taxCents + shippingCents,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Store.Create(ctx, o); err != nil {
		// The reservation already committed; hand the stock back.
		s.releaseAll(ctx, o.Items)
		return nil, err
	}

	if err := s.Carts.Clear(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart after order %s: %w", o.ID, err)
	}

	s.publish(s.Events.Created, EventOrderCreated, o.ID, OrderCreatedPayload{
		OrderID:    o.ID,
		UserID:     userID,
		Items:      toLines(o.Items),
		TotalCents: o.TotalCents,
	})
	return o, nil
}

// CancelOrder is the compensating transaction for PlaceOrder: it
// restores every reserved line and moves the order to cancelled.
func (s *Service) CancelOrder(ctx context.Context, orderID string, actor shop.Actor) (*Order, error) {
	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, shop.ErrForbidden
	}
	if !CanTransition(o.Status, StatusCancelled) {
		return nil, fmt.Errorf("order %s is %s: %w", o.ID, o.Status, shop.ErrNotCancellable)
	}

	// Persist the status before touching stock: a retried cancel then
	// stops at the transition guard instead of releasing the lines again.
	o.Status = StatusCancelled
	o.UpdatedAt = time.Now().UTC()
	if err := s.Store.Update(ctx, o); err != nil {
		return nil, err
	}

	for _, it := range o.Items {
		if err := s.Ledger.Release(ctx, it.ProductID, it.Qty); err != nil {
			return nil, fmt.Errorf("release %s: %w", it.ProductID, err)
		}
	}

	s.publish(s.Events.Cancelled, EventOrderCancelled, o.ID, OrderCancelledPayload{
		OrderID: o.ID,
		Items:   toLines(o.Items),
	})
	return o, nil
}

// UpdateStatus is the administrative transition. A move into cancelled
// goes through CancelOrder so inventory compensation always runs.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, next Status, trackingNumber string, actor shop.Actor) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, shop.ErrForbidden
	}
	if !next.Valid() {
		return nil, fmt.Errorf("status %q: %w", next, shop.ErrInvalidStatus)
	}
	if next == StatusCancelled {
		return s.CancelOrder(ctx, orderID, actor)
	}

	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, next) {
		return nil, fmt.Errorf("cannot move %s from %s to %s: %w", o.ID, o.Status, next, shop.ErrInvalidStatus)
	}

	o.Status = next
	if trackingNumber != "" {
		o.TrackingNumber = trackingNumber
	}
	now := time.Now().UTC()
	if next == StatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	if err := s.Store.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publish(s.Events.Status, EventOrderStatusChanged, o.ID, OrderStatusChangedPayload{OrderID: o.ID, Status: next})
	return o, nil
}

// MarkPaid records a verified payment callback. Only the owner may pay;
// a second callback for an already-paid order is a no-op.
func (s *Service) MarkPaid(ctx context.Context, orderID string, actor shop.Actor, paymentRef string) (*Order, error) {
	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID {
		return nil, shop.ErrForbidden
	}
	if o.IsPaid {
		return o, nil
	}

	now := time.Now().UTC()
	o.IsPaid = true
	o.PaidAt = &now
	o.PaymentRef = paymentRef
	if CanTransition(o.Status, StatusProcessing) {
		o.Status = StatusProcessing
	}
	o.UpdatedAt = now
	if err := s.Store.Update(ctx, o); err != nil {
		return nil, err
	}

	s.publish(s.Events.Paid, EventOrderPaid, o.ID, OrderPaidPayload{OrderID: o.ID, PaymentRef: paymentRef})
	return o, nil
}

func (s *Service) Get(ctx context.Context, orderID string, actor shop.Actor) (*Order, error) {
	o, err := s.Store.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, shop.ErrForbidden
	}
	return o, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, page, limit int) ([]Order, int, error) {
	return s.Store.ListByUser(ctx, userID, page, limit)
}

func (s *Service) ListAll(ctx context.Context, actor shop.Actor, status string, page, limit int) ([]Order, int, error) {
	if !actor.IsAdmin() {
		return nil, 0, shop.ErrForbidden
	}
	return s.Store.ListAll(ctx, status, page, limit)
}

func (s *Service) releaseAll(ctx context.Context, items []OrderItem) {
	for _, it := range items {
		if err := s.Ledger.Release(ctx, it.ProductID, it.Qty); err != nil && s.Log != nil {
			s.Log.Error("release after failed create", "product_id", it.ProductID, "err", err)
		}
	}
}

func (s *Service) publish(sink EventSink, eventType, orderID string, payload any) {
	if sink == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	sink.Publish(PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func toLines(items []OrderItem) []LinePayload {
	out := make([]LinePayload, 0, len(items))
	for _, it := range items {
		out = append(out, LinePayload{ProductID: it.ProductID, Qty: it.Qty, PriceCents: it.PriceCents})
	}
	return out
}
