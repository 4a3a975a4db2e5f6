// Package ordercache keeps the Redis order-status cache in sync with
// the order event stream so status reads rarely touch the database.
package ordercache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/adiwirawan/go-shop-backend/internal/orders"
	"github.com/adiwirawan/go-shop-backend/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
	Log         *slog.Logger
}

// HandleOrderEvent is wired as the consumer handler for every order
// topic.
func (s *Service) HandleOrderEvent(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	var status orders.Status
	var userID string
	switch env.EventType {
	case orders.EventOrderCreated:
		status = orders.StatusPending
		var p orders.OrderCreatedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		userID = p.UserID
	case orders.EventOrderPaid:
		status = orders.StatusProcessing
	case orders.EventOrderCancelled:
		status = orders.StatusCancelled
	case orders.EventOrderStatusChanged:
		var p orders.OrderStatusChangedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return err
		}
		status = p.Status
	default:
		return nil
	}

	// dedup by event id; a replayed event writes the same status anyway
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	seen, _ := redisx.Exists(ctx, s.Redis, dkey)
	if seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	key := fmt.Sprintf(redisx.KeyOrderStatus, env.CorrelationID)
	if userID == "" {
		// later lifecycle events carry no owner; keep the one the
		// OrderCreated entry recorded
		if prev, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var entry redisx.OrderStatus
			if json.Unmarshal([]byte(prev), &entry) == nil {
				userID = entry.UserID
			}
		}
	}
	b, _ := json.Marshal(redisx.OrderStatus{Status: string(status), UserID: userID})
	if err := s.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err(); err != nil {
		return err
	}
	if s.Log != nil {
		s.Log.Info("status cached", "order_id", env.CorrelationID, "status", status)
	}
	return nil
}
