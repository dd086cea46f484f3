package service

import (
	"context"
	"time"

	"go-resto-ops/internal/events"
	"go-resto-ops/internal/model"

	"go.uber.org/zap"
)

// publishTimeout bounds how long a committed write waits on event sinks.
var publishTimeout = 2 * time.Second

// publish sends an event after the write committed. Failures are logged and
// never reach the caller.
func publish(ctx context.Context, pub events.Publisher, log *zap.Logger, topic, key string, payload interface{}) {
	if pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.Publish(ctx, topic, key, payload); err != nil {
		log.Warn("event publish failed", zap.String("topic", topic), zap.String("key", key), zap.Error(err))
	}
}

func actorPayload(actor model.Actor) map[string]interface{} {
	return map[string]interface{}{
		"id":   actor.ID,
		"name": actor.Name,
		"role": actor.Role,
	}
}

func productPayload(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":            p.ID,
		"sku":           p.SKU,
		"name":          p.Name,
		"current_stock": p.CurrentStock,
		"stock_status":  p.StockStatus(),
	}
}
