package fulfillment

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/crmfoods/canteen-orders/internal/orders"
	"github.com/crmfoods/canteen-orders/internal/redisx"
)

type RedisCache struct {
	R       *redis.Client
	Service string
}

func (c *RedisCache) Seen(ctx context.Context, eventID string) (bool, error) {
	return redisx.Exists(ctx, c.R, fmt.Sprintf(redisx.KeyDedup, c.Service, eventID))
}

func (c *RedisCache) MarkSeen(ctx context.Context, eventID string) error {
	key := fmt.Sprintf(redisx.KeyDedup, c.Service, eventID)
	return c.R.Set(ctx, key, "1", redisx.TTLDedup).Err()
}

func (c *RedisCache) SetStatus(ctx context.Context, orderID string, status orders.Status) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	val := fmt.Sprintf(`{"status":%q}`, status)
	return c.R.Set(ctx, key, val, redisx.TTLStatusCache).Err()
}
