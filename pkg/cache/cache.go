package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs. Plans change rarely; subscription views must stay fresh
// because webhook reconciliation mutates them out of band.
const (
	TTLPlans        = 10 * time.Minute
	TTLSubscription = 1 * time.Minute
	TTLTour         = 5 * time.Minute
	TTLDefault      = 5 * time.Minute
	TTLWebhookEvent = 72 * time.Hour
)

// Cache key prefixes
const (
	PrefixPlans        = "plans:"
	PrefixSubscription = "subscription:host:"
	PrefixTour         = "tour:"
	PrefixWebhookEvent = "webhook:event:"
)

// ErrCacheMiss is returned when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// Service Redis cache service interface
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Plan list cache
	GetPlans(ctx context.Context) ([]byte, error)
	SetPlans(ctx context.Context, data interface{}) error
	InvalidatePlans(ctx context.Context) error

	// Current-subscription view per host
	GetSubscription(ctx context.Context, hostID string) ([]byte, error)
	SetSubscription(ctx context.Context, hostID string, data interface{}) error
	InvalidateSubscription(ctx context.Context, hostID string) error

	// Webhook event dedupe: MarkEventProcessed returns false when the
	// gateway event id was already seen within the retention window.
	MarkEventProcessed(ctx context.Context, eventID string) (bool, error)
}

type service struct {
	client *redis.Client
}

// NewService creates a cache service backed by Redis
func NewService(client *redis.Client) Service {
	return &service{client: client}
}

func (s *service) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

func (s *service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *service) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}

func (s *service) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *service) GetPlans(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, PrefixPlans+"all").Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (s *service) SetPlans(ctx context.Context, data interface{}) error {
	return s.Set(ctx, PrefixPlans+"all", data, TTLPlans)
}

func (s *service) InvalidatePlans(ctx context.Context) error {
	return s.Delete(ctx, PrefixPlans+"all")
}

func (s *service) GetSubscription(ctx context.Context, hostID string) ([]byte, error) {
	data, err := s.client.Get(ctx, PrefixSubscription+hostID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return data, nil
}

func (s *service) SetSubscription(ctx context.Context, hostID string, data interface{}) error {
	return s.Set(ctx, PrefixSubscription+hostID, data, TTLSubscription)
}

func (s *service) InvalidateSubscription(ctx context.Context, hostID string) error {
	return s.Delete(ctx, PrefixSubscription+hostID)
}

func (s *service) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	key := fmt.Sprintf("%s%s", PrefixWebhookEvent, eventID)
	ok, err := s.client.SetNX(ctx, key, 1, TTLWebhookEvent).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}
