package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/latta-clothing/storefront/internal/config"
	"github.com/latta-clothing/storefront/internal/models"
	"github.com/redis/go-redis/v9"
)

// CartRepository is the session-scoped cart store. Carts live in Redis as
// JSON blobs keyed by session ID, so they survive across requests until the
// session TTL expires.
type CartRepository interface {
	Get(ctx context.Context, sessionID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	Clear(ctx context.Context, sessionID string) error

	// AcquireCheckoutLock guards against double-submitted checkouts for one
	// session. Returns false when another checkout holds the lock.
	AcquireCheckoutLock(ctx context.Context, sessionID string) (bool, error)
	ReleaseCheckoutLock(ctx context.Context, sessionID string) error
}

type cartRepository struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewCartRepo(client *redis.Client, cfg *config.CartConfig) CartRepository {
	return &cartRepository{
		client:  client,
		ttl:     cfg.TTL,
		lockTTL: cfg.CheckoutLockTTL,
	}
}

func NewRedisClient(cfg *config.Config) (*redis.Client, error) {

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConnect.Host,
		Username: cfg.RedisConnect.Username,
		Password: cfg.RedisConnect.Password,
		DB:       cfg.RedisConnect.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Test the connection to make sure Redis is reachable
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

func checkoutLockKey(sessionID string) string {
	return "checkout_lock:" + sessionID
}

// Get returns the session's cart. A missing key is not an error; the cart
// is created empty on first interaction.
func (r *cartRepository) Get(ctx context.Context, sessionID string) (*models.Cart, error) {

	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if err != nil {

		if err == redis.Nil {
			return models.NewCart(sessionID), nil
		}

		return nil, fmt.Errorf("failed to get cart for session %s: %w", sessionID, err)
	}

	cart := &models.Cart{}

	if err := json.Unmarshal(data, cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart for session %s: %w", sessionID, err)
	}

	if cart.Items == nil {
		cart.Items = make(map[string]models.CartEntry)
	}

	cart.SessionID = sessionID

	return cart, nil
}

func (r *cartRepository) Save(ctx context.Context, cart *models.Cart) error {

	cart.UpdatedAt = time.Now()

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart for session %s: %w", cart.SessionID, err)
	}

	if err := r.client.Set(ctx, cartKey(cart.SessionID), string(data), r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart for session %s: %w", cart.SessionID, err)
	}

	return nil
}

func (r *cartRepository) Clear(ctx context.Context, sessionID string) error {

	if err := r.client.Del(ctx, cartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart for session %s: %w", sessionID, err)
	}

	return nil
}

func (r *cartRepository) AcquireCheckoutLock(ctx context.Context, sessionID string) (bool, error) {

	ok, err := r.client.SetNX(ctx, checkoutLockKey(sessionID), "1", r.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire checkout lock for session %s: %w", sessionID, err)
	}

	return ok, nil
}

func (r *cartRepository) ReleaseCheckoutLock(ctx context.Context, sessionID string) error {

	if err := r.client.Del(ctx, checkoutLockKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to release checkout lock for session %s: %w", sessionID, err)
	}

	return nil
}
