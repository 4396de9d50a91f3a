package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/courtline/court-booking/internal/domain"
)

// Generation identifies the state of a date's cache entry. Every invalidation
// advances it, so a grid read before an invalidation can be recognised as stale.
type Generation int64

// AvailabilityCache stores rendered availability grids per date.
// Postgres stays the source of truth; entries are dropped after every committed write for that date.
type AvailabilityCache interface {
	// Get returns the cached grid on a hit. On a miss it returns the generation
	// the caller must hand back to Set after reading the grid from the store.
	Get(ctx context.Context, date time.Time) ([]domain.SlotView, Generation, bool, error)
	// Set stores views only if no invalidation happened since gen was read.
	Set(ctx context.Context, date time.Time, gen Generation, views []domain.SlotView) error
	Invalidate(ctx context.Context, date time.Time) error
}

type cachedSlot struct {
	CourtType   domain.CourtType `json:"court_type"`
	TimeSlot    string           `json:"time_slot"`
	IsAvailable bool             `json:"is_available"`
	BookedBy    *string          `json:"booked_by,omitempty"`
	BookingID   *int64           `json:"booking_id,omitempty"`
}

type redisAvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache returns a Redis-backed cache. A nil client or non-positive ttl yields a no-op cache.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) AvailabilityCache {
	if client == nil || ttl <= 0 {
		return noopAvailabilityCache{}
	}
	return &redisAvailabilityCache{client: client, ttl: ttl}
}

// generationTTL outlives any grid entry; an expired counter only makes the next Set a no-op.
const generationTTL = 48 * time.Hour

func availabilityKey(date time.Time) string {
	return "availability:" + date.Format(domain.DateLayout)
}

func generationKey(date time.Time) string {
	return "availability:gen:" + date.Format(domain.DateLayout)
}

func (c *redisAvailabilityCache) Get(ctx context.Context, date time.Time) ([]domain.SlotView, Generation, bool, error) {
	pipe := c.client.Pipeline()
	gridCmd := pipe.Get(ctx, availabilityKey(date))
	genCmd := pipe.Get(ctx, generationKey(date))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, 0, false, fmt.Errorf("read availability cache: %w", err)
	}

	gen, err := readGeneration(genCmd)
	if err != nil {
		return nil, 0, false, err
	}

	raw, err := gridCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("read availability cache: %w", err)
	}

	var cached []cachedSlot
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, gen, false, fmt.Errorf("decode availability cache: %w", err)
	}

	day := domain.DateOf(date)
	views := make([]domain.SlotView, 0, len(cached))
	for _, s := range cached {
		views = append(views, domain.SlotView{
			CourtType:   s.CourtType,
			Date:        day,
			TimeSlot:    s.TimeSlot,
			IsAvailable: s.IsAvailable,
			BookedBy:    s.BookedBy,
			BookingID:   s.BookingID,
		})
	}
	return views, gen, true, nil
}

func (c *redisAvailabilityCache) Set(ctx context.Context, date time.Time, gen Generation, views []domain.SlotView) error {
	cached := make([]cachedSlot, 0, len(views))
	for _, v := range views {
		cached = append(cached, cachedSlot{
			CourtType:   v.CourtType,
			TimeSlot:    v.TimeSlot,
			IsAvailable: v.IsAvailable,
			BookedBy:    v.BookedBy,
			BookingID:   v.BookingID,
		})
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("encode availability cache: %w", err)
	}

	genKey := generationKey(date)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(tx.Get(ctx, genKey))
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, availabilityKey(date), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
	// A concurrent invalidation touched the counter; the grid is stale either way.
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("write availability cache: %w", err)
	}
	return nil
}

func (c *redisAvailabilityCache) Invalidate(ctx context.Context, date time.Time) error {
	genKey := generationKey(date)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, generationTTL)
		pipe.Del(ctx, availabilityKey(date))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate availability cache: %w", err)
	}
	return nil
}

func readGeneration(cmd *redis.StringCmd) (Generation, error) {
	n, err := cmd.Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read availability generation: %w", err)
	}
	return Generation(n), nil
}

type noopAvailabilityCache struct{}

func (noopAvailabilityCache) Get(context.Context, time.Time) ([]domain.SlotView, Generation, bool, error) {
	return nil, 0, false, nil
}

func (noopAvailabilityCache) Set(context.Context, time.Time, Generation, []domain.SlotView) error {
	return nil
}

func (noopAvailabilityCache) Invalidate(context.Context, time.Time) error { return nil }
