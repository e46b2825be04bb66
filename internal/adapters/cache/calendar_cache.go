package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const DefaultCalendarTTL = 24 * time.Hour

var _ domain.CalendarCache = (*RedisCalendarCache)(nil)

// RedisCalendarCache stores one JSON-encoded calendar map per user and year.
// Every failure degrades to a miss.
type RedisCalendarCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCalendarCache(rdb *redis.Client, ttl time.Duration) *RedisCalendarCache {
	if ttl <= 0 {
		ttl = DefaultCalendarTTL
	}
	return &RedisCalendarCache{rdb: rdb, ttl: ttl}
}

var errStaleCalendar = errors.New("calendar invalidated during rebuild")

func calendarKey(userID string, year int) string {
	return fmt.Sprintf("calendar:%s:%d", userID, year)
}

func generationKey(userID string, year int) string {
	return fmt.Sprintf("calendar:gen:%s:%d", userID, year)
}

func (c *RedisCalendarCache) Get(ctx context.Context, userID string, year int) (map[string]int, bool) {
	key := calendarKey(userID, year)

	val, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("[CACHE] Redis read error for %s: %v", key, err)
		}
		return nil, false
	}

	calendar := map[string]int{}
	if err := json.Unmarshal(val, &calendar); err != nil {
		log.Printf("[CACHE] Corrupted calendar at %s, cleaning up key", key)
		c.rdb.Del(ctx, key)
		return nil, false
	}
	return calendar, true
}

func (c *RedisCalendarCache) Generation(ctx context.Context, userID string, year int) int64 {
	gen, err := c.rdb.Get(ctx, generationKey(userID, year)).Int64()
	switch {
	case err == nil:
		return gen
	case errors.Is(err, redis.Nil):
		return 0
	default:
		log.Printf("[CACHE] Redis generation read error for user %s/%d: %v", userID, year, err)
		return -1
	}
}

// Set writes under WATCH of the generation key, so an Invalidate racing the
// write aborts it.
func (c *RedisCalendarCache) Set(ctx context.Context, userID string, year int, generation int64, calendar map[string]int) {
	if generation < 0 {
		return
	}
	if calendar == nil {
		calendar = map[string]int{}
	}
	data, err := json.Marshal(calendar)
	if err != nil {
		log.Printf("[CACHE] Failed to encode calendar for user %s: %v", userID, err)
		return
	}

	key, genKey := calendarKey(userID, year), generationKey(userID, year)
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleCalendar
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleCalendar), errors.Is(err, redis.TxFailedErr):
		log.Printf("[CACHE] Calendar %s invalidated during rebuild, not storing", key)
	default:
		log.Printf("[CACHE] Redis set error: %v", err)
	}
}

func (c *RedisCalendarCache) Invalidate(ctx context.Context, userID string, year int) {
	key, genKey := calendarKey(userID, year), generationKey(userID, year)
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, c.ttl)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		log.Printf("[CACHE] Failed to invalidate calendar %d for user %s: %v", year, userID, err)
	}
}
