// Package session keeps live games in Redis so a board can be resumed.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = 24 * time.Hour

var (
	ErrNotFound = errors.New("session not found")
	// ErrStale means a record with more moves is already stored.
	ErrStale = errors.New("stale session write")
	// ErrFinished is returned by Resume for a game that already ended; the
	// record is removed.
	ErrFinished = errors.New("session already finished")
)

type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// Open connects to redisURL (redis:// or rediss://) and pings it.
func Open(ctx context.Context, redisURL string, ttl time.Duration) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for session store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStore(rdb, ttl), nil
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Store{rdb: rdb, ttl: ttl}
}

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func sessionKey(id string) string { return "board:session:" + strings.TrimSpace(id) }

const activeIndexKey = "board:index:active"

// Save writes rec under optimistic locking: a concurrent writer holding a
// longer move list wins and Save returns ErrStale.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	if rec == nil || strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("session id required")
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}
	key := sessionKey(rec.ID)
	return s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if rec.CreatedAt.IsZero() {
				rec.CreatedAt = rec.UpdatedAt
			}
		case err != nil:
			return err
		default:
			var cur Record
			if jerr := json.Unmarshal(raw, &cur); jerr != nil {
				return jerr
			}
			if len(cur.MovesUCI) > len(rec.MovesUCI) {
				return ErrStale
			}
			rec.CreatedAt = cur.CreatedAt
		}
		newRaw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, newRaw, s.ttl)
			if rec.Status == StatusActive {
				pipe.ZAdd(ctx, activeIndexKey, redis.Z{Score: float64(rec.UpdatedAt.UnixMilli()), Member: rec.ID})
			} else {
				pipe.ZRem(ctx, activeIndexKey, rec.ID)
			}
			pipe.Expire(ctx, activeIndexKey, s.ttl)
			return nil
		})
		return err
	}, key)
}

func (s *Store) Load(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Latest returns the most recently updated active session.
func (s *Store) Latest(ctx context.Context) (*Record, error) {
	ids, err := s.rdb.ZRevRange(ctx, activeIndexKey, 0, 9).Result()
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		rec, err := s.Load(ctx, id)
		if errors.Is(err, ErrNotFound) {
			// expired behind the index
			_ = s.rdb.ZRem(ctx, activeIndexKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if rec.Status == StatusActive {
			return rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *Store) Delete(ctx context.Context, id string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, sessionKey(id))
	pipe.ZRem(ctx, activeIndexKey, id)
	_, err := pipe.Exec(ctx)
	return err
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
