package livecache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"pokerclub-platform/internal/models"
	"pokerclub-platform/internal/redis"
)

// DefaultTTL bounds how stale a cached snapshot can get if an invalidation
// is lost.
const DefaultTTL = 30 * time.Second

const (
	snapshotKeyPrefix = "live:snapshot:"
	timerKeyPrefix    = "live:timer:"
)

// Store is the fast-read mirror of live tournament state. A miss is never an
// error: backend failures degrade to misses and the caller falls back to the
// durable row.
type Store interface {
	GetSnapshot(ctx context.Context, tournamentID string) (*models.LiveStateDTO, bool)
	SetSnapshot(ctx context.Context, dto *models.LiveStateDTO)
	GetTimer(ctx context.Context, tournamentID string) (*models.TimerSnapshot, bool)
	SetTimer(ctx context.Context, tournamentID string, snap *models.TimerSnapshot)
	Delete(ctx context.Context, tournamentID string)
}

// RedisStore keeps snapshots and timers as JSON values under a short TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) GetSnapshot(ctx context.Context, tournamentID string) (*models.LiveStateDTO, bool) {
	var dto models.LiveStateDTO
	if !s.get(ctx, snapshotKeyPrefix+tournamentID, &dto) {
		return nil, false
	}
	return &dto, true
}

func (s *RedisStore) SetSnapshot(ctx context.Context, dto *models.LiveStateDTO) {
	s.set(ctx, snapshotKeyPrefix+dto.TournamentID, dto)
}

func (s *RedisStore) GetTimer(ctx context.Context, tournamentID string) (*models.TimerSnapshot, bool) {
	var snap models.TimerSnapshot
	if !s.get(ctx, timerKeyPrefix+tournamentID, &snap) {
		return nil, false
	}
	return &snap, true
}

// SetTimer is last-write-wins on ObservedAt: an older snapshot never
// replaces a newer one.
func (s *RedisStore) SetTimer(ctx context.Context, tournamentID string, snap *models.TimerSnapshot) {
	key := timerKeyPrefix + tournamentID
	if existing, ok := s.GetTimer(ctx, tournamentID); ok {
		if existing.ObservedAt.After(snap.ObservedAt) {
			return
		}
	}
	s.set(ctx, key, snap)
}

func (s *RedisStore) Delete(ctx context.Context, tournamentID string) {
	if err := s.client.Del(ctx, snapshotKeyPrefix+tournamentID, timerKeyPrefix+tournamentID).Err(); err != nil {
		log.Printf("[CACHE] delete failed for tournament %s: %v", tournamentID, err)
	}
}

func (s *RedisStore) get(ctx context.Context, key string, out interface{}) bool {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[CACHE] read failed for %s: %v", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Printf("[CACHE] corrupt value at %s: %v", key, err)
		return false
	}
	return true
}

func (s *RedisStore) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("[CACHE] marshal failed for %s: %v", key, err)
		return
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		log.Printf("[CACHE] write failed for %s: %v", key, err)
	}
}

// Disabled is the cache used when Redis is unreachable at startup: every
// read misses and every write is dropped, so the service keeps running on
// the durable store alone.
type Disabled struct{}

func (Disabled) GetSnapshot(ctx context.Context, tournamentID string) (*models.LiveStateDTO, bool) {
	return nil, false
}

func (Disabled) SetSnapshot(ctx context.Context, dto *models.LiveStateDTO) {}

func (Disabled) GetTimer(ctx context.Context, tournamentID string) (*models.TimerSnapshot, bool) {
	return nil, false
}

func (Disabled) SetTimer(ctx context.Context, tournamentID string, snap *models.TimerSnapshot) {}

func (Disabled) Delete(ctx context.Context, tournamentID string) {}

var _ Store = (*RedisStore)(nil)
var _ Store = Disabled{}

// SnapshotKey and TimerKey expose the key layout for operational tooling.
func SnapshotKey(tournamentID string) string {
	return fmt.Sprintf("%s%s", snapshotKeyPrefix, tournamentID)
}

func TimerKey(tournamentID string) string {
	return fmt.Sprintf("%s%s", timerKeyPrefix, tournamentID)
}
