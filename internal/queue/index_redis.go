package queue

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/geekskaran/cattel/internal/platform/redis"
	id "github.com/geekskaran/cattel/pkg/domain"
	"github.com/geekskaran/cattel/pkg/platform/sentinel"
)

// RedisIndex stores each region's queue as a sorted set scored by
// submission time, so FIFO reads and overdue scans are range queries.
// Redis serializes commands, which gives the per-region mutation
// ordering the queue contract requires.
type RedisIndex struct {
	client *redis.Client
}

// NewRedisIndex builds a Redis-backed queue index.
func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func queueKey(region id.Region) string {
	return "queue:pending:" + region.String()
}

func (x *RedisIndex) Enqueue(ctx context.Context, region id.Region, recordID id.RecordID, submittedAt time.Time) error {
	err := x.client.ZAdd(ctx, queueKey(region), goredis.Z{
		Score:  float64(submittedAt.UnixNano()),
		Member: recordID.String(),
	}).Err()
	if err != nil {
		return fmt.Errorf("enqueue record: %w", err)
	}
	return nil
}

func (x *RedisIndex) Remove(ctx context.Context, region id.Region, recordID id.RecordID) error {
	if err := x.client.ZRem(ctx, queueKey(region), recordID.String()).Err(); err != nil {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}

func (x *RedisIndex) Oldest(ctx context.Context, region id.Region) (id.RecordID, error) {
	members, err := x.client.ZRange(ctx, queueKey(region), 0, 0).Result()
	if err != nil {
		return id.RecordID{}, fmt.Errorf("oldest record: %w", err)
	}
	if len(members) == 0 {
		return id.RecordID{}, sentinel.ErrNotFound
	}
	return id.ParseRecordID(members[0])
}

func (x *RedisIndex) Pending(ctx context.Context, region id.Region) ([]id.RecordID, error) {
	members, err := x.client.ZRange(ctx, queueKey(region), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("pending records: %w", err)
	}
	return parseMembers(members)
}

func (x *RedisIndex) PendingOlderThan(ctx context.Context, region id.Region, cutoff time.Time) ([]id.RecordID, error) {
	members, err := x.client.ZRangeByScore(ctx, queueKey(region), &goredis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("(%d", cutoff.UnixNano()),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("overdue records: %w", err)
	}
	return parseMembers(members)
}

func parseMembers(members []string) ([]id.RecordID, error) {
	ids := make([]id.RecordID, 0, len(members))
	for _, m := range members {
		recordID, err := id.ParseRecordID(m)
		if err != nil {
			return nil, fmt.Errorf("corrupt queue member %q: %w", m, err)
		}
		ids = append(ids, recordID)
	}
	return ids, nil
}
