package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/JonMunkholm/reportkit/internal/core"
)

// RedisStore keeps each scheduled report as a JSON value and indexes ids in
// a sorted set scored by creation time in milliseconds.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to the server at url and verifies connectivity.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisStore wraps client. Every key starts with prefix.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) reportKey(id string) string {
	return s.prefix + "report:" + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "reports"
}

// createScript stores the report and indexes it only when the id is new.
var createScript = redis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("ZADD", KEYS[2], ARGV[2], ARGV[3])
return 1
`)

// Create implements core.ReportStore.
func (s *RedisStore) Create(ctx context.Context, report core.ScheduledReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode scheduled report: %w", err)
	}

	created, err := createScript.Run(ctx, s.client,
		[]string{s.reportKey(report.ID), s.indexKey()},
		data, report.CreatedAt.UnixMilli(), report.ID,
	).Int()
	if err != nil {
		return fmt.Errorf("store scheduled report: %w", err)
	}
	if created == 0 {
		return fmt.Errorf("duplicate key: scheduled report %s", report.ID)
	}
	return nil
}

// Get implements core.ReportStore.
func (s *RedisStore) Get(ctx context.Context, id string) (core.ScheduledReport, error) {
	data, err := s.client.Get(ctx, s.reportKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return core.ScheduledReport{}, core.ErrReportNotFound
	}
	if err != nil {
		return core.ScheduledReport{}, fmt.Errorf("get scheduled report: %w", err)
	}

	var report core.ScheduledReport
	if err := json.Unmarshal(data, &report); err != nil {
		return core.ScheduledReport{}, fmt.Errorf("decode scheduled report %s: %w", id, err)
	}
	return report, nil
}

// List implements core.ReportStore. Index entries whose value has gone are
// skipped.
func (s *RedisStore) List(ctx context.Context) ([]core.ScheduledReport, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list scheduled report ids: %w", err)
	}

	reports := make([]core.ScheduledReport, 0, len(ids))
	if len(ids) == 0 {
		return reports, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.reportKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get scheduled reports: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var report core.ScheduledReport
		if err := json.Unmarshal([]byte(raw), &report); err != nil {
			return nil, fmt.Errorf("decode scheduled report %s: %w", ids[i], err)
		}
		reports = append(reports, report)
	}

	sortReports(reports)
	return reports, nil
}

// Delete implements core.ReportStore.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, s.reportKey(id))
		pipe.ZRem(ctx, s.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete scheduled report: %w", err)
	}
	if deleted.Val() == 0 {
		return core.ErrReportNotFound
	}
	return nil
}

// Ping implements core.ReportStore.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
