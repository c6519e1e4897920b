package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/revise/internal/mastery"
)

// DefaultRedisKeyPrefix namespaces mastery hashes.
const DefaultRedisKeyPrefix = "revise"

// RedisRepository keeps one hash per student and course. Each hash field is an
// outcome ID and each value a JSON-encoded mastery.OutcomeRecord.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisRepository{client: client, prefix: prefix}
}

// OpenRedis parses a redis:// URL and verifies connectivity.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// masteryKey creates the hash key: {prefix}:student:{student_id}:course:{course_id}:mastery
func (r *RedisRepository) masteryKey(studentID, courseID string) string {
	return fmt.Sprintf("%s:student:%s:course:%s:mastery", r.prefix, studentID, courseID)
}

// Records implements mastery.Repository. A missing hash yields no records.
func (r *RedisRepository) Records(ctx context.Context, studentID, courseID string) ([]mastery.OutcomeRecord, error) {
	fields, err := r.client.HGetAll(ctx, r.masteryKey(studentID, courseID)).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall: %w", err)
	}
	return decodeHash(fields)
}

// Upsert implements mastery.Writer.
func (r *RedisRepository) Upsert(ctx context.Context, studentID, courseID string, records []mastery.OutcomeRecord) error {
	if studentID == "" || courseID == "" {
		return fmt.Errorf("upsert: student and course ids are required")
	}
	if len(records) == 0 {
		return nil
	}
	values, err := encodeHash(records)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	if err := r.client.HSet(ctx, r.masteryKey(studentID, courseID), values).Err(); err != nil {
		return fmt.Errorf("hset: %w", err)
	}
	return nil
}

// DeleteCourse removes every record of a student in a course.
func (r *RedisRepository) DeleteCourse(ctx context.Context, studentID, courseID string) error {
	if err := r.client.Del(ctx, r.masteryKey(studentID, courseID)).Err(); err != nil {
		return fmt.Errorf("del: %w", err)
	}
	return nil
}

func encodeHash(records []mastery.OutcomeRecord) (map[string]any, error) {
	values := make(map[string]any, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshal %q: %w", rec.OutcomeID, err)
		}
		values[rec.OutcomeID] = string(b)
	}
	return values, nil
}

// decodeHash converts HGETALL output into records ordered by outcome ID. The
// hash field is authoritative for the outcome ID.
func decodeHash(fields map[string]string) ([]mastery.OutcomeRecord, error) {
	records := make([]mastery.OutcomeRecord, 0, len(fields))
	for outcomeID, raw := range fields {
		var rec mastery.OutcomeRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("decode outcome %q: %w", outcomeID, err)
		}
		rec.OutcomeID = outcomeID
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].OutcomeID < records[j].OutcomeID
	})
	return records, nil
}
