package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dbdesigner/internal/models"
)

// ExportCacheRepository keeps rendered SQL exports in Redis. Keys embed the
// project's updated_at, so an edit makes older entries unreachable and they
// expire on their own.
type ExportCacheRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewExportCacheRepository(rdb *redis.Client, ttl time.Duration) *ExportCacheRepository {
	return &ExportCacheRepository{rdb: rdb, ttl: ttl}
}

func ExportCacheKey(projectID uuid.UUID, dialect models.Dialect, updatedAt time.Time) string {
	return fmt.Sprintf("export:%s:%s:%d", projectID, dialect, updatedAt.UnixNano())
}

func (r *ExportCacheRepository) Get(ctx context.Context, key string) (string, bool, error) {
	sql, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sql, true, nil
}

func (r *ExportCacheRepository) Set(ctx context.Context, key, sql string) error {
	return r.rdb.Set(ctx, key, sql, r.ttl).Err()
}
