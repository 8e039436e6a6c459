package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"go.uber.org/zap"

	"manomitra/internal/domain"
	"manomitra/internal/infra/memory"
)

// CatalogRepository caches age groups in Redis as JSON and falls back to a loader on miss.
// Age groups are stored as: SET questionnaire:{title} {json} EX ttl
type CatalogRepository struct {
	client *redis.Client
	loader memory.CatalogLoader
	ttl    time.Duration
	logger *zap.Logger
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand
}

func NewCatalogRepository(client *redis.Client, loader memory.CatalogLoader, ttl time.Duration, logger *zap.Logger) *CatalogRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *CatalogRepository) GetAgeGroup(ctx context.Context, title string) (domain.AgeGroup, error) {
	if group, ok := r.cached(ctx, title); ok {
		return group, nil
	}

	result, err, _ := r.sf.Do(title, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if group, ok := r.cached(ctx, title); ok {
			return group, nil
		}

		group, err := r.loader.LoadAgeGroup(ctx, title)
		if err != nil {
			return domain.AgeGroup{}, err
		}

		data, err := json.Marshal(group)
		if err == nil {
			err = r.client.Set(ctx, r.key(title), data, r.ttlWithJitter()).Err()
		}
		if err != nil {
			r.logger.Warn("cache age group", zap.String("title", title), zap.Error(err))
		}
		return group, nil
	})
	if err != nil {
		return domain.AgeGroup{}, err
	}
	return result.(domain.AgeGroup), nil
}

func (r *CatalogRepository) ListAgeGroups(ctx context.Context) ([]string, error) {
	return r.loader.ListAgeGroups(ctx)
}

func (r *CatalogRepository) cached(ctx context.Context, title string) (domain.AgeGroup, bool) {
	data, err := r.client.Get(ctx, r.key(title)).Bytes()
	if err != nil {
		return domain.AgeGroup{}, false
	}
	var group domain.AgeGroup
	if err := json.Unmarshal(data, &group); err != nil {
		r.logger.Warn("decode cached age group", zap.String("title", title), zap.Error(err))
		return domain.AgeGroup{}, false
	}
	return group, true
}

func (r *CatalogRepository) key(title string) string {
	return "questionnaire:" + title
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
