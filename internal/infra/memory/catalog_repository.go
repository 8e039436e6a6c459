package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"manomitra/internal/domain"
)

// CatalogLoader fetches questionnaire content from a backing store (embedded YAML, Postgres).
type CatalogLoader interface {
	LoadAgeGroup(ctx context.Context, title string) (domain.AgeGroup, error)
	ListAgeGroups(ctx context.Context) ([]string, error)
}

// CatalogRepository caches age groups with TTL to avoid repeated loader hits.
type CatalogRepository struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedAgeGroup
}

type cachedAgeGroup struct {
	group     domain.AgeGroup
	expiresAt time.Time
}

func NewCatalogRepository(loader CatalogLoader, ttl time.Duration) *CatalogRepository {
	return &CatalogRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedAgeGroup),
	}
}

func (r *CatalogRepository) GetAgeGroup(ctx context.Context, title string) (domain.AgeGroup, error) {
	if group, ok := r.cached(title); ok {
		return group, nil
	}

	result, err, _ := r.sf.Do(title, func() (interface{}, error) {
		if group, ok := r.cached(title); ok {
			return group, nil
		}

		group, err := r.loader.LoadAgeGroup(ctx, title)
		if err != nil {
			return domain.AgeGroup{}, err
		}

		r.mu.Lock()
		r.cache[title] = cachedAgeGroup{
			group:     group,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return group, nil
	})
	if err != nil {
		return domain.AgeGroup{}, err
	}
	return result.(domain.AgeGroup), nil
}

// ListAgeGroups is not cached; titles come straight from the loader.
func (r *CatalogRepository) ListAgeGroups(ctx context.Context) ([]string, error) {
	return r.loader.ListAgeGroups(ctx)
}

func (r *CatalogRepository) cached(title string) (domain.AgeGroup, bool) {
	now := r.clock()
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.cache[title]; ok && entry.expiresAt.After(now) {
		return entry.group, true
	}
	return domain.AgeGroup{}, false
}

func (r *CatalogRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticCatalogLoader serves an ordered, in-memory questionnaire (embedded catalog, tests).
type StaticCatalogLoader struct {
	titles []string
	groups map[string]domain.AgeGroup
}

func NewStaticCatalogLoader(groups []domain.AgeGroup) *StaticCatalogLoader {
	l := &StaticCatalogLoader{groups: make(map[string]domain.AgeGroup, len(groups))}
	for _, g := range groups {
		l.titles = append(l.titles, g.Title)
		l.groups[g.Title] = g
	}
	return l
}

func (l *StaticCatalogLoader) LoadAgeGroup(_ context.Context, title string) (domain.AgeGroup, error) {
	if group, ok := l.groups[title]; ok {
		return group, nil
	}
	return domain.AgeGroup{}, domain.ErrAgeGroupNotFound
}

func (l *StaticCatalogLoader) ListAgeGroups(_ context.Context) ([]string, error) {
	return append([]string(nil), l.titles...), nil
}
