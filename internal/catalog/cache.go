package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Store is the catalog persistence used by the HTTP handler and the planner.
type Store interface {
	List(ctx context.Context) ([]Exercise, error)
	Search(ctx context.Context, params SearchParams) ([]Exercise, error)
	GetByName(ctx context.Context, name string) (*Exercise, error)
	Create(ctx context.Context, exercise Exercise) (*Exercise, error)
}

// CachedStore keeps short-lived copies of search results in front of a Store.
// Any successful Create drops all cached entries.
type CachedStore struct {
	store Store
	cache *freecache.Cache
	ttl   time.Duration
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(store Store, cacheSizeMB int, ttl time.Duration) *CachedStore {
	megabyte := 1024 * 1024
	cacheSize := cacheSizeMB * megabyte
	return &CachedStore{
		store: store,
		cache: freecache.NewCache(cacheSize),
		ttl:   ttl,
	}
}

// List always reads the store; plan generation re-fetches must see other writers.
func (c *CachedStore) List(ctx context.Context) ([]Exercise, error) {
	return c.store.List(ctx)
}

func (c *CachedStore) Search(ctx context.Context, params SearchParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cache.catalog.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := []byte(searchCacheKey(params))
	if cached, err := c.cache.Get(cacheKey); err == nil {
		var exercises []Exercise
		if err := json.Unmarshal(cached, &exercises); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return exercises, nil
		} else {
			log.Errorf("unmarshal cached exercises [%s]: %s", cacheKey, err)
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	var exercises []Exercise
	if params == (SearchParams{}) {
		exercises, err = c.store.List(ctx)
	} else {
		exercises, err = c.store.Search(ctx, params)
	}
	if err != nil {
		return nil, err
	}

	exercisesJson, err := json.Marshal(exercises)
	if err != nil {
		log.Errorf("marshal exercises for cache: %s", err)
		return exercises, nil
	}
	if err := c.cache.Set(cacheKey, exercisesJson, int(c.ttl.Seconds())); err != nil {
		log.Errorf("set exercises cache [%s]: %s", cacheKey, err)
	}

	return exercises, nil
}

func (c *CachedStore) GetByName(ctx context.Context, name string) (*Exercise, error) {
	return c.store.GetByName(ctx, name)
}

func (c *CachedStore) Create(ctx context.Context, exercise Exercise) (*Exercise, error) {
	created, err := c.store.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	c.cache.Clear()
	return created, nil
}

func searchCacheKey(params SearchParams) string {
	return fmt.Sprintf("search::%s::%s", NameKey(params.Query), params.MuscleGroup)
}
