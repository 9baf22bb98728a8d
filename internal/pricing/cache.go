package pricing

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"preventa/internal/domain"
)

// CachedRepository keeps successful price lookups in memory for ttl.
// Misses are never cached so a newly published price is visible at once.
type CachedRepository struct {
	next  Repository
	cache *gocache.Cache
}

// NewCachedRepository returns next unchanged when ttl is not positive.
func NewCachedRepository(next Repository, ttl time.Duration) Repository {
	if ttl <= 0 {
		return next
	}
	return &CachedRepository{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func cacheKey(productID, clientTypeID int64, method domain.PaymentMethod) string {
	return fmt.Sprintf("%d:%d:%s", productID, clientTypeID, method)
}

func (r *CachedRepository) FindActive(ctx context.Context, productID, clientTypeID int64, method domain.PaymentMethod) (*domain.PriceEntry, error) {
	key := cacheKey(productID, clientTypeID, method)
	if v, ok := r.cache.Get(key); ok {
		entry := v.(domain.PriceEntry)
		return &entry, nil
	}

	entry, err := r.next.FindActive(ctx, productID, clientTypeID, method)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(key, *entry)
	return entry, nil
}
