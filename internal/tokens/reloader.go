package tokens

import (
	"context"
	"time"
)

// Reloader keeps a Cache in sync with a Repository.
type Reloader struct {
	repo     Repository
	cache    *Cache
	interval time.Duration
}

func NewReloader(repo Repository, cache *Cache, interval time.Duration) *Reloader {
	return &Reloader{repo: repo, cache: cache, interval: interval}
}

// LoadOnce fetches the token set and replaces the cache. On error the cache
// keeps its previous contents.
func (r *Reloader) LoadOnce(ctx context.Context) error {
	m, err := r.repo.LoadTokens(ctx)
	if err != nil {
		return err
	}
	r.cache.Replace(m)
	return nil
}

// Run reloads at the configured interval until stop is closed. Load errors
// are reported through onError (which may be nil) and do not stop the loop.
func (r *Reloader) Run(stop <-chan struct{}, onError func(error)) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.LoadOnce(context.Background()); err != nil && onError != nil {
				onError(err)
			}
		case <-stop:
			return
		}
	}
}
