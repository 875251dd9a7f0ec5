package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"guest_beer/internal/domain"
)

// MenuCacheKey is the cache key of the normalized menu of one source and
// language.
func MenuCacheKey(source string, lang domain.Language) string {
	return fmt.Sprintf("menu:%s:%s", source, lang)
}

type MenuService struct {
	src      domain.MenuSource
	norm     *Normalizer
	cache    domain.Cache
	cacheTTL time.Duration
	loads    singleflight.Group
}

func NewMenuService(src domain.MenuSource, n *Normalizer, c domain.Cache, ttl time.Duration) *MenuService {
	return &MenuService{src: src, norm: n, cache: c, cacheTTL: ttl}
}

func (s *MenuService) SourceName() string { return s.src.Name() }

// Menu returns the menu in lang. Concurrent misses share one source load;
// a cancelled ctx abandons the wait without failing the other callers.
func (s *MenuService) Menu(ctx context.Context, lang domain.Language) (domain.Menu, error) {
	key := MenuCacheKey(s.src.Name(), lang)
	var m domain.Menu
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &m); ok {
			return m, nil
		}
	}

	// The shared load outlives any single caller: a caller that goes away
	// stops waiting, the others still get the result.
	ch := s.loads.DoChan(s.src.Name(), func() (any, error) {
		return s.src.Load(context.WithoutCancel(ctx))
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return domain.Menu{}, ctx.Err()
	}
	if res.Err != nil {
		return domain.Menu{}, res.Err
	}
	m = s.norm.Menu(res.Val.(domain.Batch), lang)

	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, key, m, int(s.cacheTTL.Seconds()))
	}
	return m, nil
}

// Invalidate drops the cached menus of every language.
func (s *MenuService) Invalidate(ctx context.Context) {
	invalidateMenus(ctx, s.cache, s.src.Name())
}

func invalidateMenus(ctx context.Context, c domain.Cache, source string) {
	if c == nil {
		return
	}
	for _, l := range domain.Languages {
		_ = c.Del(ctx, MenuCacheKey(source, l))
	}
}
