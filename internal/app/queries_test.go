package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"guest_beer/internal/app"
	"guest_beer/internal/domain"
)

// ---- fakes ----

type fakeSource struct {
	batch domain.Batch
	err   error
	loads int32
	delay time.Duration
}

func (f *fakeSource) Name() string { return "fake" }
func (f *fakeSource) Load(ctx context.Context) (domain.Batch, error) {
	atomic.AddInt32(&f.loads, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.batch, f.err
}

// gatedSource blocks every load until release is closed or the load's
// own context ends.
type gatedSource struct {
	batch   domain.Batch
	started chan struct{}
	release chan struct{}
	once    sync.Once
	loads   int32
}

func (g *gatedSource) Name() string { return "gated" }
func (g *gatedSource) Load(ctx context.Context) (domain.Batch, error) {
	atomic.AddInt32(&g.loads, 1)
	g.once.Do(func() { close(g.started) })
	select {
	case <-ctx.Done():
		return domain.Batch{}, ctx.Err()
	case <-g.release:
		return g.batch, nil
	}
}

// fakeCache stores JSON like the redis adapter does, so cached values are
// copies.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.dels = append(c.dels, key)
	return nil
}

// ---- tests ----

func TestMenu_CacheMissThenHit(t *testing.T) {
	src := &fakeSource{batch: domain.Batch{Source: "fake", Records: []domain.Record{guinness()}}}
	cache := &fakeCache{}
	q := app.NewMenuService(src, app.NewNormalizer(nil), cache, 10*time.Minute)

	m, err := q.Menu(context.Background(), domain.LangEN)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(m.Beers) != 1 || m.Beers[0].Detail.NameEN != "Guinness" {
		t.Fatalf("unexpected menu: %+v", m)
	}

	// Change the source; the second read must come from cache.
	src.batch.Records = nil
	m2, err := q.Menu(context.Background(), domain.LangEN)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(m2.Beers) != 1 {
		t.Fatalf("expected cached menu, got %+v", m2)
	}
	if n := atomic.LoadInt32(&src.loads); n != 1 {
		t.Fatalf("expected one load, got %d", n)
	}

	// Another language is cached separately.
	if _, err := q.Menu(context.Background(), domain.LangJA); err != nil {
		t.Fatalf("err: %v", err)
	}
	if n := atomic.LoadInt32(&src.loads); n != 2 {
		t.Fatalf("expected second load for ja, got %d", n)
	}
}

func TestMenu_NoCache(t *testing.T) {
	src := &fakeSource{batch: domain.Batch{Records: []domain.Record{guinness()}}}
	q := app.NewMenuService(src, app.NewNormalizer(nil), nil, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := q.Menu(context.Background(), domain.LangJA); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	if n := atomic.LoadInt32(&src.loads); n != 2 {
		t.Fatalf("expected a load per call without cache, got %d", n)
	}
}

func TestMenu_SourceErrorNotCached(t *testing.T) {
	src := &fakeSource{err: domain.ErrSourceUnavailable}
	cache := &fakeCache{}
	q := app.NewMenuService(src, app.NewNormalizer(nil), cache, time.Minute)

	if _, err := q.Menu(context.Background(), domain.LangJA); !errors.Is(err, domain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("error state must not be cached")
	}

	src.err = nil
	src.batch = domain.Batch{Records: []domain.Record{guinness()}}
	m, err := q.Menu(context.Background(), domain.LangJA)
	if err != nil || len(m.Beers) != 1 {
		t.Fatalf("recovery: %v %+v", err, m)
	}
}

func TestMenu_ConcurrentMissesShareLoad(t *testing.T) {
	src := &fakeSource{batch: domain.Batch{Records: []domain.Record{guinness()}}, delay: 50 * time.Millisecond}
	q := app.NewMenuService(src, app.NewNormalizer(nil), nil, 0)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Menu(context.Background(), domain.LangJA); err != nil {
				t.Errorf("err: %v", err)
			}
		}()
	}
	wg.Wait()
	if n := atomic.LoadInt32(&src.loads); n >= 8 {
		t.Fatalf("expected shared loads, got %d", n)
	}
}

func TestMenu_Invalidate(t *testing.T) {
	src := &fakeSource{batch: domain.Batch{Records: []domain.Record{guinness()}}}
	cache := &fakeCache{}
	q := app.NewMenuService(src, app.NewNormalizer(nil), cache, time.Minute)
	_, _ = q.Menu(context.Background(), domain.LangJA)

	q.Invalidate(context.Background())
	if len(cache.store) != 0 {
		t.Fatalf("cache not cleared: %v", cache.store)
	}
	want := map[string]bool{app.MenuCacheKey("fake", domain.LangJA): true, app.MenuCacheKey("fake", domain.LangEN): true}
	for _, k := range cache.dels {
		delete(want, k)
	}
	if len(want) != 0 {
		t.Fatalf("keys not deleted: %v", want)
	}
}

func TestMenu_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	src := &gatedSource{
		batch:   domain.Batch{Records: []domain.Record{guinness()}},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	q := app.NewMenuService(src, app.NewNormalizer(nil), nil, 0)

	firstCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := q.Menu(firstCtx, domain.LangJA)
		firstErr <- err
	}()
	<-src.started

	type result struct {
		m   domain.Menu
		err error
	}
	second := make(chan result, 1)
	go func() {
		m, err := q.Menu(context.Background(), domain.LangJA)
		second <- result{m, err}
	}()
	time.Sleep(10 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("cancelled caller: expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller still waiting")
	}

	close(src.release)
	select {
	case r := <-second:
		if r.err != nil {
			t.Fatalf("other caller failed: %v", r.err)
		}
		if len(r.m.Beers) != 1 {
			t.Fatalf("unexpected menu: %+v", r.m)
		}
	case <-time.After(time.Second):
		t.Fatal("other caller never got the shared load")
	}
	if n := atomic.LoadInt32(&src.loads); n != 1 {
		t.Fatalf("expected one shared load, got %d", n)
	}
}
