package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"guest_beer/internal/adapters/masterapi"
	"guest_beer/internal/adapters/observability"
	redisad "guest_beer/internal/adapters/redis"
	"guest_beer/internal/app"
	"guest_beer/internal/catalog"
	"guest_beer/internal/domain"
	"guest_beer/internal/shared"
	mysqlrepo "guest_beer/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	log.Info().
		Str("url", cfg.MasterDataURL).
		Int("workers", cfg.WarmWorkers).
		Msg("sync starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := masterapi.New(cfg.MasterDataURL, cfg.MasterDataKey, cfg.RemoteRPS, cfg.RemoteTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize master data client")
	}

	var cache domain.Cache
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	res, err := app.NewSyncService(client, repo, cache).Sync(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("sync failed")
	}
	log.Info().Int("beers", res.Beers).Int("stores", res.Stores).Msg("master data stored")

	if cache == nil {
		log.Info().Msg("no cache configured; skipping warm-up")
		return
	}

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		if cat, err = catalog.Load(cfg.CatalogPath); err != nil {
			log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("catalog load failed")
		}
	}
	menus := app.NewMenuService(app.NewRepositorySource(repo), app.NewNormalizer(cat), cache, cfg.CacheTTL)

	sem := semaphore.NewWeighted(int64(max(cfg.WarmWorkers, 1)))
	var wg sync.WaitGroup

	for _, lang := range domain.Languages {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(lang domain.Language) {
			defer wg.Done()
			defer sem.Release(1)

			m, err := menus.Menu(ctx, lang)
			if err != nil {
				log.Warn().Str("lang", string(lang)).Err(err).Msg("warm failed")
				return
			}
			log.Info().Str("lang", string(lang)).Int("beers", len(m.Beers)).Msg("warm ok")
		}(lang)
	}

	wg.Wait()
	log.Info().Msg("sync completed")
}
