package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"guest_beer/internal/adapters/filesource"
	server "guest_beer/internal/adapters/http_server"
	"guest_beer/internal/adapters/masterapi"
	"guest_beer/internal/adapters/observability"
	redisad "guest_beer/internal/adapters/redis"
	"guest_beer/internal/app"
	"guest_beer/internal/catalog"
	"guest_beer/internal/domain"
	"guest_beer/internal/ingest"
	"guest_beer/internal/shared"
	mysqlrepo "guest_beer/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		c, err := catalog.Load(cfg.CatalogPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.CatalogPath).Msg("catalog load failed")
		}
		cat = c
	}

	src := openSource(cfg)
	log.Info().Str("source", src.Name()).Msg("menu source ready")

	// domain.Cache stays a nil interface when Redis is not configured
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable; serving without cache")
			_ = rc.Close()
		} else {
			cache = rc
		}
		cancel()
	}

	menus := app.NewMenuService(observability.InstrumentSource(src), app.NewNormalizer(cat), cache, cfg.CacheTTL)

	// http
	srv := server.New(cfg.RemoteTimeout + 5*time.Second)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Menu:        menus,
		DefaultLang: domain.ParseLanguage(cfg.DefaultLang, domain.LangJA),
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}

func openSource(cfg shared.Config) domain.MenuSource {
	switch cfg.MenuSource {
	case masterapi.SourceRemote:
		client, err := masterapi.New(cfg.MasterDataURL, cfg.MasterDataKey, cfg.RemoteRPS, cfg.RemoteTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize master data client")
		}
		return client.Source()
	case app.SourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.Ping(); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		return app.NewRepositorySource(mysqlrepo.New(db))
	case filesource.SourceFile:
		p, err := ingest.ForShape(cfg.MenuDataShape)
		if err != nil {
			log.Fatal().Err(err).Msg("bad MENU_DATA_SHAPE")
		}
		return filesource.New(cfg.MenuDataPath, p)
	default:
		log.Fatal().Str("source", cfg.MenuSource).Msg("unknown MENU_SOURCE")
		return nil
	}
}
