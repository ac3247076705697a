package main

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"taskman-api/api"
	"taskman-api/notify"
	"taskman-api/storage"
)

func main() {
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil && dbg {
		log.SetLevel(log.DebugLevel)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("missing database config")
	}
	db, err := storage.Open(dsn)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	redisConn := os.Getenv("REDIS_CONNECTION_STRING")
	if redisConn == "" {
		log.Fatal("missing redis config")
	}
	rc := redis.NewClient(redisOptions(redisConn))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("missing JWT_SECRET")
	}
	issuer := os.Getenv("TOKEN_ISSUER")
	if issuer == "" {
		issuer = "taskman-api"
	}

	var auth *api.Auth
	if jwksURL := os.Getenv("JWKS_URL"); jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
		if err != nil {
			log.Fatalf("jwks: %v", err)
		}
		auth = api.NewJWKSAuth(jwks, os.Getenv("JWT_AUDIENCE"), os.Getenv("JWT_ISSUER"),
			envDuration("JWKS_KEY_CACHE_TTL", 15*time.Minute))
	} else {
		auth = api.NewLocalAuth([]byte(secret), issuer)
	}

	tokens := api.NewTokenIssuer([]byte(secret), issuer,
		envDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour))

	pager, err := api.NewPaginator(os.Getenv("PAGINATION_STRATEGY"))
	if err != nil {
		log.Fatalf("pagination: %v", err)
	}

	logger := log.New()

	var dispatcher api.Dispatcher
	if smtpAddr := os.Getenv("SMTP_ADDR"); smtpAddr != "" {
		notifier := notify.NewSMTPNotifier(smtpAddr, os.Getenv("SMTP_FROM"), os.Getenv("SMTP_USERNAME"), os.Getenv("SMTP_PASSWORD"))
		dispatcher = notify.NewDispatcher(notifier, logger,
			envInt("NOTIFY_WORKERS", 4),
			envInt("NOTIFY_BUFFER", 256),
			envDuration("NOTIFY_TIMEOUT", 30*time.Second))
	} else {
		logger.Warn("SMTP_ADDR not set; owner notifications disabled")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	e := echo.New()
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	api.Register(e, api.Deps{
		Tasks:      storage.NewStatsCache(storage.NewTaskStore(db), rc, envDuration("STATS_CACHE_TTL", 30*time.Second)),
		SubTasks:   storage.NewSubTaskStore(db),
		Categories: storage.NewCategoryStore(db),
		Users:      storage.NewUserStore(db),
		Auth:       auth,
		Tokens:     tokens,
		Blacklist:  api.NewRedisBlacklist(rc),
		Notify:     dispatcher,
		Pager:      pager,
		Logger:     logger,
		Ping: func(ctx context.Context) error {
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			return rc.Ping(ctx).Err()
		},
	})

	listenAddr := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		listenAddr = ":" + val
	}

	e.Logger.Fatal(e.Start(listenAddr))
}

// redisOptions accepts either a redis URL or the comma separated
// host,password=...,ssl=... form some managed providers hand out.
func redisOptions(conn string) *redis.Options {
	opts, err := redis.ParseURL(conn)
	if err == nil {
		return opts
	}
	parts := strings.Split(conn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Fatalf("invalid %s: %q", name, v)
	}
	return d
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Fatalf("invalid %s: %q", name, v)
	}
	return n
}
