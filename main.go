package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/tripjeju/courseapi/cache"
	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/config"
	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/db"
	"github.com/tripjeju/courseapi/db/memory"
	"github.com/tripjeju/courseapi/handlers"
	applog "github.com/tripjeju/courseapi/logger"
	mw "github.com/tripjeju/courseapi/middleware"
)

func main() {
	cfg := config.Load()
	logger, err := applog.New(cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	var (
		store course.Store
		users handlers.Users
	)
	if cfg.InMemory() {
		logger.Warn("using in-memory store, data is lost on exit")
		mem := memory.New()
		store, users = mem, mem
	} else {
		bdb := db.Setup(cfg)
		defer bdb.Close()

		if err := db.CreateTables(ctx, bdb); err != nil {
			logger.Fatal("create tables failed", zap.Error(err))
		}
		pg := db.NewStore(bdb)
		store, users = pg, pg
	}

	var contentCache catalog.Cache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedis(ctx, cache.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.ContentTTL,
		}, logger)
		if err != nil {
			logger.Fatal("redis setup failed", zap.Error(err))
		}
		defer rc.Close()
		contentCache = rc
	}

	courses := course.NewService(store,
		course.WithLogger(logger),
		course.WithResolver(catalog.NewResolver(contentCache, logger)),
		course.WithNamePrefix(cfg.CourseNamePrefix),
		course.WithMaxSlotsPerDay(cfg.MaxSlotsPerDay),
	)
	h := handlers.New(courses, users, cfg.JWTKey(), logger, handlers.WithAdmins(cfg.AdminUsers...))

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogError:     true,
		LogRequestID: true,
		LogLatency:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.Int("status", v.Status),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.String("request_id", v.RequestID),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			switch {
			case v.Status >= 500:
				logger.Error("http request", fields...)
			case v.Status >= 400:
				logger.Warn("http request", fields...)
			default:
				logger.Info("http request", fields...)
			}
			return nil
		},
	}))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"*", "Authorization"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
		AllowCredentials: true,
	}))

	h.Register(e, mw.JWT(cfg.JWTKey()))

	if cfg.Debug {
		logger.Info("starting server", zap.String("mode", "debug"), zap.String("addr", cfg.Port))
		if err := e.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server exited", zap.Error(err))
		}
		return
	}

	autoTLS := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Cache:      autocert.DirCache(".cache"),
		HostPolicy: autocert.HostWhitelist(cfg.TLSDomains...),
	}

	s := &http.Server{
		Addr:         ":443",
		Handler:      e,
		TLSConfig:    autoTLS.TLSConfig(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	if err := s.ListenAndServeTLS("", ""); err != http.ErrServerClosed {
		logger.Error("tls server exited", zap.Error(err))
		os.Exit(1)
	}
}
