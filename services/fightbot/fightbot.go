// Copyright (C) 2025 Octagon Ops (dev@octagonops.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package fightbot assembles the question-answering service: upstream
// client, cache tiers, entity resolution, intent classification, and
// the HTTP surface.
package fightbot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/octagonops/fightbot/pkg/logging"
	"github.com/octagonops/fightbot/services/fightbot/cache"
	"github.com/octagonops/fightbot/services/fightbot/divisions"
	"github.com/octagonops/fightbot/services/fightbot/handlers"
	"github.com/octagonops/fightbot/services/fightbot/intent"
	"github.com/octagonops/fightbot/services/fightbot/refresh"
	"github.com/octagonops/fightbot/services/fightbot/resolve"
	"github.com/octagonops/fightbot/services/fightbot/routes"
	"github.com/octagonops/fightbot/services/fightbot/store"
	"github.com/octagonops/fightbot/services/fightbot/upstream"
)

// Config carries the environment-derived service configuration.
type Config struct {
	Port            int
	UpstreamBaseURL string
	CallsPerSecond  float64

	// RedisAddr enables the distributed cache tier when non-empty.
	RedisAddr string

	// OTelEndpoint enables tracing export when non-empty.
	OTelEndpoint string

	LogDir string

	RefreshInterval      time.Duration
	RefreshRetryInterval time.Duration
}

// Service is the assembled fightbot server.
type Service struct {
	config Config
	logger *logging.Logger
	router *gin.Engine

	store     *store.Store
	refresher *refresh.Refresher
	redis     *redis.Client

	tracerCleanup func(context.Context)
}

// New wires the full service from config. Redis and tracing are
// optional; everything else is required.
func New(cfg Config) (*Service, error) {
	if cfg.UpstreamBaseURL == "" {
		return nil, fmt.Errorf("upstream base URL is required")
	}
	if cfg.CallsPerSecond <= 0 {
		cfg.CallsPerSecond = upstream.DefaultCallsPerSecond
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = refresh.DefaultInterval
	}
	if cfg.RefreshRetryInterval <= 0 {
		cfg.RefreshRetryInterval = refresh.DefaultRetryInterval
	}

	logger := logging.New(logging.Config{
		Service: "fightbot",
		LogDir:  cfg.LogDir,
		JSON:    true,
	})
	log := logger.Slog()

	s := &Service{config: cfg, logger: logger}

	if cfg.OTelEndpoint != "" {
		cleanup, err := s.initTracer()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize tracer: %w", err)
		}
		s.tracerCleanup = cleanup
	}

	var dist cache.Distributed
	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rc := cache.NewRedisCache(s.redis, log)
		if !rc.Ping(context.Background()) {
			log.Warn("redis unreachable at startup, tier will fail open",
				"addr", cfg.RedisAddr)
		}
		dist = rc
	}

	retired, err := store.LoadRetiredRegistry()
	if err != nil {
		return nil, fmt.Errorf("failed to load retired registry: %w", err)
	}

	client := upstream.NewClient(cfg.UpstreamBaseURL, log,
		upstream.WithCallsPerSecond(cfg.CallsPerSecond))
	s.store = store.New(store.NewOriginClient(client), dist, retired, log)

	normalizer, err := divisions.New(log)
	if err != nil {
		return nil, fmt.Errorf("failed to build division normalizer: %w", err)
	}
	resolver, err := resolve.New(s.store, retired, log)
	if err != nil {
		return nil, fmt.Errorf("failed to build entity resolver: %w", err)
	}
	classifier := intent.New(resolver, normalizer, s.store, log)

	// An admin cache flush must also drop the derived lookup state.
	s.store.OnInvalidate(resolver.Reset)
	s.store.OnInvalidate(normalizer.Reset)
	s.store.OnInvalidate(classifier.Reset)

	s.refresher = refresh.New(s.warm, log,
		refresh.WithInterval(cfg.RefreshInterval),
		refresh.WithRetryInterval(cfg.RefreshRetryInterval))

	s.initRouter(handlers.New(s.store, classifier, dist, log))
	return s, nil
}

func (s *Service) initRouter(h *handlers.Handler) {
	s.router = gin.Default()
	s.router.Use(otelgin.Middleware("fightbot-service"))
	routes.SetupRoutes(s.router, h)
}

// warm re-fetches the roster and rankings so their caches stay
// populated between requests.
func (s *Service) warm(ctx context.Context) error {
	if _, err := s.store.Roster(ctx); err != nil {
		return fmt.Errorf("roster refresh: %w", err)
	}
	if _, err := s.store.Rankings(ctx); err != nil {
		return fmt.Errorf("rankings refresh: %w", err)
	}
	return nil
}

// Run starts the background refresher and the HTTP server, blocking
// until the server stops.
func (s *Service) Run() error {
	defer s.cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.refresher.Run(ctx)

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.logger.Info("starting fightbot server", "port", s.config.Port)
	return s.router.Run(addr)
}

// Router returns the underlying Gin engine for testing.
func (s *Service) Router() *gin.Engine {
	return s.router
}

func (s *Service) cleanup() {
	if s.tracerCleanup != nil {
		s.tracerCleanup(context.Background())
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Warn("redis close error", "error", err)
		}
	}
	if err := s.logger.Close(); err != nil {
		slog.Warn("logger close error", "error", err)
	}
}

// initTracer sets up the OTLP trace exporter toward the configured
// collector over an insecure gRPC connection.
func (s *Service) initTracer() (func(context.Context), error) {
	ctx := context.Background()

	conn, err := grpc.NewClient(s.config.OTelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("fightbot-service")))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))

	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	cleanup := func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}
	return cleanup, nil
}
