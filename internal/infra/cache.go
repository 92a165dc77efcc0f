package infra

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
)

func NewCacheClient(c context.Context, cfg config.Cache) *redis.Client {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "infra NewCacheClient").
		Str(constants.KEY_PROCESS, "initializing redis client").
		Logger()

	logger.Info().Msg("initializing redis client")
	cache := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Database,
	})
	logger.Info().Msg("initialized redis client")

	logger = logger.With().Str(constants.KEY_PROCESS, "instrumenting redis client").Logger()
	logger.Info().Msg("instrumenting redis client")
	err := redisotel.InstrumentTracing(cache, redisotel.WithAttributes(semconv.DBSystemRedis))
	if err != nil {
		err = fmt.Errorf("failed instrumenting redis tracing with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	err = redisotel.InstrumentMetrics(cache, redisotel.WithAttributes(semconv.DBSystemRedis))
	if err != nil {
		err = fmt.Errorf("failed instrumenting redis metrics with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("instrumented redis client")

	logger = logger.With().Str(constants.KEY_PROCESS, "pinging redis").Logger()
	logger.Info().Msg("pinging redis")
	if err = cache.Ping(c).Err(); err != nil {
		err = fmt.Errorf("failed pinging redis with error=%w", err)
		logger.Fatal().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("pinged redis")

	return cache
}
