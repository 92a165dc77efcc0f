package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/constants"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/middleware"
	inOtel "github.com/Alturino/storefront/internal/otel"
	"github.com/Alturino/storefront/internal/repository"
	"github.com/Alturino/storefront/inventory"
	orderController "github.com/Alturino/storefront/order/internal/controller"
	orderRepository "github.com/Alturino/storefront/order/internal/repository"
	orderService "github.com/Alturino/storefront/order/internal/service"
	productCache "github.com/Alturino/storefront/product/internal/cache"
	productController "github.com/Alturino/storefront/product/internal/controller"
	productService "github.com/Alturino/storefront/product/internal/service"
	shopController "github.com/Alturino/storefront/shop/internal/controller"
	shopService "github.com/Alturino/storefront/shop/internal/service"
	userController "github.com/Alturino/storefront/user/internal/controller"
	userService "github.com/Alturino/storefront/user/internal/service"
)

func runApiService(c context.Context) {
	c, span := inOtel.Tracer.Start(c, "runApiService")
	defer span.End()

	cfg := config.Get(c, constants.APP_API_SERVICE)

	logger := log.Get(filepath.Join("/var/log/", constants.APP_API_SERVICE+".log"), cfg.Application).
		With().
		Str(constants.KEY_APP_NAME, constants.APP_API_SERVICE).
		Str(constants.KEY_TAG, "main runApiService").
		Logger()

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing otel sdk").Logger()
	logger.Info().Msg("initializing otel sdk")
	c = logger.WithContext(c)
	shutdownFuncs, err := inOtel.InitOtelSdk(c, constants.APP_API_SERVICE, cfg.Otel)
	if err != nil {
		err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	defer func() {
		logger.Info().Msg("shutting down otel")
		c = logger.WithContext(c)
		err = inOtel.ShutdownOtel(c, shutdownFuncs)
		if err != nil {
			err = fmt.Errorf("failed shutting down otel with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
		logger.Info().Msg("shutdown otel")
	}()
	logger.Info().Msg("initialized otel sdk")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing database").Logger()
	logger.Info().Msg("initializing database")
	db := infra.NewDatabaseClient(c, cfg.Database)
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "closing database").Logger()
		logger.Info().Msg("closing database")
		db.Close()
		logger.Info().Msg("closed database")
	}()
	queries := repository.New(db)
	logger.Info().Msg("initialized database")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing cache").Logger()
	logger.Info().Msg("initializing cache")
	cache := infra.NewCacheClient(c, cfg.Cache)
	defer func() {
		logger = logger.With().Str(constants.KEY_PROCESS, "closing cache").Logger()
		logger.Info().Msg("closing cache")
		err = cache.Close()
		if err != nil {
			err = fmt.Errorf("failed closing cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("closed cache")
	}()
	logger.Info().Msg("initialized cache")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing services").Logger()
	logger.Info().Msg("initializing services")
	var adjusterOpts []inventory.Option
	if cfg.Inventory.EnforceStockFloor {
		logger.Info().Msg("enforcing stock floor on inventory adjustments")
		adjusterOpts = append(adjusterOpts, inventory.WithStockFloor())
	}
	adjuster := inventory.NewAdjuster(db, adjusterOpts...)
	users := userService.NewUserService(queries, cfg.Application.SecretKey)
	shops := shopService.NewShopService(queries)
	products := productService.NewProductService(
		db,
		productCache.NewProductCache(cache, productCache.DefaultTTL),
	)
	orders := orderService.NewOrderService(orderRepository.NewStore(db, queries), adjuster, cache)
	logger.Info().Msg("initialized services")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing router").Logger()
	logger.Info().Msg("initializing router")
	router := mux.NewRouter()
	router.Use(
		otelmux.Middleware(constants.APP_API_SERVICE),
		middleware.Logging,
		middleware.RecoverPanic,
	)
	router.Handle("/metrics", promhttp.Handler())
	userController.AttachUserController(router, users, cfg.Application.SecretKey)
	shopController.AttachShopController(router, shops, cfg.Application.SecretKey)
	productController.AttachProductController(router, products, cfg.Application.SecretKey, shops)
	orderController.AttachOrderController(router, orders, cfg.Application.SecretKey, shops)
	logger.Info().Msg("initialized router")

	logger = logger.With().Str(constants.KEY_PROCESS, "initializing server").Logger()
	logger.Info().Msg("initializing server")
	server := http.Server{
		Addr: fmt.Sprintf("%s:%d", cfg.Application.Host, cfg.Application.Port),
		BaseContext: func(net.Listener) context.Context {
			lg := logger.With().
				Reset().
				Timestamp().
				Caller().
				Stack().
				Str(constants.KEY_APP_NAME, constants.APP_API_SERVICE).
				Logger()
			return lg.WithContext(c)
		},
		Handler:      router,
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
	}
	logger.Info().Msg("initialized server")

	go func() {
		logger := logger.With().Str(constants.KEY_PROCESS, "start server").Logger()
		logger.Info().Msgf("start listening request at %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err = fmt.Errorf("encounter error=%w while running server", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	<-c.Done()
	logger = logger.With().Str(constants.KEY_PROCESS, "shutting down server").Logger()
	logger.Info().Msg("received interuption signal shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), 15*time.Second)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		err = fmt.Errorf("failed shutting down server with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
	}
	logger.Info().Msg("shutdown server")
}
