package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"airline_ops/internal/cache"
	"airline_ops/internal/config"
	"airline_ops/internal/handlers"
	"airline_ops/internal/inventory"
	"airline_ops/internal/kafka"
	"airline_ops/internal/metrics"
	"airline_ops/internal/repository"
	"airline_ops/internal/schedule"
	"airline_ops/internal/search"
	"airline_ops/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	ctx := context.Background()
	logger := log.Default()

	// ---------- config ----------
	cfg := config.Load()
	cacheTTL := time.Duration(cfg.CacheTTLSec) * time.Second

	// ---------- metrics ----------
	metrics.Register()

	// ---------- db ----------
	pool, err := repository.NewPool(cfg.DBDSN)
	if err != nil {
		log.Fatal("db:", err)
	}

	// ---------- repositories ----------
	airportRepo := repository.NewAirportRepository(pool)
	aircraftRepo := repository.NewAircraftRepository(pool)
	flightRepo := repository.NewFlightRepository(pool)
	seatRepo := repository.NewSeatRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	outboxRepo := repository.NewOutboxRepository(pool, cfg.OutboxMaxRetries)

	// ---------- redis ----------
	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer redisCache.Close()

	cache.StartRedisSizeCollector(ctx, redisCache.RawClient(), 15*time.Second, logger)
	metrics.StartDBCollectors(ctx, pool, 15*time.Second, logger)

	// ---------- domain ----------
	clock := schedule.SystemClock{}
	resolver := schedule.NewResolver(schedule.SystemZones{})
	inv := inventory.New(seatRepo)
	engine := search.NewEngine()

	// ---------- kafka producer + outbox ----------
	producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		log.Fatal("kafka producer:", err)
	}
	defer producer.Close()

	sender := service.NewOutboxSender(
		outboxRepo,
		producer,
		500*time.Millisecond,
		100,
		7, // retention, days
		cfg.OutboxMaxRetries,
		logger,
	)
	sender.Start(ctx)

	// ---------- kafka consumer (инвалидация кешей) ----------
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic, redisCache, logger)
	if err != nil {
		log.Fatal("kafka consumer:", err)
	}
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Printf("kafka consumer stopped: %v", err)
		}
	}()

	// ---------- services ----------
	flightService := service.NewFlightService(
		pool, airportRepo, aircraftRepo, flightRepo, bookingRepo, outboxRepo,
		resolver, clock, cfg.KafkaTopic, logger,
	)
	bookingService := service.NewBookingService(flightRepo, bookingRepo, inv, clock, logger)
	searchService := service.NewSearchService(
		flightRepo, seatRepo, engine, clock,
		cfg.SearchWindowDays, cfg.SearchMaxLegs, logger,
	)

	// ---------- handlers ----------
	fh := handlers.NewFlightHandler(flightService, redisCache, cacheTTL)
	bh := handlers.NewBookingHandler(bookingService)
	sh := handlers.NewSearchHandler(searchService, redisCache, cacheTTL)
	ah := handlers.NewAirportHandler(airportRepo)

	// ---------- router ----------
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	handlers.RegisterRoutes(r, fh, bh, sh, ah)

	// ---------- start server ----------
	addr := ":" + cfg.HTTPPort
	log.Println("server starting on", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
