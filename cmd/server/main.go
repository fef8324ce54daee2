package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/couvev/WashUp-Backend/internal/config"
	"github.com/couvev/WashUp-Backend/internal/database"
	"github.com/couvev/WashUp-Backend/internal/handler"
	"github.com/couvev/WashUp-Backend/internal/middleware"
	"github.com/couvev/WashUp-Backend/internal/queue"
	"github.com/couvev/WashUp-Backend/internal/repository"
	"github.com/couvev/WashUp-Backend/internal/router"
	"github.com/couvev/WashUp-Backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found")
	}
	cfg := config.Load()

	// The store handle is opened once here, injected into every
	// repository, and closed on shutdown.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	washes := repository.NewCarWashRepo(db)
	slots := repository.NewSlotRepo(db)

	booking := service.NewBookingService(slots, washes, users, service.NewRabbitPublisher())

	e := echo.New()

	// Redis-backed rate limiting and response caching; both degrade to
	// pass-through when Redis is not reachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and caching disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	e.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	authHandler := handler.NewAuthHandler(cfg, users, tokens)
	washHandler := handler.NewCarWashHandler(washes, slots)
	bookingHandler := handler.NewBookingHandler(booking)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret)
	router.RegisterPublic(e, washHandler, bookingHandler)
	router.RegisterAdmin(e, washHandler, authHandler, cfg.JWTSecret)
	router.RegisterBooking(e, bookingHandler, cfg.JWTSecret)

	// Background consumer mirroring slot events into logs/booking.log.
	go func() {
		if err := queue.StartSlotEventConsumer(); err != nil {
			log.Printf("slot-consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
