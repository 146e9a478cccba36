package main

import (
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"

	"gamereview/internal/config"
	"gamereview/internal/handlers"
	"gamereview/internal/middleware"
	"gamereview/internal/repositories"
	"gamereview/internal/services"
	"gamereview/pkg/kvstore"
	"gamereview/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Storage ---
	store, err := config.OpenStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StorageDriver, err)
	}

	// --- Review events (optional) ---
	var publisher services.EventPublisher
	if cfg.EventsURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.EventsURL, Exchange: services.EventsExchange})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		if err := mqClient.ConsumeReviewEvents(logReviewEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("EVENTS_URL not set; review events are disabled")
	}

	app := fiber.New()
	app.Use(logger.New())
	if err := setupApp(app, cfg, store, publisher); err != nil {
		log.Fatalf("Failed to set up application: %v", err)
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s (storage: %s)", cfg.AppPort, cfg.StorageDriver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// setupApp wires repositories, services and handlers over store and
// registers their routes on app.
func setupApp(app *fiber.App, cfg config.Config, store kvstore.Store, publisher services.EventPublisher) error {
	passwords, err := services.PasswordHasherFor(cfg.PasswordHashing)
	if err != nil {
		return err
	}

	// --- Repositories ---
	userRepo := repositories.NewKVUserRepository(store)
	sessionRepo := repositories.NewKVSessionRepository(store)
	reviewRepo := repositories.NewKVReviewRepository(store)

	// --- Services ---
	authService := services.NewAuthService(userRepo, sessionRepo, services.AuthConfig{
		JWTSecret:     cfg.SessionSecret,
		TokenDuration: cfg.SessionTTL,
		Passwords:     passwords,
	})
	reviewService := services.NewReviewService(reviewRepo, publisher)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(reviewService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"storage": cfg.StorageDriver,
			"events":  publisher != nil,
		})
	})

	sessionMiddleware := middleware.ResolveSession(authService)
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1, sessionMiddleware)
	reviewHandler.RegisterRoutes(apiV1, sessionMiddleware)

	return nil
}

// logReviewEvent is the consumer for the review activity queue.
func logReviewEvent(msg amqp.Delivery) error {
	var event services.ReviewEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return err
	}
	log.Printf("Review event %s: review %s by user %s", event.Event, event.ReviewID, event.UserID)
	return nil
}
