package main

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/rjosephs/daybook-backend/internal/config"
	"github.com/rjosephs/daybook-backend/internal/database"
	"github.com/rjosephs/daybook-backend/internal/handlers"
	"github.com/rjosephs/daybook-backend/internal/middleware"
	"github.com/rjosephs/daybook-backend/internal/routes"
	"github.com/rjosephs/daybook-backend/internal/services"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	if cfg.IsProduction() && cfg.JWTSecret == "your-secret-key-change-in-production" {
		log.Fatal("JWT_SECRET must be set in production")
	}

	// Log connection attempt (without showing credentials)
	log.Printf("Connecting to MongoDB: %s", maskURI(cfg.MongoURI))
	client, db, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer database.Disconnect(client)

	// Unique indexes back the signup conflict check and collaboration-code retry
	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		cancel()
		log.Fatal("Failed to ensure MongoDB indexes: ", err)
	}
	cancel()
	log.Println("✅ MongoDB indexes ensured")

	// Wire services and handlers
	userService := services.NewUserService(db)
	postService := services.NewPostService(db)
	tokenIssuer := services.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)

	userHandler := handlers.NewUserHandler(userService, tokenIssuer)
	postHandler := handlers.NewPostHandler(postService)
	requireAuth := middleware.Auth(tokenIssuer, userService)

	// Setup router
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
	}

	// Redis-backed rate limiting when configured; in-process fallback in
	// production without Redis
	if cfg.RedisURI != "" {
		rdb, err := database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			log.Printf("Warning: Redis unavailable, falling back to in-process rate limiting: %v", err)
			r.Use(middleware.LocalRateLimit())
		} else {
			defer rdb.Close()
			r.Use(middleware.RateLimit(rdb))
		}
	} else if cfg.IsProduction() {
		r.Use(middleware.LocalRateLimit())
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.Setup(r, userHandler, postHandler, requireAuth)

	log.Printf("🚀 Daybook backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}

// maskURI hides the password portion of a connection string for logging.
func maskURI(uri string) string {
	if !strings.Contains(uri, "@") {
		return uri
	}
	at := strings.LastIndex(uri, "@")
	head := uri[:at]
	if colon := strings.LastIndex(head, ":"); colon > strings.Index(head, "//") {
		return head[:colon+1] + "***" + uri[at:]
	}
	return uri
}
