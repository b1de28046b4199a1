package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/therapease/therapease-backend/internal/config"
	"github.com/therapease/therapease-backend/internal/database"
	"github.com/therapease/therapease-backend/internal/handlers"
	"github.com/therapease/therapease-backend/internal/middleware"
	"github.com/therapease/therapease-backend/internal/routes"
	"github.com/therapease/therapease-backend/internal/services"
	"github.com/therapease/therapease-backend/internal/store"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	if err := database.ConnectMongo(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.DisconnectMongo()

	// Stores
	userStore := store.NewPostgresUserStore(database.PostgresDB)
	relationStore := store.NewPostgresRelationStore(database.PostgresDB)
	blocklistStore := store.NewPostgresBlocklistStore(database.PostgresDB)
	journalStore := store.NewMongoJournalStore(database.DB)

	// Ensure MongoDB indexes for journal queries
	if err := journalStore.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB journal indexes: %v", err)
	} else {
		log.Println("✅ MongoDB journal indexes ensured")
	}

	// Token service with Redis fast path for revoked tokens
	revocationCache := services.NewRedisRevocationCache(database.RedisClient)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry, userStore, blocklistStore, revocationCache)

	// Emotion predictor: external model when configured, lexicon fallback otherwise
	predictor := services.NewPredictor(cfg.EmotionAPIURL)
	if cfg.EmotionAPIURL != "" {
		log.Printf("✅ Emotion model endpoint configured: %s", cfg.EmotionAPIURL)
	} else {
		log.Println("⚠️  WARNING: EMOTION_API_URL not set. Using built-in lexicon predictor.")
	}

	handlers.Init(userStore, journalStore, relationStore, tokenService, predictor)

	// Initialize Cloudinary service for profile pictures
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		if err := handlers.InitCloudinaryService(cfg); err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Profile picture uploads will not be available")
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Profile picture uploads will not be available")
	}

	// Start blocklist cleanup: revoked tokens past their natural expiry are
	// already rejected by the signature check, so their rows can go
	services.StartBlocklistCleanup(blocklistStore, time.Hour, cfg.JWTExpiry)
	log.Println("✅ Token blocklist cleanup service started")

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: SecurityHeaders → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity() {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r, tokenService)

	log.Printf("🚀 TherapEase backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
