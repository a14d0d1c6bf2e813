package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"item-adoption-api/internal/config"
	"item-adoption-api/internal/database"
	"item-adoption-api/internal/handlers"
	"item-adoption-api/internal/jobs"
	"item-adoption-api/internal/repository"
	cronjobs "item-adoption-api/internal/scheduler"
	"item-adoption-api/internal/services"
	"item-adoption-api/pkg/email"
	"item-adoption-api/pkg/logger"
	"item-adoption-api/pkg/middleware"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	if err := userRepo.EnsureIndexes(context.Background()); err != nil {
		log.Fatalf("Index creation error: %v", err)
	}

	// --- Outbound mail ---
	mailer := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)

	// --- Services ---
	userService := services.NewUserService(userRepo)
	listingService := services.NewListingService(entryRepo, userRepo, mailer)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	listingHandler := handlers.NewListingHandler(listingService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handlers.NotFoundHandler)

	// Registration is the only unauthenticated user route
	router.HandleFunc("/api/users", userHandler.RegisterUserHandler).Methods("POST")

	// Session routes
	router.HandleFunc("/api/auth/login", userHandler.LoginUserHandler).Methods("POST")
	protectedAuthRoutes := router.PathPrefix("/api/auth").Subrouter()
	protectedAuthRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAuthRoutes.HandleFunc("/refresh", userHandler.RefreshTokenHandler).Methods("POST")

	// Protected user routes (profile read/update)
	protectedUserRoutes := router.PathPrefix("/api/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PUT")

	// Listing and wishlist routes
	protectedListRoutes := router.PathPrefix("/api/lists").Subrouter()
	protectedListRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protectedListRoutes.HandleFunc("/listings", listingHandler.GetListingsHandler).Methods("GET")
	protectedListRoutes.HandleFunc("/listings", listingHandler.CreateListingHandler).Methods("POST")
	protectedListRoutes.HandleFunc("/listings/search/{zipcode}", listingHandler.SearchListingsHandler).Methods("GET")
	protectedListRoutes.HandleFunc("/listings/contact/{id}", listingHandler.ContactListingOwnerHandler).Methods("POST")
	protectedListRoutes.HandleFunc("/listings/{id}", listingHandler.UpdateListingHandler).Methods("PUT")
	protectedListRoutes.HandleFunc("/listings/{id}", listingHandler.DeleteListingHandler).Methods("DELETE")

	protectedListRoutes.HandleFunc("/wishlist", listingHandler.GetWishlistHandler).Methods("GET")
	protectedListRoutes.HandleFunc("/wishlist", listingHandler.CreateWishItemHandler).Methods("POST")
	protectedListRoutes.HandleFunc("/wishlist/search/{zipcode}", listingHandler.SearchWishlistsHandler).Methods("GET")
	protectedListRoutes.HandleFunc("/wishlist/contact/{id}", listingHandler.ContactWishItemOwnerHandler).Methods("POST")
	protectedListRoutes.HandleFunc("/wishlist/{id}", listingHandler.UpdateWishItemHandler).Methods("PUT")
	protectedListRoutes.HandleFunc("/wishlist/{id}", listingHandler.DeleteWishItemHandler).Methods("DELETE")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Daily expiry reminders
	notifier := jobs.NewExpiryNotifier(listingService, userService, mailer)
	expiryCron := cronjobs.StartExpiryCronJobs(notifier)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.ClientOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: c.Handler(router),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		fmt.Printf("Server running on port %s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	expiryCron.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server shutdown failed")
	}
	if err := database.Disconnect(shutdownCtx, db); err != nil {
		logger.Log.WithError(err).Error("Database disconnect failed")
	}
}
