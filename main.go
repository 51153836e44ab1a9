package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"academiaQuestAPI/handlers"
	"academiaQuestAPI/internal/clock"
	"academiaQuestAPI/internal/notification"
	"academiaQuestAPI/internal/persistence"
	"academiaQuestAPI/middleware"
	"academiaQuestAPI/services"
)

var (
	dbPool              *pgxpool.Pool
	stateStore          *services.StateStore
	engineService       *services.EngineService
	userService         *services.UserService
	teamService         *services.TeamService
	leaderboardService  *services.LeaderboardService
	notificationService *services.NotificationService
	fcmService          *notification.FCMService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	clerkSecretKey := os.Getenv("CLERK_SECRET_KEY")
	if clerkSecretKey == "" {
		log.Fatal("CLERK_SECRET_KEY environment variable is not set")
	}
	clerk.SetKey(clerkSecretKey)
	log.Println("Clerk initialized successfully")

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		log.Fatal("Failed to parse database URL:", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatal("Failed to create connection pool:", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal("Failed to ping database:", err)
	}
	log.Println("Successfully connected to Postgres")

	store, err := persistence.NewPostgresStore(ctx, dbPool)
	if err != nil {
		log.Fatal("Failed to initialize persistence:", err)
	}

	clk := clock.Real{}
	stateStore = services.NewStateStore(store)
	if err := stateStore.LoadAll(ctx); err != nil {
		log.Fatal("Failed to load domain state:", err)
	}
	if stateStore.Empty() {
		log.Println("No persisted state found, seeding demo data")
		services.Seed(ctx, stateStore, clk.Now())
	}

	notificationService = services.NewNotificationService(stateStore)
	engineService = services.NewEngineService(stateStore, notificationService, clk)
	userService = services.NewUserService(stateStore, clk)
	teamService = services.NewTeamService(stateStore)
	leaderboardService = services.NewLeaderboardService(stateStore)

	fcmService, err = notification.NewFCMService("./serviceAccountKey.json")
	if err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		notificationService.SetPushProvider(fcmService)
		log.Println("FCM Push Provider initialized successfully")
	}

	middleware.InitPrometheus()
	services.InitMetrics()
}

func main() {
	defer func() {
		log.Println("Closing database connection pool...")
		dbPool.Close()
	}()

	userHandler := handlers.NewUserHandler(userService, leaderboardService)
	missionHandler := handlers.NewMissionHandler(engineService, userService)
	challengeHandler := handlers.NewChallengeHandler(engineService, userService)
	teamHandler := handlers.NewTeamHandler(teamService)
	notificationHandler := handlers.NewNotificationHandler(notificationService, userService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	r := mux.NewRouter()

	go middleware.CleanupVisitors()

	r.Use(middleware.RateLimitMiddleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := dbPool.Ping(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "academiaQuest-api"}`))
	}).Methods("GET")

	r.HandleFunc("/webhooks/clerk", webhookHandler.HandleClerkWebhook).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Protected routes (require auth header)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.ClerkAuthMiddleware)

	protected.HandleFunc("/user", userHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/user/stats", userHandler.GetStats).Methods("GET")
	protected.HandleFunc("/user/badges", userHandler.GetBadges).Methods("GET")
	protected.HandleFunc("/user/xp-events", userHandler.GetXPEvents).Methods("GET")
	protected.HandleFunc("/leaderboards", userHandler.GetLeaderboards).Methods("GET")

	protected.HandleFunc("/missions", missionHandler.ListMissions).Methods("GET")
	protected.HandleFunc("/missions/{id}/start", missionHandler.StartMission).Methods("POST")
	protected.HandleFunc("/missions/{id}/progress", missionHandler.UpdateProgress).Methods("PUT")
	protected.HandleFunc("/missions/{id}/complete", missionHandler.CompleteMission).Methods("POST")
	protected.HandleFunc("/missions/{id}/contribute", missionHandler.Contribute).Methods("POST")
	protected.HandleFunc("/weekly-goal", missionHandler.GetWeeklyGoal).Methods("GET")

	protected.HandleFunc("/challenges", challengeHandler.ListChallenges).Methods("GET")
	protected.HandleFunc("/challenges/{id}/accept", challengeHandler.AcceptChallenge).Methods("POST")
	protected.HandleFunc("/challenges/{id}/complete", challengeHandler.CompleteChallenge).Methods("POST")

	protected.HandleFunc("/teams", teamHandler.ListTeams).Methods("GET")
	protected.HandleFunc("/teams/{id}", teamHandler.GetTeam).Methods("GET")

	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods("GET")
	protected.HandleFunc("/notifications/unread-count", notificationHandler.GetUnreadCount).Methods("GET")
	protected.HandleFunc("/notifications/{id}/read", notificationHandler.MarkAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/read-all", notificationHandler.MarkAllAsRead).Methods("PUT")
	protected.HandleFunc("/notifications/register-device", notificationHandler.RegisterDevice).Methods("POST")

	// Expire overdue challenges in the background.
	expireStop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				engineService.ExpireChallenges(context.Background())
			case <-expireStop:
				return
			}
		}
	}()

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	close(expireStop)
	notificationService.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	// Final snapshot so a clean restart resumes exactly here.
	stateStore.CommitAll(shutdownCtx)

	log.Println("Server shutdown complete")
}
