package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"wargame-progression-system/handlers"
	"wargame-progression-system/middleware"
	"wargame-progression-system/models"
	"wargame-progression-system/services"
	"wargame-progression-system/store"
	"wargame-progression-system/utils"
	"wargame-progression-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	chatAPIBaseURL := os.Getenv("CHAT_API_BASE_URL")
	if chatAPIBaseURL == "" {
		log.Fatal("CHAT_API_BASE_URL environment variable not set")
	}
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		log.Fatal("BOT_TOKEN environment variable not set")
	}
	appID := os.Getenv("APP_ID")
	if appID == "" {
		log.Fatal("APP_ID environment variable not set")
	}
	guildID := os.Getenv("GUILD_ID")
	if guildID == "" {
		log.Fatal("GUILD_ID environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeManager := store.NewManager(dsn)

	// The per-wargame flag tables are provisioned with the wargame content
	// and never touched here. Only our own tables are migrated.
	db, err := storeManager.Conn(ctx)
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := db.AutoMigrate(
		&models.Progression{},
		&models.SubmissionAttempt{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	progressionService := services.NewProgressionService(storeManager)
	accessClient := services.NewChannelAccessClient(chatAPIBaseURL, botToken, guildID)
	submissionService := services.NewSubmissionService(progressionService, accessClient)
	scoreboardService := services.NewScoreboardService(progressionService)

	registrar := services.NewCommandRegistrar(chatAPIBaseURL, botToken, appID, guildID)
	if err := registrar.RegisterCommands(ctx); err != nil {
		log.Fatal("failed to register slash commands:", err)
	}
	log.Println("Successfully registered slash commands.")

	reconciler := workers.NewAccessReconciler(storeManager, accessClient)
	go reconciler.Run(ctx, 10*time.Minute)

	snapshotsEnabled := false
	if utils.SnapshotsEnabled() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		scoreboardService.StartSnapshotScheduler(1 * time.Minute)
		snapshotsEnabled = true
	}

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	// Roles allowed to use the scoreboard command (comma-separated). Empty
	// leaves it open to everyone in the guild.
	var scoreboardRoles []string
	for _, role := range strings.Split(os.Getenv("SCOREBOARD_ROLES"), ",") {
		if role = strings.TrimSpace(role); role != "" {
			scoreboardRoles = append(scoreboardRoles, role)
		}
	}

	handlers.SetupCommandRoutes(app, submissionService, scoreboardService, progressionService, scoreboardRoles)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Access reconciler running (every 10m)")
	if snapshotsEnabled {
		log.Println("✅ Scoreboard snapshot publishing running (every 1m)")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
