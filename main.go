package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gymtrack/internal/handlers"
	"gymtrack/internal/middleware"
	"gymtrack/internal/models"
	"gymtrack/internal/repositories"
	"gymtrack/internal/services"
	"gymtrack/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("JWT_SECRET", "super-secret-key")
	viper.SetDefault("DB_PATH", "gym.db")
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("AUTO_REGISTER_ON_LOGIN", true)
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")

	// --- Database ---
	db, err := openDatabase()
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	if err := migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	seedExercises(db)

	// --- RabbitMQ (optional) ---
	// Usage events keep the exercise popularity counters up to date without
	// touching the request path. With no broker configured the counters simply
	// stay at their seeded values.
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()

		statsRepo := repositories.NewGORMExerciseRepository(db)
		err = mqClient.ConsumeUsageEvents(func(event rabbitmq.UsageEvent) error {
			return statsRepo.IncrementUsage(event.ExerciseID)
		})
		if err != nil {
			log.Fatalf("Failed to start usage-event consumer: %v", err)
		}
	}

	app := buildApp(db, mqClient)

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
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

// openDatabase connects to Postgres when DATABASE_URL is set, otherwise to the
// local SQLite file.
func openDatabase() (*gorm.DB, error) {
	if dsn := viper.GetString("DATABASE_URL"); dsn != "" {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(viper.GetString("DB_PATH")), &gorm.Config{})
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Exercise{},
		&models.ExerciseStat{},
		&models.Workout{},
		&models.WorkoutItem{},
		&models.WorkoutItemLog{},
	)
}

// buildApp wires repositories, services and handlers into a Fiber app.
func buildApp(db *gorm.DB, mqClient *rabbitmq.Client) *fiber.App {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	exerciseRepo := repositories.NewGORMExerciseRepository(db)
	workoutRepo := repositories.NewGORMWorkoutRepository(db)
	logRepo := repositories.NewGORMLogRepository(db)

	// --- Services ---
	authService := services.NewAuthService(userRepo,
		viper.GetString("JWT_SECRET"), viper.GetBool("AUTO_REGISTER_ON_LOGIN"))
	exerciseService := services.NewExerciseService(exerciseRepo)
	workoutService := services.NewWorkoutService(workoutRepo, exerciseRepo, logRepo, mqClient)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService)
	workoutHandler := handlers.NewWorkoutHandler(workoutService)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			log.Printf("Unhandled error on %s %s: %v", c.Method(), c.Path(), err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// --- API Routes ---
	api := app.Group("/api")
	auth := middleware.AuthRequired(authService)

	authHandler.RegisterRoutes(api)
	exerciseHandler.RegisterRoutes(api, auth)
	workoutHandler.RegisterRoutes(api, auth)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"ok":   true,
			"time": time.Now().Format(time.RFC3339),
		})
	})

	return app
}

// seedExercises populates the catalog with a starter set when it is empty.
func seedExercises(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Exercise{}).Count(&count).Error; err != nil {
		log.Printf("Error checking exercise catalog: %v", err)
		return
	}
	if count > 0 {
		return
	}

	starter := []models.Exercise{
		{Name: "Agachamento", MuscleGroup: "pernas", Description: ptr("Com barra nas costas")},
		{Name: "Levantamento Terra", MuscleGroup: "costas", Description: ptr("Deadlift convencional")},
		{Name: "Leg Press", MuscleGroup: "pernas", Description: ptr("Máquina leg press")},
		{Name: "Extensão de Pernas", MuscleGroup: "pernas", Description: ptr("Leg extension")},
		{Name: "Curl Femoral", MuscleGroup: "pernas", Description: ptr("Leg curl")},
		{Name: "Press Militar", MuscleGroup: "ombros", Description: ptr("Press com barra")},
		{Name: "Remada Curvada", MuscleGroup: "costas", Description: ptr("Com barra")},
		{Name: "Puxada Frente", MuscleGroup: "costas", Description: ptr("Lat pulldown")},
		{Name: "Bíceps Barra", MuscleGroup: "braços", Description: ptr("Curl de bíceps")},
		{Name: "Prancha", MuscleGroup: "core", Description: ptr("Prancha isométrica")},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range starter {
			if err := tx.Create(&starter[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("Error seeding exercise catalog: %v", err)
		return
	}
	log.Printf("Seeded %d exercises", len(starter))
}

func ptr(s string) *string {
	return &s
}
