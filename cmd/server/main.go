// @title           SampoornaAngan Backend API
// @version         1.0
// @description     Backend service for the SampoornaAngan anganwadi management system: authentication, role-based access and center administration.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer: ` prefix
package main

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"sampoornaangan-backend/internal/app/routes"
	"sampoornaangan-backend/internal/domain/models"
	"sampoornaangan-backend/internal/domain/services"
	"sampoornaangan-backend/internal/infrastructure/config"
	"sampoornaangan-backend/internal/infrastructure/database"
	Logger "sampoornaangan-backend/pkg/logger"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	if err := Logger.SetupLogger(); err != nil {
		fmt.Printf("Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	// Missing .env is fine; the environment may already be populated
	if err := godotenv.Load(); err != nil {
		Logger.Warning("No .env file loaded: %v", err)
	} else {
		Logger.Info("Loaded .env file")
	}

	cfg := config.GetConfig()

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		log.Fatalf("Failed to create database connection pool: %v", err)
	}
	db := pool.GetDB()

	switch cfg.DBMigrationMode {
	case "drop":
		log.Println("Warning: running in drop mode, all tables will be dropped and recreated")
		if err := dropAndRecreateTables(db); err != nil {
			log.Fatalf("Drop and recreate failed: %v", err)
		}
	default:
		// AutoMigrate only adds new columns and tables
		if err := autoMigrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	ensureAdminExists(db, cfg)

	redisService := services.NewRedisService(cfg)

	r := routes.SetupRouter(db, cfg, redisService)

	port := cfg.ServerPort

	printSystemInfo(pool)

	Logger.Info("Server listening on http://0.0.0.0:%s", port)
	if err := r.Run("0.0.0.0:" + port); err != nil {
		Logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

// autoMigrate migrates all models (adds new columns and tables only)
func autoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.User{},
		&models.AnganwadiCenter{},
	)

	if err != nil {
		return err
	}

	fmt.Println("Database migration completed")
	return nil
}

// dropAndRecreateTables drops every known table and migrates from scratch
func dropAndRecreateTables(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get DB connection: %w", err)
	}

	if _, err = sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 0"); err != nil {
		log.Printf("Failed to disable foreign key checks: %v", err)
	}
	defer sqlDB.Exec("SET FOREIGN_KEY_CHECKS = 1")

	tables := []string{"admins", "users", "anganwadi_centers"}

	for _, table := range tables {
		log.Printf("Dropping table: %s", table)
		if _, err := sqlDB.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			log.Printf("Failed to drop table %s: %v", table, err)
		}
	}

	return autoMigrate(db)
}

// ensureAdminExists seeds the default admin account on an empty deployment
func ensureAdminExists(db *gorm.DB, cfg *config.Config) {
	adminService := services.NewAdminService(db, cfg)
	if err := adminService.EnsureDefaultAdmin(cfg.DefaultAdminPassword); err != nil {
		log.Fatalf("Failed to ensure default admin account: %v", err)
	}
}

// printSystemInfo logs connection pool and runtime statistics at startup
func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		log.Printf("Database connection pool: %+v", stats)
	}

	log.Printf("CPU cores: %d", runtime.NumCPU())
	log.Printf("Goroutines: %d", runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Printf("Memory: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
