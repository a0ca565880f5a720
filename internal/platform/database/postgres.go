package database

import (
	"database/sql"
	"time"

	"ctf_practice_hub/internal/platform/config"
	"ctf_practice_hub/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"go.uber.org/zap"
)

var DB *sql.DB

func Connect() {
	var err error
	DB, err = sql.Open("pgx", config.AppConfig.DBConnStr)
	if err != nil {
		logger.Log.Fatal("error opening database", zap.Error(err))
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err = DB.Ping(); err != nil {
		logger.Log.Fatal("error connecting to database", zap.Error(err))
	}

	logger.Log.Info("connected to PostgreSQL database")
}

func Close() {
	if DB != nil {
		DB.Close()
		logger.Log.Info("database connection closed")
	}
}
