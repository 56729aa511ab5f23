package persistence

import (
	"database/sql"
	"fmt"
	"time"

	"token-platform/infrastructure/configuration"
	"token-platform/infrastructure/logger"

	_ "github.com/lib/pq"
)

// NewPostgreSQLDB opens the primary store holding accounts, the ledger,
// videos, the featured slot and referral stats.
func NewPostgreSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Psql
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	configurePool(db)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"host": cfg.Host,
		"db":   cfg.Name,
	}).Info("Connected to PostgreSQL")
	return db, nil
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}
