package persistence

import (
	"database/sql"
	"fmt"
	"net/url"

	"token-platform/infrastructure/configuration"
	"token-platform/infrastructure/logger"

	_ "github.com/microsoft/go-mssqldb"
)

// NewMSSQLDB opens the SQL Server identity store used when DB_VENDOR=mssql.
func NewMSSQLDB() (*sql.DB, error) {
	cfg := configuration.C.Database.Mssql
	db, err := sql.Open("sqlserver", mssqlDSN(cfg))
	if err != nil {
		return nil, err
	}
	configurePool(db)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("mssql ping: %w", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"host": cfg.Host,
		"db":   cfg.Name,
	}).Info("Connected to SQL Server user store")
	return db, nil
}

// mssqlDSN always encrypts; loopback hosts trust the server certificate so
// local containers with self-signed certs work.
func mssqlDSN(cfg configuration.Db) string {
	q := url.Values{}
	if cfg.Name != "" {
		q.Set("database", cfg.Name)
	}
	q.Set("encrypt", "true")
	if cfg.Host == "localhost" || cfg.Host == "127.0.0.1" {
		q.Set("TrustServerCertificate", "true")
	}

	u := &url.URL{Scheme: "sqlserver", Host: fmt.Sprintf("%s:%s", cfg.Host, cfg.Port), RawQuery: q.Encode()}
	switch {
	case cfg.User != "" && cfg.Password != "":
		u.User = url.UserPassword(cfg.User, cfg.Password)
	case cfg.User != "":
		u.User = url.User(cfg.User)
	}
	return u.String()
}
