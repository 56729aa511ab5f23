package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EnsureUserSchemaMSSQL creates the identity table when users live in SQL Server.
func EnsureUserSchemaMSSQL(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	createIfMissing := func(table, ddl string) error {
		q := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN %s END`, table, ddl)
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure table %s: %w", table, err)
		}
		return nil
	}
	return createIfMissing("dbo.users", `CREATE TABLE dbo.[users] (
		id BIGINT IDENTITY(1,1) PRIMARY KEY,
		name NVARCHAR(255) NOT NULL,
		user_name NVARCHAR(255) NOT NULL UNIQUE,
		password NVARCHAR(255) NOT NULL,
		created_at DATETIME2 NOT NULL DEFAULT SYSDATETIME(),
		updated_at DATETIME2 NOT NULL DEFAULT SYSDATETIME()
	)`)
}
