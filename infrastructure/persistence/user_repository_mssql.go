package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"token-platform/domain/model"
	"token-platform/domain/repository"
	"token-platform/infrastructure/logger"

	mssql "github.com/microsoft/go-mssqldb"
)

// UserRepositoryMSSQL is a SQL Server implementation of IUser.
type UserRepositoryMSSQL struct{ db *sql.DB }

func NewUserRepositoryMSSQL(db *sql.DB) repository.IUser { return &UserRepositoryMSSQL{db} }

func (r *UserRepositoryMSSQL) GetById(ctx context.Context, id int64) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, created_at, updated_at FROM dbo.[users] WHERE id = @p1`, id)
	return scanUserMSSQL(row, "mssql: query user by id failed")
}

func (r *UserRepositoryMSSQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, user_name, password, created_at, updated_at FROM dbo.[users] WHERE user_name = @p1`, userName)
	return scanUserMSSQL(row, "mssql: query user by username failed")
}

func scanUserMSSQL(row *sql.Row, failure string) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, model.ErrUserNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error(failure)
		return u, err
	}
	return u, nil
}

func (r *UserRepositoryMSSQL) CreateUser(ctx context.Context, user model.User) (int64, error) {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO dbo.[users] (name, user_name, password, created_at, updated_at) OUTPUT INSERTED.id VALUES (@p1, @p2, @p3, @p4, SYSDATETIME())`,
		user.Name, user.UserName, user.Password, createdAt).Scan(&id)
	if err != nil {
		// 2627/2601: unique constraint or index violation
		var sqlErr mssql.Error
		if errors.As(err, &sqlErr) && (sqlErr.Number == 2627 || sqlErr.Number == 2601) {
			return 0, fmt.Errorf("user name %q is taken: %w", user.UserName, model.ErrConflict)
		}
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("mssql: create user failed")
		return 0, err
	}
	return id, nil
}

func (r *UserRepositoryMSSQL) DeleteUser(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM dbo.[users] WHERE id = @p1`, id); err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", id).Error("mssql: delete user failed")
		return err
	}
	return nil
}
