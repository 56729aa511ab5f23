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
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.IUser {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	return r.getOne(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at 
	FROM users AS u 
	WHERE u.id = $1`, id)
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	return r.getOne(ctx, `SELECT u.id, u.name, u.user_name, u.password, u.created_at, u.updated_at 
	FROM users AS u 
	WHERE u.user_name = $1`, userName)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg interface{}) (model.User, error) {
	var user model.User
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing user query")
		return user, err
	}
	defer stmt.Close()

	err = stmt.QueryRowContext(ctx, arg).Scan(&user.ID, &user.Name, &user.UserName, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return user, model.ErrUserNotFound
	}
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while scanning user")
		return user, err
	}
	return user, nil
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) (int64, error) {
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	stmt, err := r.db.PrepareContext(ctx, `INSERT INTO users (name, user_name, password, created_at, updated_at) 
	VALUES ($1, $2, $3, $4, $5) RETURNING id`)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while preparing user insert")
		return 0, err
	}
	defer stmt.Close()

	var id int64
	err = stmt.QueryRowContext(ctx, user.Name, user.UserName, user.Password, user.CreatedAt, now).Scan(&id)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("user name %q is taken: %w", user.UserName, model.ErrConflict)
	}
	if err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"error":     err,
			"user_name": user.UserName,
		}).Error("create user failed")
		return 0, err
	}
	return id, nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		logger.GetLogger().WithField("error", err).WithField("user_id", id).Error("delete user failed")
		return err
	}
	return nil
}
