package authRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ReceiptTracker/internal/api/auth"
	"ReceiptTracker/internal/entity"
	contextPkg "ReceiptTracker/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type UserDB struct {
	ID        sql.NullString `db:"id"`
	Email     sql.NullString `db:"email"`
	Password  sql.NullString `db:"password"`
	CreatedAt sql.NullTime   `db:"created_at"`
}

func (r *userRepository) CreateUser(c context.Context, user entity.User) error {
	requestID := contextPkg.GetRequestID(c)
	argsKV := map[string]interface{}{
		"id":         user.ID,
		"email":      user.Email,
		"password":   user.Password,
		"created_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryCreateUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateUser")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(c, query, args...)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Email already exists")
			return auth.ErrEmailAlreadyExists
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating user")

		return err
	}

	return nil
}

func (r *userRepository) GetByID(c context.Context, id string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.User{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) GetByEmail(c context.Context, email string) (entity.User, error) {
	requestID := contextPkg.GetRequestID(c)
	var user UserDB

	argsKV := map[string]interface{}{
		"email": email,
	}

	query, args, err := sqlx.Named(queryGetByEmail, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail named query preparation err")
		return entity.User{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.User{}, auth.ErrUserNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByEmail execution err")
		return entity.User{}, err
	}

	return r.makeUser(user), nil
}

func (r *userRepository) DeleteUser(c context.Context, id string) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteUser, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteUser named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteUser execution err")
		return err
	}

	return nil
}

func (r *userRepository) makeUser(row UserDB) entity.User {
	return entity.User{
		ID:        row.ID.String,
		Email:     row.Email.String,
		Password:  row.Password.String,
		CreatedAt: row.CreatedAt.Time,
	}
}
