package sqldb

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/honeynil/bank-ledger/internal/database"
	"github.com/honeynil/bank-ledger/internal/models"
	pkgerrors "github.com/honeynil/bank-ledger/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

type UserRepository struct {
	q database.Querier
}

func NewUserRepository(q database.Querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := observe(ctx, "CreateUser")
	defer func() { done(err) }()

	if user == nil {
		return pkgerrors.ErrNilUser
	}
	if user.Name == "" || user.Surname == "" {
		return pkgerrors.ErrInvalidFullName
	}

	query := `INSERT INTO "User" (name, surname, birth_day, accounts) VALUES ($1, $2, $3, $4) RETURNING id`
	err = r.q.QueryRowContext(ctx, query, user.Name, user.Surname, nullString(user.BirthDay), user.Accounts).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			slog.Warn("user already exists", "method", "Create", "name", user.Name, "surname", user.Surname)
			return fmt.Errorf("%w: %s", pkgerrors.ErrUserAlreadyExists, user.FullName())
		}
		slog.Error("failed to create user", "method", "Create", "name", user.Name, "surname", user.Surname, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "method", "Create", "id", user.ID)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (_ *models.User, err error) {
	ctx, done := observe(ctx, "GetUserByID", attribute.Int64("user_id", id))
	defer func() { done(err) }()

	var (
		user     models.User
		birthDay sql.NullString
	)
	query := `SELECT id, name, surname, birth_day, accounts FROM "User" WHERE id = $1`
	err = r.q.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Name, &user.Surname, &birthDay, &user.Accounts)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	user.BirthDay = birthDay.String
	return &user, nil
}

func (r *UserRepository) ListIDs(ctx context.Context) (_ []int64, err error) {
	ctx, done := observe(ctx, "ListUserIDs")
	defer func() { done(err) }()

	rows, err := r.q.QueryContext(ctx, `SELECT id FROM "User" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return ids, nil
}
