package auth_repo

import (
	"context"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table          = "sessions"
	colSessionID   = "session_id"
	colUserID      = "user_id"
	colRefreshHash = "refresh_hash"
	colExpiredTime = "expired_time"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewAuthRepository(dbc *pgxpool.Pool) repository.AuthRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// CreateSession - создает сессию в БД, RefreshToken хранится хэшем
func (r *repo) CreateSession(ctx context.Context, session *model.Session) error {
	sqlStr, args, err := sq.Insert(table).
		Columns(colSessionID, colUserID, colRefreshHash, colExpiredTime).
		Values(session.ID, session.UserID, session.RefreshToken, session.ExpiresAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return repository.PgError(err)
}

// GetSession - сессия по ID вместе с хэшем refresh токена
func (r *repo) GetSession(ctx context.Context, sessionID string) (*model.Session, error) {
	sqlStr, args, err := sq.Select(colSessionID, colUserID, colRefreshHash, colExpiredTime).
		From(table).
		Where(sq.Eq{colSessionID: sessionID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var s model.Session
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).
		Scan(&s.ID, &s.UserID, &s.RefreshToken, &s.ExpiresAt)
	if err != nil {
		return nil, repository.PgError(err)
	}

	return &s, nil
}

// DeleteSession - удаляет сессию из БД
func (r *repo) DeleteSession(ctx context.Context, sessionID string) error {
	sqlStr, args, err := sq.Delete(table).
		Where(sq.Eq{colSessionID: sessionID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.getter.DefaultTrOrDB(ctx, r.dbc).Exec(ctx, sqlStr, args...)
	return repository.PgError(err)
}

// GetUserBySessionID - пользователь, которому принадлежит сессия
func (r *repo) GetUserBySessionID(ctx context.Context, sessionID string) (*model.User, error) {
	sqlStr, args, err := sq.Select("u.id", "u.name", "u.email", "u.password_hash", "u.is_admin").
		From(table + " s").
		Join("users u ON s." + colUserID + " = u.id").
		Where(sq.Eq{"s." + colSessionID: sessionID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user model.User
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.IsAdmin)
	if err != nil {
		return nil, repository.PgError(err)
	}

	return &user, nil
}
