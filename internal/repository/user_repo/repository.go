package user_repo

import (
	"context"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"strings"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table           = "users"
	colID           = "id"
	colName         = "name"
	colEmail        = "email"
	colPasswordHash = "password_hash"
	colIsAdmin      = "is_admin"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewUserRepository(dbc *pgxpool.Pool) repository.UserRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

// CreateUser - создает пользователя, email сохраняется в нижнем регистре.
// Возвращает ID созданного пользователя, ErrDuplicate если email занят
func (r *repo) CreateUser(ctx context.Context, user *model.User) (string, error) {
	sqlStr, args, err := sq.Insert(table).
		Columns(colName, colEmail, colPasswordHash, colIsAdmin).
		Values(user.Name, strings.ToLower(user.Email), user.Password, user.IsAdmin).
		Suffix("RETURNING " + colID).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	var id string
	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&id)
	if err != nil {
		return "", repository.PgError(err)
	}

	return id, nil
}

func (r *repo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getUser(ctx, sq.Eq{colEmail: strings.ToLower(email)})
}

func (r *repo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, sq.Eq{colID: id})
}

func (r *repo) getUser(ctx context.Context, where sq.Eq) (*model.User, error) {
	sqlStr, args, err := sq.Select(colID, colName, colEmail, colPasswordHash, colIsAdmin).
		From(table).
		Where(where).
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
