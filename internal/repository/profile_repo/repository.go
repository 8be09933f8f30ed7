package profile_repo

import (
	"context"
	"errors"
	"fmt"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"
	"strings"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	table                 = "profiles"
	colID                 = "id"
	colUsername           = "username"
	colFirstName          = "first_name"
	colLastName           = "last_name"
	colCredits            = "credits"
	colCarterCash         = "carter_cash"
	colCarterCashProgress = "carter_cash_progress"
	colUpdatedAt          = "updated_at"
)

var columns = []string{
	colID, colUsername, colFirstName, colLastName,
	colCredits, colCarterCash, colCarterCashProgress, colUpdatedAt,
}

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewProfileRepository(dbc *pgxpool.Pool) repository.ProfileRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Username, &p.FirstName, &p.LastName,
		&p.Credits, &p.CarterCash, &p.CarterCashProgress, &p.UpdatedAt)
	if err != nil {
		return nil, repository.PgError(err)
	}
	return &p, nil
}

// GetProfile - профиль по id пользователя; ErrNotFound если профиля нет
func (r *repo) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	sqlStr, args, err := sq.Select(columns...).
		From(table).
		Where(sq.Eq{colID: userID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanProfile(r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...))
}

// CreateProfile - ErrDuplicate, если профиль уже создан параллельным запросом
func (r *repo) CreateProfile(ctx context.Context, p *model.Profile) error {
	sqlStr, args, err := sq.Insert(table).
		Columns(colID, colUsername, colFirstName, colLastName, colCredits, colCarterCash, colCarterCashProgress).
		Values(p.ID, p.Username, p.FirstName, p.LastName, p.Credits, p.CarterCash, p.CarterCashProgress).
		Suffix("RETURNING " + colUpdatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	err = r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...).Scan(&p.UpdatedAt)
	return repository.PgError(err)
}

// UpdateProfile - обновляет только заданные поля
func (r *repo) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	if upd.Empty() {
		return r.GetProfile(ctx, userID)
	}

	query := sq.Update(table).
		Set(colUpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{colID: userID})
	if upd.Credits != nil {
		query = query.Set(colCredits, *upd.Credits)
	}
	if upd.CarterCash != nil {
		query = query.Set(colCarterCash, *upd.CarterCash)
	}
	if upd.CarterCashProgress != nil {
		query = query.Set(colCarterCashProgress, *upd.CarterCashProgress)
	}

	sqlStr, args, err := query.
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	return scanProfile(r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...))
}

// DebitBalance - условное списание: UPDATE ... WHERE balance >= amount
func (r *repo) DebitBalance(ctx context.Context, userID string, currency model.Currency, amount int) (*model.Profile, error) {
	col, err := balanceColumn(currency)
	if err != nil {
		return nil, err
	}

	sqlStr, args, err := sq.Update(table).
		Set(col, sq.Expr(col+" - ?", amount)).
		Set(colUpdatedAt, sq.Expr("now()")).
		Where(sq.Eq{colID: userID}).
		Where(sq.GtOrEq{col: amount}).
		Suffix("RETURNING " + strings.Join(columns, ", ")).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanProfile(r.getter.DefaultTrOrDB(ctx, r.dbc).QueryRow(ctx, sqlStr, args...))
	if errors.Is(err, repository.ErrNotFound) {
		// строка не обновилась: либо профиля нет, либо не хватает средств
		if _, getErr := r.GetProfile(ctx, userID); getErr != nil {
			return nil, getErr
		}
		return nil, repository.ErrInsufficientFunds
	}
	return p, err
}

func balanceColumn(c model.Currency) (string, error) {
	switch c {
	case model.CurrencyUnits:
		return colCredits, nil
	case model.CurrencyCarterCash:
		return colCarterCash, nil
	}
	return "", fmt.Errorf("unknown currency %q", c)
}

