package prize_repo

import (
	"context"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	prizesTable    = "prizes"
	purchasesTable = "prize_purchases"

	colID          = "id"
	colName        = "name"
	colDescription = "description"
	colCost        = "cost"
	colCurrency    = "currency"
	colActive      = "active"
	colImageURL    = "image_url"
	colCreatedAt   = "created_at"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

func NewPrizeRepository(dbc *pgxpool.Pool) repository.PrizeRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

func (r *repo) tr(ctx context.Context) trmpgx.Tr {
	return r.getter.DefaultTrOrDB(ctx, r.dbc)
}

func prizeColumns() []string {
	return []string{colID, colName, colDescription, colCost, colCurrency, colActive, colImageURL, colCreatedAt}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPrize(row scanner) (model.Prize, error) {
	var p model.Prize
	var currency string
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Cost, &currency, &p.Active, &p.ImageURL, &p.CreatedAt)
	p.Currency = model.Currency(currency)
	return p, err
}

// ListPrizes - витрина, новые призы первыми
func (r *repo) ListPrizes(ctx context.Context, activeOnly bool) ([]model.Prize, error) {
	query := sq.Select(prizeColumns()...).
		From(prizesTable).
		OrderBy(colCreatedAt + " DESC")
	if activeOnly {
		query = query.Where(sq.Eq{colActive: true})
	}

	sqlStr, args, err := query.PlaceholderFormat(sq.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.tr(ctx).Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, repository.PgError(err)
	}
	defer rows.Close()

	prizes := make([]model.Prize, 0)
	for rows.Next() {
		p, err := scanPrize(rows)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

func (r *repo) GetPrize(ctx context.Context, id string) (*model.Prize, error) {
	sqlStr, args, err := sq.Select(prizeColumns()...).
		From(prizesTable).
		Where(sq.Eq{colID: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	p, err := scanPrize(r.tr(ctx).QueryRow(ctx, sqlStr, args...))
	if err != nil {
		return nil, repository.PgError(err)
	}
	return &p, nil
}

// CreatePrize - заполняет ID и CreatedAt
func (r *repo) CreatePrize(ctx context.Context, p *model.Prize) error {
	sqlStr, args, err := sq.Insert(prizesTable).
		Columns(colName, colDescription, colCost, colCurrency, colActive, colImageURL).
		Values(p.Name, p.Description, p.Cost, string(p.Currency), p.Active, p.ImageURL).
		Suffix("RETURNING " + colID + ", " + colCreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return repository.PgError(r.tr(ctx).QueryRow(ctx, sqlStr, args...).Scan(&p.ID, &p.CreatedAt))
}

func (r *repo) UpdatePrize(ctx context.Context, p *model.Prize) error {
	sqlStr, args, err := sq.Update(prizesTable).
		SetMap(map[string]any{
			colName:        p.Name,
			colDescription: p.Description,
			colCost:        p.Cost,
			colCurrency:    string(p.Currency),
			colActive:      p.Active,
			colImageURL:    p.ImageURL,
		}).
		Where(sq.Eq{colID: p.ID}).
		Suffix("RETURNING " + colCreatedAt).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return repository.PgError(r.tr(ctx).QueryRow(ctx, sqlStr, args...).Scan(&p.CreatedAt))
}

func (r *repo) SetPrizeActive(ctx context.Context, id string, active bool) error {
	sqlStr, args, err := sq.Update(prizesTable).
		Set(colActive, active).
		Where(sq.Eq{colID: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.tr(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return repository.PgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *repo) DeletePrize(ctx context.Context, id string) error {
	sqlStr, args, err := sq.Delete(prizesTable).
		Where(sq.Eq{colID: id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.tr(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return repository.PgError(err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClaimPrize - UPDATE ... WHERE active; гонку выигрывает один покупатель
func (r *repo) ClaimPrize(ctx context.Context, id string) error {
	sqlStr, args, err := sq.Update(prizesTable).
		Set(colActive, false).
		Where(sq.Eq{colID: id, colActive: true}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	tag, err := r.tr(ctx).Exec(ctx, sqlStr, args...)
	if err != nil {
		return repository.PgError(err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetPrize(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func (r *repo) CreatePurchase(ctx context.Context, p *model.Purchase) error {
	sqlStr, args, err := sq.Insert(purchasesTable).
		Columns("prize_id", "user_id", "shipping_address", "shipping_phone", "contact_email", "cost", "currency").
		Values(p.PrizeID, p.UserID, p.Shipping.Address, p.Shipping.Phone, p.Shipping.Email, p.Cost, string(p.Currency)).
		Suffix("RETURNING id, created_at").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	return repository.PgError(r.tr(ctx).QueryRow(ctx, sqlStr, args...).Scan(&p.ID, &p.CreatedAt))
}

func (r *repo) DeletePurchasesByPrize(ctx context.Context, prizeID string) error {
	sqlStr, args, err := sq.Delete(purchasesTable).
		Where(sq.Eq{"prize_id": prizeID}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.tr(ctx).Exec(ctx, sqlStr, args...)
	return repository.PgError(err)
}
