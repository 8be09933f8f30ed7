package audit_repo

import (
	"context"
	"encoding/json"
	"run_the_numbers/internal/model"
	"run_the_numbers/internal/repository"

	sq "github.com/Masterminds/squirrel"
	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	handsTable = "game_hands"
	playsTable = "bet_plays"
	runsTable  = "game_runs"

	outcomeWin  = "W"
	outcomeLoss = "L"
)

type repo struct {
	dbc    *pgxpool.Pool
	getter *trmpgx.CtxGetter
}

// NewAuditRepository журнал сыгранных раздач. Записи одной раздачи
// должны идти в транзакции вызывающего кода.
func NewAuditRepository(dbc *pgxpool.Pool) repository.AuditRepository {
	return &repo{
		dbc:    dbc,
		getter: trmpgx.DefaultCtxGetter,
	}
}

type runMetadata struct {
	HandID     string `json:"hand_id"`
	PaytableID string `json:"paytable_id"`
	TotalCards int    `json:"total_cards"`
	Stopper    string `json:"stopper"`
	Wagered    int    `json:"wagered"`
	Paid       int    `json:"paid"`
}

func (r *repo) RecordHand(ctx context.Context, res model.HandResult) error {
	tr := r.getter.DefaultTrOrDB(ctx, r.dbc)
	handID := res.ID.String()

	sqlStr, args, err := sq.Insert(handsTable).
		Columns("id", "user_id", "stopper_label", "stopper_suit", "total_cards",
			"total_wager", "total_paid", "net", "paytable_id").
		Values(handID, res.UserID, res.Stopper.Label(), res.Stopper.Suit.Name(), res.TotalCards,
			res.Wagered, res.Paid, res.Net, res.PaytableID).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err = tr.Exec(ctx, sqlStr, args...); err != nil {
		return repository.PgError(err)
	}

	batch := &pgx.Batch{}
	for _, bet := range res.Bets {
		raw, err := json.Marshal(bet)
		if err != nil {
			return err
		}
		outcome := outcomeLoss
		if bet.Won() {
			outcome = outcomeWin
		}
		sqlStr, args, err := sq.Insert(playsTable).
			Columns("hand_id", "user_id", "bet_key", "amount_wagered", "amount_paid", "outcome", "net", "raw").
			Values(handID, res.UserID, bet.Key, bet.Stake, bet.Paid, outcome, bet.Net(), raw).
			PlaceholderFormat(sq.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		batch.Queue(sqlStr, args...)
	}
	if batch.Len() > 0 {
		if err := tr.SendBatch(ctx, batch).Close(); err != nil {
			return repository.PgError(err)
		}
	}

	meta, err := json.Marshal(runMetadata{
		HandID:     handID,
		PaytableID: res.PaytableID,
		TotalCards: res.TotalCards,
		Stopper:    res.Stopper.Label(),
		Wagered:    res.Wagered,
		Paid:       res.Paid,
	})
	if err != nil {
		return err
	}
	sqlStr, args, err = sq.Insert(runsTable).
		Columns("user_id", "score", "metadata").
		Values(res.UserID, res.Net, meta).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	_, err = tr.Exec(ctx, sqlStr, args...)
	return repository.PgError(err)
}
