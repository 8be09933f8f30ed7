package table

import (
	"context"
	"run_the_numbers/internal/game"
	"run_the_numbers/internal/model"

	"go.uber.org/zap"
)

func (s *serv) State(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	return sess.View(), nil
}

func (s *serv) PlaceBet(ctx context.Context, id model.Identity, key string, amount int) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	_, err = sess.PlaceStake(key, amount)
	return sess.View(), err
}

func (s *serv) ClearBets(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	_, err = sess.ClearAll()
	return sess.View(), err
}

func (s *serv) Rebet(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	err = sess.Rebet()
	return sess.View(), err
}

func (s *serv) SelectPaytable(ctx context.Context, id model.Identity, paytableID string) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	_, err = sess.SelectPaytable(paytableID)
	return sess.View(), err
}

// Deal при wait=false раздача идёт в фоне на контексте приложения,
// клиент получает карты через подписку
func (s *serv) Deal(ctx context.Context, id model.Identity, wait bool) (*model.HandResult, model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, model.TableView{}, err
	}

	// раздача любого вида занимает слот, Close дождётся её расчёта
	if !s.hold() {
		return nil, sess.View(), ErrClosed
	}

	if wait {
		defer s.bg.Done()
		res, err := sess.Deal(ctx)
		if err != nil {
			return nil, sess.View(), err
		}
		return &res, sess.View(), nil
	}

	err = sess.DealAsync(s.appCtx, func(res model.HandResult, err error) {
		defer s.bg.Done()
		if err != nil {
			s.log.Error("hand aborted", zap.String("user_id", id.UserID), zap.Error(err))
		}
	})
	if err != nil {
		// раздача не началась
		s.bg.Done()
	}
	return nil, sess.View(), err
}

func (s *serv) Pause(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	err = sess.Pause()
	return sess.View(), err
}

func (s *serv) Resume(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	err = sess.Resume()
	return sess.View(), err
}

// ResetAccount начальный баланс, Carter Cash обнуляется; результат сохраняется
func (s *serv) ResetAccount(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	// Сброс на столе, затем сохранение
	b, err := sess.ResetAccount()
	if err != nil {
		return sess.View(), err
	}
	if !id.Guest {
		if err := s.profiles.Persist(ctx, id.UserID, b); err != nil {
			s.log.Warn("reset persist failed", zap.String("user_id", id.UserID), zap.Error(err))
			s.metrics.BackgroundError("persist")
		}
	}
	return sess.View(), nil
}

// SyncProfile подтягивает балансы из хранилища, если стол свободен
func (s *serv) SyncProfile(ctx context.Context, id model.Identity) (model.TableView, error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return model.TableView{}, err
	}
	if id.Guest {
		return sess.View(), nil
	}
	if p, synced := s.profiles.Fetch(ctx, id); synced {
		sess.ApplyBankroll(p.Bankroll())
	}
	return sess.View(), nil
}

// SignOut стол закрывается после расчёта текущей раздачи
func (s *serv) SignOut(_ context.Context, id model.Identity) {
	sess, ok := s.lookup(id)
	if !ok {
		if !id.Guest {
			s.profiles.Forget(id.UserID)
		}
		return
	}
	guest := model.GuestProfile()
	sess.ChangeIdentity(model.Identity{UserID: guest.ID, Guest: true}, guest.Bankroll())
}

func (s *serv) Subscribe(ctx context.Context, id model.Identity, o game.Observer) (func(), error) {
	sess, err := s.session(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Subscribe(o), nil
}

// Exclusive списания вне стола (покупка приза). Хранилище приводится к балансу стола
// до fn, поэтому fn списывает от актуального значения.
func (s *serv) Exclusive(ctx context.Context, id model.Identity, fn func(ctx context.Context) (*model.Profile, error)) error {
	sess, err := s.session(ctx, id)
	if err != nil {
		return err
	}
	return sess.Exclusive(id, func(b model.Bankroll) (model.Bankroll, error) {
		// хранилище должно совпадать с балансом стола
		fctx, cancel := context.WithTimeout(ctx, s.persistTimeout)
		err := s.profiles.Flush(fctx, id.UserID, b)
		cancel()
		if err != nil {
			s.log.Warn("bankroll flush failed", zap.String("user_id", id.UserID), zap.Error(err))
			return b, ErrUnsynced
		}

		// списание в хранилище
		p, err := fn(ctx)
		if err != nil {
			return b, err
		}

		// стол и кэш профилей принимают новый баланс
		s.profiles.Adopt(*p)
		return p.Bankroll(), nil
	})
}
