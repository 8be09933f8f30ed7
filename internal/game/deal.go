package game

import (
	"context"
	"fmt"
	"run_the_numbers/internal/model"
	"time"

	"github.com/google/uuid"
)

// Deal разыгрывает раздачу до стоппера и рассчитывает её. Блокирует вызывающего.
// Отмены раздачи нет: при отмене ctx оставшиеся карты тянутся без задержек и без паузы,
// расчёт выполняется полностью.
func (s *Session) Deal(ctx context.Context) (model.HandResult, error) {
	if err := s.begin(); err != nil {
		return model.HandResult{}, err
	}
	return s.play(ctx)
}

// DealAsync открывает раздачу синхронно (ошибки ставок возвращаются сразу),
// а разыгрывает её в отдельной горутине. done вызывается с итогом раздачи.
func (s *Session) DealAsync(ctx context.Context, done func(model.HandResult, error)) error {
	if err := s.begin(); err != nil {
		return err
	}
	go func() {
		res, err := s.play(ctx)
		if done != nil {
			done(res, err)
		}
	}()
	return nil
}

func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginHandLocked()
}

func (s *Session) play(ctx context.Context) (model.HandResult, error) {
	for {
		ev, stopper, err := s.drawNext(ctx)
		if err != nil {
			return model.HandResult{}, err
		}
		for _, o := range s.snapshotObservers() {
			o.CardDrawn(ev)
		}
		if stopper {
			break
		}
		s.interCardDelay(ctx)
	}
	return s.finishHand(ctx)
}

func (s *Session) beginHandLocked() error {
	switch s.state {
	case model.StateIdle:
	case model.StateFaulted:
		return s.rejectLocked(reject(ErrFaulted, "Table is faulted. Reset the account to continue."))
	default:
		return s.rejectLocked(reject(ErrHandInProgress, "A hand is already in progress."))
	}
	if s.ledger.Len() == 0 {
		return s.rejectLocked(reject(ErrNoBets, "Place at least one bet before dealing."))
	}

	s.openingLayout = s.ledger.Snapshot()
	s.ledger.ResetRoundCounters()
	deck := s.newDeck()
	s.shuffle(deck)
	paytable := s.ladder.Active()
	s.hand = &handContext{
		id:         uuid.New(),
		owner:      s.owner,
		paytableID: paytable.ID,
		steps:      paytable.Steps,
		deck:       deck,
	}
	s.lastCards = nil
	s.state = model.StateDealing
	s.status = "Dealing..."
	return nil
}

// drawNext тянет следующую карту и применяет мгновенные выплаты.
// Пауза проверяется в той же критической секции, что и вытягивание карты.
func (s *Session) drawNext(ctx context.Context) (model.DrawEvent, bool, error) {
	s.mu.Lock()
	for {
		ch := s.gate.wait()
		if ch == nil {
			break
		}
		s.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			s.mu.Lock()
			s.resumeLocked()
			s.mu.Unlock()
		}
		s.mu.Lock()
	}
	defer s.mu.Unlock()

	if s.state != model.StateDealing || s.hand == nil {
		return model.DrawEvent{}, false, s.faultLocked(fmt.Errorf("%w: deal loop in state %s", ErrLedgerDesync, s.state))
	}

	h := s.hand
	card, ok := h.draw()
	if !ok {
		return model.DrawEvent{}, false, s.faultLocked(ErrDeckExhausted)
	}

	ev := model.DrawEvent{
		HandID: h.id,
		UserID: h.owner.UserID,
		Index:  len(h.drawn) - 1,
		Card:   card,
	}

	if card.IsStopper {
		s.state = model.StateSettling
		ev.Bankroll = s.wallet.Balance()
		return ev, true, nil
	}

	h.nonStoppers++
	for _, bet := range s.ledger.Bets() {
		paid, err := resolveCard(bet, card, h.steps)
		if err != nil {
			return model.DrawEvent{}, false, s.faultLocked(err)
		}
		if paid > 0 {
			s.wallet.Credit(paid)
			ev.Payouts = append(ev.Payouts, bet.outcome())
		}
	}
	ev.Bankroll = s.wallet.Balance()
	return ev, false, nil
}

// resolveCard мгновенные выплаты по номинальной карте. Отложенные типы здесь не решаются.
func resolveCard(bet *ActiveBet, card model.Card, steps []int) (int, error) {
	switch k := bet.Def.Kind.(type) {
	case model.NumberBet:
		if card.Rank != k.Rank || bet.Hits >= len(steps) {
			return 0, nil
		}
		pay := steps[bet.Hits] * bet.Stake
		bet.Hits++
		bet.Paid += pay
		return pay, nil
	case model.SpecificCardBet:
		if card.Rank != k.Rank || card.Suit != k.Suit || bet.Hits > 0 {
			return 0, nil
		}
		pay := (bet.Def.Payout + 1) * bet.Stake
		bet.Hits = 1
		bet.Paid += pay
		return pay, nil
	case model.BustSuitBet, model.BustRankBet, model.BustJokerBet, model.CountBet:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T on %q", ErrUnknownBetKind, bet.Def.Kind, bet.Def.Key)
	}
}

// interCardDelay пауза между картами, нарезанная на шаги, чтобы пауза срабатывала быстро
func (s *Session) interCardDelay(ctx context.Context) {
	total := s.cfg.DealDelay
	if total <= 0 {
		return
	}
	step := s.cfg.DealDelayStep
	if step <= 0 || step > total {
		step = total
	}
	for elapsed := time.Duration(0); elapsed < total; elapsed += step {
		if !sleep(ctx, min(step, total-elapsed)) {
			return
		}
		s.mu.Lock()
		paused := s.gate.wait() != nil
		s.mu.Unlock()
		if paused {
			// оставшаяся задержка не нужна, ожидание снятия паузы в drawNext
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
