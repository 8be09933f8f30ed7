package game

import (
	"context"
	"fmt"
	"run_the_numbers/internal/model"
)

// resolveStopper отложенные ставки против стоппера и длины раздачи.
// Выигрыш возвращает ставку плюс выплату по множителю.
func resolveStopper(bet *ActiveBet, stopper model.Card, totalCards int) (int, error) {
	won := false
	switch k := bet.Def.Kind.(type) {
	case model.BustSuitBet:
		won = stopper.Rank.IsFace() && stopper.Suit == k.Suit
	case model.BustRankBet:
		won = stopper.Rank == k.Rank
	case model.BustJokerBet:
		won = stopper.Rank == model.RankJoker
	case model.CountBet:
		won = k.Matches(totalCards)
	case model.NumberBet, model.SpecificCardBet:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: %T on %q", ErrUnknownBetKind, bet.Def.Kind, bet.Def.Key)
	}
	if !won {
		return 0, nil
	}
	pay := bet.Def.Payout*bet.Stake + bet.Stake
	bet.Hits = 1
	bet.Paid += pay
	return pay, nil
}

// finishHand расчёт, внешняя фиксация и повторное открытие ставок
func (s *Session) finishHand(ctx context.Context) (model.HandResult, error) {
	s.mu.Lock()
	res, err := s.settleLocked()
	s.mu.Unlock()
	if err != nil {
		return model.HandResult{}, err
	}

	// баланс фиксируется до того, как ставки снова открыты
	if s.sink != nil {
		s.sink.Settle(context.WithoutCancel(ctx), res)
	}

	s.mu.Lock()
	s.ledger.Reset()
	s.hand = nil
	s.state = model.StateIdle
	var prev, next model.Identity
	changed := false
	if s.pending != nil {
		next = s.pending.identity
		prev = s.applyIdentityLocked(next, s.pending.bankroll)
		changed = true
	}
	s.mu.Unlock()

	// наблюдатели видят стол уже открытым для ставок
	for _, o := range s.snapshotObservers() {
		o.HandSettled(res)
	}
	if changed && s.onIdentityChange != nil {
		s.onIdentityChange(prev, next)
	}
	return res, nil
}

func (s *Session) settleLocked() (model.HandResult, error) {
	h := s.hand
	if h == nil || len(h.drawn) == 0 {
		return model.HandResult{}, s.faultLocked(fmt.Errorf("%w: settlement without a hand", ErrLedgerDesync))
	}
	if err := s.ledger.Validate(len(h.steps)); err != nil {
		return model.HandResult{}, s.faultLocked(err)
	}

	stopper := h.drawn[len(h.drawn)-1]
	if !stopper.IsStopper {
		return model.HandResult{}, s.faultLocked(fmt.Errorf("%w: hand ended on %s", ErrLedgerDesync, stopper.Label()))
	}
	totalCards := len(h.drawn)

	for _, bet := range s.ledger.Bets() {
		paid, err := resolveStopper(bet, stopper, totalCards)
		if err != nil {
			return model.HandResult{}, s.faultLocked(err)
		}
		s.wallet.Credit(paid)
	}

	wagered := s.ledger.Stakes()
	paid := s.ledger.Paid()
	net := paid - wagered
	outcomes := s.ledger.Outcomes()

	awarded := s.wallet.AccruePlaythrough(wagered)

	s.stats.HandsPlayed++
	s.stats.TotalWagered += wagered
	s.stats.TotalPaid += paid

	res := model.HandResult{
		ID:                h.id,
		UserID:            h.owner.UserID,
		Guest:             h.owner.Guest,
		PaytableID:        h.paytableID,
		Cards:             append([]model.Card(nil), h.drawn...),
		Stopper:           stopper,
		TotalCards:        totalCards,
		NonStopperCount:   h.nonStoppers,
		Wagered:           wagered,
		Paid:              paid,
		Net:               net,
		CarterCashAwarded: awarded,
		Bets:              outcomes,
		Bankroll:          s.wallet.Balance(),
		SettledAt:         s.now(),
	}

	s.pushHistoryLocked(res)
	s.pushBankrollPointLocked()
	s.lastCards = res.Cards
	s.lastLayout = s.openingLayout
	s.openingLayout = nil

	sign := "+"
	if net < 0 {
		sign = ""
	}
	s.status = fmt.Sprintf("%s stopped the hand after %d cards. Net %s%d.", stopper.Label(), totalCards, sign, net)
	if awarded > 0 {
		s.status += fmt.Sprintf(" Earned %d Carter Cash.", awarded)
	}
	return res, nil
}

func (s *Session) pushHistoryLocked(res model.HandResult) {
	entry := model.HistoryEntry{
		HandID:     res.ID,
		Cards:      res.Cards,
		TotalCards: res.TotalCards,
		Net:        res.Net,
	}
	s.history = append([]model.HistoryEntry{entry}, s.history...)
	if limit := s.cfg.HistorySize; limit > 0 && len(s.history) > limit {
		s.history = s.history[:limit]
	}
}
