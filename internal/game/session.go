package game

import (
	"context"
	"fmt"
	"run_the_numbers/internal/model"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Config struct {
	Denominations   []int
	InitialBankroll int
	DealDelay       time.Duration
	DealDelayStep   time.Duration
	HistorySize     int
	BankrollHistory int
	PlaythroughRate int
}

func DefaultConfig() Config {
	return Config{
		Denominations:   []int{5, 10, 25, 100},
		InitialBankroll: 1000,
		DealDelay:       420 * time.Millisecond,
		DealDelayStep:   40 * time.Millisecond,
		HistorySize:     8,
		BankrollHistory: 500,
		PlaythroughRate: DefaultPlaythroughRate,
	}
}

// Observer получает события раздачи. Вызывается из горутины раздачи без удержания блокировки,
// карта N+1 не тянется, пока Observer не вернул управление по карте N.
// HandSettled вызывается после возврата стола в Idle.
type Observer interface {
	CardDrawn(ev model.DrawEvent)
	HandSettled(res model.HandResult)
}

// SettlementSink фиксирует итоги раздачи во внешних хранилищах.
// Вызывается до повторного открытия ставок. Ошибки обрабатывает сам.
type SettlementSink interface {
	Settle(ctx context.Context, res model.HandResult)
}

type SessionDeps struct {
	Registry        *Registry
	Paytables       []model.Paytable
	DefaultPaytable string
	Sink            SettlementSink
	Observers       []Observer

	// OnIdentityChange вызывается после фактической смены владельца сессии
	OnIdentityChange func(prev, next model.Identity)

	NewDeck func() []model.Card
	Shuffle func([]model.Card)
	Now     func() time.Time
}

type handContext struct {
	id          uuid.UUID
	owner       model.Identity
	paytableID  string
	steps       []int
	deck        []model.Card
	next        int
	drawn       []model.Card
	nonStoppers int
}

func (h *handContext) draw() (model.Card, bool) {
	if h.next >= len(h.deck) {
		return model.Card{}, false
	}
	c := h.deck[h.next]
	h.next++
	h.drawn = append(h.drawn, c)
	return c, true
}

type pendingIdentity struct {
	identity model.Identity
	bankroll model.Bankroll
}

// Session игровая сессия одного игрока: ставки, раздача, расчёт и балансы.
// Все изменения проходят под mu.
type Session struct {
	mu sync.Mutex

	cfg      Config
	registry *Registry
	ladder   *Ladder
	ledger   *Ledger
	wallet   *Wallet
	stats    model.Statistics
	owner    model.Identity
	state    model.TableState
	gate     gate
	hand     *handContext
	status   string
	fault    error

	openingLayout   model.Layout
	lastLayout      model.Layout
	lastCards       []model.Card
	history         []model.HistoryEntry
	bankrollHistory []model.BankrollPoint
	pending         *pendingIdentity

	sink             SettlementSink
	onIdentityChange func(prev, next model.Identity)
	newDeck          func() []model.Card
	shuffle          func([]model.Card)
	now              func() time.Time

	obsMu     sync.RWMutex
	observers map[int]Observer
	obsSeq    int
}

func NewSession(cfg Config, deps SessionDeps, owner model.Identity, bankroll model.Bankroll) (*Session, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("session requires a bet registry")
	}
	ladder, err := NewLadder(deps.Paytables, deps.DefaultPaytable)
	if err != nil {
		return nil, err
	}

	s := &Session{
		cfg:              cfg,
		registry:         deps.Registry,
		ladder:           ladder,
		ledger:           NewLedger(),
		wallet:           NewWallet(bankroll, cfg.PlaythroughRate),
		owner:            owner,
		state:            model.StateIdle,
		status:           "Place your bets.",
		sink:             deps.Sink,
		onIdentityChange: deps.OnIdentityChange,
		newDeck:          deps.NewDeck,
		shuffle:          deps.Shuffle,
		now:              deps.Now,
		observers:        make(map[int]Observer),
	}
	if s.newDeck == nil {
		s.newDeck = NewDeck
	}
	if s.shuffle == nil {
		s.shuffle = Shuffle
	}
	if s.now == nil {
		s.now = time.Now
	}
	for _, o := range deps.Observers {
		s.Subscribe(o)
	}
	s.resetBankrollHistoryLocked()
	return s, nil
}

// Subscribe подписка на события раздачи, возвращает функцию отписки
func (s *Session) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.obsSeq++
	id := s.obsSeq
	s.observers[id] = o
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}

func (s *Session) snapshotObservers() []Observer {
	s.obsMu.RLock()
	defer s.obsMu.RUnlock()
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.observers[id])
	}
	return out
}

func (s *Session) Identity() model.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

func (s *Session) State() model.TableState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) Bankroll() model.Bankroll {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallet.Balance()
}

// Err ошибка, переведшая стол в Faulted
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fault
}

func (s *Session) View() model.TableView {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := model.TableView{
		UserID:          s.owner.UserID,
		Guest:           s.owner.Guest,
		State:           s.state,
		Status:          s.status,
		Bankroll:        s.wallet.Balance(),
		Stats:           s.stats,
		Bets:            s.ledger.Views(),
		Paytable:        s.ladder.Active(),
		Paytables:       s.ladder.Paytables(),
		Denominations:   append([]int(nil), s.cfg.Denominations...),
		History:         slices.Clone(s.history),
		BankrollHistory: slices.Clone(s.bankrollHistory),
		LastLayoutTotal: s.lastLayout.Total(),
	}
	if s.fault != nil {
		v.Fault = s.fault.Error()
	}
	if s.hand != nil {
		v.DrawnCards = slices.Clone(s.hand.drawn)
	} else {
		v.DrawnCards = slices.Clone(s.lastCards)
	}
	return v
}

func (s *Session) rejectLocked(err error) error {
	s.status = err.Error()
	return err
}

func (s *Session) faultLocked(err error) error {
	s.fault = err
	s.state = model.StateFaulted
	s.gate.release()
	s.status = "Hand aborted: " + err.Error()
	return err
}

func (s *Session) validChip(amount int) bool {
	if amount <= 0 {
		return false
	}
	if len(s.cfg.Denominations) == 0 {
		return true
	}
	return slices.Contains(s.cfg.Denominations, amount)
}

// PlaceStake ставит фишку amount на поле key. Ставка сразу списывается с баланса.
func (s *Session) PlaceStake(key string, amount int) (model.BetView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	def, ok := s.registry.Lookup(key)
	if !ok {
		return model.BetView{}, s.rejectLocked(reject(ErrUnknownBet, "Unknown bet %q.", key))
	}
	if !s.validChip(amount) {
		return model.BetView{}, s.rejectLocked(reject(ErrInvalidChip, "%d is not an available chip.", amount))
	}

	switch s.state {
	case model.StateIdle:
	case model.StatePaused:
		if def.LockDuringHand {
			return model.BetView{}, s.rejectLocked(reject(ErrSpotLocked, "%s bets are locked while a hand is in progress.", def.Label))
		}
	case model.StateFaulted:
		return model.BetView{}, s.rejectLocked(reject(ErrFaulted, "Table is faulted. Reset the account to continue."))
	default:
		if def.LockDuringHand {
			return model.BetView{}, s.rejectLocked(reject(ErrSpotLocked, "%s bets are locked while a hand is in progress.", def.Label))
		}
		return model.BetView{}, s.rejectLocked(reject(ErrBettingClosed, "Pause dealing to place %s bets.", def.Label))
	}

	if s.wallet.Units() == 0 {
		return model.BetView{}, s.rejectLocked(reject(ErrOutOfCredits, "You are out of credits."))
	}
	if err := s.wallet.Debit(amount); err != nil {
		return model.BetView{}, s.rejectLocked(err)
	}

	bet := s.ledger.Add(def, amount)
	s.status = fmt.Sprintf("Placed %s on %s. Total on %s: %s.", units(amount), def.Label, def.Label, units(bet.Stake))
	return bet.view(), nil
}

// ClearAll возвращает все ставки на баланс. Только при открытых ставках.
func (s *Session) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return 0, err
	}
	refund := s.ledger.Stakes()
	s.wallet.Credit(refund)
	s.ledger.Reset()
	s.status = fmt.Sprintf("Bets cleared. Returned %s.", units(refund))
	return refund, nil
}

// Snapshot раскладка текущих ставок
func (s *Session) Snapshot() model.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Snapshot()
}

// LastLayout раскладка, с которой началась последняя раздача
func (s *Session) LastLayout() model.Layout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLayout.Clone()
}

// Rebet восстанавливает раскладку последней раздачи
func (s *Session) Rebet() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.lastLayout) == 0 {
		return s.rejectLocked(reject(ErrNoLayout, "No previous bets to rebet."))
	}
	return s.restoreLocked(s.lastLayout.Clone())
}

// RestoreLayout заменяет текущие ставки раскладкой layout.
// Текущие ставки учитываются как доступные средства.
func (s *Session) RestoreLayout(layout model.Layout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreLocked(layout.Clone())
}

func (s *Session) restoreLocked(layout model.Layout) error {
	if err := s.requireIdleLocked(); err != nil {
		return err
	}
	if len(layout) == 0 {
		return s.rejectLocked(reject(ErrNoLayout, "No previous bets to rebet."))
	}

	known := make(model.Layout, 0, len(layout))
	for _, e := range layout {
		if _, ok := s.registry.Lookup(e.Key); ok {
			known = append(known, e)
		}
	}
	need := known.Total()
	available := s.wallet.Units() + s.ledger.Stakes()
	if need > available {
		return s.rejectLocked(reject(ErrInsufficientFunds, "Not enough bankroll to rebet %s.", units(need)))
	}

	s.wallet.Credit(s.ledger.Stakes())
	s.ledger.Reset()
	for _, e := range known {
		def, _ := s.registry.Lookup(e.Key)
		for _, chip := range e.Chips {
			if err := s.wallet.Debit(chip); err != nil {
				return s.faultLocked(fmt.Errorf("%w: rebet debit: %v", ErrLedgerDesync, err))
			}
			s.ledger.Add(def, chip)
		}
	}
	s.status = fmt.Sprintf("Rebet placed: %s.", units(need))
	return nil
}

// SelectPaytable меняет таблицу выплат. false, если она уже активна.
func (s *Session) SelectPaytable(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireIdleLocked(); err != nil {
		return false, err
	}
	changed, err := s.ladder.Select(id)
	if err != nil {
		return false, s.rejectLocked(err)
	}
	if changed {
		s.status = fmt.Sprintf("%s selected.", s.ladder.Active().Name)
	}
	return changed, nil
}

func (s *Session) requireIdleLocked() error {
	switch s.state {
	case model.StateIdle:
		return nil
	case model.StateFaulted:
		return s.rejectLocked(reject(ErrFaulted, "Table is faulted. Reset the account to continue."))
	default:
		return s.rejectLocked(reject(ErrBettingClosed, "Betting is closed while a hand is in progress."))
	}
}

// Pause ставит раздачу на паузу перед следующей картой
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case model.StatePaused:
		return nil
	case model.StateDealing:
		s.gate.pause()
		s.state = model.StatePaused
		s.status = "Dealing paused. Place bust bets or resume play."
		return nil
	}
	return s.rejectLocked(reject(ErrNotDealing, "No hand is being dealt."))
}

// Resume снимает паузу и будит ожидающую раздачу
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case model.StateDealing:
		return nil
	case model.StatePaused:
		s.resumeLocked()
		return nil
	}
	return s.rejectLocked(reject(ErrNotPaused, "Dealing is not paused."))
}

func (s *Session) resumeLocked() {
	if s.gate.release() {
		s.state = model.StateDealing
		s.status = "Dealing resumed."
	}
}

// ResetAccount сбрасывает балансы, статистику и историю. Единственный выход из Faulted.
func (s *Session) ResetAccount() (model.Bankroll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.StateIdle && s.state != model.StateFaulted {
		return model.Bankroll{}, s.rejectLocked(reject(ErrHandInProgress, "Finish the current hand before resetting."))
	}
	s.wallet.Set(model.Bankroll{Units: s.cfg.InitialBankroll})
	s.clearPlayerLocked()
	s.status = fmt.Sprintf("Account reset. Bankroll: %s.", units(s.cfg.InitialBankroll))
	return s.wallet.Balance(), nil
}

func (s *Session) clearPlayerLocked() {
	s.ledger.Reset()
	s.stats = model.Statistics{}
	s.history = nil
	s.openingLayout = nil
	s.lastLayout = nil
	s.lastCards = nil
	s.hand = nil
	s.fault = nil
	s.gate.release()
	s.state = model.StateIdle
	s.resetBankrollHistoryLocked()
}

// ApplyBankroll принимает балансы из хранилища профилей.
// Поставленные фишки остаются на столе и вычитаются из нового баланса.
// Во время раздачи не применяется, возвращает false.
func (s *Session) ApplyBankroll(b model.Bankroll) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != model.StateIdle {
		return false
	}
	s.applyBankrollLocked(b)
	return true
}

func (s *Session) applyBankrollLocked(b model.Bankroll) {
	escrow := s.ledger.Stakes()
	if b.Units >= escrow {
		b.Units -= escrow
	} else {
		s.ledger.Reset()
	}
	s.wallet.Set(b)
	s.pushBankrollPointLocked()
}

// Exclusive выполняет fn между раздачами, пока стол принадлежит owner.
// fn получает полный баланс (фишки на столе включены) и возвращает новый.
// fn выполняется под блокировкой сессии: раздача, ставки и смена владельца
// ждут её завершения. При ошибке fn баланс стола не меняется.
func (s *Session) Exclusive(owner model.Identity, fn func(model.Bankroll) (model.Bankroll, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == model.StateFaulted:
		return s.rejectLocked(reject(ErrFaulted, "Table is faulted. Reset the account to continue."))
	case s.state != model.StateIdle:
		return s.rejectLocked(reject(ErrHandInProgress, "Finish the current hand first."))
	case s.owner.SessionKey() != owner.SessionKey():
		return reject(ErrOwnerChanged, "Your session changed. Sign in again.")
	}

	b := s.wallet.Balance()
	b.Units += s.ledger.Stakes()
	next, err := fn(b)
	if err != nil {
		return err
	}
	s.applyBankrollLocked(next)
	return nil
}

// ChangeIdentity смена владельца (вход, выход, истечение сессии).
// Во время раздачи смена откладывается: раздача доигрывается и рассчитывается
// на прежнего владельца, новый применяется после возврата в Idle.
func (s *Session) ChangeIdentity(next model.Identity, b model.Bankroll) bool {
	s.mu.Lock()
	if s.state != model.StateIdle && s.state != model.StateFaulted {
		s.pending = &pendingIdentity{identity: next, bankroll: b}
		s.mu.Unlock()
		return false
	}
	prev := s.applyIdentityLocked(next, b)
	s.mu.Unlock()

	if s.onIdentityChange != nil {
		s.onIdentityChange(prev, next)
	}
	return true
}

func (s *Session) applyIdentityLocked(next model.Identity, b model.Bankroll) model.Identity {
	prev := s.owner
	s.owner = next
	s.pending = nil
	// несыгранные фишки не сохранялись, во внешнем хранилище их уже нет
	s.wallet.Set(b)
	s.clearPlayerLocked()
	s.status = "Place your bets."
	return prev
}

func (s *Session) resetBankrollHistoryLocked() {
	s.bankrollHistory = []model.BankrollPoint{{Hand: s.stats.HandsPlayed, Units: s.wallet.Units()}}
}

func (s *Session) pushBankrollPointLocked() {
	s.bankrollHistory = append(s.bankrollHistory, model.BankrollPoint{Hand: s.stats.HandsPlayed, Units: s.wallet.Units()})
	if limit := s.cfg.BankrollHistory; limit > 0 && len(s.bankrollHistory) > limit {
		s.bankrollHistory = slices.Clone(s.bankrollHistory[len(s.bankrollHistory)-limit:])
	}
}

func units(n int) string {
	if n == 1 {
		return "1 unit"
	}
	return fmt.Sprintf("%d units", n)
}
