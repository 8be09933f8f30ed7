package game

import "run_the_numbers/internal/model"

// DefaultPlaythroughRate оборот ставок за одну единицу Carter Cash
const DefaultPlaythroughRate = 1000

// Wallet балансы сессии. Меняется только через Debit, Credit и AccruePlaythrough.
type Wallet struct {
	b    model.Bankroll
	rate int
}

func NewWallet(b model.Bankroll, rate int) *Wallet {
	if rate <= 0 {
		rate = DefaultPlaythroughRate
	}
	w := &Wallet{rate: rate}
	w.Set(b)
	return w
}

func (w *Wallet) Balance() model.Bankroll { return w.b }

func (w *Wallet) Units() int { return w.b.Units }

// Set заменяет балансы, отрицательные значения обнуляются, прогресс нормализуется
func (w *Wallet) Set(b model.Bankroll) {
	if b.Units < 0 {
		b.Units = 0
	}
	if b.CarterCash < 0 {
		b.CarterCash = 0
	}
	if b.CarterCashProgress < 0 {
		b.CarterCashProgress = 0
	}
	b.CarterCash += b.CarterCashProgress / w.rate
	b.CarterCashProgress %= w.rate
	w.b = b
}

func (w *Wallet) Debit(units int) error {
	if units <= 0 {
		return reject(ErrInvalidChip, "Stake must be positive.")
	}
	if units > w.b.Units {
		return reject(ErrInsufficientFunds, "Insufficient bankroll for a %d-unit chip. Try a smaller denomination.", units)
	}
	w.b.Units -= units
	return nil
}

func (w *Wallet) Credit(units int) {
	if units > 0 {
		w.b.Units += units
	}
}

// AccruePlaythrough добавляет оборот к прогрессу и конвертирует каждые rate единиц в Carter Cash.
// Возвращает начисленный Carter Cash.
func (w *Wallet) AccruePlaythrough(wagered int) int {
	if wagered <= 0 {
		return 0
	}
	w.b.CarterCashProgress += wagered
	awarded := w.b.CarterCashProgress / w.rate
	w.b.CarterCashProgress %= w.rate
	w.b.CarterCash += awarded
	return awarded
}
