package model

// Bankroll балансы игрока: основные единицы и Carter Cash.
// CarterCashProgress накопленный оборот ставок, всегда меньше курса конвертации.
type Bankroll struct {
	Units              int `json:"units"`
	CarterCash         int `json:"carter_cash"`
	CarterCashProgress int `json:"carter_cash_progress"`
}

type Statistics struct {
	HandsPlayed  int `json:"hands_played"`
	TotalWagered int `json:"total_wagered"`
	TotalPaid    int `json:"total_paid"`
}

// Hold доля оставленного казино оборота в процентах
func (s Statistics) Hold() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return float64(s.TotalWagered-s.TotalPaid) / float64(s.TotalWagered) * 100
}

// HouseEdge средний результат казино на одну раздачу в единицах
func (s Statistics) HouseEdge() float64 {
	if s.HandsPlayed == 0 {
		return 0
	}
	return float64(s.TotalWagered-s.TotalPaid) / float64(s.HandsPlayed)
}

// BankrollPoint точка графика баланса
type BankrollPoint struct {
	Hand  int `json:"hand"`
	Units int `json:"units"`
}
