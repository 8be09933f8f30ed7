package model

import "time"

type Currency string

const (
	CurrencyUnits      Currency = "units"
	CurrencyCarterCash Currency = "carter_cash"
)

func (c Currency) Valid() bool {
	return c == CurrencyUnits || c == CurrencyCarterCash
}

type Prize struct {
	ID          string
	Name        string
	Description string
	Cost        int
	Currency    Currency
	Active      bool
	ImageURL    string
	CreatedAt   time.Time
}

type ShippingInfo struct {
	Address string
	Phone   string
	Email   string
}

type Purchase struct {
	ID        string
	PrizeID   string
	UserID    string
	Shipping  ShippingInfo
	Cost      int
	Currency  Currency
	CreatedAt time.Time
}

// Redemption результат покупки приза с обновлённым профилем
type Redemption struct {
	Purchase Purchase
	Prize    Prize
	Profile  Profile
}
