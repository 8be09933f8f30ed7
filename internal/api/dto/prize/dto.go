package prize

import "time"

type PrizeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Currency    string `json:"currency"` // units | carter_cash
	ImageURL    string `json:"image_url"`
	Active      *bool  `json:"active"` // по умолчанию true
}

type StatusRequest struct {
	Active bool `json:"active"`
}

type PrizeResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Cost        int       `json:"cost"`
	Currency    string    `json:"currency"`
	Active      bool      `json:"active"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type RedeemRequest struct {
	ShippingAddress string `json:"shipping_address"`
	ShippingPhone   string `json:"shipping_phone"`
	ContactEmail    string `json:"contact_email"`
}

type RedeemResponse struct {
	PurchaseID string        `json:"purchase_id"`
	Prize      PrizeResponse `json:"prize"`
	Balance    Balance       `json:"balance"`
}

type Balance struct {
	Credits    int `json:"credits"`
	CarterCash int `json:"carter_cash"`
}

type ImageResponse struct {
	URL string `json:"url"`
}
