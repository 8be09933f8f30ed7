package converter

import (
	"run_the_numbers/internal/api/dto/prize"
	"run_the_numbers/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPrizeModelDefaultsToActive(t *testing.T) {
	p := ToPrizeModel("prize-1", prize.PrizeRequest{Name: "Mug", Cost: 5, Currency: "carter_cash"})
	assert.True(t, p.Active)
	assert.Equal(t, model.CurrencyCarterCash, p.Currency)
	assert.Equal(t, "prize-1", p.ID)

	inactive := false
	p = ToPrizeModel("", prize.PrizeRequest{Name: "Mug", Active: &inactive})
	assert.False(t, p.Active)
}

func TestToRedeemResponse(t *testing.T) {
	got := ToRedeemResponse(model.Redemption{
		Purchase: model.Purchase{ID: "purchase-1"},
		Prize:    model.Prize{ID: "prize-1", Name: "Mug", Currency: model.CurrencyUnits},
		Profile:  model.Profile{Credits: 300, CarterCash: 2},
	})
	assert.Equal(t, "purchase-1", got.PurchaseID)
	assert.Equal(t, "units", got.Prize.Currency)
	assert.Equal(t, prize.Balance{Credits: 300, CarterCash: 2}, got.Balance)
}
