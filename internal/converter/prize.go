package converter

import (
	"run_the_numbers/internal/api/dto/prize"
	"run_the_numbers/internal/model"
)

func ToPrizeModel(id string, req prize.PrizeRequest) *model.Prize {
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	return &model.Prize{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Cost:        req.Cost,
		Currency:    model.Currency(req.Currency),
		Active:      active,
		ImageURL:    req.ImageURL,
	}
}

func ToPrizeResponse(p model.Prize) prize.PrizeResponse {
	return prize.PrizeResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Cost:        p.Cost,
		Currency:    string(p.Currency),
		Active:      p.Active,
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
	}
}

func ToPrizeList(prizes []model.Prize) []prize.PrizeResponse {
	result := make([]prize.PrizeResponse, len(prizes))
	for i, p := range prizes {
		result[i] = ToPrizeResponse(p)
	}
	return result
}

func ToShipping(req prize.RedeemRequest) model.ShippingInfo {
	return model.ShippingInfo{
		Address: req.ShippingAddress,
		Phone:   req.ShippingPhone,
		Email:   req.ContactEmail,
	}
}

func ToRedeemResponse(r model.Redemption) prize.RedeemResponse {
	return prize.RedeemResponse{
		PurchaseID: r.Purchase.ID,
		Prize:      ToPrizeResponse(r.Prize),
		Balance: prize.Balance{
			Credits:    r.Profile.Credits,
			CarterCash: r.Profile.CarterCash,
		},
	}
}
